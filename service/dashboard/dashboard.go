package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/core/cache"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	"github.com/nunomansilhas/ProduFlow/model/repository"
)

// statsTTL keeps dashboard counters slightly stale rather than hammering the
// database on every poll.
const statsTTL = 30 * time.Second

const statsKey = "dashboard:stats"

// Service aggregates the dashboard views. Stats go through Redis when
// configured, the in-process cache otherwise.
type Service struct {
	db    *gorm.DB
	redis *redis.Client
	local *cache.Cache
}

func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{db: db, redis: rdb, local: cache.GetInstance()}
}

// Stats are the headline dashboard counters.
type Stats struct {
	InProduction     int64 `json:"in_production"`
	Urgent           int64 `json:"urgent"`
	Overdue          int64 `json:"overdue"`
	AwaitingExternal int64 `json:"awaiting_external"`
	UnseenAlerts     int64 `json:"unseen_alerts"`
	Pending          int64 `json:"pending"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	if cached := s.cachedStats(ctx); cached != nil {
		return cached, nil
	}

	stats := &Stats{}
	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.InProduction, s.db.Model(&entity.Order{}).
			Where("state = ?", entity.OrderStateInProd)},
		{&stats.Urgent, s.db.Model(&entity.Order{}).
			Where("state IN ? AND priority = ?", []string{entity.OrderStatePending, entity.OrderStateInProd}, 4)},
		{&stats.Overdue, s.db.Model(&entity.Order{}).
			Where("state IN ? AND due_date < ?", []string{entity.OrderStatePending, entity.OrderStateInProd}, time.Now())},
		{&stats.AwaitingExternal, s.db.Model(&entity.Order{}).
			Where("state = ?", entity.OrderStateAwaitingExt)},
		{&stats.UnseenAlerts, s.db.Model(&entity.Alert{}).
			Where("seen = ?", false)},
		{&stats.Pending, s.db.Model(&entity.Order{}).
			Where("state = ?", entity.OrderStatePending)},
	}
	for _, c := range counts {
		if err := c.query.WithContext(ctx).Count(c.dest).Error; err != nil {
			return nil, repository.Translate(err, "dashboard stats")
		}
	}

	s.storeStats(ctx, stats)
	return stats, nil
}

func (s *Service) cachedStats(ctx context.Context) *Stats {
	if s.redis != nil {
		raw, err := s.redis.Get(ctx, statsKey).Bytes()
		if err == nil {
			var stats Stats
			if json.Unmarshal(raw, &stats) == nil {
				return &stats
			}
		}
		return nil
	}
	if v, ok := s.local.Get(statsKey); ok {
		if stats, ok := v.(*Stats); ok {
			return stats
		}
	}
	return nil
}

func (s *Service) storeStats(ctx context.Context, stats *Stats) {
	if s.redis != nil {
		if raw, err := json.Marshal(stats); err == nil {
			s.redis.Set(ctx, statsKey, raw, statsTTL)
		}
		return
	}
	s.local.Set(statsKey, stats, int64(statsTTL/time.Second), nil)
}

// InvalidateStats drops the cached counters. Called after bulk changes so the
// dashboard catches up immediately.
func (s *Service) InvalidateStats(ctx context.Context) {
	if s.redis != nil {
		s.redis.Del(ctx, statsKey)
		return
	}
	s.local.Delete(statsKey)
}

// ProductionRow is one in-flight order for the dashboard table, with the
// station currently holding it.
type ProductionRow struct {
	OrderID      uint       `json:"order_id"`
	Number       string     `json:"number"`
	Quantity     float64    `json:"quantity"`
	Priority     int        `json:"priority"`
	State        string     `json:"state"`
	DueDate      *time.Time `json:"due_date"`
	ProductName  string     `json:"product_name"`
	ProductSKU   *string    `json:"product_sku"`
	StationName  *string    `json:"current_station"`
	StationColor *string    `json:"station_color"`
}

func (s *Service) InProduction(ctx context.Context, limit int) ([]ProductionRow, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []ProductionRow
	err := s.db.WithContext(ctx).Model(&entity.Order{}).
		Select(`orders.order_id, orders.number, orders.quantity, orders.priority,
			orders.state, orders.due_date, products.name AS product_name,
			products.sku AS product_sku, stations.name AS station_name,
			stations.color AS station_color`).
		Joins("JOIN products ON products.product_id = orders.product_id").
		Joins("LEFT JOIN order_stations ON order_stations.order_id = orders.order_id AND order_stations.state = ?",
			entity.StationStateInProgress).
		Joins("LEFT JOIN stations ON stations.station_id = order_stations.station_id").
		Where("orders.state IN ?", []string{entity.OrderStateInProd, entity.OrderStateAwaitingExt}).
		Order("orders.priority DESC, orders.due_date").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, repository.Translate(err, "in-production orders")
	}
	return rows, nil
}

// RecentAlerts lists the newest unseen alerts with their material and order
// context preloaded.
func (s *Service) RecentAlerts(ctx context.Context, limit int) ([]entity.Alert, error) {
	if limit <= 0 {
		limit = 5
	}
	var alerts []entity.Alert
	err := s.db.WithContext(ctx).
		Preload("Material").
		Preload("Order").
		Where("seen = ?", false).
		Order("created_at DESC").
		Limit(limit).
		Find(&alerts).Error
	if err != nil {
		return nil, repository.Translate(err, "recent alerts")
	}
	return alerts, nil
}

// ProblemRow is one active material whose stock is negative or under minimum.
type ProblemRow struct {
	MaterialID uint    `json:"material_id"`
	Name       string  `json:"name"`
	Code       *string `json:"code"`
	Unit       string  `json:"unit"`
	MinStock   float64 `json:"min_stock"`
	Quantity   float64 `json:"quantity"`
	Problem    string  `json:"problem"` // negative | low
}

func (s *Service) ProblemStock(ctx context.Context) ([]ProblemRow, error) {
	var rows []ProblemRow
	err := s.db.WithContext(ctx).Model(&entity.Material{}).
		Select(`materials.material_id, materials.name, materials.code,
			materials.unit, materials.min_stock,
			COALESCE(stock.quantity, 0) AS quantity,
			CASE WHEN stock.quantity < 0 THEN 'negative' ELSE 'low' END AS problem`).
		Joins("LEFT JOIN stock ON stock.material_id = materials.material_id").
		Where("materials.active = ?", true).
		Where("stock.quantity < 0 OR stock.quantity < materials.min_stock").
		Order("CASE WHEN stock.quantity < 0 THEN 0 ELSE 1 END, materials.name").
		Limit(10).
		Scan(&rows).Error
	if err != nil {
		return nil, repository.Translate(err, "problem stock")
	}
	return rows, nil
}

// StationSummary counts work in progress and queued per active station.
type StationSummary struct {
	StationID  uint   `json:"station_id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Icon       string `json:"icon"`
	InProgress int64  `json:"in_progress"`
	Queued     int64  `json:"queued"`
}

func (s *Service) StationSummaries(ctx context.Context) ([]StationSummary, error) {
	var rows []StationSummary
	err := s.db.WithContext(ctx).Model(&entity.Station{}).
		Select(`stations.station_id, stations.name, stations.color, stations.icon,
			COUNT(CASE WHEN order_stations.state = 'in_progress' THEN 1 END) AS in_progress,
			COUNT(CASE WHEN order_stations.state = 'pending' AND orders.state <> 'pending' THEN 1 END) AS queued`).
		Joins("LEFT JOIN order_stations ON order_stations.station_id = stations.station_id").
		Joins("LEFT JOIN orders ON orders.order_id = order_stations.order_id AND orders.state IN ?",
			[]string{entity.OrderStateInProd, entity.OrderStateAwaitingExt}).
		Where("stations.active = ?", true).
		Group("stations.station_id, stations.name, stations.color, stations.icon, stations.default_seq").
		Order("stations.default_seq").
		Scan(&rows).Error
	if err != nil {
		return nil, repository.Translate(err, "station summary")
	}
	return rows, nil
}
