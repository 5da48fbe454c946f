package station

import (
	"context"

	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/core/apperr"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	"github.com/nunomansilhas/ProduFlow/model/repository"
)

type StationRepository struct {
	db *gorm.DB
}

func NewStationRepository(db *gorm.DB) *StationRepository {
	return &StationRepository{db: db}
}

func (r *StationRepository) List(ctx context.Context, active *bool) ([]entity.Station, error) {
	query := r.db.WithContext(ctx).Model(&entity.Station{})
	if active != nil {
		query = query.Where("active = ?", *active)
	}
	var stations []entity.Station
	if err := query.Order("default_seq").Find(&stations).Error; err != nil {
		return nil, repository.Translate(err, "stations")
	}
	return stations, nil
}

func (r *StationRepository) Get(ctx context.Context, id uint) (*entity.Station, error) {
	var s entity.Station
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, repository.Translate(err, "station")
	}
	return &s, nil
}

// Create inserts a station; when no sequence is given the station goes to
// the end (max default_seq + 1).
func (r *StationRepository) Create(ctx context.Context, s *entity.Station) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.DefaultSeq <= 0 {
			var max int
			row := tx.Model(&entity.Station{}).Select("COALESCE(MAX(default_seq), 0)").Row()
			if err := row.Scan(&max); err != nil {
				return apperr.Integrity(err, "reading station order")
			}
			s.DefaultSeq = max + 1
		}
		if err := tx.Create(s).Error; err != nil {
			return apperr.Integrity(err, "creating station")
		}
		return nil
	})
}

func (r *StationRepository) Update(ctx context.Context, s *entity.Station) error {
	res := r.db.WithContext(ctx).Model(&entity.Station{}).
		Where("station_id = ?", s.StationID).
		Select("name", "default_seq", "color", "icon", "active").
		Updates(s)
	if res.Error != nil {
		return apperr.Integrity(res.Error, "updating station")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("station not found")
	}
	return nil
}

// Delete refuses while orders are in progress at the station, deactivates
// when products have it configured, hard-deletes otherwise. Returns the
// action taken.
func (r *StationRepository) Delete(ctx context.Context, id uint) (string, error) {
	action := ""
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s entity.Station
		if err := tx.First(&s, id).Error; err != nil {
			return repository.Translate(err, "station")
		}

		var inProgress int64
		err := tx.Model(&entity.OrderStation{}).
			Where("station_id = ? AND state = ?", id, entity.StationStateInProgress).
			Count(&inProgress).Error
		if err != nil {
			return apperr.Integrity(err, "checking station usage")
		}
		if inProgress > 0 {
			return apperr.Conflict("station has orders in progress")
		}

		var configured int64
		err = tx.Model(&entity.ProductStation{}).Where("station_id = ?", id).Count(&configured).Error
		if err != nil {
			return apperr.Integrity(err, "checking station config")
		}
		if configured > 0 {
			action = "deactivated"
			return tx.Model(&entity.Station{}).Where("station_id = ?", id).Update("active", false).Error
		}

		action = "deleted"
		return tx.Delete(&entity.Station{}, id).Error
	})
	if err != nil {
		return "", err
	}
	return action, nil
}

// Reorder rewrites default_seq following the given id order (1-based).
func (r *StationRepository) Reorder(ctx context.Context, ids []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			err := tx.Model(&entity.Station{}).
				Where("station_id = ?", id).
				Update("default_seq", i+1).Error
			if err != nil {
				return apperr.Integrity(err, "reordering stations")
			}
		}
		return nil
	})
}

// QueueRow is one order waiting at (or working in) a station.
type QueueRow struct {
	OrderID      uint    `json:"order_id"`
	Number       string  `json:"number"`
	Quantity     float64 `json:"quantity"`
	Priority     int     `json:"priority"`
	OrderState   string  `json:"order_state"`
	ProductName  string  `json:"product_name"`
	ProductSKU   *string `json:"product_sku"`
	StationState string  `json:"station_state"`
}

// Queue lists non-completed orders pending or in progress at the station,
// urgent first.
func (r *StationRepository) Queue(ctx context.Context, stationID uint) ([]QueueRow, error) {
	var rows []QueueRow
	err := r.db.WithContext(ctx).Model(&entity.OrderStation{}).
		Select(`orders.order_id, orders.number, orders.quantity, orders.priority,
			orders.state AS order_state, products.name AS product_name,
			products.sku AS product_sku, order_stations.state AS station_state`).
		Joins("JOIN orders ON orders.order_id = order_stations.order_id").
		Joins("JOIN products ON products.product_id = orders.product_id").
		Where("order_stations.station_id = ?", stationID).
		Where("order_stations.state IN ?", []string{entity.StationStatePending, entity.StationStateInProgress}).
		Where("orders.state <> ?", entity.OrderStateCompleted).
		Order("orders.priority DESC, order_stations.state DESC, orders.due_date").
		Scan(&rows).Error
	if err != nil {
		return nil, repository.Translate(err, "station queue")
	}
	return rows, nil
}
