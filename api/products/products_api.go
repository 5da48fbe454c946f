package products

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/api"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	productRepo "github.com/nunomansilhas/ProduFlow/model/repository/product"
	bomService "github.com/nunomansilhas/ProduFlow/service/bom"
)

func init() {
	api.RegisterModule(RegisterProductRoutes)
}

type productBody struct {
	Name          string  `json:"name"`
	SKU           string  `json:"sku"`
	CategoryID    *uint   `json:"category_id"`
	Description   string  `json:"description"`
	EstimatedCost float64 `json:"estimated_cost"`
	EstimatedTime float64 `json:"estimated_time"`
	Active        *bool   `json:"active"`
}

func RegisterProductRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/products")
	repo := productRepo.NewProductRepository(db)
	boms := bomService.NewService(db)

	g.GET("", func(c echo.Context) error {
		var filter productRepo.ListFilter
		if err := api.DecodeQuery(c, &filter); err != nil {
			return api.Fail(c, err)
		}
		products, err := repo.List(c.Request().Context(), filter)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, products)
	})

	g.GET("/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		p, err := repo.Get(c.Request().Context(), id)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, p)
	})

	g.POST("", func(c echo.Context) error {
		var body productBody
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		p := entity.Product{
			Name:          body.Name,
			SKU:           productRepo.NormalizeSKU(body.SKU),
			CategoryID:    body.CategoryID,
			Description:   body.Description,
			EstimatedCost: body.EstimatedCost,
			EstimatedTime: body.EstimatedTime,
			Active:        true,
		}
		if err := repo.Create(c.Request().Context(), &p); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusCreated, p)
	})

	g.PUT("/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var body productBody
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		active := true
		if body.Active != nil {
			active = *body.Active
		}
		p := entity.Product{
			ProductID:     id,
			Name:          body.Name,
			SKU:           productRepo.NormalizeSKU(body.SKU),
			CategoryID:    body.CategoryID,
			Description:   body.Description,
			EstimatedCost: body.EstimatedCost,
			EstimatedTime: body.EstimatedTime,
			Active:        active,
		}
		if err := repo.Update(c.Request().Context(), &p); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "product updated"})
	})

	g.DELETE("/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		action, err := repo.Delete(c.Request().Context(), id)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"action": action})
	})

	// GET /api/products/:id/cost?quantity=N – BOM cost estimate.
	g.GET("/:id/cost", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var q struct {
			Quantity float64 `mapstructure:"quantity"`
		}
		if err := api.DecodeQuery(c, &q); err != nil {
			return api.Fail(c, err)
		}
		if q.Quantity == 0 {
			q.Quantity = 1
		}
		cost, err := boms.Cost(c.Request().Context(), id, q.Quantity)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, cost)
	})

	// POST /api/products/:id/cost/recompute – roll the unit cost up from the
	// BOM and persist it on the product.
	g.POST("/:id/cost/recompute", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		cost, err := boms.Cost(c.Request().Context(), id, 1)
		if err != nil {
			return api.Fail(c, err)
		}
		total := cost.Total.InexactFloat64()
		if err := repo.SetEstimatedCost(c.Request().Context(), id, total); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"estimated_cost": total})
	})

	// PUT /api/products/:id/stations – replace the station sequence.
	g.PUT("/:id/stations", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var body struct {
			Stations []productRepo.StationConfig `json:"stations"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if err := repo.SetStations(c.Request().Context(), id, body.Stations); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "stations updated"})
	})
}
