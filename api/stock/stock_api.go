package stock

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/api"
	stockRepo "github.com/nunomansilhas/ProduFlow/model/repository/stock"
	stockService "github.com/nunomansilhas/ProduFlow/service/stock"
)

func init() {
	api.RegisterModule(RegisterStockRoutes)
}

func RegisterStockRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/stock")
	repo := stockRepo.NewStockRepository(db)
	ledger := stockService.NewLedger(db)

	// GET /api/stock – per-material overview with derived status.
	g.GET("", func(c echo.Context) error {
		var filter stockRepo.OverviewFilter
		if err := api.DecodeQuery(c, &filter); err != nil {
			return api.Fail(c, err)
		}
		rows, err := repo.Overview(c.Request().Context(), filter)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, rows)
	})

	// GET /api/stock/movements – most recent movements across materials.
	g.GET("/movements", func(c echo.Context) error {
		var q struct {
			Limit int `mapstructure:"limit"`
		}
		if err := api.DecodeQuery(c, &q); err != nil {
			return api.Fail(c, err)
		}
		rows, err := repo.RecentMovements(c.Request().Context(), q.Limit)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, rows)
	})

	g.GET("/:material_id/movements", func(c echo.Context) error {
		materialID, err := api.ParseID(c, "material_id")
		if err != nil {
			return api.Fail(c, err)
		}
		var q struct {
			Limit int `mapstructure:"limit"`
		}
		if err := api.DecodeQuery(c, &q); err != nil {
			return api.Fail(c, err)
		}
		rows, err := repo.Movements(c.Request().Context(), materialID, q.Limit)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, rows)
	})

	// POST /api/stock/movements – entry or exit.
	g.POST("/movements", func(c echo.Context) error {
		var body stockService.Movement
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.MaterialID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "material_id is required"})
		}
		if err := ledger.Apply(c.Request().Context(), body); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "movement recorded"})
	})

	// POST /api/stock/adjust – set an exact quantity (stocktake).
	g.POST("/adjust", func(c echo.Context) error {
		var body struct {
			MaterialID uint    `json:"material_id"`
			Quantity   float64 `json:"quantity"`
			Reason     string  `json:"reason"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.MaterialID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "material_id is required"})
		}
		if err := ledger.Adjust(c.Request().Context(), body.MaterialID, body.Quantity, body.Reason, nil); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "adjustment recorded"})
	})
}
