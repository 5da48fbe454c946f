package bom

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/api"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	bomService "github.com/nunomansilhas/ProduFlow/service/bom"
)

func init() {
	api.RegisterModule(RegisterBOMRoutes)
}

type lineBody struct {
	Kind         string  `json:"kind"`
	MaterialID   *uint   `json:"material_id"`
	SubproductID *uint   `json:"subproduct_id"`
	ServiceID    *uint   `json:"service_id"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	TolerancePct float64 `json:"tolerance_pct"`
	Notes        string  `json:"notes"`
}

func RegisterBOMRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/bom")
	svc := bomService.NewService(db)

	// GET /api/bom/:product_id – flat line listing, optional ?kind= filter.
	g.GET("/:product_id", func(c echo.Context) error {
		productID, err := api.ParseID(c, "product_id")
		if err != nil {
			return api.Fail(c, err)
		}
		lines, err := svc.ListLines(c.Request().Context(), productID, c.QueryParam("kind"))
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, lines)
	})

	// GET /api/bom/:product_id/tree – hierarchical view.
	g.GET("/:product_id/tree", func(c echo.Context) error {
		productID, err := api.ParseID(c, "product_id")
		if err != nil {
			return api.Fail(c, err)
		}
		tree, err := svc.Hierarchy(c.Request().Context(), productID)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, tree)
	})

	// GET /api/bom/:product_id/materials?quantity=N – flattened demand.
	g.GET("/:product_id/materials", func(c echo.Context) error {
		productID, err := api.ParseID(c, "product_id")
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
		requirements, err := svc.Resolve(c.Request().Context(), productID, q.Quantity)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, requirements)
	})

	// POST /api/bom/:product_id/lines – add a line (cycle-gated).
	g.POST("/:product_id/lines", func(c echo.Context) error {
		productID, err := api.ParseID(c, "product_id")
		if err != nil {
			return api.Fail(c, err)
		}
		var body lineBody
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		line := entity.BOMLine{
			ProductID:    productID,
			Kind:         body.Kind,
			MaterialID:   body.MaterialID,
			SubproductID: body.SubproductID,
			ServiceID:    body.ServiceID,
			Quantity:     body.Quantity,
			Unit:         body.Unit,
			TolerancePct: body.TolerancePct,
			Notes:        body.Notes,
		}
		if err := svc.CreateLine(c.Request().Context(), &line); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusCreated, line)
	})

	g.PUT("/lines/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var body lineBody
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		err = svc.UpdateLine(c.Request().Context(), id, body.Quantity, body.Unit, body.TolerancePct, body.Notes)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "line updated"})
	})

	g.DELETE("/lines/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		if err := svc.DeleteLine(c.Request().Context(), id); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "line deleted"})
	})
}
