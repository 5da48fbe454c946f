package materials

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/api"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	materialRepo "github.com/nunomansilhas/ProduFlow/model/repository/material"
)

func init() {
	api.RegisterModule(RegisterMaterialRoutes)
}

type materialBody struct {
	Name       string  `json:"name"`
	Code       string  `json:"code"`
	CategoryID *uint   `json:"category_id"`
	Unit       string  `json:"unit"`
	SupplierID *uint   `json:"supplier_id"`
	MinStock   float64 `json:"min_stock"`
	Location   string  `json:"location"`
	UnitPrice  float64 `json:"unit_price"`
	Active     *bool   `json:"active"`
}

func RegisterMaterialRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/materials")
	repo := materialRepo.NewMaterialRepository(db)

	g.GET("", func(c echo.Context) error {
		var filter materialRepo.ListFilter
		if err := api.DecodeQuery(c, &filter); err != nil {
			return api.Fail(c, err)
		}
		materials, err := repo.List(c.Request().Context(), filter)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, materials)
	})

	g.GET("/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		m, err := repo.Get(c.Request().Context(), id)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, m)
	})

	g.POST("", func(c echo.Context) error {
		var body materialBody
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.Name == "" || body.Unit == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and unit are required"})
		}
		m := entity.Material{
			Name:       body.Name,
			Code:       materialRepo.NormalizeCode(body.Code),
			CategoryID: body.CategoryID,
			Unit:       body.Unit,
			SupplierID: body.SupplierID,
			MinStock:   body.MinStock,
			Location:   body.Location,
			UnitPrice:  body.UnitPrice,
			Active:     true,
		}
		if err := repo.Create(c.Request().Context(), &m); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusCreated, m)
	})

	g.PUT("/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var body materialBody
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		active := true
		if body.Active != nil {
			active = *body.Active
		}
		m := entity.Material{
			MaterialID: id,
			Name:       body.Name,
			Code:       materialRepo.NormalizeCode(body.Code),
			CategoryID: body.CategoryID,
			Unit:       body.Unit,
			SupplierID: body.SupplierID,
			MinStock:   body.MinStock,
			Location:   body.Location,
			UnitPrice:  body.UnitPrice,
			Active:     active,
		}
		if err := repo.Update(c.Request().Context(), &m); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "material updated"})
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
}
