package suppliers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/api"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	supplierRepo "github.com/nunomansilhas/ProduFlow/model/repository/supplier"
)

func init() {
	api.RegisterModule(RegisterSupplierRoutes)
}

type supplierBody struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes"`
	Active  *bool  `json:"active"`
}

func RegisterSupplierRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/suppliers")
	repo := supplierRepo.NewSupplierRepository(db)

	g.GET("", func(c echo.Context) error {
		var q struct {
			Active *bool `mapstructure:"active"`
		}
		if err := api.DecodeQuery(c, &q); err != nil {
			return api.Fail(c, err)
		}
		suppliers, err := repo.List(c.Request().Context(), q.Active)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, suppliers)
	})

	g.GET("/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		s, err := repo.Get(c.Request().Context(), id)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, s)
	})

	g.POST("", func(c echo.Context) error {
		var body supplierBody
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		s := entity.Supplier{
			Name:    body.Name,
			Contact: body.Contact,
			Email:   body.Email,
			Phone:   body.Phone,
			Notes:   body.Notes,
			Active:  true,
		}
		if err := repo.Create(c.Request().Context(), &s); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusCreated, s)
	})

	g.PUT("/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var body supplierBody
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		active := true
		if body.Active != nil {
			active = *body.Active
		}
		s := entity.Supplier{
			SupplierID: id,
			Name:       body.Name,
			Contact:    body.Contact,
			Email:      body.Email,
			Phone:      body.Phone,
			Notes:      body.Notes,
			Active:     active,
		}
		if err := repo.Update(c.Request().Context(), &s); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "supplier updated"})
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
