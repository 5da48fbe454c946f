package services

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/api"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	extserviceRepo "github.com/nunomansilhas/ProduFlow/model/repository/extservice"
)

func init() {
	api.RegisterModule(RegisterServiceRoutes)
}

type serviceBody struct {
	Name           string  `json:"name"`
	SupplierID     *uint   `json:"supplier_id"`
	EstimatedPrice float64 `json:"estimated_price"`
	EstimatedTime  float64 `json:"estimated_time"`
	Notes          string  `json:"notes"`
	Active         *bool   `json:"active"`
}

func RegisterServiceRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/services")
	repo := extserviceRepo.NewServiceRepository(db)

	g.GET("", func(c echo.Context) error {
		var q struct {
			Active *bool `mapstructure:"active"`
		}
		if err := api.DecodeQuery(c, &q); err != nil {
			return api.Fail(c, err)
		}
		services, err := repo.List(c.Request().Context(), q.Active)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, services)
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
		var body serviceBody
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		s := entity.ExternalService{
			Name:           body.Name,
			SupplierID:     body.SupplierID,
			EstimatedPrice: body.EstimatedPrice,
			EstimatedTime:  body.EstimatedTime,
			Notes:          body.Notes,
			Active:         true,
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
		var body serviceBody
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		active := true
		if body.Active != nil {
			active = *body.Active
		}
		s := entity.ExternalService{
			ServiceID:      id,
			Name:           body.Name,
			SupplierID:     body.SupplierID,
			EstimatedPrice: body.EstimatedPrice,
			EstimatedTime:  body.EstimatedTime,
			Notes:          body.Notes,
			Active:         active,
		}
		if err := repo.Update(c.Request().Context(), &s); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "service updated"})
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
