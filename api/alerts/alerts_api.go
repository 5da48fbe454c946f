package alerts

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/api"
	alertRepo "github.com/nunomansilhas/ProduFlow/model/repository/alert"
)

func init() {
	api.RegisterModule(RegisterAlertRoutes)
}

func RegisterAlertRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/alerts")
	repo := alertRepo.NewAlertRepository(db)

	g.GET("", func(c echo.Context) error {
		var filter alertRepo.ListFilter
		if err := api.DecodeQuery(c, &filter); err != nil {
			return api.Fail(c, err)
		}
		alerts, err := repo.List(c.Request().Context(), filter)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, alerts)
	})

	g.GET("/unseen-count", func(c echo.Context) error {
		count, err := repo.CountUnseen(c.Request().Context())
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"count": count})
	})

	g.PUT("/:id/seen", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		if err := repo.MarkSeen(c.Request().Context(), id); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "alert marked seen"})
	})

	g.PUT("/seen", func(c echo.Context) error {
		if err := repo.MarkAllSeen(c.Request().Context()); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "all alerts marked seen"})
	})

	g.DELETE("/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		if err := repo.Delete(c.Request().Context(), id); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "alert deleted"})
	})
}
