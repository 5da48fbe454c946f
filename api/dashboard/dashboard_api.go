package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/api"
	"github.com/nunomansilhas/ProduFlow/config"
	dashboardService "github.com/nunomansilhas/ProduFlow/service/dashboard"
)

func init() {
	api.RegisterModule(RegisterDashboardRoutes)
}

func RegisterDashboardRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/dashboard")
	svc := dashboardService.NewService(db, config.RedisClient)

	g.GET("/stats", func(c echo.Context) error {
		stats, err := svc.Stats(c.Request().Context())
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, stats)
	})

	g.GET("/in-production", func(c echo.Context) error {
		var q struct {
			Limit int `mapstructure:"limit"`
		}
		if err := api.DecodeQuery(c, &q); err != nil {
			return api.Fail(c, err)
		}
		rows, err := svc.InProduction(c.Request().Context(), q.Limit)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, rows)
	})

	g.GET("/recent-alerts", func(c echo.Context) error {
		var q struct {
			Limit int `mapstructure:"limit"`
		}
		if err := api.DecodeQuery(c, &q); err != nil {
			return api.Fail(c, err)
		}
		alerts, err := svc.RecentAlerts(c.Request().Context(), q.Limit)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, alerts)
	})

	g.GET("/problem-stock", func(c echo.Context) error {
		rows, err := svc.ProblemStock(c.Request().Context())
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, rows)
	})

	g.GET("/stations", func(c echo.Context) error {
		rows, err := svc.StationSummaries(c.Request().Context())
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, rows)
	})
}
