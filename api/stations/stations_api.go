package stations

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/api"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	stationRepo "github.com/nunomansilhas/ProduFlow/model/repository/station"
)

func init() {
	api.RegisterModule(RegisterStationRoutes)
}

type stationBody struct {
	Name       string `json:"name"`
	DefaultSeq int    `json:"default_seq"`
	Color      string `json:"color"`
	Icon       string `json:"icon"`
	Active     *bool  `json:"active"`
}

func RegisterStationRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/stations")
	repo := stationRepo.NewStationRepository(db)

	g.GET("", func(c echo.Context) error {
		var q struct {
			Active *bool `mapstructure:"active"`
		}
		if err := api.DecodeQuery(c, &q); err != nil {
			return api.Fail(c, err)
		}
		stations, err := repo.List(c.Request().Context(), q.Active)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, stations)
	})

	g.GET("/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		st, err := repo.Get(c.Request().Context(), id)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, st)
	})

	// GET /api/stations/:id/queue – orders waiting at or working in the
	// station, urgent first.
	g.GET("/:id/queue", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		queue, err := repo.Queue(c.Request().Context(), id)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, queue)
	})

	g.POST("", func(c echo.Context) error {
		var body stationBody
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		st := entity.Station{
			Name:       body.Name,
			DefaultSeq: body.DefaultSeq,
			Color:      body.Color,
			Icon:       body.Icon,
			Active:     true,
		}
		if err := repo.Create(c.Request().Context(), &st); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusCreated, st)
	})

	g.PUT("/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var body stationBody
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		active := true
		if body.Active != nil {
			active = *body.Active
		}
		st := entity.Station{
			StationID:  id,
			Name:       body.Name,
			DefaultSeq: body.DefaultSeq,
			Color:      body.Color,
			Icon:       body.Icon,
			Active:     active,
		}
		if err := repo.Update(c.Request().Context(), &st); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "station updated"})
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

	// PUT /api/stations/reorder – rewrite the default sequence.
	g.PUT("/reorder", func(c echo.Context) error {
		var body struct {
			IDs []uint `json:"ids"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if len(body.IDs) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ids array is required"})
		}
		if err := repo.Reorder(c.Request().Context(), body.IDs); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "stations reordered"})
	})
}
