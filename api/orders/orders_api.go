package orders

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/api"
	orderRepo "github.com/nunomansilhas/ProduFlow/model/repository/order"
	orderService "github.com/nunomansilhas/ProduFlow/service/order"
)

func init() {
	api.RegisterModule(RegisterOrderRoutes)
}

// parseDueDate accepts an ISO date or empty.
func parseDueDate(raw string) (*datatypes.Date, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	d := datatypes.Date(t)
	return &d, nil
}

func RegisterOrderRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/orders")
	engine := orderService.NewEngine(db)

	g.GET("", func(c echo.Context) error {
		var filter orderRepo.ListFilter
		if err := api.DecodeQuery(c, &filter); err != nil {
			return api.Fail(c, err)
		}
		orders, err := engine.List(c.Request().Context(), filter)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, orders)
	})

	// GET /api/orders/check-stock?product_id=N&quantity=N – availability
	// preview without creating an order.
	g.GET("/check-stock", func(c echo.Context) error {
		var q struct {
			ProductID uint    `mapstructure:"product_id"`
			Quantity  float64 `mapstructure:"quantity"`
		}
		if err := api.DecodeQuery(c, &q); err != nil {
			return api.Fail(c, err)
		}
		if q.ProductID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id is required"})
		}
		if q.Quantity == 0 {
			q.Quantity = 1
		}
		checks, err := engine.CheckStock(c.Request().Context(), q.ProductID, q.Quantity)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, checks)
	})

	g.GET("/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		o, err := engine.Get(c.Request().Context(), id)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, o)
	})

	g.POST("", func(c echo.Context) error {
		var body struct {
			ProductID    uint    `json:"product_id"`
			Quantity     float64 `json:"quantity"`
			CustomerName string  `json:"customer_name"`
			DueDate      string  `json:"due_date"`
			Priority     int     `json:"priority"`
			Notes        string  `json:"notes"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		due, err := parseDueDate(body.DueDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "due_date must be YYYY-MM-DD"})
		}
		res, err := engine.Create(c.Request().Context(), orderService.CreateRequest{
			ProductID:    body.ProductID,
			Quantity:     body.Quantity,
			CustomerName: body.CustomerName,
			DueDate:      due,
			Priority:     body.Priority,
			Notes:        body.Notes,
		})
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusCreated, echo.Map{
			"id":        res.Order.OrderID,
			"number":    res.Order.Number,
			"shortages": res.Shortages,
		})
	})

	g.PUT("/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var body struct {
			CustomerName string `json:"customer_name"`
			DueDate      string `json:"due_date"`
			Priority     int    `json:"priority"`
			Notes        string `json:"notes"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		due, err := parseDueDate(body.DueDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "due_date must be YYYY-MM-DD"})
		}
		if body.Priority == 0 {
			body.Priority = 2
		}
		var dueValue interface{}
		if due != nil {
			dueValue = *due
		}
		err = engine.UpdateHeader(c.Request().Context(), id, orderRepo.HeaderUpdate{
			CustomerName: body.CustomerName,
			DueDate:      dueValue,
			Priority:     body.Priority,
			Notes:        body.Notes,
		})
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "order updated"})
	})

	// DELETE cancels; only pending orders qualify.
	g.DELETE("/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		if err := engine.Cancel(c.Request().Context(), id); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "order cancelled"})
	})

	g.POST("/:id/start", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		if err := engine.Start(c.Request().Context(), id); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "production started"})
	})

	g.POST("/:id/advance", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var body struct {
			StationID uint   `json:"station_id"`
			Notes     string `json:"notes"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.StationID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "station_id is required"})
		}
		state, err := engine.Advance(c.Request().Context(), id, body.StationID, body.Notes)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"state": state})
	})

	g.POST("/:id/skip", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var body struct {
			StationID uint   `json:"station_id"`
			Reason    string `json:"reason"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.StationID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "station_id is required"})
		}
		if err := engine.Skip(c.Request().Context(), id, body.StationID, body.Reason); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "station skipped"})
	})

	g.POST("/:id/services/:service_id/sent", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		serviceID, err := api.ParseID(c, "service_id")
		if err != nil {
			return api.Fail(c, err)
		}
		if err := engine.MarkServiceSent(c.Request().Context(), id, serviceID); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "service marked sent"})
	})

	g.POST("/:id/services/:service_id/received", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		serviceID, err := api.ParseID(c, "service_id")
		if err != nil {
			return api.Fail(c, err)
		}
		state, err := engine.MarkServiceReceived(c.Request().Context(), id, serviceID)
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"state": state})
	})
}
