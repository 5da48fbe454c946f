package categories

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/api"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	categoryRepo "github.com/nunomansilhas/ProduFlow/model/repository/category"
)

func init() {
	api.RegisterModule(RegisterCategoryRoutes)
}

func RegisterCategoryRoutes(apiGroup *echo.Group, db *gorm.DB) {
	g := apiGroup.Group("/categories")
	repo := categoryRepo.NewCategoryRepository(db)

	g.GET("", func(c echo.Context) error {
		categories, err := repo.List(c.Request().Context(), c.QueryParam("kind"))
		if err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, categories)
	})

	g.POST("", func(c echo.Context) error {
		var body struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		if body.Kind == "" {
			body.Kind = "product"
		}
		cat := entity.Category{Name: body.Name, Kind: body.Kind}
		if err := repo.Create(c.Request().Context(), &cat); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusCreated, cat)
	})

	g.PUT("/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		var body struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		cat := entity.Category{CategoryID: id, Name: body.Name, Kind: body.Kind}
		if err := repo.Update(c.Request().Context(), &cat); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "category updated"})
	})

	g.DELETE("/:id", func(c echo.Context) error {
		id, err := api.ParseID(c, "id")
		if err != nil {
			return api.Fail(c, err)
		}
		if err := repo.Delete(c.Request().Context(), id); err != nil {
			return api.Fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "category deleted"})
	})
}
