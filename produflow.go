//go:build !cli
// +build !cli

package main

import (
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nunomansilhas/ProduFlow/api"
	"github.com/nunomansilhas/ProduFlow/config"
	"github.com/nunomansilhas/ProduFlow/core/auth"

	_ "github.com/nunomansilhas/ProduFlow/api/alerts"
	_ "github.com/nunomansilhas/ProduFlow/api/bom"
	_ "github.com/nunomansilhas/ProduFlow/api/categories"
	_ "github.com/nunomansilhas/ProduFlow/api/dashboard"
	_ "github.com/nunomansilhas/ProduFlow/api/materials"
	_ "github.com/nunomansilhas/ProduFlow/api/orders"
	_ "github.com/nunomansilhas/ProduFlow/api/products"
	_ "github.com/nunomansilhas/ProduFlow/api/services"
	_ "github.com/nunomansilhas/ProduFlow/api/stations"
	_ "github.com/nunomansilhas/ProduFlow/api/stock"
	_ "github.com/nunomansilhas/ProduFlow/api/suppliers"
	_ "github.com/nunomansilhas/ProduFlow/custom"
)

func main() {
	config.LoadEnv()
	config.LoadAppConfig()

	config.InitRedis()
	redisStatus := "Redis not configured or not reachable, caching disabled."
	if config.RedisClient != nil {
		err := config.RedisClient.Ping(config.RedisCtx()).Err()
		if err == nil {
			redisStatus = "Redis connection successful."
		} else {
			config.RedisClient = nil // Disable Redis if not reachable
			redisStatus = "Redis configured but not reachable, caching disabled."
		}
	}
	log.Println(redisStatus)

	db, err := config.NewDB()
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}

	sqldb, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get DB instance: %v", err)
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	log.Println("Database connection successful.")

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start).Milliseconds()
			c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
			return err
		}
	})

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	apiGroup := e.Group("/api")
	apiGroup.Use(auth.Middleware())
	api.ApplyModules(apiGroup, db)
	api.ApplyRoutes(e, db)

	// ASCII banner on start (random font each run)
	fonts := []string{"banner", "big", "block", "slant", "standard", "small", "shadow", "speed", "thick", "doom", "larry3d", "rectangles"}
	fig := figure.NewFigure("ProduFlow", fonts[rand.Intn(len(fonts))], true)
	fig.Print()

	port := config.AppConfig.Port
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on :%s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
