package jobs

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	alertRepo "github.com/nunomansilhas/ProduFlow/model/repository/alert"
	stockService "github.com/nunomansilhas/ProduFlow/service/stock"
)

// defaultAlertRetentionDays is how long seen alerts stick around before the
// nightly purge removes them.
const defaultAlertRetentionDays = 30

// openDB opens its own connection from the same env contract as config.NewDB.
// This package cannot import config: config's schedule table imports it.
func openDB() (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	if os.Getenv("DB_DRIVER") == "sqlite" {
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "produflow.db"
		}
		return gorm.Open(sqlite.Open(path), cfg)
	}

	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		user := os.Getenv("MYSQL_USER")
		pass := os.Getenv("MYSQL_PASS")
		host := os.Getenv("MYSQL_HOST")
		port := os.Getenv("MYSQL_PORT")
		db := os.Getenv("MYSQL_DB")
		if port == "" {
			port = "3306"
		}
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=Local", user, pass, host, port, db)
	}
	return gorm.Open(mysql.Open(dsn), cfg)
}

// RecheckStockAlerts sweeps every material and rebuilds its low/negative
// stock alert state. Repairs drift after manual database edits.
func RecheckStockAlerts(args ...string) {
	db, err := openDB()
	if err != nil {
		log.Printf("[stockalerts] open db: %v", err)
		return
	}
	ledger := stockService.NewLedger(db)
	count, err := ledger.RecheckAll(context.Background())
	if err != nil {
		log.Printf("[stockalerts] recheck: %v", err)
		return
	}
	log.Printf("[stockalerts] rechecked %d materials", count)
}

// PurgeOldAlerts deletes seen alerts older than the retention window.
// Optional first arg overrides the retention in days.
func PurgeOldAlerts(args ...string) {
	days := defaultAlertRetentionDays
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			days = n
		}
	}

	db, err := openDB()
	if err != nil {
		log.Printf("[alertspurge] open db: %v", err)
		return
	}
	repo := alertRepo.NewAlertRepository(db)
	cutoff := time.Now().AddDate(0, 0, -days)
	removed, err := repo.PurgeSeen(context.Background(), cutoff)
	if err != nil {
		log.Printf("[alertspurge] purge: %v", err)
		return
	}
	log.Printf("[alertspurge] removed %d alerts older than %d days", removed, days)
}
