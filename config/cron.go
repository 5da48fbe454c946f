package config

import (
	"github.com/nunomansilhas/ProduFlow/cron/jobs"
)

// Map of job names to job functions
type CronJob struct {
	Schedule string
	Job      func(...string)
}

var CronJobs = map[string]CronJob{
	"stockalerts": {Schedule: "0 * * * *", Job: jobs.RecheckStockAlerts},
	"alertspurge": {Schedule: "30 3 * * *", Job: jobs.PurgeOldAlerts},
	// Add more jobs here
}
