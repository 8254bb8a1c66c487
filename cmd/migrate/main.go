package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mmdatafocus/crm_backend/config"
	"github.com/mmdatafocus/crm_backend/models"
	"github.com/sirupsen/logrus"
)

// Runs AutoMigrate as a one-off job, for deployments that start the server with SKIP_MIGRATIONS=true.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg := config.LoadConfig()
	logger := config.GetLogger()
	db, err := config.ConnectDatabaseWithRetry(ctx, cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database not connected: %v\n", err)
		os.Exit(1)
	}
	defer config.CloseDatabase(db)

	if err := models.MigrateTable(db); err != nil {
		config.LogError(logger, "migrate", "main", "MigrateTable", nil, err)
		os.Exit(1)
	}
	logger.WithFields(logrus.Fields{"field": "migrations"}).Info("migrations applied")
}
