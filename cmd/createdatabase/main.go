// Command createdatabase creates the configured database if it does not
// exist yet. It connects to the maintenance database on the same server, so
// it can run before the service database has ever been provisioned.
package main

import (
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"userdir-service/pkg/config"
	"userdir-service/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()

	db, err := gorm.Open(postgres.Open(cfg.DB.GetServerDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Fatal("Failed to connect to database server", zap.Error(err))
	}

	databaseName := cfg.DB.DBName

	var count int64
	if err := db.Raw("SELECT count(*) FROM pg_database WHERE datname = ?", databaseName).Scan(&count).Error; err != nil {
		log.Fatal("Failed to check for database", zap.Error(err))
	}

	if count > 0 {
		log.Info("Database already exists", zap.String("database", databaseName))
		return
	}

	// CREATE DATABASE does not support bind parameters
	if err := db.Exec("CREATE DATABASE " + quoteIdentifier(databaseName)).Error; err != nil {
		log.Fatal("Failed to create database", zap.Error(err))
	}

	log.Info("Database created successfully", zap.String("database", databaseName))
}

// quoteIdentifier quotes a Postgres identifier, doubling any embedded quotes
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
