package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/satquest-app/satquest_api/model"
)

// SqliteService is the device-local progress store: a durable key-value
// table holding one serialized snapshot per identity. It is the engine's
// durability boundary; the hosted store is synced best-effort on top.
type SqliteService struct {
	context.DefaultService
	db *gorm.DB

	database string
}

const SQLITE_SVC = "sqlite_svc"

// Id returns Service ID
func (ds SqliteService) Id() string {
	return SQLITE_SVC
}

// Db Access to raw SqliteService db
func (ds SqliteService) Db() *gorm.DB {
	return ds.db
}

// Configure the service
func (ds *SqliteService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("LOCAL_DB_PATH")
	if ds.database == "" {
		ds.database = "satquest_local.db"
	}

	return ds.DefaultService.Configure(ctx)
}

// Start the service and open connection to the database
// Migrate any tables that have changed since last runtime
func (ds *SqliteService) Start() (err error) {
	ds.db, err = gorm.Open(sqlite.Open(ds.database), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return err
	}

	err = ds.db.AutoMigrate(&model.LocalProgress{})
	if err != nil {
		log.Printf("Failed to migrate local database: %v", err)
		return err
	}

	log.Println("Local progress database connected and migrated successfully")
	return nil
}

func (ds *SqliteService) Shutdown() {
}

// GetLocalProgress returns (nil, nil) when no snapshot exists yet.
func (ds *SqliteService) GetLocalProgress(identity string) (*model.LocalProgress, error) {
	var row model.LocalProgress
	err := ds.db.Where("identity = ?", identity).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return &row, nil
}

func (ds *SqliteService) SetLocalProgress(identity string, snapshot json.RawMessage) error {
	row := &model.LocalProgress{
		Identity:  identity,
		Snapshot:  snapshot,
		UpdatedAt: time.Now(),
	}
	err := ds.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identity"}},
		UpdateAll: true,
	}).Create(row).Error
	if err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *SqliteService) ClearLocalProgress(identity string) error {
	err := ds.db.Where("identity = ?", identity).Delete(&model.LocalProgress{}).Error
	if err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *SqliteService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound // 404
		errorType = "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict // 409
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError // 500
		errorType = "TRANSACTION_ERROR"
	default:
		// Check for SQLite-specific errors
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			statusCode = http.StatusConflict // 409
			errorType = "UNIQUE_CONSTRAINT"
		} else if strings.Contains(err.Error(), "no such table") {
			statusCode = http.StatusInternalServerError // 500
			errorType = "SCHEMA_ERROR"
		} else {
			statusCode = http.StatusInternalServerError // 500
			errorType = "INTERNAL_ERROR"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Local database error occurred")
	} else {
		logEntry.Warn("Local database operation failed")
	}

	return fmt.Errorf("%s: %w", errorType, err)
}
