package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"walkforward/src/datamodels"
	"walkforward/src/utils/errors"
)

// WalkforwardDatabase persists run manifests together with their window and
// trade records. Persistence is optional; the file-backed run store remains
// the source of truth for artifacts.
type WalkforwardDatabase interface {
	RunsDatabase
	NotifyRunStatus(ctx context.Context, runID string, status string) error
	Notifier() *NotificationManager
	Close() error
}

type databaseImplementation struct {
	gormDb              *gorm.DB
	originID            string
	notificationManager *NotificationManager
}

func NewDBConnection(dbConfig datamodels.PostgresConfig) (WalkforwardDatabase, error) {
	dbConnString := MakeConnectionString(&dbConfig)
	originID := uuid.NewString()

	gormConfig := &gorm.Config{
		Logger: slogGorm.New(),
	}

	gormDb, err := gorm.Open(postgres.Open(dbConnString), gormConfig)
	if err != nil {
		return nil, errors.WrapE(err, errors.New("cannot create gorm engine"))
	}

	if err := gormDb.AutoMigrate(DbTables...); err != nil {
		return nil, errors.WrapE(err, errors.New("cannot migrate tables"))
	}

	slog.Info("Connected to database", "host", dbConfig.Host, "database", dbConfig.Database, "user", dbConfig.User)

	notifyManager, err := NewNotificationManager(dbConnString, originID)
	if err != nil {
		return nil, errors.WrapE(err, errors.New("cannot create notify manager"))
	}

	return &databaseImplementation{
		gormDb:              gormDb,
		originID:            originID,
		notificationManager: notifyManager,
	}, nil
}

func (d *databaseImplementation) Notifier() *NotificationManager {
	return d.notificationManager
}

func (d *databaseImplementation) Close() error {
	if d.notificationManager != nil {
		if err := d.notificationManager.Close(); err != nil {
			slog.Error("Failed to close notification manager", "error", err)
		}
	}
	sqlDb, err := d.gormDb.DB()
	if err != nil {
		return err
	}
	return sqlDb.Close()
}

func MakeConnectionString(dbConfig *datamodels.PostgresConfig) string {
	if dbConfig.URI != "" { // an explicit URI wins
		return dbConfig.URI
	}

	sslMode := dbConfig.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host, dbConfig.Port, dbConfig.User, dbConfig.Password, dbConfig.Database, sslMode)
}
