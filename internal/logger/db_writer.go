package logger

import (
	"context"
	"fmt"
	"time"

	common_models "go-pms/internal/common/models"
	"go-pms/internal/config"
	"go-pms/internal/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to our worker
type LogEntry struct {
	Level          zapcore.Level
	Message        string
	OrganizationID string
	Caller         string
}

// DBLogWriter handles the async writing
type DBLogWriter struct {
	db      *mongo.Database
	logChan chan LogEntry
	appId   string
}

// NewDBLogWriter initializes the worker
func NewDBLogWriter(mongodb *database.MongodbDB, cfg *config.Config) *DBLogWriter {
	writer := &DBLogWriter{
		db:      mongodb.DB,
		logChan: make(chan LogEntry, 1000),
		appId:   cfg.AppId,
	}

	go writer.processLogs()

	return writer
}

// AddLog is called by our Zap hook
func (w *DBLogWriter) AddLog(entry LogEntry) {
	select {
	case w.logChan <- entry:
	default:
		// Channel full: drop rather than block the request path
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

func (w *DBLogWriter) processLogs() {
	for entry := range w.logChan {
		logRecord := common_models.Log{
			Message:        entry.Message,
			Level:          entry.Level.String(),
			Caller:         entry.Caller,
			OrganizationID: entry.OrganizationID,
			CreatedOnUtc:   time.Now().UTC(),
		}

		// Insert errors are swallowed; logging must never take the app down
		w.db.Collection("logs").InsertOne(context.Background(), logRecord)
	}
}
