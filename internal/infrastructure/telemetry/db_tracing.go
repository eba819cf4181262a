package telemetry

import (
	"errors"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing
type DBTracingConfig struct {
	Enabled    bool
	LogFullSQL bool   // include query variables in spans (development only)
	DBSystem   string // default "postgresql"
}

// RegisterDBTracing installs the otelgorm plugin. Unique-key violations are
// recorded as span events instead of errors; the reconciliation engine
// recovers from them by switching to an update.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	system := cfg.DBSystem
	if system == "" {
		system = "postgresql"
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(system)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	if err := db.Callback().Create().After("gorm:create").Register("cdl:conflict_event", markConflict); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", system),
		zap.Bool("log_full_sql", cfg.LogFullSQL),
	)
	return nil
}

func markConflict(db *gorm.DB) {
	if db.Statement.Context == nil || !errors.Is(db.Error, gorm.ErrDuplicatedKey) {
		return
	}
	span := trace.SpanFromContext(db.Statement.Context)
	if !span.IsRecording() {
		return
	}
	span.AddEvent("unique_conflict", trace.WithAttributes(attribute.String("db.sql.table", db.Statement.Table)))
}
