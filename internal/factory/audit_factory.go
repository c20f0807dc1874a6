package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/adapters/audit"
	"github.com/helpdeskhq/support-triage/internal/config"
	"github.com/helpdeskhq/support-triage/internal/core"
)

// AuditFactory creates audit sinks based on configuration
type AuditFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewAuditFactory creates a new audit factory
func NewAuditFactory(cfg *config.Config, logger *zap.Logger) *AuditFactory {
	return &AuditFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateAuditSink creates an audit sink based on the configuration
func (f *AuditFactory) CreateAuditSink() (core.AuditSink, error) {
	auditType := f.cfg.GetString("audit.type")

	switch auditType {
	case "memory":
		return audit.NewMemorySink(f.logger), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("audit.sqlite_path")
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return audit.NewSQLiteSink(sqlitePath, f.logger)
	default:
		return nil, fmt.Errorf("unsupported audit sink type: %s", auditType)
	}
}
