package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/adapters/kb"
	"github.com/helpdeskhq/support-triage/internal/config"
	"github.com/helpdeskhq/support-triage/internal/core"
)

// KnowledgeBaseFactory creates knowledge-base stores based on configuration
type KnowledgeBaseFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewKnowledgeBaseFactory creates a new knowledge-base factory
func NewKnowledgeBaseFactory(cfg *config.Config, logger *zap.Logger) *KnowledgeBaseFactory {
	return &KnowledgeBaseFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateKnowledgeBase creates a knowledge-base store based on the configuration
func (f *KnowledgeBaseFactory) CreateKnowledgeBase() (core.KnowledgeBase, error) {
	kbType := f.cfg.GetString("kb.type")

	switch kbType {
	case "memory":
		var entries []core.FAQEntry
		if err := f.cfg.UnmarshalKey("kb.entries", &entries); err != nil {
			return nil, fmt.Errorf("failed to parse kb.entries: %w", err)
		}
		return kb.NewMemoryStore(entries, f.logger), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("kb.sqlite_path")
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return kb.NewSQLiteStore(sqlitePath, f.logger)
	case "mysql":
		mysqlDSN := f.cfg.GetString("kb.mysql_dsn")
		return kb.NewMySQLStore(mysqlDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported knowledge base type: %s", kbType)
	}
}
