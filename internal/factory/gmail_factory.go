package factory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/helpdeskhq/support-triage/internal/adapters/gmail"
	"github.com/helpdeskhq/support-triage/internal/auth"
	"github.com/helpdeskhq/support-triage/internal/config"
	"github.com/helpdeskhq/support-triage/internal/retry"
)

// GmailFactory creates the Gmail provider and the token manager that feeds
// its credential.
type GmailFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewGmailFactory creates a new Gmail factory
func NewGmailFactory(cfg *config.Config, logger *zap.Logger) *GmailFactory {
	return &GmailFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTokenManager loads the OAuth client credentials and the stored token
// and wraps them in a token manager that persists refreshed tokens back to
// the token file.
func (f *GmailFactory) CreateTokenManager(ctx context.Context) (*auth.Manager, error) {
	gmailCfg := f.cfg.GetGmail()

	credBytes, err := os.ReadFile(gmailCfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(credBytes, gmailapi.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	token, err := readTokenFile(gmailCfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	manager := auth.NewManager(oauthCfg.TokenSource(ctx, token), token, f.logger)
	manager.OnRefresh(func(refreshed *oauth2.Token) {
		if err := writeTokenFile(gmailCfg.TokenFile, refreshed); err != nil {
			f.logger.Error("Failed to persist refreshed token", zap.Error(err))
		}
	})

	return manager, nil
}

// CreateProvider creates the Gmail email provider
func (f *GmailFactory) CreateProvider(ctx context.Context, tokens *auth.Manager, retryOpts retry.Options) (*gmail.Provider, error) {
	return gmail.NewProvider(ctx, tokens, retryOpts, f.logger)
}

func readTokenFile(path string) (*oauth2.Token, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(b, token); err != nil {
		return nil, err
	}
	return token, nil
}

func writeTokenFile(path string, token *oauth2.Token) error {
	b, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0600)
}
