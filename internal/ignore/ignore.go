// Package ignore skips triage for configured sender domains, typically the
// company's own domains and no-reply automation.
package ignore

import (
	"strings"

	"go.uber.org/zap"
)

// Checker reports whether a sender's domain is on the ignore list
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new ignore checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make([]string, len(domains))
	for i, domain := range domains {
		normalized[i] = strings.ToLower(strings.TrimSpace(domain))
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized ignored-domain checker", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// IsIgnored checks if the sender's domain is on the ignore list. Senders
// without a parseable domain are never ignored.
func (c *Checker) IsIgnored(sender string) bool {
	if len(c.domains) == 0 {
		return false
	}

	// The sender may be a bare address or a display-name form
	addr := sender
	if start := strings.LastIndex(sender, "<"); start != -1 {
		if end := strings.LastIndex(sender, ">"); end > start {
			addr = sender[start+1 : end]
		}
	}

	parts := strings.Split(addr, "@")
	if len(parts) != 2 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(parts[1]))

	for _, ignored := range c.domains {
		if ignored == domain {
			if c.logger != nil {
				c.logger.Debug("Sender domain is ignored",
					zap.String("domain", domain),
					zap.String("sender", sender))
			}
			return true
		}
	}

	return false
}
