package collector

import (
	"fmt"

	"github.com/qepting91/weibo-scraper/internal/config"
	"github.com/qepting91/weibo-scraper/internal/domain"
	"github.com/rs/zerolog"
)

// NewCollector selects the correct implementation based on the mode
func NewCollector(cfg *config.Config, log zerolog.Logger) (domain.Collector, error) {
	switch cfg.Mode {
	case config.ModePublic:
		return NewPublicClient(cfg.BaseURL, cfg.UserAgent, cfg.Timeout, cfg.RequestInterval, log)
	case config.ModeMock:
		return NewMockClient(cfg.MockPostsPerPage), nil
	default:
		return nil, fmt.Errorf("unknown collector mode: %s (use 'public' or 'mock')", cfg.Mode)
	}
}
