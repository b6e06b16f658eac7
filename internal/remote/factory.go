package remote

import (
	"fmt"

	"github.com/qepting91/reddit-scrubber/internal/domain"
)

// NewCapability selects the capability implementation for the given mode:
// "api" talks to Reddit, "mock" runs the pipeline against synthetic data.
func NewCapability(mode, id, secret, username, password, userAgent string) (domain.Capability, error) {
	switch mode {
	case "api":
		return NewClient(id, secret, username, password, userAgent)
	case "mock":
		m := NewMock()
		m.SeedDemo(120)
		return m, nil
	default:
		return nil, fmt.Errorf("unknown SCRUBBER_MODE: %s (use 'api' or 'mock')", mode)
	}
}
