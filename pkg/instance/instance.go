package instance

import (
	"os"

	"github.com/quotewise/quotewise-backend/pkg/env"
)

// GetID returns the process identifier used in logs: QUOTEWISE_INSTANCE_ID,
// then DYNO, then the hostname.
func GetID() string {
	if id := env.Get("QUOTEWISE_INSTANCE_ID", env.Get("DYNO", "")); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
