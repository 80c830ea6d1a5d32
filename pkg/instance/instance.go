package instance

import (
	"os"

	"github.com/angelmondragon/packfinderz-metrics/pkg/env"
)

// ID identifies the running process in logs: the platform dyno name, an
// explicit WORKER_ID, the hostname, or "local" in that order.
func ID() string {
	if id := env.Get("DYNO", env.Get("WORKER_ID", "")); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
