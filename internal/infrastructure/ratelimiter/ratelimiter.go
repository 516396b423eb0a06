package ratelimiter

import (
	"context"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

type WindowConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	BlockDuration     time.Duration
}

// StrictWindow is for sensitive endpoints such as mail.
func StrictWindow() WindowConfig {
	return WindowConfig{
		RequestsPerWindow: 10,
		Window:            time.Minute,
		BlockDuration:     15 * time.Minute,
	}
}

// ModerateWindow is for queue mutations.
func ModerateWindow() WindowConfig {
	return WindowConfig{
		RequestsPerWindow: 60,
		Window:            time.Minute,
		BlockDuration:     5 * time.Minute,
	}
}

func LenientWindow() WindowConfig {
	return WindowConfig{
		RequestsPerWindow: 200,
		Window:            time.Minute,
		BlockDuration:     2 * time.Minute,
	}
}
