// Package timeouts provides the deadlines applied to backend calls.
//
// Every dispatcher operation and controller action wraps its store call in
// context.WithTimeout using one of these values, so a stalled MongoDB or
// Cosmos request cannot hold a handler forever.
//
// Guidelines:
//   - Ping: health checks
//   - Read: filtered finds and single-record lookups
//   - Write: single-record updates, soft deletes, hard deletes
//   - Batch: multi-document creates (Cosmos inserts run in parallel under it)
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing  = 2 * time.Second
	DefaultRead  = 10 * time.Second
	DefaultWrite = 10 * time.Second
	DefaultBatch = 60 * time.Second
)

var mu sync.RWMutex

var (
	ping  = DefaultPing
	read  = DefaultRead
	write = DefaultWrite
	batch = DefaultBatch
)

func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

func Read() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return read
}

func Write() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return write
}

func Batch() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return batch
}

// Config holds timeout overrides. Zero values keep the current value.
type Config struct {
	Ping  time.Duration
	Read  time.Duration
	Write time.Duration
	Batch time.Duration
}

// Configure applies overrides. Call it during startup, before handlers run.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Read > 0 {
		read = cfg.Read
	}
	if cfg.Write > 0 {
		write = cfg.Write
	}
	if cfg.Batch > 0 {
		batch = cfg.Batch
	}
}

// Reset restores the defaults. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	read = DefaultRead
	write = DefaultWrite
	batch = DefaultBatch
}

// Current returns the active configuration, for startup logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Read: read, Write: write, Batch: batch}
}

// WithTimeout creates a context with timeout whose cancel function logs a
// warning when the deadline was hit.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "gruposet create")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
