package catalogmedia

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ProbePolicy bounds the existence-check retry loop. Retries is the
// number of additional attempts after the first; zero means probe
// exactly once and a negative value selects the default.
type ProbePolicy struct {
	Retries int           // additional attempts after the first (0 = probe once, <0 = default 3)
	Delay   time.Duration // fixed delay between attempts (default 1s)
}

// DefaultProbePolicy matches the behavior the handlers were tuned
// against: three retries, one second apart.
func DefaultProbePolicy() ProbePolicy {
	return ProbePolicy{Retries: 3, Delay: time.Second}
}

// Prober wraps a BlobStore existence check with a bounded fixed-delay
// retry. The retry exists to tolerate read-after-write lag in the
// remote store shortly after an upload: a definitive "not found" is
// re-checked up to Retries times before the key is treated as absent.
// It is not a generic retry policy; authentication and configuration
// errors are fatal and returned immediately.
type Prober struct {
	store   BlobStore
	backend string
	policy  ProbePolicy
	logger  *slog.Logger
}

// NewProber creates a prober for the named backend. A negative retry
// count or a non-positive delay falls back to the default; Retries of
// zero is honored as a single attempt.
func NewProber(backend string, store BlobStore, policy ProbePolicy) *Prober {
	if policy.Retries < 0 {
		policy.Retries = DefaultProbePolicy().Retries
	}
	if policy.Delay <= 0 {
		policy.Delay = DefaultProbePolicy().Delay
	}
	return &Prober{
		store:   store,
		backend: backend,
		policy:  policy,
		logger:  slog.Default(),
	}
}

// Exists reports whether objectKey is present in the backend. Absence
// is a normal (false, nil) result. A non-nil error means the check
// could not be performed: ErrBackendAuth immediately, or
// ErrBackendUnavailable after the retry budget is spent on transport
// failures.
func (p *Prober) Exists(ctx context.Context, objectKey string) (bool, error) {
	var lastErr error
	for attempt := 0; attempt <= p.policy.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(p.policy.Delay):
			}
		}

		exists, err := p.store.Exists(ctx, objectKey)
		if err != nil {
			if errors.Is(err, ErrBackendAuth) {
				return false, err
			}
			lastErr = err
			p.logger.Warn("existence check failed, retrying",
				"backend", p.backend, "key", objectKey, "attempt", attempt, "error", err)
			continue
		}
		if exists {
			return true, nil
		}
		// Definitive not-found: retry in case the store is lagging a
		// just-finished upload.
		lastErr = nil
	}

	if lastErr != nil {
		return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, lastErr)
	}
	return false, nil
}
