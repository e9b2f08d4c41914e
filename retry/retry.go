// Package retry runs gateway operations with bounded exponential back-off.
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/juju/clock"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"golang.org/x/xerrors"
)

const (
	maxJitter  = 250 * time.Millisecond
	maxBackoff = 10 * time.Second
)

// Policy describes how failed operations are retried.
type Policy struct {
	// The maximum number of attempts for each operation. Values < 1 are
	// treated as a single attempt.
	MaxAttempts int

	// A fixed wait between attempts. When zero, an exponential back-off
	// with jitter is used instead.
	Delay time.Duration

	// A clock instance for waiting between attempts. Defaults to the wall clock.
	Clock clock.Clock

	// An optional limiter that every attempt must acquire a token from.
	Limiter *rate.Limiter

	// Errors for which Permanent returns true are not retried.
	Permanent func(error) bool

	// The logger for retry notices. Defaults to a discarding logger.
	Logger *logrus.Entry
}

// Do invokes fn until it succeeds, returns a permanent error, the attempts
// are exhausted or ctx expires. Each call is wrapped in a tracing span named
// after op.
func (p Policy) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	return p.run(ctx, op, nil, fn)
}

// Resume is like Do for an operation whose first attempt already failed
// with failed. The failed attempt counts towards MaxAttempts.
func (p Policy) Resume(ctx context.Context, op string, failed error, fn func(context.Context) error) error {
	if failed == nil {
		return nil
	}
	return p.run(ctx, op, failed, fn)
}

func (p Policy) run(ctx context.Context, op string, failed error, fn func(context.Context) error) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "gateway."+op)
	defer func() {
		if err != nil {
			ext.Error.Set(span, true)
			span.SetTag("error.message", err.Error())
		}
		span.Finish()
	}()

	clk := p.Clock
	if clk == nil {
		clk = clock.WallClock
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		span.SetTag("attempts", attempt)
		if attempt == 1 && failed != nil {
			err = failed
		} else {
			if p.Limiter != nil {
				if err = p.Limiter.Wait(ctx); err != nil {
					return xerrors.Errorf("%s: rate limit: %w", op, err)
				}
			}
			if err = fn(ctx); err == nil {
				return nil
			}
		}

		if p.Permanent != nil && p.Permanent(err) {
			return err
		} else if attempt >= maxAttempts {
			return xerrors.Errorf("%s: giving up after %d attempts: %w", op, attempt, err)
		}

		wait := p.Delay
		if wait <= 0 {
			wait = expBackoff(attempt)
		}
		if p.Logger != nil {
			p.Logger.WithFields(logrus.Fields{
				"op":      op,
				"attempt": attempt,
				"err":     err.Error(),
			}).Warnf("operation failed; retrying after %s", wait)
		}

		select {
		case <-clk.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// expBackoff returns the time to wait after the i_th attempt:
//
// min(2^(attempt+1) ms + jitter, maxBackoff)
func expBackoff(attempt int) time.Duration {
	if attempt > 20 {
		return maxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(maxJitter)))
	backOff := time.Duration(2<<uint64(attempt))*time.Millisecond + jitter
	if backOff < maxBackoff {
		return backOff
	}

	return maxBackoff
}
