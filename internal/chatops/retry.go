package chatops

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dynoinc/respond/internal/otel/semconv"
)

// isRetryableError reports whether a Slack call failed for a reason that may
// clear up on its own: rate limiting, 5xx responses or network blips. API
// answers such as channel_not_found are final.
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// slack.RateLimitedError and slack.StatusCodeError both implement this.
	var retryable interface{ Retryable() bool }
	if errors.As(err, &retryable) {
		return retryable.Retryable()
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func (e *Engine) newBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.cfg.RetryInitialInterval
	bo.MaxElapsedTime = 0
	return backoff.WithMaxRetries(bo, uint64(e.cfg.RetryMaxAttempts))
}

// call runs one Slack API method with bounded retries. Every failure that is
// not a cancellation is returned wrapped in ErrRemoteUnavailable, with the
// Slack error kept in the chain so callers can still inspect its code.
func (e *Engine) call(ctx context.Context, method string, op func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "slack "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(semconv.SlackMethodKey.String(method)))
	defer span.End()

	err := backoff.Retry(func() error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !isRetryableError(err) {
			return backoff.Permanent(err)
		}
		e.metrics.add(ctx, e.metrics.retries, semconv.SlackMethodKey.String(method))
		return err
	}, backoff.WithContext(e.newBackOff(), ctx))
	e.metrics.add(ctx, e.metrics.remoteCalls, semconv.SlackMethodKey.String(method), outcome(err))

	if err == nil {
		return nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", method, ctxErr)
	}
	return fmt.Errorf("%s: %w: %w", method, ErrRemoteUnavailable, err)
}

const defaultRetryInitialInterval = 200 * time.Millisecond
