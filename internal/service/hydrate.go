// Package service contains the business logic layer of the application.
//
// THE HYDRATION FLOW:
// Every page needs the same thing from GitHub: fetch a resource once, map it
// into a display-ready value, and fall back to a placeholder when anything
// goes wrong. Rather than repeating that in each handler, the flow lives in
// one generic routine, Hydrate, and the profile and repository services are
// thin wrappers around it.
//
//	Handler → PortfolioService.Load → ProfileService / RepositoryService → github.Client
//
// Nothing here is HTTP-aware: a failed fetch never turns into an error page,
// it turns into a Result carrying the fallback plus the diagnostic error.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/portfolio/internal/apperror"
)

// Result is the outcome of one hydration.
// Data is always usable: on failure it holds the fallback value.
type Result[T any] struct {
	Data T
	Err  error
}

// OK reports whether Data came from the upstream rather than the fallback.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// HydrateOptions configures a single hydration.
type HydrateOptions struct {
	Logger *slog.Logger
	// Timeout bounds the fetch. Zero means no bound beyond the caller's context.
	Timeout time.Duration
}

// Hydrate runs fetch exactly once and returns its value, or fallback when it
// fails.
//
// Each call is an independent "mount": it gets its own xid so concurrent
// hydrations of the same resource can be told apart in the logs. Failures
// are logged once at Warn and never returned as a panic or a partial value.
//
// If ctx is cancelled while the fetch is in flight the owner has gone away
// (the client disconnected); whatever arrives late is discarded and the
// fallback is kept.
func Hydrate[T any](ctx context.Context, opts HydrateOptions, resource string, fallback T, fetch func(context.Context) (T, error)) Result[T] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(
		slog.String("resource", resource),
		slog.String("mount", xid.New().String()),
	)

	fetchCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	data, err := fetch(fetchCtx)

	if ctxErr := ctx.Err(); ctxErr != nil {
		logger.Debug("hydration discarded, owner is gone",
			slog.String("error", ctxErr.Error()),
		)
		return Result[T]{Data: fallback, Err: ctxErr}
	}

	if err != nil {
		logger.Warn("hydration failed, using fallback",
			slog.String("kind", apperror.Kind(err)),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)),
		)
		return Result[T]{Data: fallback, Err: err}
	}

	logger.Debug("hydration succeeded", slog.Duration("duration", time.Since(start)))
	return Result[T]{Data: data}
}
