// Package service composes requests against a configured backend, executes
// them once over a transport and classifies the outcome.
package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kochabx/netservice/errors"
	"github.com/kochabx/netservice/log"
	"github.com/kochabx/netservice/metrics"
	"github.com/kochabx/netservice/transport"
)

// Executor runs descriptors
type Executor interface {
	Execute(ctx context.Context, d Descriptor) *Future
}

// Service executes requests against one backend
type Service struct {
	config          *Configuration
	transport       transport.Transport
	logger          *log.Logger
	metrics         *metrics.Client
	requestIDHeader string
}

// Option configures a Service
type Option func(*Service)

// WithTransport replaces the default net/http transport
func WithTransport(t transport.Transport) Option {
	return func(s *Service) {
		s.transport = t
	}
}

// WithLogger sets the logger; the global logger is used otherwise
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics records executions on c
func WithMetrics(c *metrics.Client) Option {
	return func(s *Service) {
		s.metrics = c
	}
}

// WithRequestIDHeader sends the execution id under header unless the request already sets it
func WithRequestIDHeader(header string) Option {
	return func(s *Service) {
		s.requestIDHeader = http.CanonicalHeaderKey(header)
	}
}

// New creates a Service for cfg
func New(cfg *Configuration, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, errors.InvalidConfiguration("configuration cannot be nil")
	}

	s := &Service{
		config: cfg,
		logger: log.G,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = log.Nop()
	}
	if s.transport == nil {
		s.transport = transport.NewHTTP(transport.WithLogger(s.logger))
	}
	return s, nil
}

// Configuration returns the configuration the service composes against.
// Its default knobs may be adjusted while the service is in use.
func (s *Service) Configuration() *Configuration {
	return s.config
}

// Execute composes d and submits it to the transport in the background. A
// composition error resolves the future immediately without touching the
// transport. Cancelling ctx cancels the future.
func (s *Service) Execute(ctx context.Context, d Descriptor) *Future {
	id := uuid.NewString()

	wire, err := Compose(s.config, d)
	if err != nil {
		method := MethodGet.String()
		if !isNil(d) {
			method = d.Method().String()
		}
		s.metrics.Rejected(method, outcomeLabel(err))
		s.logger.Warn().Err(err).Str("id", id).Msg("request rejected before submission")
		return failedFuture(err)
	}
	if s.requestIDHeader != "" {
		if _, ok := wire.Header[s.requestIDHeader]; !ok {
			wire.Header[s.requestIDHeader] = id
		}
	}

	execCtx, cancel := context.WithCancel(ctx)
	f := newFuture(cancel)
	stop := context.AfterFunc(ctx, func() { f.Cancel() })

	s.logger.Debug().
		Str("id", id).
		Str("method", wire.Method).
		Str("url", wire.URL.String()).
		Interface("headers", wire.Header).
		Dur("timeout", wire.Timeout).
		Stringer("cache_policy", wire.CachePolicy).
		Msg("request submitted")

	finish := s.metrics.Start(wire.Method)
	go func() {
		defer cancel()
		defer stop()

		start := time.Now()
		raw, err := s.transport.Do(execCtx, wire)
		if f.State() == StateCancelled {
			finish(outcomeLabel(errors.ErrCancelled))
			s.logger.Debug().Str("id", id).Dur("elapsed", time.Since(start)).Msg("request cancelled")
			return
		}

		resp, err := Classify(raw, err)
		if !f.resolve(resp, err) {
			// cancelled between the transport returning and classification
			finish(outcomeLabel(errors.ErrCancelled))
			return
		}

		finish(outcomeLabel(err))
		s.logResult(id, wire, raw, err, time.Since(start))
	}()

	return f
}

func (s *Service) logResult(id string, wire *transport.Request, raw transport.Response, err error, elapsed time.Duration) {
	outcome := OutcomeOf(raw)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("id", id).
			Str("method", wire.Method).
			Str("url", wire.URL.String()).
			Stringer("outcome", outcome).
			Dur("elapsed", elapsed).
			Msg("request failed")
		return
	}

	evt := s.logger.Debug().
		Str("id", id).
		Str("method", wire.Method).
		Str("url", wire.URL.String()).
		Stringer("outcome", outcome).
		Dur("elapsed", elapsed)
	if httpResp, ok := raw.(*transport.HTTPResponse); ok {
		evt = evt.Bool("from_cache", httpResp.FromCache)
	}
	evt.Msg("request succeeded")
}

// outcomeLabel is the metrics label for a resolution
func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	return strings.ToLower(errors.Reason(err))
}
