package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kochabx/netservice/errors"
	"github.com/kochabx/netservice/log"
	"github.com/kochabx/netservice/metrics"
	"github.com/kochabx/netservice/transport"
)

// recorder is a transport that answers with a fixed result and keeps the wire requests it saw
type recorder struct {
	mu    sync.Mutex
	seen  []*transport.Request
	resp  transport.Response
	err   error
	calls atomic.Int32
}

func (r *recorder) Do(_ context.Context, req *transport.Request) (transport.Response, error) {
	r.calls.Add(1)
	r.mu.Lock()
	r.seen = append(r.seen, req)
	r.mu.Unlock()
	return r.resp, r.err
}

func (r *recorder) last() *transport.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen[len(r.seen)-1]
}

func okResponse(body string) *transport.HTTPResponse {
	return &transport.HTTPResponse{StatusCode: http.StatusOK, Proto: "HTTP/1.1", Header: http.Header{}, Body: []byte(body)}
}

// blocking is a transport that parks until its context ends
type blocking struct {
	started  chan struct{}
	finished chan error
}

func newBlocking() *blocking {
	return &blocking{started: make(chan struct{}), finished: make(chan error, 1)}
}

func (b *blocking) Do(ctx context.Context, _ *transport.Request) (transport.Response, error) {
	close(b.started)
	<-ctx.Done()
	b.finished <- ctx.Err()
	return nil, ctx.Err()
}

// syncBuffer guards log output written from execution goroutines
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func newTestService(t *testing.T, tr transport.Transport, opts ...Option) *Service {
	t.Helper()
	svc, err := New(mustConfig(t, "https://api.example.com/v2"), append([]Option{WithTransport(tr), WithLogger(log.Nop())}, opts...)...)
	require.NoError(t, err)
	return svc
}

func TestNewRequiresConfiguration(t *testing.T) {
	_, err := New(nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfiguration))
}

func TestExecuteSuccess(t *testing.T) {
	tr := &recorder{resp: okResponse(`{"id":5}`)}
	svc := newTestService(t, tr)

	resp, err := svc.Execute(context.Background(), Get("/users/5")).Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Success(200), resp.Outcome())
	assert.Equal(t, `{"id":5}`, string(resp.Body()))

	assert.EqualValues(t, 1, tr.calls.Load())
	assert.Equal(t, "https://api.example.com/v2/users/5", tr.last().URL.String())
	assert.Equal(t, http.MethodGet, tr.last().Method)
	assert.Equal(t, DefaultTimeout, tr.last().Timeout)
}

func TestExecuteCompositionErrorSkipsTransport(t *testing.T) {
	tr := &recorder{resp: okResponse("")}
	svc := newTestService(t, tr)

	for name, d := range map[string]Descriptor{
		"invalid url": Get("/%zz"),
		"encoding":    Post("/x", make(chan int)),
		"method":      NewRequest("CONNECT", "/x"),
		"nil":         nil,
		"typed nil":   (*Request)(nil),
	} {
		t.Run(name, func(t *testing.T) {
			f := svc.Execute(context.Background(), d)
			select {
			case <-f.Done():
			default:
				t.Fatal("composition failure must resolve immediately")
			}
			assert.Equal(t, StateFailed, f.State())
			_, err := f.Result()
			assert.Error(t, err)
		})
	}

	_, err := svc.Execute(context.Background(), Get("/%zz")).Result()
	assert.True(t, errors.Is(err, errors.ErrInvalidURL))
	_, err = svc.Execute(context.Background(), Post("/x", func() {})).Result()
	assert.True(t, errors.Is(err, errors.ErrEncodingFailed))
	_, err = svc.Execute(context.Background(), (*Request)(nil)).Result()
	assert.True(t, errors.Is(err, errors.ErrMissingEndpoint))

	assert.Zero(t, tr.calls.Load())
}

func TestExecuteClassification(t *testing.T) {
	tests := []struct {
		name   string
		resp   transport.Response
		err    error
		target error
	}{
		{"nil response", nil, nil, errors.ErrNoResponse},
		{"transport error", nil, transport.ErrCacheMiss, errors.ErrNoResponse},
		{"non http", grpcResponse{}, nil, errors.ErrInvalidResponse},
		{"nil body", &transport.HTTPResponse{StatusCode: 200}, nil, errors.ErrEmptyData},
		{"failing status", &transport.HTTPResponse{StatusCode: 500, Body: []byte("oops")}, nil, errors.ErrHTTPStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, &recorder{resp: tt.resp, err: tt.err})
			f := svc.Execute(context.Background(), Get("/x"))

			resp, err := f.Wait(context.Background())
			assert.Nil(t, resp)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
			assert.Equal(t, StateFailed, f.State())
		})
	}
}

func TestExecuteCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	tr := newBlocking()
	svc := newTestService(t, tr)

	f := svc.Execute(context.Background(), Get("/slow"))
	var calls atomic.Int32
	f.OnComplete(func(*Response, error) { calls.Add(1) })

	<-tr.started
	require.True(t, f.Cancel())
	assert.ErrorIs(t, <-tr.finished, context.Canceled)

	resp, err := f.Wait(context.Background())
	assert.Nil(t, resp)
	assert.True(t, errors.Is(err, errors.ErrCancelled))
	assert.Equal(t, StateCancelled, f.State())
	assert.False(t, f.Cancel())
	assert.Zero(t, calls.Load())
}

func TestExecuteParentContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	tr := newBlocking()
	svc := newTestService(t, tr)

	ctx, cancel := context.WithCancel(context.Background())
	f := svc.Execute(ctx, Get("/slow"))

	<-tr.started
	cancel()

	<-f.Done()
	assert.Equal(t, StateCancelled, f.State())
	assert.ErrorIs(t, <-tr.finished, context.Canceled)
}

func TestExecuteCancelRace(t *testing.T) {
	svc := newTestService(t, &recorder{resp: okResponse("x")})

	var counters []*atomic.Int32
	for range 100 {
		calls := new(atomic.Int32)
		f := svc.Execute(context.Background(), Get("/x"))
		f.OnComplete(func(*Response, error) { calls.Add(1) })
		if f.Cancel() {
			counters = append(counters, calls)
			continue
		}
		<-f.Done()
		assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	}

	time.Sleep(20 * time.Millisecond)
	for _, calls := range counters {
		assert.Zero(t, calls.Load())
	}
}

func TestExecuteRequestIDHeader(t *testing.T) {
	tr := &recorder{resp: okResponse("")}
	svc := newTestService(t, tr, WithRequestIDHeader("X-Request-Id"))

	_, err := svc.Execute(context.Background(), Get("/x")).Result()
	require.NoError(t, err)
	assert.Len(t, tr.last().Header["X-Request-Id"], 36)

	_, err = svc.Execute(context.Background(), Get("/x", WithHeader("X-Request-Id", "mine"))).Result()
	require.NoError(t, err)
	assert.Equal(t, "mine", tr.last().Header["X-Request-Id"])
}

func TestExecuteKnobsAreReadPerRequest(t *testing.T) {
	tr := &recorder{resp: okResponse("")}
	svc := newTestService(t, tr)

	_, err := svc.Execute(context.Background(), Get("/x")).Result()
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, tr.last().Timeout)

	svc.Configuration().SetDefaultTimeout(3 * time.Second)
	svc.Configuration().SetDefaultCachePolicy(transport.ReturnCacheDataElseLoad)

	_, err = svc.Execute(context.Background(), Get("/x")).Result()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, tr.last().Timeout)
	assert.Equal(t, transport.ReturnCacheDataElseLoad, tr.last().CachePolicy)
}

func TestExecuteMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.NewClient(reg, "test")
	require.NoError(t, err)

	svc := newTestService(t, &recorder{resp: &transport.HTTPResponse{StatusCode: 404, Body: []byte("nope")}}, WithMetrics(m))

	_, err = svc.Execute(context.Background(), Get("/missing")).Result()
	require.Error(t, err)
	_, err = svc.Execute(context.Background(), Get("/%zz")).Result()
	require.Error(t, err)

	assert.Eventually(t, func() bool {
		n, err := testutil.GatherAndCount(reg, "test_client_requests_total")
		return err == nil && n == 2
	}, time.Second, 5*time.Millisecond)

	inFlight := `
# HELP test_client_requests_in_flight Requests submitted to the transport and not yet resolved.
# TYPE test_client_requests_in_flight gauge
test_client_requests_in_flight 0
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(inFlight), "test_client_requests_in_flight"))
}

func TestExecuteLogsRedactedHeaders(t *testing.T) {
	out := &syncBuffer{}
	logger := log.NewWriter(out, log.WithLevel(zerolog.DebugLevel), log.WithHeaderRedaction())

	cfg := mustConfig(t, "https://api.example.com", WithDefaultHeader("Authorization", "Bearer s3cr3t-token"))
	svc, err := New(cfg, WithTransport(&recorder{resp: okResponse("")}), WithLogger(logger))
	require.NoError(t, err)

	_, err = svc.Execute(context.Background(), Get("/x")).Result()
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("request succeeded"))
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, out.String(), "request submitted")
	assert.NotContains(t, out.String(), "s3cr3t-token")
}

func TestServiceOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/users/5":
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"id":5,"name":"ada"}`)
		case "/v2/users":
			var in map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(in)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cfg := mustConfig(t, srv.URL+"/v2", WithDefaultHeader("Accept", "application/json"))
	svc, err := New(cfg, WithLogger(log.Nop()))
	require.NoError(t, err)
	ctx := context.Background()

	type user struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	t.Run("get", func(t *testing.T) {
		u, resp, err := Call[user](ctx, svc, Get("/users/5"))
		require.NoError(t, err)
		assert.Equal(t, user{ID: 5, Name: "ada"}, u)
		assert.Equal(t, Success(200), resp.Outcome())
	})

	t.Run("post", func(t *testing.T) {
		u, resp, err := Call[user](ctx, svc, Post("/users", user{Name: "grace"}))
		require.NoError(t, err)
		assert.Equal(t, "grace", u.Name)
		assert.Equal(t, http.StatusCreated, resp.StatusCode())
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Execute(ctx, Get("/nowhere")).Wait(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrHTTPStatus))

		resp, ok := ResponseFromError(err)
		require.True(t, ok)
		assert.Equal(t, Failure(404), resp.Outcome())
		text, ok := resp.AsText()
		require.True(t, ok)
		assert.Equal(t, "not found\n", text)
	})
}

func TestServiceOverHTTPNotFoundText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "not found")
	}))
	defer srv.Close()

	svc, err := New(mustConfig(t, srv.URL), WithLogger(log.Nop()))
	require.NoError(t, err)

	_, err = svc.Execute(context.Background(), Get("/missing")).Result()
	resp, ok := ResponseFromError(err)
	require.True(t, ok)
	assert.Equal(t, OutcomeFailure, resp.Outcome().Kind())
	assert.Equal(t, 404, resp.StatusCode())
	text, _ := resp.AsText()
	assert.Equal(t, "not found", text)
}
