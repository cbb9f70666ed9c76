package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"primecheck/logs"
	"primecheck/middleware"
	"primecheck/primes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingObserver struct {
	mu       sync.Mutex
	verdicts []string
}

func (o *recordingObserver) ObserveCheck(_ context.Context, verdict string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.verdicts = append(o.verdicts, verdict)
}

type testServer struct {
	handler  http.Handler
	checker  *primes.Checker
	observer *recordingObserver
	spans    *tracetest.SpanRecorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithLogger(t, logs.NewNop())
}

func newTestServerWithLogger(t *testing.T, l logs.OtelLogging) *testServer {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	checker := primes.NewChecker(primes.NewStats())
	obs := &recordingObserver{}
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("metrics"))
	})

	mux := http.NewServeMux()
	Register(mux, l, checker, obs, metricsHandler)

	return &testServer{
		handler:  middleware.TraceMiddleware("primecheck-test", l)(mux),
		checker:  checker,
		observer: obs,
		spans:    recorder,
	}
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec
}

func (s *testServer) lastSpanAttrs(t *testing.T) *attribute.Set {
	t.Helper()
	ended := s.spans.Ended()
	require.NotEmpty(t, ended)
	set := attribute.NewSet(ended[len(ended)-1].Attributes()...)
	return &set
}

func TestPrimeEndpoint(t *testing.T) {
	tests := []struct {
		path string
		body string
	}{
		{"/prime/2791", "2791 is a prime."},
		{"/prime/121", "121 is not a prime, is divisible by 11."},
		{"/prime/0", "Only natural numbers can be prime numbers."},
		{"/prime/-5", "Only natural numbers can be prime numbers."},
		{"/prime/1", "1 is not a prime."},
		{"/prime/2", "2 is a prime."},
		{"/prime/4", "4 is not a prime, it is divisible by 2."},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := s.get(tt.path)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
	assert.Equal(t, uint64(len(tests)), s.checker.ChecksPerformed())
	assert.Equal(t, int64(2791), s.checker.HighestPrimeSoFar())
	assert.Equal(t, []string{"prime", "not-prime", "invalid", "invalid", "not-prime", "prime", "not-prime"}, s.observer.verdicts)
}

func TestPrimeEndpoint_SpanAttributes(t *testing.T) {
	s := newTestServer(t)
	s.get("/prime/9")
	s.get("/prime/7")

	attrs := s.lastSpanAttrs(t)
	v, ok := attrs.Value(primes.AttrPerformedChecks)
	require.True(t, ok)
	assert.Equal(t, int64(2), v.AsInt64())
	v, _ = attrs.Value(primes.AttrNumber)
	assert.Equal(t, int64(7), v.AsInt64())
	v, _ = attrs.Value(primes.AttrIsPrime)
	assert.True(t, v.AsBool())
}

func TestPrimeEndpoint_VerdictStaysOnSpanAtInfoLevel(t *testing.T) {
	obs, logged := observer.New(zapcore.InfoLevel)
	s := newTestServerWithLogger(t, logs.NewOtelLogging(zap.New(obs)))
	s.get("/prime/121")

	attrs := s.lastSpanAttrs(t)
	v, ok := attrs.Value("log.message")
	require.True(t, ok)
	assert.Equal(t, "121 is not a prime, is divisible by 11.", v.AsString())
	v, _ = attrs.Value("log.level")
	assert.Equal(t, "INFO", v.AsString())

	for _, e := range logged.All() {
		assert.NotEqual(t, "Logging JSON", e.Message)
	}
}

func TestPrimeEndpoint_RejectsNonNumeric(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/prime/abc", "/prime/1.5", "/prime/99999999999999999999"} {
		rec := s.get(path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
	assert.Equal(t, "Invalid number: abc", s.get("/prime/abc").Body.String())
	assert.Zero(t, s.checker.ChecksPerformed())
	assert.Empty(t, s.observer.verdicts)
}

func TestPrimeEndpoint_Concurrent(t *testing.T) {
	s := newTestServer(t)

	var wg sync.WaitGroup
	for _, n := range []string{"7", "5", "2791", "121", "13", "0"} {
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n string) {
				defer wg.Done()
				s.get("/prime/" + n)
			}(n)
		}
	}
	wg.Wait()

	assert.Equal(t, uint64(60), s.checker.ChecksPerformed())
	assert.Equal(t, int64(2791), s.checker.HighestPrimeSoFar())
}

func TestGreetingEndpoints(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/hello", http.StatusOK, "hello"},
		{"/hello/test", http.StatusOK, "hello: test"},
		{"/sayHello/test", http.StatusOK, "hello: test"},
		{"/2xx", http.StatusOK, "Got 2xx Response"},
		{"/5xx", http.StatusInternalServerError, "Exception message"},
		{"/healthz", http.StatusOK, "ok"},
		{"/metrics", http.StatusOK, "metrics"},
	}
	for _, tt := range tests {
		rec := s.get(tt.path)
		assert.Equal(t, tt.status, rec.Code, tt.path)
		assert.Equal(t, tt.body, rec.Body.String(), tt.path)
	}
}

func TestHelloName_SetsAttribute(t *testing.T) {
	s := newTestServer(t)
	s.get("/hello/ada")

	v, ok := s.lastSpanAttrs(t).Value("name")
	require.True(t, ok)
	assert.Equal(t, "ada", v.AsString())
}

func TestSayHello_AttributesAndEvents(t *testing.T) {
	s := newTestServer(t)
	s.get("/sayHello/test")

	ended := s.spans.Ended()
	require.Len(t, ended, 1)
	span := ended[0]

	attrs := attribute.NewSet(span.Attributes()...)
	for key, want := range map[attribute.Key]string{
		"event":    "test",
		"message":  "this is a log message for name test",
		"response": "hello: test",
	} {
		v, ok := attrs.Value(key)
		require.True(t, ok, key)
		assert.Equal(t, want, v.AsString(), key)
	}

	events := span.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "formatGreeting", events[0].Name)
	assert.Equal(t, []attribute.KeyValue{attribute.String("text", "test")}, events[0].Attributes)
	assert.Equal(t, "done", events[1].Name)
	assert.Equal(t, []attribute.KeyValue{attribute.String("response", "hello: test")}, events[1].Attributes)
}

func TestSimulate5xx_RecordsError(t *testing.T) {
	s := newTestServer(t)
	s.get("/5xx")

	ended := s.spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)

	var names []string
	for _, e := range ended[0].Events() {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "exception")
}

func TestPrimeHandler_NilObserver(t *testing.T) {
	checker := primes.NewChecker(nil)
	h := PrimeHandler(logs.NewNop(), checker, nil)

	mux := http.NewServeMux()
	mux.Handle("GET /prime/{number}", h)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/prime/13", nil))

	assert.Equal(t, "13 is a prime.", rec.Body.String())
	assert.Equal(t, int64(13), checker.HighestPrimeSoFar())
}
