package handlers

import (
	"net/http"

	"primecheck/logs"
	"primecheck/primes"
)

// Register mounts every endpoint on mux. metricsHandler may be nil.
func Register(mux *http.ServeMux, l logs.OtelLogging, checker *primes.Checker, obs CheckObserver, metricsHandler http.Handler) {
	mux.Handle("GET /prime/{number}", PrimeHandler(l, checker, obs))
	mux.Handle("GET /hello", HelloHandler(l))
	mux.Handle("GET /hello/{name}", HelloNameHandler(l))
	mux.Handle("GET /sayHello/{name}", SayHelloHandler(l))
	mux.Handle("GET /2xx", Simulate2xxHandler(l))
	mux.Handle("GET /5xx", Simulate5xxHandler(l))
	mux.Handle("GET /healthz", HealthHandler())
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}
