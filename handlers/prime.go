package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"primecheck/logs"
	"primecheck/primes"

	"go.opentelemetry.io/otel/trace"
)

// CheckObserver receives the duration of every primality check.
type CheckObserver interface {
	ObserveCheck(ctx context.Context, verdict string, d time.Duration)
}

type checkLog struct {
	Number  int64  `json:"number"`
	Verdict string `json:"verdict"`
	Divisor int64  `json:"divisor,omitempty"`
	Checks  uint64 `json:"performedChecks"`
}

// PrimeHandler serves GET /prime/{number}. obs may be nil.
func PrimeHandler(l logs.OtelLogging, checker *primes.Checker, obs CheckObserver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		span := trace.SpanFromContext(ctx)

		raw := r.PathValue("number")
		number, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			l.Warnf(span, "rejecting non-numeric input %q: %v", raw, err)
			writeText(w, http.StatusBadRequest, "Invalid number: "+raw)
			return
		}

		started := time.Now()
		res := checker.Check(span, number)
		if obs != nil {
			obs.ObserveCheck(ctx, res.Verdict.String(), time.Since(started))
		}

		msg := res.Message()
		l.Info(span, msg)
		l.LogJson(span, "prime_check", checkLog{
			Number:  res.Number,
			Verdict: res.Verdict.String(),
			Divisor: res.Divisor,
			Checks:  res.Checks,
		})
		writeText(w, http.StatusOK, msg)
	}
}
