// Package primes implements the trial-division primality check and the
// counters it maintains across calls.
package primes

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	AttrPerformedChecks = attribute.Key("performedChecks")
	AttrNumber          = attribute.Key("number")
	AttrIsPrime         = attribute.Key("isPrime")
)

type Checker struct {
	stats *Stats
}

// NewChecker returns a Checker recording into stats. A nil stats gets a fresh one.
func NewChecker(stats *Stats) *Checker {
	if stats == nil {
		stats = NewStats()
	}
	return &Checker{stats: stats}
}

// Check classifies n and annotates span with the outcome. It never starts or
// ends spans; a nil span is ignored. The check counter is incremented for every
// call, invalid input included.
func (c *Checker) Check(span trace.Span, n int64) Result {
	res := classify(n)
	res.Checks = c.stats.recordCheck()
	if res.Verdict == Prime {
		c.stats.observePrime(n)
	}

	if span != nil {
		span.SetAttributes(
			AttrPerformedChecks.Int64(int64(res.Checks)),
			AttrNumber.Int64(n),
			AttrIsPrime.Bool(res.IsPrime()),
		)
	}
	return res
}

func (c *Checker) HighestPrimeSoFar() int64 {
	return c.stats.HighestPrimeSoFar()
}

func (c *Checker) ChecksPerformed() uint64 {
	return c.stats.ChecksPerformed()
}

func classify(n int64) Result {
	switch {
	case n < 1:
		return Result{Number: n, Verdict: Invalid}
	case n == 1:
		return Result{Number: n, Verdict: NotPrime}
	case n == 2:
		return Result{Number: n, Verdict: Prime}
	case n%2 == 0:
		return Result{Number: n, Verdict: NotPrime, Divisor: 2}
	}
	// i <= n/i is i*i <= n without overflowing near MaxInt64.
	for i := int64(3); i <= n/i; i += 2 {
		if n%i == 0 {
			return Result{Number: n, Verdict: NotPrime, Divisor: i}
		}
	}
	return Result{Number: n, Verdict: Prime}
}
