package primes

import "sync/atomic"

// Stats holds the process-wide counters updated by every check.
// The zero value is not ready for use; create it with NewStats.
type Stats struct {
	checks  atomic.Uint64
	highest atomic.Int64
}

func NewStats() *Stats {
	s := &Stats{}
	s.highest.Store(2)
	return s
}

// recordCheck bumps the check counter and returns its new value.
func (s *Stats) recordCheck() uint64 {
	return s.checks.Add(1)
}

// observePrime raises the highest prime seen to n if n is larger.
func (s *Stats) observePrime(n int64) {
	for {
		cur := s.highest.Load()
		if n <= cur {
			return
		}
		if s.highest.CompareAndSwap(cur, n) {
			return
		}
	}
}

func (s *Stats) ChecksPerformed() uint64 {
	return s.checks.Load()
}

func (s *Stats) HighestPrimeSoFar() int64 {
	return s.highest.Load()
}
