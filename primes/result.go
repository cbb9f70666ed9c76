package primes

import "fmt"

type Verdict int

const (
	Invalid Verdict = iota
	NotPrime
	Prime
)

func (v Verdict) String() string {
	switch v {
	case Invalid:
		return "invalid"
	case NotPrime:
		return "not-prime"
	case Prime:
		return "prime"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// Result is the outcome of a single primality check.
type Result struct {
	Number  int64
	Verdict Verdict
	// Divisor is the smallest divisor found for a composite Number, 0 otherwise.
	Divisor int64
	// Checks is the value of the check counter right after this check.
	Checks uint64
}

func (r Result) IsPrime() bool {
	return r.Verdict == Prime
}

// Message renders the plain-text verdict returned to HTTP clients.
func (r Result) Message() string {
	switch {
	case r.Verdict == Invalid:
		return "Only natural numbers can be prime numbers."
	case r.Number == 1:
		return "1 is not a prime."
	case r.Verdict == Prime:
		return fmt.Sprintf("%d is a prime.", r.Number)
	case r.Divisor == 2:
		return fmt.Sprintf("%d is not a prime, it is divisible by 2.", r.Number)
	default:
		return fmt.Sprintf("%d is not a prime, is divisible by %d.", r.Number, r.Divisor)
	}
}
