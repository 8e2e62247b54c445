package spaced_repetition

// Params holds the tunable policy constants for interval growth. The numeric
// defaults are conventional SM-2-family values, not contractual.
type Params struct {
	// Ratings below this are treated as failed recall
	PassThreshold int
	// Ratings at or above this are treated as effortless recall
	StrongThreshold int
	// Interval multiplier for recall that required effort
	AdequateMultiplier float64
	// Interval multiplier for effortless recall
	StrongMultiplier float64
	// Step applied to the ease factor on strong/poor outcomes
	EaseStep float64
	// Bounds for the ease factor
	MinEase float64
	MaxEase float64
	// Maximum repetition interval in days
	MaxInterval int
	// Retention below this triggers extra compression on priority items
	RetentionFloor int
	// Priority items get at most 1/PriorityDivisor of the normal interval
	PriorityDivisor int
}

// DefaultParams returns the default interval policy.
func DefaultParams() Params {
	return Params{
		PassThreshold:      3, // Ratings 3 and above count as successful recall
		StrongThreshold:    4,
		AdequateMultiplier: 1.3,
		StrongMultiplier:   2.0,
		EaseStep:           0.15,
		MinEase:            0.3,
		MaxEase:            2.5,
		MaxInterval:        365, // Cap intervals at one year
		RetentionFloor:     85,
		PriorityDivisor:    2,
	}
}
