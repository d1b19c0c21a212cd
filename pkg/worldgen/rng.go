package worldgen

// Mulberry32 is a small, fast, deterministic 32-bit PRNG. The entire
// settlement sampling pass draws from a single Mulberry32 stream seeded
// from the world seed, so that sampling order alone determines the
// sequence of accept/reject decisions.
type Mulberry32 struct {
	state uint32
}

// NewMulberry32 creates a stream seeded from the given 32-bit seed.
func NewMulberry32(seed uint32) *Mulberry32 {
	return &Mulberry32{state: seed}
}

// Float64 returns the next pseudo-random value in [0, 1).
func (m *Mulberry32) Float64() float64 {
	m.state += 0x6D2B79F5
	a := m.state
	t := (a ^ (a >> 15)) * (a | 1)
	t = (t + (t^(t>>7))*(t|61)) ^ t
	return float64(t^(t>>14)) / 4294967296
}
