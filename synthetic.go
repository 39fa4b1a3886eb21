package goeiscore

import (
	"fmt"
	"math/cmplx"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Logspace returns n frequencies spaced logarithmically over [fmin, fmax].
func Logspace(fmin, fmax float64, n int) []float64 {
	freqs := make([]float64, n)
	floats.LogSpan(freqs, fmin, fmax)
	return freqs
}

// SyntheticOptions configures Synthetic. NoiseLevel is relative to |Z| per
// point; zero disables noise. Seed makes runs reproducible.
type SyntheticOptions struct {
	FreqMin    float64
	FreqMax    float64
	Points     int
	NoiseLevel float64
	Seed       int64
}

// Synthetic generates an impedance spectrum for the circuit over a
// log-spaced frequency grid, returning the frequencies, the noisy spectrum
// and the clean one.
func Synthetic(code string, params Params, opts SyntheticOptions) (freqs []float64, noisy, clean []complex128, err error) {
	if opts.FreqMin <= 0 {
		return nil, nil, nil, fmt.Errorf("synthetic: freq min must be positive, got %g", opts.FreqMin)
	}
	if opts.FreqMax <= opts.FreqMin {
		return nil, nil, nil, fmt.Errorf("synthetic: freq max %g must exceed freq min %g", opts.FreqMax, opts.FreqMin)
	}
	if opts.Points < 2 {
		return nil, nil, nil, fmt.Errorf("synthetic: need at least 2 points, got %d", opts.Points)
	}

	tree, err := Parse(code)
	if err != nil {
		return nil, nil, nil, err
	}

	freqs = Logspace(opts.FreqMin, opts.FreqMax, opts.Points)
	clean, err = Spectrum(tree, freqs, params)
	if err != nil {
		return nil, nil, nil, err
	}

	noisy = make([]complex128, len(clean))
	copy(noisy, clean)
	if opts.NoiseLevel > 0 {
		rng := rand.New(rand.NewSource(opts.Seed))
		for i, z := range clean {
			m := cmplx.Abs(z) * opts.NoiseLevel
			noisy[i] = z + complex(m*rng.Float64(), m*rng.Float64())
		}
	}
	return freqs, noisy, clean, nil
}
