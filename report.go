package goeiscore

import "fmt"

// FromParts combines separate real and imaginary arrays, the form measured
// data arrives in, into one complex spectrum.
func FromParts(re, im []float64) ([]complex128, error) {
	if len(re) != len(im) {
		return nil, fmt.Errorf("impedance parts length mismatch: %d vs %d", len(re), len(im))
	}
	zs := make([]complex128, len(re))
	for i := range re {
		zs[i] = complex(re[i], im[i])
	}
	return zs, nil
}

// Report is the output bundle handed to a presentation layer: the fitted
// parameters in both forms, the score and the frequency-aligned model curve
// for plotting or export.
type Report struct {
	Circuit       string             `json:"circuit"`
	RSquared      float64            `json:"r_squared"`
	Params        Params             `json:"params"`
	FlatParams    map[string]float64 `json:"flat_params"`
	Frequencies   []float64          `json:"frequencies"`
	RealImpedance []float64          `json:"real_impedance"`
	ImagImpedance []float64          `json:"imaginary_impedance"`
}

// Report evaluates the model at the solver's frequencies with the given
// (typically fitted) parameters and assembles the output bundle.
func (s *Solver) Report(params Params, rSquared float64) (*Report, error) {
	zs, err := Spectrum(s.Circuit, s.Freqs, params)
	if err != nil {
		return nil, err
	}

	re := make([]float64, len(zs))
	im := make([]float64, len(zs))
	for i, z := range zs {
		re[i] = real(z)
		im[i] = imag(z)
	}

	return &Report{
		Circuit:       s.Circuit.String(),
		RSquared:      rSquared,
		Params:        params,
		FlatParams:    FlatFromNested(params),
		Frequencies:   s.Freqs,
		RealImpedance: re,
		ImagImpedance: im,
	}, nil
}
