package goeiscore

import (
	"math"
	"testing"
)

func TestLogspace(t *testing.T) {
	freqs := Logspace(1, 1e4, 5)
	want := []float64{1, 10, 100, 1e3, 1e4}
	for i := range want {
		if math.Abs(freqs[i]-want[i]) > 1e-9*want[i] {
			t.Errorf("freqs[%d] = %g, want %g", i, freqs[i], want[i])
		}
	}
}

func TestSyntheticCleanMatchesSpectrum(t *testing.T) {
	params := Params{"R1": {1000}, "C1": {1e-6}}
	freqs, noisy, clean, err := Synthetic("R1-C1", params, SyntheticOptions{
		FreqMin: 1, FreqMax: 1e5, Points: 30,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(freqs) != 30 || len(noisy) != 30 || len(clean) != 30 {
		t.Fatalf("lengths = %d/%d/%d, want 30 each", len(freqs), len(noisy), len(clean))
	}

	tree := mustParse(t, "R1-C1")
	direct, err := Spectrum(tree, freqs, params)
	if err != nil {
		t.Fatal(err)
	}
	for i := range direct {
		if clean[i] != direct[i] {
			t.Errorf("clean[%d] = %v, want %v", i, clean[i], direct[i])
		}
		if noisy[i] != clean[i] {
			t.Errorf("noisy[%d] = %v differs from clean with zero noise", i, noisy[i])
		}
	}
}

func TestSyntheticNoiseIsBoundedAndSeeded(t *testing.T) {
	params := Params{"R1": {1000}, "C1": {1e-6}}
	opts := SyntheticOptions{FreqMin: 1, FreqMax: 1e5, Points: 30, NoiseLevel: 0.05, Seed: 7}

	_, first, clean, err := Synthetic("R1-C1", params, opts)
	if err != nil {
		t.Fatal(err)
	}
	_, second, _, err := Synthetic("R1-C1", params, opts)
	if err != nil {
		t.Fatal(err)
	}

	var perturbed bool
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed produced different spectra at %d", i)
		}
		if first[i] != clean[i] {
			perturbed = true
		}
	}
	if !perturbed {
		t.Error("noise level 0.05 left the spectrum untouched")
	}
}

func TestSyntheticValidation(t *testing.T) {
	params := Params{"R1": {100}}
	cases := []SyntheticOptions{
		{FreqMin: 0, FreqMax: 1e5, Points: 10},
		{FreqMin: -1, FreqMax: 1e5, Points: 10},
		{FreqMin: 100, FreqMax: 10, Points: 10},
		{FreqMin: 1, FreqMax: 1e5, Points: 1},
	}
	for _, opts := range cases {
		if _, _, _, err := Synthetic("R1", params, opts); err == nil {
			t.Errorf("options %+v accepted", opts)
		}
	}

	if _, _, _, err := Synthetic("X1", params, SyntheticOptions{FreqMin: 1, FreqMax: 10, Points: 5}); err == nil {
		t.Error("malformed circuit accepted")
	}
}
