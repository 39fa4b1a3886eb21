package goeiscore

import "math"

// DefaultParams builds a generic starting guess for every element in the
// tree. Resistances are seeded from the observed real impedance near the
// middle of the frequency window when data is available; the remaining
// kinds get order-of-magnitude defaults that work for typical cells.
func DefaultParams(n Node, freqs []float64, observed []complex128) Params {
	params := make(Params)
	for _, el := range Elements(n) {
		switch el.Kind {
		case Resistor:
			params[el.Key()] = Value{guessResistance(freqs, observed)}
		case Capacitor, Inductor, Warburg:
			params[el.Key()] = Value{1e-5}
		case CPE:
			params[el.Key()] = Value{1e-5, 0.8}
		case WarburgShort, WarburgOpen:
			params[el.Key()] = Value{1, 1}
		}
	}
	return params
}

func guessResistance(freqs []float64, observed []complex128) float64 {
	if len(freqs) == 0 || len(freqs) != len(observed) {
		return 100
	}

	min, max := freqs[0], freqs[0]
	for _, f := range freqs[1:] {
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
	}
	if min <= 0 {
		return 100
	}

	// geometric midpoint of the frequency window
	mid := math.Pow(10, (math.Log10(min)+math.Log10(max))/2)
	best, dist := 0, math.Inf(1)
	for i, f := range freqs {
		if d := math.Abs(f - mid); d < dist {
			dist = d
			best = i
		}
	}

	r := real(observed[best])
	if r <= Eps || math.IsNaN(r) {
		return 100
	}
	return r
}
