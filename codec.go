package goeiscore

import (
	"math"
	"sort"
	"strings"
)

// Value holds one element's parameters: a single entry for scalar elements,
// two entries for CPE (magnitude, exponent) and the finite-length Warburgs
// (magnitude, coefficient).
type Value []float64

// Params maps element keys such as "R1" or "Q2" to their values. A fit
// mutates the mapping in place with the converged values.
type Params map[string]Value

// Clone returns a deep copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		val := make(Value, len(v))
		copy(val, v)
		out[k] = val
	}
	return out
}

// Eps is the lower bound applied to every fitted parameter. Physical
// parameters must stay strictly positive to remain meaningful and to avoid
// singularities.
const Eps = 1e-12

type field struct {
	key   string
	arity int
}

// flatParams is the flat view the optimizer works on: an ordered value
// vector with per-slot bounds, plus the structure needed to rebuild the
// nested mapping afterward. Keys are flattened in lexicographic order so
// the round-trip is reproducible between calls.
type flatParams struct {
	x0     []float64
	lower  []float64
	upper  []float64
	fields []field
}

// flatten builds the flat view of params. Scalar slots get [Eps, +Inf);
// CPE-tagged tuples cap their second slot (the exponent) at 1; every other
// tuple slot gets [Eps, +Inf). An initial value outside its bounds is a
// BoundsError.
func flatten(params Params) (*flatParams, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fp := &flatParams{}
	for _, key := range keys {
		val := params[key]
		for j, v := range val {
			lo, hi := Eps, math.Inf(1)
			if strings.HasPrefix(key, "Q") && j == 1 {
				hi = 1.0
			}
			if v < lo || v > hi {
				return nil, &BoundsError{Key: key, Value: v, Lower: lo, Upper: hi}
			}
			fp.x0 = append(fp.x0, v)
			fp.lower = append(fp.lower, lo)
			fp.upper = append(fp.upper, hi)
		}
		fp.fields = append(fp.fields, field{key: key, arity: len(val)})
	}
	return fp, nil
}

// reconstruct writes the flat vector x back into dst, preserving each key's
// recorded arity. The inverse of flatten up to the values themselves.
func (fp *flatParams) reconstruct(x []float64, dst Params) {
	i := 0
	for _, f := range fp.fields {
		val := make(Value, f.arity)
		copy(val, x[i:i+f.arity])
		dst[f.key] = val
		i += f.arity
	}
}
