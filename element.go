package goeiscore

import (
	"fmt"
	"math"
	"math/cmplx"
)

// ElementKind enumerates the supported equivalent-circuit elements.
type ElementKind int

const (
	Resistor ElementKind = iota
	Capacitor
	Inductor
	Warburg      // semi-infinite diffusion
	WarburgShort // finite-length diffusion, reflective boundary
	WarburgOpen  // finite-length diffusion, transmissive boundary
	CPE          // constant-phase element
)

// Tag returns the one-letter notation used in circuit strings and as the
// parameter-key prefix.
func (k ElementKind) Tag() byte {
	switch k {
	case Resistor:
		return 'R'
	case Capacitor:
		return 'C'
	case Inductor:
		return 'L'
	case Warburg:
		return 'W'
	case WarburgShort:
		return 'S'
	case WarburgOpen:
		return 'O'
	case CPE:
		return 'Q'
	}
	return '?'
}

// Arity returns the number of real parameters the element takes.
func (k ElementKind) Arity() int {
	switch k {
	case WarburgShort, WarburgOpen, CPE:
		return 2
	}
	return 1
}

func (k ElementKind) String() string {
	switch k {
	case Resistor:
		return "resistor"
	case Capacitor:
		return "capacitor"
	case Inductor:
		return "inductor"
	case Warburg:
		return "warburg"
	case WarburgShort:
		return "warburg-short"
	case WarburgOpen:
		return "warburg-open"
	case CPE:
		return "cpe"
	}
	return "unknown"
}

// KindForTag maps a tag letter to its element kind.
func KindForTag(tag byte) (ElementKind, bool) {
	switch tag {
	case 'R':
		return Resistor, true
	case 'C':
		return Capacitor, true
	case 'L':
		return Inductor, true
	case 'W':
		return Warburg, true
	case 'S':
		return WarburgShort, true
	case 'O':
		return WarburgOpen, true
	case 'Q':
		return CPE, true
	}
	return 0, false
}

// Element is a single named circuit element. Its parameter-lookup key is the
// tag letter followed by the identifier, e.g. "R1" or "Q2".
type Element struct {
	Kind ElementKind
	ID   string
}

func (e Element) Key() string {
	return string(e.Kind.Tag()) + e.ID
}

// Impedance evaluates the element's closed-form impedance at a single
// frequency (Hz). value must carry e.Kind.Arity() entries.
func (e Element) Impedance(freq float64, value Value) (complex128, error) {
	if len(value) != e.Kind.Arity() {
		return 0, &DomainError{
			Key:    e.Key(),
			Reason: fmt.Sprintf("want %d parameter(s), have %d", e.Kind.Arity(), len(value)),
		}
	}

	w := 2 * math.Pi * freq
	jw := complex(0, w)

	switch e.Kind {
	case Resistor:
		return complex(value[0], 0), nil
	case Capacitor:
		return 1 / (jw * complex(value[0], 0)), nil
	case Inductor:
		return jw * complex(value[0], 0), nil
	case Warburg:
		// Aw/sqrt(w) + Aw/(j*sqrt(w)), i.e. Aw*(1-j)/sqrt(w)
		s := math.Sqrt(w)
		aw := complex(value[0], 0)
		return aw/complex(s, 0) + aw/complex(0, s), nil
	case WarburgShort:
		sq := cmplx.Sqrt(jw)
		return complex(value[0], 0) * cmplx.Tanh(complex(value[1], 0)*sq) / sq, nil
	case WarburgOpen:
		sq := cmplx.Sqrt(jw)
		return complex(value[0], 0) / (cmplx.Tanh(complex(value[1], 0)*sq) * sq), nil
	case CPE:
		n := value[1]
		if n <= 0 || n > 1 {
			return 0, &DomainError{Key: e.Key(), Reason: "CPE exponent must lie in (0, 1]"}
		}
		return 1 / (complex(value[0], 0) * cmplx.Pow(jw, complex(n, 0))), nil
	}
	return 0, &DomainError{Key: e.Key(), Reason: "unknown element kind"}
}

// ImpedanceSpectrum evaluates the element at every frequency, with the same
// per-point semantics as Impedance.
func (e Element) ImpedanceSpectrum(freqs []float64, value Value) ([]complex128, error) {
	out := make([]complex128, len(freqs))
	for i, f := range freqs {
		z, err := e.Impedance(f, value)
		if err != nil {
			return nil, err
		}
		out[i] = z
	}
	return out, nil
}
