package goeiscore

import (
	"errors"
	"math/cmplx"
	"reflect"
	"testing"
)

func mustParse(t *testing.T, code string) Node {
	t.Helper()
	tree, err := Parse(code)
	if err != nil {
		t.Fatalf("Parse(%q): %v", code, err)
	}
	return tree
}

func TestParseSingleElement(t *testing.T) {
	tests := []struct {
		code string
		kind ElementKind
		id   string
	}{
		{"R1", Resistor, "1"},
		{"C12", Capacitor, "12"},
		{"L3", Inductor, "3"},
		{"W1", Warburg, "1"},
		{"S2", WarburgShort, "2"},
		{"O1", WarburgOpen, "1"},
		{"Qct", CPE, "ct"},
		{"  R7  ", Resistor, "7"},
	}
	for _, tt := range tests {
		tree := mustParse(t, tt.code)
		el, ok := tree.(*ElementNode)
		if !ok {
			t.Fatalf("Parse(%q) = %T, want *ElementNode", tt.code, tree)
		}
		if el.Element.Kind != tt.kind || el.Element.ID != tt.id {
			t.Errorf("Parse(%q) = %v %q, want %v %q", tt.code, el.Element.Kind, el.Element.ID, tt.kind, tt.id)
		}
	}
}

func TestParseSeriesBindsFirst(t *testing.T) {
	// "R1-C1|R2" must become series(R1, parallel(C1, R2))
	tree := mustParse(t, "R1-C1|R2")

	series, ok := tree.(*SeriesNode)
	if !ok {
		t.Fatalf("root = %T, want *SeriesNode", tree)
	}
	if len(series.Children) != 2 {
		t.Fatalf("series has %d children, want 2", len(series.Children))
	}
	if el, ok := series.Children[0].(*ElementNode); !ok || el.Element.Key() != "R1" {
		t.Errorf("first child = %v, want element R1", series.Children[0])
	}
	par, ok := series.Children[1].(*ParallelNode)
	if !ok {
		t.Fatalf("second child = %T, want *ParallelNode", series.Children[1])
	}
	if len(par.Children) != 2 {
		t.Fatalf("parallel has %d children, want 2", len(par.Children))
	}
	if par.Children[0].String() != "C1" || par.Children[1].String() != "R2" {
		t.Errorf("parallel children = %v|%v, want C1|R2", par.Children[0], par.Children[1])
	}
}

func TestParseParenthesizedSeriesNotSplit(t *testing.T) {
	tree := mustParse(t, "R1-Q1|(R2-W1)")

	series := tree.(*SeriesNode)
	par, ok := series.Children[1].(*ParallelNode)
	if !ok {
		t.Fatalf("second child = %T, want *ParallelNode", series.Children[1])
	}
	inner, ok := par.Children[1].(*SeriesNode)
	if !ok {
		t.Fatalf("grouped child = %T, want *SeriesNode", par.Children[1])
	}
	if inner.String() != "R2-W1" {
		t.Errorf("grouped child = %q, want R2-W1", inner.String())
	}
}

func TestParseStripsWrappingParens(t *testing.T) {
	got := mustParse(t, "(R1-C1)")
	want := mustParse(t, "R1-C1")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("(R1-C1) parsed as %v, want same tree as R1-C1", got)
	}
}

func TestParseErrors(t *testing.T) {
	for _, code := range []string{"X1", "R1-X2", "", "R1--C1", "R1-C1|Z9"} {
		_, err := Parse(code)
		var gerr *GrammarError
		if !errors.As(err, &gerr) {
			t.Errorf("Parse(%q): got %v, want GrammarError", code, err)
		}
	}
}

func TestParseStringRoundTrip(t *testing.T) {
	for _, code := range []string{
		"R1",
		"R1-C1",
		"R1|C1",
		"R1-C1|R2",
		"R1-Q1|(R2-W1)",
		"R1-(R2-W1)|Q1-C3",
		"R1|R2|R3-C1",
	} {
		first := mustParse(t, code)
		again := mustParse(t, first.String())
		if !reflect.DeepEqual(first, again) {
			t.Errorf("%q: reparse of %q differs from original tree", code, first.String())
		}
	}
}

func TestSeriesImpedanceIsSum(t *testing.T) {
	tree := mustParse(t, "R1-C1-L1")
	params := Params{"R1": {100}, "C1": {1e-6}, "L1": {1e-3}}

	r := Element{Kind: Resistor, ID: "1"}
	c := Element{Kind: Capacitor, ID: "1"}
	l := Element{Kind: Inductor, ID: "1"}

	for _, f := range []float64{1, 100, 1e4} {
		z, err := tree.Impedance(f, params)
		if err != nil {
			t.Fatal(err)
		}
		zr, _ := r.Impedance(f, params["R1"])
		zc, _ := c.Impedance(f, params["C1"])
		zl, _ := l.Impedance(f, params["L1"])
		want := zr + zc + zl
		if !closeEnough(z, want, 1e-12) {
			t.Errorf("f=%g: series = %v, want %v", f, z, want)
		}
	}
}

func TestParallelEqualResistorsHalve(t *testing.T) {
	tree := mustParse(t, "R1|R2")
	params := Params{"R1": {220}, "R2": {220}}
	for _, f := range []float64{0.1, 1, 1e5} {
		z, err := tree.Impedance(f, params)
		if err != nil {
			t.Fatal(err)
		}
		if z != complex(110, 0) {
			t.Errorf("f=%g: R|R = %v, want (110+0i)", f, z)
		}
	}
}

func TestEvaluatorMissingParameter(t *testing.T) {
	tree := mustParse(t, "R1-C1")
	_, err := tree.Impedance(100, Params{"R1": {100}})
	var derr *DomainError
	if !errors.As(err, &derr) {
		t.Fatalf("got %v, want DomainError", err)
	}
	if derr.Key != "C1" {
		t.Errorf("error key = %q, want C1", derr.Key)
	}
}

func TestDuplicateIdentifiersAlias(t *testing.T) {
	// two R1 leaves read the same parameter entry; documented grammar hazard
	tree := mustParse(t, "R1|R1")
	z, err := tree.Impedance(10, Params{"R1": {100}})
	if err != nil {
		t.Fatal(err)
	}
	if z != complex(50, 0) {
		t.Errorf("R1|R1 = %v, want (50+0i)", z)
	}
}

func TestParallelZeroImpedancePropagates(t *testing.T) {
	// a zero-ohm branch is not trapped; the result must be non-finite, not an error
	tree := mustParse(t, "R1|R2")
	z, err := tree.Impedance(10, Params{"R1": {0}, "R2": {100}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cmplx.IsInf(z) && !cmplx.IsNaN(z) && z != 0 {
		t.Errorf("zero-branch parallel = %v, want IEEE Inf/NaN propagation or exact 0", z)
	}
}

func TestElementsWalkOrder(t *testing.T) {
	tree := mustParse(t, "R1-Q1|(R2-W1)")
	var keys []string
	for _, el := range Elements(tree) {
		keys = append(keys, el.Key())
	}
	want := []string{"R1", "Q1", "R2", "W1"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Elements = %v, want %v", keys, want)
	}
}

func TestSpectrumMatchesScalarEvaluation(t *testing.T) {
	tree := mustParse(t, "R1-C1|R2")
	params := Params{"R1": {100}, "C1": {1e-6}, "R2": {500}}
	freqs := Logspace(1, 1e4, 9)

	zs, err := Spectrum(tree, freqs, params)
	if err != nil {
		t.Fatal(err)
	}
	for i, f := range freqs {
		want, _ := tree.Impedance(f, params)
		if zs[i] != want {
			t.Errorf("spectrum[%d] = %v, want %v", i, zs[i], want)
		}
	}
}
