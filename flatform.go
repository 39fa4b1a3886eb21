package goeiscore

import (
	"fmt"
	"sort"
	"strings"
)

// The flat UI form splits tuple-valued keys into separate scalar entries:
// a CPE "Q1" becomes "Q1" (magnitude) and "Q1_n" (exponent), the
// finite-length Warburgs "S1"/"O1" become the base key plus "<key>_B".
// Everything else passes through unchanged. The mapping is bijective and
// keyed purely by tag prefix.

// CircuitParams validates a circuit string and returns the sorted flat
// parameter names its elements expose.
func CircuitParams(code string) ([]string, error) {
	tree, err := Parse(code)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var keys []string
	for _, el := range Elements(tree) {
		k := el.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	sort.Strings(keys)

	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, k)
		switch k[0] {
		case 'Q':
			names = append(names, k+"_n")
		case 'S', 'O':
			names = append(names, k+"_B")
		}
	}
	return names, nil
}

// NestedFromFlat converts the flat UI form into the nested mapping, driven
// by the parameter-name list from CircuitParams. A missing CPE exponent
// falls back to 0.9; a missing Warburg coefficient is an error.
func NestedFromFlat(flat map[string]float64, names []string) (Params, error) {
	params := make(Params, len(names))
	for _, name := range names {
		switch {
		case strings.HasSuffix(name, "_n"), strings.HasSuffix(name, "_B"):
			// consumed together with their base key
			continue
		case strings.HasPrefix(name, "Q"):
			q, ok := flat[name]
			if !ok {
				return nil, fmt.Errorf("missing parameter %q", name)
			}
			n, ok := flat[name+"_n"]
			if !ok {
				n = 0.9
			}
			params[name] = Value{q, n}
		case strings.HasPrefix(name, "S"), strings.HasPrefix(name, "O"):
			aw, ok := flat[name]
			if !ok {
				return nil, fmt.Errorf("missing parameter %q", name)
			}
			b, ok := flat[name+"_B"]
			if !ok {
				return nil, fmt.Errorf("missing parameter %q", name+"_B")
			}
			params[name] = Value{aw, b}
		default:
			v, ok := flat[name]
			if !ok {
				return nil, fmt.Errorf("missing parameter %q", name)
			}
			params[name] = Value{v}
		}
	}
	return params, nil
}

// FlatFromNested converts the nested mapping into the flat UI form.
func FlatFromNested(params Params) map[string]float64 {
	flat := make(map[string]float64, len(params))
	for key, val := range params {
		if len(val) == 0 {
			continue
		}
		flat[key] = val[0]
		if len(val) > 1 {
			switch key[0] {
			case 'Q':
				flat[key+"_n"] = val[1]
			case 'S', 'O':
				flat[key+"_B"] = val[1]
			}
		}
	}
	return flat
}
