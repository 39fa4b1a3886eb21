package goeiscore

import (
	"fmt"
	"strings"
)

// Node is one vertex of a parsed circuit tree. Trees are immutable once
// built and safe to share read-only across concurrent fits; parameter
// mappings are per-call, never stored in the tree.
type Node interface {
	// Impedance evaluates the subtree at a single frequency (Hz) using the
	// given parameter mapping.
	Impedance(freq float64, params Params) (complex128, error)
	String() string
}

// ElementNode wraps exactly one circuit element.
type ElementNode struct {
	Element Element
}

func (n *ElementNode) Impedance(freq float64, params Params) (complex128, error) {
	value, ok := params[n.Element.Key()]
	if !ok {
		return 0, &DomainError{Key: n.Element.Key(), Reason: "no parameter value"}
	}
	return n.Element.Impedance(freq, value)
}

func (n *ElementNode) String() string { return n.Element.Key() }

// SeriesNode sums the impedances of its children.
type SeriesNode struct {
	Children []Node
}

func (n *SeriesNode) Impedance(freq float64, params Params) (complex128, error) {
	var total complex128
	for _, child := range n.Children {
		z, err := child.Impedance(freq, params)
		if err != nil {
			return 0, err
		}
		total += z
	}
	return total, nil
}

func (n *SeriesNode) String() string {
	parts := make([]string, len(n.Children))
	for i, child := range n.Children {
		parts[i] = child.String()
	}
	return strings.Join(parts, "-")
}

// ParallelNode reciprocates the sum of its children's admittances. A child
// with exactly zero impedance is not trapped; the division propagates IEEE
// Inf/NaN components.
type ParallelNode struct {
	Children []Node
}

func (n *ParallelNode) Impedance(freq float64, params Params) (complex128, error) {
	var admittance complex128
	for _, child := range n.Children {
		z, err := child.Impedance(freq, params)
		if err != nil {
			return 0, err
		}
		admittance += 1 / z
	}
	return 1 / admittance, nil
}

func (n *ParallelNode) String() string {
	parts := make([]string, len(n.Children))
	for i, child := range n.Children {
		// series children need parens to survive a reparse; parallel
		// children of a series do not, since series splits first
		if _, ok := child.(*SeriesNode); ok {
			parts[i] = "(" + child.String() + ")"
		} else {
			parts[i] = child.String()
		}
	}
	return strings.Join(parts, "|")
}

// Parse converts a circuit description such as "R1-Q1|(R2-W1)" into its
// tree. Elements are a tag letter plus an identifier; "-" composes in
// series, "|" in parallel, parentheses group explicitly. At any one depth
// without parens, series binds looser than parallel, so "R1-C1|R2" is R1 in
// series with (C1 parallel R2).
//
// Duplicate identifiers are not rejected: two leaves named "R1" alias the
// same parameter entry.
func Parse(code string) (Node, error) {
	code = strings.TrimSpace(code)
	if strings.Contains(code, "(") {
		return parseGrouped(code)
	}
	if strings.Contains(code, "-") {
		return parseSplit(code, '-')
	}
	if strings.Contains(code, "|") {
		return parseSplit(code, '|')
	}
	return parseElement(code)
}

// parseGrouped handles strings containing parentheses: it looks for the
// first top-level series or parallel operator, in that order, and otherwise
// strips one wrapping pair of parens.
func parseGrouped(code string) (Node, error) {
	depth, seriesPos, parallelPos := 0, -1, -1
	for i, r := range code {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case '-':
			if depth == 0 && seriesPos == -1 {
				seriesPos = i
			}
		case '|':
			if depth == 0 && parallelPos == -1 {
				parallelPos = i
			}
		}
	}

	switch {
	case seriesPos != -1:
		return parseSplit(code, '-')
	case parallelPos != -1:
		return parseSplit(code, '|')
	case strings.HasPrefix(code, "(") && strings.HasSuffix(code, ")"):
		return Parse(code[1 : len(code)-1])
	}
	return parseElement(code)
}

func parseSplit(code string, op rune) (Node, error) {
	parts := splitOperator(code, op)
	children := make([]Node, 0, len(parts))
	for _, part := range parts {
		child, err := Parse(part)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if op == '-' {
		return &SeriesNode{Children: children}, nil
	}
	return &ParallelNode{Children: children}, nil
}

// splitOperator splits on op at paren depth zero, so "(R2-W1)" is never
// split on its internal "-".
func splitOperator(code string, op rune) []string {
	var parts []string
	var current strings.Builder
	depth := 0
	for _, r := range code {
		switch {
		case r == '(':
			depth++
			current.WriteRune(r)
		case r == ')':
			depth--
			current.WriteRune(r)
		case r == op && depth == 0:
			parts = append(parts, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, strings.TrimSpace(current.String()))
	}
	return parts
}

func parseElement(code string) (Node, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, &GrammarError{Reason: "empty element token"}
	}
	kind, ok := KindForTag(code[0])
	if !ok {
		return nil, &GrammarError{Token: code, Reason: fmt.Sprintf("unknown element tag %q", code[0])}
	}
	return &ElementNode{Element: Element{Kind: kind, ID: code[1:]}}, nil
}

// Elements returns the tree's element leaves in textual order.
func Elements(n Node) []Element {
	switch t := n.(type) {
	case *ElementNode:
		return []Element{t.Element}
	case *SeriesNode:
		var out []Element
		for _, child := range t.Children {
			out = append(out, Elements(child)...)
		}
		return out
	case *ParallelNode:
		var out []Element
		for _, child := range t.Children {
			out = append(out, Elements(child)...)
		}
		return out
	}
	return nil
}

// Spectrum evaluates the tree at every frequency, component-wise.
func Spectrum(n Node, freqs []float64, params Params) ([]complex128, error) {
	out := make([]complex128, len(freqs))
	for i, f := range freqs {
		z, err := n.Impedance(f, params)
		if err != nil {
			return nil, err
		}
		out[i] = z
	}
	return out, nil
}
