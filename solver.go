package goeiscore

import (
	"fmt"
	"math"

	"github.com/maorshutman/lm"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// Method selects the optimizer driving a fit. All methods minimize the same
// bounded objective; MethodLM is the least-squares default.
type Method int

const (
	MethodLM Method = iota
	MethodNelderMead
	MethodLBFGS
)

func (m Method) String() string {
	switch m {
	case MethodLM:
		return "levenberg-marquardt"
	case MethodNelderMead:
		return "nelder-mead"
	case MethodLBFGS:
		return "lbfgs"
	}
	return "unknown"
}

// MethodFromString maps the textual method names used by configuration to a
// Method.
func MethodFromString(s string) (Method, error) {
	switch s {
	case "lm", "levenberg-marquardt":
		return MethodLM, nil
	case "nm", "nelder-mead":
		return MethodNelderMead, nil
	case "lbfgs":
		return MethodLBFGS, nil
	}
	return 0, fmt.Errorf("unknown fit method %q", s)
}

// Solver fits a circuit tree's impedance against an observed spectrum. The
// tree is shared read-only; a Solver itself is single-use state for one
// dataset and may run fits with different initial guesses.
type Solver struct {
	Circuit       Node
	Freqs         []float64
	Observed      []complex128
	Method        Method
	MaxIterations int
}

// NewSolver returns a Solver with the default method and iteration budget.
func NewSolver(circuit Node, freqs []float64, observed []complex128) *Solver {
	return &Solver{
		Circuit:       circuit,
		Freqs:         freqs,
		Observed:      observed,
		Method:        MethodLM,
		MaxIterations: 1000000,
	}
}

// Fit runs a bounded nonlinear least-squares fit starting from params,
// which must hold one value per element key. The residual is the
// concatenation of real and imaginary parts at every frequency, a vector of
// length 2N. On success params is mutated in place with the converged
// values (structure preserved per key) and the coefficient of determination
// R^2 is returned, unclamped: values below zero mean the model fits worse
// than the observation mean.
func (s *Solver) Fit(params Params) (Params, float64, error) {
	n := len(s.Freqs)
	if n != len(s.Observed) {
		return nil, 0, fmt.Errorf("solver: %d frequencies but %d impedance points", n, len(s.Observed))
	}
	if n < 2 {
		return nil, 0, fmt.Errorf("solver: need at least 2 data points, have %d", n)
	}

	fp, err := flatten(params)
	if err != nil {
		return nil, 0, err
	}
	if len(fp.x0) == 0 {
		return nil, 0, &ConvergenceError{Status: "no parameters to fit"}
	}

	// Evaluate once at the initial guess so element errors (bad CPE
	// exponent, missing key) surface as themselves instead of as a failed
	// optimization.
	if _, err := Spectrum(s.Circuit, s.Freqs, params); err != nil {
		return nil, 0, err
	}

	target := make([]float64, 2*n)
	for i, z := range s.Observed {
		target[i] = real(z)
		target[n+i] = imag(z)
	}

	// The optimizer runs in an unconstrained space; toBounded maps it back
	// into the codec's box, so bounds hold at every evaluation.
	scratch := make(Params, len(params))
	residual := func(dst, u []float64) {
		x := toBounded(u, fp.lower, fp.upper)
		fp.reconstruct(x, scratch)
		for i, f := range s.Freqs {
			z, err := s.Circuit.Impedance(f, scratch)
			if err != nil {
				for j := range dst {
					dst[j] = math.MaxFloat64
				}
				return
			}
			dst[i] = real(z) - target[i]
			dst[n+i] = imag(z) - target[n+i]
		}
	}

	u0 := toUnconstrained(fp.x0, fp.lower, fp.upper)

	var uOpt []float64
	switch s.Method {
	case MethodNelderMead:
		uOpt, err = s.solveGonum(residual, u0, 2*n, &optimize.NelderMead{}, false)
	case MethodLBFGS:
		uOpt, err = s.solveGonum(residual, u0, 2*n, &optimize.LBFGS{}, true)
	default:
		uOpt, err = s.solveLM(residual, u0, 2*n)
	}
	if err != nil {
		return nil, 0, err
	}

	x := toBounded(uOpt, fp.lower, fp.upper)
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, 0, &ConvergenceError{Status: "non-finite fitted parameters"}
		}
	}
	fp.reconstruct(x, params)

	res := make([]float64, 2*n)
	residual(res, uOpt)
	ssRes := floats.Dot(res, res)
	if math.IsNaN(ssRes) {
		return nil, 0, &ConvergenceError{Status: "non-finite residual at optimum"}
	}

	mean := stat.Mean(target, nil)
	ssTot := 0.0
	for _, v := range target {
		d := v - mean
		ssTot += d * d
	}
	return params, 1 - ssRes/ssTot, nil
}

// solveLM drives the Levenberg-Marquardt engine with a numerical Jacobian.
// lm panics on singular normal equations, so the recover maps that to a
// ConvergenceError like any other solver failure.
func (s *Solver) solveLM(residual func(dst, u []float64), u0 []float64, size int) (uOpt []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			uOpt, err = nil, &ConvergenceError{Status: fmt.Sprintf("levenberg-marquardt: %v", r)}
		}
	}()

	jac := lm.NumJac{Func: residual}
	problem := lm.LMProblem{
		Dim:        len(u0),
		Size:       size,
		Func:       residual,
		Jac:        jac.Jac,
		InitParams: u0,
		Tau:        1e-13,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}

	res, lmErr := lm.LM(problem, &lm.Settings{Iterations: s.MaxIterations, ObjectiveTol: 1e-16})
	if lmErr != nil {
		return nil, &ConvergenceError{Status: "levenberg-marquardt", Err: lmErr}
	}
	return res.X, nil
}

// solveGonum minimizes the summed squared residual with a gonum optimizer.
func (s *Solver) solveGonum(residual func(dst, u []float64), u0 []float64, size int, method optimize.Method, needGrad bool) ([]float64, error) {
	buf := make([]float64, size)
	obj := func(u []float64) float64 {
		residual(buf, u)
		return floats.Dot(buf, buf)
	}

	problem := optimize.Problem{Func: obj}
	if needGrad {
		problem.Grad = func(grad, u []float64) {
			fd.Gradient(grad, obj, u, nil)
		}
	}

	settings := &optimize.Settings{MajorIterations: s.MaxIterations}
	res, err := optimize.Minimize(problem, u0, settings, method)
	if err != nil {
		return nil, &ConvergenceError{Status: fmt.Sprintf("%v", s.Method), Err: err}
	}
	return res.X, nil
}

// Fit is the one-shot convenience over NewSolver for callers that do not
// need to pick a method.
func Fit(circuit Node, freqs []float64, observed []complex128, params Params) (Params, float64, error) {
	return NewSolver(circuit, freqs, observed).Fit(params)
}

const (
	// floor for the distance to a bound when mapping the initial guess,
	// keeps log/logit finite at the box edge
	minStep   = 1e-300
	fracFloor = 1e-9
)

// toUnconstrained maps a point inside the box [lo, hi] into the optimizer's
// free space: log for one-sided bounds, logit for two-sided.
func toUnconstrained(x, lo, hi []float64) []float64 {
	u := make([]float64, len(x))
	for i := range x {
		if math.IsInf(hi[i], 1) {
			d := x[i] - lo[i]
			if d < minStep {
				d = minStep
			}
			u[i] = math.Log(d)
		} else {
			f := (x[i] - lo[i]) / (hi[i] - lo[i])
			if f < fracFloor {
				f = fracFloor
			}
			if f > 1-fracFloor {
				f = 1 - fracFloor
			}
			u[i] = math.Log(f / (1 - f))
		}
	}
	return u
}

// toBounded is the inverse of toUnconstrained; its image always satisfies
// the bounds.
func toBounded(u, lo, hi []float64) []float64 {
	x := make([]float64, len(u))
	for i := range u {
		if math.IsInf(hi[i], 1) {
			x[i] = lo[i] + math.Exp(u[i])
		} else {
			x[i] = lo[i] + (hi[i]-lo[i])/(1+math.Exp(-u[i]))
		}
	}
	return x
}
