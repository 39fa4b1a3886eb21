package goeiscore

// Candidate pairs a circuit description with its initial parameter guess.
type Candidate struct {
	Circuit string
	Params  Params
}

// CandidateResult is the per-candidate outcome of a selection run. Err is
// nil for candidates that fitted.
type CandidateResult struct {
	Circuit  string
	RSquared float64
	Params   Params
	Err      error
}

// Selection is the winning model of a BestModel run together with every
// candidate's pass/fail result.
type Selection struct {
	Circuit  string
	RSquared float64
	Params   Params
	Results  []CandidateResult
}

// BestModel parses and fits every candidate in order against the observed
// spectrum and returns the one with the strictly greatest R^2; ties keep
// the first-seen candidate. A candidate that fails to parse or converge is
// recorded and skipped, never fatal. When every candidate fails the
// returned error is an AllModelsFailedError listing each failure.
func BestModel(candidates []Candidate, freqs []float64, observed []complex128) (*Selection, error) {
	sel := &Selection{}
	found := false

	for _, cand := range candidates {
		res := CandidateResult{Circuit: cand.Circuit}

		tree, err := Parse(cand.Circuit)
		if err == nil {
			res.Params, res.RSquared, err = NewSolver(tree, freqs, observed).Fit(cand.Params)
		}
		if err != nil {
			res.Err = err
			sel.Results = append(sel.Results, res)
			continue
		}

		sel.Results = append(sel.Results, res)
		if !found || res.RSquared > sel.RSquared {
			found = true
			sel.Circuit = cand.Circuit
			sel.RSquared = res.RSquared
			sel.Params = res.Params
		}
	}

	if !found {
		agg := &AllModelsFailedError{}
		for _, r := range sel.Results {
			agg.Failures = append(agg.Failures, ModelFailure{Circuit: r.Circuit, Err: r.Err})
		}
		return nil, agg
	}
	return sel, nil
}
