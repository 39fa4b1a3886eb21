package config

import (
	"strconv"
)

// ArrayFlags collects a repeatable float flag into a slice, in the order
// given on the command line.
type ArrayFlags []float64

func (a *ArrayFlags) String() string {
	return "ArrayFlags"
}

func (a *ArrayFlags) Set(value string) error {
	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}
	*a = append(*a, val)
	return nil
}

// Config holds the settings for one fitting run.
type Config struct {
	Code          string
	Candidates    string
	InitValues    ArrayFlags
	FreqMin       float64
	FreqMax       float64
	Points        int
	NoiseLevel    float64
	Seed          int64
	Method        string
	MaxIterations int
	Workers       int
	Quiet         bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Code:          "R1-Q1|R2",
		FreqMin:       1,
		FreqMax:       1e5,
		Points:        50,
		NoiseLevel:    0.05,
		Method:        "lm",
		MaxIterations: 1000000,
		Workers:       5,
	}
}
