// Package core provides parameter sets and validation for ml-dsa-go.
package core

import (
	"errors"
	"fmt"

	mldsa "github.com/latticekit/ml-dsa-go"
)

// MLDSA44Params is the parameter set for NIST security category 2.
var MLDSA44Params = mldsa.Params{
	Level:      mldsa.MLDSA44,
	K:          4,
	L:          4,
	Eta:        2,
	Tau:        39,
	Beta:       78,
	Gamma1Bits: 17,
	Gamma2:     (mldsa.Q - 1) / 88,
	Omega:      80,
	CTildeSize: 32,
}

// MLDSA65Params is the parameter set for NIST security category 3.
var MLDSA65Params = mldsa.Params{
	Level:      mldsa.MLDSA65,
	K:          6,
	L:          5,
	Eta:        4,
	Tau:        49,
	Beta:       196,
	Gamma1Bits: 19,
	Gamma2:     (mldsa.Q - 1) / 32,
	Omega:      55,
	CTildeSize: 48,
}

// MLDSA87Params is the parameter set for NIST security category 5.
var MLDSA87Params = mldsa.Params{
	Level:      mldsa.MLDSA87,
	K:          8,
	L:          7,
	Eta:        2,
	Tau:        60,
	Beta:       120,
	Gamma1Bits: 19,
	Gamma2:     (mldsa.Q - 1) / 32,
	Omega:      75,
	CTildeSize: 64,
}

// GetParams returns the parameter set for the given security level.
func GetParams(level mldsa.SecurityLevel) (mldsa.Params, error) {
	switch level {
	case mldsa.MLDSA44:
		return MLDSA44Params, nil
	case mldsa.MLDSA65:
		return MLDSA65Params, nil
	case mldsa.MLDSA87:
		return MLDSA87Params, nil
	default:
		return mldsa.Params{}, fmt.Errorf("unknown security level: %s", level)
	}
}

// ValidateParams validates a parameter set for consistency. The signing
// loop terminates in a small expected number of iterations only when
// these relations hold, so a violation is a configuration defect.
func ValidateParams(params mldsa.Params) error {
	if params.K <= 0 || params.L <= 0 {
		return errors.New("matrix dimensions must be positive")
	}
	if params.L > params.K {
		return errors.New("l cannot exceed k")
	}
	if params.Eta != 2 && params.Eta != 4 {
		return errors.New("eta must be 2 or 4")
	}
	if params.Tau <= 0 || params.Tau > mldsa.N {
		return errors.New("tau must be in (0, n]")
	}
	if params.Beta != uint32(params.Tau*params.Eta) {
		return errors.New("beta must equal tau * eta")
	}
	if params.Gamma1Bits != 17 && params.Gamma1Bits != 19 {
		return errors.New("gamma1 must be 2^17 or 2^19")
	}
	if params.Gamma2 == 0 || (mldsa.Q-1)%(2*params.Gamma2) != 0 {
		return errors.New("2*gamma2 must divide q-1")
	}
	if params.Gamma1() <= params.Beta || params.Gamma2 <= params.Beta {
		return errors.New("beta must be below gamma1 and gamma2")
	}
	if params.Omega <= 0 || params.Omega > mldsa.N {
		return errors.New("omega must be in (0, n]")
	}
	if params.CTildeSize < 32 {
		return errors.New("challenge seed must be at least 32 bytes")
	}
	return nil
}
