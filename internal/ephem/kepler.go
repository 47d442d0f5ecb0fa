package ephem

import (
	"errors"
	"fmt"
	"math"
)

const (
	// KeplerTolerance is the convergence threshold on the eccentric anomaly
	// step, in radians.
	KeplerTolerance = 1e-6

	// MaxKeplerIterations caps Newton iteration. Every orbit modelled here
	// converges in well under ten steps.
	MaxKeplerIterations = 30
)

// ErrInvalidEccentricity is returned for eccentricities outside [0, 1).
var ErrInvalidEccentricity = errors.New("eccentricity must be in [0, 1)")

// KeplerSolution is the outcome of solving M = E - e sin E.
type KeplerSolution struct {
	E          float64 // Eccentric anomaly in radians
	Converged  bool    // Step fell below tolerance before the cap
	Iterations int     // Newton steps taken
	Residual   float64 // |E - e sin E - M| at the returned E
}

// SolveKepler solves Kepler's equation for mean anomaly M (radians) and
// eccentricity e with the default tolerance and iteration cap. Hitting the
// cap is not an error: the last iterate is returned with Converged false.
func SolveKepler(M, e float64) (KeplerSolution, error) {
	return SolveKeplerWith(M, e, KeplerTolerance, MaxKeplerIterations)
}

// SolveKeplerWith is SolveKepler with an explicit tolerance and cap.
func SolveKeplerWith(M, e, tol float64, maxIter int) (KeplerSolution, error) {
	if math.IsNaN(e) || e < 0 || e >= 1 {
		return KeplerSolution{}, fmt.Errorf("%w: e=%v", ErrInvalidEccentricity, e)
	}
	if math.IsNaN(M) || math.IsInf(M, 0) {
		return KeplerSolution{}, fmt.Errorf("mean anomaly is not finite: %v", M)
	}
	if maxIter < 1 {
		maxIter = 1
	}

	// Reduce to [-pi, pi) so the starting guess is sensible
	M = math.Mod(M+math.Pi, 2*math.Pi)
	if M < 0 {
		M += 2 * math.Pi
	}
	M -= math.Pi

	E := M + e*math.Sin(M)
	if e > 0.8 {
		E = math.Pi
	}

	sol := KeplerSolution{}
	for sol.Iterations < maxIter {
		sol.Iterations++
		dE := (E - e*math.Sin(E) - M) / (1 - e*math.Cos(E))
		E -= dE
		if math.Abs(dE) < tol {
			sol.Converged = true
			break
		}
	}

	sol.E = E
	sol.Residual = math.Abs(E - e*math.Sin(E) - M)
	return sol, nil
}
