package statmodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBisection(t *testing.T) {

	for _, m := range []float64{0.2, 5, -3, 40} {
		f := func(x float64) float64 { return (x - m) * (x - m) }
		assert.InDelta(t, m, bisection(f, -1, 1, 1e-8), 1e-6, "minimum at %v", m)
	}

	// Not differentiable at the minimum
	f := func(x float64) float64 { return math.Abs(x-0.3) + 0.1*x*x }
	assert.InDelta(t, 0.3, bisection(f, -1, 1, 1e-8), 1e-6)
}
