package sampling

import (
	"testing"

	"github.com/stretchr/testify/require"

	mldsa "github.com/latticekit/ml-dsa-go"
	"github.com/latticekit/ml-dsa-go/utils"
)

func testSeed(label string) []byte {
	return utils.Shake256([]byte(label), 32)
}

func centeredValue(c uint32) int32 {
	if c > (q-1)/2 {
		return int32(c) - q
	}
	return int32(c)
}

func TestExpandADeterministic(t *testing.T) {
	rho := testSeed("expand-a")

	a1 := ExpandA(rho, 8, 7)
	a2 := ExpandA(rho, 8, 7)
	require.Equal(t, a1, a2)

	// A different seed yields a different matrix
	a3 := ExpandA(testSeed("expand-a-other"), 8, 7)
	require.NotEqual(t, a1, a3)
}

func TestExpandACoefficientRange(t *testing.T) {
	a := ExpandA(testSeed("expand-a-range"), 4, 4)
	require.Len(t, a, 16)
	for _, f := range a {
		for _, c := range f {
			require.Less(t, c, uint32(q))
		}
	}
}

func TestExpandAEntriesIndependent(t *testing.T) {
	// Entry (i, j) depends only on (rho, i, j): a submatrix of a larger
	// expansion equals the smaller expansion entry by entry.
	rho := testSeed("expand-a-sub")
	small := ExpandA(rho, 2, 2)
	large := ExpandA(rho, 4, 4)

	require.Equal(t, large[0*4+0], small[0*2+0])
	require.Equal(t, large[0*4+1], small[0*2+1])
	require.Equal(t, large[1*4+0], small[1*2+0])
	require.Equal(t, large[1*4+1], small[1*2+1])
}

func TestExpandSRange(t *testing.T) {
	for _, eta := range []int{2, 4} {
		s1, s2 := ExpandS(testSeed("expand-s"), eta, 7, 8)
		require.Len(t, s1, 7)
		require.Len(t, s2, 8)

		sawNegative := false
		for _, v := range []mldsa.Vec{s1, s2} {
			for _, f := range v {
				for _, c := range f {
					val := centeredValue(c)
					require.LessOrEqual(t, val, int32(eta))
					require.GreaterOrEqual(t, val, int32(-eta))
					if val < 0 {
						sawNegative = true
					}
				}
			}
		}
		require.True(t, sawNegative, "eta %d: expected negative coefficients", eta)
	}
}

func TestExpandSDeterministic(t *testing.T) {
	seed := testSeed("expand-s-det")
	a1, b1 := ExpandS(seed, 2, 4, 4)
	a2, b2 := ExpandS(seed, 2, 4, 4)
	require.Equal(t, a1, a2)
	require.Equal(t, b1, b2)

	// s1 and s2 come from disjoint nonce ranges
	require.NotEqual(t, a1[0], b1[0])
}

func TestExpandMaskRange(t *testing.T) {
	for _, gamma1Bits := range []uint{17, 19} {
		gamma1 := int32(1) << gamma1Bits
		y := ExpandMask(testSeed("mask"), 0, gamma1Bits, 7)
		require.Len(t, y, 7)
		for _, f := range y {
			for _, c := range f {
				val := centeredValue(c)
				require.Greater(t, val, -gamma1)
				require.LessOrEqual(t, val, gamma1)
			}
		}
	}
}

func TestExpandMaskCounterSeparation(t *testing.T) {
	seed := testSeed("mask-counter")

	y0 := ExpandMask(seed, 0, 19, 7)
	y7 := ExpandMask(seed, 7, 19, 7)

	// Counter kappa+i: component i of the second call continues the
	// sequence where the first left off had they overlapped
	require.NotEqual(t, y0[0], y7[0])

	y1 := ExpandMask(seed, 1, 19, 2)
	require.Equal(t, y0[1], y1[0])
}

func TestSampleInBallStructure(t *testing.T) {
	for _, tau := range []int{39, 49, 60} {
		c := SampleInBall(testSeed("ball"), tau)

		nonzero := 0
		for _, v := range c {
			switch v {
			case 0:
			case 1, q - 1:
				nonzero++
			default:
				t.Fatalf("tau %d: coefficient %d outside {-1, 0, 1}", tau, v)
			}
		}
		require.Equal(t, tau, nonzero, "tau %d", tau)
	}
}

func TestSampleInBallDeterministic(t *testing.T) {
	seed := testSeed("ball-det")
	require.Equal(t, SampleInBall(seed, 60), SampleInBall(seed, 60))
	require.NotEqual(t, SampleInBall(seed, 60), SampleInBall(testSeed("ball-det-2"), 60))
}
