package pathfinder

import (
	"math"
	"runtime"
)

type Real = float64

func isFinite(x Real) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) }

func clamp01(x Real) Real {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func imax(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func rmin(a, b Real) Real {
	if a < b {
		return a
	}
	return b
}

func rmax(a, b Real) Real {
	if a > b {
		return a
	}
	return b
}

func lerp(a, b, t Real) Real { return a + (b-a)*t }

// workerCount resolves a configured thread count, 0 or less meaning one per CPU.
func workerCount(n int) int {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return imax(n, 1)
}

func copyAlphas(a []Real) []Real {
	if len(a) == 0 {
		return nil
	}
	out := make([]Real, len(a))
	copy(out, a)
	return out
}
