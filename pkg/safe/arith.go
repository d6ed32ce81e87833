// Package safe does overflow-checked integer arithmetic.
package safe

import (
	"fmt"
	"math"
)

// AddUint64 returns a+b or an error when the sum overflows.
func AddUint64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, fmt.Errorf("%d + %d overflows uint64", a, b)
	}
	return a + b, nil
}

// SubUint64 returns a-b or an error when b exceeds a.
func SubUint64(a, b uint64) (uint64, error) {
	if b > a {
		return 0, fmt.Errorf("%d - %d underflows uint64", a, b)
	}
	return a - b, nil
}
