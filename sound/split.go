package sound

import (
	"fmt"
	"math"
	"math/rand"
)

// TrainTestSplit shuffles the indices 0..n-1 with the given seed and
// carves off the last ceil(n*testRatio) shuffled positions as the test
// set. The same n, testRatio and seed always produce the same split.
//
// The split is not stratified: with small or imbalanced datasets a class
// can land entirely in one side, so evaluation numbers on tiny datasets
// deserve suspicion.
func TrainTestSplit(n int, testRatio float64, seed int64) (trainIdx, testIdx []int, err error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("cannot split %d samples", n)
	}
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("test ratio must be in (0, 1), got %g", testRatio)
	}
	testCount := int(math.Ceil(float64(n) * testRatio))
	if testCount >= n {
		return nil, nil, fmt.Errorf("test ratio %g leaves no training samples out of %d", testRatio, n)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	trainIdx = perm[:n-testCount]
	testIdx = perm[n-testCount:]
	return trainIdx, testIdx, nil
}
