package evaluation

import (
	"math"
	"math/rand/v2"
	"sort"
)

// TrainTestSplit shuffles row indices 0..n-1 with a seeded generator and
// reserves round(n*testFraction) of them for testing. The same seed always
// yields the same partition. Index slices are returned in ascending order.
func TrainTestSplit(n int, testFraction float64, seed uint64) Split {
	if n <= 0 {
		return Split{}
	}

	testCount := int(math.Round(float64(n) * testFraction))
	if testCount < 0 {
		testCount = 0
	}
	if testCount > n {
		testCount = n
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	perm := rng.Perm(n)

	test := append([]int(nil), perm[:testCount]...)
	train := append([]int(nil), perm[testCount:]...)
	sort.Ints(test)
	sort.Ints(train)

	return Split{Train: train, Test: test}
}
