package evo

import "math/rand"

// TournamentSelector samples Size distinct indices into an ascending-ranked
// population and keeps the largest, which is the fittest sampled member.
// With Size equal to the population size the fittest member always wins;
// with Size 1 every member is equally likely.
type TournamentSelector struct {
	Size int
}

// Pick returns an index in [0, n). n must be positive.
func (s TournamentSelector) Pick(rng *rand.Rand, n int) int {
	rounds := s.Size
	if rounds < 1 {
		rounds = 1
	}
	if rounds > n {
		rounds = n
	}
	if rounds == 1 {
		return rng.Intn(n)
	}

	// Floyd's algorithm draws a uniform subset of distinct indices.
	seen := make(map[int]struct{}, rounds)
	best := -1
	for j := n - rounds; j < n; j++ {
		idx := rng.Intn(j + 1)
		if _, dup := seen[idx]; dup {
			idx = j
		}
		seen[idx] = struct{}{}
		if idx > best {
			best = idx
		}
	}
	return best
}
