package services

import (
	"math/rand"
	"sync"

	"loyalty-points-system/models"
)

// rng is a lockable random source shared by the randomized-reward paths.
// Services hold their own instance so tests can seed it deterministically.
type rng struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newRNG(seed int64) *rng {
	return &rng{r: rand.New(rand.NewSource(seed))}
}

func (g *rng) Float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.r.Float64()
}

func (g *rng) Intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.r.Intn(n)
}

// IntBetween draws uniformly from [min, max] inclusive.
func (g *rng) IntBetween(min, max int) int {
	if max <= min {
		return min
	}
	return min + g.Intn(max-min+1)
}

// pickWeighted draws one index from a probability table by walking the
// cumulative sum. Probabilities are expected to sum to 1.0; if
// floating-point drift leaves the draw unmatched the last index is
// returned, so the pick never fails. Shared by the coupon-vs-lottery
// choice, the pool choice and the payout tier draw.
func pickWeighted(g *rng, probs []float64) int {
	draw := g.Float64()
	cumulative := 0.0
	for i, p := range probs {
		cumulative += p
		if draw <= cumulative {
			return i
		}
	}
	return len(probs) - 1
}

// LotteryOutcome is the resolved result of one lottery draw.
type LotteryOutcome struct {
	PoolName string `json:"pool_name"`
	Points   int    `json:"points"`
	Message  string `json:"message"`
}

// resolveLottery draws one payout tier from a surprise's prize pool.
func resolveLottery(g *rng, surprise *models.LotterySurprise) LotteryOutcome {
	probs := make([]float64, len(surprise.Tiers))
	for i, tier := range surprise.Tiers {
		probs[i] = tier.Probability
	}
	tier := surprise.Tiers[pickWeighted(g, probs)]
	return LotteryOutcome{
		PoolName: surprise.PoolName,
		Points:   tier.Points,
		Message:  tier.Message,
	}
}
