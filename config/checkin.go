package config

// CheckinConfig controls weekly schedule generation.
type CheckinConfig struct {
	// CycleCount is how many schedule variants are generated per week.
	CycleCount int

	// PointsMin/PointsMax bound the daily base points draw (inclusive).
	PointsMin int
	PointsMax int

	// SurpriseDaysMin/Max bound how many days per week carry a surprise.
	SurpriseDaysMin int
	SurpriseDaysMax int

	// CouponWeight is the probability that a surprise day carries a coupon
	// rather than a lottery draw. Lottery weight is the remainder.
	CouponWeight float64

	LotteryPools []LotteryPool

	// GenerateHour/GenerateMinute: Monday time for the weekly generation job.
	GenerateHour   int
	GenerateMinute int
}

// LotteryPool is one prize pool a surprise day can point at. Tier
// probabilities sum to 1.0 by construction.
type LotteryPool struct {
	Name        string        `json:"name"`
	TotalPoints int           `json:"total_points"`
	Tiers       []LotteryTier `json:"tiers"`
}

// LotteryTier is one row of a cumulative-probability payout table.
type LotteryTier struct {
	Probability float64 `json:"prob"`
	Points      int     `json:"points"`
	Message     string  `json:"message"`
}

// DefaultCheckinConfig mirrors the live tuning of the platform.
var DefaultCheckinConfig = CheckinConfig{
	CycleCount:      5,
	PointsMin:       5,
	PointsMax:       25,
	SurpriseDaysMin: 1,
	SurpriseDaysMax: 3,
	CouponWeight:    0.6,
	GenerateHour:    0,
	GenerateMinute:  0,
	LotteryPools: []LotteryPool{
		{
			Name:        "Split the 666 pot",
			TotalPoints: 666,
			Tiers: []LotteryTier{
				{Probability: 0.2, Points: 0, Message: "No luck this time"},
				{Probability: 0.2, Points: 5, Message: "Consolation prize: 5 points"},
				{Probability: 0.4, Points: 30, Message: "You won 30 points"},
				{Probability: 0.15, Points: 100, Message: "You won 100 points"},
				{Probability: 0.04, Points: 200, Message: "You won 200 points"},
				{Probability: 0.01, Points: 666, Message: "Jackpot! 666 points"},
			},
		},
		{
			Name:        "Split the 888 pot",
			TotalPoints: 888,
			Tiers: []LotteryTier{
				{Probability: 0.2, Points: 0, Message: "No luck this time"},
				{Probability: 0.2, Points: 5, Message: "Consolation prize: 5 points"},
				{Probability: 0.35, Points: 50, Message: "You won 50 points"},
				{Probability: 0.2, Points: 150, Message: "You won 150 points"},
				{Probability: 0.04, Points: 300, Message: "You won 300 points"},
				{Probability: 0.01, Points: 888, Message: "Jackpot! 888 points"},
			},
		},
	},
}
