package config

import "time"

// TeamConfig controls team formation and the completion payout.
type TeamConfig struct {
	// Size is the member count (captain included) that completes a team.
	Size int

	// CaptainReward/MemberReward are the points paid out on completion.
	CaptainReward int
	MemberReward  int

	// CodeLength is the length of the generated join code.
	CodeLength int

	// CodeMaxAttempts bounds collision retries during code generation.
	CodeMaxAttempts int

	// TTL is the pending-team lifetime; expiry is clamped to local midnight.
	TTL time.Duration
}

var DefaultTeamConfig = TeamConfig{
	Size:            4,
	CaptainReward:   70,
	MemberReward:    10,
	CodeLength:      8,
	CodeMaxAttempts: 10,
	TTL:             4 * time.Hour,
}
