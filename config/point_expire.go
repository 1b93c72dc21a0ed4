package config

// ExpireDate is a recurring calendar date on which balances are swept.
type ExpireDate struct {
	Month int
	Day   int
	Name  string
}

// PointExpireConfig controls the scheduled balance expiration sweeps.
type PointExpireConfig struct {
	// Hour/Minute: local time of day the sweep fires on each ExpireDate.
	Hour   int
	Minute int

	Dates []ExpireDate

	// AutoExpire wires the sweep jobs into the scheduler when true.
	AutoExpire bool

	// MinExpirePoints: only users with balance strictly above this are swept.
	MinExpirePoints int
}

// DefaultPointExpireConfig sweeps at each quarter end, 23:59 local.
var DefaultPointExpireConfig = PointExpireConfig{
	Hour:   23,
	Minute: 59,
	Dates: []ExpireDate{
		{Month: 3, Day: 31, Name: "Q1 expiration"},
		{Month: 6, Day: 30, Name: "Q2 expiration"},
		{Month: 9, Day: 30, Name: "Q3 expiration"},
		{Month: 12, Day: 31, Name: "Q4 expiration"},
	},
	AutoExpire:      true,
	MinExpirePoints: 0,
}
