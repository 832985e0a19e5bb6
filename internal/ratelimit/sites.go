package ratelimit

// siteLimits is the per-board tuning: how many fetches per trailing hour
// and how many simultaneous browser sessions one site will tolerate.
type siteLimits struct {
	MaxPerHour    int
	MaxConcurrent int
}

// siteTable holds individually tuned limits for the supported job boards.
// Hostnames are registered without the www. prefix.
var siteTable = map[string]siteLimits{
	"saramin.co.kr":     {MaxPerHour: 20, MaxConcurrent: 2},
	"jobkorea.co.kr":    {MaxPerHour: 20, MaxConcurrent: 2},
	"wanted.co.kr":      {MaxPerHour: 15, MaxConcurrent: 2},
	"programmers.co.kr": {MaxPerHour: 10, MaxConcurrent: 1},
	"jumpit.co.kr":      {MaxPerHour: 10, MaxConcurrent: 1},
	"rocketpunch.com":   {MaxPerHour: 10, MaxConcurrent: 1},
	"incruit.com":       {MaxPerHour: 5, MaxConcurrent: 1},
	"catch.co.kr":       {MaxPerHour: 5, MaxConcurrent: 1},
}

// defaultLimits applies to any hostname not in the table; unknown sites
// get the most conservative budget.
var defaultLimits = siteLimits{MaxPerHour: 5, MaxConcurrent: 1}
