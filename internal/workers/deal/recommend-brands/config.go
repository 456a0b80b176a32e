// internal/workers/deal/recommend-brands/config.go
package recommendbrands

import "time"

type Config struct {
	BrandIndex    string
	CandidatePool int
	CacheTTL      time.Duration
	Timeout       time.Duration
}

func LoadConfig() *Config {
	return &Config{
		BrandIndex:    "brands",
		CandidatePool: 100,
		CacheTTL:      10 * time.Minute,
		Timeout:       30 * time.Second,
	}
}
