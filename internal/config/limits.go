package config

type Limits struct {
	MaxEditorWorkers int             `yaml:"max_editor_workers" validate:"required,min=1,max=100"`
	MaxRetries       int             `yaml:"max_retries" validate:"required,min=1,max=10"`
	MaxTokens        int             `yaml:"max_tokens" validate:"required,min=256,max=200000"`
	RateLimit        RateLimitConfig `yaml:"rate_limit" validate:"required"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" validate:"required,min=1,max=1000"`
	BurstSize         int `yaml:"burst_size" validate:"required,min=1,max=100"`
}

func DefaultLimits() Limits {
	return Limits{
		MaxEditorWorkers: 4,
		MaxRetries:       3,
		MaxTokens:        8192,
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 30,
			BurstSize:         10,
		},
	}
}
