package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration lets TOML files carry values like "12h" or "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	d.Duration = parsed
	return nil
}

type spinWheelFile struct {
	DailySpinLimit   int             `toml:"daily_spin_limit"`
	Segments         []SegmentConfig `toml:"segments"`
	PopupLimitPerDay int             `toml:"popup_limit_per_day"`
	PopupRepeatAfter Duration        `toml:"popup_repeat_after"`
	MinSpins         int             `toml:"min_spins"`
	MaxSpins         int             `toml:"max_spins"`
	SpinDuration     Duration        `toml:"spin_duration"`
	QuotaPoll        Duration        `toml:"quota_poll_interval"`
}

// Load builds the configurations from environment variables, and reads the
// wheel definition from the TOML file at SPIN_WHEEL_CONFIG (if set).
func Load() (Configs, error) {
	cfg := Configs{
		Env: getEnv("ENV", "local"),
		Database: DatabaseConfigs{
			Host:     getEnv("MYSQL_HOST", "localhost"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			Database: getEnv("MYSQL_DATABASE", "crickstats"),
			User:     getEnv("MYSQL_USER", "root"),
			Password: getEnv("MYSQL_PASSWORD", ""),
		},
		ApiServer: ServerConfigs{
			Host: getEnv("HOST", ""),
			Port: getEnv("PORT", "8000"),
		},
		Auth: AuthConfigs{
			AccessToken: TokenConfigs{
				Name:       "access_token",
				Secret:     getEnv("TOKEN_SECRET", "token-secret"),
				Expiration: 24 * time.Hour,
			},
		},
		Session: SessionConfigs{
			Secret: getEnv("SESSION_SECRET", "session-secret"),
			Name:   "session",
		},
		Redis: RedisConfigs{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		SpinWheel: DefaultSpinWheel(),
	}

	if path := os.Getenv("SPIN_WHEEL_CONFIG"); path != "" {
		var file spinWheelFile
		if _, err := toml.DecodeFile(path, &file); err != nil {
			return Configs{}, fmt.Errorf("cannot decode spin wheel config: %w", err)
		}

		cfg.SpinWheel = SpinWheelConfigs{
			DailySpinLimit:    file.DailySpinLimit,
			Segments:          file.Segments,
			PopupLimitPerDay:  file.PopupLimitPerDay,
			PopupRepeatAfter:  file.PopupRepeatAfter.Duration,
			MinSpins:          file.MinSpins,
			MaxSpins:          file.MaxSpins,
			SpinDuration:      file.SpinDuration.Duration,
			QuotaPollInterval: file.QuotaPoll.Duration,
		}
	}

	if err := cfg.SpinWheel.Validate(); err != nil {
		return Configs{}, err
	}

	return cfg, nil
}

// DefaultSpinWheel mirrors the wheel shipped with the original popup widget.
func DefaultSpinWheel() SpinWheelConfigs {
	return SpinWheelConfigs{
		DailySpinLimit: 2,
		Segments: []SegmentConfig{
			{Label: "Win 50", Value: 50, Weight: 1},
			{Label: "Win 100", Value: 100, Weight: 1},
			{Label: "Jackpot!", Value: 200, Weight: 1},
			{Label: "Win 75", Value: 75, Weight: 1},
			{Label: "Try Again", Value: 0, Weight: 1},
			{Label: "Win 150", Value: 150, Weight: 1},
			{Label: "Win 25", Value: 25, Weight: 1},
			{Label: "Bonus 125", Value: 125, Weight: 1},
		},
		PopupLimitPerDay:  2,
		PopupRepeatAfter:  12 * time.Hour,
		MinSpins:          5,
		MaxSpins:          8,
		SpinDuration:      5 * time.Second,
		QuotaPollInterval: 30 * time.Second,
	}
}

// Validate fails fast on a wheel no spin could be drawn from. This is a
// programmer or deployment error, not a runtime condition.
func (c SpinWheelConfigs) Validate() error {
	if len(c.Segments) == 0 {
		return errors.New("spin wheel requires at least one segment")
	}

	if c.DailySpinLimit <= 0 {
		return errors.New("daily spin limit must be a positive number")
	}

	for i, segment := range c.Segments {
		if segment.Value < 0 {
			return fmt.Errorf("segment %d has a negative value", i)
		}

		if segment.Weight <= 0 {
			return fmt.Errorf("segment %d must have a positive weight", i)
		}
	}

	if c.MinSpins <= 0 || c.MaxSpins < c.MinSpins {
		return errors.New("invalid spin range")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}
