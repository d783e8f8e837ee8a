package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string

	Database  DatabaseConfigs
	ApiServer ServerConfigs
	Auth      AuthConfigs
	Session   SessionConfigs
	Redis     RedisConfigs
	SpinWheel SpinWheelConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string
	Cert string
	Key  string
}

func (s *ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type SessionConfigs struct {
	Secret string
	Name   string
}

type AuthConfigs struct {
	AccessToken TokenConfigs
}

type TokenConfigs struct {
	Name       string
	Secret     string
	Expiration time.Duration
}

type RedisConfigs struct {
	Addr string
}

// SpinWheelConfigs is loaded from a TOML file. The segment list is ordered:
// the index defines the angular position of the segment on the wheel.
type SpinWheelConfigs struct {
	DailySpinLimit int             `toml:"daily_spin_limit"`
	Segments       []SegmentConfig `toml:"segments"`

	// Popup gate policy.
	PopupLimitPerDay int           `toml:"popup_limit_per_day"`
	PopupRepeatAfter time.Duration `toml:"popup_repeat_after"`

	// Presentation only.
	MinSpins     int           `toml:"min_spins"`
	MaxSpins     int           `toml:"max_spins"`
	SpinDuration time.Duration `toml:"spin_duration"`

	QuotaPollInterval time.Duration `toml:"quota_poll_interval"`
}

type SegmentConfig struct {
	Label  string `toml:"label"`
	Value  int    `toml:"value"`
	Weight int    `toml:"weight"`
}
