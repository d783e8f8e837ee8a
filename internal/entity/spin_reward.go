package entity

type SpinSource string

const (
	SpinSourceWheel       SpinSource = "wheel"
	SpinSourceLegacyClaim SpinSource = "legacy_claim"
)

// SpinReward is one settled spin. The granted amount recorded here is the
// authoritative one; whatever the client wheel displayed is irrelevant.
type SpinReward struct {
	SnowFlakeBase

	UserID string
	User   User `gorm:"foreignKey:UserID"`

	Amount       int64
	SegmentLabel string
	Source       SpinSource
	DayKey       string `gorm:"index"`

	// Metadata snapshots the segment definition at settlement time, so the
	// history stays interpretable after the wheel configuration changes.
	Metadata Map
}
