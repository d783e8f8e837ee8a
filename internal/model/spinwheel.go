package model

type GetSpinStatusRequest struct {
	Username string `json:"username"`
}

type GetSpinStatusResponse struct {
	SpinsLeft int `json:"spins_left"`

	// LastReward is absent until the user has spun at least once.
	LastReward *int64 `json:"last_reward,omitempty"`
}

type SpinRequest struct {
	Username string `json:"username"`
}

type SpinResponse struct {
	Reward     int64 `json:"reward"`
	NewBalance int64 `json:"new_balance"`
	SpinsLeft  int   `json:"spins_left"`
}

// ClaimRewardRequest serves the legacy popup widget, which reports the
// points it landed on as query parameters.
type ClaimRewardRequest struct {
	Username string `json:"username"`
	Points   int64  `json:"points"`
}

type ClaimRewardResponse struct {
	NewBalance int64 `json:"new_balance"`
	SpinsLeft  int   `json:"spins_left"`
}

// TopicRewardClaimed carries RewardClaimedEvent packs. Everything showing a
// balance subscribes to it instead of coupling to the wheel.
const TopicRewardClaimed = "reward_claimed"

type RewardClaimedEvent struct {
	Username   string `json:"username"`
	Amount     int64  `json:"amount"`
	NewBalance int64  `json:"new_balance"`
}
