package domain

import "time"

// Run is one iteration of the bot loop: a strategy executed against a
// quantity and the terminal status it produced.
type Run struct {
	ID         string
	Number     int64
	Strategy   string
	Symbol     string
	Quantity   string
	Status     string
	Filled     int64
	Expired    int64
	StartedAt  time.Time
	FinishedAt time.Time
}

// BotState is the live snapshot of the bot loop published for dashboards.
type BotState struct {
	Symbol         string    `json:"symbol"`
	Run            int64     `json:"run"`
	Strategy       string    `json:"strategy"`
	Quantity       string    `json:"quantity"`
	Filled         int64     `json:"filled"`
	Expired        int64     `json:"expired"`
	StrategyStreak int64     `json:"strategy_streak"`
	LastStatus     string    `json:"last_status"`
	UpdatedAt      time.Time `json:"updated_at"`
}
