package model

import "time"

// Stamp is a Hanko stamp collected in the user's passport for a completed quest.
type Stamp struct {
	ID        int64
	UserID    int64
	QuestID   string
	Location  string
	AwardedAt time.Time
}

type Notification struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

const (
	NotificationQuestCompleted = "QUEST_COMPLETED"
	NotificationStampAwarded   = "STAMP_AWARDED"
	NotificationExchangeState  = "EXCHANGE_STATE"
)
