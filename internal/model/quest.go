package model

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type QuestStatus string

const (
	QuestStatusAvailable QuestStatus = "available"
	QuestStatusActive    QuestStatus = "active"
	QuestStatusCompleted QuestStatus = "completed"
)

type QuestRewards struct {
	Points int
	NFT    *string
}

// TaskSummary counts the tasks of a quest. Completed never exceeds Total.
type TaskSummary struct {
	Total     int
	Completed int
}

type Quest struct {
	ID              string
	Title           string
	Description     string
	Location        string
	Thumbnail       string
	Rewards         QuestRewards
	Difficulty      Difficulty
	Duration        string
	Tasks           TaskSummary
	Status          QuestStatus
	Tags            []string
	IsGroupActivity bool
	CreatedAt       time.Time
}

// QuestProgress is the per-user state of a quest.
type QuestProgress struct {
	UserID      int64
	QuestID     string
	Status      QuestStatus
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// QuestDetails is a quest together with its ordered tasks.
type QuestDetails struct {
	Quest *Quest
	Tasks []*Task
}
