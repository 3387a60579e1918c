package model

import "time"

const (
	AuthProviderTelegram = "telegram"

	LanguageEnglish  = "en"
	LanguageJapanese = "jp"
)

type User struct {
	ID               int64
	Username         string
	Points           int
	Premium          bool
	AuthProvider     string
	Language         string
	IsAdmin          bool
	RegistrationDate time.Time
	AuthDate         time.Time
}

// UserStats aggregates the activity counters achievements are measured against.
type UserStats struct {
	QuestsCompleted int
	TasksCompleted  int
	StampsCollected int
	PointsEarned    int
}
