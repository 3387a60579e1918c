package model

import "time"

type ChapterSummary struct {
	Total    int
	Unlocked int
}

type Story struct {
	ID             string
	Title          string
	Description    string
	Thumbnail      string
	IsUnlocked     bool
	Chapters       ChapterSummary
	RelatedRouteID *string
	Tags           []string
	CreatedAt      time.Time
}

type Route struct {
	ID          string
	Name        string
	Description string
	Region      string
	QuestIDs    []string
	CreatedAt   time.Time
}
