package model

type AchievementMetric string

const (
	MetricQuestsCompleted AchievementMetric = "quests_completed"
	MetricTasksCompleted  AchievementMetric = "tasks_completed"
	MetricStampsCollected AchievementMetric = "stamps_collected"
	MetricPointsEarned    AchievementMetric = "points_earned"
)

type Achievement struct {
	ID          string
	Title       string
	Description string
	Category    string
	Metric      AchievementMetric
	Target      int
}

type AchievementProgress struct {
	Achievement *Achievement
	Current     int
	Target      int
	Percent     float64
	IsUnlocked  bool
}
