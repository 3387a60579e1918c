package model

import (
	"errors"
	"time"
)

type TaskType string

const (
	TaskVisitLocation TaskType = "visit_location"
	TaskAnswerText    TaskType = "answer_text"
	TaskSelectOption  TaskType = "select_option"
	TaskShareSocial   TaskType = "share_social"
	TaskPhotoUpload   TaskType = "photo_upload"
	TaskQRScan        TaskType = "qr_scan"
	TaskGroupActivity TaskType = "group_activity"
)

var ErrInvalidTaskPayload = errors.New("invalid task payload")

func (t TaskType) Valid() bool {
	switch t {
	case TaskVisitLocation, TaskAnswerText, TaskSelectOption, TaskShareSocial,
		TaskPhotoUpload, TaskQRScan, TaskGroupActivity:
		return true
	}
	return false
}

type Task struct {
	ID          string
	QuestID     string
	Position    int
	Type        TaskType
	Title       string
	Description string
	IsCompleted bool
	Payload     TaskPayload
}

// TaskPayload holds the type specific data of a task. Only the fields
// belonging to the task type are populated.
type TaskPayload struct {
	Latitude     float64  `json:"latitude,omitempty"`
	Longitude    float64  `json:"longitude,omitempty"`
	RadiusMeters float64  `json:"radius_meters,omitempty"`
	Question     string   `json:"question,omitempty"`
	Answer       string   `json:"answer,omitempty"`
	Options      []string `json:"options,omitempty"`
	CorrectIndex int      `json:"correct_index,omitempty"`
	Platform     string   `json:"platform,omitempty"`
	Hashtag      string   `json:"hashtag,omitempty"`
	Prompt       string   `json:"prompt,omitempty"`
	QRCode       string   `json:"qr_code,omitempty"`
	MinMembers   int      `json:"min_members,omitempty"`
}

func (p TaskPayload) Validate(t TaskType) error {
	switch t {
	case TaskVisitLocation:
		if p.RadiusMeters <= 0 {
			return errors.Join(ErrInvalidTaskPayload, errors.New("visit_location requires radius_meters"))
		}
	case TaskAnswerText:
		if p.Question == "" || p.Answer == "" {
			return errors.Join(ErrInvalidTaskPayload, errors.New("answer_text requires question and answer"))
		}
	case TaskSelectOption:
		if len(p.Options) < 2 || p.CorrectIndex < 0 || p.CorrectIndex >= len(p.Options) {
			return errors.Join(ErrInvalidTaskPayload, errors.New("select_option requires options and a correct_index within them"))
		}
	case TaskShareSocial:
		if p.Platform == "" {
			return errors.Join(ErrInvalidTaskPayload, errors.New("share_social requires platform"))
		}
	case TaskQRScan:
		if p.QRCode == "" {
			return errors.Join(ErrInvalidTaskPayload, errors.New("qr_scan requires qr_code"))
		}
	case TaskGroupActivity:
		if p.MinMembers < 2 {
			return errors.Join(ErrInvalidTaskPayload, errors.New("group_activity requires min_members of at least 2"))
		}
	case TaskPhotoUpload:
	default:
		return errors.Join(ErrInvalidTaskPayload, errors.New("unknown task type"))
	}
	return nil
}

// TaskSubmission is the evidence a user sends when completing a task.
type TaskSubmission struct {
	Latitude     *float64
	Longitude    *float64
	Answer       string
	OptionIndex  *int
	ShareURL     string
	PhotoURL     string
	QRCode       string
	Participants int
}

type TaskCompletion struct {
	UserID      int64
	QuestID     string
	TaskID      string
	CompletedAt time.Time
}

// TaskCompletionResult describes what a task completion changed.
type TaskCompletionResult struct {
	QuestID        string
	TaskID         string
	Summary        TaskSummary
	AlreadyDone    bool
	QuestCompleted bool
	PointsAwarded  int
	Stamp          *Stamp
}
