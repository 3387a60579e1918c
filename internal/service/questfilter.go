package service

import (
	"fmt"
	"strings"

	"tourii_backend/internal/model"
)

type QuestTab string

const (
	TabAll       QuestTab = "all"
	TabAvailable QuestTab = "available"
	TabActive    QuestTab = "active"
	TabCompleted QuestTab = "completed"
)

// ParseQuestTab maps a query value to a tab. An empty value selects all quests.
func ParseQuestTab(s string) (QuestTab, error) {
	switch tab := QuestTab(strings.ToLower(s)); tab {
	case "":
		return TabAll, nil
	case TabAll, TabAvailable, TabActive, TabCompleted:
		return tab, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidQuestTab, s)
	}
}

// QuestFilter selects quests by status tab, free text, difficulty and tags.
// Empty difficulty or tag sets do not restrict the result.
type QuestFilter struct {
	ActiveTab          QuestTab
	SearchQuery        string
	SelectedDifficulty []model.Difficulty
	SelectedTypes      []string
}

func (f QuestFilter) Match(q *model.Quest) bool {
	return f.matchTab(q) && f.matchQuery(q) && f.matchDifficulty(q) && f.matchTags(q)
}

func (f QuestFilter) matchTab(q *model.Quest) bool {
	if f.ActiveTab == "" || f.ActiveTab == TabAll {
		return true
	}
	return string(q.Status) == string(f.ActiveTab)
}

func (f QuestFilter) matchQuery(q *model.Quest) bool {
	if f.SearchQuery == "" {
		return true
	}
	query := strings.ToLower(f.SearchQuery)
	return strings.Contains(strings.ToLower(q.Title), query) ||
		strings.Contains(strings.ToLower(q.Description), query) ||
		strings.Contains(strings.ToLower(q.Location), query)
}

func (f QuestFilter) matchDifficulty(q *model.Quest) bool {
	if len(f.SelectedDifficulty) == 0 {
		return true
	}
	for _, d := range f.SelectedDifficulty {
		if d == q.Difficulty {
			return true
		}
	}
	return false
}

func (f QuestFilter) matchTags(q *model.Quest) bool {
	if len(f.SelectedTypes) == 0 {
		return true
	}
	for _, selected := range f.SelectedTypes {
		for _, tag := range q.Tags {
			if tag == selected {
				return true
			}
		}
	}
	return false
}

// FilterQuests returns the quests matching f, keeping their order.
func FilterQuests(quests []*model.Quest, f QuestFilter) []*model.Quest {
	out := make([]*model.Quest, 0, len(quests))
	for _, q := range quests {
		if f.Match(q) {
			out = append(out, q)
		}
	}
	return out
}
