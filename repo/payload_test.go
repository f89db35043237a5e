package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VoteBot/model"
)

func TestLinearStructure(t *testing.T) {
	s := LinearStructure(3)
	assert.Equal(t, 0, s.Start)
	assert.Equal(t, map[string]Component{
		"0": {Default: 1},
		"1": {Default: 2},
		"2": {Default: -1},
	}, s.Components)

	assert.Equal(t, map[string]Component{"0": {Default: -1}}, LinearStructure(1).Components)
}

func TestNewQuickSurvey(t *testing.T) {
	req := NewQuickSurvey(model.Draft{
		Email: "jane@telekom.de",
		Title: "Lunch",
		Question: model.DraftQuestion{
			Type:    model.QuestionTypeMultiChoice,
			Text:    "What?",
			Options: []string{"Pizza", "Pasta"},
		},
	})

	cfg := req.Data.Config
	assert.Equal(t, "Lunch", cfg.Title.String())
	assert.Equal(t, "jane@telekom.de", cfg.Creator)
	assert.Equal(t, LinearStructure(1), cfg.Structure)

	require.Contains(t, req.Data.QuestionBlocks, "0")
	q := req.Data.QuestionBlocks["0"].Questions["0"]
	assert.True(t, q.Settings.Mandatory)
	assert.Equal(t, model.QuestionTypeMultiChoice, q.QuestionType)
	assert.Equal(t, map[string]model.LocalizedText{
		"0": {"DE": "Pizza"},
		"1": {"DE": "Pasta"},
	}, q.Config.Options)
}

func TestNewAdvancedSurvey(t *testing.T) {
	rating := model.DraftQuestion{Type: model.QuestionTypeRange, Text: "Rate", RatingMin: 1, RatingMax: 5, HasRange: true}
	text := model.DraftQuestion{Type: model.QuestionTypeText, Text: "Why?"}

	req := NewAdvancedSurvey(model.Draft{
		Title:       "Retro",
		Description: "Sprint 12",
		Blocks: []model.DraftBlock{
			{Title: "Mood", Questions: []model.DraftQuestion{rating, text}},
		},
		Standalone: []model.DraftQuestion{text},
	})

	blocks := req.Data.QuestionBlocks
	require.Len(t, blocks, 2)
	assert.Equal(t, LinearStructure(2), req.Data.Config.Structure)
	assert.Equal(t, "Sprint 12", req.Data.Config.Description.String())

	mood := blocks["0"]
	assert.Equal(t, LinearStructure(2), mood.Structure)
	assert.Equal(t, &model.RangeConfig{Min: 1, Max: 5, Start: "1", End: "5", StepSize: 1}, mood.Questions["0"].Config.Range)
	assert.False(t, mood.Questions["0"].Settings.Mandatory)

	extra := blocks["1"]
	assert.Equal(t, "Additional Questions", extra.Title.String())
	assert.Equal(t, LinearStructure(1), extra.Structure)
}

func TestNewSubmitAnswers(t *testing.T) {
	req := NewSubmitAnswers(map[model.AnswerKey][]string{
		{Block: "0", Question: "0"}: {"0", "2"},
		{Block: "1", Question: "0"}: {"hello"},
	})

	require.Len(t, req.Blocks, 2)
	first := req.Blocks["0"].Questions["0"]
	assert.Equal(t, model.Language, first.Lang)
	assert.False(t, first.Skip)
	assert.Equal(t, []map[string]map[string][]AnswerEntry{{"0": {"0": {
		{Answer: "0", CondAnswer: "string"},
		{Answer: "2", CondAnswer: "string"},
	}}}}, first.Answers)

	assert.Equal(t, "hello", req.Blocks["1"].Questions["0"].Answers[0]["0"]["0"][0].Answer)
}
