package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoBlocks() Structure {
	return Structure{
		"0": {Title: Text("Intro"), Questions: map[string]Question{"0": {}, "1": {}}},
		"1": {Title: Text("Outro"), Questions: map[string]Question{"0": {}}},
	}
}

func TestStructureNext(t *testing.T) {
	s := twoBlocks()

	block, question, ok := s.First()
	require.True(t, ok)
	assert.Equal(t, [2]string{"0", "0"}, [2]string{block, question})

	var visited [][2]string
	for ok {
		visited = append(visited, [2]string{block, question})
		block, question, ok = s.Next(block, question)
	}
	assert.Equal(t, [][2]string{{"0", "0"}, {"0", "1"}, {"1", "0"}}, visited)
}

func TestStructureNextSkipsEmptyBlocks(t *testing.T) {
	s := Structure{
		"0": {Questions: map[string]Question{"0": {}}},
		"1": {Questions: map[string]Question{}},
		"2": {Questions: map[string]Question{"0": {}}},
	}

	block, question, ok := s.Next("0", "0")
	require.True(t, ok)
	assert.Equal(t, "2", block)
	assert.Equal(t, "0", question)

	_, _, ok = s.Next("2", "0")
	assert.False(t, ok)

	_, _, ok = s.Next("9", "0")
	assert.False(t, ok, "unknown block")
}

func TestStructureFirstEmpty(t *testing.T) {
	_, _, ok := Structure{"0": {}}.First()
	assert.False(t, ok)
}

func TestStructurePosition(t *testing.T) {
	index, total := twoBlocks().Position("0", "1")
	assert.Equal(t, 2, index)
	assert.Equal(t, 2, total)
}

func TestSortedKeysNumericOrder(t *testing.T) {
	m := map[string]int{"10": 0, "2": 0, "0": 0, "b": 0, "a": 0}
	assert.Equal(t, []string{"0", "2", "10", "a", "b"}, SortedKeys(m))
}

func TestAnswerValueUnmarshal(t *testing.T) {
	var values []AnswerValue
	err := json.Unmarshal([]byte(`[{"answer":"1"},{"answer":4.5},{"answer":null},{}]`), &values)
	require.NoError(t, err)

	assert.Equal(t, []AnswerValue{
		{Value: "1"},
		{Value: "4.5"},
		{Null: true},
		{Null: true},
	}, values)
}

func TestAnalyticsEventAnswers(t *testing.T) {
	var e AnalyticsEvent
	err := json.Unmarshal([]byte(`{"content":{"answer":{"0":{"0":[{"answer":"0"},{"answer":"2"}]}}}}`), &e)
	require.NoError(t, err)
	assert.Equal(t, []AnswerValue{{Value: "0"}, {Value: "2"}}, e.Answers())
}

func TestQuestionOptionLabels(t *testing.T) {
	q := Question{Config: QuestionConfig{Options: map[string]LocalizedText{
		"1":  Text("No"),
		"0":  Text("Yes"),
		"10": {"EN": "Later"},
	}}}
	assert.Equal(t, []string{"Yes", "No", "Later"}, q.OptionLabels())
}

func TestSessionResetKeepsLastSurvey(t *testing.T) {
	s := NewSession()
	s.Step = StepConfirmOverview
	s.Mode = ModeQuick
	s.Temp.Title = "Lunch"
	s.LastSurveyCode = "abc"

	s.ResetCreation()

	assert.False(t, s.Creating())
	assert.Equal(t, Draft{}, s.Temp)
	assert.Equal(t, "abc", s.LastSurveyCode)
}
