package handler

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VoteBot/model"
	"VoteBot/repo"
)

func choiceConfig(labels ...string) model.QuestionConfig {
	cfg := model.QuestionConfig{Options: map[string]model.LocalizedText{}}
	for i, l := range labels {
		cfg.Options[string(rune('0'+i))] = model.Text(l)
	}
	return cfg
}

var (
	lunchQuestion = &model.Question{Text: model.Text("Pizza?"), Type: model.QuestionTypeSingleChoice, Config: choiceConfig("Yes", "No")}
	toppings      = &model.Question{Text: model.Text("Toppings?"), Type: model.QuestionTypeMultiChoice, Config: choiceConfig("Ham", "Olives", "Basil")}
	mood          = &model.Question{Text: model.Text("Mood?"), Type: model.QuestionTypeRange, Config: model.QuestionConfig{Range: &model.RangeConfig{Min: 1, Max: 5}}}
	comment       = &model.Question{Text: model.Text("Anything else?"), Type: model.QuestionTypeText}
)

// seedSurvey publishes survey C: block 0 holds a single and a multi choice
// question, block 1 a range question.
func seedSurvey(h *harness) {
	h.surveys.structures = map[string]model.Structure{
		"C": {
			"0": {Title: model.Text("Food"), Questions: map[string]model.Question{"0": {}, "1": {}}},
			"1": {Title: model.Text("Mood"), Questions: map[string]model.Question{"0": {}}},
		},
		"T": {"0": {Questions: map[string]model.Question{"0": {}}}},
	}
	h.surveys.questions = map[string]*model.Question{
		questionKey("C", "0", "0"): lunchQuestion,
		questionKey("C", "0", "1"): toppings,
		questionKey("C", "1", "0"): mood,
		questionKey("T", "0", "0"): comment,
	}
}

func submittedAnswers(t *testing.T, req repo.SubmitAnswersRequest, block, question string) []string {
	t.Helper()
	q, ok := req.Blocks[block].Questions[question]
	require.True(t, ok, "no answer for %s/%s", block, question)
	var values []string
	for _, e := range q.Answers[0]["0"]["0"] {
		values = append(values, e.Answer)
	}
	return values
}

func TestVoteFlowSubmitsOnce(t *testing.T) {
	h := newHarness(t)
	seedSurvey(h)

	first := h.send("vote C")
	assert.Contains(t, first, "Pizza?")
	assert.Contains(t, first, "0. Yes")
	assert.Contains(t, first, "1. No")
	assert.Contains(t, first, "Enter your choice (number):")

	assert.Contains(t, h.send("0"), "Enter one or more option numbers separated by commas:")
	assert.Empty(t, h.surveys.submitted, "answers are buffered until the end")

	assert.Contains(t, h.send("2, 0 2"), "Range: 1 to 5")
	reply := h.send("3.6")
	assert.Contains(t, reply, "All questions answered!")

	require.Len(t, h.surveys.submitted, 1)
	sub := h.surveys.submitted[0]
	assert.Equal(t, "C", sub.code)
	assert.Equal(t, []string{"0"}, submittedAnswers(t, sub.answers, "0", "0"))
	assert.Equal(t, []string{"2", "0"}, submittedAnswers(t, sub.answers, "0", "1"))
	assert.Equal(t, []string{"4"}, submittedAnswers(t, sub.answers, "1", "0"))

	s := h.session()
	assert.False(t, s.Voting())
	assert.Nil(t, s.VoteAnswers)
}

func TestVoteInvalidAnswersReprompt(t *testing.T) {
	h := newHarness(t)
	seedSurvey(h)
	h.send("vote C")

	assert.Contains(t, h.send("7"), "between 0 and 1")
	assert.Contains(t, h.send("yes"), "valid number")
	assert.Contains(t, h.send("help"), "valid number", "commands are answers while voting")
	assert.Equal(t, "0", h.session().PendingVote.Question)

	h.sendAll("1", "0,9")
	assert.Equal(t, "1", h.session().PendingVote.Question)

	h.send("1")
	assert.Contains(t, h.send("9"), "between 1 and 5")
	assert.Contains(t, h.send("many"), "valid number")
	assert.Empty(t, h.surveys.submitted)
}

func TestVoteCancelAndRestart(t *testing.T) {
	h := newHarness(t)
	seedSurvey(h)

	h.sendAll("vote C", "1")
	assert.Len(t, h.session().VoteAnswers, 1)

	assert.Contains(t, h.send("vote C"), "Pizza?")
	assert.Empty(t, h.session().VoteAnswers, "restart drops buffered answers")
	assert.Equal(t, "0", h.session().PendingVote.Block)

	assert.Contains(t, h.send("cancel"), "Voting cancelled")
	assert.False(t, h.session().Voting())
	assert.Empty(t, h.surveys.submitted)
}

func TestVoteUnknownOrEmptySurvey(t *testing.T) {
	h := newHarness(t)
	seedSurvey(h)
	h.surveys.structures["E"] = model.Structure{"0": {}}

	assert.Contains(t, h.send("vote NOPE"), "survey code 'NOPE' not found")
	assert.Contains(t, h.send("vote E"), "has no questions")
	assert.False(t, h.session().Voting())
}

func TestVoteQuestionWithoutOptions(t *testing.T) {
	h := newHarness(t)
	seedSurvey(h)
	h.surveys.questions[questionKey("T", "0", "0")] = &model.Question{Type: model.QuestionTypeSingleChoice}

	assert.Contains(t, h.send("vote T"), "has no options configured")
	p := h.session().PendingVote
	require.NotNil(t, p)
	assert.Nil(t, p.Current)

	assert.Contains(t, h.send("1"), "could not be loaded")
	assert.Contains(t, h.send("vote C"), "Pizza?")
}

func TestVoteSubmitFailureDropsAnswers(t *testing.T) {
	h := newHarness(t)
	seedSurvey(h)
	h.surveys.submitErr = &repo.StatusError{StatusCode: 500, Body: "down"}

	h.send("vote T")
	reply := h.send("<b>great</b>")
	assert.Contains(t, reply, "Failed to submit your answers:</strong> status 500: down")
	assert.False(t, h.session().Voting())

	require.Len(t, h.surveys.submitted, 1)
	assert.Equal(t, []string{"<b>great</b>"}, submittedAnswers(t, h.surveys.submitted[0].answers, "0", "0"))
}

func TestVoteBySurveyNumber(t *testing.T) {
	h := newHarness(t)
	seedSurvey(h)
	h.surveys.list = []model.SurveySummary{{Title: "Lunch", EnterCode: "C"}, {Title: "Feedback", EnterCode: "T"}}

	list := h.send("vote")
	assert.Contains(t, list, "1. Lunch")
	assert.Contains(t, list, "2. Feedback")

	assert.Contains(t, h.send("5"), "between 1 and 2")
	assert.Contains(t, h.send("2"), "Anything else?")
	assert.Empty(t, h.session().VoteChoices)
	assert.Equal(t, "T", h.session().PendingVote.Code)

	h.sendAll("cancel", "vote")
	assert.Contains(t, h.send("cancel"), "Survey selection cancelled")
	assert.Empty(t, h.session().VoteChoices)
}

func TestVoteListFailure(t *testing.T) {
	h := newHarness(t)
	h.surveys.listErr = errors.New("connection refused")

	assert.Contains(t, h.send("vote"), "Could not load the surveys: connection refused")
	assert.Contains(t, h.send("fetch"), "Could not load the surveys")

	h.surveys.listErr = nil
	assert.Contains(t, h.send("vote"), "No surveys available")
	assert.Contains(t, h.send("fetch"), "No surveys found")
}

func TestParseAnswer(t *testing.T) {
	for _, tc := range []struct {
		name    string
		q       *model.Question
		in      string
		want    []string
		problem bool
	}{
		{"single", lunchQuestion, "1", []string{"1"}, false},
		{"single out of range", lunchQuestion, "2", nil, true},
		{"single negative", lunchQuestion, "-1", nil, true},
		{"multi dedup", toppings, "2 2,1", []string{"2", "1"}, false},
		{"multi empty", toppings, " , ", nil, true},
		{"multi junk", toppings, "1,x", nil, true},
		{"range rounds", mood, "2.5", []string{"3"}, false},
		{"range bounds", mood, "0", nil, true},
		{"range nan", mood, "NaN", nil, true},
		{"range huge", &model.Question{Type: model.QuestionTypeRange}, "1e300", nil, true},
		{"range infinite", &model.Question{Type: model.QuestionTypeRange}, "-Inf", nil, true},
		{"range unbounded", &model.Question{Type: model.QuestionTypeRange}, "-40", []string{"-40"}, false},
		{"text", comment, " fine ", []string{"fine"}, false},
		{"text empty", comment, "  ", nil, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, problem := parseAnswer(tc.q, tc.in)
			assert.Equal(t, tc.problem, problem != "", problem)
			assert.Equal(t, tc.want, got)
		})
	}
}

func analyticsEvents(t *testing.T, answers ...string) []model.AnalyticsEvent {
	t.Helper()
	var out []model.AnalyticsEvent
	for _, a := range answers {
		var e model.AnalyticsEvent
		raw := `{"content":{"answer":{"0":{"0":[{"answer":"` + a + `"}]}}}}`
		require.NoError(t, json.Unmarshal([]byte(raw), &e))
		out = append(out, e)
	}
	return out
}

func TestResult(t *testing.T) {
	h := newHarness(t)
	seedSurvey(h)
	h.surveys.events = map[string][]model.AnalyticsEvent{
		questionKey("C", "0", "0"): analyticsEvents(t, "0", "0", "1"),
	}

	assert.Contains(t, h.send("result"), "No survey created in this chat yet")

	h.session().LastSurveyCode = "C"
	report := h.send("result")
	assert.Contains(t, report, "Yes: 2 votes")
	assert.Contains(t, report, "No: 1 votes")
	assert.Contains(t, report, "Not enough responses yet.")

	single := h.send("result C 0 0")
	assert.Contains(t, single, "Total responses: 3")
	assert.NotContains(t, single, "Toppings?")

	assert.Contains(t, h.send("result C 0 9"), "question 9 of block 0 not found")
	assert.Contains(t, h.send("result NOPE"), "survey 'NOPE' not found")
}

func TestFetch(t *testing.T) {
	h := newHarness(t)
	h.surveys.list = []model.SurveySummary{{Title: "<Lunch>", EnterCode: "C"}}

	reply := h.send("fetch")
	assert.Contains(t, reply, "Available surveys:")
	assert.Contains(t, reply, "• <strong>&lt;Lunch&gt;</strong> (code: C)")
}
