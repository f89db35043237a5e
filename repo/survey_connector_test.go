package repo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VoteBot/model"
)

type recordedCall struct {
	operation string
	status    int
}

type recordingObserver struct {
	calls []recordedCall
}

func (r *recordingObserver) ObserveRemoteCall(operation string, status int, _ time.Duration) {
	r.calls = append(r.calls, recordedCall{operation, status})
}

func newTestConnector(t *testing.T, h http.HandlerFunc, opts ...ConnectorOption) *SurveyConnector {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewSurveyConnector(srv.URL+"/", "key-1", "secret", opts...)
}

func TestCreateSurvey(t *testing.T) {
	var got CreateSurveyRequest
	obs := &recordingObserver{}
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/vote", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("x-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "req-42", r.Header.Get("X-Request-ID"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"enter_code":"XYZ123"}`))
	}, WithCallObserver(obs))

	ctx := WithRequestID(context.Background(), "req-42")
	code, err := c.CreateSurvey(ctx, NewQuickSurvey(model.Draft{
		Email: "a@telekom.de",
		Title: "Lunch",
		Question: model.DraftQuestion{
			Type:    model.QuestionTypeSingleChoice,
			Text:    "Pizza?",
			Options: []string{"Yes", "No"},
		},
	}))

	require.NoError(t, err)
	assert.Equal(t, "XYZ123", code)
	assert.Equal(t, "secret", got.Data.Config.AdminPassword)
	assert.Equal(t, []recordedCall{{"create_survey", http.StatusOK}}, obs.calls)
}

func TestCreateSurveyStatusError(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad survey", http.StatusUnprocessableEntity)
	})

	_, err := c.CreateSurvey(context.Background(), CreateSurveyRequest{})

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnprocessableEntity, se.StatusCode)
	assert.Equal(t, "bad survey", se.Body)
	assert.Equal(t, "status 422: bad survey", se.Error())
}

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Len(t, r.Header.Get("X-Request-ID"), 36)
		w.Write([]byte(`{}`))
	})
	_, err := c.ListSurveys(context.Background())
	require.NoError(t, err)
}

func TestListSurveysSorted(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vote/", r.URL.Path)
		w.Write([]byte(`{
			"a": {"title": {"DE": "Zoo"}, "enter_code": "Z1"},
			"b": {"title": {"DE": "Apples"}, "enter_code": "B2"},
			"c": {"title": {"DE": "Apples"}, "enter_code": "A1"},
			"d": {"title": {}, "enter_code": ""}
		}`))
	})

	surveys, err := c.ListSurveys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.SurveySummary{
		{Title: "Apples", EnterCode: "A1"},
		{Title: "Apples", EnterCode: "B2"},
		{Title: "No title", EnterCode: "N/A"},
		{Title: "Zoo", EnterCode: "Z1"},
	}, surveys)
}

func TestFetchStructure(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/vote/OK1":
			w.Write([]byte(`{"data":{"question_blocks":{"0":{"title":{"DE":"B"},"questions":{"0":{"question":{"DE":"Q"}}}}}}}`))
		case "/vote/EMPTY":
			w.Write([]byte(`{"data":{"question_blocks":{}}}`))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	s, err := c.FetchStructure(ctx, "OK1")
	require.NoError(t, err)
	assert.Equal(t, []string{"0"}, s.QuestionIDs("0"))

	_, err = c.FetchStructure(ctx, "EMPTY")
	assert.ErrorIs(t, err, model.ErrEmptyStructure)

	_, err = c.FetchStructure(ctx, "NOPE")
	assert.ErrorIs(t, err, model.ErrSurveyNotFound)
}

func TestFetchQuestion(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/vote/C/blocks/0/questions/0":
			w.Write([]byte(`{"data":{"question":{"DE":"Pizza?"},"question_type":"ChoiceSingle",
				"config":{"options":{"0":{"DE":"Yes"},"1":{"DE":"No"}}}}}`))
		case "/vote/C/blocks/0/questions/1":
			w.Write([]byte(`{"data":{"question":{"DE":"Broken"},"question_type":"ChoiceMulti","config":{}}}`))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	q, err := c.FetchQuestion(ctx, "C", "0", "0")
	require.NoError(t, err)
	assert.Equal(t, "Pizza?", q.Text.String())
	assert.Equal(t, []string{"Yes", "No"}, q.OptionLabels())

	_, err = c.FetchQuestion(ctx, "C", "0", "1")
	assert.ErrorIs(t, err, model.ErrNoOptions)

	_, err = c.FetchQuestion(ctx, "C", "0", "9")
	assert.ErrorIs(t, err, model.ErrQuestionNotFound)
}

func TestSubmitAnswers(t *testing.T) {
	var body map[string]any
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/answers/C", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))
		w.WriteHeader(http.StatusCreated)
	})

	err := c.SubmitAnswers(context.Background(), "C", NewSubmitAnswers(map[model.AnswerKey][]string{
		{Block: "0", Question: "0"}: {"1"},
	}))
	require.NoError(t, err)
	assert.Contains(t, body, "blocks")
}

func TestFetchAnalytics(t *testing.T) {
	c := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analysis/C/blocks/0/questions/1", r.URL.Path)
		w.Write([]byte(`{"events":[{"content":{"answer":{"0":{"0":[{"answer":"1"}]}}}}]}`))
	})

	events, err := c.FetchAnalytics(context.Background(), "C", "0", "1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, []model.AnswerValue{{Value: "1"}}, events[0].Answers())
}

func TestTransportErrorObserved(t *testing.T) {
	obs := &recordingObserver{}
	c := NewSurveyConnector("http://127.0.0.1:1", "k", "p", WithCallObserver(obs))

	_, err := c.ListSurveys(context.Background())
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
	assert.Equal(t, []recordedCall{{"list_surveys", 0}}, obs.calls)
}
