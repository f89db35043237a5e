package repo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"VoteBot/model"
)

// CreateSurvey publishes a survey and returns its enter code.
func (sc *SurveyConnector) CreateSurvey(ctx context.Context, survey CreateSurveyRequest) (string, error) {
	survey.Data.Config.AdminPassword = sc.adminPassword

	var resp struct {
		EnterCode string `json:"enter_code"`
	}
	if err := sc.do(ctx, "create_survey", http.MethodPost, "/vote", survey, &resp); err != nil {
		return "", fmt.Errorf("error creating survey: %w", err)
	}
	if resp.EnterCode == "" {
		return "", errors.New("error creating survey: response carries no enter code")
	}
	return resp.EnterCode, nil
}

// ListSurveys lists every survey visible to the API key, ordered by title.
func (sc *SurveyConnector) ListSurveys(ctx context.Context) ([]model.SurveySummary, error) {
	var resp map[string]struct {
		Title     model.LocalizedText `json:"title"`
		EnterCode string              `json:"enter_code"`
	}
	if err := sc.do(ctx, "list_surveys", http.MethodGet, "/vote/", nil, &resp); err != nil {
		return nil, fmt.Errorf("error listing surveys: %w", err)
	}

	surveys := make([]model.SurveySummary, 0, len(resp))
	for _, s := range resp {
		title := s.Title.String()
		if title == "" {
			title = "No title"
		}
		code := s.EnterCode
		if code == "" {
			code = "N/A"
		}
		surveys = append(surveys, model.SurveySummary{Title: title, EnterCode: code})
	}
	sort.Slice(surveys, func(i, j int) bool {
		if surveys[i].Title != surveys[j].Title {
			return surveys[i].Title < surveys[j].Title
		}
		return surveys[i].EnterCode < surveys[j].EnterCode
	})
	return surveys, nil
}

// FetchStructure loads the block/question tree of a survey.
func (sc *SurveyConnector) FetchStructure(ctx context.Context, code string) (model.Structure, error) {
	var resp struct {
		Data struct {
			QuestionBlocks model.Structure `json:"question_blocks"`
		} `json:"data"`
	}
	err := sc.do(ctx, "fetch_structure", http.MethodGet, "/vote/"+url.PathEscape(code), nil, &resp)
	if isNotFound(err) {
		return nil, fmt.Errorf("error reading survey %q: %w", code, model.ErrSurveyNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading survey %q: %w", code, err)
	}
	if _, _, ok := resp.Data.QuestionBlocks.First(); !ok {
		return nil, fmt.Errorf("error reading survey %q: %w", code, model.ErrEmptyStructure)
	}
	return resp.Data.QuestionBlocks, nil
}

// FetchQuestion loads a single question.
func (sc *SurveyConnector) FetchQuestion(ctx context.Context, code, block, question string) (*model.Question, error) {
	var resp struct {
		Data *model.Question `json:"data"`
	}
	err := sc.do(ctx, "fetch_question", http.MethodGet, questionPath("/vote", code, block, question), nil, &resp)
	if isNotFound(err) {
		return nil, fmt.Errorf("error reading question %s/%s of %q: %w", block, question, code, model.ErrQuestionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading question %s/%s of %q: %w", block, question, code, err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("error reading question %s/%s of %q: %w", block, question, code, model.ErrQuestionNotFound)
	}
	if resp.Data.Type.IsChoice() && len(resp.Data.Config.Options) == 0 {
		return nil, fmt.Errorf("error reading question %s/%s of %q: %w", block, question, code, model.ErrNoOptions)
	}
	return resp.Data, nil
}

// SubmitAnswers sends every buffered answer of a participation in one call.
func (sc *SurveyConnector) SubmitAnswers(ctx context.Context, code string, answers SubmitAnswersRequest) error {
	if err := sc.do(ctx, "submit_answers", http.MethodPost, "/answers/"+url.PathEscape(code), answers, nil); err != nil {
		return fmt.Errorf("error submitting answers for %q: %w", code, err)
	}
	return nil
}

// FetchAnalytics loads the recorded answers of one question.
func (sc *SurveyConnector) FetchAnalytics(ctx context.Context, code, block, question string) ([]model.AnalyticsEvent, error) {
	var resp struct {
		Events []model.AnalyticsEvent `json:"events"`
	}
	if err := sc.do(ctx, "fetch_analytics", http.MethodGet, questionPath("/analysis", code, block, question), nil, &resp); err != nil {
		return nil, fmt.Errorf("error reading results of %s/%s of %q: %w", block, question, code, err)
	}
	return resp.Events, nil
}

func questionPath(prefix, code, block, question string) string {
	return fmt.Sprintf("%s/%s/blocks/%s/questions/%s", prefix,
		url.PathEscape(code), url.PathEscape(block), url.PathEscape(question))
}
