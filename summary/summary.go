// Package summary turns the analytics events of the survey service into
// readable result tallies.
package summary

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"VoteBot/model"
)

const separator = "-----------------------------------"

// Source is the part of the survey service the summarizer reads from.
type Source interface {
	FetchStructure(ctx context.Context, code string) (model.Structure, error)
	FetchQuestion(ctx context.Context, code, block, question string) (*model.Question, error)
	FetchAnalytics(ctx context.Context, code, block, question string) ([]model.AnalyticsEvent, error)
}

type Kind int

const (
	KindNoResponses Kind = iota
	KindChoice
	KindNumeric
	KindText
)

type OptionCount struct {
	Label string
	Votes int
}

// Result is the tally of one question.
type Result struct {
	Kind Kind

	// Choice questions
	Options []OptionCount
	Total   int

	// Numeric and text questions
	Responses  int
	Average    float64
	HasAverage bool
}

// Tally counts the events of one question according to its type.
func Tally(q *model.Question, events []model.AnalyticsEvent) Result {
	if len(events) == 0 {
		return Result{Kind: KindNoResponses}
	}

	var answers []string
	for _, e := range events {
		for _, a := range e.Answers() {
			if !a.Null {
				answers = append(answers, a.Value)
			}
		}
	}

	switch {
	case q.Type.IsChoice():
		return tallyChoice(q.OptionLabels(), events)

	case q.Type == model.QuestionTypeRange:
		var sum float64
		res := Result{Kind: KindNumeric}
		for _, a := range answers {
			v, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
			if err != nil {
				continue
			}
			sum += v
			res.Responses++
		}
		if res.Responses > 0 {
			res.Average = sum / float64(res.Responses)
			res.HasAverage = true
		}
		return res

	default:
		return Result{Kind: KindText, Responses: len(answers)}
	}
}

// tallyChoice counts votes per option. Total counts participants: an event
// picking several options of a multi choice question is one response.
func tallyChoice(labels []string, events []model.AnalyticsEvent) Result {
	votes := make([]int, len(labels))
	res := Result{Kind: KindChoice}
	for _, e := range events {
		responded := false
		for _, a := range e.Answers() {
			if a.Null {
				continue
			}
			i, err := strconv.Atoi(strings.TrimSpace(a.Value))
			if err != nil || i < 0 || i >= len(labels) {
				continue
			}
			votes[i]++
			responded = true
		}
		if responded {
			res.Total++
		}
	}
	for i, label := range labels {
		res.Options = append(res.Options, OptionCount{Label: label, Votes: votes[i]})
	}
	return res
}

// Format renders a tally under a header naming the survey, block and question.
func Format(code, block string, q *model.Question, r Result) string {
	lines := []string{
		"Results for Survey " + code,
		"Block: " + block,
		"Question: " + q.Text.String(),
	}

	switch r.Kind {
	case KindNoResponses:
		lines = append(lines, "Not enough responses yet.")
	case KindChoice:
		lines = append(lines, separator)
		for _, o := range r.Options {
			lines = append(lines, fmt.Sprintf("%s: %d votes", o.Label, o.Votes))
		}
		lines = append(lines, separator, fmt.Sprintf("Total responses: %d", r.Total))
	case KindNumeric:
		if !r.HasAverage {
			lines = append(lines, "No numeric answers yet.")
			break
		}
		lines = append(lines, separator,
			fmt.Sprintf("Responses: %d", r.Responses),
			fmt.Sprintf("Average: %.2f", r.Average))
	case KindText:
		lines = append(lines, separator, fmt.Sprintf("Text responses: %d", r.Responses))
	}
	return strings.Join(lines, "\n")
}

// Summarizer fetches analytics and formats results.
type Summarizer struct {
	source Source
}

func NewSummarizer(source Source) *Summarizer {
	return &Summarizer{source: source}
}

// Question reports the results of a single question.
func (s *Summarizer) Question(ctx context.Context, code, block, question string) (string, error) {
	events, err := s.source.FetchAnalytics(ctx, code, block, question)
	if err != nil {
		return "", err
	}
	q, err := s.source.FetchQuestion(ctx, code, block, question)
	if err != nil {
		return "", err
	}
	return Format(code, block, q, Tally(q, events)), nil
}

// Survey walks every block and question in numeric order and concatenates
// their results under block headers. A question whose results cannot be
// loaded is reported inline and does not abort the report.
func (s *Summarizer) Survey(ctx context.Context, code string) (string, error) {
	structure, err := s.source.FetchStructure(ctx, code)
	if err != nil {
		return "", err
	}

	lines := []string{"Results for survey " + code}
	for _, blockID := range structure.BlockIDs() {
		title := structure[blockID].Title.String()
		if title == "" {
			title = "Block " + blockID
		}
		lines = append(lines, "", fmt.Sprintf("=== Block %s: %s ===", blockID, title), "")

		for _, questionID := range structure.QuestionIDs(blockID) {
			text, err := s.Question(ctx, code, blockID, questionID)
			if err != nil {
				text = fmt.Sprintf("cannot fetch result for question %s: %v", questionID, err)
			}
			lines = append(lines, text, "")
		}
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n"), nil
}
