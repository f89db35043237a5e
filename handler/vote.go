package handler

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"VoteBot/model"
	"VoteBot/repo"
)

// remoteError renders a failed remote call for the user, with the status and
// body of the service verbatim when there is one.
func remoteError(err error) string {
	var se *repo.StatusError
	if errors.As(err, &se) {
		return se.Error()
	}
	return err.Error()
}

// listForVote offers every survey by number; the next message picks one.
func (d *Dispatcher) listForVote(t *turn) {
	surveys, err := d.surveys.ListSurveys(t.ctx)
	if err != nil {
		t.log().Error().Err(err).Msg("Failed to list surveys")
		t.say("Could not load the surveys: " + esc(remoteError(err)))
		return
	}
	if len(surveys) == 0 {
		t.say("No surveys available right now.")
		return
	}

	t.session.VoteChoices = surveys
	lines := []string{"<strong>Available surveys:</strong>"}
	for i, s := range surveys {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, esc(s.Title)))
	}
	lines = append(lines, "", "Enter the survey number to vote, or <strong>cancel</strong>:")
	t.say(lines...)
}

func (d *Dispatcher) handleVoteChoice(t *turn) {
	s := t.session
	if t.command() == "cancel" {
		s.VoteChoices = nil
		t.say("Survey selection cancelled.")
		return
	}

	n, err := strconv.Atoi(t.text)
	if err != nil || n < 1 || n > len(s.VoteChoices) {
		t.say(fmt.Sprintf("Please enter a number between 1 and %d, or <strong>cancel</strong>.", len(s.VoteChoices)))
		return
	}
	code := s.VoteChoices[n-1].EnterCode
	s.VoteChoices = nil
	d.startVote(t, code)
}

// startVote loads the survey structure and shows its first question.
func (d *Dispatcher) startVote(t *turn, code string) {
	s := t.session
	s.ResetVote()
	s.VoteChoices = nil

	structure, err := d.surveys.FetchStructure(t.ctx, code)
	switch {
	case errors.Is(err, model.ErrSurveyNotFound):
		t.say(fmt.Sprintf("Error: survey code '%s' not found.", esc(code)))
		return
	case errors.Is(err, model.ErrEmptyStructure):
		t.say(fmt.Sprintf("Survey '%s' has no questions.", esc(code)))
		return
	case err != nil:
		t.log().Error().Err(err).Str("enter_code", code).Msg("Failed to load survey structure")
		t.say(fmt.Sprintf("Error loading survey '%s': %s", esc(code), esc(remoteError(err))))
		return
	}

	block, question, ok := structure.First()
	if !ok {
		t.say(fmt.Sprintf("Survey '%s' has no questions.", esc(code)))
		return
	}
	s.VoteAnswers = make(map[model.AnswerKey][]string)
	d.showVoteQuestion(t, code, structure, block, question)
}

// showVoteQuestion points the pending vote at (block, question) and shows it.
// A question that cannot be loaded or has no options leaves the pointer set
// with no question; the user restarts with "vote <code>".
func (d *Dispatcher) showVoteQuestion(t *turn, code string, structure model.Structure, block, question string) {
	p := &model.PendingVote{
		Code:      code,
		Block:     block,
		Question:  question,
		Structure: structure,
	}
	t.session.PendingVote = p

	q, err := d.surveys.FetchQuestion(t.ctx, code, block, question)
	switch {
	case errors.Is(err, model.ErrNoOptions):
		t.say(fmt.Sprintf("Question %s of block %s has no options configured.", esc(question), esc(block)),
			restartHint(code))
		return
	case err != nil:
		t.log().Error().Err(err).Str("enter_code", code).Str("block", block).Str("question", question).Msg("Failed to load question")
		t.say(fmt.Sprintf("Error loading question %s of block %s: %s", esc(question), esc(block), esc(remoteError(err))),
			restartHint(code))
		return
	}

	p.Current = q
	p.Type = q.Type
	t.say(voteQuestionPrompt(p))
}

func restartHint(code string) string {
	return "Type <strong>vote " + esc(code) + "</strong> to restart."
}

func (d *Dispatcher) handleVoteAnswer(t *turn) {
	s := t.session
	p := s.PendingVote

	command, param := splitCommand(t.text)
	switch {
	case command == "cancel":
		s.ResetVote()
		t.say("Voting cancelled. Your answers were not submitted.")
		return
	case command == "vote" && param != "":
		d.startVote(t, param)
		return
	}

	if p.Current == nil {
		t.say("This question could not be loaded. " + restartHint(p.Code))
		return
	}

	values, problem := parseAnswer(p.Current, t.text)
	if problem != "" {
		t.say(problem)
		return
	}
	s.VoteAnswers[model.AnswerKey{Block: p.Block, Question: p.Question}] = values

	if block, question, ok := p.Structure.Next(p.Block, p.Question); ok {
		d.showVoteQuestion(t, p.Code, p.Structure, block, question)
		return
	}
	d.submitVote(t)
}

// submitVote sends every buffered answer in one request. The buffer is
// dropped whatever the outcome.
func (d *Dispatcher) submitVote(t *turn) {
	s := t.session
	code := s.PendingVote.Code
	answered := len(s.VoteAnswers)
	answers := repo.NewSubmitAnswers(s.VoteAnswers)
	s.ResetVote()

	if err := d.surveys.SubmitAnswers(t.ctx, code, answers); err != nil {
		t.log().Error().Err(err).Str("enter_code", code).Msg("Failed to submit answers")
		t.say("<strong>Failed to submit your answers:</strong> " + esc(remoteError(err)))
		return
	}

	t.log().Info().Str("enter_code", code).Int("answers", answered).Msg("Answers submitted")
	t.say("<strong>All questions answered!</strong> Your answers have been submitted. Thank you!",
		"Type <strong>result "+esc(code)+"</strong> to see the results.")
}

// parseAnswer turns a reply into the answer values of q. problem is the
// re-prompt text when the reply cannot be used.
func parseAnswer(q *model.Question, text string) (values []string, problem string) {
	text = strings.TrimSpace(text)

	switch {
	case q.Type == model.QuestionTypeRange:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(f) || math.Abs(f) > math.MaxInt32 {
			return nil, msgInvalidNumber
		}
		v := int(math.Round(f))
		if r := q.Config.Range; r != nil && (v < r.Min || v > r.Max) {
			return nil, fmt.Sprintf("Please enter a number between %d and %d.", r.Min, r.Max)
		}
		return []string{strconv.Itoa(v)}, ""

	case q.Type == model.QuestionTypeSingleChoice:
		i, err := strconv.Atoi(text)
		if err != nil {
			return nil, msgInvalidNumber
		}
		if !validOption(q, i) {
			return nil, optionRangeHint(q)
		}
		return []string{strconv.Itoa(i)}, ""

	case q.Type == model.QuestionTypeMultiChoice:
		fields := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || isSpace(r) })
		if len(fields) == 0 {
			return nil, "Please enter at least one option number."
		}
		seen := make(map[int]bool, len(fields))
		for _, f := range fields {
			i, err := strconv.Atoi(f)
			if err != nil {
				return nil, "Please enter option numbers separated by commas."
			}
			if !validOption(q, i) {
				return nil, optionRangeHint(q)
			}
			if !seen[i] {
				seen[i] = true
				values = append(values, strconv.Itoa(i))
			}
		}
		return values, ""

	default:
		if text == "" {
			return nil, "Please enter a text answer."
		}
		return []string{text}, ""
	}
}

func validOption(q *model.Question, i int) bool {
	return i >= 0 && i < len(q.Config.Options)
}

func optionRangeHint(q *model.Question) string {
	return fmt.Sprintf("Please choose an option between 0 and %d.", len(q.Config.Options)-1)
}

// result reports "result [code [block question]]". Without a code it uses
// the last survey created in the room.
func (d *Dispatcher) result(t *turn, param string) {
	fields := strings.Fields(param)
	var code string
	if len(fields) > 0 {
		code = fields[0]
	} else {
		code = t.session.LastSurveyCode
	}
	if code == "" {
		t.say("No survey created in this chat yet. Use <strong>result &lt;code&gt;</strong>.")
		return
	}

	var (
		report string
		err    error
	)
	if len(fields) >= 3 {
		report, err = d.results.Question(t.ctx, code, fields[1], fields[2])
	} else {
		report, err = d.results.Survey(t.ctx, code)
	}

	switch {
	case errors.Is(err, model.ErrSurveyNotFound):
		t.say(fmt.Sprintf("Cannot fetch results: survey '%s' not found.", esc(code)))
	case errors.Is(err, model.ErrQuestionNotFound):
		t.say(fmt.Sprintf("Cannot fetch results: question %s of block %s not found.", esc(fields[2]), esc(fields[1])))
	case err != nil:
		t.log().Error().Err(err).Str("enter_code", code).Msg("Failed to fetch results")
		t.say("Cannot fetch results: " + esc(remoteError(err)))
	default:
		t.say(esc(report))
	}
}

func (d *Dispatcher) fetch(t *turn) {
	surveys, err := d.surveys.ListSurveys(t.ctx)
	if err != nil {
		t.log().Error().Err(err).Msg("Failed to list surveys")
		t.say("Could not load the surveys: " + esc(remoteError(err)))
		return
	}
	if len(surveys) == 0 {
		t.say("No surveys found.")
		return
	}

	lines := []string{"<strong>Available surveys:</strong>", ""}
	for _, s := range surveys {
		lines = append(lines, fmt.Sprintf("• <strong>%s</strong> (code: %s)", esc(s.Title), esc(s.EnterCode)))
	}
	lines = append(lines, "", "Use <strong>vote &lt;code&gt;</strong> to participate.")
	t.say(lines...)
}
