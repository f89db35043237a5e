package handler

import (
	"regexp"
	"strconv"
	"strings"

	"VoteBot/model"
	"VoteBot/repo"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@telekom\.(com|de)$`)

// returnToOverview ends a single-field edit from the quick overview.
func (d *Dispatcher) returnToOverview(t *turn) {
	t.session.Temp.Editing = false
	d.moveTo(t, model.StepConfirmOverview)
	t.say(renderQuickOverview(t.session.Temp))
}

func (d *Dispatcher) quickEmail(t *turn) {
	if !emailPattern.MatchString(t.text) {
		t.say(msgEmailFormat)
		return
	}
	t.session.Temp.Email = t.text
	if t.session.Temp.Editing {
		d.returnToOverview(t)
		return
	}
	d.moveTo(t, model.StepAskTitle)
	t.say(msgAskTitle)
}

func (d *Dispatcher) quickTitle(t *turn) {
	if t.text == "" {
		t.say(msgEmptyInput)
		return
	}
	t.session.Temp.Title = t.text
	if t.session.Temp.Editing {
		d.returnToOverview(t)
		return
	}
	d.moveTo(t, model.StepAskQuestion)
	t.say(msgAskQuestion)
}

func (d *Dispatcher) quickQuestion(t *turn) {
	if t.text == "" {
		t.say(msgEmptyInput)
		return
	}
	t.session.Temp.Question.Text = t.text
	if t.session.Temp.Editing {
		d.returnToOverview(t)
		return
	}
	d.moveTo(t, model.StepAskType)
	t.say(typeMenu())
}

func (d *Dispatcher) quickType(t *turn) {
	typ, ok := pickType(t.text)
	if !ok {
		t.say(msgTypeInvalid)
		return
	}

	q := &t.session.Temp.Question
	previous := q.Type
	q.Type = typ
	editing := t.session.Temp.Editing

	switch {
	case typ.IsChoice():
		// Switching between the two choice types keeps the options.
		if editing && previous.IsChoice() && len(q.Options) > 0 {
			d.returnToOverview(t)
			return
		}
		d.moveTo(t, model.StepAskOptions)
		t.say(msgAskOptions)
	case typ == model.QuestionTypeRange:
		if editing && previous == typ && q.HasRange {
			d.returnToOverview(t)
			return
		}
		d.moveTo(t, model.StepAskRatingMin)
		t.say(msgAskRatingMin)
	default:
		d.returnToOverview(t)
	}
}

// splitOptions splits a comma separated list, dropping empty entries.
func splitOptions(text string) []string {
	var options []string
	for _, o := range strings.Split(text, ",") {
		if o = strings.TrimSpace(o); o != "" {
			options = append(options, o)
		}
	}
	return options
}

// quickOptions accepts any non-empty list, even a single option.
func (d *Dispatcher) quickOptions(t *turn) {
	options := splitOptions(t.text)
	if len(options) == 0 {
		t.say(msgOptionsEmpty)
		return
	}
	t.session.Temp.Question.Options = options
	d.returnToOverview(t)
}

func (d *Dispatcher) quickRatingMin(t *turn) {
	n, err := strconv.Atoi(t.text)
	if err != nil {
		t.say(msgInvalidNumber)
		return
	}
	t.session.Temp.Question.RatingMin = n
	d.moveTo(t, model.StepAskRatingMax)
	t.say(msgAskRatingMax)
}

func (d *Dispatcher) quickRatingMax(t *turn) {
	n, err := strconv.Atoi(t.text)
	if err != nil {
		t.say(msgInvalidNumber)
		return
	}
	q := &t.session.Temp.Question
	if n <= q.RatingMin {
		t.say("Maximum must be greater than the minimum (" + strconv.Itoa(q.RatingMin) + "). " + msgAskRatingMax)
		return
	}
	q.RatingMax = n
	q.HasRange = true
	d.returnToOverview(t)
}

func (d *Dispatcher) quickOverview(t *turn) {
	s := t.session
	command, field := splitCommand(t.text)

	switch command {
	case "done", "retry":
		d.createSurvey(t, repo.NewQuickSurvey(s.Temp))

	case "edit":
		d.quickEdit(t, strings.ToLower(field))

	case "reset":
		s.Temp = model.Draft{}
		s.Mode = ""
		d.moveTo(t, model.StepAskMode)
		t.say(msgReset)

	default:
		t.say(renderQuickOverview(s.Temp))
	}
}

func (d *Dispatcher) quickEdit(t *turn, field string) {
	temp := &t.session.Temp
	q := temp.Question

	var (
		next   model.Step
		prompt string
	)
	switch field {
	case "title":
		next, prompt = model.StepAskTitle, "Enter the new survey title:"
	case "question":
		next, prompt = model.StepAskQuestion, "Enter the new question:"
	case "type":
		next, prompt = model.StepAskType, typeMenu()
	case "email":
		next, prompt = model.StepAskEmail, "Enter the new email address:"
	case "options":
		if !q.Type.IsChoice() {
			t.say(msgNoOptions)
			return
		}
		next, prompt = model.StepAskOptions, msgAskOptions
	case "range":
		if q.Type != model.QuestionTypeRange {
			t.say(msgNoRange)
			return
		}
		next, prompt = model.StepAskRatingMin, msgAskRatingMin
	default:
		t.say(msgEditInvalid)
		return
	}

	temp.Editing = true
	d.moveTo(t, next)
	t.say(prompt)
}

// createSurvey publishes the draft. On failure the session stays where it
// is so the user can retry or cancel.
func (d *Dispatcher) createSurvey(t *turn, survey repo.CreateSurveyRequest) {
	code, err := d.surveys.CreateSurvey(t.ctx, survey)
	if err != nil {
		t.log().Error().Err(err).Str("room", t.room).Msg("Failed to create survey")
		t.say("<strong>Error creating survey:</strong> "+esc(remoteError(err)),
			"Type <strong>retry</strong> to try again or <strong>cancel</strong> to discard.")
		return
	}

	t.log().Info().Str("room", t.room).Str("enter_code", code).Msg("Survey created")
	d.moveTo(t, model.StepIdle)
	t.session.ResetCreation()
	t.session.LastSurveyCode = code
	t.say("<strong>Survey created successfully!</strong>",
		"Survey code: <strong>"+esc(code)+"</strong>",
		"",
		"Share <strong>vote "+esc(code)+"</strong> with participants and type <strong>result</strong> to see the results.")
}
