package handler

import (
	"fmt"
	"strconv"

	"VoteBot/model"
	"VoteBot/repo"
)

const (
	ratingLowest  = 0
	ratingHighest = 100
)

func (d *Dispatcher) advancedEmail(t *turn) {
	if !emailPattern.MatchString(t.text) {
		t.say(msgEmailFormat)
		return
	}
	t.session.Temp.Email = t.text
	d.moveTo(t, model.StepAdvancedTitle)
	t.say("Great! Let's configure your survey.", "", "<strong>Survey title?</strong>")
}

func (d *Dispatcher) advancedTitle(t *turn) {
	if t.text == "" {
		t.say(msgEmptyInput)
		return
	}
	t.session.Temp.Title = t.text
	d.moveTo(t, model.StepAdvancedDescription)
	t.say("<strong>Description?</strong> (optional, type <strong>skip</strong> to leave it empty)")
}

func (d *Dispatcher) advancedDescription(t *turn) {
	if t.command() != "skip" {
		t.session.Temp.Description = t.text
	}
	d.moveTo(t, model.StepAdvancedLanguage)
	t.say(languageMenu())
}

// advancedLanguage records the language and validates the global settings.
// "retry" re-runs the validation with the language already chosen.
func (d *Dispatcher) advancedLanguage(t *turn) {
	temp := &t.session.Temp
	if t.command() != "retry" || temp.Language == "" {
		temp.Language = pickLanguage(t.text)
	}

	res := d.validator.ValidateSettings(t.ctx, *temp)
	if !res.Valid {
		t.say(bulletList("<strong>Global settings validation failed:</strong>", res.Errors),
			"",
			"Type <strong>retry</strong> to try again or <strong>cancel</strong> to start over.")
		return
	}

	d.moveTo(t, model.StepAdvancedAskBlock)
	t.say("Global settings validated.", "",
		"Do you want to group your questions in a <strong>question block</strong>? (yes/no)")
}

// yesNo reads a yes/no answer.
func yesNo(t *turn) (yes, ok bool) {
	switch t.command() {
	case "yes", "y":
		return true, true
	case "no", "n":
		return false, true
	}
	t.say(msgYesNo)
	return false, false
}

func (d *Dispatcher) advancedAskBlock(t *turn) {
	yes, ok := yesNo(t)
	if !ok {
		return
	}
	if yes {
		d.moveTo(t, model.StepBlockTitle)
		t.say("<strong>Block title?</strong>")
		return
	}
	d.startStandalone(t)
}

func (d *Dispatcher) startStandalone(t *turn) {
	t.session.Temp.CurrentBlock = nil
	d.moveTo(t, model.StepSelectQuestionType)
	t.say("Adding a standalone question.", "", typeMenu())
}

func (d *Dispatcher) blockTitle(t *turn) {
	if t.text == "" {
		t.say(msgEmptyInput)
		return
	}
	t.session.Temp.CurrentBlock = &model.DraftBlock{Title: t.text}
	d.moveTo(t, model.StepBlockDescription)
	t.say("<strong>Block description?</strong> (optional, type <strong>skip</strong> to leave it empty)")
}

func (d *Dispatcher) blockDescription(t *turn) {
	block := t.session.Temp.CurrentBlock
	if t.command() != "skip" {
		block.Description = t.text
	}
	d.moveTo(t, model.StepSelectQuestionType)
	t.say("Current block: <strong>"+esc(block.Title)+"</strong>", "", typeMenu())
}

func (d *Dispatcher) selectQuestionType(t *turn) {
	typ, ok := pickType(t.text)
	if !ok {
		t.say(msgTypeInvalid)
		return
	}
	t.session.Temp.CurrentQuestion = &model.DraftQuestion{Type: typ}
	d.moveTo(t, model.StepQuestionText)
	t.say("<strong>Your question?</strong>")
}

func (d *Dispatcher) questionText(t *turn) {
	if t.text == "" {
		t.say(msgEmptyInput)
		return
	}
	temp := &t.session.Temp
	q := temp.CurrentQuestion
	q.Text = t.text

	if temp.Editing {
		d.previewQuestion(t)
		return
	}

	switch {
	case q.Type.IsChoice():
		q.Options = nil
		d.moveTo(t, model.StepQuestionOptions)
		t.say("Enter the options <strong>one per message</strong>. Type <strong>done</strong> when finished.")
	case q.Type == model.QuestionTypeRange:
		d.moveTo(t, model.StepRatingMin)
		t.say(fmt.Sprintf("Enter the minimum rating value (%d-%d):", ratingLowest, ratingHighest))
	default:
		d.previewQuestion(t)
	}
}

func (d *Dispatcher) questionOptions(t *turn) {
	q := t.session.Temp.CurrentQuestion
	if t.command() == "done" {
		if len(q.Options) < 2 {
			t.say("Please add at least 2 options before typing <strong>done</strong>.")
			return
		}
		d.previewQuestion(t)
		return
	}
	if t.text == "" {
		t.say(msgEmptyInput)
		return
	}
	q.Options = append(q.Options, t.text)
	t.say(fmt.Sprintf("Option %d added: %s", len(q.Options), esc(t.text)),
		"Add another option or type <strong>done</strong>.")
}

// parseRating reads a rating bound within ratingLowest..ratingHighest.
func parseRating(text string) (int, bool) {
	n, err := strconv.Atoi(text)
	if err != nil || n < ratingLowest || n > ratingHighest {
		return 0, false
	}
	return n, true
}

func (d *Dispatcher) ratingMin(t *turn) {
	n, ok := parseRating(t.text)
	if !ok {
		t.say(fmt.Sprintf("Please enter a whole number between %d and %d.", ratingLowest, ratingHighest))
		return
	}
	t.session.Temp.CurrentQuestion.RatingMin = n
	d.moveTo(t, model.StepRatingMax)
	t.say(fmt.Sprintf("Enter the maximum rating value (%d-%d):", n+1, ratingHighest))
}

func (d *Dispatcher) ratingMax(t *turn) {
	q := t.session.Temp.CurrentQuestion
	n, ok := parseRating(t.text)
	if !ok {
		t.say(fmt.Sprintf("Please enter a whole number between %d and %d.", ratingLowest, ratingHighest))
		return
	}
	if n <= q.RatingMin {
		t.say(fmt.Sprintf("Maximum must be greater than the minimum (%d). %s", q.RatingMin, msgAskRatingMax))
		return
	}
	q.RatingMax = n
	q.HasRange = true
	d.previewQuestion(t)
}

// previewQuestion validates the current question remotely and shows it.
// Errors are kept on the draft and block saving; warnings are only shown.
func (d *Dispatcher) previewQuestion(t *turn) {
	temp := &t.session.Temp
	q := temp.CurrentQuestion
	temp.Editing = false

	res := d.validator.ValidateQuestion(t.ctx, *q)
	q.ValidationErrors = nil
	if !res.Valid {
		q.ValidationErrors = res.Errors
	}

	d.moveTo(t, model.StepQuestionConfirm)
	t.say(questionPreview(*q, res.Warnings))
}

func (d *Dispatcher) questionConfirm(t *turn) {
	temp := &t.session.Temp
	q := temp.CurrentQuestion

	switch t.command() {
	case "save":
		if msg := saveBlocker(q); msg != "" {
			t.say(msg)
			return
		}
		if temp.CurrentBlock != nil {
			temp.CurrentBlock.Questions = append(temp.CurrentBlock.Questions, *q)
			temp.CurrentQuestion = nil
			d.moveTo(t, model.StepMoreQuestionsInBlock)
			t.say(fmt.Sprintf("Question saved to block <strong>%s</strong> (%d questions).",
				esc(temp.CurrentBlock.Title), len(temp.CurrentBlock.Questions)),
				"", "Add another question to this block? (yes/no)")
			return
		}
		temp.Standalone = append(temp.Standalone, *q)
		temp.CurrentQuestion = nil
		d.moveTo(t, model.StepMoreStandalone)
		t.say(fmt.Sprintf("Standalone question saved (%d total).", len(temp.Standalone)),
			"", "Add another standalone question? (yes/no)")

	case "edit question", "edit text":
		temp.Editing = true
		d.moveTo(t, model.StepQuestionText)
		t.say("Enter the new question text:")

	case "edit options":
		if !q.Type.IsChoice() {
			t.say(msgNoOptions)
			return
		}
		q.Options = nil
		d.moveTo(t, model.StepQuestionOptions)
		t.say("Options cleared. Enter the new options <strong>one per message</strong>, then type <strong>done</strong>.")

	case "edit range":
		if q.Type != model.QuestionTypeRange {
			t.say(msgNoRange)
			return
		}
		d.moveTo(t, model.StepRatingMin)
		t.say(fmt.Sprintf("Enter the minimum rating value (%d-%d):", ratingLowest, ratingHighest))

	default:
		t.say(questionPreview(*q, nil))
	}
}

// saveBlocker returns why q cannot be saved yet, or "" when it can.
func saveBlocker(q *model.DraftQuestion) string {
	switch {
	case q.Type.IsChoice() && len(q.Options) < 2:
		return "A choice question needs at least 2 options. Type <strong>edit options</strong> to add them."
	case q.Type == model.QuestionTypeRange && (!q.HasRange || q.RatingMax <= q.RatingMin):
		return "The maximum rating must be greater than the minimum. Type <strong>edit range</strong> to fix it."
	case len(q.ValidationErrors) > 0:
		return bulletList("Cannot save a question with validation errors. Please fix these issues first:", q.ValidationErrors)
	}
	return ""
}

func (d *Dispatcher) moreQuestionsInBlock(t *turn) {
	yes, ok := yesNo(t)
	if !ok {
		return
	}
	temp := &t.session.Temp
	if yes {
		d.moveTo(t, model.StepSelectQuestionType)
		t.say("Adding to block <strong>"+esc(temp.CurrentBlock.Title)+"</strong>.", "", typeMenu())
		return
	}

	temp.Blocks = append(temp.Blocks, *temp.CurrentBlock)
	temp.CurrentBlock = nil
	d.moveTo(t, model.StepMoreBlocks)
	t.say(fmt.Sprintf("Block saved (%d blocks total).", len(temp.Blocks)), "", "Create another question block? (yes/no)")
}

func (d *Dispatcher) moreStandalone(t *turn) {
	yes, ok := yesNo(t)
	if !ok {
		return
	}
	if yes {
		d.moveTo(t, model.StepSelectQuestionType)
		t.say(typeMenu())
		return
	}
	d.showAdvancedOverview(t)
}

func (d *Dispatcher) moreBlocks(t *turn) {
	yes, ok := yesNo(t)
	if !ok {
		return
	}
	if yes {
		d.moveTo(t, model.StepBlockTitle)
		t.say("<strong>Block title?</strong>")
		return
	}
	d.moveTo(t, model.StepStandaloneAfterBlocks)
	t.say("Add standalone questions outside of any block? (yes/no)")
}

func (d *Dispatcher) standaloneAfterBlocks(t *turn) {
	yes, ok := yesNo(t)
	if !ok {
		return
	}
	if yes {
		d.startStandalone(t)
		return
	}
	d.showAdvancedOverview(t)
}

func (d *Dispatcher) showAdvancedOverview(t *turn) {
	d.moveTo(t, model.StepAdvancedOverview)
	t.say(renderAdvancedOverview(t.session.Temp))
}

func (d *Dispatcher) advancedOverview(t *turn) {
	temp := &t.session.Temp

	switch t.command() {
	case "done", "retry":
		res := d.validator.ValidateSurvey(t.ctx, *temp)
		if !res.Valid {
			t.say(bulletList("<strong>Survey validation failed:</strong>", res.Errors),
				"",
				"Please fix these issues before creating the survey: <strong>add block</strong>, "+
					"<strong>add question</strong> or <strong>cancel</strong> to discard.")
			return
		}
		d.createSurvey(t, repo.NewAdvancedSurvey(*temp))

	case "add block":
		temp.CurrentBlock = nil
		d.moveTo(t, model.StepBlockTitle)
		t.say("<strong>Block title?</strong>")

	case "add question":
		d.startStandalone(t)

	default:
		t.say(renderAdvancedOverview(*temp))
	}
}
