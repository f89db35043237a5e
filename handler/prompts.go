package handler

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"VoteBot/model"
)

// Bot replies are HTML fragments with "\n" line breaks. Anything that came
// from a user or from the survey service goes through esc.
var esc = html.EscapeString

const (
	msgHelp = "<strong>VoteBot commands</strong>\n" +
		"• <strong>create</strong> - create a new survey\n" +
		"• <strong>vote</strong> - pick a survey to answer\n" +
		"• <strong>vote &lt;code&gt;</strong> - answer a survey\n" +
		"• <strong>result &lt;code&gt;</strong> - show the results of a survey\n" +
		"• <strong>result &lt;code&gt; &lt;block&gt; &lt;question&gt;</strong> - results of one question\n" +
		"• <strong>fetch</strong> - list all surveys\n" +
		"• <strong>cancel</strong> - leave the current workflow"

	msgUnknown = "Command not recognized. Type <strong>help</strong> to see what I can do."

	msgModeMenu = "<strong>Survey Creation Mode</strong>\n\n" +
		"1. <strong>Quick</strong> - one question, ready in a minute\n" +
		"2. <strong>Advanced</strong> - blocks, several questions, settings validation\n\n" +
		"Reply with <strong>1</strong> or <strong>2</strong>."
	msgModeInvalid = "Please reply with <strong>1</strong> for Quick or <strong>2</strong> for Advanced."

	msgAskEmail    = "What's your email address? (Telekom address, e.g. jane.doe@telekom.de)"
	msgEmailFormat = "Please enter a valid Telekom email address (ending in @telekom.de or @telekom.com)."

	msgAskTitle    = "Great! Now, what's the survey title?"
	msgAskQuestion = "What question would you like to ask?"
	msgEmptyInput  = "Please enter a value."

	msgAskOptions    = "Enter the answer options, separated by commas (e.g. Yes, No, Maybe):"
	msgOptionsEmpty  = "Please enter at least one option, separated by commas."
	msgAskRatingMin  = "Enter the minimum rating value:"
	msgAskRatingMax  = "Enter the maximum rating value:"
	msgInvalidNumber = "Please enter a valid number."
	msgTypeInvalid   = "Please select a valid option (1-4)."

	msgCancelled     = "Survey creation cancelled. Type <strong>create</strong> to start a new survey."
	msgInternalError = "Something went wrong and the survey draft was discarded. Type <strong>create</strong> to start again."

	msgOverviewUsage = "Type <strong>done</strong> to create the survey, " +
		"<strong>edit title|question|type|options|range|email</strong> to change a field, " +
		"<strong>reset</strong> to start over or <strong>cancel</strong> to discard."
	msgEditInvalid = "Invalid edit command. Use <strong>edit title</strong>, <strong>edit question</strong>, " +
		"<strong>edit type</strong>, <strong>edit options</strong>, <strong>edit range</strong> or <strong>edit email</strong>."
	msgNoOptions = "This question type doesn't have options to edit."
	msgNoRange   = "This question type doesn't have a range to edit."
	msgReset     = "Survey creation reset. All data has been cleared.\n\n" + msgModeMenu

	msgYesNo = "Please answer <strong>yes</strong> or <strong>no</strong>."
)

// questionTypes is the numbered question type menu of both modes.
var questionTypes = []model.QuestionType{
	model.QuestionTypeSingleChoice,
	model.QuestionTypeMultiChoice,
	model.QuestionTypeRange,
	model.QuestionTypeText,
}

func typeMenu() string {
	lines := []string{"<strong>Select the question type:</strong>"}
	for i, t := range questionTypes {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, t.Label()))
	}
	return strings.Join(lines, "\n")
}

// pickType maps a 1-based menu answer to a question type.
func pickType(answer string) (model.QuestionType, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || n < 1 || n > len(questionTypes) {
		return "", false
	}
	return questionTypes[n-1], true
}

// creationPrompt is the question the creation step of s waits on.
func creationPrompt(s *model.Session) string {
	d := s.Temp
	switch s.Step {
	case model.StepAskMode:
		return msgModeMenu
	case model.StepAskEmail:
		return msgAskEmail
	case model.StepAskTitle:
		return msgAskTitle
	case model.StepAskQuestion:
		return msgAskQuestion
	case model.StepAskType, model.StepSelectQuestionType:
		return typeMenu()
	case model.StepAskOptions:
		return msgAskOptions
	case model.StepAskRatingMin:
		return msgAskRatingMin
	case model.StepAskRatingMax:
		return msgAskRatingMax
	case model.StepConfirmOverview:
		return renderQuickOverview(d)
	case model.StepAdvancedLanguage:
		return languageMenu()
	case model.StepQuestionConfirm:
		if d.CurrentQuestion != nil {
			return questionPreview(*d.CurrentQuestion, nil)
		}
	case model.StepAdvancedOverview:
		return renderAdvancedOverview(d)
	}
	return "You are in the middle of creating a survey. Reply to the last question or type <strong>cancel</strong>."
}

func renderQuickOverview(d model.Draft) string {
	q := d.Question
	lines := []string{
		"<strong>Survey Overview</strong>",
		"",
		"<strong>Email:</strong> " + esc(d.Email),
		"<strong>Title:</strong> " + esc(d.Title),
		"<strong>Question:</strong> " + esc(q.Text),
		"<strong>Type:</strong> " + q.Type.Label(),
	}
	lines = append(lines, questionDetails(q)...)
	lines = append(lines, "", msgOverviewUsage)
	return strings.Join(lines, "\n")
}

// questionDetails lists the options or the range of a draft question.
func questionDetails(q model.DraftQuestion) []string {
	var lines []string
	switch {
	case q.Type.IsChoice():
		lines = append(lines, "<strong>Options:</strong>")
		for i, o := range q.Options {
			lines = append(lines, fmt.Sprintf("  %d. %s", i+1, esc(o)))
		}
	case q.Type == model.QuestionTypeRange:
		lines = append(lines, fmt.Sprintf("<strong>Range:</strong> %d to %d", q.RatingMin, q.RatingMax))
	}
	return lines
}

var languages = []struct {
	Code  string
	Label string
}{
	{"EN", "English"},
	{"DE", "German"},
	{"BOTH", "Both"},
}

func languageMenu() string {
	lines := []string{"<strong>Survey language:</strong>"}
	for i, l := range languages {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, l.Label))
	}
	return strings.Join(lines, "\n")
}

// pickLanguage falls back to English for anything but a valid menu number.
func pickLanguage(answer string) string {
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || n < 1 || n > len(languages) {
		return languages[0].Code
	}
	return languages[n-1].Code
}

func questionPreview(q model.DraftQuestion, warnings []string) string {
	lines := []string{
		"<strong>Question Preview</strong>",
		"",
		"<strong>Type:</strong> " + q.Type.Label(),
		"<strong>Question:</strong> " + esc(q.Text),
	}
	lines = append(lines, questionDetails(q)...)

	if len(q.ValidationErrors) > 0 {
		lines = append(lines, "", "<strong>Validation errors:</strong>")
		for _, e := range q.ValidationErrors {
			lines = append(lines, "• "+esc(e))
		}
	}
	if len(warnings) > 0 {
		lines = append(lines, "", "<strong>Warnings:</strong>")
		for _, w := range warnings {
			lines = append(lines, "• "+esc(w))
		}
	}

	lines = append(lines, "", "Type <strong>save</strong> to keep the question, "+
		"<strong>edit question</strong>, <strong>edit options</strong> or <strong>edit range</strong> to change it, "+
		"or <strong>cancel</strong> to discard the survey.")
	return strings.Join(lines, "\n")
}

func renderAdvancedOverview(d model.Draft) string {
	description := d.Description
	if description == "" {
		description = "(none)"
	}
	lines := []string{
		"<strong>Survey Overview</strong>",
		"",
		"<strong>Email:</strong> " + esc(d.Email),
		"<strong>Title:</strong> " + esc(d.Title),
		"<strong>Description:</strong> " + esc(description),
		"<strong>Language:</strong> " + d.Language,
	}

	for i, b := range d.Blocks {
		lines = append(lines, "", fmt.Sprintf("<strong>Block %d: %s</strong> (%d questions)", i+1, esc(b.Title), len(b.Questions)))
		for j, q := range b.Questions {
			lines = append(lines, fmt.Sprintf("  %d. %s [%s]", j+1, esc(q.Text), q.Type.Label()))
		}
	}
	if len(d.Standalone) > 0 {
		lines = append(lines, "", fmt.Sprintf("<strong>Standalone questions</strong> (%d)", len(d.Standalone)))
		for j, q := range d.Standalone {
			lines = append(lines, fmt.Sprintf("  %d. %s [%s]", j+1, esc(q.Text), q.Type.Label()))
		}
	}

	lines = append(lines, "",
		"Type <strong>done</strong> to validate and create the survey, <strong>add block</strong>, "+
			"<strong>add question</strong> or <strong>cancel</strong>.")
	return strings.Join(lines, "\n")
}

func bulletList(title string, items []string) string {
	lines := []string{title}
	for _, it := range items {
		lines = append(lines, "• "+esc(it))
	}
	return strings.Join(lines, "\n")
}

// displayIndex turns a zero-based numeric id into the 1-based number users see.
func displayIndex(id string) string {
	n, err := strconv.Atoi(id)
	if err != nil {
		return id
	}
	return strconv.Itoa(n + 1)
}

func voteQuestionPrompt(p *model.PendingVote) string {
	q := p.Current
	index, total := p.Structure.Position(p.Block, p.Question)

	lines := []string{
		fmt.Sprintf("<strong>Block %s - Question %d (%d/%d)</strong>", displayIndex(p.Block), index, index, total),
		"<em>" + q.Type.Label() + "</em>",
		"",
		esc(q.Text.String()),
		"",
	}

	switch {
	case q.Type.IsChoice():
		for i, label := range q.OptionLabels() {
			lines = append(lines, fmt.Sprintf("%d. %s", i, esc(label)))
		}
		lines = append(lines, "")
		if q.Type == model.QuestionTypeMultiChoice {
			lines = append(lines, "Enter one or more option numbers separated by commas:")
		} else {
			lines = append(lines, "Enter your choice (number):")
		}
	case q.Type == model.QuestionTypeRange:
		if r := q.Config.Range; r != nil {
			lines = append(lines, fmt.Sprintf("Range: %d to %d", r.Min, r.Max))
			lines = append(lines, fmt.Sprintf("Enter a number between %d and %d:", r.Min, r.Max))
		} else {
			lines = append(lines, "Enter a number:")
		}
	default:
		lines = append(lines, "Enter your text answer:")
	}
	return strings.Join(lines, "\n")
}
