package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog"

	"VoteBot/model"
	"VoteBot/repo"
	"VoteBot/summary"
)

// SurveyService is the remote survey service as used by the workflows.
type SurveyService interface {
	CreateSurvey(ctx context.Context, survey repo.CreateSurveyRequest) (string, error)
	ListSurveys(ctx context.Context) ([]model.SurveySummary, error)
	FetchStructure(ctx context.Context, code string) (model.Structure, error)
	FetchQuestion(ctx context.Context, code, block, question string) (*model.Question, error)
	SubmitAnswers(ctx context.Context, code string, answers repo.SubmitAnswersRequest) error
	FetchAnalytics(ctx context.Context, code, block, question string) ([]model.AnalyticsEvent, error)
}

// StructureValidator checks drafts against the remote template validator.
type StructureValidator interface {
	ValidateQuestion(ctx context.Context, q model.DraftQuestion) repo.ValidationResult
	ValidateSettings(ctx context.Context, d model.Draft) repo.ValidationResult
	ValidateSurvey(ctx context.Context, d model.Draft) repo.ValidationResult
}

// MessageCounter is notified of every handled message.
type MessageCounter interface {
	CountMessage(route string)
}

type stepFunc func(t *turn)

// Dispatcher routes chat messages of every room to the workflow that owns
// the room's session, or to a top-level command.
type Dispatcher struct {
	sessions  repo.SessionStore
	surveys   SurveyService
	validator StructureValidator
	results   *summary.Summarizer
	counter   MessageCounter

	events        fsm.Events
	quickSteps    map[model.Step]stepFunc
	advancedSteps map[model.Step]stepFunc
}

type Option func(*Dispatcher)

func WithMessageCounter(c MessageCounter) Option {
	return func(d *Dispatcher) {
		d.counter = c
	}
}

func NewDispatcher(sessions repo.SessionStore, surveys SurveyService, validator StructureValidator, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sessions:  sessions,
		surveys:   surveys,
		validator: validator,
		results:   summary.NewSummarizer(surveys),
		events:    creationEvents(),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.quickSteps = map[model.Step]stepFunc{
		model.StepAskMode:         d.askMode,
		model.StepAskEmail:        d.quickEmail,
		model.StepAskTitle:        d.quickTitle,
		model.StepAskQuestion:     d.quickQuestion,
		model.StepAskType:         d.quickType,
		model.StepAskOptions:      d.quickOptions,
		model.StepAskRatingMin:    d.quickRatingMin,
		model.StepAskRatingMax:    d.quickRatingMax,
		model.StepConfirmOverview: d.quickOverview,
	}
	d.advancedSteps = map[model.Step]stepFunc{
		model.StepAskMode:               d.askMode,
		model.StepAskEmail:              d.advancedEmail,
		model.StepAdvancedTitle:         d.advancedTitle,
		model.StepAdvancedDescription:   d.advancedDescription,
		model.StepAdvancedLanguage:      d.advancedLanguage,
		model.StepAdvancedAskBlock:      d.advancedAskBlock,
		model.StepBlockTitle:            d.blockTitle,
		model.StepBlockDescription:      d.blockDescription,
		model.StepSelectQuestionType:    d.selectQuestionType,
		model.StepQuestionText:          d.questionText,
		model.StepQuestionOptions:       d.questionOptions,
		model.StepRatingMin:             d.ratingMin,
		model.StepRatingMax:             d.ratingMax,
		model.StepQuestionConfirm:       d.questionConfirm,
		model.StepMoreQuestionsInBlock:  d.moreQuestionsInBlock,
		model.StepMoreStandalone:        d.moreStandalone,
		model.StepMoreBlocks:            d.moreBlocks,
		model.StepStandaloneAfterBlocks: d.standaloneAfterBlocks,
		model.StepAdvancedOverview:      d.advancedOverview,
	}
	return d
}

// turn is one message being handled for one room.
type turn struct {
	ctx     context.Context
	room    string
	session *model.Session
	text    string
	replies []string
	err     error
}

func (t *turn) say(lines ...string) {
	t.replies = append(t.replies, strings.Join(lines, "\n"))
}

// command is the input lowercased, for keyword matching.
func (t *turn) command() string {
	return strings.ToLower(t.text)
}

func (t *turn) log() *zerolog.Logger {
	return zerolog.Ctx(t.ctx)
}

// Handle processes one chat message of user in room and returns the messages
// to render: the escaped echo of the user's text followed by the bot replies.
func (d *Dispatcher) Handle(ctx context.Context, room, user, text string) []model.Message {
	text = strings.TrimSpace(text)
	if user == "" {
		user = "User"
	}

	t := &turn{
		ctx:     ctx,
		room:    room,
		session: d.sessions.Get(room),
		text:    text,
	}
	route := d.route(t)
	d.sessions.Put(room, t.session)

	if d.counter != nil {
		d.counter.CountMessage(route)
	}
	t.log().Debug().Str("room", room).Str("route", route).Str("step", t.session.Step.String()).Msg("Message handled")

	messages := make([]model.Message, 0, len(t.replies)+1)
	messages = append(messages, model.Message{From: esc(user), Text: esc(text)})
	for _, r := range t.replies {
		messages = append(messages, model.Message{From: model.BotName, Text: r})
	}
	return messages
}

// Resume returns the prompt an unfinished workflow in room is waiting on,
// without handling any input. ok is false when the room is idle.
func (d *Dispatcher) Resume(room string) (prompt string, ok bool) {
	s := d.sessions.Get(room)
	switch {
	case s.Creating():
		return creationPrompt(s), true
	case s.Voting():
		if s.PendingVote.Current == nil {
			return "This question could not be loaded. " + restartHint(s.PendingVote.Code), true
		}
		return voteQuestionPrompt(s.PendingVote), true
	case len(s.VoteChoices) > 0:
		return fmt.Sprintf("Enter the survey number (1-%d) to vote, or <strong>cancel</strong>.", len(s.VoteChoices)), true
	}
	return "", false
}

func (d *Dispatcher) route(t *turn) string {
	s := t.session
	switch {
	case s.Creating():
		d.handleCreation(t)
		return "create"
	case s.Voting():
		d.handleVoteAnswer(t)
		return "vote"
	case len(s.VoteChoices) > 0:
		d.handleVoteChoice(t)
		return "vote"
	}

	command, param := splitCommand(t.text)
	switch command {
	case "create":
		s.ResetCreation()
		d.moveTo(t, model.StepAskMode)
		t.say(msgModeMenu)
		d.abortOnError(t)
		return "create"
	case "vote":
		if param == "" {
			d.listForVote(t)
		} else {
			d.startVote(t, param)
		}
		return "vote"
	case "result":
		d.result(t, param)
		return "result"
	case "fetch":
		d.fetch(t)
		return "fetch"
	case "", "help", "menu", "votebot":
		t.say(msgHelp)
		return "help"
	default:
		t.say(msgUnknown)
		return "unknown"
	}
}

// splitCommand splits input at the first run of whitespace. The command is
// lowercased; the parameter keeps its case, survey codes are case sensitive.
func splitCommand(text string) (command, param string) {
	text = strings.TrimSpace(text)
	i := strings.IndexFunc(text, isSpace)
	if i < 0 {
		return strings.ToLower(text), ""
	}
	return strings.ToLower(text[:i]), strings.TrimSpace(text[i:])
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func (d *Dispatcher) handleCreation(t *turn) {
	s := t.session
	if t.command() == "cancel" {
		d.moveTo(t, model.StepIdle)
		s.ResetCreation()
		t.say(msgCancelled)
		d.abortOnError(t)
		return
	}

	steps := d.quickSteps
	if s.Mode == model.ModeAdvanced {
		steps = d.advancedSteps
	}
	step, ok := steps[s.Step]
	if !ok {
		t.log().Error().Str("room", t.room).Str("step", s.Step.String()).Str("mode", string(s.Mode)).Msg("No handler for step")
		s.ResetCreation()
		t.replies = []string{msgInternalError}
		return
	}
	step(t)
	d.abortOnError(t)
}

// abortOnError discards the draft after an illegal transition.
func (d *Dispatcher) abortOnError(t *turn) {
	if t.err == nil {
		return
	}
	t.log().Error().Err(t.err).Str("room", t.room).Msg("Creation workflow aborted")
	t.session.ResetCreation()
	t.replies = []string{msgInternalError}
}

func (d *Dispatcher) askMode(t *turn) {
	switch t.command() {
	case "1", "quick":
		t.session.Mode = model.ModeQuick
	case "2", "advanced":
		t.session.Mode = model.ModeAdvanced
	default:
		t.say(msgModeInvalid)
		return
	}
	d.moveTo(t, model.StepAskEmail)
	t.say(msgAskEmail)
}
