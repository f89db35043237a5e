package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog"

	"VoteBot/model"
)

// creationSteps lists every step owned by a survey-creation workflow.
var creationSteps = []model.Step{
	model.StepAskMode, model.StepAskEmail,
	model.StepAskTitle, model.StepAskQuestion, model.StepAskType, model.StepAskOptions,
	model.StepAskRatingMin, model.StepAskRatingMax, model.StepConfirmOverview,
	model.StepAdvancedTitle, model.StepAdvancedDescription, model.StepAdvancedLanguage,
	model.StepAdvancedAskBlock, model.StepBlockTitle, model.StepBlockDescription,
	model.StepSelectQuestionType, model.StepQuestionText, model.StepQuestionOptions,
	model.StepRatingMin, model.StepRatingMax, model.StepQuestionConfirm,
	model.StepMoreQuestionsInBlock, model.StepMoreStandalone, model.StepMoreBlocks,
	model.StepStandaloneAfterBlocks, model.StepAdvancedOverview,
}

// transitions maps every target step to the steps allowed to move into it.
// Moving into StepIdle ends the creation workflow (created or cancelled).
var transitions = map[model.Step][]model.Step{
	model.StepIdle:     creationSteps,
	model.StepAskMode:  {model.StepIdle, model.StepConfirmOverview},
	model.StepAskEmail: {model.StepAskMode, model.StepConfirmOverview},

	// Quick mode
	model.StepAskTitle:     {model.StepAskEmail, model.StepConfirmOverview},
	model.StepAskQuestion:  {model.StepAskTitle, model.StepConfirmOverview},
	model.StepAskType:      {model.StepAskQuestion, model.StepConfirmOverview},
	model.StepAskOptions:   {model.StepAskType, model.StepConfirmOverview},
	model.StepAskRatingMin: {model.StepAskType, model.StepConfirmOverview},
	model.StepAskRatingMax: {model.StepAskRatingMin},
	model.StepConfirmOverview: {
		model.StepAskEmail, model.StepAskTitle, model.StepAskQuestion, model.StepAskType,
		model.StepAskOptions, model.StepAskRatingMax,
	},

	// Advanced mode
	model.StepAdvancedTitle:       {model.StepAskEmail},
	model.StepAdvancedDescription: {model.StepAdvancedTitle},
	model.StepAdvancedLanguage:    {model.StepAdvancedDescription},
	model.StepAdvancedAskBlock:    {model.StepAdvancedLanguage},
	model.StepBlockTitle:          {model.StepAdvancedAskBlock, model.StepMoreBlocks, model.StepAdvancedOverview},
	model.StepBlockDescription:    {model.StepBlockTitle},
	model.StepSelectQuestionType: {
		model.StepAdvancedAskBlock, model.StepBlockDescription, model.StepMoreQuestionsInBlock,
		model.StepMoreStandalone, model.StepStandaloneAfterBlocks, model.StepAdvancedOverview,
	},
	model.StepQuestionText:          {model.StepSelectQuestionType, model.StepQuestionConfirm},
	model.StepQuestionOptions:       {model.StepQuestionText, model.StepQuestionConfirm},
	model.StepRatingMin:             {model.StepQuestionText, model.StepQuestionConfirm},
	model.StepRatingMax:             {model.StepRatingMin},
	model.StepQuestionConfirm:       {model.StepQuestionText, model.StepQuestionOptions, model.StepRatingMax},
	model.StepMoreQuestionsInBlock:  {model.StepQuestionConfirm},
	model.StepMoreStandalone:        {model.StepQuestionConfirm},
	model.StepMoreBlocks:            {model.StepMoreQuestionsInBlock},
	model.StepStandaloneAfterBlocks: {model.StepMoreBlocks},
	model.StepAdvancedOverview:      {model.StepMoreStandalone, model.StepStandaloneAfterBlocks},
}

const idleState = "idle"

func stateName(s model.Step) string {
	if s == model.StepIdle {
		return idleState
	}
	return string(s)
}

func stepOf(state string) model.Step {
	if state == idleState {
		return model.StepIdle
	}
	return model.Step(state)
}

// creationEvents turns the transition table into fsm events. The event that
// leads into a step carries that step's name.
func creationEvents() fsm.Events {
	events := make(fsm.Events, 0, len(transitions))
	for _, to := range append([]model.Step{model.StepIdle}, creationSteps...) {
		from, ok := transitions[to]
		if !ok {
			continue
		}
		src := make([]string, 0, len(from))
		for _, s := range from {
			src = append(src, stateName(s))
		}
		events = append(events, fsm.EventDesc{Name: stateName(to), Src: src, Dst: stateName(to)})
	}
	return events
}

// moveTo advances the session to step. A move the table does not allow is
// recorded on the turn; the dispatcher then aborts the workflow.
func (d *Dispatcher) moveTo(t *turn, to model.Step) {
	if t.err != nil {
		return
	}
	from := t.session.Step
	machine := fsm.NewFSM(stateName(from), d.events, fsm.Callbacks{
		"enter_state": func(ctx context.Context, e *fsm.Event) {
			zerolog.Ctx(ctx).Debug().Str("room", t.room).Str("from", e.Src).Str("to", e.Dst).Msg("step")
		},
	})

	err := machine.Event(t.ctx, stateName(to))
	var noTransition fsm.NoTransitionError
	if err != nil && !errors.As(err, &noTransition) {
		t.err = fmt.Errorf("illegal move %s -> %s: %w", from, to, err)
		return
	}
	t.session.Step = stepOf(machine.Current())
}
