package model

// Step names a state of the conversation engine. The names match the state
// names used in chat prompts and logs.
type Step string

const (
	StepIdle    Step = ""
	StepAskMode Step = "ask_mode"

	// Shared by both creation modes.
	StepAskEmail Step = "ask_email"

	// Quick mode
	StepAskTitle        Step = "ask_title"
	StepAskQuestion     Step = "ask_question"
	StepAskType         Step = "ask_type"
	StepAskOptions      Step = "ask_options"
	StepAskRatingMin    Step = "ask_rating_min"
	StepAskRatingMax    Step = "ask_rating_max"
	StepConfirmOverview Step = "confirm_overview"

	// Advanced mode
	StepAdvancedTitle         Step = "advanced_title"
	StepAdvancedDescription   Step = "advanced_description"
	StepAdvancedLanguage      Step = "advanced_language"
	StepAdvancedAskBlock      Step = "advanced_ask_block"
	StepBlockTitle            Step = "block_title"
	StepBlockDescription      Step = "block_description"
	StepSelectQuestionType    Step = "select_question_type"
	StepQuestionText          Step = "question_text"
	StepQuestionOptions       Step = "question_options"
	StepRatingMin             Step = "rating_min"
	StepRatingMax             Step = "rating_max"
	StepQuestionConfirm       Step = "question_confirm"
	StepMoreQuestionsInBlock  Step = "ask_more_questions_in_block"
	StepMoreStandalone        Step = "ask_more_standalone"
	StepMoreBlocks            Step = "ask_more_blocks"
	StepStandaloneAfterBlocks Step = "ask_standalone_after_blocks"
	StepAdvancedOverview      Step = "advanced_overview"
)

func (s Step) String() string {
	if s == StepIdle {
		return "idle"
	}
	return string(s)
}

// Mode selects which creation workflow owns the session.
type Mode string

const (
	ModeQuick    Mode = "quick"
	ModeAdvanced Mode = "advanced"
)
