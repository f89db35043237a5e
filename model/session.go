package model

// Session is the conversation state of one chat room.
type Session struct {
	Step Step
	Mode Mode
	Temp Draft

	PendingVote *PendingVote
	VoteAnswers map[AnswerKey][]string
	VoteChoices []SurveySummary // offered by a bare "vote", picked by index

	LastSurveyCode string
}

// NewSession returns a session in its initial state.
func NewSession() *Session {
	return &Session{Step: StepIdle}
}

// Creating reports whether a survey-creation workflow owns the session.
func (s *Session) Creating() bool {
	return s.Step != StepIdle
}

// Voting reports whether a vote is in progress.
func (s *Session) Voting() bool {
	return s.PendingVote != nil
}

// ResetCreation wipes all collected survey data and leaves the creation
// workflow. LastSurveyCode survives.
func (s *Session) ResetCreation() {
	s.Step = StepIdle
	s.Mode = ""
	s.Temp = Draft{}
}

// ResetVote drops the pending question pointer and every buffered answer.
func (s *Session) ResetVote() {
	s.PendingVote = nil
	s.VoteAnswers = nil
}

// Draft holds everything collected so far while creating a survey.
type Draft struct {
	Email       string
	Title       string
	Description string
	Language    string

	// Question is the single question of a quick-mode survey.
	Question DraftQuestion

	// Advanced mode
	Blocks          []DraftBlock
	Standalone      []DraftQuestion
	CurrentBlock    *DraftBlock
	CurrentQuestion *DraftQuestion

	// Editing is set while the user changes one field from the overview; the
	// next confirmed input returns straight to the overview.
	Editing bool
}

// DraftQuestion is a question under construction.
type DraftQuestion struct {
	Type      QuestionType
	Text      string
	Options   []string
	RatingMin int
	RatingMax int
	HasRange  bool

	// ValidationErrors holds the outcome of the last remote validation.
	// A non-empty list blocks saving the question.
	ValidationErrors []string
}

// DraftBlock is a block under construction.
type DraftBlock struct {
	Title       string
	Description string
	Questions   []DraftQuestion
}

// PendingVote points at the question the room is currently answering.
type PendingVote struct {
	Code      string
	Block     string
	Question  string
	Type      QuestionType
	Current   *Question // nil when the question could not be loaded
	Structure Structure
}
