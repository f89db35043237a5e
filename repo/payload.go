package repo

import (
	"strconv"
	"strings"

	"VoteBot/model"
)

const (
	analysisModeFree = "FREE"
	optionTypeText   = "TEXT"

	// endOfChain terminates a linear structure.
	endOfChain = -1

	// The answers endpoint requires a conditional answer on every entry even
	// though no conditional questions are ever built.
	condAnswerPlaceholder = "string"

	standaloneBlockTitle       = "Additional Questions"
	standaloneBlockDescription = "Standalone questions"
)

// CreateSurveyRequest is the body of POST /vote.
type CreateSurveyRequest struct {
	Data SurveyData `json:"data"`
}

type SurveyData struct {
	Module         string                  `json:"module"`
	Config         SurveyConfig            `json:"config"`
	QuestionBlocks map[string]BlockPayload `json:"question_blocks"`
}

type SurveyConfig struct {
	Title         model.LocalizedText `json:"title"`
	Description   model.LocalizedText `json:"description,omitempty"`
	Creator       string              `json:"creator"`
	Public        bool                `json:"public"`
	State         string              `json:"state,omitempty"`
	Settings      SurveySettings      `json:"settings"`
	AnalysisMode  string              `json:"analysis_mode"`
	Structure     Structure           `json:"structure"`
	AdminPassword string              `json:"admin_pw,omitempty"`
}

type SurveySettings struct {
	EditableAnswer       bool   `json:"editable_answer"`
	FullParticipation    bool   `json:"full_participation"`
	ParticipationMode    string `json:"participation_mode"`
	ParticipationValMode string `json:"participation_val_mode"`
}

// Structure links components (questions of a block, or blocks of a survey)
// through their "default" successor.
type Structure struct {
	Start      int                  `json:"start"`
	Components map[string]Component `json:"components"`
}

type Component struct {
	Default int `json:"default"`
}

type BlockPayload struct {
	Title        model.LocalizedText        `json:"title"`
	Description  model.LocalizedText        `json:"description,omitempty"`
	Questions    map[string]QuestionPayload `json:"questions"`
	AnalysisMode string                     `json:"analysis_mode"`
	Structure    Structure                  `json:"structure"`
}

type QuestionPayload struct {
	Question     model.LocalizedText  `json:"question"`
	QuestionType model.QuestionType   `json:"question_type"`
	Settings     QuestionSettings     `json:"settings"`
	Config       model.QuestionConfig `json:"config"`
	AnalysisMode string               `json:"analysis_mode"`
}

type QuestionSettings struct {
	Mandatory bool `json:"mandatory"`
	Grid      bool `json:"grid"`
}

// LinearStructure chains n components in order: i points to i+1 and the last
// one points to -1.
func LinearStructure(n int) Structure {
	components := make(map[string]Component, n)
	for i := 0; i < n; i++ {
		next := i + 1
		if i == n-1 {
			next = endOfChain
		}
		components[strconv.Itoa(i)] = Component{Default: next}
	}
	return Structure{Start: 0, Components: components}
}

func defaultSettings() SurveySettings {
	return SurveySettings{
		EditableAnswer:       true,
		FullParticipation:    true,
		ParticipationMode:    "UNGUIDED",
		ParticipationValMode: "COOKIE",
	}
}

func surveyConfig(title, description, creator string, blockCount int) SurveyConfig {
	cfg := SurveyConfig{
		Title:        model.Text(title),
		Creator:      creator,
		Public:       true,
		Settings:     defaultSettings(),
		AnalysisMode: analysisModeFree,
		Structure:    LinearStructure(blockCount),
	}
	if strings.TrimSpace(description) != "" {
		cfg.Description = model.Text(description)
	}
	return cfg
}

// NewQuickSurvey builds a one-block, one-question survey.
func NewQuickSurvey(d model.Draft) CreateSurveyRequest {
	block := BlockPayload{
		Title:       model.Text("Block 1"),
		Description: model.Text("User-created block"),
		Questions: map[string]QuestionPayload{
			"0": questionPayload(d.Question, true),
		},
		AnalysisMode: analysisModeFree,
		Structure:    LinearStructure(1),
	}
	return CreateSurveyRequest{Data: SurveyData{
		Module:         "Survey",
		Config:         surveyConfig(d.Title, "", d.Email, 1),
		QuestionBlocks: map[string]BlockPayload{"0": block},
	}}
}

// NewAdvancedSurvey builds a survey from the draft blocks. Standalone
// questions become a trailing block.
func NewAdvancedSurvey(d model.Draft) CreateSurveyRequest {
	blocks := advancedBlocks(d)
	return CreateSurveyRequest{Data: SurveyData{
		Module:         "Survey",
		Config:         surveyConfig(d.Title, d.Description, d.Email, len(blocks)),
		QuestionBlocks: blocks,
	}}
}

func advancedBlocks(d model.Draft) map[string]BlockPayload {
	blocks := make(map[string]BlockPayload, len(d.Blocks)+1)
	for i, b := range d.Blocks {
		blocks[strconv.Itoa(i)] = blockPayload(b.Title, b.Description, b.Questions)
	}
	if len(d.Standalone) > 0 {
		blocks[strconv.Itoa(len(d.Blocks))] = blockPayload(standaloneBlockTitle, standaloneBlockDescription, d.Standalone)
	}
	return blocks
}

func blockPayload(title, description string, questions []model.DraftQuestion) BlockPayload {
	qs := make(map[string]QuestionPayload, len(questions))
	for i, q := range questions {
		qs[strconv.Itoa(i)] = questionPayload(q, false)
	}
	b := BlockPayload{
		Title:        model.Text(title),
		Questions:    qs,
		AnalysisMode: analysisModeFree,
		Structure:    LinearStructure(len(questions)),
	}
	if strings.TrimSpace(description) != "" {
		b.Description = model.Text(description)
	}
	return b
}

func questionPayload(q model.DraftQuestion, mandatory bool) QuestionPayload {
	return QuestionPayload{
		Question:     model.Text(q.Text),
		QuestionType: q.Type,
		Settings:     QuestionSettings{Mandatory: mandatory},
		Config:       questionConfig(q),
		AnalysisMode: analysisModeFree,
	}
}

func questionConfig(q model.DraftQuestion) model.QuestionConfig {
	switch {
	case q.Type.IsChoice():
		options := make(map[string]model.LocalizedText, len(q.Options))
		for i, opt := range q.Options {
			options[strconv.Itoa(i)] = model.Text(opt)
		}
		return model.QuestionConfig{OptionType: optionTypeText, Options: options}
	case q.Type == model.QuestionTypeRange && q.HasRange:
		return model.QuestionConfig{Range: &model.RangeConfig{
			Min:      q.RatingMin,
			Max:      q.RatingMax,
			Start:    strconv.Itoa(q.RatingMin),
			End:      strconv.Itoa(q.RatingMax),
			StepSize: 1,
		}}
	default:
		return model.QuestionConfig{}
	}
}

// SubmitAnswersRequest is the body of POST /answers/{code}.
type SubmitAnswersRequest struct {
	Blocks map[string]BlockAnswers `json:"blocks"`
}

type BlockAnswers struct {
	Questions map[string]QuestionAnswers `json:"questions"`
}

type QuestionAnswers struct {
	Answers []map[string]map[string][]AnswerEntry `json:"answers"`
	Lang    string                                `json:"lang"`
	Skip    bool                                  `json:"skip"`
}

type AnswerEntry struct {
	Answer     string `json:"answer"`
	CondAnswer string `json:"cond_answer"`
}

// NewSubmitAnswers folds every buffered answer into one submission.
func NewSubmitAnswers(answers map[model.AnswerKey][]string) SubmitAnswersRequest {
	blocks := make(map[string]BlockAnswers)
	for key, values := range answers {
		entries := make([]AnswerEntry, 0, len(values))
		for _, v := range values {
			entries = append(entries, AnswerEntry{Answer: v, CondAnswer: condAnswerPlaceholder})
		}

		b, ok := blocks[key.Block]
		if !ok {
			b = BlockAnswers{Questions: make(map[string]QuestionAnswers)}
			blocks[key.Block] = b
		}
		b.Questions[key.Question] = QuestionAnswers{
			Answers: []map[string]map[string][]AnswerEntry{{"0": {"0": entries}}},
			Lang:    model.Language,
		}
	}
	return SubmitAnswersRequest{Blocks: blocks}
}
