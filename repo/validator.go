package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"VoteBot/model"
)

const (
	// DefaultValidatorCooldown is the minimum spacing between validator calls.
	DefaultValidatorCooldown = 1500 * time.Millisecond

	questionValidationTimeout = 10 * time.Second
	surveyValidationTimeout   = 15 * time.Second

	placeholderCreator = "validation.test@telekom.de"
	placeholderTitle   = "Validation Test Survey"
)

// ValidationResult is the outcome of a structure validation. Warnings never
// make a result invalid.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

func invalid(errs ...string) ValidationResult {
	return ValidationResult{Valid: false, Errors: errs}
}

// Validator checks survey structures against the remote template validator.
// Calls are spaced by a cool-down; a call issued early blocks until the
// interval has passed.
type Validator struct {
	connector *SurveyConnector
	limiter   *rate.Limiter
}

// NewValidator creates a validator. A cooldown <= 0 disables the spacing.
func NewValidator(connector *SurveyConnector, cooldown time.Duration) *Validator {
	limit := rate.Inf
	if cooldown > 0 {
		limit = rate.Every(cooldown)
	}
	return &Validator{
		connector: connector,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// ValidateQuestion validates one draft question inside a placeholder survey.
func (v *Validator) ValidateQuestion(ctx context.Context, q model.DraftQuestion) ValidationResult {
	var errs, warnings []string
	if strings.TrimSpace(q.Text) == "" {
		errs = append(errs, "Question text is required")
	}
	if q.Type.IsChoice() {
		switch {
		case len(q.Options) == 0:
			errs = append(errs, "At least one option is required for choice questions")
		case len(q.Options) < 2:
			warnings = append(warnings, "Choice questions typically have at least 2 options")
		}
	}
	if q.Type == model.QuestionTypeRange && q.HasRange && q.RatingMax <= q.RatingMin {
		errs = append(errs, "Rating max value must be greater than min value")
	}
	if len(errs) > 0 {
		return ValidationResult{Errors: errs, Warnings: warnings}
	}

	cfg := placeholderConfig(placeholderTitle, "", placeholderCreator, 1)
	payload := CreateSurveyRequest{Data: SurveyData{
		Module: "Survey",
		Config: cfg,
		QuestionBlocks: map[string]BlockPayload{
			"0": blockPayload(placeholderTitle, "This is a validation test description", []model.DraftQuestion{q}),
		},
	}}

	res := v.validate(ctx, payload, questionValidationTimeout, "Validation issue", "API validation failed")
	res.Warnings = append(warnings, res.Warnings...)
	return res
}

// ValidateSettings validates the survey-wide settings of a draft with a
// placeholder block standing in for the questions not written yet.
func (v *Validator) ValidateSettings(ctx context.Context, d model.Draft) ValidationResult {
	if strings.TrimSpace(d.Title) == "" {
		return invalid("Survey title is required")
	}
	placeholder := model.DraftQuestion{
		Type:    model.QuestionTypeSingleChoice,
		Text:    "Validation question",
		Options: []string{"Yes", "No"},
	}
	payload := CreateSurveyRequest{Data: SurveyData{
		Module: "Survey",
		Config: placeholderConfig(d.Title, d.Description, d.Email, 1),
		QuestionBlocks: map[string]BlockPayload{
			"0": blockPayload("Dummy Block", "Validation block", []model.DraftQuestion{placeholder}),
		},
	}}
	return v.validate(ctx, payload, questionValidationTimeout, "Validation issue", "Global settings validation failed")
}

// ValidateSurvey validates the complete assembled structure of an advanced
// draft before it is created.
func (v *Validator) ValidateSurvey(ctx context.Context, d model.Draft) ValidationResult {
	var errs []string
	if strings.TrimSpace(d.Title) == "" {
		errs = append(errs, "Survey title is required")
	}
	blocks := advancedBlocks(d)
	if len(blocks) == 0 {
		errs = append(errs, "Survey must contain at least one question block")
	}
	for _, id := range model.SortedKeys(blocks) {
		if len(blocks[id].Questions) == 0 {
			errs = append(errs, fmt.Sprintf("Block '%s' has no questions", blocks[id].Title.String()))
		}
	}
	if len(errs) > 0 {
		return invalid(errs...)
	}

	payload := CreateSurveyRequest{Data: SurveyData{
		Module:         "Survey",
		Config:         placeholderConfig(d.Title, d.Description, d.Email, len(blocks)),
		QuestionBlocks: blocks,
	}}
	return v.validate(ctx, payload, surveyValidationTimeout, "Survey validation issue", "Survey validation failed")
}

func placeholderConfig(title, description, creator string, blockCount int) SurveyConfig {
	if creator == "" {
		creator = placeholderCreator
	}
	cfg := surveyConfig(title, description, creator, blockCount)
	cfg.State = "PUBLISHED"
	return cfg
}

type validatorResponse struct {
	Valid  *bool             `json:"valid"`
	Errors []json.RawMessage `json:"errors"`
}

func (v *Validator) validate(ctx context.Context, payload CreateSurveyRequest, timeout time.Duration, issuePrefix, failurePrefix string) ValidationResult {
	if err := v.limiter.Wait(ctx); err != nil {
		return invalid(fmt.Sprintf("Validation was interrupted: %v", err))
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload.Data.Config.AdminPassword = v.connector.adminPassword

	var resp validatorResponse
	err := v.connector.do(callCtx, "validate", http.MethodPut, "/template/validator", payload, &resp)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("structure validation call failed")

		var se *StatusError
		switch {
		case errors.As(err, &se):
			return invalid(fmt.Sprintf("%s: %s", failurePrefix, apiErrorMessage(se)))
		case errors.Is(err, context.DeadlineExceeded):
			return invalid("Validation request timed out. Please try again.")
		default:
			return invalid(fmt.Sprintf("Network error during validation: %v", err))
		}
	}

	if resp.Valid == nil || *resp.Valid {
		return ValidationResult{Valid: true}
	}
	errs := make([]string, 0, len(resp.Errors))
	for _, raw := range resp.Errors {
		errs = append(errs, fmt.Sprintf("%s: %s", issuePrefix, rawErrorText(raw)))
	}
	if len(errs) == 0 {
		errs = append(errs, issuePrefix+": structure rejected")
	}
	return invalid(errs...)
}

// apiErrorMessage prefers the "error" or "message" field of a JSON error body.
func apiErrorMessage(se *StatusError) string {
	var body map[string]any
	if err := json.Unmarshal([]byte(se.Body), &body); err == nil {
		for _, key := range []string{"error", "message"} {
			if msg, ok := body[key].(string); ok && msg != "" {
				return msg
			}
		}
	}
	text := se.Body
	if len(text) > 200 {
		text = text[:200]
	}
	return fmt.Sprintf("Status %d: %s", se.StatusCode, text)
}

func rawErrorText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
