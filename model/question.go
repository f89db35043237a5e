package model

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// QuestionType is the remote service's question_type tag.
type QuestionType string

const (
	QuestionTypeSingleChoice QuestionType = "ChoiceSingle"
	QuestionTypeMultiChoice  QuestionType = "ChoiceMulti"
	QuestionTypeRange        QuestionType = "RangeSlider"
	QuestionTypeText         QuestionType = "TextQuestion"
)

// Language is the single language tag every published text is keyed by.
const Language = "DE"

func (t QuestionType) IsChoice() bool {
	return t == QuestionTypeSingleChoice || t == QuestionTypeMultiChoice
}

// Label returns the human readable name shown in chat.
func (t QuestionType) Label() string {
	switch t {
	case QuestionTypeSingleChoice:
		return "Single Choice"
	case QuestionTypeMultiChoice:
		return "Multiple Choice"
	case QuestionTypeRange:
		return "Rating Scale"
	case QuestionTypeText:
		return "Free Text"
	default:
		return string(t)
	}
}

// LocalizedText maps a language tag to a text, e.g. {"DE": "Hallo"}.
type LocalizedText map[string]string

// Text builds a LocalizedText under the published language tag.
func Text(s string) LocalizedText {
	return LocalizedText{Language: s}
}

// String prefers the published language, then EN, then whatever is present.
func (l LocalizedText) String() string {
	if v, ok := l[Language]; ok {
		return v
	}
	if v, ok := l["EN"]; ok {
		return v
	}
	for _, k := range SortedKeys(l) {
		return l[k]
	}
	return ""
}

// Question is a question as served by the remote service.
type Question struct {
	Text   LocalizedText  `json:"question"`
	Type   QuestionType   `json:"question_type"`
	Config QuestionConfig `json:"config"`
}

type QuestionConfig struct {
	OptionType string                   `json:"option_type,omitempty"`
	Options    map[string]LocalizedText `json:"options,omitempty"`
	Range      *RangeConfig             `json:"range_config,omitempty"`
}

type RangeConfig struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	StepSize int    `json:"stepsize,omitempty"`
}

// OptionLabels returns the option texts ordered by their numeric key, so the
// position in the result is the answer index.
func (q *Question) OptionLabels() []string {
	keys := SortedKeys(q.Config.Options)
	labels := make([]string, 0, len(keys))
	for _, k := range keys {
		labels = append(labels, q.Config.Options[k].String())
	}
	return labels
}

// SurveySummary is one entry of the remote survey listing.
type SurveySummary struct {
	Title     string
	EnterCode string
}

// AnswerKey addresses a question inside a survey.
type AnswerKey struct {
	Block    string
	Question string
}

// AnalyticsEvent is one recorded participation for a question.
type AnalyticsEvent struct {
	Content struct {
		Answer map[string]map[string][]AnswerValue `json:"answer"`
	} `json:"content"`
}

// Answers returns the recorded answers of the event's first answer slot.
func (e AnalyticsEvent) Answers() []AnswerValue {
	return e.Content.Answer["0"]["0"]
}

// AnswerValue is a single recorded answer. The remote service records
// strings, but numbers and nulls occur in older events.
type AnswerValue struct {
	Value string
	Null  bool
}

func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	var entry struct {
		Answer json.RawMessage `json:"answer"`
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		return err
	}
	raw := bytes.TrimSpace(entry.Answer)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		a.Null = true
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		a.Value = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return err
	}
	a.Value = n.String()
	return nil
}

// SortedKeys returns the keys of m in increasing numeric order. Keys that are
// not integers sort after the numeric ones, lexicographically.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}
