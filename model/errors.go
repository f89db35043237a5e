package model

import "errors"

var (
	ErrSurveyNotFound   = errors.New("survey does not exist")
	ErrQuestionNotFound = errors.New("question does not exist")
	ErrEmptyStructure   = errors.New("survey has no questions")
	ErrNoOptions        = errors.New("choice question has no options")
)
