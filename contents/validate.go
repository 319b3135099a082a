package contents

import (
	"strings"
	"unicode/utf8"
)

type Field string

const (
	FieldTitle Field = "title"
	FieldBody  Field = "body"
)

func (field Field) IsValid() bool {
	switch field {
	case FieldTitle, FieldBody:
		return true
	default:
		return false
	}
}

const (
	MaxTitleLength = 100
	MaxBodyLength  = 500
)

const (
	MessageTitleRequired = "Title is required"
	MessageBodyRequired  = "Content is required"
	MessageTitleTooLong  = "Title must be less than 100 characters"
	MessageBodyTooLong   = "Content must be less than 500 characters"
)

type Draft struct {
	Title string
	Body  string
}

func (draft *Draft) Set(field Field, value string) {
	switch field {
	case FieldTitle:
		draft.Title = value
	case FieldBody:
		draft.Body = value
	}
}

func (draft Draft) Trimmed() Draft {
	return Draft{
		Title: strings.TrimSpace(draft.Title),
		Body:  strings.TrimSpace(draft.Body),
	}
}

// FormErrors maps a field to its message. A missing key means the field is valid.
type FormErrors map[Field]string

func (errs FormErrors) Has(field Field) bool {
	_, ok := errs[field]

	return ok
}

func (errs FormErrors) Clone() FormErrors {
	clone := make(FormErrors, len(errs))
	for field, msg := range errs {
		clone[field] = msg
	}

	return clone
}

// Validate recomputes all field errors for draft. For each field the
// required check runs before the length check, and the later check wins.
func Validate(draft Draft) FormErrors {
	errs := make(FormErrors)

	if strings.TrimSpace(draft.Title) == "" {
		errs[FieldTitle] = MessageTitleRequired
	}

	if utf8.RuneCountInString(draft.Title) > MaxTitleLength {
		errs[FieldTitle] = MessageTitleTooLong
	}

	if strings.TrimSpace(draft.Body) == "" {
		errs[FieldBody] = MessageBodyRequired
	}

	if utf8.RuneCountInString(draft.Body) > MaxBodyLength {
		errs[FieldBody] = MessageBodyTooLong
	}

	return errs
}
