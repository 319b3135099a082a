package contents_test

import (
	"strings"
	"testing"

	"github.com/nasermirzaei89/postdesk/contents"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		draft    contents.Draft
		expected contents.FormErrors
	}{
		{
			name:  "both fields empty",
			draft: contents.Draft{Title: "", Body: ""},
			expected: contents.FormErrors{
				contents.FieldTitle: contents.MessageTitleRequired,
				contents.FieldBody:  contents.MessageBodyRequired,
			},
		},
		{
			name:  "whitespace only counts as empty",
			draft: contents.Draft{Title: "  \t", Body: "\n "},
			expected: contents.FormErrors{
				contents.FieldTitle: contents.MessageTitleRequired,
				contents.FieldBody:  contents.MessageBodyRequired,
			},
		},
		{
			name:  "title too long",
			draft: contents.Draft{Title: strings.Repeat("x", 101), Body: "ok"},
			expected: contents.FormErrors{
				contents.FieldTitle: contents.MessageTitleTooLong,
			},
		},
		{
			name:     "title at limit",
			draft:    contents.Draft{Title: strings.Repeat("x", 100), Body: "ok"},
			expected: contents.FormErrors{},
		},
		{
			name:  "body too long",
			draft: contents.Draft{Title: "ok", Body: strings.Repeat("y", 501)},
			expected: contents.FormErrors{
				contents.FieldBody: contents.MessageBodyTooLong,
			},
		},
		{
			name:     "multibyte characters count once",
			draft:    contents.Draft{Title: strings.Repeat("é", 100), Body: "ok"},
			expected: contents.FormErrors{},
		},
		{
			name:  "whitespace title over the limit reports length",
			draft: contents.Draft{Title: strings.Repeat(" ", 101), Body: "ok"},
			expected: contents.FormErrors{
				contents.FieldTitle: contents.MessageTitleTooLong,
			},
		},
		{
			name:     "valid draft",
			draft:    contents.Draft{Title: "ok", Body: "ok"},
			expected: contents.FormErrors{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := contents.Validate(tt.draft)
			assert.Equal(t, tt.expected, result)
		})
	}
}
