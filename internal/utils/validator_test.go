package utils

import (
	"errors"
	"strings"
	"testing"

	"citizens-connect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseErrors_TicketDraft(t *testing.T) {
	draft := models.TicketDraft{
		Title:       strings.Repeat("x", 201),
		Description: "",
		Category:    "Aliens",
		Priority:    "someday",
	}

	err := GetValidator().Struct(draft)
	require.Error(t, err)

	msgs := ParseErrors(err)
	assert.Contains(t, msgs, "title length must be less than or equal to 200")
	assert.Contains(t, msgs, "description field is required")
	assert.Contains(t, msgs, "priority must be low or easy or medium or high or urgent")
	found := false
	for _, m := range msgs {
		assert.NotContains(t, m, "omitempty")
		if strings.HasPrefix(m, "category must be Infrastructure or Healthcare") {
			found = true
		}
	}
	assert.True(t, found, msgs)
}

func TestParseErrors_ValidDraft(t *testing.T) {
	draft := models.TicketDraft{
		Title:       "Streetlight out",
		Description: "Dark corner near the park",
		Category:    "Public Safety",
	}
	assert.NoError(t, GetValidator().Struct(draft))
}

func TestParseErrors_NotValidationError(t *testing.T) {
	assert.Equal(t, []string{"Unknown error"}, ParseErrors(errors.New("boom")))
}
