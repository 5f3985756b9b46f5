package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain object", input: `{"xp": 70}`, want: `{"xp": 70}`},
		{name: "json fence", input: "```json\n{\"xp\": 70}\n```", want: `{"xp": 70}`},
		{name: "bare fence", input: "```\n{\"xp\": 70}\n```", want: `{"xp": 70}`},
		{name: "prose around object", input: "Sure! Here it is: {\"xp\": 70} Hope that helps.", want: `{"xp": 70}`},
		{name: "array left alone", input: "```json\n[\"a\", \"b\"]\n```", want: `["a", "b"]`},
		{name: "whitespace", input: "  \n{\"a\":1}\n ", want: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanModelJSON(tt.input))
		})
	}
}

func TestParseThemeCounts_PreservesKeyOrder(t *testing.T) {
	themes, err := parseThemeCounts(`{"zeta": 2, "alpha": 5, "mid": 3}`)

	require.NoError(t, err)
	assert.Equal(t, []themeCount{
		{Label: "zeta", Count: 2},
		{Label: "alpha", Count: 5},
		{Label: "mid", Count: 3},
	}, themes)
}

func TestParseThemeCounts_Coercion(t *testing.T) {
	themes, err := parseThemeCounts(`{"Pay": 2, " pay ": 1, "Hours": "4", "Tools": 0, "Lunch": 2.6, "": 9, "Misc": null}`)

	require.NoError(t, err)
	assert.Equal(t, []themeCount{
		{Label: "Pay", Count: 3},
		{Label: "Hours", Count: 4},
		{Label: "Tools", Count: 1},
		{Label: "Lunch", Count: 3},
		{Label: "Misc", Count: 1},
	}, themes)
}

func TestParseThemeCounts_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "array", input: `["a", "b"]`},
		{name: "string", input: `"hello"`},
		{name: "truncated", input: `{"a": 1, "b":`},
		{name: "trailing data", input: `{"a": 1} {"b": 2}`},
		{name: "empty", input: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseThemeCounts(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestFallbackThemeCounts(t *testing.T) {
	themes := fallbackThemeCounts(`["Remote work", "remote work", "Better pay"] and "Training"`)

	assert.Equal(t, []themeCount{
		{Label: "Remote work", Count: 1},
		{Label: "Better pay", Count: 1},
		{Label: "Training", Count: 1},
	}, themes)

	assert.Empty(t, fallbackThemeCounts("no quotes here"))
	assert.NotNil(t, fallbackThemeCounts("no quotes here"))
}
