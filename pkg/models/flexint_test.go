package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexIntUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    FlexInt
		wantErr bool
	}{
		{name: "Number", input: `42`, want: 42},
		{name: "Numeric string", input: `"1337"`, want: 1337},
		{name: "Null", input: `null`, want: 0},
		{name: "Non-numeric string", input: `"many"`, wantErr: true},
		{name: "Fraction", input: `1.5`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FlexInt
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSentryIssueDecodesStringCount(t *testing.T) {
	body := `{
		"id": "4512",
		"title": "TypeError: boom",
		"status": "unresolved",
		"level": "error",
		"firstSeen": "2024-03-01T10:00:00Z",
		"lastSeen": "2024-03-02T11:30:00.123456Z",
		"count": "17"
	}`

	var issue SentryIssue
	require.NoError(t, json.Unmarshal([]byte(body), &issue))

	assert.Equal(t, "4512", issue.ID)
	assert.Equal(t, FlexInt(17), issue.Count)
	assert.Equal(t, 2024, issue.FirstSeen.Year())
	assert.Nil(t, issue.LatestEvent)
}
