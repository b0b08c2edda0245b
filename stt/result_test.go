package stt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultShape(t *testing.T) {
	result := NewResult("hello there")
	assert.Equal(t, "hello there", result.Transcript())

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"results": {
			"channels": [
				{"alternatives": [{"transcript": "hello there"}]}
			]
		}
	}`, string(data))
}

func TestResultTranscript_Empty(t *testing.T) {
	var result Result
	assert.Empty(t, result.Transcript())
}
