package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntentClassifier_Classify(t *testing.T) {
	c := NewIntentClassifier()

	tests := []struct {
		name  string
		query string
		want  Intent
	}{
		{"door code", "052A", IntentDoor},
		{"door keyword", "where is the server room door", IntentDoor},
		{"ccure mention", "description per ccure for 2052", IntentDoor},
		{"bare number", "204", IntentCamera},
		{"number with noise", "cam 389 please", IntentCamera},
		{"camera keyword", "cctv by the main gate", IntentCamera},
		{"site mention", "ppk2 yard view", IntentCamera},
		{"psa keyword", "psa John Smith", IntentStaff},
		{"for name pattern", "what is the licence for Jane Doe", IntentStaff},
		{"two capitalized words", "John Smith", IntentStaff},
		{"long number is not a camera", "what is 123456789", IntentUnknown},
		{"nothing recognizable", "hello there", IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.query))
		})
	}
}

func TestIntentClassifier_DoorCodeOutranksName(t *testing.T) {
	c := NewIntentClassifier()

	// Door signature wins even when the query also names a person.
	assert.Equal(t, IntentDoor, c.Classify("032E near where John Smith sits"))
}

func TestIntentClassifier_LooksLikeCamera_NumberLength(t *testing.T) {
	c := NewIntentClassifier()

	assert.True(t, c.LooksLikeCamera("12"))
	assert.True(t, c.LooksLikeCamera("#2048"))
	assert.False(t, c.LooksLikeCamera("20481"))
}
