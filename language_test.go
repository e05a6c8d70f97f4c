package readability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const englishText = `Growing tomatoes on a balcony is easier than most people think, provided that the plants get at least six hours of direct sunlight, a deep container, and regular watering during the hottest weeks of the summer.`

func TestDetectLanguage(t *testing.T) {

	tests := []struct {
		name    string
		text    string
		current string
		want    string
	}{
		{"short text keeps the current language", "Hello there", "fr", "fr"},
		{"detects without a current language", englishText, "", "en"},
		{"keeps a more specific current tag", englishText, "en-GB", "en-GB"},
		{"overrides a wrong current language", englishText, "de", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectLanguage(tt.text, tt.current)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
