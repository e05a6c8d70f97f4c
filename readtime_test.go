package readability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReadingTime(t *testing.T) {

	tests := []struct {
		chars int
		lang  string
		want  time.Duration
	}{
		{987, "en", time.Minute},
		{987, "en-US", time.Minute},
		{987, "", time.Minute},
		{987, "xx", time.Minute},
		{357, "ja", time.Minute},
		{255, "ZH_tw", time.Minute},
		{1000, "en", 61 * time.Second},
		{0, "fr", 0},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			assert.Equal(t, tt.want, ReadingTime(tt.chars, tt.lang))
		})
	}
}
