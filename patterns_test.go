package readability

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePatterns(t *testing.T) {

	t.Run("should compile the defaults", func(t *testing.T) {
		p, err := compilePatterns(nil)
		require.NoError(t, err)
		for c := Category(0); c < numCategories; c++ {
			assert.NotNil(t, p.Get(c), c.String())
		}
		assert.True(t, p.Get(UnlikelyCandidates).MatchString("sidebar"))
		assert.True(t, p.Get(Videos).MatchString("https://www.youtube.com/embed/x"))
	})

	t.Run("should extend a category", func(t *testing.T) {
		p, err := compilePatterns([]patternEdit{{category: Negative, expr: "newsletter"}})
		require.NoError(t, err)
		assert.True(t, p.Get(Negative).MatchString("footer-newsletter"))
		assert.True(t, p.Get(Negative).MatchString("comment"))
	})

	t.Run("should replace a category", func(t *testing.T) {
		p, err := compilePatterns([]patternEdit{{category: Byline, expr: `(?i)^credit$`, replace: true}})
		require.NoError(t, err)
		assert.True(t, p.Get(Byline).MatchString("Credit"))
		assert.False(t, p.Get(Byline).MatchString("author"))
	})

	t.Run("should not touch the defaults", func(t *testing.T) {
		_, err := compilePatterns([]patternEdit{{category: Positive, expr: "nope", replace: true}})
		require.NoError(t, err)
		assert.True(t, defaultPatterns.Get(Positive).MatchString("article"))
	})

	t.Run("should reject invalid expressions", func(t *testing.T) {
		_, err := compilePatterns([]patternEdit{{category: Videos, expr: "(", replace: true}})
		assert.ErrorContains(t, err, "videos")
	})
}

func TestAllowedVideoRegex(t *testing.T) {

	var r = newReader(t, AllowedVideoRegex(regexp.MustCompile(`//videos\.example\.com`)))
	assert.True(t, r.patterns.Get(Videos).MatchString("https://videos.example.com/v/1"))
	assert.False(t, r.patterns.Get(Videos).MatchString("https://www.youtube.com/embed/x"))
	assert.True(t, defaultPatterns.Get(Videos).MatchString("https://www.youtube.com/embed/x"))
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "share-elements", ShareElements.String())
	assert.Equal(t, "category(42)", Category(42).String())
}
