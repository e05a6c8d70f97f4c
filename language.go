package readability

import (
	"errors"

	"github.com/abadojack/whatlanggo"
)

// Below this length a guess is too noisy to override the metadata.
const minDetectableLength = 20

var errUnknownLanguage = errors.New("language not recognized")

// DetectLanguage is a LanguageDetector based on trigram statistics. The
// current language is kept when the text is too short, the guess is not
// reliable or it agrees with current.
func DetectLanguage(text, current string) (string, error) {
	if runeCount(text) < minDetectableLength {
		return current, nil
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return current, nil
	}

	code := info.Lang.Iso6391()
	if code == "" {
		code = whatlanggo.LangToString(info.Lang)
	}
	if code == "" {
		if current != "" {
			return current, nil
		}
		return "", errUnknownLanguage
	}

	if current != "" && baseLanguage(current) == code {
		return current, nil
	}
	return code, nil
}
