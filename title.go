package readability

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func wordCount(s string) int {
	return len(multipleWhitespaces.Split(s, -1))
}

// titleFromDocument guesses the article title from the <title> element and
// the page headings.
func titleFromDocument(gq *goquery.Document) string {
	var curTitle = strings.TrimSpace(gq.Find("title").First().Text())
	var origTitle = curTitle

	var titleHadHierarchicalSeparators bool

	// If there's a separator in the title, first remove the final part
	if titleFinalPart.MatchString(curTitle) {
		titleHadHierarchicalSeparators = titleSeparators.MatchString(curTitle)
		curTitle = titleLastPart.ReplaceAllString(origTitle, "$1")

		// If the resulting title is too short (3 words or fewer), remove
		// the first part instead:
		if wordCount(curTitle) < 3 {
			curTitle = titleFirstPart.ReplaceAllString(origTitle, "$1")
		}
	} else if strings.Contains(curTitle, ": ") {
		// Check if we have an heading containing this exact string, so we
		// could assume it's the full title.
		var trimmedTitle = strings.TrimSpace(curTitle)
		var match bool
		gq.Find("h1, h2").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			match = strings.TrimSpace(s.Text()) == trimmedTitle
			return !match
		})

		// If we don't, let's extract the title out of the original title string.
		if !match {
			curTitle = origTitle[strings.LastIndex(origTitle, ":")+1:]

			// If the title is now too short, try the first colon instead:
			if wordCount(curTitle) < 3 {
				curTitle = origTitle[strings.Index(origTitle, ":")+1:]
				// But if we have too many words before the colon there's something weird
				// with the titles and the H tags so let's just use the original title instead
			} else if wordCount(origTitle[:strings.Index(origTitle, ":")]) > 5 {
				curTitle = origTitle
			}
		}
	} else if n := len([]rune(curTitle)); n > 150 || n < 15 {
		if hOnes := gq.Find("h1"); hOnes.Length() == 1 {
			curTitle = hOnes.Text()
		}
	}

	curTitle = normalize.ReplaceAllString(strings.TrimSpace(curTitle), " ")
	// If we now have 4 words or fewer as our title, and either no
	// 'hierarchical' separators (\, /, > or ») were found in the original
	// title or we decreased the number of words by more than 1 word, use
	// the original title.
	var curTitleWordCount = wordCount(curTitle)
	if curTitleWordCount <= 4 &&
		(!titleHadHierarchicalSeparators ||
			curTitleWordCount != wordCount(separators.ReplaceAllString(origTitle, ""))-1) {
		curTitle = origTitle
	}
	return curTitle
}
