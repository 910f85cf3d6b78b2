package pipeline

import (
	"regexp"
	"strings"
)

// FillPrompt substitutes the placeholder values into the prompt
// template. Title and URL are regexp-quoted so documents cannot inject
// pattern syntax into downstream consumers of the prompt.
func FillPrompt(template, researchGoal, title, url, text string) string {
	r := strings.NewReplacer(
		"{research_goal}", researchGoal,
		"{title}", regexp.QuoteMeta(title),
		"{url}", regexp.QuoteMeta(url),
		"{text}", text,
	)
	return r.Replace(template)
}
