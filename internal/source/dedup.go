package source

import (
	"regexp"
	"strings"

	"citizens-connect/internal/models"
)

var (
	punctuation = regexp.MustCompile(`[^\w\s]`)
	stopWords   = regexp.MustCompile(`\b(the|and|or|but|in|on|at|to|for|of|with|by|a|an)\b`)
	spaces      = regexp.MustCompile(`\s+`)
)

func normalizeTitle(title string) string {
	t := strings.ToLower(title)
	t = punctuation.ReplaceAllString(t, "")
	t = stopWords.ReplaceAllString(t, "")
	t = spaces.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Split(s, " ") {
		set[w] = struct{}{}
	}
	return set
}

// similar is true when the titles share more than three words and over 80% of their union.
func similar(a, b map[string]struct{}) bool {
	shared := 0
	for w := range a {
		if _, ok := b[w]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	if union == 0 {
		return false
	}
	return shared > 3 && float64(shared)/float64(union) > 0.8
}

// RemoveDuplicates drops repeats of an already-seen url and near-identical titles, keeping the first.
func RemoveDuplicates(issues []models.ExternalIssue) []models.ExternalIssue {
	unique := make([]models.ExternalIssue, 0, len(issues))
	seenURLs := make(map[string]struct{})
	var seenTitles []map[string]struct{}

	for _, issue := range issues {
		if issue.URL != "" {
			if _, ok := seenURLs[issue.URL]; ok {
				continue
			}
		}

		words := wordSet(normalizeTitle(issue.Title))
		duplicate := false
		for _, seen := range seenTitles {
			if similar(words, seen) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		unique = append(unique, issue)
		seenTitles = append(seenTitles, words)
		if issue.URL != "" {
			seenURLs[issue.URL] = struct{}{}
		}
	}
	return unique
}
