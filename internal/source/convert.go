package source

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"citizens-connect/internal/models"

	"github.com/google/uuid"
)

const onlineIDPrefix = "online_"

// StableID derives an issue id from its url so repeated fetches land on the same entity.
// Articles without a url cannot be reconciled and get a random id.
func StableID(url string) string {
	if url == "" {
		return onlineIDPrefix + uuid.NewString()
	}
	sum := sha1.Sum([]byte(url))
	return onlineIDPrefix + hex.EncodeToString(sum[:])[:16]
}

func ToIssue(a Article, src models.IssueSource, now time.Time) models.ExternalIssue {
	description := a.Description
	if description == "" {
		description = a.Content
	}
	if description == "" {
		description = "No description available"
	}

	createdAt := a.PublishedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	return models.ExternalIssue{
		Ticket: models.Ticket{
			ID:          StableID(a.URL),
			Title:       a.Title,
			Description: description,
			Category:    Categorize(a),
			Priority:    DeterminePriority(a),
			Status:      models.StatusOpen,
			Author:      src.Name,
			AuthorID:    onlineIDPrefix + src.ID,
			AuthorRole:  "Online Source",
			Voters:      []string{},
			Location:    ExtractLocation(a),
			CreatedAt:   createdAt,
		},
		IsOnlineIssue: true,
		Source:        src,
		URL:           a.URL,
		ImageURL:      a.URLToImage,
		LastUpdated:   now,
	}
}

type keywordRule[T any] struct {
	value    T
	keywords []string
}

var categoryRules = []keywordRule[string]{
	{"Infrastructure", []string{"pothole", "road", "infrastructure", "construction"}},
	{"Utilities", []string{"water", "sanitation", "electricity", "power"}},
	{"Healthcare", []string{"health", "hospital", "medical", "covid"}},
	{"Education", []string{"education", "school", "college", "university"}},
	{"Transportation", []string{"traffic", "transport", "parking"}},
	{"Public Safety", []string{"police", "crime", "safety", "security"}},
	{"Environment", []string{"environment", "pollution", "waste", "garbage"}},
}

var priorityRules = []keywordRule[models.Priority]{
	{models.PriorityUrgent, []string{"emergency", "crisis", "disaster", "accident", "death", "fatal"}},
	{models.PriorityHigh, []string{"urgent", "critical", "severe", "major", "breaking"}},
	{models.PriorityMedium, []string{"important", "concern", "issue", "problem", "complaint"}},
}

var knownLocations = []string{
	"Vijayawada", "Visakhapatnam", "Tirupati", "Guntur", "Nellore", "Kurnool",
	"Rajahmundry", "Kadapa", "Anantapur", "Eluru", "Ongole", "Chittoor",
	"Andhra Pradesh", "Telangana", "Hyderabad", "Chennai", "Bangalore",
}

func searchText(a Article) string {
	return strings.ToLower(a.Title + " " + a.Description)
}

func match[T any](text string, rules []keywordRule[T], fallback T) T {
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.value
			}
		}
	}
	return fallback
}

func Categorize(a Article) string {
	return match(searchText(a), categoryRules, "Other")
}

func DeterminePriority(a Article) models.Priority {
	return match(searchText(a), priorityRules, models.PriorityLow)
}

func ExtractLocation(a Article) string {
	text := searchText(a)
	for _, loc := range knownLocations {
		if strings.Contains(text, strings.ToLower(loc)) {
			return loc
		}
	}
	return "General"
}
