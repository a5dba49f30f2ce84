package services

import (
	"testing"
	"time"

	"citizens-connect/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ticketAt(id, title string, created time.Time) models.Ticket {
	return models.Ticket{
		ID:        id,
		Title:     title,
		Status:    models.StatusOpen,
		Priority:  models.PriorityMedium,
		AuthorID:  "u1",
		CreatedAt: created,
	}
}

func TestCombineIssues_TicketDisplacesOnlineIssue(t *testing.T) {
	online := onlineIssue("online_1", "Broken streetlight")
	other := onlineIssue("online_2", "Park flooding")
	tickets := []models.Ticket{ticketAt("t1", "Broken streetlight", baseTime)}

	combined := CombineIssues(tickets, []models.ExternalIssue{online, other})
	require.Len(t, combined, 2)
	assert.Equal(t, "t1", combined[0].ID)
	assert.False(t, combined[0].IsOnlineIssue)
	assert.Equal(t, "online_2", combined[1].ID)
	require.NotNil(t, combined[1].Source)
	assert.Equal(t, "newsapi", combined[1].Source.ID)
}

func TestCombineIssues_FirstTicketWinsOnTitleClash(t *testing.T) {
	tickets := []models.Ticket{
		ticketAt("t2", "Same title", baseTime.Add(time.Hour)),
		ticketAt("t1", "Same title", baseTime),
	}
	combined := CombineIssues(tickets, nil)
	require.Len(t, combined, 1)
	assert.Equal(t, "t2", combined[0].ID)
}

func TestFilterIssues(t *testing.T) {
	solved := ticketAt("t2", "Fixed pothole", baseTime)
	solved.Status = models.StatusSolved
	theirs := ticketAt("t3", "Noise complaint", baseTime)
	theirs.AuthorID = "u2"
	theirs.Description = "Loud construction at night"

	items := CombineIssues(
		[]models.Ticket{ticketAt("t1", "Broken bench", baseTime), solved, theirs},
		[]models.ExternalIssue{onlineIssue("online_1", "Bus strike")},
	)

	ids := func(list []models.CombinedIssue) []string {
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, item.ID)
		}
		return out
	}

	tests := []struct {
		name  string
		query IssueQuery
		want  []string
	}{
		{"all", IssueQuery{Filter: FilterAll}, []string{"t1", "t2", "t3", "online_1"}},
		{"unset filter means all", IssueQuery{}, []string{"t1", "t2", "t3", "online_1"}},
		{"open", IssueQuery{Filter: FilterOpen}, []string{"t1", "t3", "online_1"}},
		{"solved", IssueQuery{Filter: FilterSolved}, []string{"t2"}},
		{"mine", IssueQuery{Filter: FilterMine, UserID: "u1"}, []string{"t1", "t2"}},
		{"mine without user", IssueQuery{Filter: FilterMine}, []string{}},
		{"online", IssueQuery{Filter: FilterOnlineIssues}, []string{"online_1"}},
		{"search title", IssueQuery{Search: "BENCH"}, []string{"t1"}},
		{"search description", IssueQuery{Search: "construction"}, []string{"t3"}},
		{"filter and search", IssueQuery{Filter: FilterSolved, Search: "bench"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterIssues(items, tt.query)))
		})
	}
}

func TestSortIssues(t *testing.T) {
	low := ticketAt("low", "a", baseTime.Add(3*time.Hour))
	low.Priority = models.PriorityLow
	easy := ticketAt("easy", "b", baseTime.Add(2*time.Hour))
	easy.Priority = models.PriorityEasy
	easy.Upvotes = 5
	urgent := ticketAt("urgent", "c", baseTime)
	urgent.Priority = models.PriorityUrgent
	urgent.Upvotes = 2
	unknown := ticketAt("unknown", "d", baseTime.Add(time.Hour))
	unknown.Priority = "whatever"
	unknown.Upvotes = 5

	order := func(by IssueSort) []string {
		items := CombineIssues([]models.Ticket{low, easy, urgent, unknown}, nil)
		SortIssues(items, by)
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, item.ID)
		}
		return out
	}

	assert.Equal(t, []string{"low", "easy", "unknown", "urgent"}, order(SortNewest))
	assert.Equal(t, []string{"urgent", "easy", "low", "unknown"}, order(SortPriority))
	assert.Equal(t, []string{"easy", "unknown", "urgent", "low"}, order(SortVotes), "ties keep combined order")
}
