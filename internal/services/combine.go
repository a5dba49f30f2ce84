package services

import (
	"sort"
	"strings"

	"citizens-connect/internal/models"
)

type IssueFilter string

const (
	FilterAll          IssueFilter = "all"
	FilterOpen         IssueFilter = "open"
	FilterSolved       IssueFilter = "solved"
	FilterMine         IssueFilter = "my_tickets"
	FilterOnlineIssues IssueFilter = "online_issues"
)

type IssueSort string

const (
	SortNewest   IssueSort = "newest"
	SortPriority IssueSort = "priority"
	SortVotes    IssueSort = "votes"
)

type IssueQuery struct {
	Filter IssueFilter
	Sort   IssueSort
	Search string
	// UserID backs FilterMine.
	UserID string
}

// CombineIssues merges tickets and online issues, tickets first, keeping one row per exact title.
// The first row seen for a title wins, except that a user ticket displaces an online issue.
func CombineIssues(tickets []models.Ticket, online []models.ExternalIssue) []models.CombinedIssue {
	all := make([]models.CombinedIssue, 0, len(tickets)+len(online))
	for _, t := range tickets {
		all = append(all, models.CombinedIssue{Ticket: t, Pending: t.Pending})
	}
	for _, issue := range online {
		src := issue.Source
		all = append(all, models.CombinedIssue{
			Ticket:        issue.Ticket,
			IsOnlineIssue: true,
			Source:        &src,
			URL:           issue.URL,
			ImageURL:      issue.ImageURL,
		})
	}

	kept := make([]models.CombinedIssue, 0, len(all))
	byTitle := make(map[string]int, len(all))
	for _, item := range all {
		i, seen := byTitle[item.Title]
		if !seen {
			byTitle[item.Title] = len(kept)
			kept = append(kept, item)
			continue
		}
		if kept[i].IsOnlineIssue && !item.IsOnlineIssue {
			kept[i] = item
		}
	}
	return kept
}

func (q IssueQuery) matches(item models.CombinedIssue) bool {
	switch q.Filter {
	case FilterOpen:
		if item.Status != models.StatusOpen {
			return false
		}
	case FilterSolved:
		if item.Status != models.StatusSolved {
			return false
		}
	case FilterMine:
		if q.UserID == "" || item.AuthorID != q.UserID {
			return false
		}
	case FilterOnlineIssues:
		if !item.IsOnlineIssue {
			return false
		}
	}

	if q.Search == "" {
		return true
	}
	term := strings.ToLower(q.Search)
	return strings.Contains(strings.ToLower(item.Title), term) ||
		strings.Contains(strings.ToLower(item.Description), term)
}

func FilterIssues(items []models.CombinedIssue, q IssueQuery) []models.CombinedIssue {
	out := make([]models.CombinedIssue, 0, len(items))
	for _, item := range items {
		if q.matches(item) {
			out = append(out, item)
		}
	}
	return out
}

// SortIssues orders in place. Ties keep their combined order.
func SortIssues(items []models.CombinedIssue, by IssueSort) {
	var less func(a, b models.CombinedIssue) bool
	switch by {
	case SortPriority:
		less = func(a, b models.CombinedIssue) bool { return a.Priority.Rank() > b.Priority.Rank() }
	case SortVotes:
		less = func(a, b models.CombinedIssue) bool { return a.Upvotes > b.Upvotes }
	default:
		less = func(a, b models.CombinedIssue) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

// BuildIssueView is the full pipeline: combine, filter, sort.
func BuildIssueView(tickets []models.Ticket, online []models.ExternalIssue, q IssueQuery) []models.CombinedIssue {
	view := FilterIssues(CombineIssues(tickets, online), q)
	SortIssues(view, q.Sort)
	return view
}
