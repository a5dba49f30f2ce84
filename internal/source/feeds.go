package source

import (
	"context"
	"time"

	"citizens-connect/internal/models"
)

// StaticFeed serves a fixed list of bulletins. Ages are relative to the time of each read.
type StaticFeed struct {
	name      string
	bulletins []bulletin
	now       func() time.Time
}

type bulletin struct {
	title       string
	description string
	url         string
	age         time.Duration
	source      models.IssueSource
}

func (f *StaticFeed) Name() string { return f.name }

func (f *StaticFeed) Origin() models.IssueSource { return models.IssueSource{} }

func (f *StaticFeed) Articles(ctx context.Context) ([]Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := f.now()
	out := make([]Article, 0, len(f.bulletins))
	for _, b := range f.bulletins {
		out = append(out, Article{
			Title:       b.title,
			Description: b.description,
			URL:         b.url,
			PublishedAt: now.Add(-b.age),
			Source:      b.source,
		})
	}
	return out, nil
}

var apGov = models.IssueSource{ID: "apgov", Name: "Andhra Pradesh Government"}

func NewGovernmentFeed() *StaticFeed {
	return &StaticFeed{
		name: "government",
		now:  time.Now,
		bulletins: []bulletin{
			{
				title:       "AP Government Launches Smart City Initiative in Vijayawada",
				description: "The Andhra Pradesh government has announced a comprehensive smart city project in Vijayawada focusing on digital infrastructure and citizen services.",
				url:         "https://ap.gov.in/smart-city-initiative",
				source:      apGov,
			},
			{
				title:       "Water Supply Enhancement Project Completed in Rural Areas",
				description: "The Rural Water Supply Department has successfully completed water pipeline extensions to 50 villages in Guntur district.",
				url:         "https://ap.gov.in/water-project-completion",
				age:         24 * time.Hour,
				source:      apGov,
			},
			{
				title:       "New Metro Rail Project Approved for Visakhapatnam",
				description: "The state cabinet has approved the detailed project report for Visakhapatnam Metro Rail Phase 1, expected to begin construction next year.",
				url:         "https://ap.gov.in/metro-rail-project",
				age:         48 * time.Hour,
				source:      apGov,
			},
		},
	}
}

func NewSocialFeed() *StaticFeed {
	return &StaticFeed{
		name: "social",
		now:  time.Now,
		bulletins: []bulletin{
			{
				title:       "Citizens Report Power Outage in Sector 15, Vijayawada",
				description: "Multiple residents reporting prolonged power outage in Sector 15 since morning. APEPDCL has been notified but no response yet.",
				url:         "https://twitter.com/citizen_reports/status/123",
				source:      models.IssueSource{ID: "social", Name: "Social Media Reports"},
			},
			{
				title:       "Traffic Congestion at Benz Circle Due to Construction",
				description: "Heavy traffic congestion at Benz Circle due to ongoing road construction. Alternative routes suggested.",
				url:         "https://twitter.com/traffic_updates/status/456",
				age:         time.Hour,
				source:      models.IssueSource{ID: "social", Name: "Traffic Updates"},
			},
		},
	}
}
