package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/infrastructure/persistence"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/constants"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
)

// SearchHit is one ranked result row
type SearchHit struct {
	Entity string      `json:"entity"`
	ID     string      `json:"id"`
	Label  string      `json:"label"`
	Score  int         `json:"score"`
	Record interface{} `json:"record,omitempty"`
}

// candidate pairs a display label with the wider text the ranker matches on
type candidate struct {
	id       string
	label    string
	haystack string
	record   interface{}
}

// SearchService answers global and per-entity fuzzy lookups. Repositories
// prefilter with LIKE, then candidates are re-ranked fuzzily so "911 rs"
// style queries land on the right car.
type SearchService struct {
	cars         *persistence.CarRepository
	contacts     *persistence.ContactRepository
	galleries    *persistence.GalleryRepository
	deliverables *persistence.DeliverableRepository
	projects     *persistence.ProjectRepository
	events       *persistence.EventRepository
}

// NewSearchService creates a new SearchService
func NewSearchService(cars *persistence.CarRepository, contacts *persistence.ContactRepository, galleries *persistence.GalleryRepository, deliverables *persistence.DeliverableRepository, projects *persistence.ProjectRepository, events *persistence.EventRepository) *SearchService {
	return &SearchService{cars: cars, contacts: contacts, galleries: galleries, deliverables: deliverables, projects: projects, events: events}
}

// searchEntities lists every entity the global search covers
var searchEntities = []string{"cars", "contacts", "galleries", "deliverables", "projects", "events"}

// GlobalSearch runs the query against every entity and returns the top hits
// per entity, grouped
func (s *SearchService) GlobalSearch(ctx context.Context, q string) (map[string][]SearchHit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, errors.NewValidationError("q", "Query is required")
	}

	results := make(map[string][]SearchHit, len(searchEntities))
	for _, entity := range searchEntities {
		hits, err := s.SearchEntity(ctx, entity, q, constants.SearchGroupLimit)
		if err != nil {
			return nil, err
		}
		results[entity] = hits
	}
	return results, nil
}

// SearchEntity runs the query against a single entity
func (s *SearchService) SearchEntity(ctx context.Context, entity, q string, limit int) ([]SearchHit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, errors.NewValidationError("q", "Query is required")
	}
	if limit <= 0 {
		limit = constants.SearchDefaultLimit
	}
	if limit > constants.SearchMaxLimit {
		limit = constants.SearchMaxLimit
	}

	candidates, err := s.loadCandidates(ctx, entity, q)
	if err != nil {
		return nil, err
	}
	return rankCandidates(entity, q, candidates, limit), nil
}

func (s *SearchService) loadCandidates(ctx context.Context, entity, q string) ([]candidate, error) {
	prefilter := constants.SearchPrefilterLimit

	switch entity {
	case "cars":
		cars, err := s.cars.SearchLike(ctx, q, prefilter)
		if err != nil {
			return nil, err
		}
		out := make([]candidate, 0, len(cars))
		for _, c := range cars {
			hay := c.DisplayName()
			if c.VIN != nil {
				hay += " " + *c.VIN
			}
			if c.Color != nil {
				hay += " " + *c.Color
			}
			out = append(out, candidate{id: c.ID, label: c.DisplayName(), haystack: hay, record: c})
		}
		return out, nil

	case "contacts":
		contacts, err := s.contacts.SearchLike(ctx, q, prefilter)
		if err != nil {
			return nil, err
		}
		out := make([]candidate, 0, len(contacts))
		for _, c := range contacts {
			hay := c.FullName()
			if c.Company != nil {
				hay += " " + *c.Company
			}
			if c.Email != nil {
				hay += " " + *c.Email
			}
			out = append(out, candidate{id: c.ID, label: c.FullName(), haystack: hay, record: c})
		}
		return out, nil

	case "galleries":
		galleries, err := s.galleries.SearchLike(ctx, q, prefilter)
		if err != nil {
			return nil, err
		}
		out := make([]candidate, 0, len(galleries))
		for _, g := range galleries {
			hay := g.Name
			if g.Description != nil {
				hay += " " + *g.Description
			}
			out = append(out, candidate{id: g.ID, label: g.Name, haystack: hay, record: g})
		}
		return out, nil

	case "deliverables":
		deliverables, err := s.deliverables.SearchLike(ctx, q, prefilter)
		if err != nil {
			return nil, err
		}
		out := make([]candidate, 0, len(deliverables))
		for _, d := range deliverables {
			hay := d.Title + " " + d.Platform
			if d.Editor != nil {
				hay += " " + *d.Editor
			}
			out = append(out, candidate{id: d.ID, label: d.Title, haystack: hay, record: d})
		}
		return out, nil

	case "projects":
		projects, err := s.projects.SearchLike(ctx, q, prefilter)
		if err != nil {
			return nil, err
		}
		out := make([]candidate, 0, len(projects))
		for _, p := range projects {
			hay := p.Title
			if p.Description != nil {
				hay += " " + *p.Description
			}
			out = append(out, candidate{id: p.ID, label: p.Title, haystack: hay, record: p})
		}
		return out, nil

	case "events":
		events, err := s.events.SearchLike(ctx, q, prefilter)
		if err != nil {
			return nil, err
		}
		out := make([]candidate, 0, len(events))
		for _, e := range events {
			hay := e.Title + " " + e.Type
			if e.Location != nil {
				hay += " " + *e.Location
			}
			out = append(out, candidate{id: e.ID, label: e.Title, haystack: hay, record: e})
		}
		return out, nil
	}

	return nil, errors.NewValidationError("entity", fmt.Sprintf("Unknown entity: %s", entity))
}

// rankCandidates orders LIKE-prefiltered candidates by fuzzy score and keeps
// the top hits. Candidates the matcher rejects outright are dropped even
// though LIKE accepted them.
func rankCandidates(entity, q string, candidates []candidate, limit int) []SearchHit {
	haystacks := make([]string, len(candidates))
	for i, c := range candidates {
		haystacks[i] = c.haystack
	}

	matches := fuzzy.Find(q, haystacks)
	hits := make([]SearchHit, 0, limit)
	for _, m := range matches {
		if len(hits) >= limit {
			break
		}
		c := candidates[m.Index]
		hits = append(hits, SearchHit{
			Entity: entity,
			ID:     c.id,
			Label:  c.label,
			Score:  m.Score,
			Record: c.record,
		})
	}
	return hits
}
