package services

import (
	"context"
	"strings"
)

// TaxonomyHints are the distinct categories/tags/pros/cons already observed
// for a form, used to bias new enrichment toward consistent labeling.
type TaxonomyHints struct {
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
	Pros       []string `json:"pros"`
	Cons       []string `json:"cons"`
}

func (h TaxonomyHints) Empty() bool {
	return len(h.Categories) == 0 && len(h.Tags) == 0 && len(h.Pros) == 0 && len(h.Cons) == 0
}

// TaxonomyService computes observed taxonomy per form. Results are recomputed
// on every call: each item write can add a term the very next analysis should
// see, so read-your-own-writes matters within a form.
type TaxonomyService struct {
	items ItemStore
}

func NewTaxonomyService(items ItemStore) *TaxonomyService {
	return &TaxonomyService{items: items}
}

// ObservedTaxonomy returns the deduplicated labels from all items of the form
// that already carry an analysis. Collected in Go rather than with
// driver-specific JSON queries so sqlite, mysql and postgres all behave the
// same.
func (s *TaxonomyService) ObservedTaxonomy(ctx context.Context, formID string) (TaxonomyHints, error) {
	items, err := s.items.FindAnalyzed(ctx, formID)
	if err != nil {
		return TaxonomyHints{}, err
	}

	categories := newStringSet()
	tags := newStringSet()
	pros := newStringSet()
	cons := newStringSet()

	for i := range items {
		analysis := items[i].AnalysisData()
		if analysis == nil {
			continue
		}
		categories.add(analysis.Category)
		for _, t := range analysis.Tags {
			tags.add(t)
		}
		for _, p := range analysis.Pros {
			pros.add(p)
		}
		for _, c := range analysis.Cons {
			cons.add(c)
		}
	}

	return TaxonomyHints{
		Categories: categories.values,
		Tags:       tags.values,
		Pros:       pros.values,
		Cons:       cons.values,
	}, nil
}

// stringSet deduplicates while keeping discovery order.
type stringSet struct {
	seen   map[string]bool
	values []string
}

func newStringSet() *stringSet {
	return &stringSet{seen: make(map[string]bool)}
}

func (s *stringSet) add(v string) {
	v = strings.TrimSpace(v)
	if v == "" || s.seen[v] {
		return
	}
	s.seen[v] = true
	s.values = append(s.values, v)
}
