package content

import (
	"fmt"

	"herald/pkg/logx"
)

// SelectNext picks the next template for the scope's category.
//
// Selection is weighted random without replacement across an epoch: each
// still-unused candidate is drawn with weight 1/(usageCount+1), so less-used
// templates are favored but every candidate keeps nonzero probability. Once
// every candidate has been used the state resets and a fresh epoch begins, so
// across N consecutive calls from an epoch boundary each of the N candidates
// is returned exactly once.
//
// Side effects: the chosen id joins the scope's used set and the template's
// usage count is incremented, both persisted before returning.
func (s *Service) SelectNext(scope Scope) (Template, error) {
	var chosen Template
	err := s.store.Update(func(doc *document) error {
		var candidates []int
		for i := range doc.Templates {
			if doc.Templates[i].Category == scope.Category {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) == 0 {
			return fmt.Errorf("no templates for category %q: %w", scope.Category, ErrNotFound)
		}

		// A hand-edited document may omit the rotation map entirely.
		if doc.Rotation == nil {
			doc.Rotation = map[string]*rotationState{}
		}
		key := scope.key()
		rot := doc.Rotation[key]
		if rot == nil {
			rot = &rotationState{EpochStartedAt: s.now()}
			doc.Rotation[key] = rot
		}

		available := candidates[:0:0]
		for _, i := range candidates {
			if !rot.used(doc.Templates[i].ID) {
				available = append(available, i)
			}
		}
		if len(available) == 0 {
			// Exhaustion: everything has been used once this epoch.
			rot.UsedIDs = nil
			rot.EpochStartedAt = s.now()
			available = candidates
			s.log.Debug("rotation epoch reset",
				logx.String("scope", key), logx.Int("candidates", len(candidates)))
		}

		idx := available[s.pickWeighted(doc.Templates, available)]
		doc.Templates[idx].UsageCount++
		rot.UsedIDs = append(rot.UsedIDs, doc.Templates[idx].ID)
		chosen = doc.Templates[idx]
		return nil
	})
	if err != nil {
		return Template{}, err
	}
	return chosen, nil
}

// pickWeighted draws an index into available proportionally to 1/(usage+1),
// via cumulative-weight sampling. Equal weights degenerate to uniform.
func (s *Service) pickWeighted(templates []Template, available []int) int {
	total := 0.0
	weights := make([]float64, len(available))
	for n, i := range available {
		w := 1.0 / float64(templates[i].UsageCount+1)
		weights[n] = w
		total += w
	}

	s.rngMu.Lock()
	r := s.rng.Float64() * total
	s.rngMu.Unlock()

	for n, w := range weights {
		r -= w
		if r < 0 {
			return n
		}
	}
	return len(available) - 1
}
