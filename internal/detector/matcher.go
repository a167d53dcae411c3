package detector

import (
	"context"
	"fmt"
	"sync"
)

// defaultMatchWorkers bounds the per-call fan-out across patterns. Matching
// is CPU-bound regex scanning, so a small pool is enough.
const defaultMatchWorkers = 4

// matchCandidates runs every compiled pattern against text and returns the
// raw candidates merged in registry order. Patterns are independent of each
// other, so they scan concurrently and join before resolution; the resolver
// re-sorts, so only the per-pattern merge order matters (it keeps output
// deterministic). Injected candidate sources run after the patterns, on the
// calling goroutine.
func (d *Detector) matchCandidates(ctx context.Context, text string) ([]Candidate, error) {
	perPattern := make([][]Candidate, len(d.patterns))

	var wg sync.WaitGroup
	sem := make(chan struct{}, d.workers)
	for i := range d.patterns {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			perPattern[i] = matchPattern(&d.patterns[i], text)
		}(i)
	}
	wg.Wait()

	var candidates []Candidate
	for _, batch := range perPattern {
		candidates = append(candidates, batch...)
	}

	for _, source := range d.sources {
		extra, err := source.Candidates(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("candidate source %s: %w", source.Name(), err)
		}
		for _, c := range extra {
			if c.End <= c.Start || c.Start < 0 || c.End > len(text) {
				continue
			}
			candidates = append(candidates, c)
		}
	}
	return candidates, nil
}

// matchPattern produces one candidate per non-overlapping occurrence of a
// single pattern, running its validator when one is configured.
func matchPattern(p *pattern, text string) []Candidate {
	locs := p.re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	candidates := make([]Candidate, 0, len(locs))
	for _, loc := range locs {
		c := Candidate{
			Category:       p.def.Name,
			Value:          text[loc[0]:loc[1]],
			Start:          loc[0],
			End:            loc[1],
			Priority:       p.def.Priority,
			BaseConfidence: p.def.BaseConfidence,
		}
		if p.validate != nil {
			c.Checked = true
			c.Valid = p.validate(c.Value)
		}
		candidates = append(candidates, c)
	}
	return candidates
}
