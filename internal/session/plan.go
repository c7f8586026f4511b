package session

import "github.com/zhao4hua4/Reinforce-Learning-Pro/internal/card"

// Plan is the candidate pool for one draw.
type Plan struct {
	// Sections is the filter the plan was built for. Empty means all cards.
	Sections []string
	// CardIDs are the candidates in registry order.
	CardIDs []string
	// Filtered reports whether the section filter matched at least one card.
	// When it did not, CardIDs holds every card.
	Filtered bool
}

// BuildPlan selects the cards whose section path intersects sections. An
// empty filter, or one that matches nothing, selects every card.
func BuildPlan(cards []card.Card, sections []string) Plan {
	p := Plan{Sections: sections}
	if len(sections) > 0 {
		want := make(map[string]struct{}, len(sections))
		for _, s := range sections {
			want[s] = struct{}{}
		}
		for _, c := range cards {
			for _, s := range c.Sections() {
				if _, ok := want[s]; ok {
					p.CardIDs = append(p.CardIDs, c.ID)
					break
				}
			}
		}
		if len(p.CardIDs) > 0 {
			p.Filtered = true
			return p
		}
	}
	for _, c := range cards {
		p.CardIDs = append(p.CardIDs, c.ID)
	}
	return p
}
