package quiz

import "encoding/json"

// Answer is the full solution payload for an entry.
//
// On the wire each category is flattened into its source column name
// (solution_adj, solution_nouns, ...); absent categories are omitted.
type Answer struct {
	ID         string
	Solution   string // legacy single solution
	ToAnnotate string
	Solutions  map[Category]string
}

// Reveal returns token → word for every category that has a solution.
func (a Answer) Reveal() map[string]string {
	out := make(map[string]string, len(a.Solutions))
	for _, ci := range Categories {
		if w := a.Solutions[ci.Category]; w != "" {
			out[ci.Token] = w
		}
	}
	return out
}

func (a Answer) MarshalJSON() ([]byte, error) {
	m := map[string]string{
		"id":       a.ID,
		"solution": a.Solution,
	}
	if a.ToAnnotate != "" {
		m["to_annotate"] = a.ToAnnotate
	}
	for _, ci := range Categories {
		if w, ok := a.Solutions[ci.Category]; ok && w != "" {
			m[ci.Field] = w
		}
	}
	return json.Marshal(m)
}

func (a *Answer) UnmarshalJSON(b []byte) error {
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	a.ID = m["id"]
	a.Solution = m["solution"]
	a.ToAnnotate = m["to_annotate"]
	a.Solutions = make(map[Category]string)
	for _, ci := range Categories {
		if w, ok := m[ci.Field]; ok && w != "" {
			a.Solutions[ci.Category] = w
		}
	}
	return nil
}
