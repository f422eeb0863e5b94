package champselect

import "github.com/marcin-skalski/lol-autopilot/internal/champions"

type IDSet map[champions.ID]struct{}

func NewIDSet(ids ...champions.ID) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s IDSet) Add(id champions.ID) { s[id] = struct{}{} }

func (s IDSet) Has(id champions.ID) bool {
	_, ok := s[id]
	return ok
}

// Union returns a new set holding the members of both sets.
func (s IDSet) Union(other IDSet) IDSet {
	out := make(IDSet, len(s)+len(other))
	for id := range s {
		out.Add(id)
	}
	for id := range other {
		out.Add(id)
	}
	return out
}

// Resolve returns the first champion in priority order that is not unavailable.
func Resolve(priority []champions.ID, unavailable IDSet) (champions.ID, bool) {
	for _, id := range priority {
		if !unavailable.Has(id) {
			return id, true
		}
	}
	return 0, false
}
