package stats

import "sync"

type Snapshot struct {
	MatchesAccepted int `json:"matches_accepted"`
	ChampionsBanned int `json:"champions_banned"`
	ChampionsPicked int `json:"champions_picked"`
	Errors          int `json:"errors"`
}

// Counters are written by the polling worker and read by the dashboard.
type Counters struct {
	mu sync.Mutex
	s  Snapshot
}

func (c *Counters) MatchAccepted()  { c.add(func(s *Snapshot) { s.MatchesAccepted++ }) }
func (c *Counters) ChampionBanned() { c.add(func(s *Snapshot) { s.ChampionsBanned++ }) }
func (c *Counters) ChampionPicked() { c.add(func(s *Snapshot) { s.ChampionsPicked++ }) }
func (c *Counters) Error()          { c.add(func(s *Snapshot) { s.Errors++ }) }

func (c *Counters) add(fn func(*Snapshot)) {
	c.mu.Lock()
	fn(&c.s)
	c.mu.Unlock()
}

func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s
}

func (c *Counters) Reset() {
	c.mu.Lock()
	c.s = Snapshot{}
	c.mu.Unlock()
}
