package champselect

import "github.com/marcin-skalski/lol-autopilot/internal/champions"

type Kind string

const (
	KindBan  Kind = "ban"
	KindPick Kind = "pick"
)

func (k Kind) symbol() string {
	if k == KindBan {
		return "🚫"
	}
	return "✨"
}

func (k Kind) verb() string {
	if k == KindBan {
		return "banning"
	}
	return "picking"
}

// Session is the champ-select snapshot returned by the client. It is decoded
// fresh on every poll and never modified.
type Session struct {
	Actions   [][]Action `json:"actions"`
	MyTeam    []Member   `json:"myTeam"`
	TheirTeam []Member   `json:"theirTeam"`
}

type Action struct {
	ID           int          `json:"id"`
	Type         Kind         `json:"type"`
	ActorCellID  int          `json:"actorCellId"`
	IsInProgress bool         `json:"isInProgress"`
	Completed    bool         `json:"completed"`
	ChampionID   champions.ID `json:"championId"`
}

type Member struct {
	CellID     int          `json:"cellId"`
	SummonerID int64        `json:"summonerId"`
	ChampionID champions.ID `json:"championId"`
}

// LocalCell finds the seat of summonerID on the local team.
func (s *Session) LocalCell(summonerID int64) (int, bool) {
	for _, m := range s.MyTeam {
		if m.SummonerID == summonerID {
			return m.CellID, true
		}
	}
	return 0, false
}

// Banned collects champions of completed ban actions.
func (s *Session) Banned() IDSet {
	banned := IDSet{}
	for _, group := range s.Actions {
		for _, a := range group {
			if a.Type == KindBan && a.Completed && a.ChampionID != 0 {
				banned.Add(a.ChampionID)
			}
		}
	}
	return banned
}

// Picked collects champions already assigned on either team.
func (s *Session) Picked() IDSet {
	picked := IDSet{}
	for _, team := range [][]Member{s.MyTeam, s.TheirTeam} {
		for _, m := range team {
			if m.ChampionID != 0 {
				picked.Add(m.ChampionID)
			}
		}
	}
	return picked
}
