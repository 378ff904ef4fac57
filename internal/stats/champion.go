package stats

import (
	"sort"

	"master-or-disaster/internal/domain"
)

type ChampionStat struct {
	ChampionID   int     `json:"championId"`
	ChampionName string  `json:"championName"`
	GamesPlayed  int     `json:"gamesPlayed"`
	Wins         int     `json:"wins"`
	Kills        int     `json:"kills"`
	Deaths       int     `json:"deaths"`
	Assists      int     `json:"assists"`
	WinRate      float64 `json:"winRate"` // percent
	AvgKDA       float64 `json:"avgKda"`
}

// championTally keeps first-seen order so equal champions sort deterministically.
type championTally struct {
	order []int
	byID  map[int]*ChampionStat
}

func newChampionTally() *championTally {
	return &championTally{byID: make(map[int]*ChampionStat)}
}

func (t *championTally) add(p *domain.Participant) {
	c, ok := t.byID[p.ChampionID]
	if !ok {
		c = &ChampionStat{ChampionID: p.ChampionID, ChampionName: p.ChampionName}
		t.byID[p.ChampionID] = c
		t.order = append(t.order, p.ChampionID)
	}
	c.GamesPlayed++
	if p.Win {
		c.Wins++
	}
	c.Kills += p.Kills
	c.Deaths += p.Deaths
	c.Assists += p.Assists
}

// ranked orders by games played, then win rate, both descending.
func (t *championTally) ranked() []ChampionStat {
	out := make([]ChampionStat, 0, len(t.order))
	for _, id := range t.order {
		c := *t.byID[id]
		c.WinRate = float64(c.Wins) / float64(c.GamesPlayed) * 100
		c.AvgKDA = KDA(c.Kills, c.Deaths, c.Assists)
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].GamesPlayed != out[j].GamesPlayed {
			return out[i].GamesPlayed > out[j].GamesPlayed
		}
		return out[i].WinRate > out[j].WinRate
	})
	return out
}
