package stats

import "master-or-disaster/internal/domain"

type BestChampion struct {
	Name    string  `json:"name"`
	Wins    int     `json:"wins"`
	Games   int     `json:"games"`
	WinRate float64 `json:"winRate"`
}

type PlayerKDAStats struct {
	Puuid        string        `json:"puuid"`
	Kills        int           `json:"kills"`
	Deaths       int           `json:"deaths"`
	Assists      int           `json:"assists"`
	KDA          float64       `json:"kda"`
	BestChampion *BestChampion `json:"bestChampion"`
}

// TogetherSummary describes a duo over their common matches. Both players are
// on the same team in a common match, so player one's wins are the duo's wins.
type TogetherSummary struct {
	Games   int            `json:"games"`
	Wins    int            `json:"wins"`
	Losses  int            `json:"losses"`
	WinRate float64        `json:"winRate"`
	Player1 PlayerKDAStats `json:"player1"`
	Player2 PlayerKDAStats `json:"player2"`
	MVP     string         `json:"mvpPuuid"`
}

// SummarizeTogether returns nil when there are no matches.
func SummarizeTogether(matches []*domain.Match, puuid1, puuid2 string) *TogetherSummary {
	if len(matches) == 0 {
		return nil
	}

	wins := 0
	for _, m := range matches {
		if p := m.Participant(puuid1); p != nil && p.Win {
			wins++
		}
	}

	s := &TogetherSummary{
		Games:   len(matches),
		Wins:    wins,
		Losses:  len(matches) - wins,
		WinRate: float64(wins) / float64(len(matches)) * 100,
		Player1: playerKDA(matches, puuid1),
		Player2: playerKDA(matches, puuid2),
	}

	s.MVP = puuid1
	if s.Player2.KDA > s.Player1.KDA {
		s.MVP = puuid2
	}
	return s
}

type championRecord struct {
	name        string
	wins, games int
}

func playerKDA(matches []*domain.Match, puuid string) PlayerKDAStats {
	out := PlayerKDAStats{Puuid: puuid}
	var order []string
	records := make(map[string]*championRecord)

	for _, m := range matches {
		p := m.Participant(puuid)
		if p == nil {
			continue
		}
		out.Kills += p.Kills
		out.Deaths += p.Deaths
		out.Assists += p.Assists

		r, ok := records[p.ChampionName]
		if !ok {
			r = &championRecord{name: p.ChampionName}
			records[p.ChampionName] = r
			order = append(order, p.ChampionName)
		}
		r.games++
		if p.Win {
			r.wins++
		}
	}
	out.KDA = KDA(out.Kills, out.Deaths, out.Assists)

	// most wins, then best win rate; a champion needs at least one win
	maxWins, maxRate := 0, 0.0
	for _, name := range order {
		r := records[name]
		rate := float64(r.wins) / float64(r.games) * 100
		if r.wins > maxWins || (r.wins == maxWins && rate > maxRate) {
			maxWins, maxRate = r.wins, rate
			out.BestChampion = &BestChampion{Name: r.name, Wins: r.wins, Games: r.games, WinRate: rate}
		}
	}
	return out
}
