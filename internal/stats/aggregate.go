// Package stats reduces downloaded matches into per-player summaries. Every
// function here is pure and safe on empty or partial input.
package stats

import (
	"math"

	"master-or-disaster/internal/constants"
	"master-or-disaster/internal/domain"
)

type AggregatedPlayerStats struct {
	GamesPlayed int     `json:"gamesPlayed"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"winRate"` // percent

	AvgKills   float64 `json:"avgKills"`
	AvgDeaths  float64 `json:"avgDeaths"`
	AvgAssists float64 `json:"avgAssists"`
	AvgKDA     float64 `json:"avgKDA"`

	AvgCSPerMin   float64 `json:"avgCSPerMin"`
	AvgGoldPerMin float64 `json:"avgGoldPerMin"`

	AvgDamageDealt  float64 `json:"avgDamageDealt"`
	AvgDamagePerMin float64 `json:"avgDamagePerMin"`

	AvgVisionScore  float64 `json:"avgVisionScore"`
	AvgVisionPerMin float64 `json:"avgVisionPerMin"`

	BestChampion *ChampionStat  `json:"bestChampion"`
	TopChampions []ChampionStat `json:"topChampions"`

	OverallPerformanceScore int `json:"overallPerformanceScore"`
}

type totals struct {
	kills, deaths, assists int
	cs, gold, damage       int
	vision                 int
	minutes                float64
	wins, games            int
}

// CalculateAggregatedStats folds the puuid's participant record of every match
// into one summary. Matches the player is missing from are skipped.
func CalculateAggregatedStats(matches []*domain.Match, puuid string) AggregatedPlayerStats {
	var t totals
	champions := newChampionTally()

	for _, m := range matches {
		p := m.Participant(puuid)
		if p == nil {
			continue
		}

		t.games++
		t.kills += p.Kills
		t.deaths += p.Deaths
		t.assists += p.Assists
		t.cs += p.TotalCS()
		t.gold += p.GoldEarned
		t.damage += p.TotalDamageDealtToChampions
		t.vision += p.VisionScore
		t.minutes += m.DurationMinutes()
		if p.Win {
			t.wins++
		}

		champions.add(p)
	}

	if t.games == 0 {
		return AggregatedPlayerStats{TopChampions: []ChampionStat{}}
	}

	games := float64(t.games)
	s := AggregatedPlayerStats{
		GamesPlayed:     t.games,
		Wins:            t.wins,
		Losses:          t.games - t.wins,
		WinRate:         float64(t.wins) / games * 100,
		AvgKills:        float64(t.kills) / games,
		AvgDeaths:       float64(t.deaths) / games,
		AvgAssists:      float64(t.assists) / games,
		AvgKDA:          KDA(t.kills, t.deaths, t.assists),
		AvgCSPerMin:     perMinute(t.cs, t.minutes),
		AvgGoldPerMin:   perMinute(t.gold, t.minutes),
		AvgDamageDealt:  float64(t.damage) / games,
		AvgDamagePerMin: perMinute(t.damage, t.minutes),
		AvgVisionScore:  float64(t.vision) / games,
		AvgVisionPerMin: perMinute(t.vision, t.minutes),
	}

	ranked := champions.ranked()
	s.TopChampions = ranked[:min(len(ranked), constants.TopChampionCount)]
	if len(s.TopChampions) > 0 {
		best := s.TopChampions[0]
		s.BestChampion = &best
	}

	s.OverallPerformanceScore = PerformanceScore(s)
	return s
}

// KDA floors deaths at one, so a deathless game scores kills+assists.
func KDA(kills, deaths, assists int) float64 {
	return float64(kills+assists) / float64(max(deaths, 1))
}

func perMinute(total int, minutes float64) float64 {
	if minutes <= 0 {
		return 0
	}
	return float64(total) / minutes
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return max(0, min(v, 1))
}
