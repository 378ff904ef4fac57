package server

import (
	"master-or-disaster/internal/domain"
	"master-or-disaster/internal/stats"
)

type playerMatchView struct {
	MatchID            string   `json:"matchId"`
	Queue              string   `json:"queue"`
	Duration           string   `json:"duration"`
	GameStartTimestamp int64    `json:"gameStartTimestamp"`
	ChampionID         int      `json:"championId"`
	ChampionName       string   `json:"championName"`
	Kills              int      `json:"kills"`
	Deaths             int      `json:"deaths"`
	Assists            int      `json:"assists"`
	KDARatio           string   `json:"kdaRatio"`
	CS                 int      `json:"cs"`
	Win                bool     `json:"win"`
	Items              []int    `json:"items"`
	Badges             []string `json:"badges"`
}

func newPlayerMatchView(m *domain.Match, puuid string) (playerMatchView, bool) {
	p := m.Participant(puuid)
	if p == nil {
		return playerMatchView{}, false
	}
	return playerMatchView{
		MatchID:            m.Metadata.MatchID,
		Queue:              stats.QueueName(m.Info.QueueID),
		Duration:           stats.FormatDuration(m.Info.GameDuration),
		GameStartTimestamp: m.Info.GameStartTimestamp,
		ChampionID:         p.ChampionID,
		ChampionName:       p.ChampionName,
		Kills:              p.Kills,
		Deaths:             p.Deaths,
		Assists:            p.Assists,
		KDARatio:           stats.FormatKDARatio(p.Kills, p.Deaths, p.Assists),
		CS:                 p.TotalCS(),
		Win:                p.Win,
		Items:              p.ItemIDs(),
		Badges:             stats.MultikillBadges(p),
	}, true
}

type matchPlayerView struct {
	Puuid        string   `json:"puuid"`
	RiotID       string   `json:"riotId"`
	ChampionName string   `json:"championName"`
	Kills        int      `json:"kills"`
	Deaths       int      `json:"deaths"`
	Assists      int      `json:"assists"`
	KDARatio     string   `json:"kdaRatio"`
	CS           int      `json:"cs"`
	Damage       int      `json:"damage"`
	VisionScore  int      `json:"visionScore"`
	Performance  float64  `json:"performance"`
	Badges       []string `json:"badges"`
}

type togetherMatchView struct {
	MatchID            string            `json:"matchId"`
	Queue              string            `json:"queue"`
	Duration           string            `json:"duration"`
	GameStartTimestamp int64             `json:"gameStartTimestamp"`
	Win                bool              `json:"win"`
	MasterPuuid        string            `json:"masterPuuid,omitempty"`
	DisasterPuuid      string            `json:"disasterPuuid,omitempty"`
	Players            []matchPlayerView `json:"players"`
}

func newTogetherMatchView(m *domain.Match, puuid1, puuid2 string) togetherMatchView {
	v := togetherMatchView{
		MatchID:            m.Metadata.MatchID,
		Queue:              stats.QueueName(m.Info.QueueID),
		Duration:           stats.FormatDuration(m.Info.GameDuration),
		GameStartTimestamp: m.Info.GameStartTimestamp,
		Players:            []matchPlayerView{},
	}
	if p := m.Participant(puuid1); p != nil {
		v.Win = p.Win
	}
	if verdict := stats.PlayersByPerformance(m, puuid1, puuid2); verdict != nil {
		v.MasterPuuid = verdict.Master.Puuid
		v.DisasterPuuid = verdict.Disaster.Puuid
	}
	for _, puuid := range []string{puuid1, puuid2} {
		p := m.Participant(puuid)
		if p == nil {
			continue
		}
		v.Players = append(v.Players, matchPlayerView{
			Puuid:        p.Puuid,
			RiotID:       p.RiotIDName + "#" + p.RiotIDTagline,
			ChampionName: p.ChampionName,
			Kills:        p.Kills,
			Deaths:       p.Deaths,
			Assists:      p.Assists,
			KDARatio:     stats.FormatKDARatio(p.Kills, p.Deaths, p.Assists),
			CS:           p.TotalCS(),
			Damage:       p.TotalDamageDealtToChampions,
			VisionScore:  p.VisionScore,
			Performance:  stats.MatchPerformance(p),
			Badges:       stats.MultikillBadges(p),
		})
	}
	return v
}
