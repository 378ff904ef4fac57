package domain

import "slices"

// Match is a match-v5 detail. Finished matches never change, so a Match can
// be cached forever under its MatchID.
type Match struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	DataVersion  string   `json:"dataVersion"`
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"`
}

type MatchInfo struct {
	EndOfGameResult    string        `json:"endOfGameResult,omitempty"`
	GameCreation       int64         `json:"gameCreation"`
	GameDuration       int           `json:"gameDuration"` // seconds
	GameEndTimestamp   int64         `json:"gameEndTimestamp"`
	GameID             int64         `json:"gameId"`
	GameMode           string        `json:"gameMode"`
	GameStartTimestamp int64         `json:"gameStartTimestamp"` // epoch ms
	GameType           string        `json:"gameType"`
	GameVersion        string        `json:"gameVersion"`
	MapID              int           `json:"mapId"`
	Participants       []Participant `json:"participants"`
	PlatformID         string        `json:"platformId"`
	QueueID            int           `json:"queueId"`
	Teams              []Team        `json:"teams"`
}

type Participant struct {
	Puuid         string `json:"puuid"`
	RiotIDName    string `json:"riotIdGameName"`
	RiotIDTagline string `json:"riotIdTagline"`
	ParticipantID int    `json:"participantId"`
	TeamID        int    `json:"teamId"`
	TeamPosition  string `json:"teamPosition"`
	ChampionID    int    `json:"championId"`
	ChampionName  string `json:"championName"`
	ChampLevel    int    `json:"champLevel"`

	Kills   int `json:"kills"`
	Deaths  int `json:"deaths"`
	Assists int `json:"assists"`

	DoubleKills    int  `json:"doubleKills"`
	TripleKills    int  `json:"tripleKills"`
	QuadraKills    int  `json:"quadraKills"`
	PentaKills     int  `json:"pentaKills"`
	FirstBloodKill bool `json:"firstBloodKill"`

	TotalMinionsKilled          int `json:"totalMinionsKilled"`
	NeutralMinionsKilled        int `json:"neutralMinionsKilled"`
	GoldEarned                  int `json:"goldEarned"`
	TotalDamageDealtToChampions int `json:"totalDamageDealtToChampions"`
	TotalDamageTaken            int `json:"totalDamageTaken"`
	VisionScore                 int `json:"visionScore"`
	WardsPlaced                 int `json:"wardsPlaced"`
	WardsKilled                 int `json:"wardsKilled"`

	Item0 int `json:"item0"`
	Item1 int `json:"item1"`
	Item2 int `json:"item2"`
	Item3 int `json:"item3"`
	Item4 int `json:"item4"`
	Item5 int `json:"item5"`
	Item6 int `json:"item6"`

	Summoner1ID int `json:"summoner1Id"`
	Summoner2ID int `json:"summoner2Id"`

	Win        bool       `json:"win"`
	Challenges Challenges `json:"challenges,omitempty"`
}

type Team struct {
	TeamID     int        `json:"teamId"`
	Win        bool       `json:"win"`
	Bans       []Ban      `json:"bans"`
	Objectives Objectives `json:"objectives"`
}

type Ban struct {
	ChampionID int `json:"championId"`
	PickTurn   int `json:"pickTurn"`
}

type Objective struct {
	First bool `json:"first"`
	Kills int  `json:"kills"`
}

type Objectives struct {
	Baron      Objective `json:"baron"`
	Champion   Objective `json:"champion"`
	Dragon     Objective `json:"dragon"`
	Horde      Objective `json:"horde"`
	Inhibitor  Objective `json:"inhibitor"`
	RiftHerald Objective `json:"riftHerald"`
	Tower      Objective `json:"tower"`
}

const (
	TeamBlue = 100
	TeamRed  = 200
)

// HasParticipants reports whether every given puuid played in the match.
func (m *Match) HasParticipants(puuids ...string) bool {
	if m == nil {
		return false
	}
	for _, p := range puuids {
		if !slices.Contains(m.Metadata.Participants, p) {
			return false
		}
	}
	return true
}

// Participant returns the stats record for puuid or nil.
func (m *Match) Participant(puuid string) *Participant {
	if m == nil {
		return nil
	}
	for i := range m.Info.Participants {
		if m.Info.Participants[i].Puuid == puuid {
			return &m.Info.Participants[i]
		}
	}
	return nil
}

func (m *Match) DurationMinutes() float64 {
	return float64(m.Info.GameDuration) / 60
}

func (p *Participant) ItemIDs() []int {
	return []int{p.Item0, p.Item1, p.Item2, p.Item3, p.Item4, p.Item5, p.Item6}
}

// TotalCS is lane minions plus jungle monsters.
func (p *Participant) TotalCS() int {
	return p.TotalMinionsKilled + p.NeutralMinionsKilled
}
