package domain

type Account struct {
	Puuid    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

type Summoner struct {
	Puuid         string `json:"puuid"`
	ProfileIconID int    `json:"profileIconId"`
	RevisionDate  int64  `json:"revisionDate"`
	SummonerLevel int    `json:"summonerLevel"`
}

type MiniSeries struct {
	Losses   int    `json:"losses"`
	Progress string `json:"progress"`
	Target   int    `json:"target"`
	Wins     int    `json:"wins"`
}

type LeagueEntry struct {
	LeagueID     string      `json:"leagueId"`
	Puuid        string      `json:"puuid"`
	QueueType    string      `json:"queueType"`
	Tier         string      `json:"tier"`
	Rank         string      `json:"rank"`
	LeaguePoints int         `json:"leaguePoints"`
	Wins         int         `json:"wins"`
	Losses       int         `json:"losses"`
	HotStreak    bool        `json:"hotStreak"`
	Veteran      bool        `json:"veteran"`
	FreshBlood   bool        `json:"freshBlood"`
	Inactive     bool        `json:"inactive"`
	MiniSeries   *MiniSeries `json:"miniSeries,omitempty"`
}

type ChampionMastery struct {
	ChampionID                   int   `json:"championId"`
	ChampionLevel                int   `json:"championLevel"`
	ChampionPoints               int   `json:"championPoints"`
	LastPlayTime                 int64 `json:"lastPlayTime"`
	ChampionPointsSinceLastLevel int   `json:"championPointsSinceLastLevel"`
	ChampionPointsUntilNextLevel int   `json:"championPointsUntilNextLevel"`
}

// queue types used by the league-v4 entries
const (
	QueueTypeSoloDuo = "RANKED_SOLO_5x5"
	QueueTypeFlex    = "RANKED_FLEX_SR"
)

// SoloQueueEntry returns the solo/duo standing, if the player has one.
func SoloQueueEntry(entries []LeagueEntry) *LeagueEntry {
	for i := range entries {
		if entries[i].QueueType == QueueTypeSoloDuo {
			return &entries[i]
		}
	}
	return nil
}

// PlayerProfile is an account with its summoner, ranked standing and best
// champions.
type PlayerProfile struct {
	Account    Account           `json:"account"`
	Summoner   *Summoner         `json:"summoner"`
	Leagues    []LeagueEntry     `json:"leagues"`
	SoloQueue  *LeagueEntry      `json:"soloQueue"`
	TopMastery []ChampionMastery `json:"topMastery"`
}
