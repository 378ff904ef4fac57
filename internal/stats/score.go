package stats

import "math"

// Weights sum to 100.
const (
	WeightWinRate = 40
	WeightKDA     = 25
	WeightCS      = 15
	WeightDamage  = 10
	WeightVision  = 10
)

// A metric at or above its threshold earns the full weight.
const (
	MaxKDA          = 5.0
	MaxCSPerMin     = 8.0
	MaxDamagePerMin = 1000.0
	MaxVisionPerMin = 1.5
)

const performanceScale = 100

// PerformanceScore is the weighted composite used for Master vs Disaster.
// The weighted sum is already on a 0-100 scale and is then multiplied by 100
// again, so real scores land in 0-10000. Consumers compare scores against
// each other only.
func PerformanceScore(s AggregatedPlayerStats) int {
	if s.GamesPlayed == 0 {
		return 0
	}
	winRate := clamp01(float64(s.Wins)/float64(s.GamesPlayed)) * WeightWinRate
	kda := clamp01(s.AvgKDA/MaxKDA) * WeightKDA
	cs := clamp01(s.AvgCSPerMin/MaxCSPerMin) * WeightCS
	damage := clamp01(s.AvgDamagePerMin/MaxDamagePerMin) * WeightDamage
	vision := clamp01(s.AvgVisionPerMin/MaxVisionPerMin) * WeightVision

	return int(math.Round((winRate + kda + cs + damage + vision) * performanceScale))
}

type MasterDisasterResult struct {
	MasterPuuid   string `json:"masterPuuid"`
	DisasterPuuid string `json:"disasterPuuid"`
	MasterScore   int    `json:"masterScore"`
	DisasterScore int    `json:"disasterScore"`
}

// DetermineMasterDisaster ranks two players by composite score. Ties go to
// the first player.
func DetermineMasterDisaster(stats1, stats2 AggregatedPlayerStats, puuid1, puuid2 string) MasterDisasterResult {
	score1 := stats1.OverallPerformanceScore
	score2 := stats2.OverallPerformanceScore

	if score1 >= score2 {
		return MasterDisasterResult{
			MasterPuuid:   puuid1,
			DisasterPuuid: puuid2,
			MasterScore:   score1,
			DisasterScore: score2,
		}
	}
	return MasterDisasterResult{
		MasterPuuid:   puuid2,
		DisasterPuuid: puuid1,
		MasterScore:   score2,
		DisasterScore: score1,
	}
}
