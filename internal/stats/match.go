package stats

import (
	"fmt"

	"master-or-disaster/internal/domain"
)

// MatchPerformance scores a single game from the challenges bag. Missing
// metrics count as zero, except KDA which falls back to the raw line.
func MatchPerformance(p *domain.Participant) float64 {
	c := p.Challenges

	kda := c.FloatOr(domain.ChallengeKDA, KDA(p.Kills, p.Deaths, p.Assists))
	killParticipation := c.FloatOr(domain.ChallengeKillParticipation, 0)
	teamDamage := c.FloatOr(domain.ChallengeTeamDamagePercentage, 0)
	goldPerMin := c.FloatOr(domain.ChallengeGoldPerMinute, 0)
	visionPerMin := c.FloatOr(domain.ChallengeVisionScorePerMinute, 0)

	return kda*0.3 +
		killParticipation*100*0.25 +
		teamDamage*100*0.25 +
		(goldPerMin/500)*0.1 +
		(visionPerMin/2)*0.1
}

type MatchVerdict struct {
	Master   *domain.Participant
	Disaster *domain.Participant
}

// PlayersByPerformance returns nil unless both players are in the match.
// Ties favour puuid1.
func PlayersByPerformance(m *domain.Match, puuid1, puuid2 string) *MatchVerdict {
	p1 := m.Participant(puuid1)
	p2 := m.Participant(puuid2)
	if p1 == nil || p2 == nil {
		return nil
	}
	if MatchPerformance(p1) >= MatchPerformance(p2) {
		return &MatchVerdict{Master: p1, Disaster: p2}
	}
	return &MatchVerdict{Master: p2, Disaster: p1}
}

// MultikillBadges lists the largest multikill plus first blood.
func MultikillBadges(p *domain.Participant) []string {
	badges := []string{}
	switch {
	case p.PentaKills > 0:
		badges = append(badges, "Penta Kill")
	case p.QuadraKills > 0:
		badges = append(badges, "Quadra Kill")
	case p.TripleKills > 0:
		badges = append(badges, "Triple Kill")
	case p.DoubleKills > 0:
		badges = append(badges, "Double Kill")
	}
	if p.FirstBloodKill {
		badges = append(badges, "First Blood")
	}
	return badges
}

func FormatKDARatio(kills, deaths, assists int) string {
	if deaths == 0 {
		return "Perfect"
	}
	return fmt.Sprintf("%.2f:1", float64(kills+assists)/float64(deaths))
}

func FormatDuration(seconds int) string {
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}
