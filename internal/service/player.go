package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"master-or-disaster/internal/api"
	"master-or-disaster/internal/constants"
	"master-or-disaster/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
)

var ErrInvalidRiotID = errors.New("riot id needs a game name and a tag line")

type PlayerAPI interface {
	GetAccountByRiotID(ctx context.Context, gameName, tagLine string) (*domain.Account, error)
	GetSummonerByPUUID(ctx context.Context, puuid string) (*domain.Summoner, error)
	GetLeagueEntries(ctx context.Context, puuid string) ([]domain.LeagueEntry, error)
	GetChampionMasteryTop(ctx context.Context, puuid string, count int) ([]domain.ChampionMastery, error)
}

type PlayerService struct {
	riot   PlayerAPI
	logger zerolog.Logger

	mu       sync.RWMutex
	accounts map[string]domain.Account
}

func NewPlayerService(riot *api.RiotClient, logger zerolog.Logger) *PlayerService {
	return newPlayerService(riot, logger)
}

func newPlayerService(riot PlayerAPI, logger zerolog.Logger) *PlayerService {
	return &PlayerService{riot: riot, logger: logger, accounts: make(map[string]domain.Account)}
}

// riotIDKey folds case so "Cinos#EUNE" and "cinos#eune" share an entry.
func riotIDKey(gameName, tagLine string) string {
	fold := cases.Fold()
	return fold.String(gameName) + "#" + fold.String(tagLine)
}

// GetAccount resolves a Riot ID to an account. Resolved accounts are kept
// for the life of the process.
func (s *PlayerService) GetAccount(ctx context.Context, gameName, tagLine string) (*domain.Account, error) {
	gameName = strings.TrimSpace(gameName)
	tagLine = strings.TrimPrefix(strings.TrimSpace(tagLine), "#")
	if gameName == "" || tagLine == "" {
		return nil, ErrInvalidRiotID
	}

	key := riotIDKey(gameName, tagLine)

	s.mu.RLock()
	cached, ok := s.accounts[key]
	s.mu.RUnlock()
	if ok {
		s.logger.Debug().Str("riot_id", key).Msg("account found in cache")
		return &cached, nil
	}

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	account, err := s.riot.GetAccountByRiotID(apiCtx, gameName, tagLine)
	if err != nil {
		s.logger.Error().Err(err).Str("game_name", gameName).Str("tag_line", tagLine).Msg("failed to fetch account")
		return nil, fmt.Errorf("failed to fetch account %s#%s: %w", gameName, tagLine, err)
	}

	s.mu.Lock()
	s.accounts[key] = *account
	s.mu.Unlock()

	s.logger.Info().Str("puuid", account.Puuid).Str("riot_id", key).Msg("account resolved")
	return account, nil
}

func (s *PlayerService) GetProfile(ctx context.Context, gameName, tagLine string) (*domain.PlayerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	account, err := s.GetAccount(ctx, gameName, tagLine)
	if err != nil {
		return nil, err
	}

	profile := &domain.PlayerProfile{Account: *account}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		apiCtx, cancel := context.WithTimeout(gctx, constants.ExternalAPITimeout)
		defer cancel()

		summoner, err := s.riot.GetSummonerByPUUID(apiCtx, account.Puuid)
		if err != nil {
			return fmt.Errorf("failed to fetch summoner: %w", err)
		}
		profile.Summoner = summoner
		return nil
	})
	g.Go(func() error {
		apiCtx, cancel := context.WithTimeout(gctx, constants.ExternalAPITimeout)
		defer cancel()

		leagues, err := s.riot.GetLeagueEntries(apiCtx, account.Puuid)
		if err != nil {
			return fmt.Errorf("failed to fetch league entries: %w", err)
		}
		profile.Leagues = leagues
		return nil
	})
	g.Go(func() error {
		apiCtx, cancel := context.WithTimeout(gctx, constants.ExternalAPITimeout)
		defer cancel()

		mastery, err := s.riot.GetChampionMasteryTop(apiCtx, account.Puuid, constants.MasteryTopCount)
		if err != nil {
			return fmt.Errorf("failed to fetch champion mastery: %w", err)
		}
		profile.TopMastery = mastery
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("puuid", account.Puuid).Msg("failed to build profile")
		return nil, err
	}

	if profile.Leagues == nil {
		profile.Leagues = []domain.LeagueEntry{}
	}
	if profile.TopMastery == nil {
		profile.TopMastery = []domain.ChampionMastery{}
	}
	profile.SoloQueue = domain.SoloQueueEntry(profile.Leagues)

	s.logger.Info().Str("puuid", account.Puuid).Msg("profile fetched successfully")
	return profile, nil
}
