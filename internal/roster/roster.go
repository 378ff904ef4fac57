package roster

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"master-or-disaster/internal/config"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Account struct {
	GameName string `mapstructure:"game_name" json:"gameName"`
	TagLine  string `mapstructure:"tag_line" json:"tagLine"`
}

// Player is a tracked person with one or more game accounts.
type Player struct {
	ID          string    `mapstructure:"id" json:"id"`
	DisplayName string    `mapstructure:"display_name" json:"displayName"`
	Accounts    []Account `mapstructure:"accounts" json:"accounts"`
}

type Roster struct {
	Players []Player `mapstructure:"players" json:"players"`
}

func Default() *Roster {
	return &Roster{Players: []Player{
		{
			ID:          "cinos",
			DisplayName: "Marcinek",
			Accounts: []Account{
				{GameName: "cinosBBC", TagLine: "EUNE"},
				{GameName: "IndonesiaMachine", TagLine: "1067"},
			},
		},
		{
			ID:          "lowca",
			DisplayName: "Bartuś",
			Accounts:    []Account{{GameName: "Łowca dziekanów", TagLine: "EUNE"}},
		},
	}}
}

// Load reads a roster file. A missing file yields the default roster.
func Load(path string) (*Roster, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read roster %s: %w", path, err)
	}

	var r Roster
	if err := v.Unmarshal(&r); err != nil {
		return nil, fmt.Errorf("failed to parse roster %s: %w", path, err)
	}
	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("invalid roster %s: %w", path, err)
	}
	return &r, nil
}

func New(cfg *config.Config, logger zerolog.Logger) (*Roster, error) {
	r, err := Load(cfg.PlayersFile)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("file", cfg.PlayersFile).Strs("players", r.IDs()).Msg("roster loaded")
	return r, nil
}

func (r *Roster) validate() error {
	if len(r.Players) == 0 {
		return errors.New("no players")
	}
	seen := make(map[string]struct{}, len(r.Players))
	for _, p := range r.Players {
		if p.ID == "" {
			return errors.New("player without id")
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("duplicate player id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
		if len(p.Accounts) == 0 {
			return fmt.Errorf("player %q has no accounts", p.ID)
		}
		for _, a := range p.Accounts {
			if a.GameName == "" || a.TagLine == "" {
				return fmt.Errorf("player %q has an incomplete account", p.ID)
			}
		}
	}
	return nil
}

func (r *Roster) IDs() []string {
	ids := make([]string, len(r.Players))
	for i, p := range r.Players {
		ids[i] = p.ID
	}
	return ids
}

func (r *Roster) Find(id string) (*Player, bool) {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i], true
		}
	}
	return nil, false
}

// Account returns the player's account at index, falling back to the first
// one when index is out of range.
func (p *Player) Account(index int) Account {
	if index < 0 || index >= len(p.Accounts) {
		return p.Accounts[0]
	}
	return p.Accounts[index]
}
