// Package preferences holds the dashboard's per-client UI state: the colour
// theme and which account is selected for every tracked player. State is read
// from and written to a key-value Storage supplied by the caller.
package preferences

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
)

const (
	ThemeKey            = "master-or-disaster-ui-theme"
	SelectedAccountsKey = "master-or-disaster-selected-accounts"
)

type Theme string

const (
	ThemeDark   Theme = "dark"
	ThemeLight  Theme = "light"
	ThemeSystem Theme = "system"

	DefaultTheme = ThemeSystem
)

var ErrInvalidTheme = errors.New("theme must be dark, light or system")

func (t Theme) Valid() bool {
	switch t {
	case ThemeDark, ThemeLight, ThemeSystem:
		return true
	}
	return false
}

// Storage is a string key-value store such as browser cookies.
type Storage interface {
	GetItem(key string) (string, bool)
	SetItem(key, value string) error
}

type Preferences struct {
	Theme            Theme          `json:"theme"`
	SelectedAccounts map[string]int `json:"selectedAccounts"`
}

func Defaults(playerIDs []string) *Preferences {
	selected := make(map[string]int, len(playerIDs))
	for _, id := range playerIDs {
		selected[id] = 0
	}
	return &Preferences{Theme: DefaultTheme, SelectedAccounts: selected}
}

// Load never fails: missing or unreadable entries fall back to defaults, and
// only the given players are kept in the selection.
func Load(s Storage, playerIDs []string) *Preferences {
	p := Defaults(playerIDs)

	if raw, ok := s.GetItem(ThemeKey); ok {
		p.Theme = parseTheme(raw)
	}

	raw, ok := s.GetItem(SelectedAccountsKey)
	if !ok {
		return p
	}
	var stored map[string]any
	if err := json.Unmarshal([]byte(raw), &stored); err != nil || stored == nil {
		return p
	}
	for _, id := range playerIDs {
		if n, ok := stored[id].(float64); ok && n >= 0 && n == math.Trunc(n) && n <= math.MaxInt32 {
			p.SelectedAccounts[id] = int(n)
		}
	}
	return p
}

// parseTheme accepts both a bare value and a JSON string.
func parseTheme(raw string) Theme {
	t := Theme(raw)
	if !t.Valid() {
		var quoted string
		if err := json.Unmarshal([]byte(raw), &quoted); err != nil {
			return DefaultTheme
		}
		t = Theme(quoted)
	}
	if !t.Valid() {
		return DefaultTheme
	}
	return t
}

func (p *Preferences) Save(s Storage) error {
	if err := s.SetItem(ThemeKey, string(p.Theme)); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	selected, err := json.Marshal(p.SelectedAccounts)
	if err != nil {
		return fmt.Errorf("failed to encode selected accounts: %w", err)
	}
	if err := s.SetItem(SelectedAccountsKey, string(selected)); err != nil {
		return fmt.Errorf("failed to save selected accounts: %w", err)
	}
	return nil
}

func (p *Preferences) SetTheme(t Theme) error {
	if !t.Valid() {
		return ErrInvalidTheme
	}
	p.Theme = t
	return nil
}

func (p *Preferences) SelectAccount(playerID string, index int) error {
	if index < 0 {
		return fmt.Errorf("account index for %q must not be negative", playerID)
	}
	p.SelectedAccounts[playerID] = index
	return nil
}

// Selected returns the account index chosen for playerID, 0 if none.
func (p *Preferences) Selected(playerID string) int {
	return p.SelectedAccounts[playerID]
}

// MemoryStorage is an in-process Storage.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (m *MemoryStorage) GetItem(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok
}

func (m *MemoryStorage) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}
