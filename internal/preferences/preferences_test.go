package preferences

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var players = []string{"cinos", "lowca"}

func TestLoadDefaults(t *testing.T) {
	got := Load(NewMemoryStorage(), players)
	want := &Preferences{Theme: ThemeSystem, SelectedAccounts: map[string]int{"cinos": 0, "lowca": 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestLoadTheme(t *testing.T) {
	tests := map[string]Theme{
		"dark":    ThemeDark,
		`"light"`: ThemeLight,
		"system":  ThemeSystem,
		"neon":    ThemeSystem,
		`"neon"`:  ThemeSystem,
		"{broken": ThemeSystem,
		"":        ThemeSystem,
	}
	for raw, want := range tests {
		s := NewMemoryStorage()
		_ = s.SetItem(ThemeKey, raw)
		if got := Load(s, players).Theme; got != want {
			t.Errorf("theme %q loaded as %q, want %q", raw, got, want)
		}
	}
}

func TestLoadSelectedAccounts(t *testing.T) {
	tests := map[string]map[string]int{
		`{"cinos":1,"lowca":0}`:    {"cinos": 1, "lowca": 0},
		`{"cinos":1,"ghost":3}`:    {"cinos": 1, "lowca": 0},
		`{"cinos":-1,"lowca":1.5}`: {"cinos": 0, "lowca": 0},
		`{"cinos":"1"}`:            {"cinos": 0, "lowca": 0},
		`not json`:                 {"cinos": 0, "lowca": 0},
		`null`:                     {"cinos": 0, "lowca": 0},
		`[1,2]`:                    {"cinos": 0, "lowca": 0},
	}
	for raw, want := range tests {
		s := NewMemoryStorage()
		_ = s.SetItem(SelectedAccountsKey, raw)
		if diff := cmp.Diff(want, Load(s, players).SelectedAccounts); diff != "" {
			t.Errorf("%s (-want +got):\n%s", raw, diff)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	s := NewMemoryStorage()
	p := Defaults(players)
	if err := p.SetTheme(ThemeDark); err != nil {
		t.Fatal(err)
	}
	if err := p.SelectAccount("cinos", 1); err != nil {
		t.Fatal(err)
	}
	if err := p.Save(s); err != nil {
		t.Fatal(err)
	}

	if raw, _ := s.GetItem(ThemeKey); raw != "dark" {
		t.Errorf("stored theme = %q", raw)
	}
	if raw, _ := s.GetItem(SelectedAccountsKey); raw != `{"cinos":1,"lowca":0}` {
		t.Errorf("stored selection = %s", raw)
	}
	if diff := cmp.Diff(p, Load(s, players)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSetters(t *testing.T) {
	p := Defaults(players)
	if err := p.SetTheme("sepia"); err != ErrInvalidTheme {
		t.Errorf("SetTheme(sepia) = %v", err)
	}
	if p.Theme != ThemeSystem {
		t.Errorf("theme changed to %q", p.Theme)
	}
	if err := p.SelectAccount("lowca", -2); err == nil {
		t.Error("negative index must fail")
	}
	if p.Selected("unknown") != 0 {
		t.Error("unknown player selects account 0")
	}
}
