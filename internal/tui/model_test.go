package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/runlog/internal/game"
	"github.com/verte-zerg/runlog/internal/level"
	"github.com/verte-zerg/runlog/internal/model"
	"github.com/verte-zerg/runlog/internal/objective"
	"github.com/verte-zerg/runlog/internal/sim"
	"github.com/verte-zerg/runlog/internal/world"
)

const testLayouts = `
[[level]]
id = "Hub"
map = ["#####", "#@1.#", "#####"]

[[level]]
id = "Run"
archetype = "reach-exit"
map = ["#@E#"]

[[level]]
id = "Vault"
archetype = "heist"
map = ["#@$E#"]
`

func newTestModel(t *testing.T) (*Model, *game.Manager) {
	t.Helper()
	set, err := level.Parse(testLayouts)
	if err != nil {
		t.Fatalf("parse layouts: %v", err)
	}
	reg := world.NewRegistry()
	w, err := sim.New(sim.Options{Layouts: set, Registry: reg, Seed: 1})
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	if err := w.Load("Hub"); err != nil {
		t.Fatalf("load hub: %v", err)
	}
	eval := objective.New(objective.Config{Levels: objective.LevelSet{Hub: "Hub", ReachExit: "Run"}})
	mgr, err := game.NewManager(game.Options{Evaluator: eval, World: reg, Loader: w, Clock: w, Weapons: w})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	mgr.OnLevelActivated("Hub")
	m, err := NewModel(Options{Manager: mgr, World: w})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m, mgr
}

func pressKey(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestRenderFooterFormats(t *testing.T) {
	out := renderFooter(footerState{
		level:       "LevelKillTest",
		elapsed:     12.34,
		remaining:   2,
		total:       5,
		best:        model.CompletionRecord{BestTimeSeconds: 30, BestEnemiesRemaining: 1},
		hasBest:     true,
		weapon:      sim.WeaponGun,
		completions: model.Counts{ReachExit: 1, KillAll: 2},
		playing:     true,
	})
	want := []string{"LevelKillTest", "12.3s", "Enemies 2/5", "Best 30.00s · 1 left", "Weapon gun", "Cleared 1/2/0"}
	if !containsAll(out, want) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
	if strings.Contains(out, "not recording") {
		t.Fatalf("unexpected recording notice: %s", out)
	}
}

func TestRenderFooterOmitsBestAndEnemies(t *testing.T) {
	out := renderFooter(footerState{level: "Hub"})
	if strings.Contains(out, "Best") || strings.Contains(out, "Enemies") {
		t.Fatalf("footer should omit best and enemies: %s", out)
	}
	if !strings.Contains(out, "not recording") {
		t.Fatalf("expected recording notice: %s", out)
	}
}

func TestFooterShowsCarriedLoot(t *testing.T) {
	m, _ := newTestModel(t)
	if err := m.world.Load("Vault"); err != nil {
		t.Fatalf("load vault: %v", err)
	}
	if m.footerState().carrying {
		t.Fatalf("loot should not be carried before pickup")
	}
	pressKey(m, "d")
	state := m.footerState()
	if !state.carrying {
		t.Fatalf("expected loot to be carried after stepping onto it")
	}
	if out := renderFooter(state); !strings.Contains(out, "Carrying loot") {
		t.Fatalf("footer missing loot marker: %s", out)
	}
}

func TestBuildStyledGridColorsEnemiesByMode(t *testing.T) {
	grid := [][]rune{[]rune("xx#")}
	modes := map[gridPos]sim.Mode{{x: 0, y: 0}: sim.ModeAim, {x: 1, y: 0}: sim.ModeAlert}
	rows := buildStyledGrid(grid, modes)
	if len(rows) != 1 || len(rows[0]) != 3 {
		t.Fatalf("unexpected grid shape: %v", rows)
	}
	if rows[0][0].s != aimStyle.Render("x") {
		t.Fatalf("expected aim style for first enemy")
	}
	if rows[0][1].s != alertStyle.Render("x") {
		t.Fatalf("expected alert style for second enemy")
	}
	if rows[0][2].s != wallStyle.Render("#") {
		t.Fatalf("expected wall style")
	}
}

func TestWrapStyledRunesBreaksAtSpace(t *testing.T) {
	runes := buildMessageRunes("ab cd", floorStyle)
	got := wrapStyledRunes(runes, 3)
	want := renderStyledRunes(runes[:2]) + "\n" + renderStyledRunes(runes[3:])
	if got != want {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestInteractEntersLevel(t *testing.T) {
	m, mgr := newTestModel(t)
	pressKey(m, "e")
	if mgr.ActiveLevel() != "Run" {
		t.Fatalf("expected Run active, got %q", mgr.ActiveLevel())
	}
	if !strings.Contains(m.message, "Entered Run") {
		t.Fatalf("unexpected message: %q", m.message)
	}
	if got := mgr.Entries().ReachExit; got != 1 {
		t.Fatalf("expected one entry, got %d", got)
	}
}

func TestInteractCompletesAndReturnsToHub(t *testing.T) {
	m, mgr := newTestModel(t)
	pressKey(m, "e")
	pressKey(m, "e")
	if mgr.ActiveLevel() != "Hub" {
		t.Fatalf("expected hub after completion, got %q", mgr.ActiveLevel())
	}
	if got := mgr.Completions().ReachExit; got != 1 {
		t.Fatalf("expected one completion, got %d", got)
	}
	if !strings.Contains(m.message, "Completed Run") {
		t.Fatalf("unexpected message: %q", m.message)
	}
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
}

func TestViewWithoutSize(t *testing.T) {
	m, _ := newTestModel(t)
	out := m.View()
	if !strings.Contains(out, "Hub") {
		t.Fatalf("expected level name in view: %q", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
