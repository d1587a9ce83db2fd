package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/runlog/internal/model"
	"github.com/verte-zerg/runlog/internal/store"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "runlog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, seconds := range []float64{20, 15, 18} {
		_, err := st.InsertCompletion(context.Background(), model.Completion{
			SessionID:   "s1",
			CompletedAt: base.Add(time.Duration(i) * time.Minute),
			Row:         model.TelemetryRow{Level: "GetToEndTest", CompletionTime: seconds, TotalEnemies: 1, EnemiesRemaining: 1},
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	m := NewModel(st, model.StatsConfig{}, 1)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	return m
}

func TestViewShowsBests(t *testing.T) {
	m := newTestModel(t)
	out := m.View()
	for _, want := range []string{"Best Runs", "GetToEndTest", "15.00s", "window=1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func TestCurvesTabListsRecentTimes(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabCurves {
		t.Fatalf("expected curves tab, got %d", m.activeTab)
	}
	out := m.View()
	if !strings.Contains(out, "GetToEndTest: 20.00s 15.00s 18.00s") {
		t.Fatalf("curves tab missing recent times:\n%s", out)
	}
}

func TestApplyFilterRejectsBadSince(t *testing.T) {
	m := newTestModel(t)
	m.filterInputs[1].SetValue("yesterday")
	if err := m.applyFilter(); err == nil {
		t.Fatalf("expected error for invalid since")
	}
}

func TestApplyFilterByLevel(t *testing.T) {
	m := newTestModel(t)
	m.filterInputs[0].SetValue("LevelKillTest")
	if err := m.applyFilter(); err != nil {
		t.Fatalf("apply filter: %v", err)
	}
	m.refreshReport()
	if len(m.report.Bests) != 0 {
		t.Fatalf("expected no bests for filtered level, got %d", len(m.report.Bests))
	}
	if !strings.Contains(m.View(), "No completions found.") {
		t.Fatalf("expected empty notice")
	}
}

func TestCurveWindowSteps(t *testing.T) {
	cases := []struct {
		in   int
		next int
		prev int
	}{
		{in: 1, next: 5, prev: 1},
		{in: 5, next: 10, prev: 1},
		{in: 7, next: 10, prev: 5},
		{in: 10, next: 15, prev: 5},
	}
	for _, tc := range cases {
		if got := nextCurveWindow(tc.in); got != tc.next {
			t.Fatalf("nextCurveWindow(%d) = %d, want %d", tc.in, got, tc.next)
		}
		if got := prevCurveWindow(tc.in); got != tc.prev {
			t.Fatalf("prevCurveWindow(%d) = %d, want %d", tc.in, got, tc.prev)
		}
	}
}
