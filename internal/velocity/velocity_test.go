package velocity

import (
	"testing"
	"time"

	"github.com/friendlyparakeet/parakeet-cli/internal/gitcmd"
	"github.com/friendlyparakeet/parakeet-cli/internal/scanner"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func newTestHistory(t *testing.T) *History {
	t.Helper()
	h := NewHistory(t.TempDir())
	h.now = func() time.Time { return testNow }
	return h
}

// seed records one snapshot daysAgo days before testNow.
func seed(h *History, path string, daysAgo int, git *gitcmd.Summary) {
	ts := testNow.AddDate(0, 0, -daysAgo).Format(time.RFC3339)
	h.entries[path] = append(h.entries[path], Snapshot{
		Timestamp: ts,
		Kind:      "go",
		Git:       git,
	})
}

func TestVelocity_TooFewSnapshots(t *testing.T) {
	h := newTestHistory(t)
	if m := h.Velocity("/p", 30); m.Trend != "unknown" {
		t.Errorf("trend = %q, want unknown with no snapshots", m.Trend)
	}

	seed(h, "/p", 1, nil)
	if m := h.Velocity("/p", 30); m.Trend != "unknown" {
		t.Errorf("trend = %q, want unknown with one snapshot", m.Trend)
	}
}

func TestVelocity_AllSnapshotsOutsideWindow(t *testing.T) {
	h := newTestHistory(t)
	seed(h, "/p", 90, nil)
	seed(h, "/p", 60, nil)
	if m := h.Velocity("/p", 30); m.Trend != "stale" {
		t.Errorf("trend = %q, want stale", m.Trend)
	}
}

func TestVelocity_Trend(t *testing.T) {
	tests := []struct {
		name    string
		daysAgo []int
		want    string
	}{
		{"all recent activity", []int{5, 4, 3, 2, 1}, "increasing"},
		{"all early activity", []int{28, 27, 26, 25, 2}, "decreasing"},
		{"even spread", []int{25, 20, 10, 5}, "stable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHistory(t)
			for _, d := range tt.daysAgo {
				seed(h, "/p", d, nil)
			}
			if m := h.Velocity("/p", 30); m.Trend != tt.want {
				t.Errorf("trend = %q, want %q", m.Trend, tt.want)
			}
		})
	}
}

func TestVelocity_ActiveDays(t *testing.T) {
	h := newTestHistory(t)
	// Two snapshots on the same day count once.
	seed(h, "/p", 3, nil)
	seed(h, "/p", 3, nil)
	seed(h, "/p", 1, nil)

	m := h.Velocity("/p", 30)
	if m.ActiveDays != 2 {
		t.Errorf("ActiveDays = %d, want 2", m.ActiveDays)
	}
	if want := 2.0 / 30.0; m.CommitsPerDay != want {
		t.Errorf("CommitsPerDay = %v, want %v", m.CommitsPerDay, want)
	}
}

func TestInactivityDays(t *testing.T) {
	h := newTestHistory(t)
	if d := h.InactivityDays("/unseen"); d != 0 {
		t.Errorf("unseen project inactivity = %d, want 0", d)
	}

	seed(h, "/p", 5, nil)
	if d := h.InactivityDays("/p"); d != 5 {
		t.Errorf("inactivity = %d, want 5", d)
	}
}

func TestInactivityDays_GitTimeWins(t *testing.T) {
	h := newTestHistory(t)
	// The scan ran today, but the last commit is 12 days old.
	lastCommit := testNow.AddDate(0, 0, -12).Format(time.RFC3339)
	seed(h, "/p", 0, &gitcmd.Summary{LastCommitAt: lastCommit})

	if d := h.InactivityDays("/p"); d != 12 {
		t.Errorf("inactivity = %d, want 12 from last commit time", d)
	}
}

func TestUpdateAndPersistence(t *testing.T) {
	dir := t.TempDir()

	h := NewHistory(dir)
	h.now = func() time.Time { return testNow }
	if err := h.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	h.Update(scanner.Project{Path: "/p", Kind: "python"})
	h.Update(scanner.Project{Path: "/q", Kind: "go"})
	h.Update(scanner.Project{Path: "/p", Kind: "python"})
	if err := h.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	reloaded := NewHistory(dir)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded.entries["/p"]) != 2 || len(reloaded.entries["/q"]) != 1 {
		t.Errorf("entries = %v", reloaded.entries)
	}
	if reloaded.entries["/p"][0].Kind != "python" {
		t.Errorf("kind = %q", reloaded.entries["/p"][0].Kind)
	}
}

func TestAllProjects(t *testing.T) {
	h := newTestHistory(t)
	seed(h, "/srv/zebra", 2, nil)
	seed(h, "/srv/zebra", 1, nil)
	seed(h, "/srv/alpha", 4, nil)

	out := h.AllProjects(30)
	if len(out) != 2 {
		t.Fatalf("projects = %d, want 2", len(out))
	}
	if out[0].Name != "alpha" || out[1].Name != "zebra" {
		t.Errorf("order = %s, %s, want alpha then zebra", out[0].Name, out[1].Name)
	}
	if out[1].InactivityDays != 1 {
		t.Errorf("zebra inactivity = %d, want 1", out[1].InactivityDays)
	}
}
