package huntfile

import (
	"os"
	"path/filepath"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func validHunt() Hunt {
	return Hunt{
		Title: "Harbor Walk",
		Checkpoints: []Checkpoint{
			{Position: 1, Title: "Pier", Riddle: "Boats rest here.", Answer: "dock"},
			{Position: 2, Title: "Beacon", Riddle: "I warn the ships.", Answer: "lighthouse"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Hunt)
		problems int
	}{
		{"valid hunt", func(h *Hunt) {}, 0},
		{"empty title", func(h *Hunt) { h.Title = "  " }, 1},
		{"no checkpoints", func(h *Hunt) { h.Checkpoints = nil }, 1},
		{"duplicate position", func(h *Hunt) { h.Checkpoints[1].Position = 1 }, 1},
		{"zero position", func(h *Hunt) { h.Checkpoints[0].Position = 0 }, 1},
		{"empty answer", func(h *Hunt) { h.Checkpoints[0].Answer = "" }, 1},
		{"partial geofence", func(h *Hunt) {
			h.Checkpoints[0].Lat = floatPtr(40.7)
		}, 1},
		{"complete geofence", func(h *Hunt) {
			h.Checkpoints[0].Lat = floatPtr(40.7)
			h.Checkpoints[0].Lng = floatPtr(-73.9)
			h.Checkpoints[0].ToleranceRadius = floatPtr(50)
		}, 0},
		{"negative tolerance", func(h *Hunt) {
			h.Checkpoints[0].Lat = floatPtr(40.7)
			h.Checkpoints[0].Lng = floatPtr(-73.9)
			h.Checkpoints[0].ToleranceRadius = floatPtr(-1)
		}, 1},
		{"zero max attempts", func(h *Hunt) { h.Checkpoints[0].MaxAttempts = intPtr(0) }, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hunt := validHunt()
			tt.mutate(&hunt)
			problems := Validate(&hunt)
			if len(problems) != tt.problems {
				t.Errorf("Validate() found %d problems %v, want %d", len(problems), problems, tt.problems)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	single := filepath.Join(dir, "single.json")
	if err := os.WriteFile(single, []byte(`{
		"title": "Harbor Walk",
		"checkpoints": [
			{"position": 1, "title": "Pier", "riddle": "Boats rest here.", "answer": "dock"}
		]
	}`), 0o644); err != nil {
		t.Fatal(err)
	}

	hunts, err := Load(single)
	if err != nil {
		t.Fatalf("Load single: %v", err)
	}
	if len(hunts) != 1 || hunts[0].Title != "Harbor Walk" {
		t.Errorf("hunts = %+v", hunts)
	}

	array := filepath.Join(dir, "array.json")
	if err := os.WriteFile(array, []byte(`[
		{"title": "A", "checkpoints": [{"position": 1, "title": "x", "riddle": "r", "answer": "a"}]},
		{"title": "B", "checkpoints": [{"position": 1, "title": "y", "riddle": "r", "answer": "b"}]}
	]`), 0o644); err != nil {
		t.Fatal(err)
	}

	hunts, err = Load(array)
	if err != nil {
		t.Fatalf("Load array: %v", err)
	}
	if len(hunts) != 2 || hunts[1].Title != "B" {
		t.Errorf("hunts = %+v", hunts)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("Load should fail on malformed JSON")
	}
}
