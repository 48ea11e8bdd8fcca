// Package huntfile loads and validates hunt definition files: JSON documents
// describing a hunt and its checkpoints, used by the importer and lint tools.
package huntfile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type Hunt struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	CoverURL    string       `json:"cover_url"`
	IsPublished bool         `json:"is_published"`
	Checkpoints []Checkpoint `json:"checkpoints"`
}

type Checkpoint struct {
	Position        int      `json:"position"`
	Title           string   `json:"title"`
	Riddle          string   `json:"riddle"`
	Answer          string   `json:"answer"`
	Hint            string   `json:"hint"`
	Lat             *float64 `json:"lat"`
	Lng             *float64 `json:"lng"`
	ToleranceRadius *float64 `json:"tolerance_radius"`
	MaxAttempts     *int     `json:"max_attempts"`
}

// Load reads one definition file. The file holds either a single hunt object
// or an array of hunts.
func Load(path string) ([]Hunt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var hunts []Hunt
		if err := json.Unmarshal(data, &hunts); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return hunts, nil
	}

	var hunt Hunt
	if err := json.Unmarshal(data, &hunt); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return []Hunt{hunt}, nil
}

// Validate returns every problem found in the hunt, one message per issue.
// An empty slice means the hunt is importable.
func Validate(h *Hunt) []string {
	var problems []string

	if strings.TrimSpace(h.Title) == "" {
		problems = append(problems, "hunt title is empty")
	}
	if len(h.Checkpoints) == 0 {
		problems = append(problems, "hunt has no checkpoints")
	}

	seen := map[int]bool{}
	for i, cp := range h.Checkpoints {
		label := fmt.Sprintf("checkpoint %d", i+1)

		if cp.Position <= 0 {
			problems = append(problems, label+": position must be positive")
		} else if seen[cp.Position] {
			problems = append(problems, fmt.Sprintf("%s: duplicate position %d", label, cp.Position))
		}
		seen[cp.Position] = true

		if strings.TrimSpace(cp.Title) == "" {
			problems = append(problems, label+": title is empty")
		}
		if strings.TrimSpace(cp.Riddle) == "" {
			problems = append(problems, label+": riddle is empty")
		}
		if strings.TrimSpace(cp.Answer) == "" {
			problems = append(problems, label+": answer is empty")
		}

		// A geofence needs all three fields or none.
		set := 0
		for _, v := range []*float64{cp.Lat, cp.Lng, cp.ToleranceRadius} {
			if v != nil {
				set++
			}
		}
		if set != 0 && set != 3 {
			problems = append(problems, label+": geofence needs lat, lng and tolerance_radius together")
		}
		if cp.ToleranceRadius != nil && *cp.ToleranceRadius <= 0 {
			problems = append(problems, label+": tolerance_radius must be positive")
		}
		if cp.MaxAttempts != nil && *cp.MaxAttempts <= 0 {
			problems = append(problems, label+": max_attempts must be positive")
		}
	}

	return problems
}
