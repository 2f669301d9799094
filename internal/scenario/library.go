package scenario

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Library holds the loaded scenario catalog. It is immutable after
// loading and safe for concurrent use by parallel sessions.
type Library struct {
	scenarios []Scenario
	byID      map[string]*Scenario
}

// scenarioFile is the on-disk shape: a file may hold a single scenario
// or a catalog with a top-level "scenarios" list.
type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios" json:"scenarios"`
}

// LoadDir loads every .yaml/.yml/.json scenario file in dir.
func LoadDir(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenario dir: %w", err)
	}

	lib := &Library{byID: make(map[string]*Scenario)}
	seen := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		scenarios, err := loadFile(path, ext)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", e.Name(), err)
		}
		for _, s := range scenarios {
			if err := s.Validate(); err != nil {
				return nil, fmt.Errorf("load %s: %w", e.Name(), err)
			}
			if seen[s.ID] {
				return nil, fmt.Errorf("load %s: duplicate scenario id %q", e.Name(), s.ID)
			}
			seen[s.ID] = true
			lib.scenarios = append(lib.scenarios, s)
		}
	}

	if len(lib.scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios found in %s", dir)
	}

	sort.Slice(lib.scenarios, func(i, j int) bool {
		return lib.scenarios[i].ID < lib.scenarios[j].ID
	})
	for i := range lib.scenarios {
		lib.byID[lib.scenarios[i].ID] = &lib.scenarios[i]
	}

	return lib, nil
}

func loadFile(path, ext string) ([]Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file scenarioFile
	var single Scenario
	switch ext {
	case ".json":
		if err := json.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		if len(file.Scenarios) == 0 {
			if err := json.Unmarshal(raw, &single); err != nil {
				return nil, fmt.Errorf("parse json: %w", err)
			}
		}
	default:
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		if len(file.Scenarios) == 0 {
			if err := yaml.Unmarshal(raw, &single); err != nil {
				return nil, fmt.Errorf("parse yaml: %w", err)
			}
		}
	}

	if len(file.Scenarios) > 0 {
		return file.Scenarios, nil
	}
	if single.ID != "" {
		return []Scenario{single}, nil
	}
	return nil, nil
}

// All returns every loaded scenario, ordered by id.
func (l *Library) All() []Scenario {
	return l.scenarios
}

// ByID returns the scenario with the given id, or nil.
func (l *Library) ByID(id string) *Scenario {
	return l.byID[id]
}

// Random returns a uniformly random scenario.
func (l *Library) Random() *Scenario {
	return &l.scenarios[rand.IntN(len(l.scenarios))]
}
