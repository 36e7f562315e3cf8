package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"budget-impact/internal/config"
)

// CaseInfo describes a case preset on disk.
type CaseInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Model      string `json:"model"`
	Horizon    int    `json:"horizon"`
	Strategies int    `json:"strategies"`
}

// DefaultCasesDir returns CASES_DIR or ./examples/cases.
func DefaultCasesDir() string {
	if dir := os.Getenv("CASES_DIR"); dir != "" {
		return dir
	}
	return "./examples/cases"
}

// ListCases returns the valid presets in dir sorted by id. Files that are not
// complete cases (strategy catalogs, drafts) are skipped.
func ListCases(dir string) ([]CaseInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cases directory: %w", err)
	}
	out := []CaseInfo{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		c, err := config.LoadUnchecked(filepath.Join(dir, e.Name()))
		if err != nil || c.Horizon == 0 {
			continue
		}
		if err := c.Validate(); err != nil {
			continue
		}
		out = append(out, CaseInfo{
			ID:         strings.TrimSuffix(e.Name(), ".yaml"),
			Name:       c.Name,
			Model:      c.Model,
			Horizon:    c.Horizon,
			Strategies: len(c.Strategies),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// LoadCase loads preset id from dir. The id is the file name without ".yaml".
func LoadCase(dir, id string) (*config.Config, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return nil, fmt.Errorf("invalid case id %q", id)
	}
	path := filepath.Join(dir, id+".yaml")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("case %q: %w", id, err)
	}
	return config.Load(path)
}
