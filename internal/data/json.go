package data

import (
	"encoding/json"
	"fmt"
	"os"

	"budget-impact/internal/config"
)

// LoadCaseJSON reads a case in the JSON form of the YAML case file.
// strategies_file is not followed; JSON cases carry their strategies inline.
func LoadCaseJSON(path string) (*config.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c config.Config
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveCaseJSON writes c as indented JSON. Strategies are written inline and
// strategies_file is dropped, so the file loads back with LoadCaseJSON.
func SaveCaseJSON(c *config.Config, path string) error {
	out := *c
	out.StrategiesFile = ""
	raw, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal case: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write case file: %w", err)
	}
	return nil
}
