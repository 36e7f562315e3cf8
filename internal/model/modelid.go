package model

import (
	"fmt"
	"strings"
)

// ModelID labels the methodological variant a run is reported under.
// Keep these values stable; they are part of API and CSV output.
// The projection does not branch on it.
type ModelID string

const (
	Model1 ModelID = "model_1"
	Model2 ModelID = "model_2"
	Model3 ModelID = "model_3"
	Model4 ModelID = "model_4"
)

var modelIDs = []ModelID{Model1, Model2, Model3, Model4}

// ModelIDs lists the known variants in display order.
func ModelIDs() []ModelID {
	out := make([]ModelID, len(modelIDs))
	copy(out, modelIDs)
	return out
}

// Label is the human-friendly name, e.g. "Model 2".
func (m ModelID) Label() string {
	return "Model " + strings.TrimPrefix(string(m), "model_")
}

// ParseModelID accepts "model_2", "Model 2", "modelo 2" or "2".
func ParseModelID(s string) (ModelID, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.TrimPrefix(norm, "modelo")
	norm = strings.TrimPrefix(norm, "model")
	norm = strings.TrimLeft(norm, " _-")
	for _, id := range modelIDs {
		if strings.TrimPrefix(string(id), "model_") == norm {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown model %q (want one of model_1..model_4)", s)
}
