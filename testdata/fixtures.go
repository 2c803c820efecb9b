// Package testdata holds recorded blend-shape sequences for tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ayusman/poselens/internal/expression"
)

//go:embed expressions/*.json
var expressionsFS embed.FS

// LoadSequence loads a recorded sequence of blend-shape frames by name,
// without the .json extension. Null or empty entries are frames in which
// no face was found.
func LoadSequence(name string) ([]expression.Blendshapes, error) {
	data, err := expressionsFS.ReadFile("expressions/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load sequence %s: %w", name, err)
	}

	var frames []expression.Blendshapes
	if err := json.Unmarshal(data, &frames); err != nil {
		return nil, fmt.Errorf("decode sequence %s: %w", name, err)
	}
	return frames, nil
}

// Sequences lists the names of all recorded sequences.
func Sequences() ([]string, error) {
	entries, err := expressionsFS.ReadDir("expressions")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return names, nil
}
