package moderation

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed denylist.yml
var defaultDenylist []byte

type denylistDoc struct {
	Terms []string `yaml:"terms"`
}

// LoadDenylist returns the screening term list, in order. When path is empty
// the embedded default list is used, otherwise the YAML file at path replaces
// it entirely. The list is static configuration: it is read once at startup
// and never changes at runtime.
func LoadDenylist(path string) ([]string, error) {
	data := defaultDenylist
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read denylist file: %w", err)
		}
		data = fileData
	}

	var doc denylistDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse denylist YAML: %w", err)
	}

	terms := make([]string, 0, len(doc.Terms))
	for _, term := range doc.Terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		terms = append(terms, term)
	}

	if len(terms) == 0 {
		return nil, fmt.Errorf("denylist contains no terms")
	}

	return terms, nil
}
