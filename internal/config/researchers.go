package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Researcher is an analyst whose queries feed the news dashboard.
type Researcher struct {
	Name       string   `yaml:"name"`
	Email      string   `yaml:"email"`
	Department string   `yaml:"department"`
	Queries    []string `yaml:"queries"`
}

// ResearchersConfig is the researchers file layout:
//
//	researchers:
//	  - name: Angel Sun
//	    queries:
//	      - treasury yields
type ResearchersConfig struct {
	Researchers []Researcher `yaml:"researchers"`
}

// LoadResearchers reads the researchers file. Entries without a name are
// rejected; blank queries are dropped.
func LoadResearchers(path string) ([]Researcher, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg ResearchersConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	for i := range cfg.Researchers {
		r := &cfg.Researchers[i]
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			return nil, fmt.Errorf("%s: researcher %d has no name", path, i)
		}
		queries := r.Queries[:0]
		for _, q := range r.Queries {
			if q = strings.TrimSpace(q); q != "" {
				queries = append(queries, q)
			}
		}
		r.Queries = queries
	}
	return cfg.Researchers, nil
}
