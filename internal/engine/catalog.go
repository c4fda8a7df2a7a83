package engine

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lore/catalog.yaml
var catalogYAML []byte

// Level is the canonical description of a Backrooms level.
type Level struct {
	Name                 string   `yaml:"name"`
	Description          string   `yaml:"description"`
	EnvironmentImage     string   `yaml:"environmentImage"`
	CommonEntities       []string `yaml:"commonEntities"`
	EnvironmentalHazards []string `yaml:"environmentalHazards"`
}

// Entity is the canonical description of a Backrooms entity.
type Entity struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	ImageURL    string `yaml:"imageUrl"`
	DangerLevel int    `yaml:"dangerLevel"`
}

// Catalog holds the lore used to theme events.
type Catalog struct {
	DefaultLevel  string            `yaml:"defaultLevel"`
	DefaultEntity string            `yaml:"defaultEntity"`
	Levels        map[string]Level  `yaml:"levels"`
	Entities      map[string]Entity `yaml:"entities"`
}

var defaultCatalog = mustLoadCatalog(catalogYAML)

// DefaultCatalog returns the embedded lore catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// LoadCatalog parses a YAML lore catalog.
func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if _, ok := c.Levels[c.DefaultLevel]; !ok {
		return nil, fmt.Errorf("catalog default level %q is not defined", c.DefaultLevel)
	}
	if _, ok := c.Entities[c.DefaultEntity]; !ok {
		return nil, fmt.Errorf("catalog default entity %q is not defined", c.DefaultEntity)
	}
	return &c, nil
}

func mustLoadCatalog(data []byte) *Catalog {
	c, err := LoadCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Level returns the level with the given id, or the default level.
func (c *Catalog) Level(id string) Level {
	if l, ok := c.Levels[id]; ok {
		return l
	}
	return c.Levels[c.DefaultLevel]
}

// EntityImage picks the image for a named entity. Plural and differently
// cased names match ("Smilers" finds "smiler"); unknown names get the
// default entity's image.
func (c *Catalog) EntityImage(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, k := range []string{key, strings.TrimSuffix(key, "s")} {
		if e, ok := c.Entities[k]; ok {
			return e.ImageURL
		}
	}
	for _, e := range c.Entities {
		if strings.EqualFold(e.Name, name) {
			return e.ImageURL
		}
	}
	return c.Entities[c.DefaultEntity].ImageURL
}
