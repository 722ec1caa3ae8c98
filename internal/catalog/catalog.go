// Package catalog holds the hand-authored project and library listings.
//
// The listings are plain data: a YAML document embedded in the binary, which
// an operator can replace with a file of the same shape at startup.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sakif/portfolio/internal/apperror"
)

//go:embed catalog.yml
var defaultCatalog []byte

// Project is a project card. Beta and Disabled control the badge overlay.
type Project struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	ImageURL    string `yaml:"image_url"`
	URL         string `yaml:"url"`
	Beta        bool   `yaml:"beta"`
	Disabled    bool   `yaml:"disabled"`
}

// Library is a "Libraries I Use" card with language badges.
type Library struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	ImageURL    string `yaml:"image_url"`
	JavaScript  bool   `yaml:"javascript"`
	Python      bool   `yaml:"python"`
}

// Catalog is the full set of static listings.
type Catalog struct {
	HomeProjects  []Project `yaml:"home_projects"`
	AboutProjects []Project `yaml:"about_projects"`
	Libraries     []Library `yaml:"libraries"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, or returns the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: parsing yaml: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every card can be rendered as a working link.
func (c *Catalog) Validate() error {
	for name, projects := range map[string][]Project{
		"home_projects":  c.HomeProjects,
		"about_projects": c.AboutProjects,
	} {
		for i, p := range projects {
			if p.Title == "" {
				return apperror.ValidationFailed(fmt.Sprintf("%s[%d].title", name, i), "project title is required")
			}
			if p.URL == "" {
				return apperror.ValidationFailed(fmt.Sprintf("%s[%d].url", name, i), fmt.Sprintf("project %q has no url", p.Title))
			}
		}
	}
	for i, l := range c.Libraries {
		if l.Title == "" {
			return apperror.ValidationFailed(fmt.Sprintf("libraries[%d].title", i), "library title is required")
		}
	}
	return nil
}
