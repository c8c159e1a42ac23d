package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SiteFile is the optional site config file. JSON is valid YAML, so the
// classic config.json layout works unchanged:
//
//	{ "siteSheetCsv": "https://docs.google.com/spreadsheets/d/<id>/edit" }
type SiteFile struct {
	SiteSheetCSV  string `yaml:"siteSheetCsv"`
	DefaultPageID string `yaml:"defaultPageId"`
	Template      string `yaml:"template"`
}

// ReadSiteFile decodes a JSON or YAML site config file.
func ReadSiteFile(path string) (SiteFile, error) {
	var sf SiteFile

	data, err := os.ReadFile(path)
	if err != nil {
		return sf, fmt.Errorf("site config %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return sf, nil
	}
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return sf, fmt.Errorf("site config %s: %w", path, err)
	}

	sf.SiteSheetCSV = strings.TrimSpace(sf.SiteSheetCSV)
	sf.DefaultPageID = strings.TrimSpace(sf.DefaultPageID)
	sf.Template = strings.TrimSpace(sf.Template)
	return sf, nil
}

// WithSiteFile returns a copy of c as if it had been loaded with sf as the
// site file. Keys missing from sf fall back to the environment values rather
// than to whatever an earlier file set.
func (c *Config) WithSiteFile(sf SiteFile) *Config {
	next := *c
	if c.fromEnv != nil {
		next.Sheet.SiteSheetURL = c.fromEnv.siteSheetURL
		next.Site = c.fromEnv.site
	}
	next.ApplySiteFile(sf)
	return &next
}

// ApplySiteFile overlays file values. The environment wins for the Site sheet
// URL; the file fills it in only when it is unset.
func (c *Config) ApplySiteFile(sf SiteFile) {
	if c.Sheet.SiteSheetURL == "" && sf.SiteSheetCSV != "" {
		c.Sheet.SiteSheetURL = sf.SiteSheetCSV
	}
	if sf.DefaultPageID != "" {
		c.Site.DefaultPageID = sf.DefaultPageID
	}
	if sf.Template != "" {
		c.Site.DefaultTheme = sf.Template
	}
}
