package domain

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultLocale is used when a requested locale has no copy.
const DefaultLocale = "en"

//go:embed copy.yaml
var copyYAML []byte

// Copy is the static text of one locale.
type Copy struct {
	Message        string              `yaml:"message"`
	Services       []string            `yaml:"services"`
	Storyboard     []string            `yaml:"storyboard"`
	ReportSections []string            `yaml:"report_sections"`
	WeeklyTopic    string              `yaml:"weekly_topic"`
	Suggestions    map[string][]string `yaml:"suggestions"`
}

// CopyCatalog holds the copy for every supported locale.
type CopyCatalog struct {
	locales map[string]Copy
}

// LoadCopyCatalog parses the embedded copy file.
func LoadCopyCatalog() (*CopyCatalog, error) {
	return ParseCopyCatalog(copyYAML)
}

// ParseCopyCatalog parses a YAML document keyed by locale.
func ParseCopyCatalog(data []byte) (*CopyCatalog, error) {
	var locales map[string]Copy
	if err := yaml.Unmarshal(data, &locales); err != nil {
		return nil, fmt.Errorf("copy catalog: %w", err)
	}
	if _, ok := locales[DefaultLocale]; !ok {
		return nil, fmt.Errorf("copy catalog: missing %q locale", DefaultLocale)
	}
	return &CopyCatalog{locales: locales}, nil
}

// Tags returns the supported locales, default first, for language matching.
func (c *CopyCatalog) Tags() []language.Tag {
	names := make([]string, 0, len(c.locales))
	for name := range c.locales {
		if name != DefaultLocale {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	tags := []language.Tag{language.Make(DefaultLocale)}
	for _, name := range names {
		tags = append(tags, language.Make(name))
	}
	return tags
}

// For returns the copy of locale, falling back to the default locale.
func (c *CopyCatalog) For(locale string) Copy {
	if cp, ok := c.locales[strings.ToLower(locale)]; ok {
		return cp
	}
	return c.locales[DefaultLocale]
}

// Suggestions returns the ordered suggestions of a service with {name}
// placeholders replaced from vars. Services without copy in locale fall back
// to the default locale.
func (c *CopyCatalog) Suggestions(locale, service string, vars map[string]string) []string {
	list, ok := c.For(locale).Suggestions[service]
	if !ok {
		list = c.locales[DefaultLocale].Suggestions[service]
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	replacer := strings.NewReplacer(pairs...)
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = replacer.Replace(s)
	}
	return out
}
