package prompts

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Template is a named hairstyle description offered as a starting point.
type Template struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

var defaultTemplates = []Template{
	{"Bob Cut", "Classic bob haircut, chin-length, straight edges, professional and elegant"},
	{"Pixie Cut", "Short pixie cut, textured layers, modern and edgy style"},
	{"Long Layers", "Long layered hair, flowing layers, natural movement, shoulder-length or longer"},
	{"Beach Waves", "Beachy wavy hair, loose natural waves, casual and effortless look"},
	{"Sleek Straight", "Perfectly straight hair, smooth and shiny, professional appearance"},
	{"Curly/Afro", "Natural curly or afro-textured hair, voluminous and defined curls"},
	{"Undercut", "Modern undercut style, short on sides, longer on top, contemporary look"},
	{"Shoulder Length", "Medium length hair to shoulders, versatile styling, professional"},
	{"Bangs/Fringe", "Hair with bangs or fringe, can specify straight, side-swept, or curtain bangs"},
	{"Updo/Bun", "Hair styled up in a bun or updo, elegant and formal styling"},
	{"Braided", "Braided hairstyle, can be box braids, cornrows, or french braids"},
	{"Vintage Wave", "Vintage Hollywood waves, glamorous retro styling"},
	{"Shag Cut", "Layered shag haircut, textured and rock-inspired"},
	{"Lob (Long Bob)", "Long bob haircut, collarbone length, modern and sophisticated"},
	{"Side Part", "Hair with defined side parting, classic professional style"},
	{"Center Part", "Hair with center parting, symmetrical and balanced"},
	{"Mohawk/Faux Hawk", "Edgy mohawk or faux hawk style"},
	{"Ponytail", "Hair pulled back in ponytail, high or low positioning"},
	{"Two-Toned", "Hair with highlights, lowlights, or ombre coloring"},
	{"Natural Gray", "Natural gray or silver hair, distinguished and elegant"},
}

// Catalog holds hairstyle templates in display order.
type Catalog struct {
	mu        sync.RWMutex
	templates []Template
}

// DefaultCatalog returns the built-in templates.
func DefaultCatalog() *Catalog {
	templates := make([]Template, len(defaultTemplates))
	copy(templates, defaultTemplates)
	return &Catalog{templates: templates}
}

// LoadCatalog starts from the built-in templates and merges a YAML file on top.
// Entries with a known name replace the description; new names are appended.
// An empty path or a missing file yields the defaults.
func LoadCatalog(path string) (*Catalog, error) {
	catalog := DefaultCatalog()
	if strings.TrimSpace(path) == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return catalog, nil
		}
		return nil, fmt.Errorf("prompts: read templates: %w", err)
	}

	var file struct {
		Templates []Template `yaml:"templates"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("prompts: parse templates: %w", err)
	}
	for _, tpl := range file.Templates {
		catalog.Put(tpl)
	}
	return catalog, nil
}

// Put adds or replaces a template.
func (c *Catalog) Put(tpl Template) {
	name := strings.TrimSpace(tpl.Name)
	if name == "" || strings.TrimSpace(tpl.Description) == "" {
		return
	}
	tpl.Name = name

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.templates {
		if strings.EqualFold(existing.Name, name) {
			c.templates[i].Description = tpl.Description
			return
		}
	}
	c.templates = append(c.templates, tpl)
}

// Lookup finds a template by name, ignoring case.
func (c *Catalog) Lookup(name string) (Template, bool) {
	name = strings.TrimSpace(name)
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, tpl := range c.templates {
		if strings.EqualFold(tpl.Name, name) {
			return tpl, true
		}
	}
	return Template{}, false
}

// List returns a snapshot of all templates.
func (c *Catalog) List() []Template {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := make([]Template, len(c.templates))
	copy(snapshot, c.templates)
	return snapshot
}

// ResolveDescription prefers free text and falls back to the named template.
func (c *Catalog) ResolveDescription(description, template string) string {
	if trimmed := strings.TrimSpace(description); trimmed != "" {
		return trimmed
	}
	if c == nil || strings.TrimSpace(template) == "" {
		return ""
	}
	if tpl, ok := c.Lookup(template); ok {
		return tpl.Description
	}
	return ""
}
