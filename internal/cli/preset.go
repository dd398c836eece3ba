package cli

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/vizboard/internal/core"
)

// Preset is a saved set of dashboard selections, keyed like the dashboard
// query string ("bar.x", "histogram.bins", "kpi.column").
type Preset struct {
	Variant    string            `yaml:"variant,omitempty"`
	Format     string            `yaml:"format,omitempty"`
	Selections map[string]string `yaml:"selections"`
}

// LoadPreset reads a YAML preset file.
func LoadPreset(path string) (*Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}
	var p Preset
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse preset %s: %w", path, err)
	}
	if p.Selections == nil {
		p.Selections = map[string]string{}
	}
	return &p, nil
}

// WritePreset encodes p as YAML.
func WritePreset(w io.Writer, p *Preset) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	return enc.Close()
}

// PresetFromDashboard captures every selection the dashboard resolved,
// including defaults the caller never chose.
func PresetFromDashboard(d *core.Dashboard) *Preset {
	p := &Preset{Variant: string(d.Variant), Selections: map[string]string{}}
	for _, sec := range d.Sections {
		for _, c := range sec.Controls {
			if c.Selected != "" {
				p.Selections[c.Key] = c.Selected
			}
		}
	}
	if d.KPI != nil && d.KPI.Column != "" {
		p.Selections[core.KPIKey] = d.KPI.Column
	}
	return p
}

// Values turns the selections into dashboard query values. Overrides are
// "key=value" pairs applied on top.
func (p *Preset) Values(overrides []string) (url.Values, error) {
	v := url.Values{}
	if p != nil {
		keys := make([]string, 0, len(p.Selections))
		for k := range p.Selections {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v.Set(k, p.Selections[k])
		}
	}
	for _, o := range overrides {
		key, val, ok := strings.Cut(o, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid selection %q: want key=value", o)
		}
		v.Set(key, val)
	}
	return v, nil
}
