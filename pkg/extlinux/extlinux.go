// Package extlinux reads and extends the L4T bootloader configuration.
package extlinux

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/arducam/jetson-io/internal/constants"
	"github.com/arducam/jetson-io/internal/utils"
	"github.com/gofrs/uuid"
	"github.com/twpayne/go-vfs/v4"
)

// Directive is a single "KEY value" line, or a comment when Comment is set.
type Directive struct {
	Key     string
	Value   string
	Comment string
}

func (d Directive) String() string {
	if d.Comment != "" {
		return d.Comment
	}
	if d.Value == "" {
		return d.Key
	}
	return d.Key + " " + d.Value
}

// Entry is one LABEL block.
type Entry struct {
	Label      string
	Directives []Directive
}

// Get returns the value of the first directive named key.
func (e *Entry) Get(key string) (string, bool) {
	for _, d := range e.Directives {
		if d.Comment == "" && d.Key == key {
			return d.Value, true
		}
	}
	return "", false
}

// Config is a parsed extlinux.conf.
type Config struct {
	Global  []Directive
	Entries []*Entry
}

// Default returns the value of the global DEFAULT directive.
func (c *Config) Default() string {
	for _, d := range c.Global {
		if d.Comment == "" && d.Key == "DEFAULT" {
			return d.Value
		}
	}
	return ""
}

func (c *Config) setDefault(label string) {
	for i, d := range c.Global {
		if d.Comment == "" && d.Key == "DEFAULT" {
			c.Global[i].Value = label
			return
		}
	}
	c.Global = append([]Directive{{Key: "DEFAULT", Value: label}}, c.Global...)
}

// Find returns the last entry labelled label. The bootloader picks the last
// match, so that is the one in effect.
func (c *Config) Find(label string) *Entry {
	var found *Entry
	for _, e := range c.Entries {
		if e.Label == label {
			found = e
		}
	}
	return found
}

// template returns the entry new entries are derived from: the default
// entry unless that is one of ours, else the first entry.
func (c *Config) template() *Entry {
	if d := c.Default(); d != "" && d != constants.BootEntryLabel {
		if e := c.Find(d); e != nil {
			return e
		}
	}
	for _, e := range c.Entries {
		if e.Label != constants.BootEntryLabel {
			return e
		}
	}
	if len(c.Entries) > 0 {
		return c.Entries[0]
	}
	return nil
}

// BootEntry is what a publish appends.
type BootEntry struct {
	Label     string
	MenuLabel string
	Dtb       string
	Overlays  []string
	Timestamp time.Time
}

// AddEntry appends e after every existing entry, derived from the current
// default entry, and optionally makes it the default.
func (c *Config) AddEntry(e BootEntry, makeDefault bool) error {
	tmpl := c.template()
	if tmpl == nil {
		return fmt.Errorf("%w: no boot entry to derive from", constants.ErrBootConfig)
	}

	n := &Entry{Label: e.Label}
	n.Directives = append(n.Directives,
		Directive{Comment: fmt.Sprintf("# jetson-io %s", e.Timestamp.Format(time.RFC3339))},
		Directive{Key: "MENU LABEL", Value: e.MenuLabel},
	)
	for _, key := range []string{"LINUX", "INITRD"} {
		if v, ok := tmpl.Get(key); ok {
			n.Directives = append(n.Directives, Directive{Key: key, Value: v})
		}
	}
	n.Directives = append(n.Directives,
		Directive{Key: "FDT", Value: e.Dtb},
		Directive{Key: "OVERLAYS", Value: strings.Join(e.Overlays, ",")},
	)
	if v, ok := tmpl.Get("APPEND"); ok {
		n.Directives = append(n.Directives, Directive{Key: "APPEND", Value: v})
	}

	c.Entries = append(c.Entries, n)
	if makeDefault {
		c.setDefault(e.Label)
	}
	return nil
}

// String renders the configuration.
func (c *Config) String() string {
	var b strings.Builder
	for _, d := range c.Global {
		b.WriteString(d.String())
		b.WriteString("\n")
	}
	for _, e := range c.Entries {
		b.WriteString("\nLABEL ")
		b.WriteString(e.Label)
		b.WriteString("\n")
		for _, d := range e.Directives {
			b.WriteString("      ")
			b.WriteString(d.String())
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Load parses the configuration at path.
func Load(fs vfs.FS, path string) (*Config, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", constants.ErrBootConfig, err)
	}
	return Parse(string(data))
}

// Save writes the configuration next to path under a unique name and renames it into place.
func Save(fs vfs.FS, path string, c *Config) error {
	perm := utils.FileMode(fs, path, 0o644)
	tmp := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.%s", filepath.Base(path), uuid.Must(uuid.NewV4()).String()))
	if err := fs.WriteFile(tmp, []byte(c.String()), perm); err != nil {
		return err
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return err
	}
	return nil
}

// AddEntryToFile loads path, appends e and writes it back.
func AddEntryToFile(fs vfs.FS, path string, e BootEntry, makeDefault bool) error {
	c, err := Load(fs, path)
	if err != nil {
		return err
	}
	if err := c.AddEntry(e, makeDefault); err != nil {
		return err
	}
	utils.Log.Debug().Str("file", path).Str("label", e.Label).Str("fdt", e.Dtb).Strs("overlays", e.Overlays).Msg("Adding boot entry")
	return Save(fs, path, c)
}
