package cmd

import (
	"fmt"
	"strings"

	"github.com/arducam/jetson-io/pkg/board"
	"gopkg.in/yaml.v3"
)

// PinRow is the state of one header pin.
type PinRow struct {
	Pin          int      `yaml:"pin"`
	Label        string   `yaml:"label"`
	SocPin       string   `yaml:"soc_pin,omitempty"`
	Configurable bool     `yaml:"configurable"`
	Function     string   `yaml:"function,omitempty"`
	Enabled      bool     `yaml:"enabled"`
	Default      bool     `yaml:"default"`
	ConfiguredDT bool     `yaml:"configured_by_dt"`
	Functions    []string `yaml:"functions,omitempty"`        // implemented by the header overlay
	Available    []string `yaml:"pinmux_functions,omitempty"` // supported by the pinmux
}

type PinReport struct {
	Header string   `yaml:"header"`
	Pins   []PinRow `yaml:"pins"`
}

// NewPinReport describes every pin of the active header of b.
func NewPinReport(b *board.Board) (*PinReport, error) {
	h, err := b.ActiveHeader()
	if err != nil {
		return nil, err
	}
	r := &PinReport{Header: h.Def.Name}
	for pin := 1; pin <= h.Def.PinCount; pin++ {
		row := PinRow{
			Pin:          pin,
			Label:        h.Label(pin),
			Configurable: h.IsConfigurable(pin),
			Default:      h.IsDefault(pin),
			ConfiguredDT: h.IsConfiguredByDT(pin),
		}
		if row.Configurable {
			if row.SocPin, err = h.SocPin(pin); err != nil {
				return nil, err
			}
			if row.Function, err = h.Function(pin); err != nil {
				return nil, err
			}
			if row.Enabled, err = h.IsEnabled(pin); err != nil {
				return nil, err
			}
			row.Functions = h.Functions(pin)
			row.Available = b.Pinmux.AllFunctions(row.SocPin)
		}
		r.Pins = append(r.Pins, row)
	}
	return r, nil
}

func (r *PinReport) YAML() (string, error) {
	out, err := yaml.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (r *PinReport) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", r.Header)
	for _, row := range r.Pins {
		if !row.Configurable {
			fmt.Fprintf(&sb, "%4d  %s\n", row.Pin, row.Label)
			continue
		}
		state := "disabled"
		if row.Enabled {
			state = "enabled"
		}
		var flags []string
		if !row.Default {
			flags = append(flags, "modified")
		}
		if row.ConfiguredDT {
			flags = append(flags, "dt")
		}
		fmt.Fprintf(&sb, "%4d  %-20s %-12s %-8s %s", row.Pin, row.Label, row.Function, state, strings.Join(row.Functions, ","))
		if len(flags) > 0 {
			fmt.Fprintf(&sb, " [%s]", strings.Join(flags, " "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
