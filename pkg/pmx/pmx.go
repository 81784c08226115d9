// Package pmx snapshots the SoC pin multiplexer state.
package pmx

import (
	"fmt"

	"github.com/arducam/jetson-io/internal/constants"
	"github.com/arducam/jetson-io/internal/utils"
	"github.com/arducam/jetson-io/pkg/pinctrl"
)

// PinState is the hardware state of a single SoC pin.
type PinState struct {
	Function    string
	Tristate    string
	InputEnable string
	Sfio        string
}

// Enabled applies the pin mode table:
//
//	sfio | input_en | tristate | mode
//	   0 |        * |        * | disabled
//	   1 |        * |        0 | enabled
//	   1 |        1 |        1 | enabled
//	   1 |        0 |        1 | disabled
func (p PinState) Enabled() bool {
	if p.Sfio == "0" {
		return false
	}
	if p.Tristate == "0" {
		return true
	}
	return p.InputEnable == "1"
}

// DeviceTree is the subset of the live device tree the snapshot needs.
type DeviceTree interface {
	PropExists(path string) bool
	ReadProp(path string) (string, error)
}

// Snapshot maps SoC pin names to their state. It is never modified after New returns.
type Snapshot struct {
	pins      map[string]PinState
	functions []pinctrl.Function
}

// New reads the main pinmux domain and, if the board has one, the always-on
// domain. Always-on entries are applied after the main ones.
func New(tree DeviceTree, src pinctrl.Source) (*Snapshot, error) {
	s := &Snapshot{pins: map[string]PinState{}}

	if err := s.load(tree, src, constants.SymbolPinmux); err != nil {
		return nil, err
	}
	if tree.PropExists(constants.SymbolPinmuxAON) {
		if err := s.load(tree, src, constants.SymbolPinmuxAON); err != nil {
			return nil, err
		}
	}
	utils.Log.Debug().Int("pins", len(s.pins)).Int("functions", len(s.functions)).Msg("Pinmux snapshot")
	return s, nil
}

// NewFromStates builds a snapshot from already decoded states.
func NewFromStates(pins map[string]PinState, functions []pinctrl.Function) *Snapshot {
	s := &Snapshot{pins: make(map[string]PinState, len(pins)), functions: functions}
	for k, v := range pins {
		s.pins[k] = v
	}
	return s
}

func (s *Snapshot) load(tree DeviceTree, src pinctrl.Source, symbol string) error {
	value, err := tree.ReadProp(symbol)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %s", constants.ErrMalformedPinctrl, symbol, err)
	}
	dev, err := pinctrl.DeviceFromSymbol(value)
	if err != nil {
		return err
	}
	confs, err := src.PinconfGroups(dev)
	if err != nil {
		return err
	}
	for _, c := range confs {
		if _, dup := s.pins[c.Name]; dup {
			utils.Log.Warn().Str("pin", c.Name).Str("device", dev).Msg("Pin reported by more than one pinmux domain, keeping the last one")
		}
		s.pins[c.Name] = PinState{Function: c.Function, Tristate: c.Tristate, InputEnable: c.InputEnable, Sfio: c.Sfio}
	}
	functions, err := src.Functions(dev)
	if err != nil {
		return err
	}
	s.functions = append(s.functions, functions...)
	return nil
}

// State returns the state of pin.
func (s *Snapshot) State(pin string) (PinState, error) {
	st, ok := s.pins[pin]
	if !ok {
		return PinState{}, fmt.Errorf("%w: %s", constants.ErrPinNotFound, pin)
	}
	return st, nil
}

// Function returns the function currently selected for pin.
func (s *Snapshot) Function(pin string) (string, error) {
	st, err := s.State(pin)
	if err != nil {
		return "", err
	}
	return st.Function, nil
}

// IsEnabled reports whether pin is enabled according to the pin mode table.
func (s *Snapshot) IsEnabled(pin string) (bool, error) {
	st, err := s.State(pin)
	if err != nil {
		return false, err
	}
	return st.Enabled(), nil
}

// AllFunctions returns every function the SoC can route to pin.
func (s *Snapshot) AllFunctions(pin string) []string {
	return pinctrl.FunctionsForPin(s.functions, pin)
}

// Len returns the number of pins in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.pins)
}
