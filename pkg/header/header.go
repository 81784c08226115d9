// Package header holds the live, editable pin state of one expansion header.
package header

import (
	"fmt"
	"path"
	"sort"

	"github.com/arducam/jetson-io/internal/constants"
	"github.com/arducam/jetson-io/internal/utils"
	"github.com/arducam/jetson-io/pkg/dtc"
	"github.com/arducam/jetson-io/pkg/headers"
	"github.com/arducam/jetson-io/pkg/pinctrl"
	"github.com/arducam/jetson-io/pkg/pmx"
)

// PinMux is the hardware state a Header is seeded from.
type PinMux interface {
	State(pin string) (pmx.PinState, error)
}

// Node is one device-tree node of the header overlay implementing a pin.
type Node struct {
	Path     string
	Function string
}

// Pin maps a header pin to the SoC pin and overlay nodes implementing it.
type Pin struct {
	Index  int
	SocPin string
	Nodes  []Node // sorted by path
}

type state struct {
	function string
	enabled  bool
}

// Header is the runtime of one header. Edits are kept in memory only.
type Header struct {
	Def     headers.Definition
	Overlay string

	pins     map[int]*Pin
	baseline map[int]state
	current  map[int]state
	preconf  map[string]bool
}

// New maps the pins of def to the nodes of the header overlay dtbo, and seeds
// their state from the pinmux. preconf lists the SoC pins configured by
// earlier sessions.
func New(e dtc.Editor, dtbo string, def headers.Definition, preconf []string, mux PinMux) (*Header, error) {
	h := &Header{
		Def:      def,
		Overlay:  dtbo,
		pins:     map[int]*Pin{},
		baseline: map[int]state{},
		current:  map[int]state{},
		preconf:  map[string]bool{},
	}
	for _, p := range preconf {
		h.preconf[p] = true
	}

	nodes, err := dtc.FindNodesWithProp(e, dtbo, "/", constants.PropPins)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		prefix, idx, ok := pinctrl.ParsePinNode(path.Base(n))
		if !ok || prefix != def.Prefix {
			continue
		}
		socPin, _, err := e.GetProp(dtbo, n, constants.PropPins)
		if err != nil {
			return nil, err
		}
		function, _, err := e.GetProp(dtbo, n, constants.PropFunction)
		if err != nil {
			return nil, err
		}
		p, ok := h.pins[idx]
		if !ok {
			p = &Pin{Index: idx, SocPin: socPin}
			h.pins[idx] = p
		}
		p.Nodes = append(p.Nodes, Node{Path: n, Function: function})
	}

	for idx, p := range h.pins {
		sort.Slice(p.Nodes, func(i, j int) bool { return p.Nodes[i].Path < p.Nodes[j].Path })
		if def.IsFixed(idx) {
			continue
		}
		st, err := mux.State(p.SocPin)
		if err != nil {
			return nil, fmt.Errorf("header %s pin %d: %w", def.Name, idx, err)
		}
		h.baseline[idx] = state{function: st.Function, enabled: st.Enabled()}
	}
	h.Reset()

	utils.Log.Debug().Str("header", def.Name).Int("pins", len(h.pins)).Msg("Header loaded")
	return h, nil
}

func (h *Header) pin(idx int) (*Pin, error) {
	p, ok := h.pins[idx]
	if !ok {
		return nil, fmt.Errorf("%w: %s pin %d", constants.ErrNoNodeForPin, h.Def.Name, idx)
	}
	return p, nil
}

// Prefix is the node name prefix of the header.
func (h *Header) Prefix() string {
	return h.Def.Prefix
}

// Pins returns the sorted indices of every pin that has at least one node.
func (h *Header) Pins() []int {
	pins := make([]int, 0, len(h.pins))
	for idx := range h.pins {
		pins = append(pins, idx)
	}
	sort.Ints(pins)
	return pins
}

// SocPin returns the SoC pin name behind idx.
func (h *Header) SocPin(idx int) (string, error) {
	p, err := h.pin(idx)
	if err != nil {
		return "", err
	}
	return p.SocPin, nil
}

// Label returns the fixed label of a power/ground pin, or the SoC pin name.
func (h *Header) Label(idx int) string {
	if l, ok := h.Def.FixedLabel(idx); ok {
		return l
	}
	if p, ok := h.pins[idx]; ok {
		return p.SocPin
	}
	return "NA"
}

// IsConfigurable is false for power, ground and no-connect pins and for pins without nodes.
func (h *Header) IsConfigurable(idx int) bool {
	_, ok := h.pins[idx]
	return ok && !h.Def.IsFixed(idx)
}

// IsDefault reports whether the pin still has the state it had when loaded.
func (h *Header) IsDefault(idx int) bool {
	cur, ok := h.current[idx]
	if !ok {
		return true
	}
	return cur == h.baseline[idx]
}

// IsConfiguredByDT reports whether an earlier session recorded this pin.
func (h *Header) IsConfiguredByDT(idx int) bool {
	p, ok := h.pins[idx]
	return ok && h.preconf[p.SocPin]
}

// Function returns the function currently selected for the pin.
func (h *Header) Function(idx int) (string, error) {
	if _, err := h.pin(idx); err != nil {
		return "", err
	}
	return h.current[idx].function, nil
}

// IsEnabled reports whether the pin is currently enabled.
func (h *Header) IsEnabled(idx int) (bool, error) {
	if _, err := h.pin(idx); err != nil {
		return false, err
	}
	return h.current[idx].enabled, nil
}

// Functions returns the sorted functions implemented by the pin's nodes.
func (h *Header) Functions(idx int) []string {
	p, ok := h.pins[idx]
	if !ok {
		return nil
	}
	var functions []string
	for _, n := range p.Nodes {
		if n.Function != "" {
			functions = append(functions, n.Function)
		}
	}
	return utils.UniqueSlice(functions)
}

// Node returns the node implementing function on the pin. Without a
// function it returns the default node.
func (h *Header) Node(idx int, function ...string) (string, error) {
	p, err := h.pin(idx)
	if err != nil {
		return "", err
	}
	if len(function) == 0 || function[0] == "" {
		return h.defaultNode(p), nil
	}
	for _, n := range p.Nodes {
		if n.Function == function[0] {
			return n.Path, nil
		}
	}
	return "", fmt.Errorf("%w: %s pin %d has no node for %s", constants.ErrUnknownFunction, h.Def.Name, idx, function[0])
}

// DefaultNode returns the node named exactly <prefix>-pin<N> if there is one,
// otherwise the first node by path.
func (h *Header) DefaultNode(idx int) (string, error) {
	p, err := h.pin(idx)
	if err != nil {
		return "", err
	}
	return h.defaultNode(p), nil
}

func (h *Header) defaultNode(p *Pin) string {
	exact := fmt.Sprintf("%s-pin%d", h.Def.Prefix, p.Index)
	for _, n := range p.Nodes {
		if path.Base(n.Path) == exact {
			return n.Path
		}
	}
	return p.Nodes[0].Path
}

// AllNodes returns every node implementing the pin, sorted by path.
func (h *Header) AllNodes(idx int) ([]string, error) {
	p, err := h.pin(idx)
	if err != nil {
		return nil, err
	}
	nodes := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		nodes = append(nodes, n.Path)
	}
	return nodes, nil
}

// SetFunction selects function on the pin and enables it.
func (h *Header) SetFunction(idx int, function string) error {
	if err := h.checkConfigurable(idx); err != nil {
		return err
	}
	if _, err := h.Node(idx, function); err != nil {
		return err
	}
	utils.Log.Debug().Str("header", h.Def.Name).Int("pin", idx).Str("function", function).Msg("Set pin function")
	h.current[idx] = state{function: function, enabled: true}
	return nil
}

// Disable keeps the pin function but marks the pin disabled.
func (h *Header) Disable(idx int) error {
	if err := h.checkConfigurable(idx); err != nil {
		return err
	}
	utils.Log.Debug().Str("header", h.Def.Name).Int("pin", idx).Msg("Disable pin")
	cur := h.current[idx]
	cur.enabled = false
	h.current[idx] = cur
	return nil
}

func (h *Header) checkConfigurable(idx int) error {
	if !h.IsConfigurable(idx) {
		return fmt.Errorf("%w: %s pin %d (%s)", constants.ErrPinNotConfigurable, h.Def.Name, idx, h.Label(idx))
	}
	return nil
}

// Reset discards every in-memory edit.
func (h *Header) Reset() {
	h.current = make(map[int]state, len(h.baseline))
	for idx, st := range h.baseline {
		h.current[idx] = st
	}
}
