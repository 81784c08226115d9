// Package headers holds the static catalog of expansion headers known to the tool.
package headers

import "sort"

// Definition describes a physical header. Fixed pins are power, ground and
// no-connect pins that can never be configured, keyed by pin index. The
// table is private so the catalog cannot be altered through a Definition.
type Definition struct {
	Name      string
	Prefix    string
	PinCount  int
	fixedPins map[int]string
}

// IsFixed reports whether the pin carries a fixed function.
func (d Definition) IsFixed(pin int) bool {
	_, ok := d.fixedPins[pin]
	return ok
}

// FixedLabel returns the label of a fixed pin.
func (d Definition) FixedLabel(pin int) (string, bool) {
	l, ok := d.fixedPins[pin]
	return l, ok
}

// FixedPins returns the fixed pin indexes, lowest first.
func (d Definition) FixedPins() []int {
	pins := make([]int, 0, len(d.fixedPins))
	for pin := range d.fixedPins {
		pins = append(pins, pin)
	}
	sort.Ints(pins)
	return pins
}

// All returns the catalog in declaration order.
func All() []Definition {
	return []Definition{
		Hdr20,
		Csi24,
		Csi122,
		M2KeyB,
	}
}

// Names returns the header names of defs, in order.
func Names(defs []Definition) []string {
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	return names
}

// Prefixes returns the distinct header prefixes of defs, in order.
func Prefixes(defs []Definition) []string {
	seen := map[string]bool{}
	var prefixes []string
	for _, d := range defs {
		if seen[d.Prefix] {
			continue
		}
		seen[d.Prefix] = true
		prefixes = append(prefixes, d.Prefix)
	}
	return prefixes
}

// Find returns the definition named name.
func Find(defs []Definition, name string) (Definition, bool) {
	for _, d := range defs {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}
