package state

import (
	"fmt"
	"sort"

	internalUtils "github.com/arducam/jetson-io/internal/utils"
	"github.com/spectrocloud-labs/herd"
)

// Board is what the apply pipeline drives.
type Board interface {
	SetActiveHeader(name string) error
	HwAddonLoad(name string) error
	SetPinFunction(pin int, function string) error
	DisablePin(pin int) error
	CreateDtboForHeader() (string, error)
	ConfigureDtForNextBoot(dtbos []string) ([]string, error)
}

type State struct {
	Board Board

	Header  string         // header to configure
	Addon   string         // hardware addon to load, optional
	Pins    map[int]string // pin -> function
	Disable []int          // pins to disable, applied after Pins
	Publish bool           // add a boot entry for the generated overlay

	// Filled in while the graph runs.
	Dtbo     string
	Messages []string
}

// SortedPins returns the pins to set, lowest first, so edits are applied in a stable order.
func (s *State) SortedPins() []int {
	pins := make([]int, 0, len(s.Pins))
	for p := range s.Pins {
		pins = append(pins, p)
	}
	sort.Ints(pins)
	return pins
}

// HasPinEdits reports whether any pin is set or disabled explicitly.
func (s *State) HasPinEdits() bool {
	return len(s.Pins) > 0 || len(s.Disable) > 0
}

// WriteDAG writes the dag.
func (s *State) WriteDAG(g *herd.Graph) (out string) {
	for i, layer := range g.Analyze() {
		out += fmt.Sprintf("%d.\n", i+1)
		for _, op := range layer {
			if op.Error != nil {
				out += fmt.Sprintf(" <%s> (error: %s) (background: %t) (weak: %t) (run: %t)\n", op.Name, op.Error.Error(), op.Background, op.WeakDeps, op.Executed)
			} else {
				out += fmt.Sprintf(" <%s> (background: %t) (weak: %t) (run: %t)\n", op.Name, op.Background, op.WeakDeps, op.Executed)
			}
		}
	}
	return
}

// LogIfError will log if there is an error with the given context as message
// Context can be empty.
func (s *State) LogIfError(e error, msgContext string) {
	if e != nil {
		internalUtils.Log.Err(e).Msg(msgContext)
	}
}

// LogIfErrorAndReturn will log if there is an error with the given context as message
// Will also return the error.
func (s *State) LogIfErrorAndReturn(e error, msgContext string) error {
	if e != nil {
		internalUtils.Log.Err(e).Msg(msgContext)
	}
	return e
}
