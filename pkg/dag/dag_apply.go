package dag

import (
	cnst "github.com/arducam/jetson-io/internal/constants"
	"github.com/arducam/jetson-io/pkg/state"
	"github.com/spectrocloud-labs/herd"
)

// RegisterApply registers the dag configuring one header: select it, apply
// the addon preset and the pin edits when asked to, write the overlay and,
// unless disabled, reference it from the boot configuration.
// Every step depends on the previous one, so the first failure stops the chain.
func RegisterApply(s *state.State, g *herd.Graph) error {
	if err := s.LogIfErrorAndReturn(s.SelectHeaderDagStep(g), "select header"); err != nil {
		return err
	}
	last := cnst.OpSelectHeader

	if s.Addon != "" {
		if err := s.LogIfErrorAndReturn(s.LoadAddonDagStep(g, herd.WithDeps(last)), "load addon"); err != nil {
			return err
		}
		last = cnst.OpLoadAddon
	}

	if s.HasPinEdits() {
		if err := s.LogIfErrorAndReturn(s.SetPinsDagStep(g, herd.WithDeps(last)), "set pins"); err != nil {
			return err
		}
		last = cnst.OpSetPins
	}

	if err := s.LogIfErrorAndReturn(s.CreateDtboDagStep(g, herd.WithDeps(last)), "create dtbo"); err != nil {
		return err
	}

	if s.Publish {
		return s.LogIfErrorAndReturn(s.PublishDagStep(g, herd.WithDeps(cnst.OpCreateDtbo)), "publish")
	}
	return nil
}
