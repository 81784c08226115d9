package board

import (
	"fmt"
	"path/filepath"

	"github.com/arducam/jetson-io/internal/constants"
	"github.com/arducam/jetson-io/internal/utils"
	"github.com/arducam/jetson-io/pkg/dtc"
	"github.com/arducam/jetson-io/pkg/header"
)

// CreateDtboForHeader writes the pin state of the active header to a new
// overlay in the boot directory and returns its path.
func (b *Board) CreateDtboForHeader() (string, error) {
	h, err := b.ActiveHeader()
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("User Custom [%s]", b.now().Format("2006-01-02-150405"))
	file := fmt.Sprintf("jetson-io-%s-%s", h.Prefix(), constants.UserCustomSuffix)

	dtbo, err := b.synthesize(h, filepath.Join(b.cfg.BootDir, file))
	if err != nil {
		return "", err
	}
	if err := b.editor.SetProp(dtbo, "/", constants.PropOverlayName, dtc.String, name); err != nil {
		return "", err
	}
	if err := b.editor.SetProp(dtbo, "/", constants.PropHeaderName, dtc.String, b.active); err != nil {
		return "", err
	}
	utils.Log.Info().Str("header", b.active).Str("dtbo", dtbo).Str("name", name).Msg("Overlay created")
	return dtbo, nil
}

// synthesize copies the header overlay to dtbo and reduces it to the pins
// that must be asserted: every retained pin keeps exactly one node.
func (b *Board) synthesize(h *header.Header, dtbo string) (string, error) {
	if err := utils.CopyFile(b.fs, h.Overlay, dtbo); err != nil {
		return "", err
	}

	var retained []int
	for _, pin := range h.Pins() {
		l := utils.Log.With().Str("header", h.Def.Name).Int("pin", pin).Logger()
		switch {
		case !h.IsConfigurable(pin):
			l.Debug().Msg("Dropping fixed pin")
			if err := b.removeNodes(h, dtbo, pin, ""); err != nil {
				return "", err
			}
		case h.IsDefault(pin) && !h.IsConfiguredByDT(pin):
			l.Debug().Msg("Dropping untouched pin")
			if err := b.removeNodes(h, dtbo, pin, ""); err != nil {
				return "", err
			}
		default:
			retained = append(retained, pin)
		}
	}

	if len(retained) == 0 {
		if err := b.fs.Remove(dtbo); err != nil {
			utils.Log.Warn().Err(err).Str("dtbo", dtbo).Msg("Removing empty overlay")
		}
		return "", fmt.Errorf("%w for %s", constants.ErrEmptyHeaderOverlay, h.Def.Name)
	}

	for _, pin := range retained {
		node, err := b.resolvePin(h, dtbo, pin)
		if err != nil {
			return "", err
		}
		if err := b.removeNodes(h, dtbo, pin, node); err != nil {
			return "", err
		}
	}
	return dtbo, nil
}

// resolvePin picks the node that will carry the pin state and stamps it.
func (b *Board) resolvePin(h *header.Header, dtbo string, pin int) (string, error) {
	function, err := h.Function(pin)
	if err != nil {
		return "", err
	}
	enabled, err := h.IsEnabled(pin)
	if err != nil {
		return "", err
	}
	l := utils.Log.With().Str("header", h.Def.Name).Int("pin", pin).Str("function", function).Bool("enabled", enabled).Logger()

	var node string
	if enabled {
		node, err = h.Node(pin, function)
		if err != nil {
			// the pinmux may report a function the header overlay has no node for
			l.Warn().Err(err).Msg("Stamping function on the default node")
			if node, err = h.DefaultNode(pin); err != nil {
				return "", err
			}
			if err := b.editor.SetProp(dtbo, node, constants.PropFunction, dtc.String, function); err != nil {
				return "", err
			}
		}
	} else {
		if node, err = h.DefaultNode(pin); err != nil {
			return "", err
		}
		if function != "" {
			if err := b.editor.SetProp(dtbo, node, constants.PropFunction, dtc.String, function); err != nil {
				return "", err
			}
		}
		if err := b.editor.SetProp(dtbo, node, constants.PropTristate, dtc.Uint, "1"); err != nil {
			return "", err
		}
		if err := b.editor.SetProp(dtbo, node, constants.PropEnableInput, dtc.Uint, "0"); err != nil {
			return "", err
		}
	}

	for _, prop := range []string{constants.PropPinLabel, constants.PropPinGroup} {
		if err := b.editor.DeleteProp(dtbo, node, prop); err != nil {
			return "", err
		}
	}
	l.Debug().Str("node", node).Msg("Retaining pin")
	return node, nil
}

// removeNodes deletes every node of the pin except keep.
func (b *Board) removeNodes(h *header.Header, dtbo string, pin int, keep string) error {
	nodes, err := h.AllNodes(pin)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		if n == keep {
			continue
		}
		if err := b.editor.RemoveNode(dtbo, n); err != nil {
			return err
		}
	}
	return nil
}
