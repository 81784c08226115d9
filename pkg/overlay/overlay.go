// Package overlay classifies device-tree overlays into header overlays and
// hardware addon overlays.
package overlay

import (
	"fmt"

	"github.com/arducam/jetson-io/internal/constants"
	"github.com/arducam/jetson-io/internal/utils"
	"github.com/arducam/jetson-io/pkg/dtc"
)

// Set is the result of Discover.
type Set struct {
	// Headers maps a header name to its baseline overlay.
	Headers map[string]string
	// Addons maps a header name to its addon overlays by overlay name.
	Addons map[string]map[string]string
}

// Discover classifies dtbos against the known header names. An overlay with
// a jetson-header-name naming a known header is an addon for it; otherwise an
// overlay whose overlay-name is a known header name is that header's
// baseline. Anything else is ignored.
func Discover(e dtc.Editor, dtbos []string, headerNames []string) (*Set, error) {
	known := map[string]bool{}
	for _, n := range headerNames {
		known[n] = true
	}
	set := &Set{
		Headers: map[string]string{},
		Addons:  map[string]map[string]string{},
	}

	for _, dtbo := range dtbos {
		header, _, err := dtc.GetRootProp(e, dtbo, constants.PropHeaderName)
		if err != nil {
			return nil, err
		}

		if known[header] {
			name, hasName, err := dtc.GetRootProp(e, dtbo, constants.PropOverlayName)
			if err != nil {
				return nil, err
			}
			if !hasName {
				return nil, fmt.Errorf("%w: %s has no %s", constants.ErrMalformedOverlay, dtbo, constants.PropOverlayName)
			}
			if set.Addons[header] == nil {
				set.Addons[header] = map[string]string{}
			}
			if prev, dup := set.Addons[header][name]; dup {
				return nil, duplicate(name, dtbo, prev)
			}
			utils.Log.Debug().Str("header", header).Str("addon", name).Str("dtbo", dtbo).Msg("Found addon overlay")
			set.Addons[header][name] = dtbo
			continue
		}

		name, _, err := dtc.GetRootProp(e, dtbo, constants.PropOverlayName)
		if err != nil {
			return nil, err
		}
		if !known[name] {
			continue
		}
		if prev, dup := set.Headers[name]; dup {
			return nil, duplicate(name, dtbo, prev)
		}
		utils.Log.Debug().Str("header", name).Str("dtbo", dtbo).Msg("Found header overlay")
		set.Headers[name] = dtbo
	}
	return set, nil
}

func duplicate(name, a, b string) error {
	// paths sorted, independent of scan order
	if b < a {
		a, b = b, a
	}
	return fmt.Errorf("%w for '%s', please remove duplicate(s)\n%s\n%s", constants.ErrDuplicateOverlay, name, a, b)
}
