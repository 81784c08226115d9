package board

import (
	"path"
	"strings"

	"github.com/arducam/jetson-io/internal/constants"
	"github.com/arducam/jetson-io/internal/utils"
	"github.com/arducam/jetson-io/pkg/pinctrl"
)

// PreconfiguredPins recovers the pins written by earlier sessions of the
// tool into the platform DTB, keyed by header prefix. A prefix is present in
// the result only if an earlier session touched that header; its value lists
// the SoC pin names recorded for it.
func PreconfiguredPins(tree DeviceTree, prefixes []string) (map[string][]string, error) {
	known := map[string]bool{}
	for _, p := range prefixes {
		known[p] = true
	}
	preconf := map[string][]string{}

	for _, symbol := range []string{constants.SymbolJetsonIOPinmux, constants.SymbolJetsonIOPinmuxAON} {
		if !tree.PropExists(symbol) {
			continue
		}
		target, err := tree.ReadProp(symbol)
		if err != nil {
			return nil, err
		}
		parent := strings.TrimPrefix(target, "/")
		nodes, err := tree.ChildNodes(parent)
		if err != nil {
			return nil, err
		}

		for _, node := range nodes {
			prefix, _, ok := pinctrl.ParsePinNode(node)
			if !ok || !known[prefix] {
				continue
			}
			if _, ok := preconf[prefix]; !ok {
				preconf[prefix] = []string{}
			}
			prop := path.Join(parent, node, constants.PropPins)
			if !tree.PropExists(prop) {
				continue
			}
			pin, err := tree.ReadProp(prop)
			if err != nil {
				return nil, err
			}
			utils.Log.Debug().Str("prefix", prefix).Str("node", node).Str("pin", pin).Msg("Pin configured by an earlier session")
			preconf[prefix] = append(preconf[prefix], pin)
		}
	}
	return preconf, nil
}
