package mocks

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arducam/jetson-io/pkg/pmx"
)

const (
	Compatible = "nvidia,p3509-0000+p3668-0001 nvidia,jetson-xavier-nx nvidia,tegra194"
	Model      = "NVIDIA Jetson Xavier NX Developer Kit"
	// PinmuxPath is where the fixture overlays keep their pin nodes.
	PinmuxPath = "/fragment@0/__overlay__/jetson_io_pinmux"
)

// PinNode is a header overlay node routing function to socPin.
func PinNode(socPin, function string) *Node {
	return &Node{Props: map[string]string{
		"nvidia,pins":         socPin,
		"nvidia,function":     function,
		"nvidia,pin-label":    socPin,
		"nvidia,pin-group":    function,
		"nvidia,tristate":     "0",
		"nvidia,enable-input": "0",
	}}
}

// Overlay is an overlay with props on its root and pins under PinmuxPath.
func Overlay(props map[string]string, pins map[string]*Node) *Node {
	root := &Node{Props: map[string]string{"compatible": Compatible}}
	for k, v := range props {
		root.Props[k] = v
	}
	root.Children = map[string]*Node{
		"fragment@0": {
			Props: map[string]string{"target": "<&pinmux>"},
			Children: map[string]*Node{
				"__overlay__": {
					Children: map[string]*Node{
						"jetson_io_pinmux": {Children: pins},
					},
				},
			},
		},
	}
	return root
}

// Csi24Overlay is the header overlay of the 24pin CSI connector. Pin 1 is
// power, pins 5 and 6 have two candidate nodes each.
func Csi24Overlay() *Node {
	return Overlay(map[string]string{"overlay-name": "Jetson 24pin CSI Connector"}, map[string]*Node{
		"csi-pin1":       PinNode("vdd_3v3", "rsvd0"),
		"csi-pin2":       PinNode("cam_mclk_pp0", "extperiph3"),
		"csi-pin3":       PinNode("cam_i2c_scl_pp2", "i2c3"),
		"csi-pin5":       PinNode("soc_gpio41_pq5", "rsvd1"),
		"csi-pin5-spi1":  PinNode("soc_gpio41_pq5", "spi1"),
		"csi-pin6":       PinNode("spi1_sck_pz3", "spi1"),
		"csi-pin6-gpio":  PinNode("spi1_sck_pz3", "gp"),
		"hdr20-pin3":     PinNode("uart1_tx_pr2", "uarta"),
		"not-a-pin-node": {Props: map[string]string{"status": "okay"}},
	})
}

// IMX219Overlay is an addon for the 24pin CSI connector. It routes spi1 to
// pin 5 and keeps pin 2 as the hardware has it.
func IMX219Overlay() *Node {
	return Overlay(map[string]string{
		"overlay-name":       "IMX219",
		"jetson-header-name": "Jetson 24pin CSI Connector",
	}, map[string]*Node{
		"csi-pin2":      {Props: map[string]string{"nvidia,function": "extperiph3"}},
		"csi-pin5-spi1": {Props: map[string]string{"nvidia,function": "spi1"}},
	})
}

// Csi24States is the pinmux state the Csi24Overlay pins boot with.
func Csi24States() map[string]pmx.PinState {
	return map[string]pmx.PinState{
		"cam_mclk_pp0":    {Function: "extperiph3", Sfio: "1", Tristate: "0", InputEnable: "0"},
		"cam_i2c_scl_pp2": {Function: "i2c3", Sfio: "1", Tristate: "0", InputEnable: "1"},
		"soc_gpio41_pq5":  {Function: "rsvd1", Sfio: "1", Tristate: "1", InputEnable: "0"},
		"spi1_sck_pz3":    {Function: "spi1", Sfio: "1", Tristate: "0", InputEnable: "0"},
	}
}

// PinconfGroups renders states as a pinconf-groups debugfs dump.
func PinconfGroups(states map[string]pmx.PinState) string {
	names := make([]string, 0, len(states))
	for name := range states {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Pin config settings per pin group\nFormat: group (name): configs\n")
	for i, name := range names {
		st := states[name]
		fmt.Fprintf(&b, "%d (%s):\n", i, name)
		fmt.Fprintf(&b, "\tpull=0\n\ttristate=%s\n\tenable-input=%s\n\tgpio-mode=%s\n\tfunction=%s\n",
			st.Tristate, st.InputEnable, st.Sfio, st.Function)
	}
	return b.String()
}
