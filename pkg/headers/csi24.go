package headers

var Csi24 = Definition{
	Name:     "Jetson 24pin CSI Connector",
	Prefix:   "csi",
	PinCount: 24,
	fixedPins: map[int]string{
		1:  "3.3V",
		4:  "GND",
		7:  "GND",
		10: "GND",
		13: "GND",
		16: "GND",
		19: "GND",
		22: "GND",
		23: "GND",
		24: "GND",
	},
}
