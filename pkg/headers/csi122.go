package headers

var Csi122 = Definition{
	Name:     "Jetson 122pin CSI Connector",
	Prefix:   "csi",
	PinCount: 122,
	fixedPins: map[int]string{
		1:   "GND",
		2:   "GND",
		7:   "GND",
		8:   "GND",
		13:  "GND",
		14:  "GND",
		19:  "GND",
		20:  "GND",
		25:  "GND",
		26:  "GND",
		31:  "GND",
		32:  "GND",
		37:  "GND",
		38:  "GND",
		43:  "GND",
		44:  "GND",
		50:  "GND",
		55:  "GND",
		56:  "GND",
		61:  "GND",
		62:  "GND",
		67:  "GND",
		68:  "GND",
		73:  "GND",
		74:  "GND",
		79:  "GND",
		80:  "GND",
		82:  "2.8V",
		99:  "GND",
		100: "GND",
		102: "1.8V",
		108: "3.3V",
		110: "3.3V",
		115: "GND",
		118: "3.3V",
		120: "3.3V",
		121: "GND",
		122: "GND",
	},
}
