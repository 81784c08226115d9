package headers

var M2KeyB = Definition{
	Name:     "Jetson M.2 Key B Slot",
	Prefix:   "m2kb",
	PinCount: 78,
	fixedPins: map[int]string{
		2:  "3.3V",
		3:  "GND",
		4:  "3.3V",
		5:  "GND",
		11: "GND",
		27: "GND",
		33: "GND",
		39: "GND",
		45: "GND",
		51: "GND",
		56: "NC",
		57: "GND",
		58: "NC",
		70: "3.3V",
		71: "GND",
		72: "3.3V",
		73: "GND",
		74: "3.3V",
		76: "GND",
		77: "GND",
	},
}
