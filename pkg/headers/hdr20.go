package headers

var Hdr20 = Definition{
	Name:     "Jetson 20pin Header",
	Prefix:   "hdr20",
	PinCount: 20,
	fixedPins: map[int]string{
		1:  "3.3V",
		2:  "1.8V",
		12: "GND",
		14: "GND",
		16: "GND",
		18: "GND",
		19: "GND",
		20: "GND",
	},
}
