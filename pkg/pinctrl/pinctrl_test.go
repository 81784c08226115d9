package pinctrl_test

import (
	"errors"

	"github.com/arducam/jetson-io/internal/constants"
	"github.com/arducam/jetson-io/pkg/pinctrl"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/twpayne/go-vfs/v4/vfst"
)

const pinconfGroups = `Pin config settings per pin group
Format: group (name): configs
0 (soc_gpio00_pa0):
	pull=0
	tristate=0
	enable-input=1
	gpio-mode=1
	function=rsvd0
1 (spi1_sck_pz3):
	pull=1
	tristate=1
	enable-input=0
	gpio-mode=1
	func=spi1
2 (spi1_miso_pz4):
	tristate=1
	enable-input=1
	gpio-mode=0
	function=spi1
	nvidia,io-high-voltage=0
3 (uart1_tx_pr2):
	tristate=0
	enable-input=0
	function=uarta
`

const pinmuxFunctions = `function 0: rsvd0, groups = [ soc_gpio00_pa0 spi1_sck_pz3 ]
function 1: spi1, groups = [ spi1_sck_pz3 spi1_miso_pz4 ]
function 2: gp, groups = [ ]
function 3: i2s1, groups = [ spi1_sck_pz3 ]
`

var _ = Describe("pinctrl", func() {
	Context("ParsePinconfGroups", func() {
		It("Decodes every complete group", func() {
			confs, err := pinctrl.ParsePinconfGroups(pinconfGroups)
			Expect(err).ToNot(HaveOccurred())
			Expect(confs).To(Equal([]pinctrl.PinConfig{
				{Name: "soc_gpio00_pa0", Function: "rsvd0", Tristate: "0", InputEnable: "1", Sfio: "1"},
				{Name: "spi1_sck_pz3", Function: "spi1", Tristate: "1", InputEnable: "0", Sfio: "1"},
				{Name: "spi1_miso_pz4", Function: "spi1", Tristate: "1", InputEnable: "1", Sfio: "0"},
			}))
		})
		It("Skips groups without gpio-mode", func() {
			confs, err := pinctrl.ParsePinconfGroups(pinconfGroups)
			Expect(err).ToNot(HaveOccurred())
			for _, c := range confs {
				Expect(c.Name).ToNot(Equal("uart1_tx_pr2"))
			}
		})
		It("Accepts an empty dump", func() {
			confs, err := pinctrl.ParsePinconfGroups("")
			Expect(err).ToNot(HaveOccurred())
			Expect(confs).To(BeEmpty())
		})
	})

	Context("ParseFunctions", func() {
		It("Decodes the function table", func() {
			functions, err := pinctrl.ParseFunctions(pinmuxFunctions)
			Expect(err).ToNot(HaveOccurred())
			Expect(functions).To(HaveLen(4))
			Expect(functions[1]).To(Equal(pinctrl.Function{Name: "spi1", Groups: []string{"spi1_sck_pz3", "spi1_miso_pz4"}}))
			Expect(functions[2].Groups).To(BeEmpty())
		})
		It("Lists the functions of a pin sorted", func() {
			functions, err := pinctrl.ParseFunctions(pinmuxFunctions)
			Expect(err).ToNot(HaveOccurred())
			Expect(pinctrl.FunctionsForPin(functions, "spi1_sck_pz3")).To(Equal([]string{"i2s1", "rsvd0", "spi1"}))
			Expect(pinctrl.FunctionsForPin(functions, "unknown")).To(BeEmpty())
		})
		It("Fails on garbage", func() {
			_, err := pinctrl.ParseFunctions("function 0 rsvd0 groups\n")
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, constants.ErrMalformedPinctrl)).To(BeTrue())
		})
	})

	Context("pin nodes", func() {
		It("Splits pin node names", func() {
			prefix, pin, ok := pinctrl.ParsePinNode("hdr20-pin13")
			Expect(ok).To(BeTrue())
			Expect(prefix).To(Equal("hdr20"))
			Expect(pin).To(Equal(13))

			prefix, pin, ok = pinctrl.ParsePinNode("csi-pin3-i2s")
			Expect(ok).To(BeTrue())
			Expect(prefix).To(Equal("csi"))
			Expect(pin).To(Equal(3))

			_, _, ok = pinctrl.ParsePinNode("pinmux@2430000")
			Expect(ok).To(BeFalse())
		})
		It("Finds the pin of a node path", func() {
			pin, ok := pinctrl.ParsePinFromPath("csi", "/fragment@0/__overlay__/jetson_io_pinmux/csi-pin12/mux")
			Expect(ok).To(BeTrue())
			Expect(pin).To(Equal(12))

			_, ok = pinctrl.ParsePinFromPath("hdr20", "/fragment@0/__overlay__/jetson_io_pinmux/csi-pin12")
			Expect(ok).To(BeFalse())
		})
	})

	Context("debugfs", func() {
		It("Reads the files of a pinmux device", func() {
			fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{
				"/sys/kernel/debug/pinctrl/2430000.pinmux/pinconf-groups":   pinconfGroups,
				"/sys/kernel/debug/pinctrl/2430000.pinmux/pinmux-functions": pinmuxFunctions,
			})
			Expect(err).ToNot(HaveOccurred())
			defer cleanup()

			src := pinctrl.NewDebugfs(fs, "/sys/kernel/debug/pinctrl")
			confs, err := src.PinconfGroups("2430000")
			Expect(err).ToNot(HaveOccurred())
			Expect(confs).To(HaveLen(3))
			functions, err := src.Functions("2430000")
			Expect(err).ToNot(HaveOccurred())
			Expect(functions).To(HaveLen(4))

			_, err = src.PinconfGroups("c300000")
			Expect(err).To(HaveOccurred())
		})
		It("Extracts the device from a symbol", func() {
			dev, err := pinctrl.DeviceFromSymbol("/bus@0/pinmux@2430000")
			Expect(err).ToNot(HaveOccurred())
			Expect(dev).To(Equal("2430000"))

			_, err = pinctrl.DeviceFromSymbol("/bus@0/gpio@2200000")
			Expect(errors.Is(err, constants.ErrMalformedPinctrl)).To(BeTrue())
		})
	})
})
