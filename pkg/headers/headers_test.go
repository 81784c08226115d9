package headers_test

import (
	"github.com/arducam/jetson-io/pkg/headers"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("catalog", func() {
	It("Lists headers in declaration order", func() {
		Expect(headers.Names(headers.All())).To(Equal([]string{
			"Jetson 20pin Header",
			"Jetson 24pin CSI Connector",
			"Jetson 122pin CSI Connector",
			"Jetson M.2 Key B Slot",
		}))
	})

	It("Returns each prefix once", func() {
		Expect(headers.Prefixes(headers.All())).To(Equal([]string{"hdr20", "csi", "m2kb"}))
	})

	It("Finds headers by name", func() {
		d, ok := headers.Find(headers.All(), "Jetson 24pin CSI Connector")
		Expect(ok).To(BeTrue())
		Expect(d.Prefix).To(Equal("csi"))
		_, ok = headers.Find(headers.All(), "Jetson 40pin Header")
		Expect(ok).To(BeFalse())
	})

	It("Has unique names and sane fixed pins", func() {
		seen := map[string]bool{}
		for _, d := range headers.All() {
			Expect(seen[d.Name]).To(BeFalse(), d.Name)
			seen[d.Name] = true
			Expect(d.PinCount).To(BeNumerically(">", 0), d.Name)
			for _, pin := range d.FixedPins() {
				Expect(pin).To(BeNumerically(">=", 1), d.Name)
				Expect(pin).To(BeNumerically("<=", d.PinCount), d.Name)
			}
		}
	})

	It("Labels fixed pins", func() {
		Expect(headers.Csi24.IsFixed(4)).To(BeTrue())
		Expect(headers.Csi24.IsFixed(5)).To(BeFalse())
		l, ok := headers.Hdr20.FixedLabel(2)
		Expect(ok).To(BeTrue())
		Expect(l).To(Equal("1.8V"))
		_, ok = headers.Hdr20.FixedLabel(3)
		Expect(ok).To(BeFalse())
	})

	It("Lists fixed pins in order", func() {
		Expect(headers.Csi24.FixedPins()).To(Equal([]int{1, 4, 7, 10, 13, 16, 19, 22, 23, 24}))
	})

	It("Hands out a catalog that callers cannot change", func() {
		defs := headers.All()
		defs[1].Name = "changed"
		defs[1].PinCount = 0
		pins := defs[1].FixedPins()
		pins[0] = 5
		Expect(headers.All()[1].Name).To(Equal("Jetson 24pin CSI Connector"))
		Expect(headers.All()[1].PinCount).To(Equal(24))
		Expect(headers.Csi24.IsFixed(1)).To(BeTrue())
		Expect(headers.Csi24.IsFixed(5)).To(BeFalse())
	})
})
