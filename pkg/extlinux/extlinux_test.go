package extlinux_test

import (
	"errors"
	"strings"
	"time"

	"github.com/arducam/jetson-io/internal/constants"
	"github.com/arducam/jetson-io/pkg/extlinux"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/twpayne/go-vfs/v4/vfst"
)

const conf = `TIMEOUT 30
DEFAULT primary

MENU TITLE L4T boot options

LABEL primary
      MENU LABEL primary kernel
      LINUX /boot/Image
      INITRD /boot/initrd
      APPEND ${cbootargs} root=/dev/mmcblk0p1 rw rootwait

# When testing a custom kernel, it is recommended that you create a new
# boot entry so that, in case of boot failure, the system can be recovered.

LABEL backup
      MENU LABEL backup kernel
      LINUX /boot/Image.backup
      INITRD /boot/initrd
      APPEND ${cbootargs}
`

var stamp = time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)

func entry() extlinux.BootEntry {
	return extlinux.BootEntry{
		Label:     "JetsonIO",
		MenuLabel: "Custom Header Config: <CSI User Custom [2024-05-17-103000]>",
		Dtb:       "/boot/dtb/kernel_tegra194-p3668-0001-p3509-0000.dtb",
		Overlays:  []string{"/boot/jetson-io-csi-user-custom.dtbo", "/boot/jetson-io-hdr20-user-custom.dtbo"},
		Timestamp: stamp,
	}
}

var _ = Describe("extlinux", func() {
	Context("Parse", func() {
		It("Splits global directives and entries", func() {
			c, err := extlinux.Parse(conf)
			Expect(err).ToNot(HaveOccurred())
			Expect(c.Default()).To(Equal("primary"))
			Expect(c.Entries).To(HaveLen(2))
			Expect(c.Entries[0].Label).To(Equal("primary"))

			v, ok := c.Entries[0].Get("MENU LABEL")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("primary kernel"))
			v, ok = c.Entries[0].Get("APPEND")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("${cbootargs} root=/dev/mmcblk0p1 rw rootwait"))
			_, ok = c.Entries[0].Get("FDT")
			Expect(ok).To(BeFalse())

			Expect(c.Find("backup")).ToNot(BeNil())
			Expect(c.Find("missing")).To(BeNil())
		})
		It("Keeps comments", func() {
			c, err := extlinux.Parse(conf)
			Expect(err).ToNot(HaveOccurred())
			Expect(c.String()).To(ContainSubstring("# When testing a custom kernel"))
		})
	})

	Context("AddEntry", func() {
		It("Derives the entry from the default one", func() {
			c, err := extlinux.Parse(conf)
			Expect(err).ToNot(HaveOccurred())
			Expect(c.AddEntry(entry(), true)).To(Succeed())

			Expect(c.Default()).To(Equal("JetsonIO"))
			e := c.Find("JetsonIO")
			Expect(e).ToNot(BeNil())
			Expect(c.Entries[len(c.Entries)-1]).To(Equal(e))

			for key, value := range map[string]string{
				"MENU LABEL": "Custom Header Config: <CSI User Custom [2024-05-17-103000]>",
				"LINUX":      "/boot/Image",
				"INITRD":     "/boot/initrd",
				"APPEND":     "${cbootargs} root=/dev/mmcblk0p1 rw rootwait",
				"FDT":        "/boot/dtb/kernel_tegra194-p3668-0001-p3509-0000.dtb",
				"OVERLAYS":   "/boot/jetson-io-csi-user-custom.dtbo,/boot/jetson-io-hdr20-user-custom.dtbo",
			} {
				v, ok := e.Get(key)
				Expect(ok).To(BeTrue(), key)
				Expect(v).To(Equal(value), key)
			}
			Expect(e.Directives[0].Comment).To(Equal("# jetson-io 2024-05-17T10:30:00Z"))
		})
		It("Keeps deriving from the original entry once ours is the default", func() {
			c, err := extlinux.Parse(conf)
			Expect(err).ToNot(HaveOccurred())
			Expect(c.AddEntry(entry(), true)).To(Succeed())
			second := entry()
			second.Overlays = []string{"/boot/other.dtbo"}
			Expect(c.AddEntry(second, true)).To(Succeed())

			Expect(c.Entries).To(HaveLen(4))
			e := c.Find("JetsonIO")
			Expect(e).To(Equal(c.Entries[3]))
			v, _ := e.Get("LINUX")
			Expect(v).To(Equal("/boot/Image"))
			v, _ = e.Get("OVERLAYS")
			Expect(v).To(Equal("/boot/other.dtbo"))
		})
		It("Adds a DEFAULT when there was none", func() {
			c, err := extlinux.Parse("LABEL primary\n  LINUX /boot/Image\n")
			Expect(err).ToNot(HaveOccurred())
			Expect(c.AddEntry(entry(), true)).To(Succeed())
			Expect(c.Default()).To(Equal("JetsonIO"))
			Expect(strings.HasPrefix(c.String(), "DEFAULT JetsonIO\n")).To(BeTrue())
		})
		It("Fails without any entry", func() {
			c, err := extlinux.Parse("TIMEOUT 30\n")
			Expect(err).ToNot(HaveOccurred())
			err = c.AddEntry(entry(), true)
			Expect(errors.Is(err, constants.ErrBootConfig)).To(BeTrue())
		})
	})

	Context("files", func() {
		It("Round trips through the file", func() {
			fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{"/boot/extlinux/extlinux.conf": conf})
			Expect(err).ToNot(HaveOccurred())
			defer cleanup()

			Expect(extlinux.AddEntryToFile(fs, "/boot/extlinux/extlinux.conf", entry(), true)).To(Succeed())

			c, err := extlinux.Load(fs, "/boot/extlinux/extlinux.conf")
			Expect(err).ToNot(HaveOccurred())
			Expect(c.Default()).To(Equal("JetsonIO"))
			Expect(c.Entries).To(HaveLen(3))
			Expect(c.Find("primary")).ToNot(BeNil())

			// no temporary file left behind
			entries, err := fs.ReadDir("/boot/extlinux")
			Expect(err).ToNot(HaveOccurred())
			Expect(entries).To(HaveLen(1))
		})
		It("Fails on a missing file", func() {
			fs, cleanup, err := vfst.NewTestFS(map[string]interface{}{"/boot": &vfst.Dir{Perm: 0o755}})
			Expect(err).ToNot(HaveOccurred())
			defer cleanup()

			err = extlinux.AddEntryToFile(fs, "/boot/extlinux/extlinux.conf", entry(), true)
			Expect(errors.Is(err, constants.ErrBootConfig)).To(BeTrue())
		})
	})
})
