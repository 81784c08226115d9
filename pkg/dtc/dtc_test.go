package dtc_test

import (
	"errors"

	"github.com/arducam/jetson-io/internal/constants"
	"github.com/arducam/jetson-io/pkg/dtc"
	"github.com/arducam/jetson-io/tests/mocks"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/twpayne/go-vfs/v4"
	"github.com/twpayne/go-vfs/v4/vfst"
)

var _ = Describe("dtc", func() {
	Context("FdtTool", func() {
		var console *mocks.FakeConsole
		var tool *dtc.FdtTool

		BeforeEach(func() {
			console = mocks.NewFakeConsole()
			tool = dtc.NewFdtTool(vfs.OSFS, console)
		})

		It("Reads a property after checking it exists", func() {
			console.Outputs["fdtget -p"] = "nvidia,pins\nnvidia,function\n"
			console.Outputs["fdtget -t s"] = "spi1\n"
			v, ok, err := tool.GetProp("/boot/a.dtbo", "/node", "nvidia,function")
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("spi1"))
			Expect(console.Commands).To(Equal([]string{
				"fdtget -p '/boot/a.dtbo' '/node'",
				"fdtget -t s '/boot/a.dtbo' '/node' 'nvidia,function'",
			}))
		})

		It("Reports missing properties without reading them", func() {
			console.Outputs["fdtget -p"] = "nvidia,pins\n"
			_, ok, err := tool.GetProp("/boot/a.dtbo", "/node", "nvidia,function")
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeFalse())
			Expect(console.Commands).To(HaveLen(1))
		})

		It("Writes typed properties", func() {
			Expect(tool.SetProp("/boot/a.dtbo", "/node", "nvidia,tristate", dtc.Uint, "1")).To(Succeed())
			Expect(tool.SetProp("/boot/a.dtbo", "/", "overlay-name", dtc.String, "User Custom [x]")).To(Succeed())
			Expect(console.Commands).To(Equal([]string{
				"fdtput -t u '/boot/a.dtbo' '/node' 'nvidia,tristate' '1'",
				"fdtput -t s '/boot/a.dtbo' '/' 'overlay-name' 'User Custom [x]'",
			}))
		})

		It("Deletes properties only when present", func() {
			console.Outputs["fdtget -p"] = "nvidia,pin-label\n"
			Expect(tool.DeleteProp("/boot/a.dtbo", "/node", "nvidia,pin-group")).To(Succeed())
			Expect(tool.DeleteProp("/boot/a.dtbo", "/node", "nvidia,pin-label")).To(Succeed())
			Expect(console.Commands).To(Equal([]string{
				"fdtget -p '/boot/a.dtbo' '/node'",
				"fdtget -p '/boot/a.dtbo' '/node'",
				"fdtput -d '/boot/a.dtbo' '/node' 'nvidia,pin-label'",
			}))
		})

		It("Removes and lists nodes", func() {
			console.Outputs["fdtget -l"] = "csi-pin5\ncsi-pin6\n"
			Expect(tool.RemoveNode("/boot/a.dtbo", "/node")).To(Succeed())
			nodes, err := tool.ListNodes("/boot/a.dtbo", "/")
			Expect(err).ToNot(HaveOccurred())
			Expect(nodes).To(Equal([]string{"csi-pin5", "csi-pin6"}))
			Expect(console.Commands[0]).To(Equal("fdtput -r '/boot/a.dtbo' '/node'"))
		})

		It("Returns tool failures", func() {
			console.Errors["fdtput"] = errors.New("FDT_ERR_NOTFOUND")
			Expect(tool.RemoveNode("/boot/a.dtbo", "/missing")).ToNot(Succeed())
		})
	})

	Context("blobs", func() {
		var fs vfs.FS
		var cleanup func()
		var editor *mocks.FakeEditor

		BeforeEach(func() {
			var err error
			fs, cleanup, err = vfst.NewTestFS(map[string]interface{}{
				"/boot/dtb":   &vfst.Dir{Perm: 0o755},
				"/boot/notes": "not a blob",
			})
			Expect(err).ToNot(HaveOccurred())
			editor = &mocks.FakeEditor{FS: fs}

			for file, props := range map[string]map[string]string{
				"/boot/dtb/nx.dtb":   {"compatible": mocks.Compatible, "model": mocks.Model},
				"/boot/dtb/orin.dtb": {"compatible": "nvidia,p3737-0000+p3701-0000 nvidia,tegra234", "model": "Orin"},
				"/boot/csi.dtbo":     {"compatible": "nvidia,tegra194"},
				"/boot/orin.dtbo":    {"compatible": "nvidia,tegra234"},
				"/boot/plain.dtbo":   {"overlay-name": "no compatible"},
			} {
				Expect(mocks.WriteBlob(fs, file, &mocks.Node{Props: props})).To(Succeed())
			}
		})
		AfterEach(func() {
			cleanup()
		})

		It("Finds the DTB of the board", func() {
			d, err := dtc.FindCompatibleDtb(fs, editor, mocks.Compatible, mocks.Model, "/boot/dtb")
			Expect(err).ToNot(HaveOccurred())
			Expect(d).To(Equal("/boot/dtb/nx.dtb"))

			_, err = dtc.FindCompatibleDtb(fs, editor, mocks.Compatible, "Other model", "/boot/dtb")
			Expect(errors.Is(err, constants.ErrNoDtbFound)).To(BeTrue())

			Expect(mocks.WriteBlob(fs, "/boot/dtb/nx-copy.dtb", &mocks.Node{Props: map[string]string{
				"compatible": mocks.Compatible, "model": mocks.Model,
			}})).To(Succeed())
			_, err = dtc.FindCompatibleDtb(fs, editor, mocks.Compatible, mocks.Model, "/boot/dtb")
			Expect(errors.Is(err, constants.ErrMultipleDtbFound)).To(BeTrue())
			Expect(errors.Is(err, constants.ErrDiscovery)).To(BeTrue())
		})

		It("Keeps the overlays sharing a compatible with the board", func() {
			dtbos, err := dtc.FindCompatibleDtbos(fs, editor, []string{"nvidia,jetson-xavier-nx", "nvidia,tegra194"}, "/boot")
			Expect(err).ToNot(HaveOccurred())
			Expect(dtbos).To(Equal([]string{"/boot/csi.dtbo"}))
		})

		It("Aborts on a DTB fdtget cannot read", func() {
			Expect(fs.WriteFile("/boot/dtb/corrupt.dtb", []byte("props: [truncated"), 0o644)).To(Succeed())
			_, err := dtc.FindCompatibleDtb(fs, editor, mocks.Compatible, mocks.Model, "/boot/dtb")
			Expect(errors.Is(err, constants.ErrMalformedDtb)).To(BeTrue())
			Expect(errors.Is(err, constants.ErrNoDtbFound)).To(BeFalse())
			Expect(err.Error()).To(ContainSubstring("/boot/dtb/corrupt.dtb"))
		})

		It("Aborts on an overlay fdtget cannot read", func() {
			Expect(fs.WriteFile("/boot/corrupt.dtbo", []byte("props: [truncated"), 0o644)).To(Succeed())
			_, err := dtc.FindCompatibleDtbos(fs, editor, []string{"nvidia,tegra194"}, "/boot")
			Expect(errors.Is(err, constants.ErrMalformedOverlay)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("/boot/corrupt.dtbo"))
		})

		It("Walks nodes carrying a property", func() {
			Expect(mocks.WriteBlob(fs, "/boot/csi.dtbo", mocks.Csi24Overlay())).To(Succeed())
			nodes, err := dtc.FindNodesWithProp(editor, "/boot/csi.dtbo", "/", "nvidia,pins")
			Expect(err).ToNot(HaveOccurred())
			Expect(nodes).To(Equal([]string{
				mocks.PinmuxPath + "/csi-pin1",
				mocks.PinmuxPath + "/csi-pin2",
				mocks.PinmuxPath + "/csi-pin3",
				mocks.PinmuxPath + "/csi-pin5",
				mocks.PinmuxPath + "/csi-pin5-spi1",
				mocks.PinmuxPath + "/csi-pin6",
				mocks.PinmuxPath + "/csi-pin6-gpio",
				mocks.PinmuxPath + "/hdr20-pin3",
			}))

			v, ok, err := dtc.GetRootProp(editor, "/boot/csi.dtbo", "overlay-name")
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("Jetson 24pin CSI Connector"))
		})
	})
})
