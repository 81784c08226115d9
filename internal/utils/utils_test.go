package utils_test

import (
	"os"
	"path/filepath"

	"github.com/arducam/jetson-io/internal/utils"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/twpayne/go-vfs/v4"
	"github.com/twpayne/go-vfs/v4/vfst"
)

var _ = Describe("utils", func() {
	var fs vfs.FS
	var cleanup func()

	BeforeEach(func() {
		var err error
		fs, cleanup, err = vfst.NewTestFS(map[string]interface{}{
			"/boot/a.dtbo": "blob",
		})
		Expect(err).ToNot(HaveOccurred())
	})
	AfterEach(func() {
		cleanup()
	})

	Context("UniqueSlice", func() {
		It("Removes duplicates and sorts", func() {
			dups := []string{"d", "b", "c", "a", "b", "a"}
			Expect(utils.UniqueSlice(dups)).To(Equal([]string{"a", "b", "c", "d"}))
		})
	})
	Context("CleanupSlice", func() {
		It("Drops empty values", func() {
			Expect(utils.CleanupSlice([]string{"a", "", "  ", "b"})).To(Equal([]string{"a", "b"}))
		})
	})
	Context("ReadEnv", func() {
		It("Parses correctly an env file", func() {
			tmpDir, err := os.MkdirTemp("", "")
			Expect(err).ToNot(HaveOccurred())
			defer os.RemoveAll(tmpDir)
			err = os.WriteFile(filepath.Join(tmpDir, "jetson-io.env"), []byte("JETSON_IO_BOOT_DIR=\"/media/boot\"\nJETSON_IO_DEBUG=true\n"), os.ModePerm)
			Expect(err).ToNot(HaveOccurred())

			env, err := utils.ReadEnv(filepath.Join(tmpDir, "jetson-io.env"))
			Expect(err).ToNot(HaveOccurred())
			Expect(env).To(HaveKeyWithValue("JETSON_IO_BOOT_DIR", "/media/boot"))
			Expect(env).To(HaveKeyWithValue("JETSON_IO_DEBUG", "true"))
		})
		It("Returns an empty map for a missing file", func() {
			env, err := utils.ReadEnv("/nonexistent/jetson-io.env")
			Expect(err).ToNot(HaveOccurred())
			Expect(env).To(BeEmpty())
		})
	})
	Context("files", func() {
		It("Copies files keeping their content", func() {
			Expect(utils.CopyFile(fs, "/boot/a.dtbo", "/boot/b.dtbo")).To(Succeed())
			data, err := fs.ReadFile("/boot/b.dtbo")
			Expect(err).ToNot(HaveOccurred())
			Expect(string(data)).To(Equal("blob"))
		})
		It("Creates missing directories", func() {
			Expect(utils.Exists(fs, "/mnt/APP")).To(BeFalse())
			Expect(utils.CreateIfNotExists(fs, "/mnt/APP")).To(Succeed())
			Expect(utils.Exists(fs, "/mnt/APP")).To(BeTrue())
			Expect(utils.CreateIfNotExists(fs, "/mnt/APP")).To(Succeed())
		})
	})
	Context("SetLogger", func() {
		It("Writes debug entries to the log file", func() {
			dir := GinkgoT().TempDir()
			utils.SetLogger(true, dir)
			utils.Log.Debug().Str("header", "csi").Msg("selected")

			data, err := os.ReadFile(filepath.Join(dir, "jetson-io.log"))
			Expect(err).ToNot(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"header":"csi"`))
			Expect(string(data)).To(ContainSubstring(`"level":"debug"`))
		})
	})
	Context("console helpers", func() {
		It("Splits command output in lines", func() {
			Expect(utils.Lines("0\n\n  1 \n")).To(Equal([]string{"0", "1"}))
			Expect(utils.Lines("")).To(BeEmpty())
		})
		It("Quotes shell arguments", func() {
			Expect(utils.Quote("/boot/a b.dtbo")).To(Equal(`'/boot/a b.dtbo'`))
			Expect(utils.Quote("it's")).To(Equal(`'it'\''s'`))
		})
	})
})
