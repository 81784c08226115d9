package schema

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/arducam/jetson-io/internal/constants"
	"github.com/arducam/jetson-io/internal/utils"
)

// Config holds every host location the tool reads from or writes to.
type Config struct {
	BootDir    string // where overlays live and where generated overlays are written, e.g. /boot
	DtbDir     string // where the platform DTB lives, e.g. /boot/dtb
	Extlinux   string // bootloader configuration, e.g. /boot/extlinux/extlinux.conf
	DeviceTree string // live device tree, e.g. /proc/device-tree
	PinctrlDir string // pinctrl debugfs, e.g. /sys/kernel/debug/pinctrl
	MountRoot  string // where the active APP partition is mounted on network boot, e.g. /mnt
	LogDir     string
	Debug      bool
}

// DefaultConfig returns the stock L4T locations.
func DefaultConfig() Config {
	return Config{
		BootDir:    constants.DefaultBootDir,
		DtbDir:     filepath.Join(constants.DefaultBootDir, "dtb"),
		Extlinux:   constants.DefaultExtlinux,
		DeviceTree: constants.DefaultDeviceTree,
		PinctrlDir: constants.DefaultPinctrlDir,
		MountRoot:  constants.DefaultMountRoot,
		LogDir:     constants.LogDir,
	}
}

// SetBootDir moves the boot directory and the DTB and extlinux locations below it.
func (c *Config) SetBootDir(dir string) {
	c.BootDir = dir
	c.DtbDir = filepath.Join(dir, "dtb")
	c.Extlinux = filepath.Join(dir, "extlinux", "extlinux.conf")
}

// LoadConfig returns the defaults overridden by the env file and then by the process environment.
func LoadConfig(file string) (Config, error) {
	c := DefaultConfig()
	if file == "" {
		file = constants.DefaultConfigFile
	}
	env, err := utils.ReadEnv(file)
	if err != nil {
		return c, err
	}

	get := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return env[key]
	}
	set := func(key string, dst *string) {
		if v := get(key); v != "" {
			*dst = v
		}
	}

	bootDir := get("JETSON_IO_BOOT_DIR")
	if bootDir != "" {
		c.SetBootDir(bootDir)
	}
	set("JETSON_IO_DTB_DIR", &c.DtbDir)
	set("JETSON_IO_EXTLINUX", &c.Extlinux)
	set("JETSON_IO_DEVICE_TREE", &c.DeviceTree)
	set("JETSON_IO_PINCTRL_DIR", &c.PinctrlDir)
	set("JETSON_IO_MOUNT_ROOT", &c.MountRoot)
	set("JETSON_IO_LOG_DIR", &c.LogDir)
	if v := get("JETSON_IO_DEBUG"); v != "" {
		c.Debug, _ = strconv.ParseBool(v)
	}
	return c, nil
}
