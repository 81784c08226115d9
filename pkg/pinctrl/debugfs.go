// Package pinctrl reads the kernel pin-control debug interface and turns its
// text dumps into typed records.
package pinctrl

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arducam/jetson-io/internal/constants"
	"github.com/twpayne/go-vfs/v4"
)

// Source returns pin configuration and function tables for a pinmux device.
type Source interface {
	PinconfGroups(dev string) ([]PinConfig, error)
	Functions(dev string) ([]Function, error)
}

// Debugfs is a Source reading /sys/kernel/debug/pinctrl/<dev>.pinmux.
type Debugfs struct {
	FS   vfs.FS
	Root string
}

func NewDebugfs(fs vfs.FS, root string) *Debugfs {
	return &Debugfs{FS: fs, Root: root}
}

func (d *Debugfs) read(dev, file string) (string, error) {
	data, err := d.FS.ReadFile(filepath.Join(d.Root, dev+".pinmux", file))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (d *Debugfs) PinconfGroups(dev string) ([]PinConfig, error) {
	text, err := d.read(dev, "pinconf-groups")
	if err != nil {
		return nil, err
	}
	return ParsePinconfGroups(text)
}

func (d *Debugfs) Functions(dev string) ([]Function, error) {
	text, err := d.read(dev, "pinmux-functions")
	if err != nil {
		return nil, err
	}
	return ParseFunctions(text)
}

// DeviceFromSymbol extracts the pinmux device id from a symbol value such as
// /bus@0/pinmux@2430000.
func DeviceFromSymbol(symbol string) (string, error) {
	_, dev, found := strings.Cut(symbol, "pinmux@")
	if !found || dev == "" {
		return "", fmt.Errorf("%w: no pinmux device in %q", constants.ErrMalformedPinctrl, symbol)
	}
	return dev, nil
}
