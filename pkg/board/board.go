// Package board discovers the headers of the running board and turns the
// pin state of the active header into a device-tree overlay referenced by
// the next boot.
package board

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arducam/jetson-io/internal/constants"
	"github.com/arducam/jetson-io/internal/utils"
	"github.com/arducam/jetson-io/pkg/dt"
	"github.com/arducam/jetson-io/pkg/dtc"
	"github.com/arducam/jetson-io/pkg/header"
	"github.com/arducam/jetson-io/pkg/headers"
	"github.com/arducam/jetson-io/pkg/overlay"
	"github.com/arducam/jetson-io/pkg/partition"
	"github.com/arducam/jetson-io/pkg/pinctrl"
	"github.com/arducam/jetson-io/pkg/pmx"
	"github.com/arducam/jetson-io/pkg/schema"
	"github.com/twpayne/go-vfs/v4"
)

// DeviceTree is the read-only view of the live device tree.
type DeviceTree interface {
	PropExists(path string) bool
	ReadProp(path string) (string, error)
	ChildNodes(path string) ([]string, error)
}

// BoardHeader is a header found on the board together with its overlays.
type BoardHeader struct {
	Def     headers.Definition
	Overlay string            // header overlay
	Addons  map[string]string // addon name -> overlay
	Preconf []string          // SoC pins recorded by earlier sessions
}

type Board struct {
	cfg     schema.Config
	fs      vfs.FS
	sys     partition.System
	console utils.Console
	editor  dtc.Editor
	tree    DeviceTree
	pinctrl pinctrl.Source
	catalog []headers.Definition
	now     func() time.Time

	appdir string // mounted APP partition, empty when / is the APP partition

	Compat string
	Model  string
	Dtb    string
	Pinmux *pmx.Snapshot

	boardHeaders map[string]*BoardHeader
	runtimes     map[string]*header.Header
	active       string
}

type Option func(*Board)

func WithFS(fs vfs.FS) Option {
	return func(b *Board) { b.fs = fs }
}

func WithSystem(s partition.System) Option {
	return func(b *Board) { b.sys = s }
}

func WithConsole(c utils.Console) Option {
	return func(b *Board) { b.console = c }
}

func WithEditor(e dtc.Editor) Option {
	return func(b *Board) { b.editor = e }
}

func WithDeviceTree(t DeviceTree) Option {
	return func(b *Board) { b.tree = t }
}

func WithPinctrl(p pinctrl.Source) Option {
	return func(b *Board) { b.pinctrl = p }
}

func WithCatalog(c []headers.Definition) Option {
	return func(b *Board) { b.catalog = c }
}

// WithClock sets the time source used to stamp generated overlays and boot entries.
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// New discovers the board. On network booted systems the active APP
// partition is mounted; the caller must Close the board to release it. If
// New fails nothing is left mounted.
func New(cfg schema.Config, opts ...Option) (b *Board, err error) {
	b = &Board{
		cfg:          cfg,
		fs:           vfs.OSFS,
		sys:          partition.Host{},
		catalog:      headers.All(),
		now:          time.Now,
		boardHeaders: map[string]*BoardHeader{},
		runtimes:     map[string]*header.Header{},
	}
	for _, o := range opts {
		o(b)
	}
	if b.console == nil {
		b.console = utils.NewConsole()
	}
	if b.editor == nil {
		b.editor = dtc.NewFdtTool(b.fs, b.console)
	}
	if b.tree == nil {
		b.tree = dt.NewReader(b.fs, cfg.DeviceTree)
	}
	if b.pinctrl == nil {
		b.pinctrl = pinctrl.NewDebugfs(b.fs, cfg.PinctrlDir)
	}

	defer func() {
		if err != nil {
			if cerr := b.Close(); cerr != nil {
				utils.Log.Err(cerr).Msg("Releasing partition after failed discovery")
			}
			b = nil
		}
	}()

	if err = b.checkWritable(cfg.BootDir); err != nil {
		return b, err
	}
	if err = b.mountActivePartition(); err != nil {
		return b, err
	}

	if b.Compat, err = b.tree.ReadProp(constants.PropCompatible); err != nil {
		return b, fmt.Errorf("%w: reading board compatible: %s", constants.ErrDiscovery, err)
	}
	if b.Model, err = b.tree.ReadProp(constants.PropModel); err != nil {
		return b, fmt.Errorf("%w: reading board model: %s", constants.ErrDiscovery, err)
	}
	utils.Log.Info().Str("model", b.Model).Str("compatible", b.Compat).Msg("Board")

	if b.Dtb, err = dtc.FindCompatibleDtb(b.fs, b.editor, b.Compat, b.Model, b.rooted(cfg.DtbDir)); err != nil {
		return b, err
	}
	dtbos, err := dtc.FindCompatibleDtbos(b.fs, b.editor, strings.Fields(b.Compat), b.rooted(cfg.BootDir))
	if err != nil {
		return b, err
	}
	if b.Pinmux, err = pmx.New(b.tree, b.pinctrl); err != nil {
		return b, err
	}
	if err = b.loadHeaders(dtbos); err != nil {
		return b, err
	}
	return b, nil
}

// mountActivePartition mounts the APP partition of the active slot when it
// is not already the block device mounted at /, as is the case on NFS root.
func (b *Board) mountActivePartition() error {
	slot, err := partition.ActiveSlot(b.console)
	if err != nil {
		return err
	}
	label, err := partition.LabelForSlot(slot)
	if err != nil {
		return err
	}
	isRoot, err := partition.IsRootMountpoint(b.sys, b.fs, label)
	if err != nil {
		return err
	}
	if isRoot {
		return nil
	}

	utils.Log.Info().Str("label", label).Msg("Root is not the active APP partition, mounting it")
	where, err := partition.Mount(b.sys, b.fs, label, b.cfg.MountRoot)
	if err != nil {
		return err
	}
	b.appdir = where
	return b.checkWritable(where)
}

func (b *Board) checkWritable(p string) error {
	raw, err := b.fs.RawPath(p)
	if err != nil {
		return err
	}
	rw, err := b.sys.Writable(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", constants.ErrReadOnly, p, err)
	}
	if !rw {
		return fmt.Errorf("%w: %s", constants.ErrReadOnly, p)
	}
	return nil
}

// rooted re-roots p under the mounted APP partition, if any.
func (b *Board) rooted(p string) string {
	if b.appdir == "" {
		return p
	}
	return filepath.Join(b.appdir, p)
}

// unrooted strips the mounted APP partition from p, if any.
func (b *Board) unrooted(p string) string {
	if b.appdir == "" {
		return p
	}
	if rel := strings.TrimPrefix(p, b.appdir); rel != p && strings.HasPrefix(rel, "/") {
		return rel
	}
	return p
}

// Close releases the partition mounted by New. It is safe to call more than once.
func (b *Board) Close() error {
	if b.appdir == "" {
		return nil
	}
	where := b.appdir
	b.appdir = ""
	return partition.Unmount(b.sys, b.fs, where)
}

// AppDir returns where the APP partition is mounted, empty if it was not.
func (b *Board) AppDir() string {
	return b.appdir
}

func (b *Board) loadHeaders(dtbos []string) error {
	set, err := overlay.Discover(b.editor, dtbos, headers.Names(b.catalog))
	if err != nil {
		return err
	}
	preconf, err := PreconfiguredPins(b.tree, headers.Prefixes(b.catalog))
	if err != nil {
		return err
	}

	for _, def := range b.catalog {
		dtbo, ok := set.Headers[def.Name]
		if !ok {
			continue
		}
		addons := set.Addons[def.Name]
		if addons == nil {
			addons = map[string]string{}
		}
		b.boardHeaders[def.Name] = &BoardHeader{
			Def:     def,
			Overlay: dtbo,
			Addons:  addons,
			Preconf: preconf[def.Prefix],
		}
		utils.Log.Debug().Str("header", def.Name).Str("dtbo", dtbo).Int("addons", len(addons)).Msg("Header available")
	}
	return nil
}

// Headers returns the names of the headers found, in catalog order.
func (b *Board) Headers() []string {
	var names []string
	for _, def := range b.catalog {
		if _, ok := b.boardHeaders[def.Name]; ok {
			names = append(names, def.Name)
		}
	}
	return names
}

// BoardHeader returns the discovery result for name.
func (b *Board) BoardHeader(name string) (*BoardHeader, bool) {
	bh, ok := b.boardHeaders[name]
	return bh, ok
}

// PreconfiguredPinsAvailable reports whether an earlier session configured pins of name.
func (b *Board) PreconfiguredPinsAvailable(name string) bool {
	bh, ok := b.boardHeaders[name]
	return ok && len(bh.Preconf) > 0
}

// SetActiveHeader selects the header later operations act on. Its runtime
// is built on first selection and kept for the rest of the run.
func (b *Board) SetActiveHeader(name string) error {
	bh, ok := b.boardHeaders[name]
	if !ok {
		return fmt.Errorf("%w %s", constants.ErrUnknownHeader, name)
	}
	if _, ok := b.runtimes[name]; !ok {
		h, err := header.New(b.editor, bh.Overlay, bh.Def, bh.Preconf, b.Pinmux)
		if err != nil {
			return err
		}
		b.runtimes[name] = h
	}
	b.active = name
	return nil
}

// ActiveHeaderName returns the selected header, empty if none.
func (b *Board) ActiveHeaderName() string {
	return b.active
}

// ActiveHeader returns the runtime of the selected header.
func (b *Board) ActiveHeader() (*header.Header, error) {
	if b.active == "" {
		return nil, constants.ErrNoActiveHeader
	}
	return b.runtimes[b.active], nil
}

// Addons returns the addon names of the selected header, sorted.
func (b *Board) Addons() []string {
	bh, ok := b.boardHeaders[b.active]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(bh.Addons))
	for n := range bh.Addons {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// HwAddonLoad resets the selected header and applies the pin functions of
// the addon overlay name. On failure the header is left reset.
func (b *Board) HwAddonLoad(name string) error {
	h, err := b.ActiveHeader()
	if err != nil {
		return err
	}
	dtbo, ok := b.boardHeaders[b.active].Addons[name]
	if !ok {
		return fmt.Errorf("%w %s", constants.ErrNoOverlayForAddon, name)
	}

	h.Reset()
	nodes, err := dtc.FindNodesWithProp(b.editor, dtbo, "/", constants.PropFunction)
	if err != nil {
		return err
	}
	for _, node := range nodes {
		pin, ok := pinctrl.ParsePinFromPath(h.Prefix(), node)
		if !ok {
			h.Reset()
			return fmt.Errorf("%w %s", constants.ErrNodePinParse, node)
		}
		function, _, err := b.editor.GetProp(dtbo, node, constants.PropFunction)
		if err != nil {
			h.Reset()
			return err
		}
		if err := h.SetFunction(pin, function); err != nil {
			h.Reset()
			return err
		}
	}
	utils.Log.Info().Str("header", b.active).Str("addon", name).Int("pins", len(nodes)).Msg("Addon loaded")
	return nil
}

// SetPinFunction selects function on a pin of the active header.
func (b *Board) SetPinFunction(pin int, function string) error {
	h, err := b.ActiveHeader()
	if err != nil {
		return err
	}
	return h.SetFunction(pin, function)
}

// DisablePin disables a pin of the active header.
func (b *Board) DisablePin(pin int) error {
	h, err := b.ActiveHeader()
	if err != nil {
		return err
	}
	return h.Disable(pin)
}
