// Package dtc edits flattened device-tree blobs (DTB/DTBO) on disk.
package dtc

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/arducam/jetson-io/internal/constants"
	"github.com/arducam/jetson-io/internal/utils"
	"github.com/twpayne/go-vfs/v4"
)

// Kind is the encoding used when writing a property.
type Kind string

const (
	String Kind = "s"
	Uint   Kind = "u"
)

// Editor reads and modifies properties and nodes of a blob, addressed by
// absolute node path. File paths are relative to the editor filesystem.
type Editor interface {
	// GetProp returns the property value, string lists space separated.
	// ok is false when the property does not exist.
	GetProp(file, node, prop string) (value string, ok bool, err error)
	SetProp(file, node, prop string, kind Kind, value string) error
	// DeleteProp is a no-op when the property does not exist.
	DeleteProp(file, node, prop string) error
	RemoveNode(file, node string) error
	// ListNodes returns the names of the direct children of node.
	ListNodes(file, node string) ([]string, error)
}

// FdtTool is an Editor backed by the fdtget and fdtput utilities from dtc.
type FdtTool struct {
	FS      vfs.FS
	Console utils.Console
}

func NewFdtTool(fs vfs.FS, c utils.Console) *FdtTool {
	return &FdtTool{FS: fs, Console: c}
}

func (f *FdtTool) raw(file string) (string, error) {
	return f.FS.RawPath(file)
}

func (f *FdtTool) run(format string, file string, args ...string) (string, error) {
	p, err := f.raw(file)
	if err != nil {
		return "", err
	}
	quoted := make([]string, 0, len(args))
	for _, a := range args {
		quoted = append(quoted, utils.Quote(a))
	}
	return f.Console.Run(fmt.Sprintf(format, utils.Quote(p), strings.Join(quoted, " ")))
}

func (f *FdtTool) listProps(file, node string) ([]string, error) {
	out, err := f.run("fdtget -p %s %s", file, node)
	if err != nil {
		return nil, err
	}
	return utils.Lines(out), nil
}

func (f *FdtTool) GetProp(file, node, prop string) (string, bool, error) {
	props, err := f.listProps(file, node)
	if err != nil {
		return "", false, err
	}
	if !contains(props, prop) {
		return "", false, nil
	}
	out, err := f.run("fdtget -t s %s %s", file, node, prop)
	if err != nil {
		return "", false, err
	}
	return strings.TrimSpace(out), true, nil
}

func (f *FdtTool) SetProp(file, node, prop string, kind Kind, value string) error {
	_, err := f.run("fdtput -t "+string(kind)+" %s %s", file, node, prop, value)
	return err
}

func (f *FdtTool) DeleteProp(file, node, prop string) error {
	props, err := f.listProps(file, node)
	if err != nil {
		return err
	}
	if !contains(props, prop) {
		return nil
	}
	_, err = f.run("fdtput -d %s %s", file, node, prop)
	return err
}

func (f *FdtTool) RemoveNode(file, node string) error {
	_, err := f.run("fdtput -r %s %s", file, node)
	return err
}

func (f *FdtTool) ListNodes(file, node string) ([]string, error) {
	out, err := f.run("fdtget -l %s %s", file, node)
	if err != nil {
		return nil, err
	}
	return utils.Lines(out), nil
}

// FindNodesWithProp walks the tree below root and returns, sorted, the
// absolute paths of every node carrying prop.
func FindNodesWithProp(e Editor, file, root, prop string) ([]string, error) {
	var found []string
	var walk func(node string) error
	walk = func(node string) error {
		if _, ok, err := e.GetProp(file, node, prop); err != nil {
			return err
		} else if ok {
			found = append(found, node)
		}
		children, err := e.ListNodes(file, node)
		if err != nil {
			return err
		}
		for _, c := range children {
			if err := walk(path.Join(node, c)); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}

// GetRootProp is a shortcut for reading a property of the root node.
func GetRootProp(e Editor, file, prop string) (string, bool, error) {
	return e.GetProp(file, "/", prop)
}

// FindCompatibleDtb returns the single DTB under dir whose compatible and
// model match the running board.
func FindCompatibleDtb(fs vfs.FS, e Editor, compat, model, dir string) (string, error) {
	files, err := fs.Glob(path.Join(dir, "*.dtb"))
	if err != nil {
		return "", err
	}
	sort.Strings(files)

	var dtbs []string
	for _, f := range files {
		c, ok, err := GetRootProp(e, f, constants.PropCompatible)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", constants.ErrMalformedDtb, f, err)
		}
		if !ok {
			utils.Log.Debug().Str("dtb", f).Msg("Skipping DTB without compatible")
			continue
		}
		m, _, err := GetRootProp(e, f, constants.PropModel)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", constants.ErrMalformedDtb, f, err)
		}
		if c == compat && m == model {
			dtbs = append(dtbs, f)
		}
	}

	switch len(dtbs) {
	case 0:
		return "", fmt.Errorf("%w for %s", constants.ErrNoDtbFound, model)
	case 1:
		return dtbs[0], nil
	default:
		return "", fmt.Errorf("%w for %s: %s", constants.ErrMultipleDtbFound, model, strings.Join(dtbs, ", "))
	}
}

// FindCompatibleDtbos returns, sorted, every overlay under dir that declares
// at least one of the board compatible strings.
func FindCompatibleDtbos(fs vfs.FS, e Editor, compat []string, dir string) ([]string, error) {
	files, err := fs.Glob(path.Join(dir, "*.dtbo"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var dtbos []string
	for _, f := range files {
		c, ok, err := GetRootProp(e, f, constants.PropCompatible)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", constants.ErrMalformedOverlay, f, err)
		}
		if !ok {
			utils.Log.Debug().Str("dtbo", f).Msg("Skipping overlay without compatible")
			continue
		}
		for _, oc := range strings.Fields(c) {
			if contains(compat, oc) {
				dtbos = append(dtbos, f)
				break
			}
		}
	}
	return dtbos, nil
}

func contains(list []string, s string) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}
	return false
}
