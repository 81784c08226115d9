// Package dt reads the live device tree exported by the kernel, where every
// node is a directory and every property a file.
package dt

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/twpayne/go-vfs/v4"
)

// Reader reads properties from a device tree rooted at Root on FS.
type Reader struct {
	FS   vfs.FS
	Root string // e.g. /proc/device-tree
}

func NewReader(fs vfs.FS, root string) *Reader {
	return &Reader{FS: fs, Root: root}
}

func (r *Reader) path(p string) string {
	return filepath.Join(r.Root, strings.TrimPrefix(p, "/"))
}

// PropExists reports whether the property (or node) at path exists.
func (r *Reader) PropExists(path string) bool {
	_, err := r.FS.Stat(r.path(path))
	return err == nil
}

// ReadProp returns the property at path as a string. String lists are
// returned space separated, the trailing NUL is dropped.
func (r *Reader) ReadProp(path string) (string, error) {
	data, err := r.FS.ReadFile(r.path(path))
	if err != nil {
		return "", err
	}
	return DecodeString(data), nil
}

// ChildNodes returns the sorted names of the nodes directly under path.
func (r *Reader) ChildNodes(path string) ([]string, error) {
	entries, err := r.FS.ReadDir(r.path(path))
	if err != nil {
		return nil, err
	}
	var nodes []string
	for _, e := range entries {
		if e.IsDir() {
			nodes = append(nodes, e.Name())
		}
	}
	sort.Strings(nodes)
	return nodes, nil
}

// DecodeString converts a raw DT string or string list property to text.
func DecodeString(data []byte) string {
	s := strings.TrimRight(string(data), "\x00")
	return strings.ReplaceAll(s, "\x00", " ")
}
