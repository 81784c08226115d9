package mocks

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arducam/jetson-io/pkg/dtc"
	"github.com/twpayne/go-vfs/v4"
	"gopkg.in/yaml.v3"
)

// Node is a device-tree node as stored by FakeEditor.
type Node struct {
	Props    map[string]string `yaml:"props,omitempty"`
	Children map[string]*Node  `yaml:"children,omitempty"`
}

// FakeEditor is a dtc.Editor storing blobs as YAML trees in files of FS, so
// copying a blob copies its tree.
type FakeEditor struct {
	FS vfs.FS
}

var _ dtc.Editor = &FakeEditor{}

// WriteBlob stores root as the blob file.
func WriteBlob(fs vfs.FS, file string, root *Node) error {
	data, err := yaml.Marshal(root)
	if err != nil {
		return err
	}
	return fs.WriteFile(file, data, 0o644)
}

// ReadBlob loads the blob file.
func ReadBlob(fs vfs.FS, file string) (*Node, error) {
	data, err := fs.ReadFile(file)
	if err != nil {
		return nil, err
	}
	root := &Node{}
	if err := yaml.Unmarshal(data, root); err != nil {
		return nil, err
	}
	return root, nil
}

// Lookup returns the node at the absolute path p, or nil.
func (n *Node) Lookup(p string) *Node {
	cur := n
	for _, c := range strings.Split(strings.Trim(p, "/"), "/") {
		if c == "" {
			continue
		}
		if cur.Children == nil || cur.Children[c] == nil {
			return nil
		}
		cur = cur.Children[c]
	}
	return cur
}

// Walk calls f for every node below n, with its absolute path.
func (n *Node) Walk(f func(p string, node *Node)) {
	var walk func(p string, node *Node)
	walk = func(p string, node *Node) {
		f(p, node)
		names := make([]string, 0, len(node.Children))
		for name := range node.Children {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			walk(strings.TrimSuffix(p, "/")+"/"+name, node.Children[name])
		}
	}
	walk("/", n)
}

func (f *FakeEditor) node(file, p string) (*Node, *Node, error) {
	root, err := ReadBlob(f.FS, file)
	if err != nil {
		return nil, nil, err
	}
	n := root.Lookup(p)
	if n == nil {
		return nil, nil, fmt.Errorf("%s: node %s not found", file, p)
	}
	return root, n, nil
}

func (f *FakeEditor) GetProp(file, node, prop string) (string, bool, error) {
	_, n, err := f.node(file, node)
	if err != nil {
		return "", false, err
	}
	v, ok := n.Props[prop]
	return v, ok, nil
}

func (f *FakeEditor) SetProp(file, node, prop string, _ dtc.Kind, value string) error {
	root, n, err := f.node(file, node)
	if err != nil {
		return err
	}
	if n.Props == nil {
		n.Props = map[string]string{}
	}
	n.Props[prop] = value
	return WriteBlob(f.FS, file, root)
}

func (f *FakeEditor) DeleteProp(file, node, prop string) error {
	root, n, err := f.node(file, node)
	if err != nil {
		return err
	}
	delete(n.Props, prop)
	return WriteBlob(f.FS, file, root)
}

func (f *FakeEditor) RemoveNode(file, node string) error {
	p := strings.Trim(node, "/")
	i := strings.LastIndex(p, "/")
	parent, name := "/", p
	if i >= 0 {
		parent, name = "/"+p[:i], p[i+1:]
	}
	root, n, err := f.node(file, parent)
	if err != nil {
		return err
	}
	if _, ok := n.Children[name]; !ok {
		return fmt.Errorf("%s: node %s not found", file, node)
	}
	delete(n.Children, name)
	return WriteBlob(f.FS, file, root)
}

func (f *FakeEditor) ListNodes(file, node string) ([]string, error) {
	_, n, err := f.node(file, node)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
