package mocks

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/arducam/jetson-io/pkg/partition"
	"github.com/containerd/containerd/mount"
	"github.com/moby/sys/mountinfo"
)

// FakeConsole answers commands by prefix and records every command run.
type FakeConsole struct {
	Outputs  map[string]string
	Errors   map[string]error
	Commands []string
}

func NewFakeConsole() *FakeConsole {
	return &FakeConsole{Outputs: map[string]string{}, Errors: map[string]error{}}
}

func (c *FakeConsole) Run(cmd string, _ ...func(cmd *exec.Cmd)) (string, error) {
	c.Commands = append(c.Commands, cmd)
	for prefix, err := range c.Errors {
		if strings.HasPrefix(cmd, prefix) {
			return "", err
		}
	}
	for prefix, out := range c.Outputs {
		if strings.HasPrefix(cmd, prefix) {
			return out, nil
		}
	}
	return "", nil
}

// FakeSystem is a partition.System recording mounts.
type FakeSystem struct {
	Parts    []partition.Partition
	Root     *mountinfo.Info
	ReadOnly bool
	Secure   bool
	MountErr error

	// OnMount runs after a successful mount, e.g. to populate the target.
	OnMount func(target string) error
	// OnUnmount runs after a successful unmount, e.g. to empty the target.
	OnUnmount func(target string) error

	Mounts   []mount.Mount
	Targets  []string
	Unmounts []string
	mounted  map[string]bool
}

var _ partition.System = &FakeSystem{}

func (s *FakeSystem) Partitions() ([]partition.Partition, error) {
	return s.Parts, nil
}

func (s *FakeSystem) RootMount() (*mountinfo.Info, error) {
	return s.Root, nil
}

func (s *FakeSystem) Mounted(path string) (bool, error) {
	return s.mounted[path], nil
}

func (s *FakeSystem) Mount(m mount.Mount, target string) error {
	if s.MountErr != nil {
		return s.MountErr
	}
	if s.mounted == nil {
		s.mounted = map[string]bool{}
	}
	s.mounted[target] = true
	s.Mounts = append(s.Mounts, m)
	s.Targets = append(s.Targets, target)
	if s.OnMount != nil {
		return s.OnMount(target)
	}
	return nil
}

func (s *FakeSystem) Unmount(target string) error {
	if !s.mounted[target] {
		return fmt.Errorf("%s is not mounted", target)
	}
	delete(s.mounted, target)
	s.Unmounts = append(s.Unmounts, target)
	if s.OnUnmount != nil {
		return s.OnUnmount(target)
	}
	return nil
}

func (s *FakeSystem) Writable(string) (bool, error) {
	return !s.ReadOnly, nil
}

func (s *FakeSystem) SecureBoot() bool {
	return s.Secure
}
