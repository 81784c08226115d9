package partition

import (
	"path/filepath"
	"strings"

	"github.com/containerd/containerd/mount"
	"github.com/deniswernert/go-fstab"
	"github.com/foxboron/go-uefi/efi"
	"github.com/jaypipes/ghw"
	"github.com/moby/sys/mountinfo"
	"golang.org/x/sys/unix"
)

// Partition is a block device partition as seen by the host.
type Partition struct {
	Name       string // e.g. mmcblk0p1
	Label      string // partition label, e.g. APP
	MountPoint string
	FSType     string
}

// System is the host state the partition helpers need.
type System interface {
	Partitions() ([]Partition, error)
	// RootMount returns the mount entry of /, or nil if there is none.
	RootMount() (*mountinfo.Info, error)
	Mounted(path string) (bool, error)
	Mount(m mount.Mount, target string) error
	Unmount(target string) error
	// Writable reports whether path is on a read-write mount and writable by us.
	Writable(path string) (bool, error)
	SecureBoot() bool
}

// Host is the System of the running machine.
type Host struct{}

func (Host) Partitions() ([]Partition, error) {
	blk, err := ghw.Block()
	if err != nil {
		return nil, err
	}
	var parts []Partition
	for _, disk := range blk.Disks {
		for _, p := range disk.Partitions {
			parts = append(parts, Partition{
				Name:       p.Name,
				Label:      p.Label,
				MountPoint: p.MountPoint,
				FSType:     p.Type,
			})
		}
	}
	return parts, nil
}

func (Host) RootMount() (*mountinfo.Info, error) {
	mounts, err := mountinfo.GetMounts(mountinfo.SingleEntryFilter("/"))
	if err != nil {
		return nil, err
	}
	if len(mounts) == 0 {
		return nil, nil
	}
	return mounts[len(mounts)-1], nil
}

func (Host) Mounted(path string) (bool, error) {
	return mountinfo.Mounted(path)
}

func (Host) Mount(m mount.Mount, target string) error {
	return mount.All([]mount.Mount{m}, target)
}

func (Host) Unmount(target string) error {
	return mount.UnmountAll(target, 0)
}

func (Host) Writable(path string) (bool, error) {
	mounts, err := fstab.ParseProc()
	if err != nil {
		return false, err
	}
	// the longest mountpoint containing path is the one backing it
	var backing *fstab.Mount
	for _, m := range mounts {
		if !within(path, m.File) {
			continue
		}
		if backing == nil || len(m.File) >= len(backing.File) {
			backing = m
		}
	}
	if backing != nil {
		if _, ro := backing.MntOps["ro"]; ro {
			return false, nil
		}
	}
	return unix.Access(path, unix.W_OK) == nil, nil
}

func (Host) SecureBoot() bool {
	return efi.GetSecureBoot()
}

func within(path, mountpoint string) bool {
	path = filepath.Clean(path)
	mountpoint = filepath.Clean(mountpoint)
	if mountpoint == "/" || path == mountpoint {
		return true
	}
	return strings.HasPrefix(path, mountpoint+"/")
}
