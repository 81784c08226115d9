// Package partition finds the partition the bootloader reads from and, on
// network booted systems, mounts it for the duration of a run.
package partition

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arducam/jetson-io/internal/constants"
	"github.com/arducam/jetson-io/internal/utils"
	"github.com/containerd/containerd/mount"
	"github.com/hashicorp/go-multierror"
	"github.com/twpayne/go-vfs/v4"
)

// LabelForSlot maps the active rootfs slot reported by nvbootctrl to the APP partition label.
func LabelForSlot(slot string) (string, error) {
	switch strings.TrimSpace(slot) {
	case "0":
		return constants.PartLabelSlotA, nil
	case "1":
		return constants.PartLabelSlotB, nil
	default:
		return "", fmt.Errorf("%w: slot %q", constants.ErrActiveSlot, slot)
	}
}

// ActiveSlot asks nvbootctrl which rootfs slot is booted.
func ActiveSlot(c utils.Console) (string, error) {
	out, err := c.Run("nvbootctrl -t rootfs get-current-slot")
	if err != nil {
		return "", fmt.Errorf("%w: %s", constants.ErrActiveSlot, err)
	}
	lines := utils.Lines(out)
	if len(lines) == 0 {
		return "", fmt.Errorf("%w: empty answer", constants.ErrActiveSlot)
	}
	return lines[0], nil
}

// RootIsBlockDevice reports whether / is backed by a block device, which is
// not the case on NFS root.
func RootIsBlockDevice(sys System, fs vfs.FS) (bool, error) {
	info, err := sys.RootMount()
	if err != nil {
		return false, fmt.Errorf("%w: %s", constants.ErrRootNotFound, err)
	}
	if info == nil {
		return false, constants.ErrRootNotFound
	}
	return utils.Exists(fs, fmt.Sprintf("/dev/block/%d:%d", info.Major, info.Minor)), nil
}

// RootPartLabel returns the label of the partition mounted at /, if any.
func RootPartLabel(sys System) (string, error) {
	parts, err := sys.Partitions()
	if err != nil {
		return "", err
	}
	for _, p := range parts {
		if p.MountPoint == "/" {
			return p.Label, nil
		}
	}
	return "", nil
}

// Find returns the only partition labelled label.
func Find(sys System, label string) (Partition, error) {
	parts, err := sys.Partitions()
	if err != nil {
		return Partition{}, err
	}
	var found []Partition
	for _, p := range parts {
		if p.Label == label {
			found = append(found, p)
		}
	}
	switch len(found) {
	case 0:
		return Partition{}, fmt.Errorf("%w: no %s partition", constants.ErrPartitionNotFound, label)
	case 1:
		return found[0], nil
	default:
		return Partition{}, fmt.Errorf("%w: %d partitions labelled %s", constants.ErrMultiplePartitions, len(found), label)
	}
}

// IsRootMountpoint reports whether the partition labelled label is the block device mounted at /.
func IsRootMountpoint(sys System, fs vfs.FS, label string) (bool, error) {
	block, err := RootIsBlockDevice(sys, fs)
	if err != nil || !block {
		return false, err
	}
	root, err := RootPartLabel(sys)
	if err != nil {
		return false, err
	}
	return root == label, nil
}

type MountOperation struct {
	MountOption     mount.Mount
	Target          string
	PrepareCallback func() error
}

func (m MountOperation) Run(sys System) error {
	l := utils.Log.With().Str("what", m.MountOption.Source).Str("where", m.Target).Str("type", m.MountOption.Type).Logger()

	if m.PrepareCallback != nil {
		if err := m.PrepareCallback(); err != nil {
			l.Warn().Err(err).Msg("executing mount callback")
			return err
		}
	}
	mounted, err := sys.Mounted(m.Target)
	if err != nil {
		l.Warn().Err(err).Msg("checking mount status")
		return err
	}
	if mounted {
		l.Debug().Msg("Already mounted")
		return fmt.Errorf("%w: %s", constants.ErrAlreadyMounted, m.Target)
	}
	if err := sys.Mount(m.MountOption, m.Target); err != nil {
		return fmt.Errorf("%w: %s on %s: %s", constants.ErrMount, m.MountOption.Source, m.Target, err)
	}
	l.Info().Msg("mount done")
	return nil
}

// Mount mounts the partition labelled label on <root>/<label>. The
// mountpoint must not exist beforehand; it is created and owned by the caller
// until Unmount.
func Mount(sys System, fs vfs.FS, label, root string) (string, error) {
	part, err := Find(sys, label)
	if err != nil {
		return "", err
	}
	where := filepath.Join(root, label)
	if utils.Exists(fs, where) {
		return "", fmt.Errorf("%w: %s", constants.ErrMountpointExists, where)
	}

	fsType := part.FSType
	if fsType == "" {
		fsType = "ext4"
	}
	op := MountOperation{
		MountOption: mount.Mount{
			Type:   fsType,
			Source: filepath.Join("/dev/disk/by-partlabel", label),
		},
		Target: where,
		PrepareCallback: func() error {
			return utils.CreateIfNotExists(fs, where)
		},
	}
	if err := op.Run(sys); err != nil {
		_ = fs.Remove(where)
		return "", err
	}
	return where, nil
}

// Unmount releases a mountpoint created by Mount and removes it. The removal
// is attempted even when unmounting fails: rmdir refuses a busy mountpoint
// but cleans up one that is no longer mounted. Both failures are reported.
func Unmount(sys System, fs vfs.FS, where string) error {
	var errs error
	utils.Log.Debug().Str("where", where).Msg("Unmounting")
	if err := sys.Unmount(where); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("%w: %s: %s", constants.ErrUnmount, where, err))
	}
	if err := fs.Remove(where); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("removing mountpoint %s: %w", where, err))
	}
	return errs
}
