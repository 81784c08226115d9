package constants

import (
	"errors"
	"fmt"
)

// Error categories. Every concrete error below wraps exactly one of them.
var (
	ErrDiscovery         = errors.New("discovery error")
	ErrPartition         = errors.New("partition error")
	ErrHeader            = errors.New("header error")
	ErrOverlayGeneration = errors.New("overlay generation error")
	ErrPublish           = errors.New("publish error")
)

var (
	ErrNoDtbFound       = fmt.Errorf("%w: no DTB found", ErrDiscovery)
	ErrMultipleDtbFound = fmt.Errorf("%w: multiple DTBs found", ErrDiscovery)
	ErrMalformedDtb     = fmt.Errorf("%w: malformed DTB", ErrDiscovery)
	ErrMalformedOverlay = fmt.Errorf("%w: malformed overlay", ErrDiscovery)
	ErrDuplicateOverlay = fmt.Errorf("%w: multiple DT overlays found", ErrDiscovery)
	ErrPinNotFound      = fmt.Errorf("%w: pin not found in pinmux", ErrDiscovery)
	ErrMalformedPinctrl = fmt.Errorf("%w: malformed pinctrl data", ErrDiscovery)

	ErrRootNotFound       = fmt.Errorf("%w: root partition not found", ErrPartition)
	ErrPartitionNotFound  = fmt.Errorf("%w: partition not found", ErrPartition)
	ErrMultiplePartitions = fmt.Errorf("%w: multiple partitions found", ErrPartition)
	ErrMountpointExists   = fmt.Errorf("%w: mountpoint already exists", ErrPartition)
	ErrAlreadyMounted     = fmt.Errorf("%w: already mounted", ErrPartition)
	ErrMount              = fmt.Errorf("%w: mount failed", ErrPartition)
	ErrUnmount            = fmt.Errorf("%w: umount failed", ErrPartition)
	ErrActiveSlot         = fmt.Errorf("%w: failed to get active rootfs partition", ErrPartition)
	ErrReadOnly           = fmt.Errorf("%w: not writable", ErrPartition)

	ErrUnknownHeader      = fmt.Errorf("%w: unknown header", ErrHeader)
	ErrNoOverlayForAddon  = fmt.Errorf("%w: no overlay found for addon", ErrHeader)
	ErrPinNotConfigurable = fmt.Errorf("%w: pin is not configurable", ErrHeader)
	ErrNodePinParse       = fmt.Errorf("%w: failed to get pin number for node", ErrHeader)
	ErrUnknownFunction    = fmt.Errorf("%w: function not available for pin", ErrHeader)
	ErrNoNodeForPin       = fmt.Errorf("%w: no node for pin", ErrHeader)
	ErrNoActiveHeader     = fmt.Errorf("%w: no active header", ErrHeader)

	ErrEmptyHeaderOverlay = fmt.Errorf("%w: unable to generate DTBO", ErrOverlayGeneration)

	ErrEmptyOverlaySet = fmt.Errorf("%w: no overlays to list", ErrPublish)
	ErrBootConfig      = fmt.Errorf("%w: invalid boot configuration", ErrPublish)
)
