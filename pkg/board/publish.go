package board

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arducam/jetson-io/internal/constants"
	"github.com/arducam/jetson-io/internal/utils"
	"github.com/arducam/jetson-io/pkg/extlinux"
	"github.com/arducam/jetson-io/pkg/headers"
)

// ConfigureDtForNextBoot adds a boot entry applying dtbos on top of the
// platform DTB and makes it the default. It returns what was done, for
// display.
func (b *Board) ConfigureDtForNextBoot(dtbos []string) ([]string, error) {
	if len(dtbos) == 0 {
		return nil, constants.ErrEmptyOverlaySet
	}

	label, err := b.entryLabel(dtbos)
	if err != nil {
		return nil, err
	}
	entry := extlinux.BootEntry{
		Label:     constants.BootEntryLabel,
		MenuLabel: label,
		Dtb:       b.unrooted(b.Dtb),
		Overlays:  dtbos,
		Timestamp: b.now(),
	}

	var messages []string
	conf := b.rooted(b.cfg.Extlinux)
	if err := extlinux.AddEntryToFile(b.fs, conf, entry, true); err != nil {
		return nil, err
	}
	messages = append(messages, fmt.Sprintf("Modified %s to add following DTBO entries:", conf))
	for _, dtbo := range dtbos {
		if b.appdir != "" {
			if err := b.copyToApp(dtbo); err != nil {
				return messages, err
			}
		}
		messages = append(messages, dtbo)
	}
	if b.appdir != "" {
		if err := utils.CopyFile(b.fs, conf, b.cfg.Extlinux); err != nil {
			return messages, err
		}
		messages = append(messages, fmt.Sprintf("Copied %s to %s.", conf, b.cfg.Extlinux))
	}

	sig := conf + constants.SignatureSuffix
	if utils.Exists(b.fs, sig) {
		backup := sig + constants.SignatureBackup
		if err := b.fs.Rename(sig, backup); err != nil {
			return messages, fmt.Errorf("%w: backing up %s: %s", constants.ErrPublish, sig, err)
		}
		utils.Log.Warn().Str("signature", sig).Str("backup", backup).Msg("Stale boot configuration signature moved aside")
		messages = append(messages, fmt.Sprintf("File %s has been backed up as %s.", sig, backup))
		if b.sys.SecureBoot() {
			messages = append(messages, fmt.Sprintf("Secure boot is enabled: %s must be signed again before rebooting.", conf))
		}
	}
	return messages, nil
}

// entryLabel builds the menu label of the boot entry from the header and
// overlay name stamped in each overlay.
func (b *Board) entryLabel(dtbos []string) (string, error) {
	parts := []string{"Custom Header Config:"}
	for _, dtbo := range dtbos {
		hdr, ok, err := b.editor.GetProp(dtbo, "/", constants.PropHeaderName)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("%w: %s has no %s", constants.ErrMalformedOverlay, dtbo, constants.PropHeaderName)
		}
		def, ok := headers.Find(b.catalog, hdr)
		if !ok {
			return "", fmt.Errorf("%w %s in %s", constants.ErrUnknownHeader, hdr, dtbo)
		}
		name, ok, err := b.editor.GetProp(dtbo, "/", constants.PropOverlayName)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("%w: %s has no %s", constants.ErrMalformedOverlay, dtbo, constants.PropOverlayName)
		}
		parts = append(parts, fmt.Sprintf("<%s %s>", strings.ToUpper(def.Prefix), name))
	}
	return strings.Join(parts, " "), nil
}

// copyToApp copies a local overlay to the same path inside the mounted APP partition.
func (b *Board) copyToApp(dtbo string) error {
	dst := b.rooted(dtbo)
	if err := utils.CreateIfNotExists(b.fs, filepath.Dir(dst)); err != nil {
		return err
	}
	utils.Log.Debug().Str("src", dtbo).Str("dst", dst).Msg("Copying overlay to APP partition")
	return utils.CopyFile(b.fs, dtbo, dst)
}
