package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/maksimkurb/hostsfilter/internal/config"
	"github.com/maksimkurb/hostsfilter/internal/errors"
	"github.com/maksimkurb/hostsfilter/internal/log"
	"github.com/maksimkurb/hostsfilter/internal/merge"
	"github.com/maksimkurb/hostsfilter/internal/utils"
)

// ApplyResult reports a successful apply.
type ApplyResult struct {
	// WrittenCount is the number of entries written to the target file.
	WrittenCount int `json:"written_count"`
	// BackupPath is where the previous target content was copied.
	BackupPath string `json:"backup_path"`
}

// Apply persists a merge result to the configured target file.
//
// Sequence, under an exclusive lock on the target directory:
//  1. copy the existing target byte-for-byte to the backup path; a backup
//     failure is fatal and aborts before anything is written,
//  2. write the rendered result to a temporary file in the target's
//     directory and rename it over the target (atomic replace: the target
//     is either fully old or fully new, never a mixture),
//  3. record the managed (IP, hostname) pairs in the manifest.
//
// A manifest write failure after a successful replace is reported as a
// warning, not an error: the hosts file is already valid, only the next
// preservation pass degrades to the conservative heuristic.
func Apply(result *merge.Result, cfg *config.Config) (*ApplyResult, error) {
	targetPath := cfg.General.HostsPath

	lock, err := lockTarget(targetPath)
	if err != nil {
		return nil, err
	}
	defer lock.release()

	backupPath, err := backupTarget(targetPath, cfg.GetBackupPath())
	if err != nil {
		return nil, err
	}

	if err := writeAtomic(targetPath, Render(result)); err != nil {
		return nil, err
	}

	if err := merge.WriteManifest(cfg.GetManifestPath(), merge.ManagedPairs(result)); err != nil {
		log.Warnf("Hosts file applied, but manifest update failed: %v", err)
	}

	log.Infof("Wrote %d entries to %s (backup: %s)", result.EntryCount, targetPath, backupPath)

	return &ApplyResult{
		WrittenCount: result.EntryCount,
		BackupPath:   backupPath,
	}, nil
}

// backupTarget copies the current target file to the backup path. Returns
// the backup path, or "" if the target does not exist yet (first apply on a
// fresh system: there is nothing to back up).
func backupTarget(targetPath, backupPath string) (string, error) {
	src, err := os.Open(targetPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warnf("Target %s does not exist, skipping backup", targetPath)
			return "", nil
		}
		if os.IsPermission(err) {
			return "", errors.NewPermissionError(
				fmt.Sprintf("cannot read %s, re-run with elevated privileges (e.g. sudo)", targetPath), err)
		}
		return "", errors.NewBackupError(fmt.Sprintf("failed to read target %s", targetPath), err)
	}
	defer utils.CloseOrWarn(src)

	dst, err := os.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return "", errors.NewBackupError(fmt.Sprintf("failed to create backup %s", backupPath), err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", errors.NewBackupError(fmt.Sprintf("failed to copy target to backup %s", backupPath), err)
	}
	if err := dst.Sync(); err != nil {
		_ = dst.Close()
		return "", errors.NewBackupError(fmt.Sprintf("failed to sync backup %s", backupPath), err)
	}
	if err := dst.Close(); err != nil {
		return "", errors.NewBackupError(fmt.Sprintf("failed to close backup %s", backupPath), err)
	}

	log.Debugf("Backed up %s to %s", targetPath, backupPath)
	return backupPath, nil
}

// writeAtomic writes content to a temporary file in the target's directory,
// syncs it and renames it over the target. Once the rename starts there is
// no cancellation; before it, a crash leaves only a stray temp file.
func writeAtomic(targetPath string, content []byte) error {
	dir := filepath.Dir(targetPath)

	tmp, err := os.CreateTemp(dir, ".hosts-*")
	if err != nil {
		if os.IsPermission(err) {
			return errors.NewPermissionError(
				fmt.Sprintf("cannot write to %s, re-run with elevated privileges (e.g. sudo)", dir), err)
		}
		return errors.NewWriteError(fmt.Sprintf("failed to create temporary file in %s", dir), err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(content); err != nil {
		cleanup()
		return errors.NewWriteError(fmt.Sprintf("failed to write temporary file %s", tmpPath), err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return errors.NewWriteError(fmt.Sprintf("failed to sync temporary file %s", tmpPath), err)
	}
	if err := tmp.Chmod(0644); err != nil {
		cleanup()
		return errors.NewWriteError(fmt.Sprintf("failed to chmod temporary file %s", tmpPath), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.NewWriteError(fmt.Sprintf("failed to close temporary file %s", tmpPath), err)
	}

	if err := os.Rename(tmpPath, targetPath); err != nil {
		_ = os.Remove(tmpPath)
		return errors.NewWriteError(fmt.Sprintf("failed to replace %s", targetPath), err)
	}

	return nil
}
