// SPDX-License-Identifier: MIT

//go:build !windows

package structurate

import (
	"fmt"
	"io/fs"

	"github.com/google/renameio/v2"

	xglog "github.com/vortex-dev/vortex/internal/log"
)

// writeFileAtomic writes data with full durability guarantees using renameio:
// temp file in the target directory, fsync, atomic rename.
func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	pendingFile, err := renameio.NewPendingFile(path,
		renameio.WithPermissions(perm),
		renameio.WithExistingPermissions(),
	)
	if err != nil {
		return fmt.Errorf("create pending config file: %w", err)
	}
	defer func() {
		// No-op once committed.
		if err := pendingFile.Cleanup(); err != nil {
			logger := xglog.WithComponent("structurate")
			logger.Debug().Err(err).Str(xglog.FieldPath, path).Msg("cleanup pending config file")
		}
	}()

	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("write config data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace config file: %w", err)
	}
	return nil
}
