// Package blob stores receipt photos outside the relational ledger and
// hands back opaque references for later deletion.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/jmorales/gastosbot/internal/common"
)

// Local stores photos on the local filesystem, one directory per user.
type Local struct {
	dir string
}

// NewLocal creates a disk-backed store rooted at dir.
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: blob directory", common.ErrMissingConfig)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &Local{dir: dir}, nil
}

// Store implements service.BlobStore. The returned reference is the path
// of the written file.
func (l *Local) Store(ctx context.Context, userID int64, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if userID <= 0 {
		return "", fmt.Errorf("invalid user id %d", userID)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty photo data")
	}

	userDir := filepath.Join(l.dir, strconv.FormatInt(userID, 10))
	if err := os.MkdirAll(userDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create user directory: %w", err)
	}

	ref := filepath.Join(userDir, uuid.New().String()+".jpg")
	if err := os.WriteFile(ref, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write photo: %w", err)
	}

	return ref, nil
}

// Delete implements service.BlobStore.
func (l *Local) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ref == "" {
		return fmt.Errorf("%w: empty blob reference", common.ErrNotFound)
	}

	if err := os.Remove(ref); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", common.ErrNotFound, ref)
		}
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}
