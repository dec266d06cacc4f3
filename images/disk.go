package images

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
)

// DiskStore writes into Dir and answers with PublicPath/<name>, which the
// HTTP layer serves statically.
type DiskStore struct {
	Dir        string
	PublicPath string
}

func NewDiskStore(dir, publicPath string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{Dir: dir, PublicPath: publicPath}, nil
}

func (s *DiskStore) Put(_ context.Context, name string, r io.Reader, _ string) (string, error) {
	full := filepath.Join(s.Dir, filepath.Base(name))
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return path.Join(s.PublicPath, filepath.Base(name)), nil
}
