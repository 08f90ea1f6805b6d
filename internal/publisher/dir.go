package publisher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirPublisher writes files into a local directory.
type DirPublisher struct {
	Dir string
}

func NewDirPublisher(dir string) *DirPublisher { return &DirPublisher{Dir: dir} }

func (p *DirPublisher) Name() string { return "dir" }

func (p *DirPublisher) Publish(_ context.Context, fileName string, data []byte) error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", p.Dir, err)
	}
	path := filepath.Join(p.Dir, filepath.Base(fileName))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}
