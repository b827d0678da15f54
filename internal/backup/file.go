package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/helpkeeper/internal/common"
	"github.com/dmitrijs2005/helpkeeper/internal/filex"
)

// FileSink keeps backups as files in one directory. Names are reduced to
// their base name.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) (*FileSink, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &FileSink{dir: abs}, nil
}

func (s *FileSink) path(name string) (string, error) {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid backup name %q", name)
	}
	return filepath.Join(s.dir, base), nil
}

func (s *FileSink) Put(_ context.Context, name string, data []byte) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	return filex.WriteFile(p, data)
}

func (s *FileSink) Get(_ context.Context, name string) ([]byte, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return data, nil
}
