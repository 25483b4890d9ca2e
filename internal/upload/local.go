package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalDisk — каталог на файловой системе; gin раздаёт его как статику
type LocalDisk struct {
	root    string
	baseURL string
}

func NewLocalDisk(root, baseURL string) *LocalDisk {
	return &LocalDisk{root: root, baseURL: baseURL}
}

// Root — каталог с файлами
func (d *LocalDisk) Root() string { return d.root }

func (d *LocalDisk) Put(_ context.Context, name string, r io.Reader, _ string) error {
	full, err := d.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return fmt.Errorf("local: mkdir: %w", err)
	}
	// пишем во временный файл и переименовываем, чтобы не оставить половину картинки
	tmp, err := os.CreateTemp(d.root, ".upload-*")
	if err != nil {
		return fmt.Errorf("local: create temp: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("local: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("local: close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("local: move %s: %w", name, err)
	}
	return nil
}

func (d *LocalDisk) Delete(_ context.Context, name string) error {
	full, err := d.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("local: delete %s: %w", name, err)
	}
	return nil
}

func (d *LocalDisk) URL(name string) string {
	return d.baseURL + "/" + name
}

// path не выпускает имя за пределы root
func (d *LocalDisk) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("local: invalid file name %q", name)
	}
	return filepath.Join(d.root, name), nil
}
