// Package upload принимает картинки товаров: проверка размера и типа, уникальное имя, запись на Disk.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrTooLarge        = errors.New("upload: file is too large")
	ErrUnsupportedType = errors.New("upload: unsupported image type")
	ErrStorage         = errors.New("upload: storage failure")
)

// Allowed — допустимые MIME-типы картинок
var Allowed = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// Disk — куда складываются файлы. Delete отсутствующего файла не ошибка.
type Disk interface {
	Put(ctx context.Context, name string, r io.Reader, contentType string) error
	Delete(ctx context.Context, name string) error
	URL(name string) string
}

type Uploader struct {
	disk     Disk
	maxBytes int64
	token    func() string
}

func New(disk Disk, maxBytes int64) *Uploader {
	return &Uploader{
		disk:     disk,
		maxBytes: maxBytes,
		token:    func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

// URL публичная ссылка на файл; пустое имя - пустая ссылка
func (u *Uploader) URL(name string) string {
	if name == "" {
		return ""
	}
	return u.disk.URL(name)
}

// MaxBytes — лимит размера файла
func (u *Uploader) MaxBytes() int64 { return u.maxBytes }

// Store проверяет файл и пишет его на диск. Возвращает новое имя файла.
func (u *Uploader) Store(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > u.maxBytes {
		return "", fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, fh.Size, u.maxBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", ErrStorage, fh.Filename, err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("%w: sniff %s: %v", ErrStorage, fh.Filename, err)
	}
	if !allowed(mt) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("%w: rewind %s: %v", ErrStorage, fh.Filename, err)
	}

	name := u.filename(fh.Filename, mt.Extension())
	if err := u.disk.Put(ctx, name, f, mt.String()); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return name, nil
}

// Remove удаляет файл; ошибки (нет файла и т.п.) глотаются
func (u *Uploader) Remove(ctx context.Context, name string) {
	if name == "" {
		return
	}
	_ = u.disk.Delete(ctx, name)
}

func (u *Uploader) filename(original, ext string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	return Slug(base) + "-" + u.token() + ext
}

func allowed(mt *mimetype.MIME) bool {
	for _, a := range Allowed {
		if mt.Is(a) {
			return true
		}
	}
	return false
}

const maxSlugLen = 60

// Slug: ASCII в нижнем регистре, диакритика снимается, всё прочее схлопывается в "-"
func Slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > maxSlugLen {
		out = strings.TrimRight(out[:maxSlugLen], "-")
	}
	if out == "" {
		return "image"
	}
	return out
}
