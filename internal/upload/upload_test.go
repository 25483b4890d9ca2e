package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	gifBytes  = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\xff\xff\xff\x00\x00\x00")
	webpBytes = []byte("RIFF\x24\x00\x00\x00WEBPVP8 \x18\x00\x00\x00")
)

// fileHeader собирает настоящий multipart-запрос и достаёт из него FileHeader
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func newLocal(t *testing.T) (*Uploader, string) {
	dir := filepath.Join(t.TempDir(), "productos")
	u := New(NewLocalDisk(dir, "/uploads/productos"), 4<<20)
	n := 0
	u.token = func() string {
		n++
		return strings.Repeat(string(rune('a'+n-1)), 8)
	}
	return u, dir
}

func TestStoreAcceptsAllowedTypes(t *testing.T) {
	cases := []struct {
		name    string
		content []byte
		ext     string
	}{
		{"photo.png", pngBytes, ".png"},
		{"photo.jpeg", jpegBytes, ".jpg"},
		{"anim.gif", gifBytes, ".gif"},
		{"pic.webp", webpBytes, ".webp"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, dir := newLocal(t)
			name, err := u.Store(context.Background(), fileHeader(t, tc.name, tc.content))
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(name, tc.ext), name)

			data, err := os.ReadFile(filepath.Join(dir, name))
			require.NoError(t, err)
			assert.Equal(t, tc.content, data)
		})
	}
}

func TestStoreNamesFileFromSlugAndToken(t *testing.T) {
	u, _ := newLocal(t)
	name, err := u.Store(context.Background(), fileHeader(t, "Silla Ñandú (roja).PNG", pngBytes))
	require.NoError(t, err)
	assert.Equal(t, "silla-nandu-roja-aaaaaaaa.png", name)
	assert.Equal(t, "/uploads/productos/silla-nandu-roja-aaaaaaaa.png", u.URL(name))
}

func TestStoreSniffsContentNotExtension(t *testing.T) {
	u, dir := newLocal(t)
	_, err := u.Store(context.Background(), fileHeader(t, "evil.png", []byte("<?php echo 'hi'; ?>")))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestStoreRejectsLargeFiles(t *testing.T) {
	dir := t.TempDir()
	d := NewLocalDisk(dir, "/u")
	assert.Equal(t, dir, d.Root())
	u := New(d, 16)
	assert.Equal(t, int64(16), u.MaxBytes())
	_, err := u.Store(context.Background(), fileHeader(t, "big.png", append(pngBytes, make([]byte, 64)...)))
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.NoFileExists(t, filepath.Join(dir, "big.png"))
}

type failingDisk struct{ deleted []string }

func (f *failingDisk) Put(context.Context, string, io.Reader, string) error {
	return errors.New("disk full")
}
func (f *failingDisk) Delete(_ context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}
func (f *failingDisk) URL(name string) string { return name }

func TestStoreWrapsDiskErrors(t *testing.T) {
	d := &failingDisk{}
	u := New(d, 4<<20)

	_, err := u.Store(context.Background(), fileHeader(t, "a.png", pngBytes))
	assert.ErrorIs(t, err, ErrStorage)
	assert.Empty(t, d.deleted)
}

func TestRemove(t *testing.T) {
	u, dir := newLocal(t)
	ctx := context.Background()
	name, err := u.Store(ctx, fileHeader(t, "x.png", pngBytes))
	require.NoError(t, err)

	u.Remove(ctx, name)
	assert.NoFileExists(t, filepath.Join(dir, name))

	assert.NotPanics(t, func() {
		u.Remove(ctx, name)
		u.Remove(ctx, "")
	})
}

func TestLocalDiskRejectsTraversal(t *testing.T) {
	d := NewLocalDisk(t.TempDir(), "/u")
	ctx := context.Background()
	assert.Error(t, d.Put(ctx, "../escape.png", bytes.NewReader(pngBytes), "image/png"))
	assert.Error(t, d.Delete(ctx, "a/b.png"))
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Mesa de Roble":         "mesa-de-roble",
		"  ¡Oferta! 50% ":       "oferta-50",
		"Crème brûlée":          "creme-brulee",
		"____":                  "image",
		"":                      "image",
		strings.Repeat("a", 80): strings.Repeat("a", 60),
	}
	for in, want := range cases {
		assert.Equal(t, want, Slug(in), "slug(%q)", in)
	}
}

func TestNewS3DiskNeedsBucket(t *testing.T) {
	_, err := NewS3Disk(context.Background(), S3Config{Region: "eu-west-1"})
	assert.ErrorContains(t, err, "S3_BUCKET")
}

func TestS3DiskKeysAndURLs(t *testing.T) {
	d, err := NewS3Disk(context.Background(), S3Config{
		Bucket: "shop", Region: "eu-west-1", Key: "k", Secret: "s",
		Endpoint: "http://localhost:9000", Prefix: "/productos/", BaseURL: "http://localhost:9000/shop/",
	})
	require.NoError(t, err)
	assert.Equal(t, "productos/a.png", d.key("a.png"))
	assert.Equal(t, "http://localhost:9000/shop/productos/a.png", d.URL("a.png"))

	d, err = NewS3Disk(context.Background(), S3Config{Bucket: "shop", Region: "eu-west-1", Key: "k", Secret: "s"})
	require.NoError(t, err)
	assert.Equal(t, "https://shop.s3.eu-west-1.amazonaws.com/a.png", d.URL("a.png"))
}
