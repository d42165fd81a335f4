// Package storage writes uploaded images to local disk and serves them back
// under a public URL prefix.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cris-imc/invitaciones-sub002/pkg/config"
)

var (
	ErrEmpty       = errors.New("file is empty")
	ErrTooLarge    = errors.New("file is too large")
	ErrUnsupported = errors.New("file must be an image")
)

// File is one uploaded file as received from a multipart form.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Uploads struct {
	dir      string
	prefix   string
	maxBytes int64
	now      func() time.Time
}

func New(cfg config.UploadsConfig) (*Uploads, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	prefix := cfg.PublicPrefix
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Uploads{dir: cfg.Dir, prefix: prefix, maxBytes: cfg.MaxBytes, now: time.Now}, nil
}

func (u *Uploads) MaxBytes() int64 { return u.maxBytes }

func (u *Uploads) Prefix() string { return u.prefix }

// Validate checks size and declared MIME type before anything is written.
func (u *Uploads) Validate(f File) error {
	if f.Size == 0 {
		return ErrEmpty
	}
	if f.Size > u.maxBytes {
		return ErrTooLarge
	}
	mediaType, _, err := mime.ParseMediaType(f.ContentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return ErrUnsupported
	}
	return nil
}

// Save writes f under a timestamp-random filename and returns its public URL.
func (u *Uploads) Save(ctx context.Context, f File) (string, error) {
	if err := u.Validate(f); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name, err := u.filename(f)
	if err != nil {
		return "", err
	}
	path := filepath.Join(u.dir, name)

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}

	// The declared size can lie; never store more than maxBytes.
	n, err := io.Copy(out, io.LimitReader(f.Body, u.maxBytes+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > u.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(path)
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("write upload: %w", err)
	}

	return u.prefix + name, nil
}

var safeExt = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)

func (u *Uploads) filename(f File) (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate filename: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(f.Name))
	if !safeExt.MatchString(ext) {
		ext = ""
		mediaType, _, _ := mime.ParseMediaType(f.ContentType)
		if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
			ext = exts[0]
		}
	}

	return fmt.Sprintf("%d-%s%s", u.now().UnixMilli(), hex.EncodeToString(buf), ext), nil
}

// Handler serves stored files; mount it at Prefix.
func (u *Uploads) Handler() http.Handler {
	return http.StripPrefix(u.prefix, http.FileServer(noListing{http.Dir(u.dir)}))
}

// noListing hides directory indexes.
type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	if st, err := f.Stat(); err == nil && st.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
