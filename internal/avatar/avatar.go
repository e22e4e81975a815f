// Package avatar normalizes downloaded avatar images and stores them under
// the data directory.
package avatar

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"

	"github.com/gitchest/gitchest/internal/dirs"
	"github.com/gitchest/gitchest/internal/model"
	"github.com/gitchest/gitchest/internal/units"
)

// Limits applied by Normalize.
const (
	DefaultMaxSide  = 460
	DefaultMaxBytes = 5 * 1024 * 1024
)

// Errors returned while processing avatars.
var (
	ErrEmpty    = errors.New("avatar is empty")
	ErrTooLarge = errors.New("avatar too large")
	ErrNotImage = errors.New("avatar is not an image")
)

// Image is a processed avatar ready to be written.
type Image struct {
	Data []byte
	// Ext is the file extension without the dot. Empty when the format is
	// an image type that could not be identified precisely.
	Ext  string
	MIME string
}

// formats imaging can decode and re-encode, keyed by MIME type.
var formats = map[string]imaging.Format{
	"image/png":  imaging.PNG,
	"image/jpeg": imaging.JPEG,
	"image/gif":  imaging.GIF,
	"image/bmp":  imaging.BMP,
	"image/tiff": imaging.TIFF,
}

// Normalize detects the type of data and, for formats it can decode, scales
// the image down to fit maxSide. Other image types pass through unchanged.
func Normalize(data []byte, maxSide int) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data) > DefaultMaxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	if maxSide <= 0 {
		maxSide = DefaultMaxSide
	}

	mt := mimetype.Detect(data)
	mime := mt.String()
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%w: %s", ErrNotImage, mime)
	}

	out := &Image{Data: data, Ext: strings.TrimPrefix(mt.Extension(), "."), MIME: mime}

	format, ok := formats[mime]
	if !ok {
		return out, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if fits(img, maxSide) {
		return out, nil
	}

	img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	out.Data = buf.Bytes()
	return out, nil
}

func fits(img image.Image, maxSide int) bool {
	b := img.Bounds()
	return b.Dx() <= maxSide && b.Dy() <= maxSide
}

// Store writes avatar files under the data directory.
type Store struct {
	dirs   dirs.Dirs
	logger *slog.Logger
}

// NewStore creates a Store rooted at d.
func NewStore(d dirs.Dirs, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dirs: d, logger: logger.With("component", "avatar")}
}

// Path returns the location of the avatar file, e.g.
// <data>/assets/avatars/12.png.
func (s *Store) Path(a *model.UserAvatar) string {
	return s.dirs.Path(dirs.Avatar(a.Filename()))
}

// Write stores img as the file of a and returns its path.
func (s *Store) Write(a *model.UserAvatar, img *Image) (string, error) {
	path, err := s.dirs.Ensure(s.logger, dirs.Avatar(a.Filename()))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("write avatar: %w", err)
	}
	s.logger.Info("saved avatar", "path", path, "size", units.HumanReadableSize(int64(len(img.Data))), "mime", img.MIME)
	return path, nil
}

// Remove deletes the file of a. A missing file is not an error.
func (s *Store) Remove(a *model.UserAvatar) error {
	if err := os.Remove(s.Path(a)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove avatar: %w", err)
	}
	return nil
}
