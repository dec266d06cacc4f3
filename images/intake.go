// Package images accepts uploaded event images and hands back the path the
// client stores as Event.image.
package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"eventapi/utils"
)

var (
	ErrNoFile   = errors.New("no file uploaded")
	ErrNotImage = errors.New("only image files are allowed")
	ErrTooLarge = errors.New("file is too large")
)

// Store persists one object under name and returns its public reference.
// Accept always passes a *bytes.Reader.
type Store interface {
	Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
}

type Stored struct {
	Path         string `json:"imagePath"`
	OriginalName string `json:"originalName"`
	ContentType  string `json:"contentType"`
}

type Intake struct {
	log     *slog.Logger
	store   Store
	maxSize int64
}

func NewIntake(log *slog.Logger, store Store, maxSize int64) *Intake {
	return &Intake{log: log, store: store, maxSize: maxSize}
}

func (in *Intake) MaxSize() int64 { return in.maxSize }

// sniffLen matches mimetype's default read limit.
const sniffLen = 3072

// Accept checks size and sniffed content type, then stores the file under
// a fresh uuid name. The client-declared content type is not trusted.
func (in *Intake) Accept(ctx context.Context, file io.Reader, size int64, originalName string) (Stored, error) {
	const op = "images.Intake.Accept"
	log := in.log.With(slog.String("op", op), slog.String("original_name", originalName))

	if file == nil {
		return Stored{}, ErrNoFile
	}
	if size > in.maxSize {
		log.Info("upload rejected: too large", slog.Int64("size", size))
		return Stored{}, ErrTooLarge
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Stored{}, fmt.Errorf("%s: read: %w", op, err)
	}
	head = head[:n]
	if n == 0 {
		return Stored{}, ErrNoFile
	}

	mt := mimetype.Detect(head)
	if !strings.HasPrefix(mt.String(), "image/") {
		log.Info("upload rejected: not an image", slog.String("detected", mt.String()))
		return Stored{}, ErrNotImage
	}

	// held in memory: stores get a seekable body of known length
	data, err := io.ReadAll(io.LimitReader(io.MultiReader(bytes.NewReader(head), file), in.maxSize+1))
	if err != nil {
		return Stored{}, fmt.Errorf("%s: read: %w", op, err)
	}
	if int64(len(data)) > in.maxSize {
		log.Info("upload rejected: exceeded limit while reading", slog.Int("read", len(data)))
		return Stored{}, ErrTooLarge
	}

	name := uuid.NewString() + mt.Extension()
	path, err := in.store.Put(ctx, name, bytes.NewReader(data), mt.String())
	if err != nil {
		log.Error("failed to store image", utils.ErrAttr(err))
		return Stored{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("image stored", slog.String("path", path), slog.String("content_type", mt.String()))
	return Stored{Path: path, OriginalName: originalName, ContentType: mt.String()}, nil
}
