// Package thumbnail renders image thumbnails for media providers that
// require them.
//
// FileProvider stores arbitrary files and never requires thumbnails, so with
// it every Generate call is a no-op. The renderers here serve custom
// simplemedia.ThumbnailSource implementations, such as an image provider
// whose RequiresThumbnails reports true.
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/tendant/simple-media/pkg/simplemedia"
	"golang.org/x/sync/errgroup"
)

const DefaultQuality = 80

// formats rendered concurrently per image
const maxParallelRenders = 4

// Format is a named thumbnail size. A zero Width or Height keeps the aspect
// ratio along that side.
type Format struct {
	Name    string
	Width   int
	Height  int
	Quality int
}

// ParseFormats parses "small:100x70,big:500x0" into formats
func ParseFormats(spec string) ([]Format, error) {
	var formats []Format
	for _, item := range strings.Split(spec, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, size, ok := strings.Cut(item, ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid thumbnail format %q: expected name:WIDTHxHEIGHT", item)
		}
		w, h, ok := strings.Cut(size, "x")
		if !ok {
			return nil, fmt.Errorf("invalid thumbnail size %q", size)
		}
		width, err := strconv.Atoi(w)
		if err != nil {
			return nil, fmt.Errorf("invalid thumbnail width %q: %w", w, err)
		}
		height, err := strconv.Atoi(h)
		if err != nil {
			return nil, fmt.Errorf("invalid thumbnail height %q: %w", h, err)
		}
		if width < 0 || height < 0 || (width == 0 && height == 0) {
			return nil, fmt.Errorf("invalid thumbnail size %q", size)
		}
		formats = append(formats, Format{Name: name, Width: width, Height: height, Quality: DefaultQuality})
	}
	return formats, nil
}

// Path returns the storage key of a media record's thumbnail in format
func Path(source simplemedia.ThumbnailSource, media simplemedia.Media, format string) string {
	return fmt.Sprintf("%s/thumb_%s_%s.jpg", source.BuildPath(media), media.ID, format)
}

// ImageThumbnailer writes one JPEG per format next to the original file
type ImageThumbnailer struct {
	formats []Format
}

// NewImageThumbnailer creates a thumbnailer for formats
func NewImageThumbnailer(formats ...Format) *ImageThumbnailer {
	return &ImageThumbnailer{formats: formats}
}

// Generate renders the thumbnails of media. Providers that do not require
// thumbnails and non-image content are skipped.
func (g *ImageThumbnailer) Generate(ctx context.Context, source simplemedia.ThumbnailSource, media simplemedia.Media) error {
	if !source.RequiresThumbnails() || len(g.formats) == 0 {
		return nil
	}
	if !strings.HasPrefix(media.ContentType, "image/") {
		return nil
	}

	store := source.BlobStore()
	reader, err := store.Read(ctx, source.ReferenceImage(media))
	if err != nil {
		return fmt.Errorf("failed to read original: %w", err)
	}
	defer reader.Close()

	img, err := imaging.Decode(reader, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(maxParallelRenders)
	for _, format := range g.formats {
		group.Go(func() error {
			return g.render(gctx, store, source, media, img, format)
		})
	}
	return group.Wait()
}

func (g *ImageThumbnailer) render(ctx context.Context, store simplemedia.BlobStore, source simplemedia.ThumbnailSource, media simplemedia.Media, img image.Image, format Format) error {
	thumb := img
	if format.Width > 0 && format.Height > 0 {
		thumb = imaging.Fit(img, format.Width, format.Height, imaging.Lanczos)
	} else {
		thumb = imaging.Resize(img, format.Width, format.Height, imaging.Lanczos)
	}

	quality := format.Quality
	if quality <= 0 {
		quality = DefaultQuality
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("failed to encode %s thumbnail: %w", format.Name, err)
	}

	if err := store.Write(ctx, Path(source, media, format.Name), &buf, "image/jpeg"); err != nil {
		return fmt.Errorf("failed to store %s thumbnail: %w", format.Name, err)
	}
	return nil
}

// Async runs another thumbnailer in the background. Generate returns
// immediately; Wait blocks until pending jobs are done.
type Async struct {
	next   simplemedia.Thumbnailer
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewAsync wraps next
func NewAsync(next simplemedia.Thumbnailer, logger *slog.Logger) *Async {
	if logger == nil {
		logger = slog.Default()
	}
	return &Async{next: next, logger: logger}
}

func (a *Async) Generate(ctx context.Context, source simplemedia.ThumbnailSource, media simplemedia.Media) error {
	ctx = context.WithoutCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.next.Generate(ctx, source, media); err != nil {
			a.logger.Warn("Background thumbnail generation failed", "media_id", media.ID, "error", err)
		}
	}()
	return nil
}

// Wait blocks until all background generations have finished
func (a *Async) Wait() {
	a.wg.Wait()
}
