package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// ImageService normalises cover art before it is embedded in tags.
//
// Covers are decoded once, scaled down to fit a square bound while keeping
// the aspect ratio, and re-encoded as JPEG so every tag container gets the
// same mime type.
//
// Example usage:
//
//	svc := NewImageService(1000)
//	cover, err := svc.PrepareCover(ctx, downloaded)
type ImageService struct {
	maxSize int
	quality int
}

// NewImageService creates an ImageService bounding covers to maxSize pixels
// per side. A maxSize of zero or less disables resizing.
func NewImageService(maxSize int) *ImageService {
	return &ImageService{maxSize: maxSize, quality: 90}
}

// PrepareCover decodes data (JPEG or PNG), downsizes it if needed and
// returns JPEG bytes.
func (s *ImageService) PrepareCover(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if s.maxSize > 0 {
		img = s.fit(img)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fit scales img down to fit within maxSize x maxSize. Images that already
// fit are returned as is.
func (s *ImageService) fit(img image.Image) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= s.maxSize && height <= s.maxSize {
		return img
	}

	if width >= height {
		height = height * s.maxSize / width
		width = s.maxSize
	} else {
		width = width * s.maxSize / height
		height = s.maxSize
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
