// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging prepares uploaded gallery images before they are forwarded
// to the backend: format detection, EXIF orientation and downscaling.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// MIME types of accepted images.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

const jpegQuality = 90

var (
	// ErrUnsupportedFormat is returned for anything but JPEG, PNG, GIF and WebP.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrTooLarge is returned when the upload exceeds the byte limit.
	ErrTooLarge = errors.New("image too large")
)

// Result is a normalized upload.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
	Width    int
	Height   int
	// Reencoded is set when Data differs from the uploaded bytes.
	Reencoded bool
}

// Processor normalizes uploads.
type Processor struct {
	maxBytes     int64
	maxDimension int
	newName      func() string
}

// NewProcessor creates a processor that rejects uploads over maxBytes and
// scales images down to fit maxDimension on their longest side.
func NewProcessor(maxBytes int64, maxDimension int) *Processor {
	return &Processor{
		maxBytes:     maxBytes,
		maxDimension: maxDimension,
		newName:      uuid.NewString,
	}
}

// Process reads an upload and returns it ready for the backend. The original
// bytes are kept when the image needs neither rotation nor resizing; WebP
// images that must be re-encoded become JPEG since there is no pure Go
// WebP encoder. The returned filename is a fresh uuid with the extension of
// the output format.
func (p *Processor) Process(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, ErrTooLarge
	}

	format := detectFormat(data)
	if format == "" {
		return nil, ErrUnsupportedFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	orientation := 1
	if format == "jpeg" {
		orientation = readExifOrientation(bytes.NewReader(data))
	}
	img = applyOrientation(img, orientation)

	resized := false
	if b := img.Bounds(); p.maxDimension > 0 && (b.Dx() > p.maxDimension || b.Dy() > p.maxDimension) {
		img = imaging.Fit(img, p.maxDimension, p.maxDimension, imaging.Lanczos)
		resized = true
	}

	res := &Result{
		Data:     data,
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
		MimeType: formatToMimeType(format),
	}

	if orientation != 1 || resized {
		if format == "webp" {
			format = "jpeg"
		}
		res.Data, err = encodeImage(img, format)
		if err != nil {
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}
		res.MimeType = formatToMimeType(format)
		res.Reencoded = true
	}

	res.Filename = p.newName() + formatExtension(format)
	return res, nil
}

// DecodeConfig returns the dimensions of encoded image data.
func DecodeConfig(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// IsImage reports whether mimeType is an accepted image type.
func IsImage(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	default:
		return false
	}
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil || orientation < 1 || orientation > 8 {
		return 1
	}
	return orientation
}

// applyOrientation undoes an EXIF orientation:
// 2 flip horizontal, 3 rotate 180°, 4 flip vertical,
// 5 transpose, 6 rotate 90° CW, 7 transverse, 8 rotate 90° CCW.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encodeImage(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// TIFF decoding in disintegration/imaging is affected by CVE-2023-36308
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch contentType {
	case MimeTypeJPEG:
		return "jpeg"
	case MimeTypePNG:
		return "png"
	case MimeTypeGIF:
		return "gif"
	case MimeTypeWebP:
		return "webp"
	default:
		return ""
	}
}

func formatToMimeType(format string) string {
	switch format {
	case "jpeg":
		return MimeTypeJPEG
	case "png":
		return MimeTypePNG
	case "gif":
		return MimeTypeGIF
	case "webp":
		return MimeTypeWebP
	default:
		return "application/octet-stream"
	}
}

func formatExtension(format string) string {
	if format == "jpeg" {
		return ".jpg"
	}
	return "." + format
}
