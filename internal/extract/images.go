package extract

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"go.uber.org/zap"
	"golang.org/x/image/tiff"

	"github.com/a3tai/pdf-extractor/internal/output"
	"github.com/a3tai/pdf-extractor/internal/pdf"
	pdferrors "github.com/a3tai/pdf-extractor/internal/pdf/errors"
)

// ImageExtractor saves the embedded images of the selected pages
type ImageExtractor struct {
	logger *zap.Logger
}

// NewImageExtractor creates an image extractor
func NewImageExtractor(logger *zap.Logger) *ImageExtractor {
	return &ImageExtractor{logger: logger.Named("images")}
}

// Mode returns ModeImages
func (e *ImageExtractor) Mode() Mode { return ModeImages }

// Extract writes images in object number order. An image that cannot be
// decoded or written is skipped with a warning and keeps its ordinal, so
// the other images on the page are still saved under stable names. Only a
// failure to read the document fails the mode.
func (e *ImageExtractor) Extract(ctx context.Context, req *Request) Result {
	res := Result{Mode: ModeImages}

	assets, err := pdf.OpenAssets(req.Source)
	if err != nil {
		res.Err = pdferrors.Mode(string(ModeImages), "open", err)
		return res
	}

	dirReady := false
	for _, index := range req.Pages.Indices() {
		if err := ctx.Err(); err != nil {
			res.Err = pdferrors.Mode(string(ModeImages), "extract", err)
			return res
		}

		page := index + 1
		images, err := assets.PageImages(index)
		if err != nil {
			e.logger.Warn("Skipping page images", zap.Int("page", page), zap.Error(err))
			res.warn(pdferrors.Item(string(ModeImages), page, err))
			continue
		}
		e.logger.Debug("Found images", zap.Int("page", page), zap.Int("images", len(images)))

		for i, img := range images {
			if img.Err != nil {
				e.logger.Warn("Skipping image", zap.Int("page", page), zap.Int("image", i+1), zap.Error(img.Err))
				res.warn(pdferrors.Item(string(ModeImages), page, img.Err))
				continue
			}

			ext, data, err := encodeImage(img)
			if err != nil {
				e.logger.Warn("Skipping image", zap.Int("page", page), zap.Int("image", i+1), zap.Error(err))
				res.warn(pdferrors.Item(string(ModeImages), page, err))
				continue
			}

			if !dirReady {
				if err := output.EnsureDir(req.Layout.ImagesDir()); err != nil {
					res.Err = pdferrors.Mode(string(ModeImages), "mkdir", err)
					return res
				}
				dirReady = true
			}

			path := req.Layout.ImageFile(page, i+1, ext)
			if err := req.Layout.WriteFile(path, data); err != nil {
				e.logger.Warn("Image write failed", zap.Int("page", page), zap.Int("image", i+1), zap.Error(err))
				res.warn(pdferrors.Item(string(ModeImages), page, err))
				continue
			}

			res.Files = append(res.Files, path)
			res.Items++
		}
	}

	return res
}

// encodeImage returns the file extension and bytes to write for img. TIFF
// streams are transcoded to PNG; other formats are written as decoded.
func encodeImage(img pdf.ImageAsset) (string, []byte, error) {
	if len(img.Data) == 0 {
		return "", nil, fmt.Errorf("image %s (object %d) has no data", img.Name, img.ObjectNr)
	}

	switch img.Format {
	case "png", "jpg", "jpx":
		return img.Format, img.Data, nil
	case "tif":
		decoded, err := tiff.Decode(bytes.NewReader(img.Data))
		if err != nil {
			return "", nil, fmt.Errorf("image %s (object %d): failed to decode TIFF: %w", img.Name, img.ObjectNr, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, decoded); err != nil {
			return "", nil, fmt.Errorf("image %s (object %d): failed to encode PNG: %w", img.Name, img.ObjectNr, err)
		}
		return "png", buf.Bytes(), nil
	case "":
		return "", nil, fmt.Errorf("image %s (object %d): unsupported encoding", img.Name, img.ObjectNr)
	default:
		return "", nil, fmt.Errorf("image %s (object %d): unsupported format %q", img.Name, img.ObjectNr, img.Format)
	}
}
