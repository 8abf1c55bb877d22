package pdf

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Assets gives access to the embedded images of a document through pdfcpu
type Assets struct {
	ctx *model.Context
}

// OpenAssets reads, validates (relaxed) and optimizes the document so that
// per-page image lists are available. The file handle is released before
// returning; the parsed context is held in memory.
func OpenAssets(path string) (*Assets, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ReadAssets(file)
}

// ReadAssets is OpenAssets for an already opened document
func ReadAssets(rs io.ReadSeeker) (*Assets, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	return &Assets{ctx: ctx}, nil
}

// NumPages returns the number of pages in the document
func (a *Assets) NumPages() int {
	return a.ctx.PageCount
}

// PageImages decodes the images used by the zero-based page index, ordered
// by object number. Each image is decoded on its own: one that fails is
// returned with Err set and the others are unaffected. Page thumbnails are
// not page content and are left out. An error means the page as a whole
// could not be processed.
func (a *Assets) PageImages(index int) ([]ImageAsset, error) {
	pageNr := index + 1
	if pageNr < 1 || pageNr > a.ctx.PageCount {
		return nil, fmt.Errorf("invalid page index %d (document has %d pages)", index, a.ctx.PageCount)
	}
	if a.ctx.Optimize == nil {
		return nil, fmt.Errorf("image extraction failed on page %d: document was not optimized", pageNr)
	}

	objNrs := pdfcpu.ImageObjNrs(a.ctx, pageNr)
	sort.Ints(objNrs)

	images := make([]ImageAsset, 0, len(objNrs))
	for _, objNr := range objNrs {
		imageObj, ok := a.ctx.Optimize.ImageObjects[objNr]
		if !ok || imageObj == nil {
			continue
		}
		images = append(images, a.extractImage(pageNr, objNr, imageObj))
	}

	return images, nil
}

// extractImage decodes a single image object, recording any failure on the
// returned asset
func (a *Assets) extractImage(pageNr, objNr int, imageObj *model.ImageObject) (asset ImageAsset) {
	name := imageObj.ResourceNames[pageNr-1]
	asset = ImageAsset{PageNumber: pageNr, ObjectNr: objNr, Name: name}

	defer func() {
		if r := recover(); r != nil {
			asset.Data = nil
			asset.Err = fmt.Errorf("image %s (object %d) on page %d: decode panicked: %v", name, objNr, pageNr, r)
		}
	}()

	img, err := pdfcpu.ExtractImage(a.ctx, imageObj.ImageDict, false, name, objNr, false)
	if err != nil {
		asset.Err = fmt.Errorf("image %s (object %d) on page %d: %w", name, objNr, pageNr, err)
		return asset
	}
	if img == nil {
		asset.Err = fmt.Errorf("image %s (object %d) on page %d: unsupported encoding", name, objNr, pageNr)
		return asset
	}

	asset.Width = img.Width
	asset.Height = img.Height
	asset.Format = img.FileType
	if img.Reader != nil {
		data, err := io.ReadAll(img.Reader)
		if err != nil {
			asset.Err = fmt.Errorf("failed to read image %s (object %d) on page %d: %w", name, objNr, pageNr, err)
			return asset
		}
		asset.Data = data
	}
	return asset
}
