package pdf

// DocumentInfo describes a validated source document
type DocumentInfo struct {
	Path  string `json:"path"`
	Size  int64  `json:"size"`
	Pages int    `json:"pages"`
}

// Glyph is a single positioned character as reported by the content
// stream interpreter. Coordinates are PDF user space (origin bottom-left);
// Y is the baseline.
type Glyph struct {
	Font     string  `json:"font"`
	FontSize float64 `json:"font_size"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w"`
	S        string  `json:"s"`
}

// Rect is an axis-aligned rectangle drawn on a page
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent of the rectangle
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent of the rectangle
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Layout is the positioned content of one page
type Layout struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Glyphs []Glyph `json:"glyphs"`
	Rects  []Rect  `json:"rects"`
}

// ImageAsset is an embedded raster image ready to be written to disk
type ImageAsset struct {
	PageNumber int    `json:"page_number"` // 1-based
	ObjectNr   int    `json:"object_nr"`
	Name       string `json:"name"` // resource name, e.g. Im1
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Format     string `json:"format"` // file type reported by the decoder: png, jpg, tif, jpx
	Data       []byte `json:"-"`
	Err        error  `json:"-"` // set when this image could not be decoded
}
