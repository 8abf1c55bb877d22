package pdf

import (
	"fmt"
	"strings"
)

// Metadata holds the document information dictionary entries
type Metadata struct {
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Keywords     string `json:"keywords,omitempty"`
	Creator      string `json:"creator,omitempty"`
	Producer     string `json:"producer,omitempty"`
	CreationDate string `json:"creation_date,omitempty"`
	ModDate      string `json:"mod_date,omitempty"`
}

// Metadata reads the trailer's Info dictionary. A document without one
// yields empty metadata.
func (d *Document) Metadata() (meta Metadata, err error) {
	// The ledongthuc/pdf library requires careful handling of Value types
	defer func() {
		if r := recover(); r != nil {
			meta, err = Metadata{}, fmt.Errorf("failed to read document info: %v", r)
		}
	}()

	trailer := d.reader.Trailer()
	if trailer.IsNull() {
		return meta, nil
	}

	info := trailer.Key("Info")
	if info.IsNull() {
		return meta, nil
	}

	field := func(key string) string {
		return strings.TrimSpace(info.Key(key).Text())
	}

	return Metadata{
		Title:        field("Title"),
		Author:       field("Author"),
		Subject:      field("Subject"),
		Keywords:     field("Keywords"),
		Creator:      field("Creator"),
		Producer:     field("Producer"),
		CreationDate: field("CreationDate"),
		ModDate:      field("ModDate"),
	}, nil
}
