//go:build !gosseract

package ocr

// EngineGosseract is the name of the libtesseract engine
const EngineGosseract = "gosseract"

func init() {
	Register(EngineGosseract, func() Engine {
		return unavailableEngine{
			name:   EngineGosseract,
			reason: "gosseract (libtesseract) support is not compiled in; rebuild with -tags gosseract",
		}
	})
}
