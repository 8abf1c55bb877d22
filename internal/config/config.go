package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Table formats
	TableFormatCSV  = "csv"
	TableFormatJSON = "json"

	// OCR engines
	EngineTesseract = "tesseract"
	EngineGosseract = "gosseract"

	// Default values
	DefaultOutput      = "output"
	DefaultTableFormat = TableFormatCSV
	DefaultOCRDPI      = 300
	DefaultOCRLanguage = "eng"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// EnvPrefix is prepended to every environment variable, e.g.
	// PDF_EXTRACTOR_OUTPUT.
	EnvPrefix = "PDF_EXTRACTOR"

	// ConfigName is the base name of the optional YAML config file.
	ConfigName = "pdf-extractor"

	minOCRDPI = 72
	maxOCRDPI = 1200
)

// Flag and config keys
const (
	KeyFile        = "file"
	KeyText        = "text"
	KeyTables      = "tables"
	KeyImages      = "images"
	KeyOCR         = "ocr"
	KeyPages       = "pages"
	KeyOutput      = "output"
	KeyTableFormat = "table-format"
	KeyVerbose     = "verbose"
	KeyOCRDPI      = "ocr-dpi"
	KeyOCRLanguage = "ocr-lang"
	KeyOCREngine   = "ocr-engine"
	KeyMaxFileSize = "max-file-size"
)

var allKeys = []string{
	KeyFile, KeyText, KeyTables, KeyImages, KeyOCR, KeyPages, KeyOutput,
	KeyTableFormat, KeyVerbose, KeyOCRDPI, KeyOCRLanguage, KeyOCREngine, KeyMaxFileSize,
}

// Config holds the resolved configuration for one extraction run
type Config struct {
	// Source document
	File  string
	Pages string // page-spec, empty selects every page

	// Requested modes
	Text   bool
	Tables bool
	Images bool
	OCR    bool

	// Output configuration
	Output      string
	TableFormat string

	// OCR configuration
	OCRDPI       int
	OCRLanguages []string
	OCREngine    string

	// Application configuration
	Verbose     bool
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output:       DefaultOutput,
		TableFormat:  DefaultTableFormat,
		OCRDPI:       DefaultOCRDPI,
		OCRLanguages: []string{DefaultOCRLanguage},
		OCREngine:    EngineTesseract,
		MaxFileSize:  DefaultMaxFileSize,
	}
}

// DefineFlags registers the extraction flags on fs using cfg for defaults
func DefineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.String(KeyFile, cfg.File, "Path to the PDF file (required)")
	fs.Bool(KeyText, cfg.Text, "Extract plain text")
	fs.Bool(KeyTables, cfg.Tables, "Extract tables")
	fs.Bool(KeyImages, cfg.Images, "Extract embedded images")
	fs.Bool(KeyOCR, cfg.OCR, "Rasterize pages and apply OCR")
	fs.String(KeyPages, cfg.Pages, "Page numbers or ranges to process (e.g. 1-3,5,7)")
	fs.String(KeyOutput, cfg.Output, "Output directory")
	fs.String(KeyTableFormat, cfg.TableFormat, "Output format for tables (csv or json)")
	fs.Bool(KeyVerbose, cfg.Verbose, "Enable verbose logging")
	fs.Int(KeyOCRDPI, cfg.OCRDPI, "Rasterization resolution for OCR")
	fs.StringSlice(KeyOCRLanguage, cfg.OCRLanguages, "OCR languages (tesseract codes)")
	fs.String(KeyOCREngine, cfg.OCREngine, "OCR engine (tesseract or gosseract)")
	fs.Int64(KeyMaxFileSize, cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// Setup configures v with defaults, environment variables and an optional
// config file. An explicit configFile must exist; otherwise the default
// search locations are tried and a missing file is not an error.
func Setup(v *viper.Viper, cfg *Config, configFile string) error {
	v.SetDefault(KeyFile, cfg.File)
	v.SetDefault(KeyText, cfg.Text)
	v.SetDefault(KeyTables, cfg.Tables)
	v.SetDefault(KeyImages, cfg.Images)
	v.SetDefault(KeyOCR, cfg.OCR)
	v.SetDefault(KeyPages, cfg.Pages)
	v.SetDefault(KeyOutput, cfg.Output)
	v.SetDefault(KeyTableFormat, cfg.TableFormat)
	v.SetDefault(KeyVerbose, cfg.Verbose)
	v.SetDefault(KeyOCRDPI, cfg.OCRDPI)
	v.SetDefault(KeyOCRLanguage, cfg.OCRLanguages)
	v.SetDefault(KeyOCREngine, cfg.OCREngine)
	v.SetDefault(KeyMaxFileSize, cfg.MaxFileSize)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("cannot read config file %s: %w", configFile, err)
		}
		return nil
	}

	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", ConfigName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("cannot read config file: %w", err)
		}
	}
	return nil
}

// BindFlags binds every extraction flag in fs to v
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, key := range allKeys {
		flag := fs.Lookup(key)
		if flag == nil {
			return fmt.Errorf("flag --%s is not defined", key)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("cannot bind flag --%s: %w", key, err)
		}
	}
	return nil
}

// Load builds a Config from v and validates it
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		File:         v.GetString(KeyFile),
		Pages:        v.GetString(KeyPages),
		Text:         v.GetBool(KeyText),
		Tables:       v.GetBool(KeyTables),
		Images:       v.GetBool(KeyImages),
		OCR:          v.GetBool(KeyOCR),
		Output:       v.GetString(KeyOutput),
		TableFormat:  strings.ToLower(v.GetString(KeyTableFormat)),
		OCRDPI:       v.GetInt(KeyOCRDPI),
		OCRLanguages: splitList(v.GetStringSlice(KeyOCRLanguage)),
		OCREngine:    strings.ToLower(v.GetString(KeyOCREngine)),
		Verbose:      v.GetBool(KeyVerbose),
		MaxFileSize:  v.GetInt64(KeyMaxFileSize),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList flattens comma separated entries. Values coming from the
// environment or a plain config file string are only split on whitespace
// by viper, so "eng,deu" arrives as a single entry.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks if the configuration is valid. It performs no I/O.
func (c *Config) Validate() error {
	if c.File == "" {
		return errors.New("--file is required")
	}

	if !c.AnyMode() {
		return errors.New("at least one of --text, --tables, --images or --ocr is required")
	}

	if c.Output == "" {
		return errors.New("output directory cannot be empty")
	}

	if c.TableFormat != TableFormatCSV && c.TableFormat != TableFormatJSON {
		return fmt.Errorf("invalid table format: %s (must be one of: csv, json)", c.TableFormat)
	}

	if c.OCRDPI < minOCRDPI || c.OCRDPI > maxOCRDPI {
		return fmt.Errorf("ocr dpi must be between %d and %d", minOCRDPI, maxOCRDPI)
	}

	if c.OCREngine != EngineTesseract && c.OCREngine != EngineGosseract {
		return fmt.Errorf("invalid ocr engine: %s (must be one of: tesseract, gosseract)", c.OCREngine)
	}

	if len(c.OCRLanguages) == 0 {
		return errors.New("at least one ocr language is required")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	return nil
}

// AnyMode reports whether at least one extraction mode is requested
func (c *Config) AnyMode() bool {
	return c.Text || c.Tables || c.Images || c.OCR
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{File: %s, Pages: %q, Text: %t, Tables: %t, Images: %t, OCR: %t, "+
		"Output: %s, TableFormat: %s, OCRDPI: %d, OCRLanguages: %v, OCREngine: %s, MaxFileSize: %d}",
		c.File, c.Pages, c.Text, c.Tables, c.Images, c.OCR,
		c.Output, c.TableFormat, c.OCRDPI, c.OCRLanguages, c.OCREngine, c.MaxFileSize)
}
