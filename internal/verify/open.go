package verify

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a supported document container.
type Format string

const (
	// FormatAuto detects the format from the file extension.
	FormatAuto Format = ""
	FormatZip  Format = "zip"
	FormatRar  Format = "rar"
)

// Detect resolves FormatAuto against the file extension. Explicit formats
// pass through unchanged.
func Detect(path string, format Format) (Format, error) {
	if format != FormatAuto {
		return format, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return FormatZip, nil
	case ".rar":
		return FormatRar, nil
	default:
		return FormatAuto, fmt.Errorf("cannot detect document format of %q; pass an explicit format", filepath.Base(path))
	}
}

// Open constructs the verifier for the target document. With FormatAuto the
// container is chosen by file extension. A missing target or an
// undetectable format is an input error; a target that exists but does not
// parse is not, it surfaces later as an unconfirmed encryption check.
func Open(path string, format Format) (Verifier, error) {
	if path == "" {
		return nil, fmt.Errorf("target path not provided")
	}

	format, err := Detect(path, format)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatZip:
		return OpenZip(path)
	case FormatRar:
		return OpenRar(path)
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}
}
