package htmldoc

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the authoring format of a page source.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatDOCX     Format = "docx"
)

// SupportedExtensions maps source file extensions to their format.
var SupportedExtensions = map[string]Format{
	".html":     FormatHTML,
	".htm":      FormatHTML,
	".xhtml":    FormatHTML,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".docx":     FormatDOCX,
}

// FormatFor returns the format of filename.
func FormatFor(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	f, ok := SupportedExtensions[ext]
	if !ok {
		return "", fmt.Errorf("unsupported page extension: %s", ext)
	}
	return f, nil
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	_, err := FormatFor(filename)
	return err == nil
}

// ToHTML converts a page source to HTML.
func ToHTML(format Format, src []byte) (string, error) {
	switch format {
	case FormatHTML, "":
		return string(src), nil
	case FormatMarkdown:
		return FromMarkdown(src)
	case FormatDOCX:
		return FromDOCX(src)
	default:
		return "", fmt.Errorf("unsupported page format: %s", format)
	}
}
