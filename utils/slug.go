package utils

import (
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
)

// SafeFileName slugifies the base name of a file and keeps its extension,
// e.g. "Q3 Report (final).PDF" becomes "q3-report-final.pdf".
func SafeFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		stem = "file"
	}
	if ext != "" && slug.Make(ext[1:]) != ext[1:] {
		ext = ""
	}
	return stem + ext
}
