package analysis

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

// financialMarkers are filename tokens that identify a financial document.
var financialMarkers = []string{"keuangan", "financial", "finance", "anggaran"}

// ClassifyFile menentukan tipe file dari slot upload dan nama file.
func ClassifyFile(slot FileType, names ...string) FileType {
	if slot == FileFinancial {
		return FileFinancial
	}
	for _, n := range names {
		lower := strings.ToLower(n)
		for _, m := range financialMarkers {
			if strings.Contains(lower, m) {
				return FileFinancial
			}
		}
	}
	return FileActivity
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFilename strips directories and replaces unsafe characters.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeName.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "dokumen"
	}
	return name
}

// StorageKey builds uploads/analysis/{institution}/{user}/{timestamp}_{name}.
func StorageKey(institutionID, userID int64, at time.Time, filename string) string {
	return fmt.Sprintf("uploads/analysis/%d/%d/%d_%s",
		institutionID, userID, at.UnixMilli(), SanitizeFilename(filename))
}
