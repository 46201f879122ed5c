package openai

import (
	"fmt"
	"strings"
	"unicode/utf8"

	domain "github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
)

// batas karakter isi dokumen yang ikut dikirim ke model
const maxDocumentChars = 12000

// SystemPrompt berisi aturan dan skema blok data analisis.
func SystemPrompt() string {
	return `You are a compliance auditor for Indonesian government institutions. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- Write every text value in Bahasa Indonesia.
- Use only these indicators (id_indikator = position, starting at 1): ` + taxonomyList() + `.
- klasifikasi is 1 (sesuai), 2 (perlu perhatian) or 3 (tidak sesuai).
- score and score_compliance are between 0 and 1. tingkat_risiko is 1 (rendah), 2 (sedang) or 3 (tinggi).
- score_compliance is the mean of the indicator scores.
- Only give rekomendasi_per_indikator for indicators with klasifikasi 2 or 3.
- If the document content is not provided, infer conservatively from the title, description and file names.

Schema (example with empty values):
{
  "indikator_compliance": [
    {"id_indikator": 0, "nama_indikator": "<string>", "klasifikasi": 0, "detail_klasifikasi": "<string>", "alasan": "<string>", "score": 0.0}
  ],
  "summary_indicator_compliance": {"tingkat_risiko": 0, "score_compliance": 0.0},
  "rekomendasi_per_indikator": [
    {"id_indikator": 0, "judul": "<string>", "deskripsi": "<string>", "langkah_perbaikan": ["<string>"]}
  ],
  "list_peraturan_terkait": [
    {"judul_peraturan": "<string>", "instansi": "<string>", "tingkat_kesesuaian": 0.0, "link_peraturan": "<string>"}
  ]
}`
}

// UserPrompt merangkum submission jadi satu pesan user.
func UserPrompt(req domain.EngineRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analisis kepatuhan kegiatan berikut dan jawab dengan JSON sesuai skema.\n")
	fmt.Fprintf(&b, "ID instansi: %d\n", req.InstitutionID)
	fmt.Fprintf(&b, "Judul kegiatan: %s\n", req.Title)
	fmt.Fprintf(&b, "Deskripsi kegiatan: %s\n", req.Description)
	writeDocument(&b, "Dokumen kegiatan", req.ActivityDocument)
	if req.IncludeFinancial {
		writeDocument(&b, "Dokumen keuangan", req.FinancialDocument)
	}
	return b.String()
}

func writeDocument(b *strings.Builder, label string, d *domain.Document) {
	if d == nil {
		return
	}
	fmt.Fprintf(b, "%s: %s (%s, %d bytes)\n", label, d.Filename, d.ContentType, d.Size())
	if !isText(d.ContentType) {
		return
	}
	text, _ := redactSecrets(string(d.Data))
	text = truncateUTF8(text, maxDocumentChars)
	fmt.Fprintf(b, "Isi %s:\n%s\n", strings.ToLower(label), text)
}

// truncateUTF8 potong di batas karakter, bukan di tengah rune
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

func isText(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.HasPrefix(ct, "text/") || strings.Contains(ct, "json") || strings.Contains(ct, "csv")
}

func taxonomyList() string {
	names := make([]string, len(domain.IndicatorTaxonomy))
	for i, n := range domain.IndicatorTaxonomy {
		names[i] = fmt.Sprintf("%d=%s", i+1, n)
	}
	return strings.Join(names, ", ")
}
