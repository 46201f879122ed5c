// Package engine describes the scoring engine's wire envelopes and maps them
// onto the analysis domain.
package engine

// Variant tags an EngineResponse.
type Variant string

const (
	VariantLive     Variant = "live"
	VariantFallback Variant = "fallback"
)

// Response is either *LiveResponse or *FallbackResponse.
type Response interface {
	Variant() Variant
}

// IndicatorPayload satu indikator compliance
type IndicatorPayload struct {
	IDIndikator       int     `json:"id_indikator"`
	NamaIndikator     string  `json:"nama_indikator"`
	Klasifikasi       int     `json:"klasifikasi"`
	DetailKlasifikasi string  `json:"detail_klasifikasi"`
	Alasan            string  `json:"alasan"`
	Score             float64 `json:"score"`
}

// RecommendationPayload rekomendasi per indikator
type RecommendationPayload struct {
	IDIndikator      int      `json:"id_indikator"`
	Judul            string   `json:"judul"`
	Deskripsi        string   `json:"deskripsi"`
	LangkahPerbaikan []string `json:"langkah_perbaikan"`
}

// RegulationPayload peraturan terkait
type RegulationPayload struct {
	JudulPeraturan    string  `json:"judul_peraturan"`
	Instansi          string  `json:"instansi"`
	TingkatKesesuaian float64 `json:"tingkat_kesesuaian"`
	LinkPeraturan     string  `json:"link_peraturan"`
}

// LiveSummary summary_indicator_compliance dari engine
type LiveSummary struct {
	TingkatRisiko   int     `json:"tingkat_risiko"`
	ScoreCompliance float64 `json:"score_compliance"`
}

// LiveData blok data dari engine
type LiveData struct {
	IDDokumen          FlexString              `json:"id_dokumen"`
	IDInstansi         FlexInt                 `json:"id_instansi"`
	JudulKegiatan      string                  `json:"judul_kegiatan"`
	DeskripsiKegiatan  string                  `json:"deskripsi_kegiatan"`
	IncludeDokKeuangan FlexBool                `json:"include_dok_keuangan"`
	PathDokKegiatan    string                  `json:"path_dok_kegiatan"`
	PathDokKeuangan    *string                 `json:"path_dok_keuangan"`
	Regulations        []RegulationPayload     `json:"list_peraturan_terkait"`
	Indicators         []IndicatorPayload      `json:"indikator_compliance"`
	Summary            *LiveSummary            `json:"summary_indicator_compliance"`
	Recommendations    []RecommendationPayload `json:"rekomendasi_per_indikator"`

	// set only on envelopes rebuilt from history
	RecordID   int64  `json:"db_id,omitempty"`
	IsFallback bool   `json:"is_fallback,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// LiveResponse envelope dari engine yang hidup
type LiveResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp string    `json:"timestamp"`
	Data      *LiveData `json:"data"`
}

func (*LiveResponse) Variant() Variant { return VariantLive }

// FallbackSummary ringkasan pada payload fallback
type FallbackSummary struct {
	Sentiment    string  `json:"sentiment"`
	Confidence   float64 `json:"confidence"`
	RiskLevel    int     `json:"risk_level"`
	OverallScore float64 `json:"overall_score"`
}

// FallbackData blok data_response
type FallbackData struct {
	Indicators      []IndicatorPayload      `json:"indikator_compliance"`
	Summary         *FallbackSummary        `json:"summary_indicator_compliance"`
	Recommendations []RecommendationPayload `json:"rekomendasi_per_indikator"`
	Regulations     []RegulationPayload     `json:"list_peraturan_terkait"`
}

// FallbackResponse dipakai saat engine offline
type FallbackResponse struct {
	AnalysisID   string        `json:"analysis_id"`
	IsFallback   bool          `json:"is_fallback"`
	Message      string        `json:"message,omitempty"`
	DataResponse *FallbackData `json:"data_response"`
}

func (*FallbackResponse) Variant() Variant { return VariantFallback }
