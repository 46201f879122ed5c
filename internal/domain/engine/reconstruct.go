package engine

import (
	"strconv"
	"time"

	"github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
)

// FromRecord rebuilds the live engine envelope from a stored record so history
// can be consumed like a fresh analysis response.
func FromRecord(r *analysis.Record) *LiveResponse {
	id := strconv.FormatInt(int64(r.ID), 10)
	if r.EngineAnalysisID != nil && *r.EngineAnalysisID != "" {
		id = *r.EngineAnalysisID
	}

	data := &LiveData{
		IDDokumen:          FlexString(id),
		IDInstansi:         FlexInt(r.InstitutionID),
		JudulKegiatan:      r.Title,
		DeskripsiKegiatan:  r.Description,
		IncludeDokKeuangan: FlexBool(r.IncludeFinancial),
		PathDokKegiatan:    r.ActivityDocPath,
		PathDokKeuangan:    r.FinancialDocPath,
		Summary: &LiveSummary{
			TingkatRisiko:   r.RiskLevel,
			ScoreCompliance: r.ComplianceScore,
		},
		Regulations:     make([]RegulationPayload, 0, len(r.Regulations)),
		Indicators:      make([]IndicatorPayload, 0, len(r.Indicators)),
		Recommendations: make([]RecommendationPayload, 0, len(r.Recommendations)),
		RecordID:        int64(r.ID),
		IsFallback:      r.Fallback,
		CreatedAt:       r.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, in := range r.Indicators {
		data.Indicators = append(data.Indicators, IndicatorPayload{
			IDIndikator:       in.Index,
			NamaIndikator:     in.Name,
			Klasifikasi:       int(in.Classification),
			DetailKlasifikasi: in.Detail,
			Alasan:            in.Rationale,
			Score:             in.Score,
		})
	}
	for _, rec := range r.Recommendations {
		data.Recommendations = append(data.Recommendations, RecommendationPayload{
			IDIndikator:      rec.IndicatorID,
			Judul:            rec.Title,
			Deskripsi:        rec.Description,
			LangkahPerbaikan: rec.Steps,
		})
	}
	for _, reg := range r.Regulations {
		data.Regulations = append(data.Regulations, RegulationPayload{
			JudulPeraturan:    reg.Title,
			Instansi:          reg.Institution,
			TingkatKesesuaian: reg.Alignment,
			LinkPeraturan:     reg.URL,
		})
	}

	return &LiveResponse{
		Status:    string(r.Status),
		Message:   "Data analisis berhasil diambil",
		Timestamp: r.CreatedAt.UTC().Format(time.RFC3339),
		Data:      data,
	}
}
