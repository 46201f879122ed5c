package engine

import (
	"encoding/json"
	"fmt"
	"time"
)

// FallbackMessage tells callers the result is a placeholder.
const FallbackMessage = "Engine analisis sedang offline, hasil ini adalah data contoh (fallback)"

// NewFallback builds the fixed placeholder result returned while the engine is offline.
func NewFallback(now time.Time) *FallbackResponse {
	return &FallbackResponse{
		AnalysisID: fmt.Sprintf("fallback-%d", now.UnixMilli()),
		IsFallback: true,
		Message:    FallbackMessage,
		DataResponse: &FallbackData{
			Indicators: []IndicatorPayload{
				{
					IDIndikator:       1,
					NamaIndikator:     "Kepatuhan Prosedural",
					Klasifikasi:       1,
					DetailKlasifikasi: "Sesuai",
					Alasan:            "Dokumen kegiatan memuat tahapan pelaksanaan yang sesuai prosedur.",
					Score:             0.85,
				},
				{
					IDIndikator:       2,
					NamaIndikator:     "Efisiensi Anggaran",
					Klasifikasi:       2,
					DetailKlasifikasi: "Sebagian Sesuai",
					Alasan:            "Rincian anggaran belum sepenuhnya dikaitkan dengan output kegiatan.",
					Score:             0.78,
				},
			},
			Summary: &FallbackSummary{
				Sentiment:    "neutral",
				Confidence:   0.5,
				RiskLevel:    1,
				OverallScore: 0.815,
			},
			Recommendations: []RecommendationPayload{
				{
					IDIndikator: 2,
					Judul:       "Perjelas keterkaitan anggaran dan output",
					Deskripsi:   "Tambahkan matriks yang menghubungkan setiap pos anggaran dengan output kegiatan.",
					LangkahPerbaikan: []string{
						"Identifikasi pos anggaran utama",
						"Petakan setiap pos ke output kegiatan",
						"Lampirkan matriks pada dokumen kegiatan",
					},
				},
			},
			Regulations: []RegulationPayload{
				{
					JudulPeraturan:    "Peraturan Presiden Nomor 12 Tahun 2021 tentang Pengadaan Barang/Jasa Pemerintah",
					Instansi:          "Kementerian Sekretariat Negara",
					TingkatKesesuaian: 0.8,
					LinkPeraturan:     "https://peraturan.bpk.go.id/Details/161828/perpres-no-12-tahun-2021",
				},
				{
					JudulPeraturan:    "Undang-Undang Nomor 14 Tahun 2008 tentang Keterbukaan Informasi Publik",
					Instansi:          "Dewan Perwakilan Rakyat",
					TingkatKesesuaian: 0.75,
					LinkPeraturan:     "https://peraturan.bpk.go.id/Details/39047/uu-no-14-tahun-2008",
				},
			},
		},
	}
}

// FallbackBody is NewFallback encoded as JSON.
func FallbackBody(now time.Time) []byte {
	b, _ := json.Marshal(NewFallback(now))
	return b
}
