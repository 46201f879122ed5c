package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/compliance-gateway/internal/application"
	domain "github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
	"github.com/bryanwahyu/compliance-gateway/internal/domain/engine"
)

const modelData = `{
  "indikator_compliance": [
    {"id_indikator": 1, "nama_indikator": "Kepatuhan Prosedural", "klasifikasi": 1, "detail_klasifikasi": "Sesuai", "alasan": "ok", "score": 0.9},
    {"id_indikator": 2, "nama_indikator": "Efisiensi Anggaran", "klasifikasi": 2, "detail_klasifikasi": "Perlu perhatian", "alasan": "boros", "score": 0.7}
  ],
  "summary_indicator_compliance": {"tingkat_risiko": 2, "score_compliance": 0.8},
  "rekomendasi_per_indikator": [
    {"id_indikator": 2, "judul": "Hemat", "deskripsi": "Kurangi belanja", "langkah_perbaikan": ["audit"]}
  ],
  "list_peraturan_terkait": []
}`

func completionServer(t *testing.T, status int, body func(r *http.Request) string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body(r))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func request() domain.EngineRequest {
	return domain.EngineRequest{
		InstitutionID:    7,
		Title:            "Pengadaan ATK",
		Description:      "Belanja kantor",
		IncludeFinancial: true,
		ActivityDocument: &domain.Document{Filename: "kegiatan.txt", ContentType: "text/plain", Data: []byte("rapat pengadaan")},
		FinancialDocument: &domain.Document{
			Filename: "keuangan.pdf", ContentType: "application/pdf", Data: []byte("%PDF"),
		},
	}
}

func TestAnalyze_WrapsModelOutputInLiveEnvelope(t *testing.T) {
	url := completionServer(t, http.StatusOK, func(r *http.Request) string {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "Pengadaan ATK")
		assert.Contains(t, req.Messages[1].Content, "rapat pengadaan")
		assert.NotContains(t, req.Messages[1].Content, "%PDF")

		content, _ := json.Marshal(modelData)
		return `{"id":"chatcmpl-42","object":"chat.completion","model":"gpt-4o-mini","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":` + string(content) + `}}]}`
	})

	c := NewClient("sk-test", "", url, application.FixedClock{At: time.Unix(1735689600, 0)})
	res, err := c.Analyze(context.Background(), request())
	require.NoError(t, err)
	assert.False(t, res.Fallback)

	n, err := engine.Parse(res.Raw)
	require.NoError(t, err)
	assert.Equal(t, "chatcmpl-42", n.EngineAnalysisID)
	assert.Equal(t, 2, n.RiskLevel)
	assert.InDelta(t, 0.8, n.ComplianceScore, 1e-9)
	assert.Len(t, n.Indicators, 2)
	assert.Len(t, n.Recommendations, 1)
}

func TestAnalyze_QuotaKeepsStatus(t *testing.T) {
	url := completionServer(t, http.StatusTooManyRequests, func(*http.Request) string {
		return `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`
	})

	c := NewClient("sk-test", "gpt-4o", url, nil)
	_, err := c.Analyze(context.Background(), request())
	require.ErrorIs(t, err, domain.ErrEngine)

	var ee *domain.EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, domain.EngineUpstreamStatus, ee.Kind)
	assert.Equal(t, http.StatusTooManyRequests, ee.StatusCode)
}

func TestAnalyze_NonJSONCompletion(t *testing.T) {
	url := completionServer(t, http.StatusOK, func(*http.Request) string {
		return `{"id":"x","choices":[{"index":0,"message":{"role":"assistant","content":"maaf, tidak bisa"}}]}`
	})

	c := NewClient("sk-test", "", url, nil)
	_, err := c.Analyze(context.Background(), request())
	var ee *domain.EngineError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, domain.EngineContentType, ee.Kind)
}

func TestUserPrompt_SkipsFinancialWhenExcluded(t *testing.T) {
	req := request()
	req.IncludeFinancial = false
	p := UserPrompt(req)
	assert.Contains(t, p, "kegiatan.txt")
	assert.NotContains(t, p, "keuangan.pdf")
	assert.Contains(t, SystemPrompt(), "7=Evaluasi dan Tindak Lanjut")
}

func TestIsReasoningModel(t *testing.T) {
	assert.True(t, isReasoningModel("o3-2025-04-16"))
	assert.True(t, isReasoningModel("gpt-5-mini"))
	assert.False(t, isReasoningModel("gpt-4o"))
}
