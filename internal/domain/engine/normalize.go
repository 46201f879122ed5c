package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
)

// Normalized is the common shape both envelope variants reduce to.
type Normalized struct {
	EngineAnalysisID string
	RiskLevel        int
	ComplianceScore  float64
	Fallback         bool
	Indicators       []analysis.Indicator
	Recommendations  []analysis.Recommendation
	Regulations      []analysis.Regulation
}

// Decode picks the envelope variant from the top-level keys.
func Decode(raw []byte) (Response, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, analysis.Malformed("payload is not a JSON object", raw)
	}
	switch {
	case probe["data_response"] != nil:
		var fb FallbackResponse
		if err := json.Unmarshal(raw, &fb); err != nil {
			return nil, analysis.Malformed(fmt.Sprintf("fallback envelope: %v", err), raw)
		}
		return &fb, nil
	case probe["data"] != nil:
		var live LiveResponse
		if err := json.Unmarshal(raw, &live); err != nil {
			return nil, analysis.Malformed(fmt.Sprintf("live envelope: %v", err), raw)
		}
		return &live, nil
	}
	return nil, analysis.Malformed("unknown envelope: neither data nor data_response present", raw)
}

// Normalize validates the envelope and maps it into domain values.
// Nothing is written before this succeeds.
func Normalize(resp Response) (*Normalized, error) {
	switch r := resp.(type) {
	case *LiveResponse:
		return normalizeLive(r)
	case *FallbackResponse:
		return normalizeFallback(r)
	default:
		return nil, analysis.Malformed(fmt.Sprintf("unsupported envelope %T", resp), nil)
	}
}

// Parse = Decode + Normalize, attaching raw to any MalformedPayloadError.
func Parse(raw []byte) (*Normalized, error) {
	resp, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	n, err := Normalize(resp)
	if err != nil {
		var mp *analysis.MalformedPayloadError
		if errors.As(err, &mp) && mp.Raw == nil {
			mp.Raw = raw
		}
		return nil, err
	}
	return n, nil
}

func normalizeLive(r *LiveResponse) (*Normalized, error) {
	if r.Data == nil {
		return nil, analysis.Malformed("data missing", nil)
	}
	if r.Data.Summary == nil {
		return nil, analysis.Malformed("data.summary_indicator_compliance missing", nil)
	}
	if r.Data.Indicators == nil {
		return nil, analysis.Malformed("data.indikator_compliance missing", nil)
	}
	return &Normalized{
		EngineAnalysisID: string(r.Data.IDDokumen),
		RiskLevel:        r.Data.Summary.TingkatRisiko,
		ComplianceScore:  r.Data.Summary.ScoreCompliance,
		Indicators:       indicators(r.Data.Indicators),
		Recommendations:  recommendations(r.Data.Recommendations),
		Regulations:      regulations(r.Data.Regulations),
	}, nil
}

func normalizeFallback(r *FallbackResponse) (*Normalized, error) {
	if r.DataResponse == nil {
		return nil, analysis.Malformed("data_response missing", nil)
	}
	if r.DataResponse.Summary == nil {
		return nil, analysis.Malformed("data_response.summary_indicator_compliance missing", nil)
	}
	if r.DataResponse.Indicators == nil {
		return nil, analysis.Malformed("data_response.indikator_compliance missing", nil)
	}
	return &Normalized{
		EngineAnalysisID: r.AnalysisID,
		RiskLevel:        r.DataResponse.Summary.RiskLevel,
		ComplianceScore:  r.DataResponse.Summary.OverallScore,
		Fallback:         true,
		Indicators:       indicators(r.DataResponse.Indicators),
		Recommendations:  recommendations(r.DataResponse.Recommendations),
		Regulations:      regulations(r.DataResponse.Regulations),
	}, nil
}

func indicators(in []IndicatorPayload) []analysis.Indicator {
	out := make([]analysis.Indicator, 0, len(in))
	for _, p := range in {
		out = append(out, analysis.Indicator{
			Index:          p.IDIndikator,
			Name:           p.NamaIndikator,
			Classification: analysis.Classification(p.Klasifikasi),
			Detail:         p.DetailKlasifikasi,
			Rationale:      p.Alasan,
			Score:          p.Score,
		})
	}
	return out
}

// orphan id_indikator values are kept as-is
func recommendations(in []RecommendationPayload) []analysis.Recommendation {
	out := make([]analysis.Recommendation, 0, len(in))
	for _, p := range in {
		steps := p.LangkahPerbaikan
		if steps == nil {
			steps = []string{}
		}
		out = append(out, analysis.Recommendation{
			IndicatorID: p.IDIndikator,
			Title:       p.Judul,
			Description: p.Deskripsi,
			Steps:       steps,
		})
	}
	return out
}

func regulations(in []RegulationPayload) []analysis.Regulation {
	out := make([]analysis.Regulation, 0, len(in))
	for _, p := range in {
		out = append(out, analysis.Regulation{
			Title:       p.JudulPeraturan,
			Institution: p.Instansi,
			Alignment:   p.TingkatKesesuaian,
			URL:         p.LinkPeraturan,
		})
	}
	return out
}
