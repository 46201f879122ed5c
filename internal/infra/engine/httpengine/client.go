// Package httpengine talks to the external compliance scoring engine over HTTP.
package httpengine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/bryanwahyu/compliance-gateway/internal/application"
	domain "github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
	"github.com/bryanwahyu/compliance-gateway/internal/domain/engine"
)

const (
	DefaultAnalyzePath = "/api/v1/compliance/analyze"
	DefaultTimeout     = 120 * time.Second

	DefaultMaxResponseBytes = 10 << 20
)

// DefaultOfflineSignatures are body fragments returned by the tunnel in front of
// the engine when the engine process is down.
var DefaultOfflineSignatures = []string{
	"ERR_NGROK_3200",
	"ERR_NGROK_3004",
	"ERR_NGROK_8012",
	"tunnel not found",
	"is offline",
}

type Options struct {
	BaseURL           string
	AnalyzePath       string
	Timeout           time.Duration
	OfflineSignatures []string
	Clock             application.Clock
	HTTPClient        *http.Client
	MaxResponseBytes  int64
}

type Client struct {
	http       *http.Client
	endpoint   string
	signatures []string
	clock      application.Clock
	maxBytes   int64
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("engine base url is required")
	}
	path := opts.AnalyzePath
	if path == "" {
		path = DefaultAnalyzePath
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	// salin client milik caller, jangan ubah timeout-nya
	hc := &http.Client{}
	if opts.HTTPClient != nil {
		cp := *opts.HTTPClient
		hc = &cp
	}
	if hc.Timeout <= 0 {
		hc.Timeout = timeout
	}
	maxBytes := opts.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxResponseBytes
	}
	sigs := opts.OfflineSignatures
	if len(sigs) == 0 {
		sigs = DefaultOfflineSignatures
	}
	clock := opts.Clock
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Client{
		http:       hc,
		endpoint:   strings.TrimRight(opts.BaseURL, "/") + "/" + strings.TrimLeft(path, "/"),
		signatures: sigs,
		clock:      clock,
		maxBytes:   maxBytes,
	}, nil
}

// Analyze kirim satu request multipart ke engine, tanpa retry.
func (c *Client) Analyze(ctx context.Context, req domain.EngineRequest) (*domain.EngineResult, error) {
	body, contentType, err := encodeMultipart(req)
	if err != nil {
		return nil, fmt.Errorf("build engine request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build engine request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	// ngrok menampilkan halaman interstitial tanpa header ini
	httpReq.Header.Set("ngrok-skip-browser-warning", "true")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &domain.EngineError{Kind: domain.EngineUnreachable, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, &domain.EngineError{Kind: domain.EngineUnreachable, StatusCode: resp.StatusCode, Err: err}
	}
	if int64(len(raw)) > c.maxBytes {
		return nil, &domain.EngineError{
			Kind:       domain.EngineTooLarge,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("limit of %d bytes", c.maxBytes),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if c.isOffline(raw) {
			return &domain.EngineResult{
				Raw:        engine.FallbackBody(c.clock.Now()),
				StatusCode: http.StatusOK,
				Fallback:   true,
			}, nil
		}
		return nil, &domain.EngineError{
			Kind:       domain.EngineUpstreamStatus,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}

	if !isJSON(resp.Header.Get("Content-Type")) {
		return nil, &domain.EngineError{
			Kind:       domain.EngineContentType,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}
	return &domain.EngineResult{Raw: raw, StatusCode: resp.StatusCode}, nil
}

func (c *Client) isOffline(body []byte) bool {
	text := strings.ToLower(string(body))
	for _, sig := range c.signatures {
		if sig != "" && strings.Contains(text, strings.ToLower(sig)) {
			return true
		}
	}
	return false
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func encodeMultipart(req domain.EngineRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"id_instansi", strconv.FormatInt(req.InstitutionID, 10)},
		{"judul_dok_kegiatan", req.Title},
		{"deskripsi_dok_kegiatan", req.Description},
		{"include_dok_keuangan", strconv.FormatBool(req.IncludeFinancial)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := writeFile(w, "dok_kegiatan", req.ActivityDocument); err != nil {
		return nil, "", err
	}
	if req.IncludeFinancial {
		if err := writeFile(w, "dok_keuangan", req.FinancialDocument); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFile(w *multipart.Writer, field string, d *domain.Document) error {
	if d == nil {
		return nil
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(d.Filename)))
	ct := d.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(d.Data)
	return err
}
