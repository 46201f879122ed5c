package httpserver

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appanalysis "github.com/bryanwahyu/compliance-gateway/internal/application/analysis"
	domain "github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
	"github.com/bryanwahyu/compliance-gateway/internal/middleware"
)

const (
	FallbackHeader = "X-Analysis-Fallback"
	RecordIDHeader = "X-Analysis-Record-Id"

	multipartMemory = 32 << 20
)

// POST /analysis (multipart)
// Fields: id_instansi, judul_dok_kegiatan, deskripsi_dok_kegiatan, include_dok_keuangan,
// file dok_kegiatan, file dok_keuangan.
func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	// dua dokumen + field teks
	req.Body = http.MaxBytesReader(w, req.Body, 2*r.maxUpload+(1<<20))
	if err := req.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return domain.NewValidationError("file", fmt.Sprintf("ukuran upload melebihi %d byte", mbe.Limit))
		}
		return domain.NewValidationError("body", "request harus berupa multipart/form-data")
	}
	defer req.MultipartForm.RemoveAll()

	form := req.MultipartForm.Value
	get := func(k string) string {
		if v := form[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	var sub domain.Submission
	if inst, err := middleware.OptionalInt64(req.MultipartForm.Value, "id_instansi"); err != nil {
		return err
	} else if inst != nil {
		sub.InstitutionID = *inst
	}
	include, err := middleware.ParseBool("include_dok_keuangan", get("include_dok_keuangan"))
	if err != nil {
		return err
	}
	sub.Title = middleware.SanitizeString(get("judul_dok_kegiatan"))
	sub.Description = middleware.SanitizeString(get("deskripsi_dok_kegiatan"))
	sub.IncludeFinancial = include

	if sub.ActivityDocument, err = readDocument(req.MultipartForm, "dok_kegiatan"); err != nil {
		return err
	}
	if sub.FinancialDocument, err = readDocument(req.MultipartForm, "dok_keuangan"); err != nil {
		return err
	}

	res, err := r.svc.Submit(req.Context(), middleware.GetPrincipal(req.Context()), sub)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(FallbackHeader, strconv.FormatBool(res.Normalized.Fallback || res.Engine.Fallback))
	if res.Persistence.Saved {
		w.Header().Set(RecordIDHeader, strconv.FormatInt(int64(res.Persistence.RecordID), 10))
	}
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(res.Engine.Raw)
	return err
}

func readDocument(form *multipart.Form, field string) (*domain.Document, error) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	return &domain.Document{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

type historyResponse struct {
	Success    bool              `json:"success"`
	Data       []*domain.Record  `json:"data"`
	Pagination domain.Pagination `json:"pagination"`
}

// GET /analysis/history?user_id=&institution_id=&limit=&offset=
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()
	var lq appanalysis.ListQuery
	var err error
	if lq.UserID, err = middleware.OptionalInt64(q, "user_id"); err != nil {
		return err
	}
	if lq.InstitutionID, err = middleware.OptionalInt64(q, "institution_id"); err != nil {
		return err
	}
	if lq.Limit, err = middleware.OptionalInt(q, "limit"); err != nil {
		return err
	}
	if lq.Offset, err = middleware.OptionalInt(q, "offset"); err != nil {
		return err
	}

	page, err := r.svc.List(req.Context(), middleware.GetPrincipal(req.Context()), lq)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, historyResponse{Success: true, Data: page.Data, Pagination: page.Pagination})
	return nil
}

// GET /analysis/{id}
func (r *Router) handleDetail(w http.ResponseWriter, req *http.Request) error {
	id, err := middleware.ValidateRecordID(chi.URLParam(req, "id"))
	if err != nil {
		return err
	}
	env, err := r.svc.Detail(req.Context(), middleware.GetPrincipal(req.Context()), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, env)
	return nil
}
