package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bryanwahyu/compliance-gateway/internal/application"
	domain "github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
	"github.com/bryanwahyu/compliance-gateway/internal/domain/engine"
)

// DefaultWriteTimeout batas waktu transaksi simpan hasil
const DefaultWriteTimeout = 15 * time.Second

// Recorder receives pipeline events for metrics.
type Recorder interface {
	Submission(source string)
	EngineFailure(kind string)
	PersistFailure()
}

type noopRecorder struct{}

func (noopRecorder) Submission(string)    {}
func (noopRecorder) EngineFailure(string) {}
func (noopRecorder) PersistFailure()      {}

// Service implements use-cases untuk analisis dokumen
// Service is designed to be used concurrently and is thread-safe
type Service struct {
	Intake       *Intake
	Engine       domain.Engine
	Repo         domain.Repository
	Failures     domain.FailureRepository
	Clock        application.Clock
	Metrics      Recorder
	WriteTimeout time.Duration
}

//
// ==== USE CASES ====
//

// PersistenceOutcome is the secondary phase of a submission.
type PersistenceOutcome struct {
	Saved    bool
	RecordID domain.RecordID
	Err      error
}

// SubmitResult: primary = hasil engine, secondary = hasil simpan ke DB
type SubmitResult struct {
	Engine      *domain.EngineResult
	Normalized  *engine.Normalized
	Persistence PersistenceOutcome
}

// Submit jalankan intake → engine → normalize → simpan (best effort)
func (s *Service) Submit(ctx context.Context, p *domain.Principal, sub domain.Submission) (*SubmitResult, error) {
	log := zerolog.Ctx(ctx)

	staged, err := s.Intake.Stage(ctx, p, sub)
	if err != nil {
		return nil, err
	}

	// panggil engine sekali, tanpa retry
	res, err := s.Engine.Analyze(ctx, staged.Request())
	if err != nil {
		var ee *domain.EngineError
		if errors.As(err, &ee) {
			s.metrics().EngineFailure(string(ee.Kind))
			log.Error().Err(err).
				Str("kind", string(ee.Kind)).
				Int("upstream_status", ee.StatusCode).
				Str("upstream_body", truncate(ee.Body, 2000)).
				Msg("analysis engine failed")
			s.recordFailure(ctx, staged, domain.PhaseEngine, err, map[string]any{
				"kind": ee.Kind, "status": ee.StatusCode, "body": truncate(ee.Body, 4000),
			})
		} else {
			s.metrics().EngineFailure("other")
			log.Error().Err(err).Msg("analysis engine failed")
			s.recordFailure(ctx, staged, domain.PhaseEngine, err, nil)
		}
		return nil, err
	}

	n, err := engine.Parse(res.Raw)
	if err != nil {
		log.Error().Err(err).Str("raw_payload", truncate(string(res.Raw), 4000)).Msg("engine payload rejected")
		s.recordFailure(ctx, staged, domain.PhaseNormalize, err, map[string]any{
			"raw": truncate(string(res.Raw), 4000),
		})
		return nil, err
	}

	source := "engine"
	if res.Fallback || n.Fallback {
		source = "fallback"
		log.Warn().Str("analysis_id", n.EngineAnalysisID).Msg("engine offline, serving fallback payload")
	}
	s.metrics().Submission(source)

	out := &SubmitResult{Engine: res, Normalized: n}
	out.Persistence = s.persist(ctx, BuildRecord(staged, n, res.Fallback, s.Clock.Now()))
	return out, nil
}

// persist tidak boleh menggagalkan Submit; error cukup di-log
func (s *Service) persist(ctx context.Context, rec *domain.Record) PersistenceOutcome {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout())
	defer cancel()

	id, err := s.Repo.Create(wctx, rec)
	if err != nil {
		s.metrics().PersistFailure()
		zerolog.Ctx(ctx).Error().Err(err).
			Int64("institution_id", rec.InstitutionID).
			Int64("user_id", rec.UserID).
			Msg("failed to save analysis history")
		return PersistenceOutcome{Err: err}
	}
	zerolog.Ctx(ctx).Info().Int64("record_id", int64(id)).Bool("fallback", rec.Fallback).Msg("analysis saved")
	return PersistenceOutcome{Saved: true, RecordID: id}
}

func (s *Service) recordFailure(ctx context.Context, st *domain.StagedSubmission, phase string, cause error, details map[string]any) {
	if s.Failures == nil {
		return
	}
	f := &domain.Failure{
		InstitutionID: st.InstitutionID,
		UserID:        st.UserID,
		Title:         st.Title,
		Phase:         phase,
		Message:       cause.Error(),
		CreatedAt:     s.Clock.Now(),
	}
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			f.DetailsJSON = string(b)
		}
	}
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout())
	defer cancel()
	if err := s.Failures.Save(wctx, f); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("phase", phase).Msg("failed to save failure diagnostics")
	}
}

// ListQuery parameter mentah dari request history
type ListQuery struct {
	InstitutionID *int64
	UserID        *int64
	Limit         *int
	Offset        *int
}

// List riwayat analisis, sudah di-scope sesuai principal
func (s *Service) List(ctx context.Context, p *domain.Principal, q ListQuery) (*domain.Page, error) {
	limit, offset := domain.ClampPage(q.Limit, q.Offset)
	filter := domain.ListFilter{
		InstitutionID: domain.ScopeFilter(p, q.InstitutionID),
		UserID:        q.UserID,
		Limit:         limit,
		Offset:        offset,
	}
	records, total, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	if records == nil {
		records = []*domain.Record{}
	}
	return &domain.Page{
		Data:       records,
		Pagination: domain.NewPagination(total, limit, offset),
	}, nil
}

// Detail ambil 1 analisis dan bentuk ulang envelope engine
func (s *Service) Detail(ctx context.Context, p *domain.Principal, id domain.RecordID) (*engine.LiveResponse, error) {
	rec, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanView(p, rec.InstitutionID) {
		return nil, fmt.Errorf("analysis %d: %w", id, domain.ErrNotFound)
	}
	return engine.FromRecord(rec), nil
}

func (s *Service) metrics() Recorder {
	if s.Metrics == nil {
		return noopRecorder{}
	}
	return s.Metrics
}

func (s *Service) writeTimeout() time.Duration {
	if s.WriteTimeout <= 0 {
		return DefaultWriteTimeout
	}
	return s.WriteTimeout
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
