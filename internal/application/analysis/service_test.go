package analysis

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/bryanwahyu/compliance-gateway/internal/application"
	domain "github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
	"github.com/bryanwahyu/compliance-gateway/internal/domain/engine"
	"github.com/bryanwahyu/compliance-gateway/internal/infra/db/memory"
)

const liveBody = `{
  "status": "success",
  "message": "ok",
  "timestamp": "2025-03-01T10:00:00Z",
  "data": {
    "id_dokumen": 991,
    "id_instansi": "7",
    "judul_kegiatan": "Laporan A",
    "deskripsi_kegiatan": "Uji",
    "include_dok_keuangan": "false",
    "path_dok_kegiatan": "a.pdf",
    "list_peraturan_terkait": [
      {"judul_peraturan": "PP 12/2019", "instansi": "Kemendagri", "tingkat_kesesuaian": 0.9, "link_peraturan": "https://jdih.example/pp12"}
    ],
    "indikator_compliance": [
      {"id_indikator": 1, "nama_indikator": "Kepatuhan Prosedural", "klasifikasi": 1, "detail_klasifikasi": "Sesuai", "alasan": "ok", "score": 0.85},
      {"id_indikator": 2, "nama_indikator": "Efisiensi Anggaran", "klasifikasi": 2, "detail_klasifikasi": "Sebagian", "alasan": "kurang", "score": 0.78}
    ],
    "summary_indicator_compliance": {"tingkat_risiko": 1, "score_compliance": 0.815},
    "rekomendasi_per_indikator": [
      {"id_indikator": 2, "judul": "Perbaiki RAB", "deskripsi": "Rinci biaya", "langkah_perbaikan": ["Susun ulang", "Review"]},
      {"id_indikator": 9, "judul": "Orphan", "deskripsi": "tanpa indikator", "langkah_perbaikan": []}
    ]
  }
}`

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Analyze(ctx context.Context, req domain.EngineRequest) (*domain.EngineResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*domain.EngineResult)
	return res, args.Error(1)
}

type memStore struct {
	mu   sync.Mutex
	puts map[string][]byte
	err  error
}

func (s *memStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.puts == nil {
		s.puts = map[string][]byte{}
	}
	s.puts[key] = data
	return key, nil
}

type brokenRepo struct {
	domain.Repository
	err error
}

func (r brokenRepo) Create(ctx context.Context, rec *domain.Record) (domain.RecordID, error) {
	return 0, r.err
}

type countingRecorder struct {
	submissions    map[string]int
	engineFailures map[string]int
	persistFailed  int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{submissions: map[string]int{}, engineFailures: map[string]int{}}
}

func (c *countingRecorder) Submission(source string)  { c.submissions[source]++ }
func (c *countingRecorder) EngineFailure(kind string) { c.engineFailures[kind]++ }
func (c *countingRecorder) PersistFailure()           { c.persistFailed++ }

type ServiceSuite struct {
	suite.Suite

	engine   *mockEngine
	store    *memStore
	repo     *memory.AnalysisRepository
	failures *memory.FailureRepository
	rec      *countingRecorder
	svc      *Service

	staff *domain.Principal
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.engine = new(mockEngine)
	s.store = &memStore{}
	s.repo = memory.NewAnalysisRepository()
	s.failures = &memory.FailureRepository{}
	s.rec = newCountingRecorder()
	clock := application.FixedClock{At: testNow}
	s.svc = &Service{
		Intake:   &Intake{Store: s.store, Clock: clock},
		Engine:   s.engine,
		Repo:     s.repo,
		Failures: s.failures,
		Clock:    clock,
		Metrics:  s.rec,
	}
	s.staff = &domain.Principal{UserID: 3, InstitutionID: 7, Role: "user"}
}

func (s *ServiceSuite) submission() domain.Submission {
	return domain.Submission{
		Title:            " Laporan A ",
		Description:      "Uji",
		ActivityDocument: &domain.Document{Filename: "a.pdf", Data: []byte("%PDF-1.4 a")},
	}
}

func (s *ServiceSuite) TestSubmit_LiveRoundTrip() {
	s.engine.On("Analyze", mock.Anything, mock.MatchedBy(func(req domain.EngineRequest) bool {
		return req.InstitutionID == 7 && req.Title == "Laporan A" && !req.IncludeFinancial
	})).Return(&domain.EngineResult{Raw: []byte(liveBody), StatusCode: http.StatusOK}, nil).Once()

	res, err := s.svc.Submit(context.Background(), s.staff, s.submission())
	s.Require().NoError(err)
	s.engine.AssertExpectations(s.T())

	s.Equal(liveBody, string(res.Engine.Raw))
	s.True(res.Persistence.Saved)
	s.NoError(res.Persistence.Err)
	s.Equal(1, s.rec.submissions["engine"])
	s.Contains(s.store.puts, "uploads/analysis/7/3/1740823200000_a.pdf")

	rec, err := s.repo.Get(context.Background(), res.Persistence.RecordID)
	s.Require().NoError(err)
	s.Equal("991", *rec.EngineAnalysisID)
	s.Equal(int64(7), rec.InstitutionID)
	s.Equal(int64(3), rec.UserID)
	s.Equal("Laporan A", rec.Title)
	s.Equal(1, rec.RiskLevel)
	s.InDelta(0.815, rec.ComplianceScore, 1e-9)
	s.False(rec.Fallback)
	s.Nil(rec.FinancialDocPath)
	s.Len(rec.Files, 1)
	s.Equal("application/pdf", rec.Files[0].MimeType)
	s.Len(rec.Indicators, 2)
	s.Len(rec.Recommendations, 2)
	s.Equal(9, rec.Recommendations[1].IndicatorID)
	s.Len(rec.Regulations, 1)

	live, err := s.svc.Detail(context.Background(), s.staff, res.Persistence.RecordID)
	s.Require().NoError(err)
	s.Equal("success", live.Status)
	s.Equal(engine.FlexString("991"), live.Data.IDDokumen)
	s.Len(live.Data.Indicators, 2)
	s.InDelta(0.815, live.Data.Summary.ScoreCompliance, 1e-9)
}

func (s *ServiceSuite) TestSubmit_FallbackIsPersistedAndFlagged() {
	s.engine.On("Analyze", mock.Anything, mock.Anything).
		Return(&domain.EngineResult{Raw: engine.FallbackBody(testNow), StatusCode: http.StatusOK, Fallback: true}, nil)

	res, err := s.svc.Submit(context.Background(), s.staff, s.submission())
	s.Require().NoError(err)
	s.True(res.Normalized.Fallback)
	s.True(res.Persistence.Saved)
	s.Equal(1, s.rec.submissions["fallback"])

	rec, err := s.repo.Get(context.Background(), res.Persistence.RecordID)
	s.Require().NoError(err)
	s.True(rec.Fallback)
	s.Equal("fallback-1740823200000", *rec.EngineAnalysisID)
}

func (s *ServiceSuite) TestSubmit_PersistFailureStillSucceeds() {
	s.svc.Repo = brokenRepo{err: errors.New("db down")}
	s.engine.On("Analyze", mock.Anything, mock.Anything).
		Return(&domain.EngineResult{Raw: []byte(liveBody), StatusCode: http.StatusOK}, nil)

	res, err := s.svc.Submit(context.Background(), s.staff, s.submission())
	s.Require().NoError(err)
	s.False(res.Persistence.Saved)
	s.EqualError(res.Persistence.Err, "db down")
	s.Equal(liveBody, string(res.Engine.Raw))
	s.Equal(1, s.rec.persistFailed)
}

func (s *ServiceSuite) TestSubmit_EngineErrorRecordsFailure() {
	s.engine.On("Analyze", mock.Anything, mock.Anything).Return(nil, &domain.EngineError{
		Kind: domain.EngineUpstreamStatus, StatusCode: http.StatusInternalServerError, Body: "boom",
	})

	_, err := s.svc.Submit(context.Background(), s.staff, s.submission())
	s.Require().ErrorIs(err, domain.ErrEngine)
	s.Equal(1, s.rec.engineFailures[string(domain.EngineUpstreamStatus)])

	failures := s.failures.All()
	s.Require().Len(failures, 1)
	s.Equal(domain.PhaseEngine, failures[0].Phase)
	s.Equal(int64(7), failures[0].InstitutionID)
	s.Contains(failures[0].DetailsJSON, `"status":500`)
	s.Contains(failures[0].DetailsJSON, `"body":"boom"`)

	page, err := s.svc.List(context.Background(), s.staff, ListQuery{})
	s.Require().NoError(err)
	s.Zero(page.Pagination.Total)
}

func (s *ServiceSuite) TestSubmit_MalformedPayloadWritesNothing() {
	s.engine.On("Analyze", mock.Anything, mock.Anything).
		Return(&domain.EngineResult{Raw: []byte(`{"status":"success","data":{"indikator_compliance":[]}}`), StatusCode: http.StatusOK}, nil)

	_, err := s.svc.Submit(context.Background(), s.staff, s.submission())
	s.Require().ErrorIs(err, domain.ErrMalformedPayload)

	failures := s.failures.All()
	s.Require().Len(failures, 1)
	s.Equal(domain.PhaseNormalize, failures[0].Phase)

	_, total, err := s.repo.List(context.Background(), domain.ListFilter{Limit: 10})
	s.Require().NoError(err)
	s.Zero(total)
}

func (s *ServiceSuite) TestSubmit_ValidationNeverCallsEngine() {
	sub := s.submission()
	sub.Title = "  "

	_, err := s.svc.Submit(context.Background(), s.staff, sub)
	s.ErrorIs(err, domain.ErrValidation)
	s.engine.AssertNotCalled(s.T(), "Analyze", mock.Anything, mock.Anything)
	s.Empty(s.store.puts)
}

func (s *ServiceSuite) TestSubmit_RequiresPrincipal() {
	_, err := s.svc.Submit(context.Background(), nil, s.submission())
	s.ErrorIs(err, domain.ErrUnauthorized)

	sub := s.submission()
	sub.InstitutionID = 8
	_, err = s.svc.Submit(context.Background(), s.staff, sub)
	s.ErrorIs(err, domain.ErrForbidden)
}

func (s *ServiceSuite) TestSubmit_StorageErrorAborts() {
	s.store.err = errors.New("bucket gone")
	_, err := s.svc.Submit(context.Background(), s.staff, s.submission())
	s.ErrorContains(err, "bucket gone")
	s.engine.AssertNotCalled(s.T(), "Analyze", mock.Anything, mock.Anything)
}

func (s *ServiceSuite) seed(institution, user int64, n int) {
	for i := 0; i < n; i++ {
		_, err := s.repo.Create(context.Background(), &domain.Record{
			InstitutionID: institution,
			UserID:        user,
			Title:         "seed",
			Status:        domain.StatusSuccess,
			CreatedAt:     testNow.Add(time.Duration(i) * time.Minute),
		})
		s.Require().NoError(err)
	}
}

func (s *ServiceSuite) TestList_ScopesToInstitution() {
	s.seed(7, 3, 2)
	s.seed(8, 4, 3)

	other := int64(8)
	page, err := s.svc.List(context.Background(), s.staff, ListQuery{InstitutionID: &other})
	s.Require().NoError(err)
	s.Equal(int64(2), page.Pagination.Total)
	for _, rec := range page.Data {
		s.Equal(int64(7), rec.InstitutionID)
	}

	super := &domain.Principal{UserID: 1, Role: domain.RoleAdmin}
	page, err = s.svc.List(context.Background(), super, ListQuery{})
	s.Require().NoError(err)
	s.Equal(int64(5), page.Pagination.Total)

	page, err = s.svc.List(context.Background(), nil, ListQuery{InstitutionID: &other})
	s.Require().NoError(err)
	s.Equal(int64(3), page.Pagination.Total)
}

func (s *ServiceSuite) TestList_PaginationAndOrder() {
	s.seed(7, 3, 12)

	limit, offset := 5, 10
	page, err := s.svc.List(context.Background(), s.staff, ListQuery{Limit: &limit, Offset: &offset})
	s.Require().NoError(err)
	s.Len(page.Data, 2)
	s.Equal(domain.Pagination{Total: 12, Limit: 5, Offset: 10, HasMore: false}, page.Pagination)

	first, err := s.svc.List(context.Background(), s.staff, ListQuery{})
	s.Require().NoError(err)
	s.Len(first.Data, domain.DefaultLimit)
	s.True(first.Pagination.HasMore)
	s.True(first.Data[0].CreatedAt.After(first.Data[1].CreatedAt))

	again, err := s.svc.List(context.Background(), s.staff, ListQuery{})
	s.Require().NoError(err)
	s.Equal(first, again)

	big := 1000
	page, err = s.svc.List(context.Background(), s.staff, ListQuery{Limit: &big})
	s.Require().NoError(err)
	s.Equal(domain.MaxLimit, page.Pagination.Limit)
}

func (s *ServiceSuite) TestList_HugeOffsetHasNoMore() {
	s.seed(7, 3, 3)

	offset := math.MaxInt - 5
	page, err := s.svc.List(context.Background(), nil, ListQuery{Offset: &offset})
	s.Require().NoError(err)
	s.Empty(page.Data)
	s.Equal(int64(3), page.Pagination.Total)
	s.Equal(offset, page.Pagination.Offset)
	s.False(page.Pagination.HasMore)
}

func (s *ServiceSuite) TestList_EmptyIsNotNil() {
	page, err := s.svc.List(context.Background(), s.staff, ListQuery{})
	s.Require().NoError(err)
	s.NotNil(page.Data)
	s.Empty(page.Data)
}

func (s *ServiceSuite) TestDetail_HidesOtherInstitutions() {
	s.seed(8, 4, 1)

	_, err := s.svc.Detail(context.Background(), s.staff, 1)
	s.ErrorIs(err, domain.ErrNotFound)

	_, err = s.svc.Detail(context.Background(), s.staff, 99)
	s.ErrorIs(err, domain.ErrNotFound)

	live, err := s.svc.Detail(context.Background(), nil, 1)
	s.Require().NoError(err)
	s.Equal(int64(1), live.Data.RecordID)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}

func TestService_DefaultsWithoutMetrics(t *testing.T) {
	svc := &Service{}
	require.NotNil(t, svc.metrics())
	assert.Equal(t, DefaultWriteTimeout, svc.writeTimeout())
}
