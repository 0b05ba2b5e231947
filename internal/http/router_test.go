package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/docqa-backend/internal/data/repos"
	"github.com/yungbote/docqa-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/docqa-backend/internal/http/handlers"
	"github.com/yungbote/docqa-backend/internal/platform/filestore"
	"github.com/yungbote/docqa-backend/internal/platform/pdftext"
	"github.com/yungbote/docqa-backend/internal/platform/textsplit"
	"github.com/yungbote/docqa-backend/internal/platform/vectorstore/memory"
	"github.com/yungbote/docqa-backend/internal/services"
)

type letterEmbedder struct{}

func (letterEmbedder) vec(s string) []float32 {
	v := make([]float32, 27)
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	v[26] = 1
	return v
}

func (e letterEmbedder) EmbedDocument(ctx context.Context, s string) ([]float32, error) {
	return e.vec(s), nil
}

func (e letterEmbedder) EmbedQuery(ctx context.Context, s string) ([]float32, error) {
	return e.vec(s), nil
}

type echoGenerator struct{ last string }

func (g *echoGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.last = prompt
	return "- Revenue grew **10%** in Q1.", nil
}

// plainExtractor stands in for the PDF parser: upload bytes are the text.
type plainExtractor struct{}

func (plainExtractor) Extract(data []byte) (pdftext.Result, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return pdftext.Result{PageCount: 1}, pdftext.ErrNoText
	}
	return pdftext.Result{Text: string(data) + "\n", PageCount: 1, PagesWithText: 1}, nil
}

type testServer struct {
	engine    *gin.Engine
	uploadDir string
	gen       *echoGenerator
	indexes   services.IndexRegistry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := testutil.Logger(t)
	db := testutil.DB(t)
	dir := t.TempDir()

	files, err := filestore.NewLocal(log, dir)
	if err != nil {
		t.Fatalf("filestore: %v", err)
	}
	docRepo := repos.NewDocumentRepo(db, log)
	indexes := services.NewIndexRegistry(log, letterEmbedder{}, memory.New(), textsplit.Default(), 2)
	t.Cleanup(func() { _ = indexes.Close() })
	gen := &echoGenerator{}

	engine := NewRouter(RouterConfig{
		Log:             log,
		AllowOrigins:    []string{"*"},
		DocumentHandler: httpH.NewDocumentHandler(log, services.NewDocumentService(log, docRepo, files, plainExtractor{}, indexes), 1<<20),
		AskHandler:      httpH.NewAskHandler(log, services.NewQAService(log, docRepo, indexes, gen)),
		HealthHandler:   httpH.NewHealthHandler(),
	})
	return &testServer{engine: engine, uploadDir: dir, gen: gen, indexes: indexes}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func uploadReq(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write([]byte(content))
	_ = w.Close()
	req := httptest.NewRequest(http.MethodPost, "/upload/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func askReq(question string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/ask/", strings.NewReader(url.Values{"question": {question}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

type summary struct {
	ID         uint   `json:"id"`
	Filename   string `json:"filename"`
	UploadDate string `json:"upload_date"`
	TextLength int    `json:"text_length"`
}

type answer struct {
	Question       string `json:"question"`
	Answer         string `json:"answer"`
	SourceDocument string `json:"source_document"`
}

func TestReportScenarioOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, askReq("anything?"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("ask before upload: status=%d", rec.Code)
	}

	rec = s.do(t, uploadReq(t, "report.pdf", "Revenue grew 10% in Q1."))
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: status=%d body=%s", rec.Code, rec.Body.String())
	}
	up := decode[summary](t, rec)
	if up.Filename != "report.pdf" || up.TextLength != len("Revenue grew 10% in Q1.\n") {
		t.Fatalf("upload body: %+v", up)
	}
	if _, err := os.Stat(filepath.Join(s.uploadDir, "1", "report.pdf")); err != nil {
		t.Fatalf("stored file: %v", err)
	}

	list := decode[[]summary](t, s.do(t, httptest.NewRequest(http.MethodGet, "/documents/", nil)))
	if len(list) != 1 || list[0] != up {
		t.Fatalf("list: %+v want [%+v]", list, up)
	}

	rec = s.do(t, askReq("What happened to revenue in Q1?"))
	if rec.Code != http.StatusOK {
		t.Fatalf("ask: status=%d body=%s", rec.Code, rec.Body.String())
	}
	ans := decode[answer](t, rec)
	if ans.SourceDocument != "report.pdf" || ans.Question != "What happened to revenue in Q1?" || ans.Answer == "" {
		t.Fatalf("answer: %+v", ans)
	}
	if !strings.Contains(s.gen.last, "Revenue grew 10% in Q1.") {
		t.Fatalf("prompt missing context: %q", s.gen.last)
	}
}

func TestUploadValidationOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, uploadReq(t, "notes.txt", "hello"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("non-pdf: status=%d", rec.Code)
	}
	if d := decode[map[string]string](t, rec)["detail"]; d != "Only PDF files are allowed" {
		t.Fatalf("detail: %q", d)
	}

	rec = s.do(t, uploadReq(t, "scan.pdf", "   "))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("zero-text pdf: status=%d", rec.Code)
	}

	list := decode[[]summary](t, s.do(t, httptest.NewRequest(http.MethodGet, "/documents/", nil)))
	if len(list) != 0 {
		t.Fatalf("expected no records, got %+v", list)
	}
	if _, ok := s.indexes.Get(1); ok {
		t.Fatalf("unexpected index entry")
	}
}

func TestMostRecentFollowsDeletesOverHTTP(t *testing.T) {
	s := newTestServer(t)

	_ = decode[summary](t, s.do(t, uploadReq(t, "a.pdf", "apples")))
	b := decode[summary](t, s.do(t, uploadReq(t, "b.pdf", "bananas")))

	if got := decode[answer](t, s.do(t, askReq("fruit?"))).SourceDocument; got != "b.pdf" {
		t.Fatalf("want b.pdf got %q", got)
	}

	rec := s.do(t, httptest.NewRequest(http.MethodDelete, "/documents/999", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete unknown: status=%d", rec.Code)
	}
	if list := decode[[]summary](t, s.do(t, httptest.NewRequest(http.MethodGet, "/documents/", nil))); len(list) != 2 {
		t.Fatalf("delete unknown changed state: %+v", list)
	}

	rec = s.do(t, httptest.NewRequest(http.MethodDelete, "/documents/"+itoa(b.ID), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete b: status=%d", rec.Code)
	}
	if _, err := os.Stat(filepath.Join(s.uploadDir, itoa(b.ID), "b.pdf")); !os.IsNotExist(err) {
		t.Fatalf("file for b still present: %v", err)
	}
	if _, ok := s.indexes.Get(b.ID); ok {
		t.Fatalf("index for b still present")
	}

	if got := decode[answer](t, s.do(t, askReq("fruit?"))).SourceDocument; got != "a.pdf" {
		t.Fatalf("after delete want a.pdf got %q", got)
	}
}

func TestHealthcheckAndCORS(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := s.do(t, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: %d %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow-origin: %q", got)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing request id header")
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
