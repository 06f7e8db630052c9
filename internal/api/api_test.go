package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/lewismosage/acna-gateway/internal/api"
	"github.com/lewismosage/acna-gateway/internal/backend"
	"github.com/lewismosage/acna-gateway/internal/config"
	"github.com/lewismosage/acna-gateway/internal/mocks"
	"github.com/lewismosage/acna-gateway/internal/models"
	"github.com/lewismosage/acna-gateway/internal/service"
)

const adminToken = "admin-token"

type testEnv struct {
	router   *gin.Engine
	services *service.Services
	backend  *mocks.FakeBackend
	imports  *mocks.MockImportService
	exports  *mocks.MockExportService
	jobs     *mocks.MockJobService
	cfg      *config.Config
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fb := mocks.NewFakeBackend()
	t.Cleanup(fb.Close)

	client, err := backend.New(backend.Config{BaseURL: fb.URL(), Timeout: 5 * time.Second},
		backend.Chain{backend.ContextToken{}, backend.StaticToken("service-token")}, zerolog.Nop())
	if err != nil {
		t.Fatalf("backend.New: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "8080", AllowedOrigins: []string{"http://localhost:3000"}},
		Listing: config.ListingConfig{
			PageSize:                9,
			CompactPageSize:         6,
			PublicCaseStudyStatuses: []string{"Approved", "Published"},
		},
		Import: config.ImportConfig{
			Concurrency:   2,
			MaxUploadSize: 10 * 1024 * 1024,
			UploadDir:     t.TempDir(),
		},
	}

	content := service.NewContentService(service.NewStores(client), cfg.Listing, time.Second, zerolog.Nop())
	t.Cleanup(content.Wait)

	env := &testEnv{
		backend: fb,
		imports: mocks.NewMockImportService(),
		exports: mocks.NewMockExportService(),
		jobs:    mocks.NewMockJobService(),
		cfg:     cfg,
	}
	services := &service.Services{
		Content: content,
		Import:  env.imports,
		Export:  env.exports,
		Job:     env.jobs,
	}
	env.services = services
	env.router = api.NewRouter(services, cfg, zerolog.Nop())
	return env
}

func (e *testEnv) do(method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func authorized() map[string]string {
	return map[string]string{"Authorization": "Bearer " + adminToken}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do("GET", "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	response := decode(t, w)
	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", response["status"])
	}
	if response["service"] != "acna-gateway" {
		t.Errorf("Expected service name, got %v", response["service"])
	}
}

func TestHealthEndpoint_DependencyDown(t *testing.T) {
	env := setupTestRouter(t)
	router := api.NewRouter(env.services, env.cfg, zerolog.Nop(), map[string]api.HealthCheck{
		"database": func(context.Context) error { return errors.New("connection refused") },
	})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
	response := decode(t, w)
	if response["status"] != "unhealthy" {
		t.Errorf("Expected status 'unhealthy', got %v", response["status"])
	}
	if deps, _ := response["dependencies"].(map[string]any); deps["database"] != "connection refused" {
		t.Errorf("unexpected dependencies %v", response["dependencies"])
	}
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestRouter(t)

	req := httptest.NewRequest("OPTIONS", "/v1/public/resources", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestPublicList(t *testing.T) {
	env := setupTestRouter(t)
	for i := 0; i < 12; i++ {
		category, status := "Epilepsy", "Published"
		if i%2 == 0 {
			category = "Autism"
		}
		if i%4 == 0 {
			status = "Draft"
		}
		env.backend.Seed(models.KindResource, map[string]any{"title": "Guide", "category": category, "status": status})
	}

	tests := []struct {
		name    string
		target  string
		total   float64
		items   int
		hasMore bool
	}{
		{"default page", "/v1/public/resources", 9, 9, false},
		{"compact page", "/v1/public/resources?compact=true", 9, 6, true},
		{"explicit cursor", "/v1/public/resources?visible=3", 9, 3, true},
		{"facet", "/v1/public/resources?category=Epilepsy", 6, 6, false},
		{"facet all", "/v1/public/resources?category=all", 9, 9, false},
		{"search miss", "/v1/public/resources?search=nothing", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do("GET", tt.target, nil, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
			}
			response := decode(t, w)
			if response["total"] != tt.total {
				t.Errorf("total = %v, want %v", response["total"], tt.total)
			}
			if items := response["items"].([]any); len(items) != tt.items {
				t.Errorf("items = %d, want %d", len(items), tt.items)
			}
			if response["hasMore"] != tt.hasMore {
				t.Errorf("hasMore = %v, want %v", response["hasMore"], tt.hasMore)
			}
		})
	}
}

func TestPublicList_BadRequests(t *testing.T) {
	env := setupTestRouter(t)

	tests := []struct {
		target string
		code   int
	}{
		{"/v1/public/podcasts", http.StatusNotFound},
		{"/v1/public/resources?visible=-1", http.StatusBadRequest},
		{"/v1/public/resources?page_size=abc", http.StatusBadRequest},
		{"/v1/public/resources/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if w := env.do("GET", tt.target, nil, nil); w.Code != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.target, tt.code, w.Code)
		}
	}
	if n := len(env.backend.Requests()); n != 0 {
		t.Errorf("expected no backend calls, got %d", n)
	}
}

func TestPublicList_PartialFailure(t *testing.T) {
	env := setupTestRouter(t)
	env.backend.Seed(models.KindCaseStudy,
		map[string]any{"title": "Nodding syndrome", "status": "Approved"},
		map[string]any{"title": "Cerebral palsy outreach", "status": "Approved"},
	)
	env.backend.Fail("GET", "/case-study-submissions/?status=Published", 500)

	w := env.do("GET", "/v1/public/case-studies", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	response := decode(t, w)
	if response["total"] != float64(2) {
		t.Errorf("total = %v", response["total"])
	}
	failed, _ := response["failedSources"].([]any)
	if len(failed) != 1 {
		t.Fatalf("expected one failed source, got %v", response["failedSources"])
	}
	if src := failed[0].(map[string]any); src["source"] != "case-studies:Published" || src["retryable"] != true {
		t.Errorf("unexpected failed source %v", src)
	}
}

func TestPublicList_AllSourcesFailing(t *testing.T) {
	env := setupTestRouter(t)
	env.backend.Fail("GET", "/case-study-submissions/?status=Approved", 503)
	env.backend.Fail("GET", "/case-study-submissions/?status=Published", 503)

	w := env.do("GET", "/v1/public/case-studies", nil, nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("Expected status 502, got %d", w.Code)
	}
	if response := decode(t, w); response["retryable"] != true {
		t.Errorf("expected retryable flag, got %v", response)
	}
}

func TestPublicDetail(t *testing.T) {
	env := setupTestRouter(t)
	ids := env.backend.Seed(models.KindResource,
		map[string]any{"title": "Febrile seizures", "status": "Published", "view_count": 7, "full_content": "**Stay calm**"},
		map[string]any{"title": "Unpublished", "status": "Draft"},
	)

	w := env.do("GET", "/v1/public/resources/"+strconv.Itoa(ids[0]), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	response := decode(t, w)
	if response["viewCount"] != float64(8) {
		t.Errorf("viewCount = %v, want 8", response["viewCount"])
	}
	if html, _ := response["contentHtml"].(string); !strings.Contains(html, "<strong>Stay calm</strong>") {
		t.Errorf("contentHtml = %q", html)
	}

	if w := env.do("GET", "/v1/public/resources/"+strconv.Itoa(ids[1]), nil, nil); w.Code != http.StatusNotFound {
		t.Errorf("draft: expected 404, got %d", w.Code)
	}
	if w := env.do("GET", "/v1/public/resources/999", nil, nil); w.Code != http.StatusNotFound {
		t.Errorf("missing: expected 404, got %d", w.Code)
	}

	// Admins see drafts and are not counted as views
	w = env.do("GET", "/v1/admin/resources/"+strconv.Itoa(ids[1]), nil, authorized())
	if w.Code != http.StatusOK {
		t.Errorf("admin draft: expected 200, got %d", w.Code)
	}
}

func TestDownload(t *testing.T) {
	env := setupTestRouter(t)
	paper := env.backend.Seed(models.KindPaper, map[string]any{"title": "Stroke in sickle cell", "status": "Published", "download_count": 2})
	project := env.backend.Seed(models.KindProject, map[string]any{"title": "Cohort", "status": "Active"})

	w := env.do("POST", "/v1/public/research-papers/"+strconv.Itoa(paper[0])+"/download", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if response := decode(t, w); response["downloadCount"] != float64(3) {
		t.Errorf("downloadCount = %v, want 3", response["downloadCount"])
	}

	if w := env.do("POST", "/v1/public/research-projects/"+strconv.Itoa(project[0])+"/download", nil, nil); w.Code != http.StatusBadRequest {
		t.Errorf("project download: expected 400, got %d", w.Code)
	}
}

func TestAdmin_RequiresToken(t *testing.T) {
	env := setupTestRouter(t)

	for _, tt := range []struct{ method, target string }{
		{"GET", "/v1/admin/resources"},
		{"POST", "/v1/admin/resources"},
		{"DELETE", "/v1/admin/resources/1?confirm=true"},
		{"POST", "/v1/submissions/case-studies"},
		{"GET", "/v1/imports"},
	} {
		if w := env.do(tt.method, tt.target, nil, nil); w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", tt.method, tt.target, w.Code)
		}
	}
	if n := len(env.backend.Requests()); n != 0 {
		t.Errorf("expected no backend calls, got %d", n)
	}
}

func TestAdmin_ListSeesAllStatuses(t *testing.T) {
	env := setupTestRouter(t)
	env.backend.Seed(models.KindResource,
		map[string]any{"title": "A", "status": "Published"},
		map[string]any{"title": "B", "status": "Draft"},
		map[string]any{"title": "C", "status": "Archived"},
	)

	w := env.do("GET", "/v1/admin/resources?status=Draft", nil, authorized())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if response := decode(t, w); response["total"] != float64(1) {
		t.Errorf("total = %v, want 1", response["total"])
	}
	for _, token := range env.backend.Tokens() {
		if token != adminToken {
			t.Errorf("expected the caller's token to be forwarded, got %q", token)
		}
	}
}

func TestAdmin_CreateValidation(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do("POST", "/v1/admin/resources", []byte(`{"title": "", "type": "Podcast"}`), authorized())
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d", w.Code)
	}
	fields, _ := decode(t, w)["errors"].(map[string]any)
	for _, f := range []string{"title", "description", "category", "type"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("expected error for %s, got %v", f, fields)
		}
	}
	if n := len(env.backend.Requests()); n != 0 {
		t.Errorf("expected no backend calls, got %d", n)
	}
}

func TestAdmin_CreateAndStatusRoundTrip(t *testing.T) {
	env := setupTestRouter(t)

	body := []byte(`{"title": "Epilepsy fact sheet", "description": "Basics", "category": "Epilepsy", "type": "Fact Sheet"}`)
	w := env.do("POST", "/v1/admin/resources", body, authorized())
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decode(t, w)
	id := int(created["id"].(float64))
	if created["status"] != "Draft" {
		t.Errorf("new resource status = %v, want Draft", created["status"])
	}

	w = env.do("PATCH", "/v1/admin/resources/"+strconv.Itoa(id)+"/status", []byte(`{"status": "Published"}`), authorized())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if response := decode(t, w); response["status"] != "Published" {
		t.Errorf("status = %v, want Published", response["status"])
	}

	// Now visible to the public
	if w := env.do("GET", "/v1/public/resources/"+strconv.Itoa(id), nil, nil); w.Code != http.StatusOK {
		t.Errorf("expected published resource to be public, got %d", w.Code)
	}

	w = env.do("PATCH", "/v1/admin/resources/"+strconv.Itoa(id)+"/status", []byte(`{"status": "Deleted"}`), authorized())
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown status: expected 422, got %d", w.Code)
	}
}

func TestAdmin_UpdateFeaturedDelete(t *testing.T) {
	env := setupTestRouter(t)
	ids := env.backend.Seed(models.KindProject, map[string]any{"title": "Cohort", "status": "Active", "is_featured": false})
	target := "/v1/admin/research-projects/" + strconv.Itoa(ids[0])

	w := env.do("PATCH", target, []byte(`{"title": "Paediatric epilepsy cohort"}`), authorized())
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := env.backend.Record(models.KindProject, ids[0])["title"]; got != "Paediatric epilepsy cohort" {
		t.Errorf("title = %v", got)
	}

	w = env.do("POST", target+"/featured", nil, authorized())
	if w.Code != http.StatusOK {
		t.Fatalf("featured: expected 200, got %d", w.Code)
	}
	if response := decode(t, w); response["isFeatured"] != true {
		t.Errorf("isFeatured = %v", response["isFeatured"])
	}

	if w := env.do("DELETE", target, nil, authorized()); w.Code != http.StatusBadRequest {
		t.Errorf("unconfirmed delete: expected 400, got %d", w.Code)
	}
	if env.backend.Count(models.KindProject) != 1 {
		t.Fatal("unconfirmed delete removed the record")
	}
	if w := env.do("DELETE", target+"?confirm=true", nil, authorized()); w.Code != http.StatusNoContent {
		t.Errorf("confirmed delete: expected 204, got %d", w.Code)
	}
	if env.backend.Count(models.KindProject) != 0 {
		t.Error("expected record to be deleted")
	}
	if w := env.do("DELETE", target+"?confirm=true", nil, authorized()); w.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", w.Code)
	}
}

func TestAdmin_BackendClientErrorPassesThrough(t *testing.T) {
	env := setupTestRouter(t)
	ids := env.backend.Seed(models.KindPaper, map[string]any{"title": "Paper", "status": "Draft"})
	env.backend.Fail("POST", "/research-papers/"+strconv.Itoa(ids[0])+"/toggle_featured/", http.StatusForbidden)

	w := env.do("POST", "/v1/admin/research-papers/"+strconv.Itoa(ids[0])+"/featured", nil, authorized())
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}
}

func TestSubmitCaseStudy(t *testing.T) {
	env := setupTestRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{
		"title":          "Neurocysticercosis presenting as status epilepticus",
		"submitterName":  "Dr. Kwame Mensah",
		"submitterEmail": "kwame@example.org",
		"institution":    "Korle Bu Teaching Hospital",
		"country":        "Ghana",
		"category":       "Epilepsy",
		"excerpt":        "A 9-year-old with new onset seizures",
		"clinicalCase":   `{"patientPresentation": "Focal seizures", "diagnosis": "Neurocysticercosis"}`,
		"status":         "Published",
		"isFeatured":     "true",
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	part, _ := mw.CreateFormFile("image", "ct-scan.jpg")
	part.Write([]byte("fake image data"))
	mw.Close()

	req := httptest.NewRequest("POST", "/v1/submissions/case-studies", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer member-token")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	id := int(decode(t, w)["id"].(float64))

	rec := env.backend.Record(models.KindCaseStudy, id)
	if rec["status"] == "Published" {
		t.Error("member submission must not choose its own status")
	}
	if rec["is_featured"] == true {
		t.Error("member submission must not feature itself")
	}
	if rec["image"] != "/media/ct-scan.jpg" {
		t.Errorf("image = %v", rec["image"])
	}
	if content, _ := rec["full_content"].(string); !strings.Contains(content, "Neurocysticercosis") {
		t.Errorf("full_content = %q", content)
	}
	if tokens := env.backend.Tokens(); len(tokens) == 0 || tokens[0] != "member-token" {
		t.Errorf("expected member token, got %v", tokens)
	}
}

func TestSubmitCaseStudy_Invalid(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do("POST", "/v1/submissions/case-studies", []byte(`{"title": "Incomplete", "submitterEmail": "not-an-email"}`),
		map[string]string{"Authorization": "Bearer member-token"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d", w.Code)
	}
	fields, _ := decode(t, w)["errors"].(map[string]any)
	if _, ok := fields["submitterEmail"]; !ok {
		t.Errorf("expected submitterEmail error, got %v", fields)
	}
}

func newImportRequest(t *testing.T, fields map[string]string, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		part.Write([]byte(content))
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/v1/imports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+adminToken)
	return req
}

func TestCreateImport(t *testing.T) {
	env := setupTestRouter(t)

	req := newImportRequest(t, map[string]string{"entity": "research-papers"}, "papers.csv", "title,abstract\nA,B\n")
	req.Header.Set("Idempotency-Key", "import-1")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d: %s", w.Code, w.Body.String())
	}
	response := decode(t, w)
	if response["job_id"] != "test-job-id" || response["format"] != "csv" || response["entity"] != "research-papers" {
		t.Errorf("unexpected response %v", response)
	}

	if len(env.imports.CreatedJobs) != 1 {
		t.Fatalf("expected one job, got %d", len(env.imports.CreatedJobs))
	}
	job := env.imports.CreatedJobs[0]
	if job.Entity != models.KindPaper || job.Format != models.FormatCSV || job.IdempotencyKey != "import-1" {
		t.Errorf("unexpected job %+v", job)
	}
	if env.imports.Tokens[0] != adminToken {
		t.Errorf("job should carry the uploader token, got %q", env.imports.Tokens[0])
	}
	saved, err := os.ReadFile(env.imports.FilePaths[0])
	if err != nil {
		t.Fatalf("uploaded file not saved: %v", err)
	}
	if !strings.HasPrefix(string(saved), "title,abstract") {
		t.Errorf("saved content = %q", saved)
	}
}

func TestCreateImport_Idempotent(t *testing.T) {
	env := setupTestRouter(t)
	env.jobs.Jobs["existing"] = &models.ImportJobResponse{ImportJob: models.ImportJob{
		ID: "existing", Entity: models.KindResource, Status: models.JobStatusCompleted, IdempotencyKey: "import-1",
	}}

	req := newImportRequest(t, map[string]string{"entity": "resources"}, "resources.ndjson", `{"title":"A"}`)
	req.Header.Set("Idempotency-Key", "import-1")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if response := decode(t, w); response["job_id"] != "existing" {
		t.Errorf("expected existing job, got %v", response["job_id"])
	}
	if len(env.imports.CreatedJobs) != 0 {
		t.Error("expected no new job")
	}
}

func TestCreateImport_Rejections(t *testing.T) {
	env := setupTestRouter(t)

	tests := []struct {
		name     string
		fields   map[string]string
		filename string
	}{
		{"missing entity", nil, "resources.ndjson"},
		{"unknown entity", map[string]string{"entity": "podcasts"}, "podcasts.ndjson"},
		{"missing file", map[string]string{"entity": "resources"}, ""},
		{"unsupported extension", map[string]string{"entity": "resources"}, "resources.xlsx"},
		{"unsupported format", map[string]string{"entity": "resources", "format": "xml"}, "resources.ndjson"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, newImportRequest(t, tt.fields, tt.filename, "{}"))
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
	if len(env.imports.CreatedJobs) != 0 {
		t.Errorf("expected no jobs, got %d", len(env.imports.CreatedJobs))
	}
}

func TestGetImportStatus(t *testing.T) {
	env := setupTestRouter(t)
	env.jobs.Jobs["job-123"] = &models.ImportJobResponse{
		ImportJob: models.ImportJob{
			ID:            "job-123",
			Entity:        models.KindResource,
			Format:        models.FormatNDJSON,
			Status:        models.JobStatusCompleted,
			TotalRecords:  10,
			CreatedCount:  8,
			RejectedCount: 2,
			CreatedAt:     time.Now(),
		},
		ErrorCount:  2,
		ErrorReport: "/v1/imports/job-123/errors",
	}

	w := env.do("GET", "/v1/imports/job-123", nil, authorized())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response models.ImportJobResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if response.ID != "job-123" || response.Status != models.JobStatusCompleted {
		t.Errorf("unexpected job %+v", response.ImportJob)
	}
	if response.CreatedCount != 8 || response.RejectedCount != 2 {
		t.Errorf("counts: created=%d rejected=%d", response.CreatedCount, response.RejectedCount)
	}
	if response.ErrorReport != "/v1/imports/job-123/errors" {
		t.Errorf("error report = %q", response.ErrorReport)
	}

	if w := env.do("GET", "/v1/imports/nonexistent-job", nil, authorized()); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestListImports(t *testing.T) {
	env := setupTestRouter(t)
	env.jobs.Jobs["a"] = &models.ImportJobResponse{ImportJob: models.ImportJob{ID: "a"}}
	env.jobs.Jobs["b"] = &models.ImportJobResponse{ImportJob: models.ImportJob{ID: "b"}}

	w := env.do("GET", "/v1/imports?limit=5", nil, authorized())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if response := decode(t, w); response["count"] != float64(2) {
		t.Errorf("count = %v", response["count"])
	}
}

func TestGetImportErrors(t *testing.T) {
	env := setupTestRouter(t)
	env.jobs.Errors["job-with-errors"] = []models.RecordError{
		{Line: 3, Field: "title", Message: "title is required"},
		{Line: 8, Field: "type", Message: "must be one of the known resource types", Value: "Podcast"},
		{Line: 9, Field: "backend", Message: "HTTP error! status: 500", Value: "HTTP 500"},
	}

	w := env.do("GET", "/v1/imports/job-with-errors/errors", nil, authorized())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	response := decode(t, w)
	if response["error_count"] != float64(3) {
		t.Errorf("Expected 3 errors, got %v", response["error_count"])
	}

	w = env.do("GET", "/v1/imports/job-with-errors/errors?format=csv", nil, authorized())
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Expected text/csv, got %s", ct)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 4 || lines[0] != "line,field,message,value" {
		t.Errorf("unexpected CSV:\n%s", w.Body.String())
	}
	if lines[2] != "8,type,must be one of the known resource types,Podcast" {
		t.Errorf("row = %q", lines[2])
	}
}

func TestStreamExport(t *testing.T) {
	env := setupTestRouter(t)
	env.exports.StreamFunc = func(ctx context.Context, w http.ResponseWriter, req service.ExportRequest) error {
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Write([]byte(`{"id":1}` + "\n"))
		return nil
	}

	w := env.do("GET", "/v1/exports?entity=papers&format=ndjson&category=Epilepsy&search=stroke", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if len(env.exports.Requests) != 1 {
		t.Fatalf("expected one export, got %d", len(env.exports.Requests))
	}
	req := env.exports.Requests[0]
	if req.Entity != models.KindPaper || req.Format != service.ExportNDJSON || req.Scope != service.ScopePublic {
		t.Errorf("unexpected request %+v", req)
	}
	if req.Filters.Search != "stroke" || req.Filters.Facets["category"] != "Epilepsy" {
		t.Errorf("unexpected filters %+v", req.Filters)
	}
}

func TestStreamExport_Rejections(t *testing.T) {
	env := setupTestRouter(t)

	tests := []struct {
		name   string
		target string
		code   int
	}{
		{"missing entity", "/v1/exports", http.StatusBadRequest},
		{"unknown entity", "/v1/exports?entity=podcasts", http.StatusBadRequest},
		{"unknown format", "/v1/exports?entity=resources&format=xlsx", http.StatusBadRequest},
		{"unknown scope", "/v1/exports?entity=resources&scope=everyone", http.StatusBadRequest},
		{"admin scope without token", "/v1/exports?entity=resources&scope=admin", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := env.do("GET", tt.target, nil, nil); w.Code != tt.code {
				t.Errorf("Expected status %d, got %d", tt.code, w.Code)
			}
		})
	}
	if len(env.exports.Requests) != 0 {
		t.Errorf("expected no exports, got %d", len(env.exports.Requests))
	}
}

func TestStreamExport_BackendFailure(t *testing.T) {
	env := setupTestRouter(t)
	env.exports.StreamFunc = func(ctx context.Context, w http.ResponseWriter, req service.ExportRequest) error {
		return &backend.TransportError{Method: "GET", URL: "/resources/", Err: errors.New("connection refused")}
	}

	w := env.do("GET", "/v1/exports?entity=resources&scope=admin", nil, authorized())
	if w.Code != http.StatusBadGateway {
		t.Fatalf("Expected status 502, got %d", w.Code)
	}
	if response := decode(t, w); response["retryable"] != true {
		t.Errorf("expected retryable flag, got %v", response)
	}
}
