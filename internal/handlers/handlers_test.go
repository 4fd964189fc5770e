package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
	"alfredoptarigan/resume-matcher/internal/services"
)

type stubIntake struct {
	err     error
	req     services.IntakeRequest
	sawFile bool
	calls   int
}

func (s *stubIntake) Ingest(ctx context.Context, req services.IntakeRequest) (*models.Resume, error) {
	s.calls++
	s.req = req
	_, statErr := os.Stat(req.FilePath)
	s.sawFile = statErr == nil
	if s.err != nil {
		return nil, s.err
	}
	return &models.Resume{Email: "jane@example.com", ResumeURL: "https://cdn/jane.pdf"}, nil
}

type stubMatching struct {
	outcome *services.MatchOutcome
	err     error
	req     models.CompanyRequest
	calls   int
	jobs    map[string]*models.JobQuery
}

func (s *stubMatching) MatchCompany(ctx context.Context, req models.CompanyRequest) (*services.MatchOutcome, error) {
	s.calls++
	s.req = req
	return s.outcome, s.err
}

func (s *stubMatching) FindJob(ctx context.Context, companyName string) (*models.JobQuery, error) {
	if job, ok := s.jobs[models.CompanyKey(companyName)]; ok {
		return job, nil
	}
	return nil, repositories.ErrJobNotFound
}

func uploadRequest(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = part.Write([]byte(content))
	}
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("invalid json %q: %v", raw, err)
	}
	return out
}

func newUploadApp(t *testing.T, intake services.IntakeService) (*fiber.App, string) {
	t.Helper()

	dir := t.TempDir()
	temp := services.NewTempStorage(dir, zap.NewNop())
	h := NewUploadHandler(intake, temp, 1024, zap.NewNop())

	app := fiber.New()
	app.Post("/upload", h.HandleUpload)
	return app, dir
}

func TestUploadHandlerSuccess(t *testing.T) {
	intake := &stubIntake{}
	app, dir := newUploadApp(t, intake)

	resp, err := app.Test(uploadRequest(t, "cv.pdf", "%PDF", map[string]string{"userId": "u-1", "userEmail": "owner@x.com"}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["message"] != "Resume uploaded successfully" || body["document_id"] != "jane@example.com" || body["pdf_url"] != "https://cdn/jane.pdf" {
		t.Fatalf("unexpected body %v", body)
	}
	if !intake.sawFile || intake.req.UserID != "u-1" || intake.req.UserEmail != "owner@x.com" {
		t.Fatalf("unexpected intake request %+v", intake.req)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("temp file left behind: %v", entries)
	}
}

func TestUploadHandlerRejectsBadInput(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		content  string
		fields   map[string]string
		status   int
	}{
		{name: "no file", fields: map[string]string{"userId": "u-1"}, status: fiber.StatusBadRequest},
		{name: "no user", filename: "cv.pdf", content: "x", status: fiber.StatusBadRequest},
		{name: "bad extension", filename: "cv.exe", content: "x", fields: map[string]string{"userId": "u-1"}, status: fiber.StatusBadRequest},
		{name: "too large", filename: "cv.pdf", content: strings.Repeat("x", 2048), fields: map[string]string{"userId": "u-1"}, status: fiber.StatusRequestEntityTooLarge},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			intake := &stubIntake{}
			app, _ := newUploadApp(t, intake)

			resp, err := app.Test(uploadRequest(t, tc.filename, tc.content, tc.fields))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.status)
			}
			if body := decodeBody(t, resp); body["error"] == "" || body["error"] == nil {
				t.Fatalf("missing error message: %v", body)
			}
			if intake.calls != 0 {
				t.Fatal("intake should not run")
			}
		})
	}
}

func TestUploadHandlerMapsIntakeStages(t *testing.T) {
	cases := map[string]int{
		services.StageValidate:  fiber.StatusUnprocessableEntity,
		services.StageExtract:   fiber.StatusInternalServerError,
		services.StageParse:     fiber.StatusInternalServerError,
		services.StageStoreFile: fiber.StatusInternalServerError,
		services.StagePersist:   fiber.StatusInternalServerError,
	}

	for stage, want := range cases {
		intake := &stubIntake{err: &services.IntakeError{Stage: stage, Err: errors.New("boom")}}
		app, dir := newUploadApp(t, intake)

		resp, err := app.Test(uploadRequest(t, "cv.txt", "Jane", map[string]string{"userId": "u-1"}))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != want {
			t.Fatalf("%s: status = %d, want %d", stage, resp.StatusCode, want)
		}
		if entries, _ := os.ReadDir(dir); len(entries) != 0 {
			t.Fatalf("%s: temp file left behind", stage)
		}
	}
}

func companyBody(overrides map[string]string) io.Reader {
	body := map[string]string{
		"company_name":    "Acme",
		"job_description": "Build Go services",
		"hiring_type":     "Full-time",
		"work_mode":       "Remote",
		"job_role":        "Backend Engineer",
		"company_email":   "hiring@acme.io",
	}
	for k, v := range overrides {
		body[k] = v
	}
	raw, _ := json.Marshal(body)
	return bytes.NewReader(raw)
}

func newCompanyApp(matching services.MatchingService) *fiber.App {
	h := NewCompanyHandler(matching, zap.NewNop())
	app := fiber.New()
	app.Post("/company", h.HandleCompany)
	app.Get("/company/:name", h.HandleGetCompany)
	return app
}

func postCompany(t *testing.T, app *fiber.App, overrides map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/company", companyBody(overrides))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestCompanyHandlerSuccess(t *testing.T) {
	top := []models.MatchResult{
		{CandidateID: "a@x.com", Score: 90, MatchedQualifiers: []string{"Go"}, Explanation: "strong"},
		{CandidateID: "b@x.com", Score: 60, MatchedQualifiers: []string{}, Explanation: "ok"},
	}
	matching := &stubMatching{outcome: &services.MatchOutcome{Matches: top, TopMatches: top, EmailSent: true}}
	app := newCompanyApp(matching)

	resp := postCompany(t, app, map[string]string{"company_name": "  Acme  "})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["total_matches"] != float64(2) || body["email_sent"] != true {
		t.Fatalf("unexpected body %v", body)
	}
	if got := body["top_matches"].([]any); len(got) != 2 {
		t.Fatalf("unexpected top matches %v", got)
	}
	if matching.req.CompanyName != "Acme" {
		t.Fatalf("company name not trimmed: %q", matching.req.CompanyName)
	}
}

func TestCompanyHandlerValidation(t *testing.T) {
	cases := map[string]map[string]string{
		"company_name is required":                    {"company_name": "   "},
		"job_description is required":                 {"job_description": ""},
		"company_email must be a valid email address": {"company_email": "hiring-at-acme"},
	}

	for want, overrides := range cases {
		matching := &stubMatching{}
		resp := postCompany(t, newCompanyApp(matching), overrides)

		if resp.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("%s: status = %d", want, resp.StatusCode)
		}
		if body := decodeBody(t, resp); !strings.Contains(body["error"].(string), want) {
			t.Fatalf("error %q does not mention %q", body["error"], want)
		}
		if matching.calls != 0 {
			t.Fatalf("%s: matching should not run", want)
		}
	}
}

func TestCompanyHandlerFailure(t *testing.T) {
	resp := postCompany(t, newCompanyApp(&stubMatching{err: errors.New("db down")}), nil)
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestGetCompany(t *testing.T) {
	matching := &stubMatching{jobs: map[string]*models.JobQuery{
		"acme corp": {ID: "acme corp", CompanyName: "Acme Corp", TotalMatches: 1},
	}}
	app := newCompanyApp(matching)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/company/Acme%20Corp", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["company_name"] != "Acme Corp" {
		t.Fatalf("unexpected body %v", body)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/company/globex", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestResumeHandler(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryResumeRepository()
	if err := repo.Upsert(ctx, &models.Resume{Email: "jane@example.com", Skills: []string{"Golang"}}); err != nil {
		t.Fatal(err)
	}
	h := NewResumeHandler(services.NewSearchService(repo), zap.NewNop())

	app := fiber.New()
	app.Get("/search_resumes", h.HandleSearch)
	app.Get("/get_resume/:email", h.HandleGetResume)

	get := func(target string) *http.Response {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	resp := get("/search_resumes?query=golang")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["total_matches"] != float64(1) {
		t.Fatalf("unexpected body %v", body)
	}

	if resp := get("/search_resumes"); resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("empty query status = %d", resp.StatusCode)
	}

	resp = get("/get_resume/Jane@Example.com")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["email"] != "jane@example.com" {
		t.Fatalf("unexpected body %v", body)
	}

	if resp := get("/get_resume/nobody@example.com"); resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("missing resume status = %d", resp.StatusCode)
	}
}
