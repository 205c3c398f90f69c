package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fmuoria/resume-tailor/internal/models"
	"github.com/ledongthuc/pdf"
)

func login(t *testing.T, h http.Handler, user, pass string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	body, _ := json.Marshal(models.LoginRequest{Username: user, Password: pass})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body)))

	var resp models.LoginResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp.AccessToken
}

func generateRequest(t *testing.T, token string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/generate_dynamic_resume_pdf", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestLogin(t *testing.T) {
	h := NewDemoServer().Router()

	rec, token := login(t, h, "demo", "demo")
	if rec.Code != http.StatusOK || token == "" {
		t.Fatalf("Expected token, got status %d body %s", rec.Code, rec.Body.String())
	}

	rec, _ = login(t, h, "demo", "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"detail"`) {
		t.Errorf("Expected detail field in error body, got %s", rec.Body.String())
	}
}

func TestProfilesRequiresAuth(t *testing.T) {
	h := NewDemoServer().Router()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profiles", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without token, got %d", rec.Code)
	}

	_, token := login(t, h, "demo", "demo")
	req := httptest.NewRequest(http.MethodGet, "/profiles", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp models.ProfilesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode profiles: %v", err)
	}
	if len(resp.Profiles) != 2 {
		t.Errorf("Expected 2 profiles, got %d", len(resp.Profiles))
	}
}

func TestGenerate(t *testing.T) {
	h := NewDemoServer().Router()
	_, token := login(t, h, "demo", "demo")

	tests := []struct {
		name       string
		fields     map[string]string
		wantStatus int
	}{
		{
			name:       "Valid submission",
			fields:     map[string]string{"profile_name": "Software Engineer", "company": "Acme (Intl)", "role": "SWE", "job_description": "Build things\nShip them"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "Missing profile",
			fields:     map[string]string{"company": "Acme", "role": "SWE", "job_description": "x"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Unknown profile",
			fields:     map[string]string{"profile_name": "Nobody", "job_description": "x"},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "Empty job description",
			fields:     map[string]string{"profile_name": "Software Engineer"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, generateRequest(t, token, tt.fields))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
					t.Errorf("Content-Type = %q", ct)
				}
				if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
					t.Error("Expected PDF body")
				}
			} else if !strings.Contains(rec.Body.String(), `"error"`) {
				t.Errorf("Expected error field, got %s", rec.Body.String())
			}
		})
	}
}

// pdfText parses a PDF and returns its plain text
func pdfText(t *testing.T, data []byte) string {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Failed to parse PDF: %v", err)
	}
	text, err := r.GetPlainText()
	if err != nil {
		t.Fatalf("Failed to extract text: %v", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(text); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestRenderPDF(t *testing.T) {
	data, err := RenderPDF([]string{"Jane (Doe)", `back\slash`, "", "café", "emoji 😀"})
	if err != nil {
		t.Fatalf("RenderPDF failed: %v", err)
	}

	text := pdfText(t, data)
	for _, want := range []string{"Jane (Doe)", `back\slash`, "café", "emoji ."} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in extracted text %q", want, text)
		}
	}
}

func TestRenderPDF_OverflowAddsPages(t *testing.T) {
	lines := []string{"Title"}
	for i := 0; i < 120; i++ {
		lines = append(lines, fmt.Sprintf("Requirement line %03d", i))
	}
	data, err := RenderPDF(lines)
	if err != nil {
		t.Fatalf("RenderPDF failed: %v", err)
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Failed to parse PDF: %v", err)
	}
	if r.NumPage() < 2 {
		t.Errorf("Expected overflow onto a second page, got %d pages", r.NumPage())
	}
	if text := pdfText(t, data); !strings.Contains(text, "Requirement line 119") {
		t.Error("Expected the last line to be kept")
	}
}
