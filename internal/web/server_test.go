package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/vizboard/internal/config"
	"github.com/JonMunkholm/vizboard/internal/core"
	"github.com/JonMunkholm/vizboard/internal/store"
)

const salesCSV = `region,product,units,price,date,channel
North,Widget,10,2.5,2024-01-01,web
South,Gadget,4,10,2024-01-02,store
North,Gadget,6,7.25,2024-01-03,web
East,Widget,8,3,2024-01-04,store
West,Gizmo,2,12,2024-01-05,web
South,Widget,5,2.75,2024-01-06,phone
`

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Render.Width = 320
	cfg.Render.Height = 240
	cfg.Render.NetworkIterations = 10
	cfg.Upload.MaxWaitTime = time.Second
	cfg.Rate.Enabled = false
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	st := store.NewMemory(cfg.Session.TTL)
	svc, err := core.NewService(cfg, st, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	srv := NewServer(svc, cfg)
	t.Cleanup(func() {
		srv.Shutdown(t.Context())
		st.Close()
	})
	return srv
}

// uploadRequest builds a multipart POST with content in the "file" field.
func uploadRequest(t *testing.T, path, name, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if name != "" {
		fw, err := mw.CreateFormFile("file", name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

// uploadSession uploads salesCSV through the API under a fresh session ID.
func uploadSession(t *testing.T, srv *Server) string {
	t.Helper()
	id := uuid.NewString()
	req := uploadRequest(t, "/api/upload", "sales.csv", salesCSV)
	req.Header.Set(sessionHeader, id)
	rec := serve(srv, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}
	return id
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, testConfig())
	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
	if body["variant"] != "full" {
		t.Errorf("variant = %v", body["variant"])
	}
}

func TestLandingPage(t *testing.T) {
	srv := newTestServer(t, testConfig())
	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Upload your Dataset (CSV format)", "Upload a CSV file"} {
		if !strings.Contains(body, want) {
			t.Errorf("landing page missing %q", want)
		}
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing Content-Security-Policy header")
	}
}

func TestBrowserUploadFlow(t *testing.T) {
	srv := newTestServer(t, testConfig())

	rec := serve(srv, uploadRequest(t, "/upload", "sales.csv", salesCSV))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "vizboard_session" {
		t.Fatalf("cookies = %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}

	req := httptest.NewRequest(http.MethodGet, "/?bar.x=product", nil)
	req.AddCookie(cookies[0])
	rec = serve(srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Data Preview", "Visualization Dashboard", "KPI Cards", "data:image/png;base64,", "Bar Chart for product vs region"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}

	// Discard drops the dataset and the landing page returns.
	req = httptest.NewRequest(http.MethodPost, "/discard", nil)
	req.AddCookie(cookies[0])
	if rec := serve(srv, req); rec.Code != http.StatusSeeOther {
		t.Fatalf("discard status = %d", rec.Code)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	if body := serve(srv, req).Body.String(); strings.Contains(body, "Data Preview") {
		t.Error("dashboard still shown after discard")
	}
}

func TestUploadErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxFileSize = 64
	srv := newTestServer(t, cfg)

	tests := []struct {
		name     string
		file     string
		content  string
		wantCode int
		wantErr  string
	}{
		{"no file", "", "", http.StatusBadRequest, "FILE004"},
		{"empty file", "empty.csv", "", http.StatusBadRequest, "FILE005"},
		{"too large", "big.csv", strings.Repeat("a,b\n", 40), http.StatusRequestEntityTooLarge, "FILE001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(srv, uploadRequest(t, "/api/upload", tt.file, tt.content))
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if resp := decodeError(t, rec); resp.Code != tt.wantErr {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantErr)
			}
		})
	}
}

func TestBrowserErrorPage(t *testing.T) {
	srv := newTestServer(t, testConfig())
	rec := serve(srv, uploadRequest(t, "/upload", "empty.csv", ""))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if body := rec.Body.String(); !strings.Contains(body, "FILE005") {
		t.Errorf("error page missing code: %s", body)
	}
}

func TestAPIDataset(t *testing.T) {
	srv := newTestServer(t, testConfig())

	t.Run("no session", func(t *testing.T) {
		rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/dataset", nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d", rec.Code)
		}
		if resp := decodeError(t, rec); resp.Code != "SES001" {
			t.Errorf("code = %q, want SES001", resp.Code)
		}
	})

	t.Run("uploaded", func(t *testing.T) {
		id := uploadSession(t, srv)
		req := httptest.NewRequest(http.MethodGet, "/api/dataset", nil)
		req.Header.Set(sessionHeader, id)
		rec := serve(srv, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var summary core.DatasetSummary
		if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
			t.Fatal(err)
		}
		if summary.Rows != 6 || len(summary.Header) != 6 {
			t.Errorf("rows=%d header=%v", summary.Rows, summary.Header)
		}
		if summary.Name != "sales.csv" {
			t.Errorf("name = %q", summary.Name)
		}
	})

	t.Run("delete", func(t *testing.T) {
		id := uploadSession(t, srv)
		req := httptest.NewRequest(http.MethodDelete, "/api/dataset", nil)
		req.Header.Set(sessionHeader, id)
		if rec := serve(srv, req); rec.Code != http.StatusNoContent {
			t.Fatalf("delete status = %d", rec.Code)
		}
		req = httptest.NewRequest(http.MethodGet, "/api/dataset", nil)
		req.Header.Set(sessionHeader, id)
		if rec := serve(srv, req); rec.Code != http.StatusNotFound {
			t.Errorf("after delete status = %d", rec.Code)
		}
	})
}

func TestAPIKPI(t *testing.T) {
	srv := newTestServer(t, testConfig())
	id := uploadSession(t, srv)

	tests := []struct {
		name       string
		column     string
		wantStatus int
		wantFirst  string
	}{
		{"default column", "", http.StatusOK, "Mean of units"},
		{"price", "price", http.StatusOK, "Mean of price"},
		{"categorical", "region", http.StatusBadRequest, ""},
		{"missing", "nope", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/kpi?column="+tt.column, nil)
			req.Header.Set(sessionHeader, id)
			rec := serve(srv, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantFirst == "" {
				return
			}
			var kpi core.KPI
			if err := json.NewDecoder(rec.Body).Decode(&kpi); err != nil {
				t.Fatal(err)
			}
			if len(kpi.Metrics) != 4 || kpi.Metrics[0].Label != tt.wantFirst {
				t.Errorf("metrics = %+v", kpi.Metrics)
			}
		})
	}
}

func TestAPIDashboard(t *testing.T) {
	srv := newTestServer(t, testConfig())
	id := uploadSession(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard?histogram.bins=3", nil)
	req.Header.Set(sessionHeader, id)
	rec := serve(srv, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var dash core.Dashboard
	if err := json.NewDecoder(rec.Body).Decode(&dash); err != nil {
		t.Fatal(err)
	}
	if len(dash.Sections) == 0 {
		t.Fatal("no sections")
	}
	for _, sec := range dash.Sections {
		if sec.Err != "" {
			t.Errorf("section %s error: %s", sec.Kind, sec.Err)
		}
	}
}

func TestAPICharts(t *testing.T) {
	tests := []struct {
		variant string
		want    int
	}{
		{"full", 12},
		{"simple", 9},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			cfg := testConfig()
			cfg.Dashboard.Variant = tt.variant
			srv := newTestServer(t, cfg)

			rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/charts", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			var list []chartInfo
			if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
				t.Fatal(err)
			}
			if len(list) != tt.want {
				t.Errorf("got %d charts, want %d", len(list), tt.want)
			}
			if list[0].Kind != "bar" || len(list[0].Slots) != 2 {
				t.Errorf("first chart = %+v", list[0])
			}
		})
	}
}

func TestChartEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig())
	id := uploadSession(t, srv)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantType   string
	}{
		{"png", "/chart/bar?bar.x=region&bar.y=units", http.StatusOK, "image/png"},
		{"svg", "/chart/scatter?format=svg", http.StatusOK, "image/svg+xml"},
		{"unknown kind", "/chart/radar", http.StatusNotFound, ""},
		{"bad format", "/chart/bar?format=gif", http.StatusBadRequest, ""},
		{"bad column", "/chart/bar?bar.x=nope", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set(sessionHeader, id)
			req.Header.Set("Accept", "application/json")
			rec := serve(srv, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantType == "" {
				return
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.wantType) {
				t.Errorf("Content-Type = %q, want %q", ct, tt.wantType)
			}
			if rec.Body.Len() == 0 {
				t.Error("empty image body")
			}
		})
	}

	t.Run("download", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/chart/pie?download=1", nil)
		req.Header.Set(sessionHeader, id)
		rec := serve(srv, req)
		if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="pie.png"` {
			t.Errorf("Content-Disposition = %q", got)
		}
	})
}

func TestAPIHistoryDisabled(t *testing.T) {
	srv := newTestServer(t, testConfig())
	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/history", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "HIS001" {
		t.Errorf("code = %q, want HIS001", resp.Code)
	}
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	srv := newTestServer(t, cfg)

	tests := []struct {
		name string
		key  string
		want int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "nope", http.StatusForbidden},
		{"valid", "secret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/charts", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			if rec := serve(srv, req); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	// Pages stay open.
	if rec := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil)); rec.Code != http.StatusOK {
		t.Errorf("landing status = %d", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := rl.allow("10.0.0.1"); !ok {
			t.Fatalf("request %d denied", i+1)
		}
	}
	ok, retry := rl.allow("10.0.0.1")
	if ok {
		t.Fatal("third request allowed")
	}
	if retry != time.Minute {
		t.Errorf("retry = %v, want 1m", retry)
	}
	if ok, _ := rl.allow("10.0.0.2"); !ok {
		t.Error("other IP denied")
	}

	now = now.Add(time.Minute)
	if ok, _ := rl.allow("10.0.0.1"); !ok {
		t.Error("request denied after window reset")
	}

	now = now.Add(3 * time.Minute)
	rl.cleanup()
	if len(rl.visitors) != 0 {
		t.Errorf("cleanup left %d visitors", len(rl.visitors))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := testConfig()
	cfg.Rate.Enabled = true
	cfg.Rate.RequestsPerMinute = 1
	srv := newTestServer(t, cfg)

	if rec := serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil)); rec.Code != http.StatusOK {
		t.Fatalf("first status = %d", rec.Code)
	}
	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/charts", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
	if resp := decodeError(t, rec); resp.Code != "RATE001" {
		t.Errorf("code = %q, want RATE001", resp.Code)
	}
}
