package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Zuo-Peng/chatx/internal/index"
	"github.com/Zuo-Peng/chatx/internal/parse"
	"github.com/Zuo-Peng/chatx/internal/search"
	"github.com/Zuo-Peng/chatx/internal/stats"
)

const chat = "12/05/2023, 10:15 - Messages and calls are end-to-end encrypted.\n" +
	"12/05/2023, 10:16 - Alice: pizza tonight?\n" +
	"12/05/2023, 10:17 - Bob: sounds good\n" +
	"31/02/2023, 10:00 - Bob: impossible date\n"

const familyKey = "chat:family/WhatsApp Chat with Alice"

func setupRouter(t *testing.T) (*chi.Mux, *index.DB) {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "family", "WhatsApp Chat with Alice.txt")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(chat), 0o644); err != nil {
		t.Fatal(err)
	}
	db, err := index.OpenDB(filepath.Join(t.TempDir(), "chatx.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := index.IndexAll(db, index.Options{Roots: []string{root}, Include: []string{"**/*.txt"}}); err != nil {
		t.Fatal(err)
	}

	r := chi.NewRouter()
	New(db, parse.Parser{}).RegisterRoutes(r)
	return r, db
}

func exportPath(key, suffix string) string {
	return "/exports/" + url.PathEscape(key) + suffix
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestListExports(t *testing.T) {
	r, _ := setupRouter(t)

	resp := do(r, http.MethodGet, "/exports", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var exports []index.ExportRow
	if err := json.NewDecoder(resp.Body).Decode(&exports); err != nil {
		t.Fatal(err)
	}
	if len(exports) != 1 || exports[0].ExportKey != familyKey || exports[0].MessageCount != 4 {
		t.Errorf("unexpected exports %+v", exports)
	}
}

func TestGetExportNotFound(t *testing.T) {
	r, _ := setupRouter(t)

	resp := do(r, http.MethodGet, exportPath("chat:nope", ""), "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestMessages(t *testing.T) {
	r, _ := setupRouter(t)

	resp := do(r, http.MethodGet, exportPath(familyKey, "/messages")+"?limit=2&offset=2", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body)
	}
	var payload struct {
		Total   int                   `json:"total"`
		Records []parse.MessageRecord `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	if payload.Total != 4 || len(payload.Records) != 2 {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.Records[0].Sender != "Bob" || payload.Records[1].Timestamp.IsResolved() {
		t.Errorf("unexpected records %+v", payload.Records)
	}

	resp = do(r, http.MethodGet, exportPath(familyKey, "/messages")+"?limit=zero", "")
	if resp.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", resp.Code)
	}
}

func TestStats(t *testing.T) {
	r, _ := setupRouter(t)

	resp := do(r, http.MethodGet, exportPath(familyKey, "/stats"), "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body)
	}
	var report stats.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Totals.Messages != 4 || report.Unresolved != 1 || len(report.BusyUsers) != 2 {
		t.Errorf("unexpected report %+v", report)
	}

	resp = do(r, http.MethodGet, exportPath(familyKey, "/stats")+"?user=Bob", "")
	report = stats.Report{}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.User != "Bob" || report.Totals.Messages != 2 {
		t.Errorf("unexpected report for Bob %+v", report)
	}
}

func TestSearch(t *testing.T) {
	r, _ := setupRouter(t)

	resp := do(r, http.MethodGet, "/search?q=pizza", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var results []search.Result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Sender != "Alice" {
		t.Errorf("unexpected results %+v", results)
	}

	resp = do(r, http.MethodGet, "/search?q=sushi", "")
	if body := strings.TrimSpace(resp.Body.String()); body != "[]" {
		t.Errorf("expected empty array, got %s", body)
	}

	resp = do(r, http.MethodGet, "/search", "")
	if resp.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without q, got %d", resp.Code)
	}
}

func TestParse(t *testing.T) {
	r, _ := setupRouter(t)

	resp := do(r, http.MethodPost, "/parse", chat)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var records []parse.MessageRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 || records[0].Sender != parse.GroupNotification {
		t.Errorf("unexpected records %+v", records)
	}

	resp = do(r, http.MethodPost, "/parse", "")
	if resp.Code != http.StatusOK || strings.TrimSpace(resp.Body.String()) != "[]" {
		t.Errorf("expected 200 with [], got %d %s", resp.Code, resp.Body)
	}

	resp = do(r, http.MethodPost, "/parse", "12/05/2023, 10:16 - Alice: \xff\xfe")
	if resp.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for invalid UTF-8, got %d", resp.Code)
	}

	resp = do(r, http.MethodPost, "/parse?date_order=mdy", "05/06/2023, 10:00 - Alice: hi\n")
	records = nil
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Calendar == nil || records[0].Calendar.MonthName != "May" {
		t.Errorf("expected month-first parse, got %+v", records)
	}
}

func TestHealthz(t *testing.T) {
	_, db := setupRouter(t)

	resp := do(NewRouter(db, parse.Parser{}), http.MethodGet, "/healthz", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
