package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	app "github.com/brokerdesk/intake/internal/app"
	"github.com/brokerdesk/intake/internal/app/domain/book"
	"github.com/brokerdesk/intake/internal/app/storage/memory"
	"github.com/brokerdesk/intake/pkg/logger"
)

func newTestHandler(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()
	store := memory.New()
	log := logger.NewDefault("httpapi-test")
	log.SetOutput(io.Discard)
	application := app.New(app.Stores{Applications: store, Reference: store}, log)
	return NewHandler(application, log), store
}

func marshal(t *testing.T, payload any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(data)
}

func decode(t *testing.T, body []byte, dst any) {
	t.Helper()
	if err := json.Unmarshal(body, dst); err != nil {
		t.Fatalf("unmarshal %s: %v", body, err)
	}
}

func TestRoot(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body map[string]string
	decode(t, resp.Body.Bytes(), &body)
	if body["message"] != "Hello World" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestApplicationLifecycle(t *testing.T) {
	handler, _ := newTestHandler(t)

	addBody := marshal(t, map[string]string{
		"first_name":  "jOHN",
		"last_name":   "doe",
		"dob":         "01/15/1980",
		"plan_choice": "Gold",
	})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/add", addBody))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var added map[string]string
	decode(t, resp.Body.Bytes(), &added)
	id := added["application_id"]
	if id == "" {
		t.Fatalf("no application_id in response: %v", added)
	}

	// status lookup is case-insensitive and returns Pending
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/status/"+id, nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 status lookup, got %d", resp.Code)
	}
	var statusBody struct {
		Message     string `json:"message"`
		Application struct {
			Status         string `json:"status"`
			FirstName      string `json:"first_name"`
			SubmissionDate string `json:"submission_date"`
		} `json:"application"`
	}
	decode(t, resp.Body.Bytes(), &statusBody)
	if statusBody.Application.Status != "Pending" {
		t.Fatalf("expected Pending, got %q", statusBody.Application.Status)
	}
	if statusBody.Application.FirstName != "John" {
		t.Fatalf("name not normalized: %q", statusBody.Application.FirstName)
	}

	// update an allow-listed field
	updateBody := marshal(t, map[string]string{
		"application_id": id,
		"field_name":     "status",
		"new_value":      "reviewed",
	})
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPut, "/update-application", updateBody))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 update, got %d: %s", resp.Code, resp.Body.String())
	}

	// list by status now finds it under Reviewed
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/applications/status/?status=reviewed", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 list, got %d", resp.Code)
	}
	var listed []map[string]any
	decode(t, resp.Body.Bytes(), &listed)
	if len(listed) != 1 {
		t.Fatalf("expected 1 reviewed application, got %d", len(listed))
	}
}

func TestStatusNotFound(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/status/zzzzzz", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	var body map[string]string
	decode(t, resp.Body.Bytes(), &body)
	if body["error"] != "zzzzzz is not found. Please check and try again." {
		t.Fatalf("unexpected error message: %q", body["error"])
	}
}

func TestSearchByName(t *testing.T) {
	handler, _ := newTestHandler(t)

	addBody := marshal(t, map[string]string{
		"first_name":  "John",
		"last_name":   "Doe",
		"dob":         "01/15/1980",
		"plan_choice": "Gold",
	})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/add", addBody))
	if resp.Code != http.StatusCreated {
		t.Fatalf("add failed: %d", resp.Code)
	}

	lower := httptest.NewRecorder()
	handler.ServeHTTP(lower, httptest.NewRequest(http.MethodGet, "/search-by-name?first_name=john&last_name=doe", nil))
	upper := httptest.NewRecorder()
	handler.ServeHTTP(upper, httptest.NewRequest(http.MethodGet, "/search-by-name?first_name=JOHN&last_name=DOE", nil))
	if lower.Code != http.StatusOK || upper.Code != http.StatusOK {
		t.Fatalf("expected 200s, got %d and %d", lower.Code, upper.Code)
	}
	if lower.Body.String() != upper.Body.String() {
		t.Fatalf("case-sensitive search results:\n%s\nvs\n%s", lower.Body.String(), upper.Body.String())
	}

	none := httptest.NewRecorder()
	handler.ServeHTTP(none, httptest.NewRequest(http.MethodGet, "/search-by-name?first_name=nobody&last_name=here", nil))
	if none.Code != http.StatusOK {
		t.Fatalf("no-results search should be 200, got %d", none.Code)
	}
	var body map[string]string
	decode(t, none.Body.Bytes(), &body)
	if body["message"] == "" {
		t.Fatalf("expected a no-results message")
	}
}

func TestUpdateValidation(t *testing.T) {
	handler, _ := newTestHandler(t)

	updateBody := marshal(t, map[string]string{
		"application_id": "a1b2c3",
		"field_name":     "submission_date",
		"new_value":      "01/01/1999",
	})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPut, "/update-application", updateBody))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for disallowed field, got %d", resp.Code)
	}

	updateBody = marshal(t, map[string]string{
		"application_id": "zzzzzz",
		"field_name":     "city",
		"new_value":      "Dallas",
	})
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPut, "/update-application", updateBody))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", resp.Code)
	}
}

func TestListByStatusValidation(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/applications/status/?status=archived", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", resp.Code)
	}
}

func TestReports(t *testing.T) {
	handler, store := newTestHandler(t)
	store.SetReferenceRows([]book.ReferenceRow{
		{Plan: "Gold", Count: 10, CommissionRate: 0.05},
		{Plan: "Silver", Count: 25, CommissionRate: 0.03},
	})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/book_of_business", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 book of business, got %d", resp.Code)
	}
	var bob map[string]string
	decode(t, resp.Body.Bytes(), &bob)
	want := "You have 35 members in your book of business.  The breakout is as follows:" +
		"<br/> Gold: 10<br/> Silver: 25"
	if bob["message"] != want {
		t.Fatalf("narrative:\n got %q\nwant %q", bob["message"], want)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/commissions", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 commissions, got %d", resp.Code)
	}
	var com map[string]string
	decode(t, resp.Body.Bytes(), &com)
	// 10*0.05*640 + 25*0.03*640 = 320 + 480 = 800
	if com["message"] != "Your commissions total $800" {
		t.Fatalf("commissions message: %q", com["message"])
	}
}

func TestReportsUnavailable(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/commissions", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with no dataset, got %d", resp.Code)
	}
}

func TestOrder(t *testing.T) {
	handler, _ := newTestHandler(t)

	orderBody := marshal(t, map[string]string{
		"item":    "widget",
		"qty":     "2",
		"address": "1 Main St",
	})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/order", orderBody))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 order, got %d", resp.Code)
	}

	var body map[string]string
	decode(t, resp.Body.Bytes(), &body)
	if body["order_id"] == "" {
		t.Fatalf("no order id: %v", body)
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 healthz, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 metrics, got %d", resp.Code)
	}
	if resp.Body.Len() == 0 {
		t.Fatalf("expected metrics output")
	}
}
