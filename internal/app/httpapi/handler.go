// Package httpapi exposes the intake service over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	app "github.com/brokerdesk/intake/internal/app"
	"github.com/brokerdesk/intake/internal/app/domain/application"
	"github.com/brokerdesk/intake/internal/app/metrics"
	"github.com/brokerdesk/intake/internal/app/services/intake"
	"github.com/brokerdesk/intake/internal/app/services/reports"
	"github.com/brokerdesk/intake/internal/app/storage"
	"github.com/brokerdesk/intake/pkg/logger"
)

// handler bundles HTTP endpoints for the intake services.
type handler struct {
	app *app.Application
	log *logger.Logger
}

// NewHandler returns a router exposing the intake REST API.
func NewHandler(application *app.Application, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{app: application, log: log}

	r := mux.NewRouter()
	r.Use(requestMiddleware(log))

	r.HandleFunc("/", h.root).Methods(http.MethodGet)
	r.HandleFunc("/add", h.addApplication).Methods(http.MethodPost)
	r.HandleFunc("/status/{application_id}", h.getStatus).Methods(http.MethodGet)
	r.HandleFunc("/search-by-name", h.searchByName).Methods(http.MethodGet)
	r.HandleFunc("/update-application", h.updateApplication).Methods(http.MethodPut)
	r.HandleFunc("/applications/status/", h.listByStatus).Methods(http.MethodGet)
	r.HandleFunc("/book_of_business", h.bookOfBusiness).Methods(http.MethodGet)
	r.HandleFunc("/commissions", h.commissions).Methods(http.MethodGet)
	r.HandleFunc("/order", h.order).Methods(http.MethodPost)
	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return r
}

func (h *handler) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello World"})
}

func (h *handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) addApplication(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		DOB        string `json:"dob"`
		Address    string `json:"address"`
		City       string `json:"city"`
		State      string `json:"state"`
		Zip        string `json:"zip"`
		PlanChoice string `json:"plan_choice"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rec, err := h.app.Intake.AddApplication(r.Context(), intake.NewApplication{
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		DOB:        payload.DOB,
		Address:    payload.Address,
		City:       payload.City,
		State:      payload.State,
		Zip:        payload.Zip,
		PlanChoice: payload.PlanChoice,
	})
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	metrics.RecordSubmission()
	writeJSON(w, http.StatusCreated, map[string]string{
		"application_id": rec.ApplicationID,
		"message": fmt.Sprintf("The application is submitted. The id is %s. Write this down to track the status.",
			rec.ApplicationID),
	})
}

func (h *handler) getStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["application_id"]

	rec, err := h.app.Intake.GetStatus(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": intake.NotFoundMessage(id)})
			return
		}
		h.writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message     string             `json:"message"`
		Application application.Record `json:"application"`
	}{
		Message:     intake.StatusMessage(rec, time.Now()),
		Application: rec,
	})
}

func (h *handler) searchByName(w http.ResponseWriter, r *http.Request) {
	firstName := r.URL.Query().Get("first_name")
	lastName := r.URL.Query().Get("last_name")
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("first_name and last_name are required"))
		return
	}

	records, err := h.app.Intake.SearchByName(r.Context(), firstName, lastName)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	if len(records) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": fmt.Sprintf("No applications found for %s %s.", firstName, lastName),
		})
		return
	}

	lines := make([]string, len(records))
	for i, rec := range records {
		lines[i] = fmt.Sprintf("%s: %s %s, submitted %s, status %s",
			rec.ApplicationID, rec.FirstName, rec.LastName, rec.SubmissionDate, rec.Status)
	}
	writeJSON(w, http.StatusOK, struct {
		Message      string               `json:"message"`
		Applications []application.Record `json:"applications"`
	}{
		Message:      strings.Join(lines, "\n"),
		Applications: records,
	})
}

func (h *handler) updateApplication(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ApplicationID string `json:"application_id"`
		FieldName     string `json:"field_name"`
		NewValue      string `json:"new_value"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(payload.ApplicationID) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("application_id is required"))
		return
	}

	rec, err := h.app.Intake.UpdateField(r.Context(), payload.ApplicationID, payload.FieldName, payload.NewValue)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message     string             `json:"message"`
		Application application.Record `json:"application"`
	}{
		Message: fmt.Sprintf("The application %s has been updated: %s is now %q.",
			rec.ApplicationID, payload.FieldName, payload.NewValue),
		Application: rec,
	})
}

func (h *handler) listByStatus(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	records, err := h.app.Intake.ListByStatus(r.Context(), status)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	if records == nil {
		records = []application.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *handler) bookOfBusiness(w http.ResponseWriter, r *http.Request) {
	summary, err := h.app.Reports.BookOfBusiness(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": reports.Narrative(summary)})
}

func (h *handler) commissions(w http.ResponseWriter, r *http.Request) {
	total, err := h.app.Reports.Commissions(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": reports.CommissionsMessage(total)})
}

func (h *handler) order(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Item    string `json:"item"`
		Qty     string `json:"qty"`
		Address string `json:"address"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	conf, err := h.app.Orders.Confirm(r.Context(), payload.Item, payload.Qty, payload.Address)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":  conf.Message,
		"order_id": conf.OrderID,
	})
}

// writeFailure maps service errors onto HTTP status codes.
func (h *handler) writeFailure(w http.ResponseWriter, err error) {
	var validation *application.ValidationError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, storage.ErrConflict):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, storage.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		h.log.WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, err)
	}
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
