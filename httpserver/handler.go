package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/consentvault/vault-service-backend/interfaces"
	"github.com/consentvault/vault-service-backend/metrics"
)

const (
	// UserIDHeader identifies the requesting user. The service trusts this
	// header; authentication is handled by the fronting proxy.
	UserIDHeader = "X-User-ID"

	// maxBodySize is the maximum allowed upload size (16MB).
	maxBodySize = 16 * 1024 * 1024
)

// Handler processes HTTP requests for the vault API. It maps the vault
// service and consent gate operations onto routes and translates error
// kinds into status codes.
type Handler struct {
	service interfaces.VaultService
	consent interfaces.ConsentGate
	log     *slog.Logger
}

// NewHandler creates a new HTTP request handler with the specified
// dependencies.
func NewHandler(service interfaces.VaultService, consent interfaces.ConsentGate, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		consent: consent,
		log:     log,
	}
}

// HandleUpload accepts a document and stores it in the vault.
//
// URL format: POST /api/vault/upload
// Required headers:
//   - X-User-ID: owner of the document
//
// Request body: either a multipart form with the file in the "document"
// field, or the raw document bytes.
//
// Response: JSON containing:
//   - document_id: identifier for later retrieval and consent calls
//   - address: content address of the stored ciphertext
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	body, err := readDocument(r)
	if err != nil {
		h.log.Error("Failed to read request body", "err", err)
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		http.Error(w, "Empty request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Upload(r.Context(), user, body)
	if err != nil {
		h.writeError(w, "upload", err)
		return
	}
	metrics.UploadsTotal.Inc()

	response := map[string]interface{}{
		"document_id": result.DocumentID.String(),
		"address":     result.Address,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

// HandleRetrieve returns the decrypted document bytes, subject to the
// consent gate.
//
// URL format: GET /api/vault/retrieve/{document_id}
// Required headers:
//   - X-User-ID: requesting user
//
// Response: raw document bytes (application/octet-stream)
func (h *Handler) HandleRetrieve(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	docID, ok := h.requireDocumentID(w, r)
	if !ok {
		return
	}

	plaintext, err := h.service.Retrieve(r.Context(), user, docID)
	if err != nil {
		h.writeError(w, "retrieve", err)
		return
	}
	metrics.RetrievalsTotal.Inc()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := w.Write(plaintext); err != nil {
		h.log.Error("Failed to write response body", "err", err)
	}
}

// HandleGrantConsent records consent for (user, document).
//
// URL format: POST /api/consent/{document_id}
// Required headers:
//   - X-User-ID: user the consent applies to
func (h *Handler) HandleGrantConsent(w http.ResponseWriter, r *http.Request) {
	h.handleConsentChange(w, r, "grant")
}

// HandleRevokeConsent withdraws consent for (user, document).
//
// URL format: DELETE /api/consent/{document_id}
// Required headers:
//   - X-User-ID: user the consent applies to
func (h *Handler) HandleRevokeConsent(w http.ResponseWriter, r *http.Request) {
	h.handleConsentChange(w, r, "revoke")
}

func (h *Handler) handleConsentChange(w http.ResponseWriter, r *http.Request, action string) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	docID, ok := h.requireDocumentID(w, r)
	if !ok {
		return
	}

	var err error
	if action == "grant" {
		err = h.consent.Grant(r.Context(), user, docID)
	} else {
		err = h.consent.Revoke(r.Context(), user, docID)
	}
	if err != nil {
		h.writeError(w, "consent", err)
		return
	}
	metrics.ConsentChangesTotal.WithLabelValues(action).Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// readDocument extracts the document bytes from an upload request.
// Multipart uploads carry the file in the "document" form field; any
// other content type is treated as a raw body.
func readDocument(r *http.Request) ([]byte, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && strings.HasPrefix(mediaType, "multipart/") {
		if err := r.ParseMultipartForm(maxBodySize); err != nil {
			return nil, err
		}
		file, _, err := r.FormFile("document")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return io.ReadAll(r.Body)
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (interfaces.UserID, bool) {
	user := r.Header.Get(UserIDHeader)
	if user == "" {
		http.Error(w, "Missing "+UserIDHeader+" header", http.StatusBadRequest)
		return "", false
	}
	return interfaces.UserID(user), true
}

func (h *Handler) requireDocumentID(w http.ResponseWriter, r *http.Request) (interfaces.DocumentID, bool) {
	raw := r.PathValue("document_id")
	docID, err := interfaces.ParseDocumentID(raw)
	if err != nil {
		h.log.Error("Invalid document id", "err", err, "id", raw)
		http.Error(w, "Invalid document id", http.StatusBadRequest)
		return "", false
	}
	return docID, true
}

// clientMessages are the only error texts sent to clients. The full
// error chain stays in the logs.
var clientMessages = map[string]string{
	"consent_denied":      "Consent not granted",
	"not_found":           "Document not found",
	"insufficient_shares": "Not enough key shares to reconstruct the document",
	"integrity":           "Stored document failed integrity verification",
	"store_unavailable":   "Content store unavailable",
}

// writeError maps vault error kinds onto HTTP status codes. Consent
// denial and missing documents are client-visible conditions; integrity
// and storage failures surface as gateway errors.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var status int
	var kind string

	switch {
	case errors.Is(err, interfaces.ErrConsentDenied):
		status, kind = http.StatusForbidden, "consent_denied"
	case errors.Is(err, interfaces.ErrNotFound), errors.Is(err, interfaces.ErrContentNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, interfaces.ErrInsufficientShares):
		status, kind = http.StatusConflict, "insufficient_shares"
	case errors.Is(err, interfaces.ErrIntegrity), errors.Is(err, interfaces.ErrReconstruction):
		status, kind = http.StatusBadGateway, "integrity"
	case errors.Is(err, interfaces.ErrStoreUnavailable):
		status, kind = http.StatusServiceUnavailable, "store_unavailable"
	default:
		status, kind = http.StatusInternalServerError, "internal"
	}

	metrics.FailuresTotal.WithLabelValues(op, kind).Inc()

	if status == http.StatusInternalServerError {
		h.log.Error("Request failed", "op", op, "err", err)
		http.Error(w, "Internal server error", status)
		return
	}

	h.log.Info("Request rejected", "op", op, "status", status, "err", err)
	http.Error(w, clientMessages[kind], status)
}
