package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consentvault/vault-service-backend/db"
	"github.com/consentvault/vault-service-backend/interfaces"
	"github.com/consentvault/vault-service-backend/storage"
	"github.com/consentvault/vault-service-backend/vault"
)

type testEnv struct {
	mux     *chi.Mux
	handler *Handler
	gate    *vault.ConsentGate
	service *vault.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repos := db.NewMemoryRepositories()
	store := storage.NewMemoryStore()
	gate := vault.NewConsentGate(repos.Consents, logger)

	masterKey := bytes.Repeat([]byte{7}, interfaces.KeySize)
	sv, err := vault.NewShareVault(repos.Shares, masterKey, logger)
	require.NoError(t, err)

	service, err := vault.NewService(vault.ServiceConfig{
		Roles:     interfaces.DefaultTrusteeRoles,
		Threshold: 2,
	}, store, sv, gate, repos.Documents, logger)
	require.NoError(t, err)

	handler := NewHandler(service, gate, logger)

	mux := chi.NewRouter()
	mux.Post("/api/vault/upload", handler.HandleUpload)
	mux.Get("/api/vault/retrieve/{document_id}", handler.HandleRetrieve)
	mux.Post("/api/consent/{document_id}", handler.HandleGrantConsent)
	mux.Delete("/api/consent/{document_id}", handler.HandleRevokeConsent)

	return &testEnv{mux: mux, handler: handler, gate: gate, service: service}
}

func (env *testEnv) do(method, path, user string, body []byte) *http.Response {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if user != "" {
		req.Header.Set(UserIDHeader, user)
	}
	w := httptest.NewRecorder()
	env.mux.ServeHTTP(w, req)
	return w.Result()
}

func uploadResponse(t *testing.T, resp *http.Response) (docID, address string) {
	t.Helper()
	defer resp.Body.Close()

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.NotEmpty(t, payload["document_id"])
	require.NotEmpty(t, payload["address"])
	return payload["document_id"], payload["address"]
}

func TestHandleUpload_Success(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodPost, "/api/vault/upload", "alice", []byte("medical record"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	uploadResponse(t, resp)
}

func TestHandleUpload_MissingUserHeader(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodPost, "/api/vault/upload", "", []byte("data"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHandleUpload_MultipartRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	document := []byte("hello-world")

	buf, contentType := multipartBody(t, "document", "record.pdf", document)
	req := httptest.NewRequest(http.MethodPost, "/api/vault/upload", buf)
	req.Header.Set(UserIDHeader, "alice")
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	env.mux.ServeHTTP(w, req)

	resp := w.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	docID, _ := uploadResponse(t, resp)

	resp = env.do(http.MethodPost, "/api/consent/"+docID, "alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/vault/retrieve/"+docID, "alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, document, body, "Only the file bytes are stored, not the multipart envelope")
}

func TestHandleUpload_MultipartMissingField(t *testing.T) {
	env := newTestEnv(t)

	buf, contentType := multipartBody(t, "attachment", "record.pdf", []byte("data"))
	req := httptest.NewRequest(http.MethodPost, "/api/vault/upload", buf)
	req.Header.Set(UserIDHeader, "alice")
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	env.mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestHandleUpload_EmptyBody(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodPost, "/api/vault/upload", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRetrieve_FullFlow(t *testing.T) {
	env := newTestEnv(t)
	document := []byte("hello-world")

	resp := env.do(http.MethodPost, "/api/vault/upload", "alice", document)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	docID, _ := uploadResponse(t, resp)

	// Without consent: 403.
	resp = env.do(http.MethodGet, "/api/vault/retrieve/"+docID, "alice", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Grant consent, then retrieve.
	resp = env.do(http.MethodPost, "/api/consent/"+docID, "alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/vault/retrieve/"+docID, "alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, document, body)
	assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))

	// Revoke consent: back to 403.
	resp = env.do(http.MethodDelete, "/api/consent/"+docID, "alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/vault/retrieve/"+docID, "alice", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestErrorResponsesOmitInternalDetail(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodPost, "/api/vault/upload", "alice", []byte("secret"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	docID, _ := uploadResponse(t, resp)

	resp = env.do(http.MethodGet, "/api/vault/retrieve/"+docID, "alice", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Consent not granted\n", string(body))
	assert.NotContains(t, string(body), docID, "Error bodies must not echo internal error detail")
}

func TestRetrieve_UnknownDocument(t *testing.T) {
	env := newTestEnv(t)
	docID := interfaces.NewDocumentID().String()

	resp := env.do(http.MethodPost, "/api/consent/"+docID, "alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/vault/retrieve/"+docID, "alice", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRetrieve_InvalidDocumentID(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodGet, "/api/vault/retrieve/not-a-uuid", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRetrieve_ConsentIsPerUser(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodPost, "/api/vault/upload", "alice", []byte("private"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	docID, _ := uploadResponse(t, resp)

	resp = env.do(http.MethodPost, "/api/consent/"+docID, "alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Bob's consent record does not exist, so bob is denied.
	resp = env.do(http.MethodGet, "/api/vault/retrieve/"+docID, "bob", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRetrieve_InsufficientSharesConflict(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repos := db.NewMemoryRepositories()
	store := storage.NewMemoryStore()
	gate := vault.NewConsentGate(repos.Consents, logger)

	masterKey := bytes.Repeat([]byte{7}, interfaces.KeySize)
	sv, err := vault.NewShareVault(repos.Shares, masterKey, logger)
	require.NoError(t, err)

	service, err := vault.NewService(vault.ServiceConfig{
		Roles:     interfaces.DefaultTrusteeRoles,
		Threshold: 2,
	}, store, sv, gate, repos.Documents, logger)
	require.NoError(t, err)

	handler := NewHandler(service, gate, logger)
	mux := chi.NewRouter()
	mux.Get("/api/vault/retrieve/{document_id}", handler.HandleRetrieve)

	ctx := context.Background()
	result, err := service.Upload(ctx, "alice", []byte("fragile"))
	require.NoError(t, err)
	require.NoError(t, gate.Grant(ctx, "alice", result.DocumentID))

	// Drop two of three shares, leaving one (below threshold).
	require.NoError(t, repos.Shares.DeleteShare(ctx, result.DocumentID, interfaces.RoleUser))
	require.NoError(t, repos.Shares.DeleteShare(ctx, result.DocumentID, interfaces.RoleAuthority))

	req := httptest.NewRequest(http.MethodGet, "/api/vault/retrieve/"+result.DocumentID.String(), nil)
	req.Header.Set(UserIDHeader, "alice")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Result().StatusCode)
}
