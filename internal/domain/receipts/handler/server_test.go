package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mtavares/receiptwise/internal/domain/merchant"
	"github.com/mtavares/receiptwise/internal/domain/parser"
	"github.com/mtavares/receiptwise/internal/domain/receipts"
)

// memRepo is an in-memory receipts.Repository for handler tests.
type memRepo struct {
	receipts map[uuid.UUID]*receipts.StoredReceipt
}

func newMemRepo() *memRepo {
	return &memRepo{receipts: make(map[uuid.UUID]*receipts.StoredReceipt)}
}

func (m *memRepo) Save(_ context.Context, sr *receipts.StoredReceipt) error {
	m.receipts[sr.ID] = sr
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*receipts.StoredReceipt, error) {
	sr, ok := m.receipts[id]
	if !ok {
		return nil, receipts.ErrNotFound
	}
	return sr, nil
}

func (m *memRepo) List(_ context.Context, limit, offset int) ([]*receipts.StoredReceipt, int, error) {
	all := make([]*receipts.StoredReceipt, 0, len(m.receipts))
	for _, sr := range m.receipts {
		all = append(all, sr)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.receipts[id]; !ok {
		return receipts.ErrNotFound
	}
	delete(m.receipts, id)
	return nil
}

func (m *memRepo) ListDeadlinesWithin(_ context.Context, _ time.Time, _ time.Duration) ([]*receipts.StoredReceipt, error) {
	return nil, nil
}

func newTestServer(t *testing.T, auth BasicAuth) *Server {
	t.Helper()
	search, err := receipts.NewSearchIndex("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = search.Close() })

	fixed := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	p := parser.New(parser.WithClock(func() time.Time { return fixed }))
	svc := receipts.NewService(newMemRepo(), search, p, slog.New(slog.DiscardHandler))
	return NewServer(svc, merchant.NewIdentifier(), auth, slog.New(slog.DiscardHandler))
}

const walmartText = `WALMART SUPERCENTER
2024-03-12
2 Milk 3.50 7.00
TOTAL TO PAY 7.70`

func postJSON(t *testing.T, srv *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHandleParse(t *testing.T) {
	srv := newTestServer(t, BasicAuth{})

	rec := postJSON(t, srv, "/v1/receipts/parse", `{"raw_text":"WALMART\n2 Milk 3.50 7.00\nTOTAL TO PAY 7.70"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got parser.Receipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Walmart", got.Merchant)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Milk", got.Items[0].Name)
	assert.True(t, got.ParsedFromOCR)
}

func TestHandleParsePlainText(t *testing.T) {
	srv := newTestServer(t, BasicAuth{})

	req := httptest.NewRequest(http.MethodPost, "/v1/receipts/parse", strings.NewReader("TARGET\n1 Soap 2.99 2.99\nTOTAL TO PAY 3.29"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got parser.Receipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Target", got.Merchant)
}

func TestHandleParseGarbageStillSucceeds(t *testing.T) {
	srv := newTestServer(t, BasicAuth{})

	rec := postJSON(t, srv, "/v1/receipts/parse", `{"raw_text":"@@@@"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got parser.Receipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.IsSampleData)
}

func TestHandleParseBadJSON(t *testing.T) {
	srv := newTestServer(t, BasicAuth{})

	rec := postJSON(t, srv, "/v1/receipts/parse", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReceiptLifecycle(t *testing.T) {
	srv := newTestServer(t, BasicAuth{})

	// Ingest
	rec := postJSON(t, srv, "/v1/receipts", `{"raw_text":"`+strings.ReplaceAll(walmartText, "\n", `\n`)+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var stored receipts.StoredReceipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
	assert.Equal(t, receipts.SourceOCR, stored.Source)

	// List
	req := httptest.NewRequest(http.MethodGet, "/v1/receipts", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Receipts []receipts.StoredReceipt `json:"receipts"`
		Total    int                      `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Equal(t, 1, listed.Total)

	// Get
	req = httptest.NewRequest(http.MethodGet, "/v1/receipts/"+stored.ID.String(), nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Speakable
	req = httptest.NewRequest(http.MethodGet, "/v1/receipts/"+stored.ID.String()+"/speakable", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var spoken map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spoken))
	assert.Contains(t, spoken["text"], "Receipt from Walmart")

	// Search
	req = httptest.NewRequest(http.MethodGet, "/v1/receipts/search?q=milk", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), stored.ID.String())

	// Delete
	req = httptest.NewRequest(http.MethodDelete, "/v1/receipts/"+stored.ID.String(), nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Get after delete
	req = httptest.NewRequest(http.MethodGet, "/v1/receipts/"+stored.ID.String(), nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetInvalidID(t *testing.T) {
	srv := newTestServer(t, BasicAuth{})

	req := httptest.NewRequest(http.MethodGet, "/v1/receipts/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSummary(t *testing.T) {
	srv := newTestServer(t, BasicAuth{})

	rec := postJSON(t, srv, "/v1/receipts", `{"raw_text":"`+strings.ReplaceAll(walmartText, "\n", `\n`)+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/receipts/summary", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"receipts":1`)
}

func TestHandleExport(t *testing.T) {
	srv := newTestServer(t, BasicAuth{})

	rec := postJSON(t, srv, "/v1/receipts", `{"raw_text":"`+strings.ReplaceAll(walmartText, "\n", `\n`)+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("csv", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/receipts/export?format=csv", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "Walmart")
	})

	t.Run("xlsx", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/receipts/export?format=xlsx", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	})

	t.Run("unsupported", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/receipts/export?format=pdf", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleSuggestMerchants(t *testing.T) {
	srv := newTestServer(t, BasicAuth{})

	req := httptest.NewRequest(http.MethodGet, "/v1/merchants/suggest?q=walmrt", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Walmart")
}

func TestBasicAuth(t *testing.T) {
	srv := newTestServer(t, BasicAuth{Username: "admin", Password: "secret"})

	t.Run("missing credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/receipts", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/receipts", nil)
		req.SetBasicAuth("admin", "wrong")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/receipts", nil)
		req.SetBasicAuth("admin", "secret")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("health needs no auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestBasicAuthBcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	srv := newTestServer(t, BasicAuth{Username: "admin", PasswordHash: string(hash)})

	req := httptest.NewRequest(http.MethodGet, "/v1/receipts", nil)
	req.SetBasicAuth("admin", "secret")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/receipts", nil)
	req.SetBasicAuth("admin", "wrong")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
