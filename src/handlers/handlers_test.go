package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget-server/src/api"
	"budget-server/src/config"
	"budget-server/src/store"
)

const (
	adminEmail   = "admin@example.com"
	testPassword = "password-123"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	cfg := config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
		JWTSecret:  "test-secret",
		AdminEmail: adminEmail,
	}

	st, err := store.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	srv := httptest.NewServer(api.NewRouter(st, cfg))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func register(t *testing.T, srv *httptest.Server, email string) (token string, userID int64) {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/register", "", map[string]string{
		"email":        email,
		"password":     testPassword,
		"display_name": "Test User",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok, "register response carries the user")
	if tok, ok := body["token"].(string); ok {
		token = tok
	}
	return token, int64(user["id"].(float64))
}

func login(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/login", "", map[string]string{
		"email":    email,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return body["token"].(string)
}

func createTransaction(t *testing.T, srv *httptest.Server, token, kind, category, amount, description string) map[string]interface{} {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", token, map[string]string{
		"description": description,
		"amount":      amount,
		"kind":        kind,
		"category":    category,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body
}

func TestApprovalGate(t *testing.T) {
	srv := newTestServer(t)

	// Regular accounts start unapproved and get no token.
	token, userID := register(t, srv, "user@example.com")
	assert.Empty(t, token)

	// Correct credentials are not enough before approval.
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/login", "", map[string]string{
		"email":    "user@example.com",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Wrong credentials stay a 401 even for pending accounts.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/login", "", map[string]string{
		"email":    "user@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The seeded admin is approved from the start.
	adminToken, _ := register(t, srv, adminEmail)
	require.NotEmpty(t, adminToken)

	resp, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/admin/users/%d/approve", srv.URL, userID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.NotEmpty(t, login(t, srv, "user@example.com"))
}

func TestTransactionFlowAndSummaries(t *testing.T) {
	srv := newTestServer(t)
	adminToken, _ := register(t, srv, adminEmail)

	createTransaction(t, srv, adminToken, "income", "", "1000", "salary")
	createTransaction(t, srv, adminToken, "expense", "Food", "200", "groceries")
	createTransaction(t, srv, adminToken, "expense", "Food", "50", "lunch")

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/summary/totals", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1000", body["income"])
	assert.Equal(t, "250", body["expenses"])
	assert.Equal(t, "750", body["net"])

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/transactions", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	listResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()

	var txns []map[string]interface{}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&txns))
	require.Len(t, txns, 3)
	assert.Equal(t, "salary", txns[0]["description"], "oldest first")
	assert.Equal(t, "Income", txns[0]["category"], "income carries the sentinel category")
}

func TestCreateTransactionValidationErrors(t *testing.T) {
	srv := newTestServer(t)
	adminToken, _ := register(t, srv, adminEmail)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", adminToken, map[string]string{
		"description": "   ",
		"amount":      "10",
		"kind":        "expense",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/transactions", adminToken, map[string]string{
		"description": "x",
		"amount":      "-1",
		"kind":        "expense",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNonOwnerMutationForbidden(t *testing.T) {
	srv := newTestServer(t)
	adminToken, _ := register(t, srv, adminEmail)

	_, aliceID := register(t, srv, "alice@example.com")
	_, bobID := register(t, srv, "bob@example.com")
	for _, id := range []int64{aliceID, bobID} {
		resp, _ := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/admin/users/%d/approve", srv.URL, id), adminToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	aliceToken := login(t, srv, "alice@example.com")
	bobToken := login(t, srv, "bob@example.com")

	created := createTransaction(t, srv, aliceToken, "expense", "Food", "30", "alice's lunch")
	txnID := int64(created["id"].(float64))

	// Bob may read Alice's records (shared visibility)...
	resp, body := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/summary/totals?owner_id=%d", srv.URL, aliceID), bobToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "30", body["expenses"])

	// ...but never edit or delete them.
	resp, _ = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/transactions/%d", srv.URL, txnID), bobToken, map[string]string{
		"description": "hijacked",
		"amount":      "1",
		"kind":        "expense",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/transactions/%d", srv.URL, txnID), bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The record is untouched afterwards.
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/summary/totals", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "30", body["expenses"])
}

func TestAdminOnlyUserManagement(t *testing.T) {
	srv := newTestServer(t)
	adminToken, adminID := register(t, srv, adminEmail)

	_, aliceID := register(t, srv, "alice@example.com")
	resp, _ := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/admin/users/%d/approve", srv.URL, aliceID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	aliceToken := login(t, srv, "alice@example.com")

	// Approved but non-admin: every admin route is forbidden.
	resp, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/admin/users/%d/approve", srv.URL, aliceID), aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/admin/users/%d", srv.URL, adminID), aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admins cannot remove their own account.
	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/admin/users/%d", srv.URL, adminID), adminToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Removing another user cascades: their login stops working.
	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/admin/users/%d", srv.URL, aliceID), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRejectUserGuards(t *testing.T) {
	srv := newTestServer(t)
	adminToken, adminID := register(t, srv, adminEmail)

	// Rejecting your own account fails like removing it would.
	resp, _ := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/admin/users/%d/reject", srv.URL, adminID), adminToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.NotEmpty(t, login(t, srv, adminEmail), "admin account survives a self-reject attempt")

	// Approved accounts go through the remove route, not reject.
	_, aliceID := register(t, srv, "alice@example.com")
	resp, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/admin/users/%d/approve", srv.URL, aliceID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/admin/users/%d/reject", srv.URL, aliceID), adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, login(t, srv, "alice@example.com"), "approved account survives a reject attempt")

	// Pending accounts are what reject is for.
	_, bobID := register(t, srv, "bob@example.com")
	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/admin/users/%d/reject", srv.URL, bobID), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/login", "", map[string]string{
		"email":    "bob@example.com",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateUserDuplicateEmailConflicts(t *testing.T) {
	srv := newTestServer(t)
	adminToken, _ := register(t, srv, adminEmail)

	_, aliceID := register(t, srv, "alice@example.com")
	resp, _ := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/admin/users/%d/approve", srv.URL, aliceID), adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	aliceToken := login(t, srv, "alice@example.com")

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/user", aliceToken, map[string]string{
		"email":        adminEmail,
		"display_name": "Alice",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// The original email still works.
	assert.NotEmpty(t, login(t, srv, "alice@example.com"))
}

func TestListCategories(t *testing.T) {
	srv := newTestServer(t)
	adminToken, _ := register(t, srv, adminEmail)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/categories", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var categories []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&categories))
	assert.Contains(t, categories, "Food")
	assert.Contains(t, categories, "General")
}

func TestDeleteTransactionTwiceFails(t *testing.T) {
	srv := newTestServer(t)
	adminToken, _ := register(t, srv, adminEmail)

	created := createTransaction(t, srv, adminToken, "expense", "Food", "10", "x")
	txnID := int64(created["id"].(float64))

	resp, _ := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/transactions/%d", srv.URL, txnID), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/transactions/%d", srv.URL, txnID), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
