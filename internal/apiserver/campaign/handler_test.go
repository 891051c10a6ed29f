package campaign

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/apiserver/auth"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/model"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/storage"
)

// asRole 在 context 中注入指定角色的身份，替代真实认证
func asRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if role := r.Header.Get("X-Test-Role"); role != "" {
			id := &auth.Identity{UserID: "user-" + role, Role: model.UserRole(role)}
			r = r.WithContext(auth.WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func newTestHandler(t *testing.T) (http.Handler, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	mux := http.NewServeMux()
	NewHandler(store).RegisterRoutes(mux)
	return asRole(mux), store
}

func do(t *testing.T, h http.Handler, method, path, role string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createBody(name, platform, start string) map[string]interface{} {
	return map[string]interface{}{
		"name":          name,
		"platform":      platform,
		"budget_amount": 150.456,
		"start_date":    start,
		"keywords":      []string{"shoes", "sale"},
	}
}

func TestCreateAndGet(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/v1/campaigns", "manager", createBody("Spring Sale", "google_ads", "2026-03-01"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var c model.Campaign
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, model.CampaignStatusDraft, c.Status)
	assert.Equal(t, model.BudgetTypeDaily, c.BudgetType)
	assert.Equal(t, 150.46, c.BudgetAmount)
	assert.Equal(t, "user-manager", c.OwnerID)
	assert.Equal(t, []string{"shoes", "sale"}, c.Keywords)

	rec = do(t, h, http.MethodGet, "/api/v1/campaigns/"+c.ID, "viewer", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/campaigns/missing", "viewer", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateValidation(t *testing.T) {
	h, store := newTestHandler(t)

	bad := []map[string]interface{}{
		createBody("ab", "google_ads", "2026-03-01"),
		createBody("Valid Name", "myspace_ads", "2026-03-01"),
		createBody("Valid Name", "meta_ads", "yesterday"),
	}
	zeroBudget := createBody("Valid Name", "meta_ads", "2026-03-01")
	zeroBudget["budget_amount"] = 0
	endBefore := createBody("Valid Name", "meta_ads", "2026-03-10")
	endBefore["end_date"] = "2026-03-01"
	bad = append(bad, zeroBudget, endBefore)

	for _, body := range bad {
		rec := do(t, h, http.MethodPost, "/api/v1/campaigns", "admin", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	}
	assert.Zero(t, store.Writes())
}

func TestRoleGuards(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/v1/campaigns", "viewer", createBody("Viewer Try", "meta_ads", "2026-03-01"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/campaigns", "analyst", createBody("Analyst Try", "meta_ads", "2026-03-01"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/campaigns", "", createBody("Anon Try", "meta_ads", "2026-03-01"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/campaigns", "manager", createBody("Managed", "meta_ads", "2026-03-01"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var c model.Campaign
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))

	rec = do(t, h, http.MethodDelete, "/api/v1/campaigns/"+c.ID, "manager", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/campaigns/"+c.ID, "admin", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/campaigns/"+c.ID, "admin", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePauseActivate(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/v1/campaigns", "admin", createBody("Launch", "tiktok_ads", "2026-04-01"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var c model.Campaign
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))

	rec = do(t, h, http.MethodPut, "/api/v1/campaigns/"+c.ID, "manager", map[string]interface{}{
		"name": "Launch v2", "budget_amount": 99.999, "end_date": "2026-05-01",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated model.Campaign
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Launch v2", updated.Name)
	assert.Equal(t, 100.0, updated.BudgetAmount)
	require.NotNil(t, updated.EndDate)
	assert.Equal(t, c.OwnerID, updated.OwnerID)

	rec = do(t, h, http.MethodPut, "/api/v1/campaigns/"+c.ID, "manager", map[string]interface{}{"end_date": "2026-01-01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/v1/campaigns/"+c.ID, "manager", map[string]interface{}{"status": "deleted"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/campaigns/"+c.ID+"/activate", "manager", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"active"`)

	rec = do(t, h, http.MethodPost, "/api/v1/campaigns/"+c.ID+"/pause", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"paused"`)

	rec = do(t, h, http.MethodPost, "/api/v1/campaigns/missing/pause", "admin", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/v1/campaigns/missing", "admin", map[string]interface{}{"name": "Nope nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListFilters(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, b := range []map[string]interface{}{
		createBody("Google Jan", "google_ads", "2026-01-10"),
		createBody("Meta Feb", "meta_ads", "2026-02-10"),
		createBody("Meta Mar", "meta_ads", "2026-03-10"),
	} {
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/v1/campaigns", "admin", b).Code)
	}

	list := func(query string) []model.Campaign {
		rec := do(t, h, http.MethodGet, "/api/v1/campaigns"+query, "viewer", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var out []model.Campaign
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return out
	}

	all := list("")
	require.Len(t, all, 3)
	assert.Equal(t, "Meta Mar", all[0].Name, "newest start date first")

	assert.Len(t, list("?platform=meta_ads"), 2)
	assert.Len(t, list("?start_from=2026-02-01"), 2)
	assert.Len(t, list("?start_date_from=2026-02-01&start_date_to=2026-02-28"), 1)
	assert.Len(t, list("?limit=1&skip=1"), 1)
	assert.Empty(t, list("?status=active"))

	for _, q := range []string{"?status=bogus", "?platform=x", "?limit=0", "?limit=101", "?skip=-1", "?start_from=soon"} {
		rec := do(t, h, http.MethodGet, "/api/v1/campaigns"+q, "viewer", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}
