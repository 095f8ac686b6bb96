package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lokomotiv_server_go/export"
	"lokomotiv_server_go/models"
)

type recorded struct {
	method string
	path   string
	query  url.Values
	auth   string
	body   map[string]any
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recorded
	handler  http.HandlerFunc
}

func newFakeAPI(t *testing.T, h http.HandlerFunc) (*fakeAPI, *Client) {
	t.Helper()
	f := &fakeAPI{handler: h}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.Query(), auth: r.Header.Get("Authorization")}
		if r.Body != nil && r.ContentLength != 0 {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		f.mu.Lock()
		f.requests = append(f.requests, rec)
		f.mu.Unlock()
		f.handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return f, New(srv.URL, 5*time.Second)
}

func (f *fakeAPI) all() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recorded(nil), f.requests...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLoginStoresToken(t *testing.T) {
	api, c := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			writeJSON(w, http.StatusOK, models.AuthResponse{Token: "tok-1", User: models.UserPublicInfo{ID: 1, Username: "admin"}})
		case "/api/auth/me":
			writeJSON(w, http.StatusOK, models.UserPublicInfo{ID: 1, Username: "admin", Permissions: []string{"users.view"}})
		}
	})

	resp, err := c.Login(context.Background(), "admin", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", resp.Token)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"users.view"}, me.Permissions)

	require.Len(t, api.all(), 2)
	assert.Equal(t, "admin", api.all()[0].body["username"])
	assert.Equal(t, "Bearer tok-1", api.all()[1].auth)
}

func TestAPIError(t *testing.T) {
	_, c := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "Formadagi xatolarni tuzating",
			"fields": map[string]string{"number": "Majburiy maydon"},
		})
	})

	_, err := c.Locomotives().Create(context.Background(), &models.LocomotiveInput{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "Formadagi xatolarni tuzating", apiErr.Message)
	assert.Equal(t, "Majburiy maydon", apiErr.Fields["number"])
}

func TestListSendsFilters(t *testing.T) {
	api, c := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"items":      []models.Inspection{{ID: 7, Kind: "TO-2"}},
			"totalItems": 1, "totalPages": 1, "page": 2, "pageSize": 10,
			"actions": []map[string]bool{{"edit": true, "delete": false}},
		})
	})

	page, err := c.Inspections().List(context.Background(), url.Values{"tab": {"overdue"}, "page": {"2"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(7), page.Items[0].ID)
	assert.True(t, page.Actions[0].Edit)
	assert.Equal(t, "/api/inspections", api.all()[0].path)
	assert.Equal(t, "overdue", api.all()[0].query.Get("tab"))
	assert.Equal(t, "2", api.all()[0].query.Get("page"))
}

func TestBulkDelete(t *testing.T) {
	api, c := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Tanlangan yozuvlar muvaffaqiyatli o'chirildi"})
	})
	msg, err := c.Delays().BulkDelete(context.Background(), []int64{3, 4})
	require.NoError(t, err)
	assert.NotEmpty(t, msg)
	assert.Equal(t, "/api/delays/bulk-delete", api.all()[0].path)
	assert.Equal(t, []any{float64(3), float64(4)}, api.all()[0].body["ids"])
}

func TestDeleteElementsSendsRemaining(t *testing.T) {
	tests := []struct {
		name     string
		elements []models.ClassificatorElement
		remove   []string
		want     []any
	}{
		{
			name:     "last element",
			elements: []models.ClassificatorElement{{ID: "1", Name: "A"}},
			remove:   []string{"1"},
			want:     []any{},
		},
		{
			name:     "one of two",
			elements: []models.ClassificatorElement{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}},
			remove:   []string{"1"},
			want:     []any{map[string]any{"id": "2", "name": "B"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, c := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
				cl := models.Classificator{ID: 5, Name: "Sabablar", Elements: tt.elements}
				if r.Method == http.MethodPut {
					writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "data": cl})
					return
				}
				writeJSON(w, http.StatusOK, cl)
			})

			msg, err := c.Classificators().DeleteElements(context.Background(), 5, tt.remove)
			require.NoError(t, err)
			assert.Equal(t, "Elementlar muvaffaqiyatli o'chirildi", msg)

			require.Len(t, api.all(), 2)
			put := api.all()[1]
			assert.Equal(t, http.MethodPut, put.method)
			assert.Equal(t, "/api/classificators/5", put.path)
			assert.Equal(t, "Sabablar", put.body["name"])
			assert.Equal(t, tt.want, put.body["elements"])
		})
	}
}

func TestDeleteElementsStopsOnLoadError(t *testing.T) {
	api, c := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Yozuv topilmadi"})
	})
	_, err := c.Classificators().DeleteElements(context.Background(), 5, []string{"1"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Len(t, api.all(), 1)
}

func TestExport(t *testing.T) {
	api, c := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.ms-excel")
		w.Header().Set("Content-Disposition", `attachment; filename="locomotives_2024-05-10.xls"`)
		_, _ = w.Write([]byte("<html></html>"))
	})
	body, name, err := c.Locomotives().Export(context.Background(), url.Values{"status": {"repair"}}, export.FormatXls)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(body))
	assert.Equal(t, "locomotives_2024-05-10.xls", name)
	assert.Equal(t, "xls", api.all()[0].query.Get("format"))
	assert.Equal(t, "repair", api.all()[0].query.Get("status"))
}
