package anime

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"animespotlight/pkg/models"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *Repo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := setupTestRepo(t)
	handler := NewHandler(repo, nil)

	router := gin.New()
	handler.RegisterRoutes(router.Group("/animes"))
	return router, repo
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListEndpoint(t *testing.T) {
	router, repo := setupTestRouter(t)
	ctx := context.Background()
	repo.Create(ctx, sampleFields())

	w := doRequest(t, router, http.MethodGet, "/animes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Animes []models.Anime `json:"animes"`
		Count  int            `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Animes) != 1 {
		t.Errorf("expected 1 entry, got count=%d len=%d", resp.Count, len(resp.Animes))
	}
	if resp.Animes[0].Title != "Cowboy Bebop" {
		t.Errorf("unexpected title: %q", resp.Animes[0].Title)
	}
}

func TestListEndpoint_Empty(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/animes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Animes []models.Anime `json:"animes"`
		Count  int            `json:"count"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 0 || resp.Animes == nil {
		t.Errorf("expected an empty array, got %s", w.Body.String())
	}
}

func TestCreateEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/animes", sampleFields())
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Anime models.Anime `json:"anime"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Anime.ID == 0 {
		t.Error("expected a non-zero id in the response")
	}
	if resp.Anime.Title != "Cowboy Bebop" {
		t.Errorf("unexpected title: %q", resp.Anime.Title)
	}
}

func TestCreateEndpoint_ValidationError(t *testing.T) {
	router, _ := setupTestRouter(t)

	f := sampleFields()
	f.Title = ""
	f.Categories = []string{}

	w := doRequest(t, router, http.MethodPost, "/animes", f)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Error  string `json:"error"`
		Fields map[string]struct {
			Message string `json:"message"`
			General string `json:"general"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "validation failed" {
		t.Errorf("unexpected error message: %q", resp.Error)
	}
	if resp.Fields["title"].Message != "must not be empty" {
		t.Errorf("unexpected title error: %+v", resp.Fields["title"])
	}
	if resp.Fields["categories"].General != "must contain at least one category" {
		t.Errorf("unexpected categories error: %+v", resp.Fields["categories"])
	}
}

func TestCreateEndpoint_InvalidJSON(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/animes", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGetByIDEndpoint(t *testing.T) {
	router, repo := setupTestRouter(t)
	ctx := context.Background()
	created, _ := repo.Create(ctx, sampleFields())

	w := doRequest(t, router, http.MethodGet, "/animes/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Anime models.Anime `json:"anime"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Anime.ID != created.ID {
		t.Errorf("expected id %d, got %d", created.ID, resp.Anime.ID)
	}
}

func TestGetByIDEndpoint_NotFound(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(t, router, http.MethodGet, "/animes/999", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestGetByIDEndpoint_BadID(t *testing.T) {
	router, _ := setupTestRouter(t)

	for _, path := range []string{"/animes/abc", "/animes/0", "/animes/-1"} {
		w := doRequest(t, router, http.MethodGet, path, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestUpdateEndpoint(t *testing.T) {
	router, repo := setupTestRouter(t)
	ctx := context.Background()
	created, _ := repo.Create(ctx, sampleFields())

	f := sampleFields()
	f.Title = "Cowboy Bebop (remastered)"

	w := doRequest(t, router, http.MethodPut, "/animes/1", f)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	got, _ := repo.GetByID(ctx, created.ID)
	if got.Title != "Cowboy Bebop (remastered)" {
		t.Errorf("update not persisted, title: %q", got.Title)
	}
}

func TestUpdateEndpoint_NotFound(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doRequest(t, router, http.MethodPut, "/animes/999", sampleFields())
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestUpdateEndpoint_ValidationError(t *testing.T) {
	router, repo := setupTestRouter(t)
	ctx := context.Background()
	created, _ := repo.Create(ctx, sampleFields())

	f := sampleFields()
	f.Status = models.StatusUpcoming // rating must now be empty

	w := doRequest(t, router, http.MethodPut, "/animes/1", f)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	// The stored entry is untouched.
	got, _ := repo.GetByID(ctx, created.ID)
	if got.Status != models.StatusFinished {
		t.Errorf("rejected update modified the entry: %+v", got)
	}
}

func TestDeleteEndpoint(t *testing.T) {
	router, repo := setupTestRouter(t)
	ctx := context.Background()
	created, _ := repo.Create(ctx, sampleFields())

	w := doRequest(t, router, http.MethodDelete, "/animes/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	got, _ := repo.GetByID(ctx, created.ID)
	if got != nil {
		t.Error("entry still present after delete")
	}

	w = doRequest(t, router, http.MethodDelete, "/animes/1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", w.Code)
	}
}
