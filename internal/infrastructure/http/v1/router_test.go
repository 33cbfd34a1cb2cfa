package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "cgl/internal/core/context"
	"cgl/internal/core/id"
	"cgl/internal/domain/book"
	"cgl/internal/domain/chapter"
	"cgl/internal/domain/domaintest"
	"cgl/internal/domain/record"
	"cgl/internal/infrastructure/metrics"
	"cgl/pkg/logger"
)

type bookRepo struct {
	*domaintest.MemRepo[*book.Book]
}

func (r bookRepo) SlugExists(_ context.Context, slug string, excludeID id.ID) (bool, error) {
	for _, b := range r.All() {
		if b.Slug == slug && b.ID != excludeID && !b.DeletionMark {
			return true, nil
		}
	}
	return false, nil
}

type chapterRepo struct {
	*domaintest.MemRepo[*chapter.Chapter]
}

func (r chapterRepo) SlugExists(_ context.Context, bookID id.ID, slug string, excludeID id.ID) (bool, error) {
	for _, c := range r.All() {
		if c.BookID == bookID && c.Slug == slug && c.ID != excludeID && !c.DeletionMark {
			return true, nil
		}
	}
	return false, nil
}

type plainConverter struct{}

func (plainConverter) ConvertHTML(html string) (string, error) {
	s := strings.ReplaceAll(html, "<p>", "")
	return strings.ReplaceAll(s, "</p>", ""), nil
}

// tokenValidator accepts the fixed tokens "admin" and "reader".
type tokenValidator struct{}

func (tokenValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	switch token {
	case "admin":
		return &appctx.UserContext{UserID: id.New().String(), UserType: "ADMIN", IsAdmin: true}, nil
	case "reader":
		return &appctx.UserContext{UserID: id.New().String(), UserType: "USER"}, nil
	}
	return nil, errors.New("unknown token")
}

type apiFixture struct {
	router  *gin.Engine
	metrics *metrics.Metrics
	pub     *domaintest.Publisher
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	books := bookRepo{domaintest.NewMemRepo[*book.Book]()}
	chapters := chapterRepo{domaintest.NewMemRepo[*chapter.Chapter]()}
	records := domaintest.NewMemRepo[*record.Record]()
	pub := &domaintest.Publisher{}
	txm := domaintest.PassthroughTx{}

	m := metrics.New(nil)
	router := NewRouter(RouterConfig{
		Logger:         logger.NewNop(),
		JWTValidator:   tokenValidator{},
		BookService:    book.NewService(books, txm, domaintest.NewScanAssigner(books), pub),
		ChapterService: chapter.NewService(chapters, books, txm, domaintest.NewScanAssigner(chapters), pub, plainConverter{}),
		RecordService:  record.NewService(records, books, chapters, txm, domaintest.NewScanAssigner(records), pub),
		Metrics:        m,
		Version:        "test",
	})
	return &apiFixture{router: router, metrics: m, pub: pub}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	OK         bool            `json:"ok"`
	Data       json.RawMessage `json:"data"`
	TotalCount int64           `json:"totalCount"`
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

type item struct {
	ID            string `json:"id"`
	VisibleNumber string `json:"visibleNumber"`
	Title         string `json:"title"`
	RecordKey     int64  `json:"recordKey"`
	ChapterID     string `json:"chapterId"`
}

func decodeItem(t *testing.T, w *httptest.ResponseRecorder) item {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.OK)
	var it item
	require.NoError(t, json.Unmarshal(env.Data, &it))
	return it
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (f *apiFixture) createBook(t *testing.T, title string) item {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/books", "admin", map[string]any{"title": title})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeItem(t, w)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouter_Health(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CGL Backend")

	w = f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = f.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cgl_http_requests_total")
}

func TestRouter_RequiresToken(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/books", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, w).Code)

	w = f.do(t, http.MethodGet, "/api/books", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_BooksAreNumberedInSteps(t *testing.T) {
	f := newAPIFixture(t)

	first := f.createBook(t, "Electrical")
	second := f.createBook(t, "Plumbing")
	assert.Equal(t, "000.00", first.VisibleNumber)
	assert.Equal(t, "005.00", second.VisibleNumber)

	w := f.do(t, http.MethodGet, "/api/books", "reader", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.OK)
	assert.EqualValues(t, 2, env.TotalCount)

	var items []item
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Electrical", items[0].Title)
	assert.Equal(t, "Plumbing", items[1].Title)

	assert.Len(t, f.pub.Events, 2)
}

func TestRouter_ListRange(t *testing.T) {
	f := newAPIFixture(t)
	for _, title := range []string{"A", "B", "C"} {
		f.createBook(t, title)
	}

	w := f.do(t, http.MethodGet, "/api/books?from=5&to=10", "reader", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var items []item
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 2)
	assert.Equal(t, "005.00", items[0].VisibleNumber)
	assert.Equal(t, "010.00", items[1].VisibleNumber)

	w = f.do(t, http.MethodGet, "/api/books?from=abc", "reader", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Code)
}

func TestRouter_ExplicitNumberConflict(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/api/books", "admin", map[string]any{"title": "Gas", "visibleNumber": "7.50"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "007.50", decodeItem(t, w).VisibleNumber)

	w = f.do(t, http.MethodPost, "/api/books", "admin", map[string]any{"title": "Gas again", "visibleNumber": "007.50"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", decodeError(t, w).Code)

	w = f.do(t, http.MethodPost, "/api/books", "admin", map[string]any{"title": "Bad", "visibleNumber": "7.555"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_DeleteNeedsAdmin(t *testing.T) {
	f := newAPIFixture(t)
	b := f.createBook(t, "Heating")

	w := f.do(t, http.MethodDelete, "/api/books/"+b.ID, "reader", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decodeError(t, w).Code)

	w = f.do(t, http.MethodDelete, "/api/books/"+b.ID, "admin", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/api/books/"+b.ID, "admin", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The number of a deleted book is never handed out again.
	next := f.createBook(t, "Ventilation")
	assert.Equal(t, "005.00", next.VisibleNumber)
}

func TestRouter_BadPathID(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/books/not-a-uuid", "reader", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_ChapterMarkdown(t *testing.T) {
	f := newAPIFixture(t)
	b := f.createBook(t, "Electrical")

	w := f.do(t, http.MethodPost, "/api/books/"+b.ID+"/chapters", "admin", map[string]any{
		"title":       "Scope",
		"contentHtml": "<p>Applies to all rooms.</p>",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ch := decodeItem(t, w)
	assert.Equal(t, "000.00", ch.VisibleNumber)

	w = f.do(t, http.MethodGet, "/api/books/"+b.ID+"/chapters/"+ch.ID+"/markdown", "reader", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "# 000.00 Scope")
	assert.Contains(t, w.Body.String(), "Applies to all rooms.")

	w = f.do(t, http.MethodGet, "/api/books/"+id.New().String()+"/chapters", "reader", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Records(t *testing.T) {
	f := newAPIFixture(t)
	b := f.createBook(t, "Electrical")

	w := f.do(t, http.MethodPost, "/api/books/"+b.ID+"/chapters", "admin", map[string]any{"title": "Wiring"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ch := decodeItem(t, w)

	var got []item
	for _i := 0; _i < 2; _i++ {
		w = f.do(t, http.MethodPost, "/api/books/"+b.ID+"/records", "admin", map[string]any{
			"content":   "Use copper",
			"chapterId": ch.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		got = append(got, decodeItem(t, w))
	}
	assert.Equal(t, "000.00", got[0].VisibleNumber)
	assert.Equal(t, "010.00", got[1].VisibleNumber)
	assert.EqualValues(t, 1000, got[1].RecordKey)
	assert.Equal(t, ch.ID, got[1].ChapterID)

	w = f.do(t, http.MethodGet, "/api/books/"+b.ID+"/records?chapterId="+ch.ID, "reader", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.EqualValues(t, 2, env.TotalCount)

	// Chapters of another book cannot be linked.
	other := f.createBook(t, "Plumbing")
	w = f.do(t, http.MethodPost, "/api/books/"+other.ID+"/records", "admin", map[string]any{
		"content":   "Wrong book",
		"chapterId": ch.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "chapter belongs to another book", decodeError(t, w).Message)
}
