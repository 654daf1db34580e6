package stub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petresgate/feedcore/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func seededRouter() (*gin.Engine, *Store) {
	store := NewStore()
	store.AddUser(domain.User{ID: 1, Name: "Ana Lima", Email: "ana@example.com"})
	store.AddPublication(domain.Publication{
		Description: "black labrador last seen downtown",
		Images:      []string{"https://cdn.example/1.jpg"},
		Status:      "lost",
		Location:    "Marilia",
		CreatedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		User:        domain.User{ID: 1},
	})
	store.AddPublication(domain.Publication{
		Description: "tabby kitten looking for a home",
		Images:      []string{"https://cdn.example/2.jpg"},
		Status:      "for adoption",
		Location:    "Bauru",
		CreatedAt:   time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC),
		User:        domain.User{ID: 1},
	})
	return NewRouter(store), store
}

func doJSON(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListReturnsCollection(t *testing.T) {
	router, _ := seededRouter()

	w := doJSON(router, http.MethodGet, "/publications", "")

	require.Equal(t, http.StatusOK, w.Code)
	var pubs []domain.Publication
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pubs))
	assert.Len(t, pubs, 2)
}

func TestSearchFiltersByFreeText(t *testing.T) {
	router, _ := seededRouter()

	w := doJSON(router, http.MethodGet, "/publications/search?q=adoption", "")

	require.Equal(t, http.StatusOK, w.Code)
	var pubs []domain.Publication
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pubs))
	require.Len(t, pubs, 1)
	assert.Equal(t, "for adoption", pubs[0].Status)
}

func TestSearchWithoutMatchesReturnsEmptyArray(t *testing.T) {
	router, _ := seededRouter()

	w := doJSON(router, http.MethodGet, "/publications/search?q=iguana", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestLikeToggleFlowMirrorsCount(t *testing.T) {
	router, store := seededRouter()
	body := `{"publicationId":1,"userId":9}`

	w := doJSON(router, http.MethodPost, "/publications/like", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"liked":true}`, w.Body.String())

	w = doJSON(router, http.MethodGet, "/publications/1/likes?userId=9", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"liked":true}`, w.Body.String())

	liked, err := store.Liked(1, 9)
	require.NoError(t, err)
	assert.True(t, liked)

	w = doJSON(router, http.MethodPost, "/publications/like", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"liked":false}`, w.Body.String())

	pubs := store.List()
	for _, p := range pubs {
		assert.Zero(t, p.LikeCount, "toggle pairs must cancel out")
	}
}

func TestLikeUnknownPublicationIs404(t *testing.T) {
	router, _ := seededRouter()

	w := doJSON(router, http.MethodPost, "/publications/like", `{"publicationId":99,"userId":9}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodGet, "/publications/99/likes?userId=9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRejectsMissingImages(t *testing.T) {
	router, _ := seededRouter()

	w := doJSON(router, http.MethodPost, "/publications",
		`{"description":"no images","status":"lost","userId":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/publications",
		`{"description":"too many","status":"lost","userId":1,"images":["a","b","c","d","e"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateStoresAndDenormalizesAuthor(t *testing.T) {
	router, _ := seededRouter()

	w := doJSON(router, http.MethodPost, "/publications",
		`{"description":"parrot found","status":"found","location":"Marilia","userId":1,"images":["https://cdn.example/3.jpg"]}`)

	require.Equal(t, http.StatusCreated, w.Code)
	var p domain.Publication
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.NotZero(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, "Ana Lima", p.User.Name)
}

func TestGetUser(t *testing.T) {
	router, _ := seededRouter()

	w := doJSON(router, http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var u domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	assert.Equal(t, "Ana Lima", u.Name)

	w = doJSON(router, http.MethodGet, "/users/99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
