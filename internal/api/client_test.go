package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petresgate/feedcore/domain"
)

type stubSession struct {
	token  string
	userID int64
}

func (s stubSession) Token() (string, error) { return s.token, nil }

func (s stubSession) UserID() (int64, error) {
	if s.userID == 0 {
		return 0, domain.ErrNoUser
	}
	return s.userID, nil
}

func TestFetchDecodesCollectionAndSendsToken(t *testing.T) {
	pubs := []domain.Publication{
		{ID: 1, Description: "lost dog", Status: "lost", CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		{ID: 2, Description: "kitten", Status: "for adoption", CreatedAt: time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/publications", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(pubs)
	}))
	defer server.Close()

	c := NewClient(server.URL, stubSession{token: "tok-123"}, 0)
	res, err := c.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.EqualValues(t, 1, res[0].ID)
	assert.True(t, res[0].CreatedAt.Equal(pubs[0].CreatedAt))
}

func TestStatusQueryCarriesUserID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/publications/42/likes", r.URL.Path)
		assert.Equal(t, "9", r.URL.Query().Get("userId"))
		_, _ = w.Write([]byte(`{"liked":true}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, 0)
	liked, err := c.Status(context.Background(), 42, 9)

	require.NoError(t, err)
	assert.True(t, liked)
}

func TestToggleTreats200And201AsSuccess(t *testing.T) {
	for _, code := range []int{http.StatusOK, http.StatusCreated} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/publications/like", r.URL.Path)
			var body map[string]int64
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.EqualValues(t, 42, body["publicationId"])
			assert.EqualValues(t, 9, body["userId"])
			w.WriteHeader(code)
		}))

		c := NewClient(server.URL, nil, 0)
		assert.NoError(t, c.Toggle(context.Background(), 42, 9), "status %d must count as success", code)
		server.Close()
	}
}

func TestNonSuccessStatusSurfacesVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, 0)
	_, err := c.Fetch(context.Background())

	var se *domain.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.True(t, domain.IsFetchError(err))
}

func TestTimeoutAbortsRequest(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	c := NewClient(server.URL, nil, 50*time.Millisecond)
	start := time.Now()
	_, err := c.Fetch(context.Background())

	require.ErrorIs(t, err, domain.ErrTimeout)
	assert.True(t, domain.IsFetchError(err))
	assert.Less(t, time.Since(start), time.Second, "the in-flight request must be cancelled, not awaited")
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient(url, nil, 0)
	_, err := c.Fetch(context.Background())

	require.ErrorIs(t, err, domain.ErrNetwork)
	assert.True(t, domain.IsFetchError(err))
}

func TestCreateValidatesBeforeAnyNetworkCall(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var np domain.NewPublication
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&np))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(domain.Publication{ID: 10, Description: np.Description})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, 0)

	_, err := c.Create(context.Background(), &domain.NewPublication{
		Description: "no images",
		Status:      "lost",
		UserID:      9,
	})
	require.ErrorIs(t, err, domain.ErrBadParamInput)
	assert.Zero(t, hits.Load(), "an invalid payload must never be submitted")

	_, err = c.Create(context.Background(), &domain.NewPublication{
		Description: "five images",
		Images:      []string{"a", "b", "c", "d", "e"},
		Status:      "lost",
		UserID:      9,
	})
	require.ErrorIs(t, err, domain.ErrBadParamInput, "more than 4 images is rejected")
	assert.Zero(t, hits.Load())

	stored, err := c.Create(context.Background(), &domain.NewPublication{
		Description: "valid",
		Images:      []string{"https://cdn.example/1.jpg"},
		Status:      "lost",
		UserID:      9,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 10, stored.ID)
	assert.EqualValues(t, 1, hits.Load())
}

func TestConcurrentProfileFetchesShareOneRoundTrip(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(domain.User{ID: 7, Name: "Maria Souza"})
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := c.GetByID(context.Background(), 7)
			assert.NoError(t, err)
			assert.Equal(t, "Maria Souza", u.Name)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, hits.Load(), "a feed full of one author needs one profile fetch")
}
