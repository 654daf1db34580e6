package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/petresgate/feedcore/domain"
)

// DefaultTimeout bounds every request; an expired deadline aborts the
// in-flight request and surfaces as domain.ErrTimeout.
const DefaultTimeout = 10 * time.Second

// Client talks to the remote pet-feed service. It implements the
// domain service contracts consumed by the controllers.
type Client struct {
	baseURL string
	httpCli *http.Client
	session domain.SessionStore
	timeout time.Duration

	validate *validator.Validate

	// profiles of the same author are requested once, not per feed item
	profileGroup singleflight.Group
}

var (
	_ domain.PublicationService = (*Client)(nil)
	_ domain.LikeService        = (*Client)(nil)
	_ domain.ProfileService     = (*Client)(nil)
)

// NewClient creates a client for the service at baseURL. session may be
// nil for unauthenticated use; timeout <= 0 selects DefaultTimeout.
func NewClient(baseURL string, session domain.SessionStore, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:  baseURL,
		httpCli:  &http.Client{},
		session:  session,
		timeout:  timeout,
		validate: validator.New(),
	}
}

// Fetch retrieves the full publication collection.
func (c *Client) Fetch(ctx context.Context) ([]domain.Publication, error) {
	var res []domain.Publication
	if err := c.do(ctx, http.MethodGet, "/publications", nil, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Search retrieves publications matching the free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Publication, error) {
	q := url.Values{}
	q.Set("q", query)
	var res []domain.Publication
	if err := c.do(ctx, http.MethodGet, "/publications/search", q, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Create validates and submits a new publication. Validation failures
// never reach the network.
func (c *Client) Create(ctx context.Context, p *domain.NewPublication) (domain.Publication, error) {
	if err := c.validate.Struct(p); err != nil {
		return domain.Publication{}, fmt.Errorf("%w: %v", domain.ErrBadParamInput, err)
	}
	var res domain.Publication
	if err := c.do(ctx, http.MethodPost, "/publications", nil, p, &res); err != nil {
		return domain.Publication{}, err
	}
	return res, nil
}

// Status reports whether userID has liked publicationID.
func (c *Client) Status(ctx context.Context, publicationID, userID int64) (bool, error) {
	q := url.Values{}
	q.Set("userId", strconv.FormatInt(userID, 10))
	path := fmt.Sprintf("/publications/%d/likes", publicationID)
	var res domain.LikeStatus
	if err := c.do(ctx, http.MethodGet, path, q, nil, &res); err != nil {
		return false, err
	}
	return res.Liked, nil
}

// Toggle flips the like record on the server. 200 and 201 both count
// as success.
func (c *Client) Toggle(ctx context.Context, publicationID, userID int64) error {
	body := map[string]int64{
		"publicationId": publicationID,
		"userId":        userID,
	}
	return c.do(ctx, http.MethodPost, "/publications/like", nil, body, nil)
}

// GetByID retrieves a user profile. Concurrent requests for the same
// id share one round trip.
func (c *Client) GetByID(ctx context.Context, id int64) (domain.User, error) {
	key := strconv.FormatInt(id, 10)
	v, err, _ := c.profileGroup.Do(key, func() (interface{}, error) {
		var res domain.User
		if err := c.do(ctx, http.MethodGet, "/users/"+key, nil, nil, &res); err != nil {
			return domain.User{}, err
		}
		return res, nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return v.(domain.User), nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != nil {
		if token, err := c.session.Token(); err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logrus.Warnf("%s %s timed out after %s", method, path, c.timeout)
			return domain.ErrTimeout
		}
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		logrus.Warnf("%s %s returned status %d", method, path, resp.StatusCode)
		return &domain.StatusError{Code: resp.StatusCode}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
