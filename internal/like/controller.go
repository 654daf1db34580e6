package like

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/petresgate/feedcore/domain"
)

// DefaultDoubleTapWindow is the interval two taps must fall within to
// count as a double tap. An isolated tap navigates after the window
// elapses, which is the observable input latency of the gesture.
const DefaultDoubleTapWindow = 300 * time.Millisecond

const toggleQueueSize = 16

// Presenter is the external UI layer the controller drives. Both
// callbacks may arrive from timer or worker goroutines.
type Presenter interface {
	// Navigate opens the publication detail screen.
	Navigate(publicationID int64)

	// ShowHeart plays the transient heart acknowledgment. It fires on
	// the optimistic update, never on server confirmation; that timing
	// is what makes the gesture feel immediate.
	ShowHeart(publicationID int64)
}

// Config tunes one controller instance.
type Config struct {
	// DoubleTapWindow overrides DefaultDoubleTapWindow when positive.
	DoubleTapWindow time.Duration

	// RevertOnFailure undoes the optimistic flip when the remote
	// toggle fails. Off reproduces the original app, which kept the
	// optimistic state and only logged the failure.
	RevertOnFailure bool

	// OnError receives toggle sync failures. Optional.
	OnError func(publicationID int64, err error)
}

// DefaultConfig enables revert-on-failure with the standard window.
func DefaultConfig() Config {
	return Config{
		DoubleTapWindow: DefaultDoubleTapWindow,
		RevertOnFailure: true,
	}
}

type toggleRequest struct {
	userID int64
}

// Controller owns the like state of one rendered publication: gesture
// disambiguation, the optimistic flip, and reconciliation with the
// remote service. Construct one per list item; the tap-timer state is
// deliberately per-instance so fast scrolling cannot cross wires
// between items.
type Controller struct {
	pubID   int64
	likes   domain.LikeService
	session domain.SessionStore
	pres    Presenter
	cfg     Config

	mu        sync.Mutex
	liked     bool
	likeCount int64
	toggles   uint64 // issued toggles; a stale status read must not win over one
	lastTap   time.Time
	navTimer  *time.Timer
	navGen    uint64 // a replaced or cancelled timer's callback must not touch its successor
	closed    bool

	queue  chan toggleRequest
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewController creates a controller for one publication.
// initialCount is the like count the feed delivered with the record.
func NewController(publicationID, initialCount int64, likes domain.LikeService, session domain.SessionStore, pres Presenter, cfg Config) *Controller {
	if cfg.DoubleTapWindow <= 0 {
		cfg.DoubleTapWindow = DefaultDoubleTapWindow
	}
	return &Controller{
		pubID:     publicationID,
		likes:     likes,
		session:   session,
		pres:      pres,
		cfg:       cfg,
		likeCount: initialCount,
		queue:     make(chan toggleRequest, toggleQueueSize),
		done:      make(chan struct{}),
	}
}

// Start launches the liked-status query and the toggle sync worker.
// ctx scopes both; Close releases them as well.
func (c *Controller) Start(ctx context.Context) {
	c.ctx, c.cancel = context.WithCancel(ctx)
	go c.worker()
	go c.fetchStatus()
}

// Tap feeds one tap of the gesture stream. The second tap inside the
// window cancels the pending navigation and toggles the like exactly
// once; after a fired pair the window restarts, so a burst of taps
// yields one toggle per qualifying pair.
func (c *Controller) Tap() {
	now := time.Now()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	prev := c.lastTap
	if !prev.IsZero() && now.Sub(prev) < c.cfg.DoubleTapWindow {
		if c.navTimer != nil {
			c.navTimer.Stop()
			c.navTimer = nil
		}
		// Stop can lose to a callback already past the timer; bumping the
		// generation orphans it either way
		c.navGen++
		c.lastTap = time.Time{}
		c.mu.Unlock()

		if err := c.Toggle(); err != nil && !errors.Is(err, domain.ErrNoUser) {
			logrus.Warnf("toggle after double tap on publication %d failed: %v", c.pubID, err)
		}
		return
	}

	c.lastTap = now
	if c.navTimer != nil {
		c.navTimer.Stop()
	}
	c.navGen++
	gen := c.navGen
	c.navTimer = time.AfterFunc(c.cfg.DoubleTapWindow, func() { c.navigate(gen) })
	c.mu.Unlock()
}

func (c *Controller) navigate(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.navGen {
		// a later tap replaced or cancelled this timer; the handle in
		// navTimer is not ours to clear
		c.mu.Unlock()
		return
	}
	c.navTimer = nil
	c.mu.Unlock()
	if c.pres != nil {
		c.pres.Navigate(c.pubID)
	}
}

// Toggle flips the like optimistically and queues the remote sync.
// Without a resolvable local user it does nothing and returns
// ErrNoUser; the remote service is never called with a missing user.
func (c *Controller) Toggle() error {
	userID, err := c.session.UserID()
	if err != nil {
		if errors.Is(err, domain.ErrNoUser) {
			logrus.Debugf("like toggle on publication %d skipped, no local user", c.pubID)
			return domain.ErrNoUser
		}
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrClosed
	}
	c.flipLocked()
	c.toggles++
	c.mu.Unlock()

	if c.pres != nil {
		c.pres.ShowHeart(c.pubID)
	}

	select {
	case c.queue <- toggleRequest{userID: userID}:
		return nil
	default:
		// the tap burst outran the network; undo so local state keeps
		// matching the requests that will actually be sent
		logrus.Warnf("toggle queue full on publication %d, dropping", c.pubID)
		c.mu.Lock()
		c.flipLocked()
		c.mu.Unlock()
		return domain.ErrInternalServerError
	}
}

// State returns the current liked flag and like count.
func (c *Controller) State() (liked bool, likeCount int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liked, c.likeCount
}

// Close cancels the in-flight status query, the pending navigation
// timer and the sync worker. No state changes land after Close.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.navTimer != nil {
		c.navTimer.Stop()
		c.navTimer = nil
	}
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
}

// flipLocked mirrors the boolean flip onto the count, clamped at zero
// so the count never drifts negative.
func (c *Controller) flipLocked() {
	c.liked = !c.liked
	if c.liked {
		c.likeCount++
	} else if c.likeCount > 0 {
		c.likeCount--
	}
}

func (c *Controller) fetchStatus() {
	userID, err := c.session.UserID()
	if err != nil {
		if !errors.Is(err, domain.ErrNoUser) {
			logrus.Warnf("failed to read session for publication %d: %v", c.pubID, err)
		}
		return
	}

	liked, err := c.likes.Status(c.ctx, c.pubID, userID)
	if err != nil {
		logrus.Warnf("failed to load like status for publication %d: %v", c.pubID, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.toggles != 0 {
		// the user toggled while the query was in flight; the
		// optimistic flip wins over the stale read
		return
	}
	c.liked = liked
}

// worker serializes toggle syncs so that N rapid toggles reach the
// server in issue order and the final state equals the baseline
// flipped N mod 2 times.
func (c *Controller) worker() {
	defer close(c.done)
	for {
		select {
		case req := <-c.queue:
			c.sync(req)
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Controller) sync(req toggleRequest) {
	err := c.likes.Toggle(c.ctx, c.pubID, req.userID)
	if err == nil {
		return
	}

	logrus.Warnf("failed to sync like on publication %d: %v", c.pubID, err)
	if !c.cfg.RevertOnFailure {
		return
	}

	c.mu.Lock()
	if !c.closed {
		c.flipLocked()
	}
	c.mu.Unlock()

	if c.cfg.OnError != nil {
		c.cfg.OnError(c.pubID, err)
	}
}
