package feed

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/petresgate/feedcore/domain"
)

// State is the loading state the presentation layer renders from. The
// cold-start spinner (StateLoading) and the pull-to-refresh spinner
// (StateRefreshing) must stay distinguishable.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateRefreshing
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateRefreshing:
		return "refreshing"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Controller produces an ordered, current snapshot of publications.
// A failed reload keeps the previously displayed list in place; the
// screen decides how to surface the error.
type Controller struct {
	pubs     domain.PublicationService
	profiles domain.ProfileService
	snapshot domain.SnapshotStore

	mu       sync.Mutex
	state    State
	ordering domain.Ordering
	current  []domain.Publication
	lastFull []domain.Publication // last full load, the empty-query answer when the snapshot store is down
	gen      uint64               // completions of an older load must not clobber a newer one

	snapMu sync.Mutex // orders snapshot writes across overlapping loads
}

// NewController will create a new feed controller object
func NewController(pubs domain.PublicationService, profiles domain.ProfileService, snapshot domain.SnapshotStore) *Controller {
	return &Controller{
		pubs:     pubs,
		profiles: profiles,
		snapshot: snapshot,
		state:    StateIdle,
		ordering: domain.OrderDesc,
	}
}

// Load fetches the full collection, sorts it chronologically and
// replaces the displayed set. No retry is performed; a single fetch
// error category is surfaced to the caller.
func (f *Controller) Load(ctx context.Context, ordering domain.Ordering) ([]domain.Publication, error) {
	return f.load(ctx, ordering, StateLoading)
}

// Refresh reloads with the current ordering, driving the refresh
// indicator instead of the first-load one.
func (f *Controller) Refresh(ctx context.Context) ([]domain.Publication, error) {
	f.mu.Lock()
	ordering := f.ordering
	f.mu.Unlock()
	return f.load(ctx, ordering, StateRefreshing)
}

func (f *Controller) load(ctx context.Context, ordering domain.Ordering, loadingState State) ([]domain.Publication, error) {
	f.mu.Lock()
	f.state = loadingState
	f.ordering = ordering
	f.gen++
	gen := f.gen
	f.mu.Unlock()

	res, err := f.pubs.Fetch(ctx)
	if err != nil {
		f.fail(gen)
		return nil, err
	}

	SortByCreatedAt(res, ordering)

	res, err = f.fillUserDetails(ctx, res)
	if err != nil {
		// author info stays partial, the feed itself is intact
		logrus.Warnf("could not resolve all author profiles: %v", err)
	}

	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		return res, nil
	}
	f.current = res
	f.lastFull = res
	f.state = StateLoaded
	f.mu.Unlock()

	f.retainSnapshot(ctx, gen, res)
	return res, nil
}

// retainSnapshot persists the result of a completed load. Writes are
// serialized and re-checked against gen, so a load overtaken while it
// was resolving authors cannot overwrite the newer load's snapshot.
func (f *Controller) retainSnapshot(ctx context.Context, gen uint64, res []domain.Publication) {
	f.snapMu.Lock()
	defer f.snapMu.Unlock()

	f.mu.Lock()
	stale := gen != f.gen
	f.mu.Unlock()
	if stale {
		return
	}
	if err := f.snapshot.Set(ctx, res); err != nil {
		logrus.Warnf("failed to retain feed snapshot: %v", err)
	}
}

func (f *Controller) fail(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return
	}
	// the last good list stays displayable
	f.state = StateFailed
}

// Search resolves a free-text query. The empty query means "back to
// the full feed" and is served from the retained snapshot without a
// round trip. Non-empty results replace the displayed set and keep the
// server's ordering.
func (f *Controller) Search(ctx context.Context, query string) ([]domain.Publication, error) {
	if query == "" {
		snap, err := f.snapshot.Get(ctx)
		if err != nil {
			if !errors.Is(err, domain.ErrSnapshotMiss) {
				logrus.Warnf("failed to read feed snapshot: %v", err)
			}
			// fall back to the last full load, not to whatever search
			// results are currently displayed
			f.mu.Lock()
			snap = append([]domain.Publication(nil), f.lastFull...)
			f.current = snap
			f.mu.Unlock()
			return snap, nil
		}
		f.mu.Lock()
		f.current = snap
		f.lastFull = snap
		f.mu.Unlock()
		return snap, nil
	}

	res, err := f.pubs.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.current = res
	f.mu.Unlock()
	return res, nil
}

// State returns the current loading state.
func (f *Controller) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Publications returns a copy of the currently displayed set.
func (f *Controller) Publications() []domain.Publication {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Publication(nil), f.current...)
}

// fillUserDetails resolves author profiles the backend returned
// incomplete, fanning out one fetch per distinct author.
func (f *Controller) fillUserDetails(ctx context.Context, data []domain.Publication) ([]domain.Publication, error) {
	mapUsers := map[int64]domain.User{}
	for i := range data {
		if data[i].User.ID != 0 && data[i].User.Name == "" {
			mapUsers[data[i].User.ID] = domain.User{}
		}
	}
	if len(mapUsers) == 0 {
		return data, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	chanUser := make(chan domain.User)
	for userID := range mapUsers {
		userID := userID
		g.Go(func() error {
			res, err := f.profiles.GetByID(ctx, userID)
			if err != nil {
				return err
			}
			chanUser <- res
			return nil
		})
	}

	go func() {
		defer close(chanUser)
		if err := g.Wait(); err != nil {
			logrus.Error(err)
		}
	}()

	for user := range chanUser {
		if user != (domain.User{}) {
			mapUsers[user.ID] = user
		}
	}

	if err := g.Wait(); err != nil {
		return data, err
	}

	for index, item := range data {
		if u, ok := mapUsers[item.User.ID]; ok && u != (domain.User{}) {
			data[index].User = u
		}
	}
	return data, nil
}

// SortByCreatedAt orders pubs chronologically in place. The sort is
// stable and idempotent: equal timestamps keep their input order and
// sorting a sorted slice changes nothing.
func SortByCreatedAt(pubs []domain.Publication, ordering domain.Ordering) {
	sort.SliceStable(pubs, func(i, j int) bool {
		if ordering == domain.OrderAsc {
			return pubs[i].CreatedAt.Before(pubs[j].CreatedAt)
		}
		return pubs[i].CreatedAt.After(pubs[j].CreatedAt)
	})
}
