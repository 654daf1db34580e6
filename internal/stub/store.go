package stub

import (
	"strings"
	"sync"
	"time"

	"github.com/petresgate/feedcore/domain"
)

type likeKey struct {
	pubID  int64
	userID int64
}

// Store is the stub backend's in-memory dataset, guarded by one mutex.
// It exists for local development and tests; the real backend is a
// separate service.
type Store struct {
	mu     sync.Mutex
	nextID int64
	pubs   map[int64]*domain.Publication
	users  map[int64]domain.User
	likes  map[likeKey]bool
}

func NewStore() *Store {
	return &Store{
		nextID: 1,
		pubs:   make(map[int64]*domain.Publication),
		users:  make(map[int64]domain.User),
		likes:  make(map[likeKey]bool),
	}
}

// AddUser seeds a user profile.
func (s *Store) AddUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// AddPublication seeds a publication, assigning id and createdAt when
// zero. Returns the stored record.
func (s *Store) AddPublication(p domain.Publication) domain.Publication {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(p)
}

func (s *Store) addLocked(p domain.Publication) domain.Publication {
	if p.ID == 0 {
		p.ID = s.nextID
		s.nextID++
	} else if p.ID >= s.nextID {
		s.nextID = p.ID + 1
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	stored := p
	s.pubs[p.ID] = &stored
	return stored
}

// List returns every publication in insertion-independent order.
func (s *Store) List() []domain.Publication {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]domain.Publication, 0, len(s.pubs))
	for _, p := range s.pubs {
		res = append(res, *p)
	}
	return res
}

// Search matches query case-insensitively against description, status
// and location.
func (s *Store) Search(query string) []domain.Publication {
	q := strings.ToLower(query)
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []domain.Publication
	for _, p := range s.pubs {
		if strings.Contains(strings.ToLower(p.Description), q) ||
			strings.Contains(strings.ToLower(p.Status), q) ||
			strings.Contains(strings.ToLower(p.Location), q) {
			res = append(res, *p)
		}
	}
	return res
}

// ToggleLike flips the like record and mirrors it on the count.
func (s *Store) ToggleLike(pubID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pubs[pubID]
	if !ok {
		return false, domain.ErrNotFound
	}
	key := likeKey{pubID: pubID, userID: userID}
	if s.likes[key] {
		delete(s.likes, key)
		if p.LikeCount > 0 {
			p.LikeCount--
		}
		return false, nil
	}
	s.likes[key] = true
	p.LikeCount++
	return true, nil
}

// Liked reports whether userID has liked pubID.
func (s *Store) Liked(pubID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pubs[pubID]; !ok {
		return false, domain.ErrNotFound
	}
	return s.likes[likeKey{pubID: pubID, userID: userID}], nil
}

// User returns a seeded profile.
func (s *Store) User(id int64) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

// Create stores a new publication from a creation payload.
func (s *Store) Create(np *domain.NewPublication) domain.Publication {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := domain.Publication{
		Description:  np.Description,
		Images:       append([]string(nil), np.Images...),
		Status:       np.Status,
		Location:     np.Location,
		ContactInfos: np.ContactInfos,
		User:         s.users[np.UserID],
	}
	if p.User == (domain.User{}) {
		p.User = domain.User{ID: np.UserID}
	}
	return s.addLocked(p)
}
