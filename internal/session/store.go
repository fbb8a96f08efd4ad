package session

import (
	"container/list"
	"sync"
	"time"
)

// Store keeps live sessions keyed by ID with TTL and size-based LRU
// eviction. There is no explicit logout; sessions simply age out.
type Store struct {
	mu       sync.Mutex
	maxSize  int
	ttl      time.Duration
	sessions map[string]*list.Element
	lru      *list.List
}

type storeItem struct {
	sess      *Session
	expiresAt time.Time
}

func NewStore(maxSize int, ttl time.Duration) *Store {
	return &Store{
		maxSize:  maxSize,
		ttl:      ttl,
		sessions: make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the live session for id, refreshing its TTL. Expired
// sessions are dropped on access.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	elem, exists := st.sessions[id]
	if !exists {
		return nil, false
	}
	item := elem.Value.(*storeItem)
	if time.Now().After(item.expiresAt) {
		st.removeElement(elem)
		return nil, false
	}
	item.expiresAt = time.Now().Add(st.ttl)
	st.lru.MoveToFront(elem)
	return item.sess, true
}

// Put registers a freshly logged-in session, evicting the least
// recently used one when over capacity.
func (st *Store) Put(sess *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()

	item := &storeItem{sess: sess, expiresAt: time.Now().Add(st.ttl)}
	if elem, exists := st.sessions[sess.ID]; exists {
		elem.Value = item
		st.lru.MoveToFront(elem)
		return
	}
	elem := st.lru.PushFront(item)
	st.sessions[sess.ID] = elem

	if st.lru.Len() > st.maxSize {
		if oldest := st.lru.Back(); oldest != nil {
			st.removeElement(oldest)
		}
	}
}

// Delete drops a session by ID.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if elem, exists := st.sessions[id]; exists {
		st.removeElement(elem)
	}
}

// CleanExpired removes all aged-out sessions and reports how many.
func (st *Store) CleanExpired() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := time.Now()
	var toRemove []*list.Element
	for elem := st.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*storeItem).expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		st.removeElement(elem)
	}
	return len(toRemove)
}

// Size returns the current number of live sessions.
func (st *Store) Size() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.lru.Len()
}

func (st *Store) removeElement(elem *list.Element) {
	item := elem.Value.(*storeItem)
	delete(st.sessions, item.sess.ID)
	st.lru.Remove(elem)
}
