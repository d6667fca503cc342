package conversation

import (
	"sync"
	"time"
)

// Phase is the step an active conversation is waiting on. A contact with no
// stored Record has no conversation at all.
type Phase string

const (
	AwaitingProduct Phase = "AWAIT_PRODUCT"
	AwaitingName    Phase = "AWAIT_NAME"
	AwaitingReview  Phase = "AWAIT_REVIEW"
)

// Record is the ephemeral per-contact conversation state.
// ProductName is set once the product phase is passed, UserName once the name
// phase is passed. LastTouched is stamped by the Store on every Put.
type Record struct {
	Phase       Phase
	ProductName string
	UserName    string
	LastTouched time.Time
}

// Store is a process-wide mapping from contact identifier to conversation
// Record. Records idle longer than the TTL are treated as absent. The Store
// also hands out per-contact locks so that read-modify-write transitions for
// the same contact are serialized while distinct contacts proceed
// independently.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	ttl time.Duration
	now func() time.Time
}

func NewStore(ttl time.Duration, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		records: make(map[string]Record),
		locks:   make(map[string]*sync.Mutex),
		ttl:     ttl,
		now:     now,
	}
}

// LockContact acquires the mutex for a single contact and returns the unlock
// function. Transitions and sweeps of the same contact must run under it.
func (s *Store) LockContact(contact string) func() {
	s.locksMu.Lock()
	m, ok := s.locks[contact]
	if !ok {
		m = &sync.Mutex{}
		s.locks[contact] = m
	}
	s.locksMu.Unlock()
	m.Lock()
	return m.Unlock
}

// Get returns the contact's record. Expired records are treated as absent;
// removal is left to Sweep.
func (s *Store) Get(contact string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[contact]
	if !ok || s.expired(rec) {
		return Record{}, false
	}
	return rec, true
}

// Put stores the record for the contact, stamping LastTouched.
func (s *Store) Put(contact string, rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.LastTouched = s.now()
	s.records[contact] = rec
}

func (s *Store) Clear(contact string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, contact)
}

// Sweep removes every expired record and reports how many were dropped.
// Each candidate is removed under its contact lock so a sweep never races an
// in-flight transition for the same contact; expiry is re-checked after the
// lock is taken.
func (s *Store) Sweep() int {
	s.mu.RLock()
	var candidates []string
	for contact, rec := range s.records {
		if s.expired(rec) {
			candidates = append(candidates, contact)
		}
	}
	s.mu.RUnlock()

	removed := 0
	for _, contact := range candidates {
		unlock := s.LockContact(contact)
		s.mu.Lock()
		if rec, ok := s.records[contact]; ok && s.expired(rec) {
			delete(s.records, contact)
			removed++
		}
		s.mu.Unlock()
		unlock()
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) expired(rec Record) bool {
	return s.now().Sub(rec.LastTouched) > s.ttl
}
