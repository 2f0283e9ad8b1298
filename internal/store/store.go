package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/smartapp-edu/records-service/internal/models"
)

// Uniqueness conflicts reported by the atomic insert operations.
var (
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrDuplicateRegNumber = errors.New("registration number already taken")
	ErrDuplicateMark      = errors.New("mark already exists for student and course")
)

// Store holds all account and mark records in memory behind a single mutex.
// Uniqueness-checked inserts (CreateUser, InsertMarkIfAbsent) hold the write
// lock across both the check and the write, so concurrent requests cannot
// race past each other's conflict checks.
//
// InsertMark performs no uniqueness check; the import path uses it on
// purpose.
type Store struct {
	mu         sync.RWMutex
	users      map[string]models.User
	marks      map[int]models.Mark
	nextMarkID int
	otps       map[string]models.OtpChallenge
}

func New() *Store {
	return &Store{
		users:      make(map[string]models.User),
		marks:      make(map[int]models.Mark),
		nextMarkID: 1,
		otps:       make(map[string]models.OtpChallenge),
	}
}

// ===== USERS =====

func (s *Store) GetUser(username string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	return u, ok
}

func (s *Store) SetUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Username] = u
}

// CreateUser inserts a new account. The username and, when present, the
// registration number must be unused; both checks and the insert happen under
// one write lock acquisition.
func (s *Store) CreateUser(u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return ErrDuplicateUsername
	}
	if u.RegNumber != "" {
		for _, existing := range s.users {
			if existing.RegNumber == u.RegNumber {
				return ErrDuplicateRegNumber
			}
		}
	}
	s.users[u.Username] = u
	return nil
}

// ListUsers returns all users ordered by username.
func (s *Store) ListUsers() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// FindUserByRegNumber returns the user holding the given registration number,
// optionally restricted to a role. Empty regNumber never matches.
func (s *Store) FindUserByRegNumber(regNumber string, role models.UserRole) (models.User, bool) {
	if regNumber == "" {
		return models.User{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.RegNumber == regNumber && (role == "" || u.Role == role) {
			return u, true
		}
	}
	return models.User{}, false
}

// ===== MARKS =====

// InsertMark assigns the next id and stores the mark, returning the stored
// record. No uniqueness check is applied.
func (s *Store) InsertMark(m models.Mark) models.Mark {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(m)
}

// InsertMarkIfAbsent inserts the mark unless a mark for the same
// (student, course) pair already exists. Check and insert happen under one
// write lock acquisition.
func (s *Store) InsertMarkIfAbsent(m models.Mark) (models.Mark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.marks {
		if existing.StudentUsername == m.StudentUsername && existing.Course == m.Course {
			return models.Mark{}, ErrDuplicateMark
		}
	}
	return s.insertLocked(m), nil
}

func (s *Store) insertLocked(m models.Mark) models.Mark {
	m.ID = s.nextMarkID
	s.nextMarkID++
	s.marks[m.ID] = m
	return m
}

func (s *Store) GetMark(id int) (models.Mark, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.marks[id]
	return m, ok
}

// UpdateMark overwrites an existing mark. It reports false when the id is
// unknown.
func (s *Store) UpdateMark(m models.Mark) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.marks[m.ID]; !ok {
		return false
	}
	s.marks[m.ID] = m
	return true
}

func (s *Store) DeleteMark(id int) (models.Mark, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.marks[id]
	if ok {
		delete(s.marks, id)
	}
	return m, ok
}

// ListMarks returns marks matching the filter, ordered by id. A nil filter
// matches everything.
func (s *Store) ListMarks(match func(models.Mark) bool) []models.Mark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Mark, 0, len(s.marks))
	for _, m := range s.marks {
		if match == nil || match(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindMarkByStudentCourse returns the mark for the given (student, course)
// pair, if any.
func (s *Store) FindMarkByStudentCourse(studentUsername, course string) (models.Mark, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.marks {
		if m.StudentUsername == studentUsername && m.Course == course {
			return m, true
		}
	}
	return models.Mark{}, false
}

// ===== OTP CHALLENGES =====

// SetChallenge replaces any prior challenge for the username.
func (s *Store) SetChallenge(username string, c models.OtpChallenge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.otps[username] = c
}

func (s *Store) GetChallenge(username string) (models.OtpChallenge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.otps[username]
	return c, ok
}

func (s *Store) DeleteChallenge(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.otps, username)
}

// ===== SNAPSHOTS =====

// Snapshot captures the persistable state. OTP challenges are deliberately
// excluded; they do not survive restarts.
func (s *Store) Snapshot() models.StoreSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := models.StoreSnapshot{
		Users:      make([]models.User, 0, len(s.users)),
		Marks:      make([]models.Mark, 0, len(s.marks)),
		NextMarkID: s.nextMarkID,
	}
	for _, u := range s.users {
		snap.Users = append(snap.Users, u)
	}
	for _, m := range s.marks {
		snap.Marks = append(snap.Marks, m)
	}
	sort.Slice(snap.Users, func(i, j int) bool { return snap.Users[i].Username < snap.Users[j].Username })
	sort.Slice(snap.Marks, func(i, j int) bool { return snap.Marks[i].ID < snap.Marks[j].ID })
	return snap
}

// Restore replaces the whole store contents from a snapshot. When the incoming
// id counter is not past the highest mark id present, it is recomputed so ids
// are never reused.
func (s *Store) Restore(snap models.StoreSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]models.User, len(snap.Users))
	for _, u := range snap.Users {
		s.users[u.Username] = u
	}
	s.marks = make(map[int]models.Mark, len(snap.Marks))
	maxID := 0
	for _, m := range snap.Marks {
		s.marks[m.ID] = m
		if m.ID > maxID {
			maxID = m.ID
		}
	}
	s.nextMarkID = snap.NextMarkID
	if s.nextMarkID <= maxID {
		s.nextMarkID = maxID + 1
	}
	if s.nextMarkID < 1 {
		s.nextMarkID = 1
	}
}

// PruneExpiredChallenges drops challenges past their expiry. Called
// opportunistically; correctness does not depend on it since verification
// checks expiry itself.
func (s *Store) PruneExpiredChallenges(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for username, c := range s.otps {
		if now.After(c.ExpiresAt) {
			delete(s.otps, username)
		}
	}
}
