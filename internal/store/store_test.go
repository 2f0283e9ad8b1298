package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smartapp-edu/records-service/internal/models"
)

func TestInsertMarkAssignsMonotonicIDs(t *testing.T) {
	s := New()

	m1 := s.InsertMark(models.Mark{StudentUsername: "alice", Course: "Math", Score: 90, MaxScore: 100})
	m2 := s.InsertMark(models.Mark{StudentUsername: "bob", Course: "Math", Score: 80, MaxScore: 100})

	if m1.ID != 1 || m2.ID != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", m1.ID, m2.ID)
	}

	// Deleting a mark must not allow its id to be reused.
	s.DeleteMark(m2.ID)
	m3 := s.InsertMark(models.Mark{StudentUsername: "carol", Course: "Math", Score: 70, MaxScore: 100})
	if m3.ID != 3 {
		t.Fatalf("expected id 3 after delete, got %d", m3.ID)
	}
}

func TestRestoreRecomputesNextID(t *testing.T) {
	tests := []struct {
		name       string
		snap       models.StoreSnapshot
		wantNextID int
	}{
		{
			name: "counter behind max id",
			snap: models.StoreSnapshot{
				Marks:      []models.Mark{{ID: 3}, {ID: 7}},
				NextMarkID: 2,
			},
			wantNextID: 8,
		},
		{
			name: "counter already valid",
			snap: models.StoreSnapshot{
				Marks:      []models.Mark{{ID: 3}},
				NextMarkID: 10,
			},
			wantNextID: 10,
		},
		{
			name:       "empty snapshot",
			snap:       models.StoreSnapshot{},
			wantNextID: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.Restore(tt.snap)
			m := s.InsertMark(models.Mark{StudentUsername: "x", Course: "y"})
			if m.ID != tt.wantNextID {
				t.Errorf("next assigned id = %d, want %d", m.ID, tt.wantNextID)
			}
		})
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := New()
	s.SetUser(models.User{Username: "alice", Role: models.RoleStudent, Password: "pw", RegNumber: "R1"})
	s.SetUser(models.User{Username: "bob", Role: models.RoleTeacher, Password: "pw", ModuleTitle: "Algebra", ModuleCode: "MA101"})
	s.InsertMark(models.Mark{StudentUsername: "alice", Course: "Math", Score: 90, MaxScore: 100, CreatedBy: "bob"})
	s.SetChallenge("alice", models.OtpChallenge{Otp: "123456", ExpiresAt: time.Now().Add(time.Minute)})

	snap := s.Snapshot()
	if len(snap.Users) != 2 || len(snap.Marks) != 1 {
		t.Fatalf("snapshot has %d users and %d marks", len(snap.Users), len(snap.Marks))
	}

	restored := New()
	restored.Restore(snap)

	if u, ok := restored.GetUser("bob"); !ok || u.ModuleTitle != "Algebra" {
		t.Errorf("restored teacher = %+v, ok=%v", u, ok)
	}
	if m, ok := restored.FindMarkByStudentCourse("alice", "Math"); !ok || m.CreatedBy != "bob" {
		t.Errorf("restored mark = %+v, ok=%v", m, ok)
	}
	// Challenges never travel through snapshots.
	if _, ok := restored.GetChallenge("alice"); ok {
		t.Error("challenge survived a snapshot round trip")
	}
}

func TestCreateUser(t *testing.T) {
	s := New()

	if err := s.CreateUser(models.User{Username: "alice", RegNumber: "R1"}); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if err := s.CreateUser(models.User{Username: "alice"}); !errors.Is(err, ErrDuplicateUsername) {
		t.Errorf("duplicate username: error = %v, want ErrDuplicateUsername", err)
	}
	if err := s.CreateUser(models.User{Username: "alice2", RegNumber: "R1"}); !errors.Is(err, ErrDuplicateRegNumber) {
		t.Errorf("duplicate regNumber: error = %v, want ErrDuplicateRegNumber", err)
	}
	// Accounts without a registration number never collide on one.
	if err := s.CreateUser(models.User{Username: "bob"}); err != nil {
		t.Errorf("no regNumber: error = %v", err)
	}
	if err := s.CreateUser(models.User{Username: "carol"}); err != nil {
		t.Errorf("second no regNumber: error = %v", err)
	}
}

func TestInsertMarkIfAbsent(t *testing.T) {
	s := New()

	m, err := s.InsertMarkIfAbsent(models.Mark{StudentUsername: "alice", Course: "Math", Score: 90})
	if err != nil {
		t.Fatalf("InsertMarkIfAbsent() error = %v", err)
	}
	if m.ID != 1 {
		t.Errorf("id = %d, want 1", m.ID)
	}
	if _, err := s.InsertMarkIfAbsent(models.Mark{StudentUsername: "alice", Course: "Math", Score: 80}); !errors.Is(err, ErrDuplicateMark) {
		t.Errorf("duplicate pair: error = %v, want ErrDuplicateMark", err)
	}
	if _, err := s.InsertMarkIfAbsent(models.Mark{StudentUsername: "alice", Course: "Physics", Score: 70}); err != nil {
		t.Errorf("other course: error = %v", err)
	}
	// A failed insert must not burn an id.
	if m := s.InsertMark(models.Mark{StudentUsername: "dan", Course: "Math"}); m.ID != 3 {
		t.Errorf("next id = %d, want 3", m.ID)
	}
}

// Racing inserts for the same pair must produce exactly one stored mark, no
// matter how the goroutines interleave.
func TestInsertMarkIfAbsentConcurrent(t *testing.T) {
	const racers = 16
	s := New()

	start := make(chan struct{})
	errs := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.InsertMarkIfAbsent(models.Mark{StudentUsername: "alice", Course: "Math", Score: 90})
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	inserted := 0
	for err := range errs {
		if err == nil {
			inserted++
		} else if !errors.Is(err, ErrDuplicateMark) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if inserted != 1 {
		t.Errorf("%d inserts succeeded, want 1", inserted)
	}
	if marks := s.ListMarks(nil); len(marks) != 1 {
		t.Errorf("store holds %d marks, want 1", len(marks))
	}
}

func TestCreateUserConcurrent(t *testing.T) {
	const racers = 16
	s := New()

	start := make(chan struct{})
	errs := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs <- s.CreateUser(models.User{Username: "alice", RegNumber: "R1", Password: "pw"})
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		if err == nil {
			created++
		}
	}
	if created != 1 {
		t.Errorf("%d signups succeeded, want 1", created)
	}
	if users := s.ListUsers(); len(users) != 1 {
		t.Errorf("store holds %d users, want 1", len(users))
	}
}

func TestFindUserByRegNumber(t *testing.T) {
	s := New()
	s.SetUser(models.User{Username: "alice", Role: models.RoleStudent, RegNumber: "R1"})
	s.SetUser(models.User{Username: "ted", Role: models.RoleTeacher, RegNumber: "R2"})

	if u, ok := s.FindUserByRegNumber("R1", models.RoleStudent); !ok || u.Username != "alice" {
		t.Errorf("lookup R1 = %+v, ok=%v", u, ok)
	}
	if _, ok := s.FindUserByRegNumber("R2", models.RoleStudent); ok {
		t.Error("teacher matched a student-restricted lookup")
	}
	if _, ok := s.FindUserByRegNumber("", ""); ok {
		t.Error("empty regNumber matched")
	}
}

func TestPruneExpiredChallenges(t *testing.T) {
	s := New()
	now := time.Now()
	s.SetChallenge("old", models.OtpChallenge{Otp: "111111", ExpiresAt: now.Add(-time.Minute)})
	s.SetChallenge("live", models.OtpChallenge{Otp: "222222", ExpiresAt: now.Add(time.Minute)})

	s.PruneExpiredChallenges(now)

	if _, ok := s.GetChallenge("old"); ok {
		t.Error("expired challenge survived pruning")
	}
	if _, ok := s.GetChallenge("live"); !ok {
		t.Error("live challenge was pruned")
	}
}
