package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/smartapp-edu/records-service/internal/auth"
	"github.com/smartapp-edu/records-service/internal/models"
	"github.com/smartapp-edu/records-service/internal/store"
	"github.com/smartapp-edu/records-service/internal/validator"
)

func newTestMarkService(t *testing.T) (MarkService, *store.Store) {
	t.Helper()
	st := store.New()
	svc := NewMarkService(st, &nopFlusher{}, auth.NewAssertedPolicy(), testLogger(), validator.New())
	return svc, st
}

func teacherScope(name string) auth.Scope { return auth.Scope{Teacher: name} }

var adminScope = auth.Scope{Role: models.RoleAdmin}

func TestCreateMark(t *testing.T) {
	svc, _ := newTestMarkService(t)
	ctx := context.Background()

	mark, err := svc.Create(ctx, &MarkCreateRequest{
		StudentUsername: "alice", Course: "Math", Score: num(90), MaxScore: num(100),
	}, teacherScope("bob"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if mark.ID != 1 || mark.CreatedBy != "bob" {
		t.Fatalf("Create() = %+v", mark)
	}

	// Same student, same course conflicts; a different course does not.
	_, err = svc.Create(ctx, &MarkCreateRequest{
		StudentUsername: "alice", Course: "Math", Score: num(80), MaxScore: num(100),
	}, teacherScope("bob"))
	if !errors.Is(err, ErrMarkExists) {
		t.Errorf("duplicate (student, course): error = %v, want ErrMarkExists", err)
	}
	if _, err := svc.Create(ctx, &MarkCreateRequest{
		StudentUsername: "alice", Course: "Physics", Score: num(70), MaxScore: num(100),
	}, teacherScope("bob")); err != nil {
		t.Errorf("different course: error = %v", err)
	}
}

// Concurrent creates for the same (student, course) pair must yield exactly
// one mark; every loser gets the conflict error.
func TestCreateMarkConcurrentSamePair(t *testing.T) {
	const racers = 8
	svc, st := newTestMarkService(t)
	ctx := context.Background()

	start := make(chan struct{})
	errs := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Create(ctx, &MarkCreateRequest{
				StudentUsername: "alice", Course: "Math", Score: num(90), MaxScore: num(100),
			}, teacherScope("bob"))
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		if err == nil {
			created++
		} else if !errors.Is(err, ErrMarkExists) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if created != 1 {
		t.Errorf("%d creates succeeded, want 1", created)
	}
	if marks := st.ListMarks(nil); len(marks) != 1 {
		t.Errorf("store holds %d marks, want 1", len(marks))
	}
}

func TestCreateMarkByRegNumber(t *testing.T) {
	svc, st := newTestMarkService(t)
	ctx := context.Background()
	st.SetUser(models.User{Username: "alice", Role: models.RoleStudent, RegNumber: "REG001"})

	mark, err := svc.Create(ctx, &MarkCreateRequest{
		StudentRegNumber: "REG001", Course: "Math", Score: num(90), MaxScore: num(100),
	}, teacherScope("bob"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if mark.StudentUsername != "alice" {
		t.Errorf("resolved student = %q, want alice", mark.StudentUsername)
	}

	_, err = svc.Create(ctx, &MarkCreateRequest{
		StudentRegNumber: "MISSING", Course: "Math", Score: num(90), MaxScore: num(100),
	}, teacherScope("bob"))
	if !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("unknown regNumber: error = %v, want ErrStudentNotFound", err)
	}
}

func TestCreateMarkRequiresStudentIdentity(t *testing.T) {
	svc, _ := newTestMarkService(t)

	_, err := svc.Create(context.Background(), &MarkCreateRequest{
		Course: "Math", Score: num(90), MaxScore: num(100),
	}, teacherScope("bob"))
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error = %v, want ValidationErrors", err)
	}
}

func TestCreateMarkAdminScopeKeepsExplicitCreator(t *testing.T) {
	svc, _ := newTestMarkService(t)

	mark, err := svc.Create(context.Background(), &MarkCreateRequest{
		StudentUsername: "alice", Course: "Math", Score: num(90), MaxScore: num(100), CreatedBy: "bob",
	}, adminScope)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if mark.CreatedBy != "bob" {
		t.Errorf("createdBy = %q, want bob", mark.CreatedBy)
	}
}

func TestListMarksScoping(t *testing.T) {
	svc, st := newTestMarkService(t)
	ctx := context.Background()
	st.InsertMark(models.Mark{StudentUsername: "alice", Course: "Math", Score: 90, MaxScore: 100, CreatedBy: "bob"})
	st.InsertMark(models.Mark{StudentUsername: "alice", Course: "Physics", Score: 80, MaxScore: 100, CreatedBy: "carol"})
	st.InsertMark(models.Mark{StudentUsername: "dan", Course: "Math", Score: 60, MaxScore: 100, CreatedBy: "bob"})

	all, err := svc.List(ctx, adminScope)
	if err != nil || len(all) != 3 {
		t.Fatalf("admin List() = %d marks, error = %v", len(all), err)
	}
	bobs, err := svc.List(ctx, teacherScope("bob"))
	if err != nil || len(bobs) != 2 {
		t.Fatalf("teacher List() = %d marks, error = %v", len(bobs), err)
	}

	aliceAll, err := svc.ListForStudent(ctx, "alice", auth.Scope{})
	if err != nil || len(aliceAll) != 2 {
		t.Fatalf("ListForStudent() = %d marks, error = %v", len(aliceAll), err)
	}
	aliceFromBob, err := svc.ListForStudent(ctx, "alice", teacherScope("bob"))
	if err != nil || len(aliceFromBob) != 1 {
		t.Fatalf("teacher-filtered ListForStudent() = %d marks, error = %v", len(aliceFromBob), err)
	}
	if aliceFromBob[0].Course != "Math" {
		t.Errorf("filtered mark = %+v", aliceFromBob[0])
	}
}

func TestUpdateMarkOwnership(t *testing.T) {
	svc, st := newTestMarkService(t)
	ctx := context.Background()
	created := st.InsertMark(models.Mark{StudentUsername: "alice", Course: "Math", Score: 90, MaxScore: 100, CreatedBy: "bob"})

	req := &MarkUpdateRequest{StudentUsername: "alice", Course: "Math", Score: num(95), MaxScore: num(100)}

	if _, err := svc.Update(ctx, created.ID, req, teacherScope("carol")); !errors.Is(err, auth.ErrForbidden) {
		t.Errorf("foreign teacher: error = %v, want ErrForbidden", err)
	}

	updated, err := svc.Update(ctx, created.ID, req, teacherScope("bob"))
	if err != nil {
		t.Fatalf("owning teacher: error = %v", err)
	}
	if updated.Score != 95 {
		t.Errorf("score = %v, want 95", updated.Score)
	}
	if updated.CreatedBy != "bob" {
		t.Errorf("createdBy = %q, want preserved bob", updated.CreatedBy)
	}

	if _, err := svc.Update(ctx, created.ID, req, adminScope); err != nil {
		t.Errorf("admin: error = %v", err)
	}
	if _, err := svc.Update(ctx, 999, req, adminScope); !errors.Is(err, ErrMarkNotFound) {
		t.Errorf("unknown id: error = %v, want ErrMarkNotFound", err)
	}
}

// Updates do not re-check (student, course) uniqueness, so an update may land
// on a pair another mark already holds. This pins down the create-time-only
// behavior of the check.
func TestUpdateMarkAllowsCollision(t *testing.T) {
	svc, st := newTestMarkService(t)
	ctx := context.Background()
	st.InsertMark(models.Mark{StudentUsername: "alice", Course: "Math", Score: 90, MaxScore: 100, CreatedBy: "bob"})
	second := st.InsertMark(models.Mark{StudentUsername: "alice", Course: "Physics", Score: 80, MaxScore: 100, CreatedBy: "bob"})

	updated, err := svc.Update(ctx, second.ID, &MarkUpdateRequest{
		StudentUsername: "alice", Course: "Math", Score: num(80), MaxScore: num(100),
	}, teacherScope("bob"))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Course != "Math" {
		t.Errorf("course = %q", updated.Course)
	}

	marks, _ := svc.List(ctx, adminScope)
	mathMarks := 0
	for _, m := range marks {
		if m.StudentUsername == "alice" && m.Course == "Math" {
			mathMarks++
		}
	}
	if mathMarks != 2 {
		t.Errorf("got %d (alice, Math) marks, want 2", mathMarks)
	}
}

func TestDeleteMark(t *testing.T) {
	svc, st := newTestMarkService(t)
	ctx := context.Background()
	created := st.InsertMark(models.Mark{StudentUsername: "alice", Course: "Math", Score: 90, MaxScore: 100, CreatedBy: "bob"})

	if _, err := svc.Delete(ctx, created.ID, teacherScope("carol")); !errors.Is(err, auth.ErrForbidden) {
		t.Errorf("foreign teacher: error = %v, want ErrForbidden", err)
	}
	deleted, err := svc.Delete(ctx, created.ID, teacherScope("bob"))
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted.ID != created.ID {
		t.Errorf("deleted = %+v", deleted)
	}
	if _, err := svc.Delete(ctx, created.ID, adminScope); !errors.Is(err, ErrMarkNotFound) {
		t.Errorf("second delete: error = %v, want ErrMarkNotFound", err)
	}
}

func TestDeleteMarkByStudentAndCourse(t *testing.T) {
	svc, st := newTestMarkService(t)
	ctx := context.Background()
	st.InsertMark(models.Mark{StudentUsername: "alice", Course: "Math", Score: 90, MaxScore: 100, CreatedBy: "bob"})

	if _, err := svc.DeleteByStudentAndCourse(ctx, "alice", "Physics", adminScope); !errors.Is(err, ErrMarkNotFound) {
		t.Errorf("missing pair: error = %v, want ErrMarkNotFound", err)
	}
	deleted, err := svc.DeleteByStudentAndCourse(ctx, "alice", "Math", teacherScope("bob"))
	if err != nil {
		t.Fatalf("DeleteByStudentAndCourse() error = %v", err)
	}
	if deleted.Course != "Math" {
		t.Errorf("deleted = %+v", deleted)
	}
	if marks, _ := svc.List(ctx, adminScope); len(marks) != 0 {
		t.Errorf("%d marks remain", len(marks))
	}
}
