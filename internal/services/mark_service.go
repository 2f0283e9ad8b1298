package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/smartapp-edu/records-service/internal/auth"
	"github.com/smartapp-edu/records-service/internal/models"
	"github.com/smartapp-edu/records-service/internal/persistence"
	"github.com/smartapp-edu/records-service/internal/store"
	"github.com/smartapp-edu/records-service/internal/validator"
)

type markService struct {
	store     *store.Store
	flusher   persistence.FlushTrigger
	policy    auth.Policy
	logger    *slog.Logger
	validator *validator.Validator
}

func NewMarkService(st *store.Store, flusher persistence.FlushTrigger, policy auth.Policy, logger *slog.Logger, v *validator.Validator) MarkService {
	return &markService{
		store:     st,
		flusher:   flusher,
		policy:    policy,
		logger:    logger,
		validator: v,
	}
}

func (s *markService) Create(ctx context.Context, req *MarkCreateRequest, scope auth.Scope) (models.Mark, error) {
	if errs := s.validator.GetBusinessValidator().ValidateMarkCreate(req); len(errs) > 0 {
		return models.Mark{}, errs
	}

	// Resolve the student identity. A registration number must match an
	// existing student account; a plain username is taken as-is.
	studentUsername := req.StudentUsername
	if req.StudentRegNumber != "" {
		student, ok := s.store.FindUserByRegNumber(req.StudentRegNumber, models.RoleStudent)
		if !ok {
			return models.Mark{}, ErrStudentNotFound
		}
		studentUsername = student.Username
	}

	createdBy := req.CreatedBy
	if scope.TeacherScoped() {
		createdBy = scope.Teacher
	}
	// The (student, course) conflict check and the insert are one atomic
	// store operation, so racing creates for the same pair cannot both land.
	mark, err := s.store.InsertMarkIfAbsent(models.Mark{
		StudentUsername: studentUsername,
		Course:          req.Course,
		Score:           req.Score.Float64(),
		MaxScore:        req.MaxScore.Float64(),
		CreatedBy:       createdBy,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateMark) {
			return models.Mark{}, ErrMarkExists
		}
		return models.Mark{}, err
	}
	s.flusher.Trigger(s.store.Snapshot())

	s.logger.Info("mark created", "mark_id", mark.ID, "student", mark.StudentUsername, "course", mark.Course)
	return mark, nil
}

func (s *markService) List(ctx context.Context, scope auth.Scope) ([]models.Mark, error) {
	if scope.TeacherScoped() {
		return s.store.ListMarks(func(m models.Mark) bool { return m.CreatedBy == scope.Teacher }), nil
	}
	return s.store.ListMarks(nil), nil
}

func (s *markService) ListForStudent(ctx context.Context, username string, scope auth.Scope) ([]models.Mark, error) {
	return s.store.ListMarks(func(m models.Mark) bool {
		if m.StudentUsername != username {
			return false
		}
		return !scope.TeacherScoped() || m.CreatedBy == scope.Teacher
	}), nil
}

// Update overwrites every field except the id. CreatedBy is preserved from
// the existing record, never taken from the input. The (student, course)
// uniqueness invariant is NOT re-checked here; an update may collide with
// another mark. That asymmetry matches create-time-only checking and is kept
// deliberately.
func (s *markService) Update(ctx context.Context, id int, req *MarkUpdateRequest, scope auth.Scope) (models.Mark, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return models.Mark{}, errs
	}

	existing, ok := s.store.GetMark(id)
	if !ok {
		return models.Mark{}, ErrMarkNotFound
	}
	if err := s.policy.CanMutateMark(scope, existing); err != nil {
		return models.Mark{}, err
	}

	updated := models.Mark{
		ID:              id,
		StudentUsername: req.StudentUsername,
		Course:          req.Course,
		Score:           req.Score.Float64(),
		MaxScore:        req.MaxScore.Float64(),
		CreatedBy:       existing.CreatedBy,
	}
	s.store.UpdateMark(updated)
	s.flusher.Trigger(s.store.Snapshot())

	return updated, nil
}

func (s *markService) Delete(ctx context.Context, id int, scope auth.Scope) (models.Mark, error) {
	existing, ok := s.store.GetMark(id)
	if !ok {
		return models.Mark{}, ErrMarkNotFound
	}
	if err := s.policy.CanMutateMark(scope, existing); err != nil {
		return models.Mark{}, err
	}

	deleted, _ := s.store.DeleteMark(id)
	s.flusher.Trigger(s.store.Snapshot())

	s.logger.Info("mark deleted", "mark_id", id)
	return deleted, nil
}

func (s *markService) DeleteByStudentAndCourse(ctx context.Context, studentUsername, course string, scope auth.Scope) (models.Mark, error) {
	existing, ok := s.store.FindMarkByStudentCourse(studentUsername, course)
	if !ok {
		return models.Mark{}, ErrMarkNotFound
	}
	if err := s.policy.CanMutateMark(scope, existing); err != nil {
		return models.Mark{}, err
	}

	deleted, _ := s.store.DeleteMark(existing.ID)
	s.flusher.Trigger(s.store.Snapshot())

	s.logger.Info("mark deleted", "mark_id", existing.ID, "student", studentUsername, "course", course)
	return deleted, nil
}
