package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/smartapp-edu/records-service/internal/models"
	"github.com/smartapp-edu/records-service/internal/persistence"
	"github.com/smartapp-edu/records-service/internal/sms"
	"github.com/smartapp-edu/records-service/internal/store"
	"github.com/smartapp-edu/records-service/internal/validator"
)

const otpValidity = 5 * time.Minute

type accountService struct {
	store     *store.Store
	flusher   persistence.FlushTrigger
	sender    sms.Sender
	logger    *slog.Logger
	validator *validator.Validator

	// Injectable for tests.
	now         func() time.Time
	generateOtp func() string
}

func NewAccountService(st *store.Store, flusher persistence.FlushTrigger, sender sms.Sender, logger *slog.Logger, v *validator.Validator) AccountService {
	return &accountService{
		store:       st,
		flusher:     flusher,
		sender:      sender,
		logger:      logger,
		validator:   v,
		now:         time.Now,
		generateOtp: randomOtp,
	}
}

func randomOtp() string {
	return fmt.Sprintf("%06d", 100000+rand.IntN(900000))
}

func (s *accountService) Signup(ctx context.Context, req *SignupRequest) (models.UserInfo, error) {
	if errs := s.validator.GetBusinessValidator().ValidateSignup(req); len(errs) > 0 {
		return models.UserInfo{}, errs
	}

	user := models.User{
		Username:  req.Username,
		RegNumber: req.RegNumber,
		Phone:     req.Phone,
		Role:      req.Role,
		Password:  req.Password,
	}
	if req.Role == models.RoleTeacher {
		user.ModuleTitle = req.ModuleTitle
		user.ModuleCode = req.ModuleCode
	}
	// CreateUser applies both uniqueness checks atomically, so two racing
	// signups for the same username or registration number cannot both pass.
	if err := s.store.CreateUser(user); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			return models.UserInfo{}, ErrUserExists
		case errors.Is(err, store.ErrDuplicateRegNumber):
			return models.UserInfo{}, ErrRegNumberExists
		}
		return models.UserInfo{}, err
	}
	s.flusher.Trigger(s.store.Snapshot())

	s.logger.Info("account created", "username", user.Username, "role", user.Role)
	return user.Info(), nil
}

func (s *accountService) Login(ctx context.Context, req *LoginRequest) (models.UserRole, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return "", errs
	}

	user, ok := s.store.GetUser(req.Username)
	if !ok || user.Password != req.Password {
		return "", ErrInvalidCredentials
	}
	// Accounts carrying a registration number must present it at login.
	if user.RegNumber != "" && user.RegNumber != req.RegNumber {
		return "", ErrInvalidCredentials
	}
	return user.Role, nil
}

func (s *accountService) RequestPasswordResetOtp(ctx context.Context, req *OtpRequest) (OtpResult, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return OtpResult{}, errs
	}

	user, ok := s.store.GetUser(req.Username)
	if !ok || user.RegNumber != req.RegNumber {
		return OtpResult{}, ErrUserNotFound
	}

	otp := s.generateOtp()
	s.store.SetChallenge(req.Username, models.OtpChallenge{
		Otp:       otp,
		RegNumber: req.RegNumber,
		ExpiresAt: s.now().Add(otpValidity),
	})

	body := fmt.Sprintf("Your SmartAPP password reset OTP is %s. It expires in 5 minutes.", otp)
	if err := s.sender.Send(ctx, user.Phone, body); err != nil {
		// Delivery failure is swallowed; the code stays usable and is only
		// surfaced through the operational log.
		s.logger.Warn("otp delivery fallback", "username", req.Username, "phone", user.Phone, "otp", otp, "error", err)
		return OtpResult{Message: "OTP generated (SMS not configured; check server log)"}, nil
	}
	return OtpResult{Message: "OTP sent to phone"}, nil
}

func (s *accountService) VerifyOtpAndResetPassword(ctx context.Context, req *VerifyOtpResetRequest) error {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return errs
	}

	user, ok := s.store.GetUser(req.Username)
	if !ok || user.RegNumber != req.RegNumber {
		return ErrUserNotFound
	}

	challenge, ok := s.store.GetChallenge(req.Username)
	if !ok || challenge.RegNumber != req.RegNumber {
		return ErrOtpNotRequested
	}
	if s.now().After(challenge.ExpiresAt) {
		s.store.DeleteChallenge(req.Username)
		return ErrOtpExpired
	}
	if challenge.Otp != req.Otp {
		return ErrOtpInvalid
	}

	user.Password = req.NewPassword
	s.store.SetUser(user)
	s.store.DeleteChallenge(req.Username)
	s.flusher.Trigger(s.store.Snapshot())

	s.logger.Info("password reset", "username", req.Username)
	return nil
}

func (s *accountService) GetTeacherProfile(ctx context.Context, username string) (models.TeacherProfile, error) {
	user, ok := s.store.GetUser(username)
	if !ok || user.Role != models.RoleTeacher {
		return models.TeacherProfile{}, ErrTeacherNotFound
	}
	return models.TeacherProfile{
		Username:    user.Username,
		ModuleTitle: user.ModuleTitle,
		ModuleCode:  user.ModuleCode,
	}, nil
}

func (s *accountService) UpdateTeacherProfile(ctx context.Context, username string, req *TeacherProfileUpdateRequest) (models.TeacherProfile, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return models.TeacherProfile{}, errs
	}

	user, ok := s.store.GetUser(username)
	if !ok || user.Role != models.RoleTeacher {
		return models.TeacherProfile{}, ErrTeacherNotFound
	}

	user.ModuleTitle = req.ModuleTitle
	user.ModuleCode = req.ModuleCode
	s.store.SetUser(user)
	s.flusher.Trigger(s.store.Snapshot())

	return models.TeacherProfile{
		Username:    user.Username,
		ModuleTitle: user.ModuleTitle,
		ModuleCode:  user.ModuleCode,
	}, nil
}

func (s *accountService) ListUsers(ctx context.Context) ([]models.UserInfo, error) {
	users := s.store.ListUsers()
	out := make([]models.UserInfo, 0, len(users))
	for _, u := range users {
		out = append(out, u.Info())
	}
	return out, nil
}

func (s *accountService) UpdateUserAsAdmin(ctx context.Context, username string, req *AdminUserUpdateRequest) (models.UserInfo, error) {
	if errs := s.validator.GetBusinessValidator().Validate(req); len(errs) > 0 {
		return models.UserInfo{}, errs
	}

	user, ok := s.store.GetUser(username)
	if !ok {
		return models.UserInfo{}, ErrUserNotFound
	}

	if req.NewRole != "" {
		user.Role = req.NewRole
	}
	if req.Password != "" {
		user.Password = req.Password
	}
	if user.Role == models.RoleTeacher {
		if req.ModuleTitle != nil {
			user.ModuleTitle = *req.ModuleTitle
		}
		if req.ModuleCode != nil {
			user.ModuleCode = *req.ModuleCode
		}
	} else {
		// Leaving the teacher role always clears the module assignment.
		user.ModuleTitle = ""
		user.ModuleCode = ""
	}
	s.store.SetUser(user)
	s.flusher.Trigger(s.store.Snapshot())

	s.logger.Info("user updated by admin", "username", username, "role", user.Role)
	return user.Info(), nil
}
