package auth

import (
	"errors"
	"testing"

	"github.com/smartapp-edu/records-service/internal/models"
)

func TestCanManageMarks(t *testing.T) {
	p := NewAssertedPolicy()
	tests := []struct {
		name    string
		scope   Scope
		wantErr bool
	}{
		{name: "teacher scope", scope: Scope{Teacher: "bob"}},
		{name: "admin role", scope: Scope{Role: models.RoleAdmin}},
		{name: "student role", scope: Scope{Role: models.RoleStudent}, wantErr: true},
		{name: "no scope at all", scope: Scope{}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.CanManageMarks(tt.scope)
			if (err != nil) != tt.wantErr {
				t.Errorf("CanManageMarks() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrForbidden) {
				t.Errorf("error = %v, want ErrForbidden", err)
			}
		})
	}
}

func TestCanMutateMark(t *testing.T) {
	p := NewAssertedPolicy()
	mark := models.Mark{ID: 1, StudentUsername: "alice", Course: "Math", CreatedBy: "bob"}

	tests := []struct {
		name    string
		scope   Scope
		wantErr bool
	}{
		{name: "owning teacher", scope: Scope{Teacher: "bob"}},
		{name: "other teacher", scope: Scope{Teacher: "carol"}, wantErr: true},
		{name: "admin without teacher param", scope: Scope{Role: models.RoleAdmin}},
		{name: "plain student", scope: Scope{Role: models.RoleStudent}, wantErr: true},
		// A teacher param always wins over the asserted role, so an admin
		// asserting someone else's teacher identity is still rejected.
		{name: "admin with foreign teacher param", scope: Scope{Role: models.RoleAdmin, Teacher: "carol"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.CanMutateMark(tt.scope, mark)
			if (err != nil) != tt.wantErr {
				t.Errorf("CanMutateMark() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCanViewStudentMarks(t *testing.T) {
	p := NewAssertedPolicy()

	if err := p.CanViewStudentMarks(Scope{Role: models.RoleTeacher}); !errors.Is(err, ErrForbidden) {
		t.Errorf("teacher role without identity: error = %v, want ErrForbidden", err)
	}
	if err := p.CanViewStudentMarks(Scope{Role: models.RoleTeacher, Teacher: "bob"}); err != nil {
		t.Errorf("teacher with identity: error = %v", err)
	}
	if err := p.CanViewStudentMarks(Scope{}); err != nil {
		t.Errorf("student's own view: error = %v", err)
	}
}

func TestCanManageUsers(t *testing.T) {
	p := NewAssertedPolicy()

	if err := p.CanManageUsers(Scope{Role: models.RoleAdmin}); err != nil {
		t.Errorf("admin: error = %v", err)
	}
	if err := p.CanManageUsers(Scope{Teacher: "bob"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("teacher: error = %v, want ErrForbidden", err)
	}
}
