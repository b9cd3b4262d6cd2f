package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/yukikurage/group-study-api/internal/auth"
	"github.com/yukikurage/group-study-api/internal/authz"
	"github.com/yukikurage/group-study-api/internal/repository"
	"github.com/yukikurage/group-study-api/internal/testutil"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// fakeVerifier answers every assertion with identity or err.
type fakeVerifier struct {
	identity *auth.ExternalIdentity
	err      error
	calls    int
}

func (f *fakeVerifier) Verify(_ context.Context, _ string) (*auth.ExternalIdentity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	identity := *f.identity
	return &identity, nil
}

type fixture struct {
	db          *gorm.DB
	users       repository.UserRepository
	classes     repository.ClassRepository
	memberships repository.MembershipRepository
	tasks       repository.TaskRepository
	submissions repository.SubmissionRepository
	feedback    repository.FeedbackRepository
	invitations repository.InvitationRepository
	authz       *authz.Authorizer
	tokens      *auth.TokenService
	verifier    *fakeVerifier
	logger      *slog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	memberships := repository.NewMembershipRepository(db)
	return &fixture{
		db:          db,
		users:       repository.NewUserRepository(db),
		classes:     repository.NewClassRepository(db),
		memberships: memberships,
		tasks:       repository.NewTaskRepository(db),
		submissions: repository.NewSubmissionRepository(db),
		feedback:    repository.NewFeedbackRepository(db),
		invitations: repository.NewInvitationRepository(db),
		authz:       authz.NewAuthorizer(memberships),
		tokens:      auth.NewTokenService(testSecret, "group-study-test", 15*time.Minute, time.Hour),
		verifier:    &fakeVerifier{},
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (f *fixture) authService(rotate bool) *AuthService {
	return NewAuthService(f.users, f.tokens, auth.NewPasswordService(bcrypt.MinCost), f.verifier, rotate, f.logger)
}

func (f *fixture) classService() *ClassService {
	return NewClassService(f.classes, f.memberships, f.authz)
}

func (f *fixture) taskService() *TaskService {
	return NewTaskService(f.tasks, f.authz, f.logger)
}

func (f *fixture) submissionService() *SubmissionService {
	return NewSubmissionService(f.submissions, f.tasks, f.authz)
}

func (f *fixture) feedbackService() *FeedbackService {
	return NewFeedbackService(f.feedback, f.submissions, f.tasks, f.authz)
}

func (f *fixture) invitationService() *InvitationService {
	return NewInvitationService(f.invitations, f.users, f.memberships, f.authz, 24*time.Hour)
}
