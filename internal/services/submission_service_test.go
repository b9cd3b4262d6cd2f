package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/models"
	"github.com/yukikurage/group-study-api/internal/testutil"
)

type classmates struct {
	admin, expert, member, peer, outsider *models.User
	class                                 *models.Class
	task                                  *models.Task
}

func seedClassmates(t *testing.T, f *fixture) *classmates {
	t.Helper()
	c := &classmates{
		admin:    testutil.CreateUser(t, f.db, "admin@example.com"),
		expert:   testutil.CreateUser(t, f.db, "expert@example.com"),
		member:   testutil.CreateUser(t, f.db, "member@example.com"),
		peer:     testutil.CreateUser(t, f.db, "peer@example.com"),
		outsider: testutil.CreateUser(t, f.db, "outsider@example.com"),
	}
	c.class = testutil.CreateClass(t, f.db, "Algebra", "ALG0001", c.admin)
	testutil.AddRole(t, f.db, c.class, c.expert, models.RoleExpert)
	testutil.AddRole(t, f.db, c.class, c.member, models.RoleMember)
	testutil.AddRole(t, f.db, c.class, c.peer, models.RoleMember)
	c.task = testutil.CreateTask(t, f.db, c.class, c.admin, testutil.Tomorrow())
	return c
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)
	svc := f.submissionService()
	c := seedClassmates(t, f)
	ctx := context.Background()

	sub, err := svc.Submit(ctx, c.task, c.member.ID, " https://docs.example.com/answer ")
	require.NoError(t, err)
	assert.Equal(t, "https://docs.example.com/answer", sub.Document)
	assert.False(t, sub.SubmittedAt.IsZero())

	_, err = svc.Submit(ctx, c.task, c.member.ID, "answer.pdf")
	assert.ErrorIs(t, err, apierrors.ErrInvalidRequest)

	_, err = svc.Submit(ctx, c.task, c.outsider.ID, "https://docs.example.com/answer")
	assert.ErrorIs(t, err, apierrors.ErrNotFound)

	c.task.Status = models.TaskStatusCompleted
	require.NoError(t, f.db.Save(c.task).Error)
	_, err = svc.Submit(ctx, c.task, c.peer.ID, "https://docs.example.com/late")
	assert.ErrorIs(t, err, apierrors.ErrInvalidRequest)
}

func TestListForTask_Visibility(t *testing.T) {
	f := newFixture(t)
	svc := f.submissionService()
	c := seedClassmates(t, f)
	testutil.CreateSubmission(t, f.db, c.task, c.member)
	testutil.CreateSubmission(t, f.db, c.task, c.peer)
	ctx := context.Background()

	all, err := svc.ListForTask(ctx, c.task, c.expert.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.ListForTask(ctx, c.task, c.member.ID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, c.member.ID, own[0].UserID)

	_, err = svc.ListForTask(ctx, c.task, c.outsider.ID)
	assert.ErrorIs(t, err, apierrors.ErrNotFound)
}

func TestSubmissionOwnership(t *testing.T) {
	f := newFixture(t)
	svc := f.submissionService()
	c := seedClassmates(t, f)
	sub := testutil.CreateSubmission(t, f.db, c.task, c.member)
	ctx := context.Background()

	_, err := svc.Get(ctx, sub.ID, c.peer.ID)
	assert.ErrorIs(t, err, apierrors.ErrNotFound)

	updated, err := svc.Update(ctx, sub.ID, c.member.ID, "ftp://files.example.com/v2")
	require.NoError(t, err)
	assert.Equal(t, "ftp://files.example.com/v2", updated.Document)

	assert.ErrorIs(t, svc.Delete(ctx, sub.ID, c.admin.ID), apierrors.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, sub.ID, c.member.ID))
	_, err = svc.Get(ctx, sub.ID, c.member.ID)
	assert.ErrorIs(t, err, apierrors.ErrNotFound)
}

func TestUpvote(t *testing.T) {
	f := newFixture(t)
	svc := f.submissionService()
	c := seedClassmates(t, f)
	sub := testutil.CreateSubmission(t, f.db, c.task, c.member)
	ctx := context.Background()

	_, err := svc.Upvote(ctx, sub.ID, c.peer.ID)
	require.NoError(t, err)
	_, err = svc.Upvote(ctx, sub.ID, c.expert.ID)
	require.NoError(t, err)
	voted, err := svc.Upvote(ctx, sub.ID, c.expert.ID)
	require.NoError(t, err)

	users, experts := voted.VotersByKind()
	assert.Equal(t, []string{c.peer.ID}, users)
	assert.Equal(t, []string{c.expert.ID}, experts)

	_, err = svc.Upvote(ctx, sub.ID, c.member.ID)
	assert.ErrorIs(t, err, apierrors.ErrInvalidRequest)
	_, err = svc.Upvote(ctx, sub.ID, c.outsider.ID)
	assert.ErrorIs(t, err, apierrors.ErrNotFound)

	removed, err := svc.RemoveUpvote(ctx, sub.ID, c.expert.ID)
	require.NoError(t, err)
	_, experts = removed.VotersByKind()
	assert.Empty(t, experts)
}

func TestUpvoteKindFollowsRoleInTheTasksClass(t *testing.T) {
	f := newFixture(t)
	svc := f.submissionService()
	c := seedClassmates(t, f)
	other := testutil.CreateClass(t, f.db, "Geometry", "GEO0001", c.admin)
	testutil.AddRole(t, f.db, other, c.expert, models.RoleMember)
	otherTask := testutil.CreateTask(t, f.db, other, c.admin, testutil.Tomorrow())
	sub := testutil.CreateSubmission(t, f.db, otherTask, c.admin)

	voted, err := svc.Upvote(context.Background(), sub.ID, c.expert.ID)
	require.NoError(t, err)
	users, experts := voted.VotersByKind()
	assert.Equal(t, []string{c.expert.ID}, users)
	assert.Empty(t, experts)
}
