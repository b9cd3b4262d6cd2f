package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/models"
	"github.com/yukikurage/group-study-api/internal/testutil"
	"github.com/yukikurage/group-study-api/internal/utils"
)

func TestCreateTask_DueDate(t *testing.T) {
	f := newFixture(t)
	svc := f.taskService()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	creator := testutil.CreateUser(t, f.db, "creator@example.com")
	class := testutil.CreateClass(t, f.db, "Algebra", "ALG0001", creator)
	ctx := context.Background()

	tests := []struct {
		name    string
		due     time.Time
		wantErr bool
	}{
		{"past", now.Add(-time.Hour), true},
		{"exactly now", now, true},
		{"future", now.Add(time.Minute), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := svc.CreateTask(ctx, class, creator.ID, CreateTaskInput{Title: "Homework", DueDate: tt.due})
			if tt.wantErr {
				assert.ErrorIs(t, err, apierrors.ErrInvalidRequest)
				var domainErr *apierrors.Error
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, "due_date", domainErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.TaskStatusOngoing, task.Status)
			assert.Equal(t, creator.ID, task.CreatedByID)
		})
	}
}

func TestCreateTask_Validation(t *testing.T) {
	f := newFixture(t)
	svc := f.taskService()
	creator := testutil.CreateUser(t, f.db, "creator@example.com")
	class := testutil.CreateClass(t, f.db, "Algebra", "ALG0001", creator)
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, class, creator.ID, CreateTaskInput{Title: "  ", DueDate: testutil.Tomorrow()})
	assert.ErrorIs(t, err, apierrors.ErrInvalidRequest)

	bad := "docs.example.com/brief"
	_, err = svc.CreateTask(ctx, class, creator.ID, CreateTaskInput{Title: "Read", DueDate: testutil.Tomorrow(), Document: &bad})
	assert.ErrorIs(t, err, apierrors.ErrInvalidRequest)

	good := "https://docs.example.com/brief"
	task, err := svc.CreateTask(ctx, class, creator.ID, CreateTaskInput{Title: "Read", DueDate: testutil.Tomorrow(), Document: &good})
	require.NoError(t, err)
	require.NotNil(t, task.Document)
	assert.Equal(t, good, *task.Document)
}

func TestTaskPermissionsArePerClass(t *testing.T) {
	f := newFixture(t)
	svc := f.taskService()
	admin := testutil.CreateUser(t, f.db, "admin@example.com")
	user := testutil.CreateUser(t, f.db, "user@example.com")
	c1 := testutil.CreateClass(t, f.db, "One", "ONE0001", admin)
	c2 := testutil.CreateClass(t, f.db, "Two", "TWO0002", admin)
	testutil.AddRole(t, f.db, c1, user, models.RoleExpert)
	testutil.AddRole(t, f.db, c2, user, models.RoleMember)
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, c1, user.ID, CreateTaskInput{Title: "Quiz", DueDate: testutil.Tomorrow()})
	assert.NoError(t, err)

	_, err = svc.CreateTask(ctx, c2, user.ID, CreateTaskInput{Title: "Quiz", DueDate: testutil.Tomorrow()})
	assert.ErrorIs(t, err, apierrors.ErrForbidden)

	// validation never runs for a caller who may not create
	_, err = svc.CreateTask(ctx, c2, user.ID, CreateTaskInput{Title: "", DueDate: time.Now().Add(-time.Hour)})
	assert.ErrorIs(t, err, apierrors.ErrForbidden)
}

func TestTaskAccess(t *testing.T) {
	f := newFixture(t)
	svc := f.taskService()
	admin := testutil.CreateUser(t, f.db, "admin@example.com")
	expert := testutil.CreateUser(t, f.db, "expert@example.com")
	member := testutil.CreateUser(t, f.db, "member@example.com")
	outsider := testutil.CreateUser(t, f.db, "outsider@example.com")
	class := testutil.CreateClass(t, f.db, "Algebra", "ALG0001", admin)
	testutil.AddRole(t, f.db, class, expert, models.RoleExpert)
	testutil.AddRole(t, f.db, class, member, models.RoleMember)
	task := testutil.CreateTask(t, f.db, class, admin, testutil.Tomorrow())
	ctx := context.Background()

	_, err := svc.GetTask(ctx, task, member.ID)
	assert.NoError(t, err)
	_, err = svc.GetTask(ctx, task, outsider.ID)
	assert.ErrorIs(t, err, apierrors.ErrNotFound)

	title := "Renamed"
	_, err = svc.UpdateTask(ctx, task, member.ID, UpdateTaskInput{Title: &title})
	assert.ErrorIs(t, err, apierrors.ErrForbidden)
	updated, err := svc.UpdateTask(ctx, task, expert.ID, UpdateTaskInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	_, _, err = svc.ListTasks(ctx, class, outsider.ID, ListTasksInput{})
	assert.ErrorIs(t, err, apierrors.ErrForbidden)
	tasks, total, err := svc.ListTasks(ctx, class, member.ID, ListTasksInput{Pagination: utils.PaginationParams{Page: 1, Limit: 20}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, tasks, 1)

	assert.ErrorIs(t, svc.DeleteTask(ctx, task, member.ID), apierrors.ErrForbidden)
	require.NoError(t, svc.DeleteTask(ctx, task, expert.ID))
	_, err = svc.FindTask(ctx, task.ID)
	assert.ErrorIs(t, err, apierrors.ErrNotFound)
}

func TestCompleteOverdue_DueDatesFromOtherZones(t *testing.T) {
	f := newFixture(t)
	svc := f.taskService()
	base := time.Now().UTC().Truncate(time.Second)
	svc.now = func() time.Time { return base }

	creator := testutil.CreateUser(t, f.db, "creator@example.com")
	class := testutil.CreateClass(t, f.db, "Algebra", "ALG0001", creator)
	ctx := context.Background()

	tokyo := time.FixedZone("UTC+9", 9*60*60)
	newYork := time.FixedZone("UTC-5", -5*60*60)
	overdue, err := svc.CreateTask(ctx, class, creator.ID, CreateTaskInput{Title: "Quiz", DueDate: base.Add(time.Hour).In(tokyo)})
	require.NoError(t, err)
	upcoming, err := svc.CreateTask(ctx, class, creator.ID, CreateTaskInput{Title: "Essay", DueDate: base.Add(3 * time.Hour).In(newYork)})
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(2 * time.Hour) }
	updated, err := svc.CompleteOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	reloaded, err := svc.FindTask(ctx, overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, reloaded.Status)
	assert.True(t, reloaded.DueDate.Equal(base.Add(time.Hour)))

	reloaded, err = svc.FindTask(ctx, upcoming.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusOngoing, reloaded.Status)
}

func TestUpdateTask_StoresDueDateInUTC(t *testing.T) {
	f := newFixture(t)
	svc := f.taskService()
	creator := testutil.CreateUser(t, f.db, "creator@example.com")
	class := testutil.CreateClass(t, f.db, "Algebra", "ALG0001", creator)
	task := testutil.CreateTask(t, f.db, class, creator, testutil.Tomorrow())

	due := testutil.Tomorrow().Add(time.Hour).In(time.FixedZone("UTC+9", 9*60*60))
	updated, err := svc.UpdateTask(context.Background(), task, creator.ID, UpdateTaskInput{DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, updated.DueDate.Location())
	assert.True(t, updated.DueDate.Equal(due))
}

func TestCompleteOverdue_Idempotent(t *testing.T) {
	f := newFixture(t)
	svc := f.taskService()
	creator := testutil.CreateUser(t, f.db, "creator@example.com")
	class := testutil.CreateClass(t, f.db, "Algebra", "ALG0001", creator)
	overdue := testutil.CreateTask(t, f.db, class, creator, time.Now().Add(-time.Hour))
	upcoming := testutil.CreateTask(t, f.db, class, creator, testutil.Tomorrow())
	ctx := context.Background()

	updated, err := svc.CompleteOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	updated, err = svc.CompleteOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, updated)

	reloaded, err := svc.FindTask(ctx, overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, reloaded.Status)

	reloaded, err = svc.FindTask(ctx, upcoming.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusOngoing, reloaded.Status)
}
