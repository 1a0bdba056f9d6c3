package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-collab-api/internal/models"
	"github.com/yukikurage/project-collab-api/internal/testutil"
	"github.com/yukikurage/project-collab-api/internal/utils"
	"gorm.io/gorm"
)

func TestNotificationRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice", models.RoleTeamLeader)
	bob := testutil.CreateUser(t, db, "bob", models.RoleTeamMember)
	project := testutil.CreateProject(t, db, "X", alice, bob)

	base := time.Now().Add(-time.Hour)
	for i, title := range []string{"first", "second", "third"} {
		n := &models.Notification{
			RecipientID: bob.ID,
			Type:        models.NotificationTaskUpdated,
			Title:       title,
			ProjectID:   &project.ID,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, n))
	}
	aliceNote := &models.Notification{RecipientID: alice.ID, Type: models.NotificationCommentAdded, Title: "mine"}
	require.NoError(t, repo.Create(ctx, aliceNote))

	t.Run("lists newest first with project", func(t *testing.T) {
		list, total, err := repo.ListForRecipient(ctx, bob.ID, utils.PaginationParams{Page: 1, Limit: 2, Offset: 0})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, list, 2)
		assert.Equal(t, "third", list[0].Title)
		assert.Equal(t, "second", list[1].Title)
		require.NotNil(t, list[0].Project)
		assert.Equal(t, "X", list[0].Project.Name)
	})

	t.Run("zero window falls back to the default page", func(t *testing.T) {
		list, total, err := repo.ListForRecipient(ctx, bob.ID, utils.PaginationParams{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, list, 3)
		assert.Equal(t, "third", list[0].Title)

		list, _, err = repo.ListForRecipient(ctx, bob.ID, utils.NewPaginationParams(2, 2))
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "first", list[0].Title)
	})

	t.Run("mark read is idempotent and recipient scoped", func(t *testing.T) {
		unread, err := repo.CountUnread(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), unread)

		_, err = repo.MarkRead(ctx, aliceNote.ID, bob.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		for i := 0; i < 2; i++ {
			n, err := repo.MarkRead(ctx, aliceNote.ID, alice.ID)
			require.NoError(t, err)
			assert.True(t, n.IsRead)
		}

		unread, err = repo.CountUnread(ctx, alice.ID)
		require.NoError(t, err)
		assert.Zero(t, unread)

		_, err = repo.MarkRead(ctx, uuid.New(), alice.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("mark all read", func(t *testing.T) {
		updated, err := repo.MarkAllRead(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), updated)

		unread, err := repo.CountUnread(ctx, bob.ID)
		require.NoError(t, err)
		assert.Zero(t, unread)

		updated, err = repo.MarkAllRead(ctx, bob.ID)
		require.NoError(t, err)
		assert.Zero(t, updated)
	})
}

func TestActivityRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice", models.RoleTeamLeader)
	project := testutil.CreateProject(t, db, "X", alice)

	first := &models.Activity{
		Action:    models.ActionMovedTask,
		UserID:    alice.ID,
		ProjectID: project.ID,
		Details:   "moved",
		Metadata:  map[string]interface{}{"from": "todo", "to": "done"},
		CreatedAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, &models.Activity{Action: models.ActionCreatedTask, UserID: alice.ID, ProjectID: project.ID, Details: "created"}))

	found, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.User.Name)
	assert.Equal(t, "done", found.Metadata["to"])

	list, total, err := repo.ListByProject(ctx, project.ID, utils.PaginationParams{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, models.ActionCreatedTask, list[0].Action)
}

func TestCommentRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice", models.RoleTeamLeader)
	project := testutil.CreateProject(t, db, "X", alice)
	task := testutil.CreateTask(t, db, "t", project, alice, nil)

	older := &models.Comment{Text: "one", TaskID: task.ID, UserID: alice.ID, CreatedAt: time.Now().Add(-time.Minute)}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, &models.Comment{Text: "two", TaskID: task.ID, UserID: alice.ID}))

	found, err := repo.FindByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.User.Name)

	list, err := repo.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "one", list[0].Text)
	assert.Equal(t, "two", list[1].Text)
}
