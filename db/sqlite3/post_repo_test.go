package sqlite3_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nasermirzaei89/postdesk/db/sqlite3"
	"github.com/nasermirzaei89/postdesk/fakeapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()

	db, err := sqlite3.NewDB(ctx, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	err = sqlite3.MigrateUp(ctx, db)
	require.NoError(t, err)

	return db
}

func TestPostRepository(t *testing.T) {
	ctx := context.Background()
	repo := sqlite3.NewPostRepository(newTestDB(t))

	first := &fakeapi.Post{UserID: 1, Title: "first", Body: "one", CreatedAt: time.Now()}
	second := &fakeapi.Post{UserID: 2, Title: "second", Body: "two", CreatedAt: time.Now()}

	t.Run("insert assigns ids", func(t *testing.T) {
		require.NoError(t, repo.Insert(ctx, first))
		require.NoError(t, repo.Insert(ctx, second))

		assert.Positive(t, first.ID)
		assert.Greater(t, second.ID, first.ID)
	})

	t.Run("list in id order", func(t *testing.T) {
		posts, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, "first", posts[0].Title)
		assert.Equal(t, "second", posts[1].Title)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("update", func(t *testing.T) {
		first.Title = "first edited"
		require.NoError(t, repo.Update(ctx, first))

		found, err := repo.Find(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "first edited", found.Title)
		assert.Equal(t, "one", found.Body)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, second.ID))

		_, err := repo.Find(ctx, second.ID)

		notFoundErr := fakeapi.PostNotFoundError{}
		require.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, second.ID, notFoundErr.ID)
	})

	t.Run("missing rows", func(t *testing.T) {
		err := repo.Delete(ctx, 9999)
		require.ErrorAs(t, err, &fakeapi.PostNotFoundError{})

		err = repo.Update(ctx, &fakeapi.Post{ID: 9999, Title: "x"})
		require.ErrorAs(t, err, &fakeapi.PostNotFoundError{})
	})
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	repo := sqlite3.NewPostRepository(newTestDB(t))

	require.NoError(t, fakeapi.Seed(ctx, repo))
	require.NoError(t, fakeapi.Seed(ctx, repo))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
