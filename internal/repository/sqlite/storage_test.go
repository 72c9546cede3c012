package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"taskLists/internal/models/task"
	"taskLists/internal/repository/repotest"
	"taskLists/internal/repository/sqlite"
	"taskLists/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SQLiteTestSuite struct {
	repotest.StorageSuite
	dir     string
	counter int
}

func (s *SQLiteTestSuite) SetupSuite() {
	s.dir = s.T().TempDir()
	s.NewStorage = func() service.Storage {
		s.counter++
		storage, err := sqlite.New(context.Background(), filepath.Join(s.dir, fmt.Sprintf("tasks-%d.db", s.counter)))
		s.Require().NoError(err)
		return storage
	}
}

func (s *SQLiteTestSuite) TearDownTest() {
	if s.Storage != nil {
		s.Storage.Close()
	}
}

func TestSQLiteStorageSuite(t *testing.T) {
	suite.Run(t, new(SQLiteTestSuite))
}

func TestStorage_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tasks.db")

	storage, err := sqlite.New(ctx, path)
	require.NoError(t, err)
	created := &task.Task{Title: "persistente", Priority: task.PriorityLow}
	require.NoError(t, storage.CreateTask(ctx, created))
	storage.Close()

	reopened, err := sqlite.New(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetTaskByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "persistente", got.Title)
	assert.Equal(t, task.PriorityLow, got.Priority)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}
