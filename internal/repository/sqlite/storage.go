// Package sqlite stores lists and tasks in a single SQLite file through the
// pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"taskLists/internal/logger"
	"taskLists/internal/migrations"
	"taskLists/internal/models/list"
	"taskLists/internal/models/task"
	repo "taskLists/internal/repository"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	slowQuery = 100 * time.Millisecond

	// timestamps are stored as fixed width text so they sort and compare as
	// strings
	timeLayout = "2006-01-02T15:04:05.000000Z"

	listColumns = `id, name, color, created_at, updated_at`
	taskColumns = `id, list_id, title, description, due_date, is_completed, priority, created_at, updated_at`
)

type Storage struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// New opens (creating when needed) the database at path and applies the
// embedded migrations.
func New(ctx context.Context, path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	if err := migrations.UpSQLite(path); err != nil {
		logger.Error("Repository: sqlite migrations failed", err)
		return nil, err
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one writer at a time; this also keeps the pragmas on the only connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		logger.Error("Repository: ping failed", err)
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.Info("Repository: opened SQLite database", zap.String("path", path))
	return &Storage{db: db, path: path, now: time.Now}, nil
}

func (s *Storage) Close() {
	if err := s.db.Close(); err != nil {
		logger.Warn("Repository: closing SQLite database", zap.Error(err))
		return
	}
	logger.Info("Repository: SQLite database closed")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (s *Storage) GetAllLists(ctx context.Context) ([]*list.List, error) {
	defer warnIfSlow("get lists", time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT `+listColumns+` FROM lists ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("get lists: %w", err)
	}
	defer rows.Close()

	lists := []*list.List{}
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lists: %w", err)
	}
	return lists, nil
}

func (s *Storage) GetListByID(ctx context.Context, id int64) (*list.List, error) {
	defer warnIfSlow("get list", time.Now())
	return getList(ctx, s.db, id)
}

func (s *Storage) CreateList(ctx context.Context, l *list.List) error {
	defer warnIfSlow("create list", time.Now())

	now := repo.Timestamp(s.now())
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO lists (name, color, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		l.Name, l.Color, formatTime(now), formatTime(now))
	if err != nil {
		logger.Error("Repository: failed to create list", err)
		return fmt.Errorf("create list: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read list id: %w", err)
	}
	l.ID = id
	l.CreatedAt = now
	l.UpdatedAt = now
	return nil
}

// UpdateList reads, patches and writes the row inside one transaction.
func (s *Storage) UpdateList(ctx context.Context, id int64, patch list.Patch) (*list.List, error) {
	defer warnIfSlow("update list", time.Now())

	var updated *list.List
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		l, err := getList(ctx, tx, id)
		if err != nil {
			return err
		}

		patch.Apply(l)
		l.UpdatedAt = repo.NextUpdatedAt(l.UpdatedAt, s.now())

		_, err = tx.ExecContext(ctx,
			`UPDATE lists SET name = ?, color = ?, updated_at = ? WHERE id = ?`,
			l.Name, l.Color, formatTime(l.UpdatedAt), id)
		if err != nil {
			return fmt.Errorf("update list: %w", err)
		}
		updated = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Storage) DeleteList(ctx context.Context, id int64) (bool, error) {
	defer warnIfSlow("delete list", time.Now())

	res, err := s.db.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id)
	if err != nil {
		logger.Error("Repository: failed to delete list", err, zap.Int64("list_id", id))
		return false, fmt.Errorf("delete list: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete list: %w", err)
	}
	return n > 0, nil
}

func (s *Storage) GetTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	defer warnIfSlow("get tasks", time.Now())

	var (
		conds []string
		args  []any
	)
	if filter.ListID != nil {
		conds = append(conds, "list_id = ?")
		args = append(args, *filter.ListID)
	}
	if filter.WithoutList {
		conds = append(conds, "list_id IS NULL")
	}
	if filter.Completed != nil {
		conds = append(conds, "is_completed = ?")
		args = append(args, *filter.Completed)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (s *Storage) GetTaskByID(ctx context.Context, id int64) (*task.Task, error) {
	defer warnIfSlow("get task", time.Now())
	return getTask(ctx, s.db, id)
}

func (s *Storage) CreateTask(ctx context.Context, t *task.Task) error {
	defer warnIfSlow("create task", time.Now())

	now := repo.Timestamp(s.now())
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (list_id, title, description, due_date, is_completed, priority, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ListID, t.Title, t.Description, formatTimePtr(t.DueDate), t.IsCompleted, int(t.Priority),
		formatTime(now), formatTime(now))
	if err != nil {
		if isForeignKeyViolation(err) {
			return repo.ErrListNotFound
		}
		logger.Error("Repository: failed to create task", err)
		return fmt.Errorf("create task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read task id: %w", err)
	}
	t.ID = id
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.DueDate != nil {
		due := repo.Timestamp(*t.DueDate)
		t.DueDate = &due
	}
	return nil
}

func (s *Storage) UpdateTask(ctx context.Context, id int64, patch task.Patch) (*task.Task, error) {
	defer warnIfSlow("update task", time.Now())

	var updated *task.Task
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		t, err := getTask(ctx, tx, id)
		if err != nil {
			return err
		}

		patch.Apply(t)
		t.UpdatedAt = repo.NextUpdatedAt(t.UpdatedAt, s.now())
		if t.DueDate != nil {
			due := repo.Timestamp(*t.DueDate)
			t.DueDate = &due
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE tasks SET list_id = ?, title = ?, description = ?, due_date = ?,
				is_completed = ?, priority = ?, updated_at = ?
			WHERE id = ?`,
			t.ListID, t.Title, t.Description, formatTimePtr(t.DueDate),
			t.IsCompleted, int(t.Priority), formatTime(t.UpdatedAt), id)
		if err != nil {
			if isForeignKeyViolation(err) {
				return repo.ErrListNotFound
			}
			return fmt.Errorf("update task: %w", err)
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Storage) DeleteTask(ctx context.Context, id int64) (bool, error) {
	defer warnIfSlow("delete task", time.Now())

	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		logger.Error("Repository: failed to delete task", err, zap.Int64("task_id", id))
		return false, fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return n > 0, nil
}

func (s *Storage) DeleteTasksByList(ctx context.Context, listID int64) (int64, error) {
	defer warnIfSlow("delete tasks of list", time.Now())

	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE list_id = ?`, listID)
	if err != nil {
		logger.Error("Repository: failed to delete tasks of list", err, zap.Int64("list_id", listID))
		return 0, fmt.Errorf("delete tasks of list: %w", err)
	}
	return res.RowsAffected()
}

func (s *Storage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func getList(ctx context.Context, q querier, id int64) (*list.List, error) {
	l, err := scanList(q.QueryRowContext(ctx, `SELECT `+listColumns+` FROM lists WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

func getTask(ctx context.Context, q querier, id int64) (*task.Task, error) {
	t, err := scanTask(q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func scanList(row scanner) (*list.List, error) {
	var (
		l                    = &list.List{}
		color                sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&l.ID, &l.Name, &color, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if color.Valid {
		l.Color = &color.String
	}

	var err error
	if l.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if l.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return l, nil
}

func scanTask(row scanner) (*task.Task, error) {
	var (
		t                    = &task.Task{}
		listID               sql.NullInt64
		description, dueDate sql.NullString
		prio                 int
		createdAt, updatedAt string
	)
	err := row.Scan(&t.ID, &listID, &t.Title, &description, &dueDate, &t.IsCompleted, &prio, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	t.Priority = task.Priority(prio)
	if listID.Valid {
		t.ListID = &listID.Int64
	}
	if description.Valid {
		t.Description = &description.String
	}
	if dueDate.Valid {
		due, err := parseTime(dueDate.String)
		if err != nil {
			return nil, err
		}
		t.DueDate = &due
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func formatTime(t time.Time) string {
	return repo.Timestamp(t).Format(timeLayout)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return t, nil
}

// modernc reports constraint failures only through the message text.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func warnIfSlow(op string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: slow query", zap.String("op", op), zap.Duration("ms", elapsed))
	}
}
