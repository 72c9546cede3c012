package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskLists/internal/logger"
	"taskLists/internal/migrations"
	"taskLists/internal/models/list"
	"taskLists/internal/models/task"
	repo "taskLists/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	slowQuery = 100 * time.Millisecond

	foreignKeyViolation = "23503"

	// every write moves updated_at forward, even inside the same microsecond
	touchUpdatedAt = "updated_at = GREATEST(NOW(), updated_at + interval '1 microsecond')"

	listColumns = `id, name, color, created_at, updated_at`
	taskColumns = `id, list_id, title, description, due_date, is_completed, priority, created_at, updated_at`
)

type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

type Storage struct {
	pool *pgxpool.Pool
	url  string
}

func New(ctx context.Context, connString string, poolCfg PoolConfig) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: failed to parse connection string", err)
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5
	if poolCfg.MaxConns > 0 {
		config.MaxConns = poolCfg.MaxConns
	}
	if poolCfg.MinConns > 0 {
		config.MinConns = poolCfg.MinConns
	}
	if poolCfg.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = poolCfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: failed to create pool", err)
		return nil, fmt.Errorf("create pool: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		logger.Error("Repository: ping failed", err)
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.Info("Repository: connected to PostgreSQL")
	return &Storage{pool: pool, url: connString}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: PostgreSQL connections closed")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Migrate brings the schema up to the latest embedded version.
func (s *Storage) Migrate() error {
	return migrations.UpPostgres(s.url)
}

func (s *Storage) GetAllLists(ctx context.Context) ([]*list.List, error) {
	start := time.Now()
	defer warnIfSlow("get lists", start)

	rows, err := s.pool.Query(ctx, `SELECT `+listColumns+` FROM lists ORDER BY id`)
	if err != nil {
		logger.Error("Repository: failed to get lists", err, zap.Duration("ms", time.Since(start)))
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
		logger.Error("Repository: row iteration failed", err)
		return nil, fmt.Errorf("iterate lists: %w", err)
	}
	return lists, nil
}

func (s *Storage) GetListByID(ctx context.Context, id int64) (*list.List, error) {
	start := time.Now()
	defer warnIfSlow("get list", start)

	l, err := scanList(s.pool.QueryRow(ctx, `SELECT `+listColumns+` FROM lists WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to get list", err, zap.Int64("list_id", id))
		return nil, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

func (s *Storage) CreateList(ctx context.Context, l *list.List) error {
	start := time.Now()
	defer warnIfSlow("create list", start)

	query := `INSERT INTO lists (name, color)
				VALUES ($1, $2)
				RETURNING id, created_at, updated_at`

	err := s.pool.QueryRow(ctx, query, l.Name, l.Color).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		logger.Error("Repository: failed to create list", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("create list: %w", err)
	}
	l.CreatedAt = repo.Timestamp(l.CreatedAt)
	l.UpdatedAt = repo.Timestamp(l.UpdatedAt)
	return nil
}

func (s *Storage) UpdateList(ctx context.Context, id int64, patch list.Patch) (*list.List, error) {
	start := time.Now()
	defer warnIfSlow("update list", start)

	set := newSetClause()
	if patch.Name.IsSet() {
		set.add("name", patch.Name.Ptr())
	}
	if patch.Color.IsSet() {
		set.add("color", patch.Color.Ptr())
	}

	query, args := set.build("lists", id, listColumns)
	l, err := scanList(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to update list", err, zap.Int64("list_id", id))
		return nil, fmt.Errorf("update list: %w", err)
	}
	return l, nil
}

// DeleteList relies on ON DELETE SET NULL to detach the tasks.
func (s *Storage) DeleteList(ctx context.Context, id int64) (bool, error) {
	start := time.Now()
	defer warnIfSlow("delete list", start)

	tag, err := s.pool.Exec(ctx, `DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: failed to delete list", err, zap.Int64("list_id", id))
		return false, fmt.Errorf("delete list: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Storage) GetTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("get tasks", start)

	var (
		conds []string
		args  []any
	)
	if filter.ListID != nil {
		args = append(args, *filter.ListID)
		conds = append(conds, fmt.Sprintf("list_id = $%d", len(args)))
	}
	if filter.WithoutList {
		conds = append(conds, "list_id IS NULL")
	}
	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		conds = append(conds, fmt.Sprintf("is_completed = $%d", len(args)))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: failed to get tasks", err, zap.Duration("ms", time.Since(start)))
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
		logger.Error("Repository: row iteration failed", err)
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (s *Storage) GetTaskByID(ctx context.Context, id int64) (*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("get task", start)

	t, err := scanTask(s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to get task", err, zap.Int64("task_id", id))
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *Storage) CreateTask(ctx context.Context, t *task.Task) error {
	start := time.Now()
	defer warnIfSlow("create task", start)

	query := `INSERT INTO tasks
				(list_id, title, description, due_date, is_completed, priority)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id, created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		t.ListID,
		t.Title,
		t.Description,
		t.DueDate,
		t.IsCompleted,
		int16(t.Priority),
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repo.ErrListNotFound
		}
		logger.Error("Repository: failed to create task", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("create task: %w", err)
	}

	t.CreatedAt = repo.Timestamp(t.CreatedAt)
	t.UpdatedAt = repo.Timestamp(t.UpdatedAt)
	if t.DueDate != nil {
		due := repo.Timestamp(*t.DueDate)
		t.DueDate = &due
	}
	return nil
}

func (s *Storage) UpdateTask(ctx context.Context, id int64, patch task.Patch) (*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("update task", start)

	set := newSetClause()
	if patch.ListID.IsSet() {
		set.add("list_id", patch.ListID.Ptr())
	}
	if patch.Title.IsSet() {
		set.add("title", patch.Title.Ptr())
	}
	if patch.Description.IsSet() {
		set.add("description", patch.Description.Ptr())
	}
	if patch.DueDate.IsSet() {
		set.add("due_date", patch.DueDate.Ptr())
	}
	if done, ok := patch.IsCompleted.Get(); ok {
		set.add("is_completed", done)
	}
	if prio, ok := patch.Priority.Get(); ok {
		set.add("priority", int16(prio))
	}

	query, args := set.build("tasks", id, taskColumns)
	t, err := scanTask(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, repo.ErrNotFound
		case isForeignKeyViolation(err):
			return nil, repo.ErrListNotFound
		}
		logger.Error("Repository: failed to update task", err, zap.Int64("task_id", id))
		return nil, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

func (s *Storage) DeleteTask(ctx context.Context, id int64) (bool, error) {
	start := time.Now()
	defer warnIfSlow("delete task", start)

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: failed to delete task", err, zap.Int64("task_id", id))
		return false, fmt.Errorf("delete task: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Storage) DeleteTasksByList(ctx context.Context, listID int64) (int64, error) {
	start := time.Now()
	defer warnIfSlow("delete tasks of list", start)

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE list_id = $1`, listID)
	if err != nil {
		logger.Error("Repository: failed to delete tasks of list", err, zap.Int64("list_id", listID))
		return 0, fmt.Errorf("delete tasks of list: %w", err)
	}
	return tag.RowsAffected(), nil
}

// setClause builds the SET part of a partial update. Only the fields present
// in the patch are written; updated_at always is.
type setClause struct {
	sets []string
	args []any
}

func newSetClause() *setClause {
	return &setClause{}
}

func (c *setClause) add(column string, value any) {
	c.args = append(c.args, value)
	c.sets = append(c.sets, fmt.Sprintf("%s = $%d", column, len(c.args)))
}

func (c *setClause) build(table string, id int64, returning string) (string, []any) {
	sets := append(c.sets, touchUpdatedAt)
	args := append(c.args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		table, strings.Join(sets, ", "), len(args), returning)
	return query, args
}

func scanList(row pgx.Row) (*list.List, error) {
	l := &list.List{}
	err := row.Scan(&l.ID, &l.Name, &l.Color, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.CreatedAt = repo.Timestamp(l.CreatedAt)
	l.UpdatedAt = repo.Timestamp(l.UpdatedAt)
	return l, nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	var (
		t    = &task.Task{}
		prio int16
	)
	err := row.Scan(
		&t.ID,
		&t.ListID,
		&t.Title,
		&t.Description,
		&t.DueDate,
		&t.IsCompleted,
		&prio,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Priority = task.Priority(prio)
	t.CreatedAt = repo.Timestamp(t.CreatedAt)
	t.UpdatedAt = repo.Timestamp(t.UpdatedAt)
	if t.DueDate != nil {
		due := repo.Timestamp(*t.DueDate)
		t.DueDate = &due
	}
	return t, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

func warnIfSlow(op string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: slow query", zap.String("op", op), zap.Duration("ms", elapsed))
	}
}
