package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dvolkov/remindd/internal/database"
	"github.com/dvolkov/remindd/internal/models"
)

type TaskRepository struct {
	db *database.DB
}

func NewTaskRepository(db *database.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `task_id, title, description, importance, task_type, status,
	 due_date, is_paused, paused_until, completed_at, created_at, updated_at`

// Get returns the task, or nil when no such row exists.
func (r *TaskRepository) Get(ctx context.Context, taskID int) (*models.Task, error) {
	task := &models.Task{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE task_id = $1`,
		taskID,
	).Scan(&task.TaskID, &task.Title, &task.Description, &task.Importance, &task.Type, &task.Status,
		&task.DueDate, &task.IsPaused, &task.PausedUntil, &task.CompletedAt, &task.CreatedAt, &task.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *TaskRepository) ListPending(ctx context.Context) ([]*models.Task, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE status = $1 ORDER BY task_id`,
		models.TaskStatusPending,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task := &models.Task{}
		if err := rows.Scan(&task.TaskID, &task.Title, &task.Description, &task.Importance, &task.Type, &task.Status,
			&task.DueDate, &task.IsPaused, &task.PausedUntil, &task.CompletedAt, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) SetDone(ctx context.Context, taskID int, at time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE tasks SET status = $1, completed_at = $2, updated_at = $2 WHERE task_id = $3`,
		models.TaskStatusDone, at, taskID,
	)
	return err
}
