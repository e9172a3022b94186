package repository

import (
	"context"

	"github.com/dvolkov/remindd/internal/database"
	"github.com/dvolkov/remindd/internal/models"
)

type ScheduleRepository struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ListActive returns the task's active schedules in creation order. The
// regenerator honors at most one schedule per day-of-week, first listed
// wins, so the ordering here is load-bearing.
func (r *ScheduleRepository) ListActive(ctx context.Context, taskID int) ([]*models.Schedule, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT schedule_id, task_id, day_of_week, start_time, COALESCE(end_time, ''), is_active, created_at
		 FROM task_schedules WHERE task_id = $1 AND is_active = true ORDER BY schedule_id`,
		taskID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []*models.Schedule
	for rows.Next() {
		s := &models.Schedule{}
		if err := rows.Scan(&s.ScheduleID, &s.TaskID, &s.DayOfWeek, &s.StartTime, &s.EndTime, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}
