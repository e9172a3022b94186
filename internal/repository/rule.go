package repository

import (
	"context"

	"github.com/dvolkov/remindd/internal/database"
	"github.com/dvolkov/remindd/internal/models"
)

type RuleRepository struct {
	db *database.DB
}

func NewRuleRepository(db *database.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

func (r *RuleRepository) ListActive(ctx context.Context, taskID int) ([]*models.ReminderRule, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT rule_id, task_id, rule_type, offset_minutes, interval_minutes, start_from, stop_at, is_active, order_index, created_at
		 FROM reminder_rules WHERE task_id = $1 AND is_active = true ORDER BY order_index, rule_id`,
		taskID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*models.ReminderRule
	for rows.Next() {
		rule := &models.ReminderRule{}
		if err := rows.Scan(&rule.RuleID, &rule.TaskID, &rule.Kind, &rule.OffsetMinutes, &rule.IntervalMinutes,
			&rule.StartFrom, &rule.StopAt, &rule.IsActive, &rule.OrderIndex, &rule.CreatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}
