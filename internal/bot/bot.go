// Package bot handles the inline-keyboard callbacks attached to reminder
// messages: completing a task or postponing (acknowledging) a reminder.
package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dvolkov/remindd/internal/repository"
)

type Bot struct {
	api       *tgbotapi.BotAPI
	tasks     *repository.TaskRepository
	reminders *repository.ReminderRepository
	nudge     func() // wakes the scheduler after a state change, may be nil
}

func New(api *tgbotapi.BotAPI, tasks *repository.TaskRepository, reminders *repository.ReminderRepository, nudge func()) *Bot {
	return &Bot{api: api, tasks: tasks, reminders: reminders, nudge: nudge}
}

func (b *Bot) Start(ctx context.Context) error {
	log.Printf("Authorized on account %s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)
			}
		}
	}
}

// Callback data is "<action>:<task_id>:<reminder_id>".
func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			log.Printf("Failed to answer callback %s: %v", query.ID, err)
		}
	}()

	action, taskID, reminderID, err := parseCallback(query.Data)
	if err != nil {
		log.Printf("Ignoring malformed callback %q: %v", query.Data, err)
		return
	}

	switch action {
	case "task_done":
		b.completeTask(ctx, query, taskID, reminderID)
	case "task_postpone":
		b.postponeReminder(ctx, query, reminderID)
	default:
		log.Printf("Ignoring unknown callback action %q", action)
	}
}

func (b *Bot) completeTask(ctx context.Context, query *tgbotapi.CallbackQuery, taskID, reminderID int) {
	task, err := b.tasks.Get(ctx, taskID)
	if err != nil {
		log.Printf("Failed to load task %d: %v", taskID, err)
		return
	}
	if task == nil {
		b.editMessage(query, "❌ Задача не найдена")
		return
	}

	now := time.Now()
	if err := b.tasks.SetDone(ctx, taskID, now); err != nil {
		log.Printf("Failed to complete task %d: %v", taskID, err)
		return
	}
	if err := b.reminders.Acknowledge(ctx, reminderID, now); err != nil {
		log.Printf("Failed to acknowledge reminder %d: %v", reminderID, err)
	}
	// A done task must not keep nagging: drop its queued reminders.
	if err := b.reminders.DeleteUnsent(ctx, taskID); err != nil {
		log.Printf("Failed to clear unsent reminders for task %d: %v", taskID, err)
	}

	b.editMessage(query, fmt.Sprintf("✅ <b>Задача выполнена!</b>\n\n%s", task.Title))
	if b.nudge != nil {
		b.nudge()
	}
	log.Printf("Task %d completed via reminder %d", taskID, reminderID)
}

func (b *Bot) postponeReminder(ctx context.Context, query *tgbotapi.CallbackQuery, reminderID int) {
	if err := b.reminders.Acknowledge(ctx, reminderID, time.Now()); err != nil {
		log.Printf("Failed to acknowledge reminder %d: %v", reminderID, err)
		return
	}
	b.editMessage(query, "⏰ <b>Задача отложена</b>\n\nПовторных напоминаний по ней больше не будет.")
	log.Printf("Reminder %d postponed", reminderID)
}

func (b *Bot) editMessage(query *tgbotapi.CallbackQuery, text string) {
	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit message %d: %v", query.Message.MessageID, err)
	}
}

func parseCallback(data string) (action string, taskID, reminderID int, err error) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("want 3 fields, got %d", len(parts))
	}
	taskID, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, fmt.Errorf("task id: %w", err)
	}
	reminderID, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, 0, fmt.Errorf("reminder id: %w", err)
	}
	return parts[0], taskID, reminderID, nil
}
