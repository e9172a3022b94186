// Package notify renders and delivers reminder notifications over Telegram.
package notify

import (
	"context"
	"fmt"
	"html"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dvolkov/remindd/internal/models"
)

const maxDescriptionLen = 150

var importanceEmoji = map[int]string{1: "🔴", 2: "🟡", 3: "⚪"}

// Telegram sends reminder messages to a fixed chat, HTML-formatted, with an
// inline done/postpone keyboard wired to the callback bot.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(api *tgbotapi.BotAPI, chatID int64) *Telegram {
	return &Telegram{api: api, chatID: chatID}
}

func (n *Telegram) SendReminder(ctx context.Context, task *models.Task, rem *models.Reminder) (int, error) {
	text := fmt.Sprintf("%s <b>Напоминание о задаче</b>\n\n📋 %s\n",
		emoji(task.Importance), html.EscapeString(task.Title))
	if task.Description != "" {
		text += "\n" + html.EscapeString(truncate(task.Description)) + "\n"
	}
	if task.DueDate != nil {
		text += fmt.Sprintf("\n📅 Срок: %s", task.DueDate.Format("2006-01-02 15:04"))
	}
	text += fmt.Sprintf("\n🕐 %s", time.Now().Format("15:04"))

	return n.send(task, rem, text)
}

func (n *Telegram) SendRepeat(ctx context.Context, task *models.Task, rem *models.Reminder) (int, error) {
	// Drop the previous message so repeats do not flood the chat. The old
	// message may already be gone; that is fine.
	if rem.MessageID != nil {
		deleteMsg := tgbotapi.NewDeleteMessage(n.chatID, *rem.MessageID)
		if _, err := n.api.Request(deleteMsg); err != nil {
			log.Printf("Failed to delete old reminder message %d: %v", *rem.MessageID, err)
		}
	}

	text := fmt.Sprintf("%s <b>🔔 Повторное напоминание</b>\n\n<b>%s</b>\n",
		emoji(task.Importance), html.EscapeString(task.Title))
	if task.Description != "" {
		text += "\n" + html.EscapeString(truncate(task.Description)) + "\n"
	}
	if task.DueDate != nil {
		text += fmt.Sprintf("\n📅 Срок: %s", task.DueDate.Format("2006-01-02 15:04"))
	}
	if rem.SentAt != nil {
		text += fmt.Sprintf("\n\n⏰ Первое напоминание было: %s", rem.SentAt.Format("2006-01-02 15:04"))
	}

	return n.send(task, rem, text)
}

func (n *Telegram) send(task *models.Task, rem *models.Reminder, text string) (int, error) {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Выполнил", fmt.Sprintf("task_done:%d:%d", task.TaskID, rem.ReminderID)),
			tgbotapi.NewInlineKeyboardButtonData("⏰ Отложить", fmt.Sprintf("task_postpone:%d:%d", task.TaskID, rem.ReminderID)),
		),
	)

	sent, err := n.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send telegram message: %w", err)
	}
	return sent.MessageID, nil
}

func emoji(importance int) string {
	if e, ok := importanceEmoji[importance]; ok {
		return e
	}
	return "⚪"
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxDescriptionLen {
		return s
	}
	return string(runes[:maxDescriptionLen]) + "..."
}
