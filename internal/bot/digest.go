package bot

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"todo-tracker/internal/model"
)

// SendDailyDigest sends the open-todo summary to every chat the bot has seen.
func (b *Bot) SendDailyDigest(ctx context.Context) error {
	todos, err := b.todos.ListTodos(ctx)
	if err != nil {
		return err
	}
	text := DailyDigest(todos, b.now())

	for _, chatID := range b.chats() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := b.sendText(chatID, text); err != nil {
			log.Printf("send digest to %d: %v", chatID, err)
		}
	}
	return nil
}

func (b *Bot) handleDigest(ctx context.Context, chatID int64) error {
	todos, err := b.todos.ListTodos(ctx)
	if err != nil {
		log.Printf("load todos for digest %d: %v", chatID, err)
		return b.sendText(chatID, "Could not load todos, try again later.")
	}
	return b.sendText(chatID, DailyDigest(todos, b.now()))
}

// DailyDigest summarizes the open todos as of now. Dated todos come first,
// earliest due date first; undated ones follow, newest first.
func DailyDigest(todos []model.Todo, now time.Time) string {
	today := model.DateOf(now)

	pending := make([]model.Todo, 0, len(todos))
	for _, t := range todos {
		if !t.Completed {
			pending = append(pending, t)
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		a, b := pending[i].DueDate, pending[j].DueDate
		switch {
		case a == nil && b == nil:
			return pending[i].CreatedAt.After(pending[j].CreatedAt)
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})

	var sb strings.Builder
	sb.WriteString("📋 <b>Daily digest</b>\n")
	sb.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("02.01.2006")))

	if len(pending) == 0 {
		sb.WriteString("No open todos.")
		return sb.String()
	}
	for _, t := range pending {
		sb.WriteString(digestLine(t, today))
	}
	return strings.TrimSpace(sb.String())
}

func digestLine(t model.Todo, today model.Date) string {
	var sb strings.Builder

	icon := "🟢"
	days := 0
	if t.DueDate != nil {
		days = today.DaysUntil(*t.DueDate)
		switch {
		case days < 0:
			icon = "⚠️"
		case days <= 1:
			icon = "⏳"
		}
	}

	sb.WriteString(fmt.Sprintf("%s %s", icon, escape(strings.TrimSpace(t.Title))))
	if t.Categories != nil {
		if name := strings.TrimSpace(t.Categories.Name); name != "" {
			sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", escape(name)))
		}
	}

	if t.DueDate != nil {
		due := t.DueDate.String()
		switch {
		case days < 0:
			sb.WriteString(fmt.Sprintf("\n   ⏰ %s, <b>overdue</b>", due))
		case days == 0:
			sb.WriteString(fmt.Sprintf("\n   ⏰ %s, <b>today</b>", due))
		case days == 1:
			sb.WriteString(fmt.Sprintf("\n   ⏰ %s, tomorrow", due))
		default:
			sb.WriteString(fmt.Sprintf("\n   ⏰ %s · %d days left", due, days))
		}
	}

	sb.WriteByte('\n')
	return sb.String()
}
