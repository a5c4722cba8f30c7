package bot

import (
	"errors"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"todo-tracker/internal/model"
	"todo-tracker/internal/view"
)

// renderTodoList formats the visible todos with a button row per todo.
func renderTodoList(s view.State) (string, [][]tgbotapi.InlineKeyboardButton) {
	visible := s.Visible()

	var sb strings.Builder
	sb.WriteString("📋 <b>Todos</b>\n")
	if s.DateFilter != "" {
		sb.WriteString(fmt.Sprintf("Due on %s. Clear with /filter\n", s.DateFilter))
	}
	sb.WriteByte('\n')

	if len(visible) == 0 {
		if s.DateFilter != "" {
			sb.WriteString("Nothing due that day.")
		} else {
			sb.WriteString("No todos yet. Add one with /add &lt;title&gt;.")
		}
		return sb.String(), nil
	}

	buttons := make([][]tgbotapi.InlineKeyboardButton, 0, len(visible))
	for _, t := range visible {
		sb.WriteString(formatTodo(t))

		toggle := "✅ " + shortTitle(t.Title, 24)
		if t.Completed {
			toggle = "↩️ " + shortTitle(t.Title, 24)
		}
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(toggle, cbCompletePrefix+t.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", cbDeletePrefix+t.ID),
		))
	}
	return strings.TrimSpace(sb.String()), buttons
}

func formatTodo(t model.Todo) string {
	check := "⬜"
	title := escape(t.Title)
	if t.Completed {
		check = "✔️"
		title = "<s>" + title + "</s>"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s", check, title))
	if t.Categories != nil {
		sb.WriteString(" <i>(" + escape(t.Categories.Name) + ")</i>")
	}
	if t.DueDate != nil {
		sb.WriteString("\n   ⏰ " + t.DueDate.String())
	}
	sb.WriteByte('\n')
	return sb.String()
}

func categoryLabel(c model.Category) string {
	return "🏷️ <b>" + escape(strings.TrimSpace(c.Name)) + "</b>"
}

// parseCategoryArgs splits "<name> [#color]"; the color defaults when absent.
func parseCategoryArgs(args string) (name, color string) {
	fields := strings.Fields(args)
	color = view.DefaultColor
	if n := len(fields); n > 1 && strings.HasPrefix(fields[n-1], "#") {
		color = fields[n-1]
		fields = fields[:n-1]
	}
	return strings.Join(fields, " "), color
}

func parseTodoID(data, prefix string) (string, error) {
	id := strings.TrimSpace(strings.TrimPrefix(data, prefix))
	if id == "" {
		return "", errors.New("empty todo id")
	}
	return id, nil
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(title)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}
