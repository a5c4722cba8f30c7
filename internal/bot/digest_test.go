package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-tracker/internal/model"
)

func dated(title, day string) model.Todo {
	t := model.Todo{Title: title}
	if day != "" {
		d, err := model.ParseDate(day)
		if err != nil {
			panic(err)
		}
		t.DueDate = &d
	}
	return t
}

func TestDailyDigest(t *testing.T) {
	now := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

	done := dated("done", "2024-05-01")
	done.Completed = true
	work := dated("upcoming", "2024-05-20")
	work.Categories = &model.Category{Name: "Work"}

	text := DailyDigest([]model.Todo{
		dated("undated", ""),
		work,
		dated("tomorrow", "2024-05-11"),
		dated("today", "2024-05-10"),
		dated("late", "2024-05-01"),
		done,
	}, now)

	assert.Contains(t, text, "10.05.2024")
	assert.NotContains(t, text, "done")

	lines := strings.Split(text, "\n")
	var titles []string
	for _, l := range lines {
		if strings.HasPrefix(l, "⚠️") || strings.HasPrefix(l, "⏳") || strings.HasPrefix(l, "🟢") {
			titles = append(titles, l)
		}
	}
	require.Len(t, titles, 5)
	assert.Equal(t, "⚠️ late", titles[0])
	assert.Equal(t, "⏳ today", titles[1])
	assert.Equal(t, "⏳ tomorrow", titles[2])
	assert.Equal(t, "🟢 upcoming <i>(Work)</i>", titles[3])
	assert.Equal(t, "🟢 undated", titles[4])

	assert.Contains(t, text, "2024-05-01, <b>overdue</b>")
	assert.Contains(t, text, "2024-05-20 · 10 days left")
	assert.Contains(t, text, "2024-05-11, tomorrow")
	assert.NotContains(t, text, "1 days left")
}

func TestDailyDigestEmpty(t *testing.T) {
	text := DailyDigest(nil, time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC))
	assert.Contains(t, text, "No open todos.")
}

func TestParseCategoryArgs(t *testing.T) {
	tests := []struct {
		args, name, color string
	}{
		{"Work", "Work", "#3b82f6"},
		{"Side projects #00ff00", "Side projects", "#00ff00"},
		{"#hash", "#hash", "#3b82f6"},
		{"", "", "#3b82f6"},
	}
	for _, tc := range tests {
		name, color := parseCategoryArgs(tc.args)
		assert.Equal(t, tc.name, name, tc.args)
		assert.Equal(t, tc.color, color, tc.args)
	}
}
