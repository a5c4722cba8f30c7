package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-tracker/internal/client"
	"todo-tracker/internal/model"
)

type fakeTelegram struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	requests int
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegram) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeTelegram) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeTelegram) StopReceivingUpdates() {}

func (f *fakeTelegram) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

type fakeAPI struct {
	mu         sync.Mutex
	todos      []model.Todo
	categories []model.Category

	created   []client.NewTodo
	updated   []client.TodoUpdate
	deleted   []string
	deleteErr error
	listErr   error
}

func (f *fakeAPI) ListTodos(context.Context) ([]model.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.todos, f.listErr
}

func (f *fakeAPI) ListCategories(context.Context) ([]model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.categories, nil
}

func (f *fakeAPI) CreateTodo(_ context.Context, in client.NewTodo) (model.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	return model.Todo{ID: "new", Title: in.Title, CategoryID: in.CategoryID}, nil
}

func (f *fakeAPI) UpdateTodo(_ context.Context, in client.TodoUpdate) (model.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, in)
	return model.Todo{ID: in.ID, Title: in.Title, Completed: in.Completed}, nil
}

func (f *fakeAPI) DeleteTodo(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeAPI) CreateCategory(_ context.Context, name, color string) (model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := model.Category{ID: "c-" + name, Name: name, Color: color}
	f.categories = append(f.categories, c)
	return c, nil
}

const chatID int64 = 42

func newTestBot(api *fakeAPI) (*Bot, *fakeTelegram) {
	tg := &fakeTelegram{}
	b := newBot(tg, api)
	b.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	return b, tg
}

func command(b *Bot, text string) {
	name := text
	if i := strings.IndexByte(text, ' '); i >= 0 {
		name = text[:i]
	}
	b.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID, Type: "private"},
		From:     &tgbotapi.User{ID: chatID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}})
}

func callback(b *Bot, data string) {
	b.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID, Type: "private"}},
		Data:    data,
	}})
}

func TestGroupChatsAreIgnored(t *testing.T) {
	b, tg := newTestBot(&fakeAPI{})
	b.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Text: "hi",
		Chat: &tgbotapi.Chat{ID: 1, Type: "group"},
	}})
	assert.Empty(t, tg.sent)
	assert.Empty(t, b.chats())
}

func TestGroupCallbacksAreIgnored(t *testing.T) {
	api := &fakeAPI{todos: []model.Todo{{ID: "1", Title: "a"}}}
	b, tg := newTestBot(api)

	b.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: -100, Type: "supergroup"}},
		Data:    "delete:1",
	}})

	assert.Empty(t, api.deleted)
	assert.Empty(t, tg.sent)
	assert.Zero(t, tg.requests)
	assert.Empty(t, b.chats())
}

func TestTodosRendersButtons(t *testing.T) {
	api := &fakeAPI{todos: []model.Todo{{ID: "1", Title: "Buy <milk>"}}}
	b, tg := newTestBot(api)

	command(b, "/todos")

	msg := tg.last(t)
	assert.Contains(t, msg.Text, "Buy &lt;milk&gt;")
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 1)
	row := markup.InlineKeyboard[0]
	require.Len(t, row, 2)
	assert.Equal(t, "complete:1", *row[0].CallbackData)
	assert.Equal(t, "delete:1", *row[1].CallbackData)
}

func TestAddUsesSelections(t *testing.T) {
	api := &fakeAPI{categories: []model.Category{{ID: "w", Name: "Work"}}}
	b, tg := newTestBot(api)

	command(b, "/add Report")
	require.Len(t, api.created, 1)
	require.NotNil(t, api.created[0].DueDate)
	assert.Equal(t, "2024-05-01", *api.created[0].DueDate, "due date defaults to today")
	assert.Nil(t, api.created[0].CategoryID)

	command(b, "/due 2024-06-01")
	command(b, "/category work")
	command(b, "/add Plan")
	require.Len(t, api.created, 2)
	assert.Equal(t, "2024-06-01", *api.created[1].DueDate)
	require.NotNil(t, api.created[1].CategoryID)
	assert.Equal(t, "w", *api.created[1].CategoryID)

	command(b, "/due none")
	command(b, "/category none")
	command(b, "/add Later")
	require.Len(t, api.created, 3)
	assert.Nil(t, api.created[2].DueDate)
	assert.Nil(t, api.created[2].CategoryID)

	todos := b.snapshot(chatID).state.Todos
	require.Len(t, todos, 3)
	assert.Equal(t, "Later", todos[0].Title, "new todos are prepended")
	assert.False(t, b.snapshot(chatID).state.Loading)

	command(b, "/add")
	assert.Len(t, api.created, 3)
	assert.Contains(t, tg.last(t).Text, "Usage")
}

func TestDueRejectsBadDate(t *testing.T) {
	b, tg := newTestBot(&fakeAPI{})
	command(b, "/due 01/06/2024")
	assert.Contains(t, tg.last(t).Text, "YYYY-MM-DD")
	assert.True(t, b.snapshot(chatID).dueToday)
}

func TestUnknownCategory(t *testing.T) {
	b, tg := newTestBot(&fakeAPI{})
	command(b, "/category Garden")
	assert.Contains(t, tg.last(t).Text, "No category named")
	assert.Empty(t, b.snapshot(chatID).categoryID)
}

func TestNewCategory(t *testing.T) {
	api := &fakeAPI{}
	b, _ := newTestBot(api)

	command(b, "/newcategory Side projects #00ff00")
	command(b, "/newcategory Home")

	categories := b.snapshot(chatID).state.Categories
	require.Len(t, categories, 2)
	assert.Equal(t, "Side projects", categories[0].Name)
	assert.Equal(t, "#00ff00", categories[0].Color)
	assert.Equal(t, "#3b82f6", categories[1].Color)
}

func TestCompleteCallbackTogglesWithAllFields(t *testing.T) {
	due, err := model.ParseDate("2024-05-03")
	require.NoError(t, err)
	category := "w"
	api := &fakeAPI{todos: []model.Todo{{ID: "1", Title: "a", DueDate: &due, CategoryID: &category}}}
	b, tg := newTestBot(api)

	command(b, "/todos")
	callback(b, "complete:1")

	assert.Equal(t, 1, tg.requests, "callback is acknowledged")
	require.Len(t, api.updated, 1)
	u := api.updated[0]
	assert.True(t, u.Completed)
	require.NotNil(t, u.DueDate)
	assert.Equal(t, "2024-05-03", *u.DueDate)
	require.NotNil(t, u.CategoryID)
	assert.Equal(t, "w", *u.CategoryID)
	assert.True(t, b.snapshot(chatID).state.Todos[0].Completed)
}

func TestCompleteCallbackUnknownTodo(t *testing.T) {
	api := &fakeAPI{}
	b, tg := newTestBot(api)

	callback(b, "complete:missing")
	assert.Empty(t, api.updated)
	assert.Contains(t, tg.last(t).Text, "not found")
}

func TestDeleteCallback(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKept bool
	}{
		{"success", nil, false},
		{"server error", &client.APIError{StatusCode: 500, Message: "boom"}, false},
		{"transport error", errors.New("connection refused"), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAPI{todos: []model.Todo{{ID: "1", Title: "a"}}, deleteErr: tc.err}
			b, _ := newTestBot(api)

			command(b, "/todos")
			callback(b, "delete:1")

			assert.Equal(t, []string{"1"}, api.deleted)
			if tc.wantKept {
				assert.Len(t, b.snapshot(chatID).state.Todos, 1)
			} else {
				assert.Empty(t, b.snapshot(chatID).state.Todos)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	first, _ := model.ParseDate("2024-05-01")
	second, _ := model.ParseDate("2024-05-02")
	api := &fakeAPI{todos: []model.Todo{
		{ID: "1", Title: "first", DueDate: &first},
		{ID: "2", Title: "second", DueDate: &second},
	}}
	b, tg := newTestBot(api)
	command(b, "/todos")

	command(b, "/filter 2024-05-02")
	text := tg.last(t).Text
	assert.Contains(t, text, "second")
	assert.NotContains(t, text, "first")
	assert.Len(t, b.snapshot(chatID).state.Todos, 2)

	command(b, "/filter 1999-01-01")
	assert.Contains(t, tg.last(t).Text, "Nothing due that day")

	command(b, "/filter")
	assert.Contains(t, tg.last(t).Text, "first")
}

func TestTodosLoadFailure(t *testing.T) {
	api := &fakeAPI{listErr: errors.New("down")}
	b, tg := newTestBot(api)

	command(b, "/todos")
	assert.Contains(t, tg.last(t).Text, "Could not load todos")
}

func TestSendDailyDigestToSeenChats(t *testing.T) {
	api := &fakeAPI{todos: []model.Todo{{ID: "1", Title: "a"}}}
	b, tg := newTestBot(api)

	command(b, "/start")
	tg.sent = nil

	require.NoError(t, b.SendDailyDigest(context.Background()))
	require.Len(t, tg.sent, 1)
	assert.Equal(t, chatID, tg.sent[0].ChatID)
	assert.Contains(t, tg.sent[0].Text, "Daily digest")
}
