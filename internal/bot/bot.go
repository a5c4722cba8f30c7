package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"todo-tracker/internal/client"
	"todo-tracker/internal/model"
	"todo-tracker/internal/view"
)

const (
	cbCompletePrefix = "complete:"
	cbDeletePrefix   = "delete:"
)

const (
	menuLabelTodos      = "📋 Todos"
	menuLabelCategories = "📂 Categories"
	menuLabelDigest     = "🗓 Digest"
	menuLabelHelp       = "ℹ️ Help"
)

// telegramAPI is the part of *tgbotapi.BotAPI the bot uses.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// session is what the bot remembers about one chat.
type session struct {
	state view.State
	// due is the date sent with /add; dueToday overrides it with the current day.
	due        string
	dueToday   bool
	categoryID string
}

// Bot serves the todo list over Telegram.
type Bot struct {
	tg       telegramAPI
	todos    client.API
	now      func() time.Time
	sessions map[int64]*session
	mu       sync.Mutex
}

func New(token string, todos client.API) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return newBot(api, todos), nil
}

func newBot(tg telegramAPI, todos client.API) *Bot {
	return &Bot{
		tg:       tg,
		todos:    todos,
		now:      time.Now,
		sessions: make(map[int64]*session),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.tg.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.tg.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}

	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			log.Printf("handle callback: %v", err)
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("handle message: %v", err)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	b.ensureSession(msg.Chat.ID)

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.Chat.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	switch strings.ToLower(strings.TrimSpace(msg.Text)) {
	case strings.ToLower(menuLabelTodos):
		return b.handleTodos(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelCategories):
		return b.handleCategories(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelDigest):
		return b.handleDigest(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelHelp):
		return b.sendText(msg.Chat.ID, helpText)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Add a todo with /add &lt;title&gt; or see /help.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		return b.sendText(chatID, "👋 Hi! I keep your todo list.\n\n"+helpText)
	case "help":
		return b.sendText(chatID, helpText)
	case "todos":
		return b.handleTodos(ctx, chatID)
	case "add":
		return b.handleAdd(ctx, chatID, args)
	case "due":
		return b.handleDue(chatID, args)
	case "category":
		return b.handleCategory(ctx, chatID, args)
	case "categories":
		return b.handleCategories(ctx, chatID)
	case "newcategory":
		return b.handleNewCategory(ctx, chatID, args)
	case "filter":
		return b.handleFilter(chatID, args)
	case "digest":
		return b.handleDigest(ctx, chatID)
	default:
		return b.sendText(chatID, "Unknown command. See /help.")
	}
}

const helpText = `<b>Commands</b>
/todos - show the list
/add &lt;title&gt; - add a todo
/due &lt;YYYY-MM-DD|today|none&gt; - due date for new todos
/category &lt;name|none&gt; - category for new todos
/categories - list categories
/newcategory &lt;name&gt; [#color] - create a category
/filter [YYYY-MM-DD] - show only todos due that day
/digest - summary of open todos`

// refresh loads todos and categories concurrently into the chat's state.
func (b *Bot) refresh(ctx context.Context, chatID int64) error {
	var (
		todos      []model.Todo
		categories []model.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		todos, err = b.todos.ListTodos(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = b.todos.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	b.dispatch(chatID, view.TodosLoaded{Todos: todos}, view.CategoriesLoaded{Categories: categories})
	return nil
}

func (b *Bot) handleTodos(ctx context.Context, chatID int64) error {
	if err := b.refresh(ctx, chatID); err != nil {
		log.Printf("load todos for %d: %v", chatID, err)
		return b.sendText(chatID, "Could not load todos, try again later.")
	}
	return b.sendTodoList(chatID)
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, title string) error {
	if title == "" {
		return b.sendText(chatID, "Usage: /add &lt;title&gt;")
	}

	b.mu.Lock()
	s := b.sessions[chatID]
	if s.state.Loading {
		b.mu.Unlock()
		return b.sendText(chatID, "⏳ Still adding the previous todo.")
	}
	s.state = view.Reduce(s.state, view.LoadingSet{Loading: true})
	in := client.NewTodo{Title: title}
	due := s.due
	if s.dueToday {
		due = model.DateOf(b.now()).String()
	}
	if due != "" {
		in.DueDate = &due
	}
	if s.categoryID != "" {
		id := s.categoryID
		in.CategoryID = &id
	}
	b.mu.Unlock()

	todo, err := b.todos.CreateTodo(ctx, in)
	b.dispatch(chatID, view.LoadingSet{Loading: false})
	if err != nil {
		log.Printf("create todo for %d: %v", chatID, err)
		return b.sendText(chatID, "Could not add the todo.")
	}

	b.dispatch(chatID, view.TodoAdded{Todo: todo})
	log.Printf("[info] todo created id=%s chat=%d", todo.ID, chatID)
	return b.sendText(chatID, "✅ Added: "+escape(todo.Title))
}

func (b *Bot) handleDue(chatID int64, arg string) error {
	var (
		due      string
		dueToday bool
		reply    string
	)
	switch strings.ToLower(arg) {
	case "", "today":
		dueToday, reply = true, "New todos are due today."
	case "none":
		reply = "New todos have no due date."
	default:
		d, err := model.ParseDate(arg)
		if err != nil {
			return b.sendText(chatID, "Due date must be formatted as YYYY-MM-DD.")
		}
		due, reply = d.String(), "New todos are due on "+d.String()+"."
	}

	b.mu.Lock()
	s := b.sessions[chatID]
	s.due, s.dueToday = due, dueToday
	b.mu.Unlock()
	return b.sendText(chatID, reply)
}

func (b *Bot) handleCategory(ctx context.Context, chatID int64, name string) error {
	if name == "" {
		return b.sendText(chatID, "Usage: /category &lt;name|none&gt;")
	}
	if strings.EqualFold(name, "none") {
		b.mu.Lock()
		b.sessions[chatID].categoryID = ""
		b.mu.Unlock()
		return b.sendText(chatID, "New todos have no category.")
	}

	category, ok := b.findCategory(chatID, name)
	if !ok {
		if err := b.loadCategories(ctx, chatID); err != nil {
			log.Printf("load categories for %d: %v", chatID, err)
			return b.sendText(chatID, "Could not load categories, try again later.")
		}
		category, ok = b.findCategory(chatID, name)
	}
	if !ok {
		return b.sendText(chatID, fmt.Sprintf("No category named %q. See /categories.", escape(name)))
	}

	b.mu.Lock()
	b.sessions[chatID].categoryID = category.ID
	b.mu.Unlock()
	return b.sendText(chatID, "New todos go to "+categoryLabel(category)+".")
}

func (b *Bot) handleCategories(ctx context.Context, chatID int64) error {
	if err := b.loadCategories(ctx, chatID); err != nil {
		log.Printf("load categories for %d: %v", chatID, err)
		return b.sendText(chatID, "Could not load categories, try again later.")
	}

	s := b.snapshot(chatID)
	if len(s.state.Categories) == 0 {
		return b.sendText(chatID, "No categories yet. Create one with /newcategory &lt;name&gt; [#color].")
	}

	var sb strings.Builder
	sb.WriteString("📂 <b>Categories</b>\n")
	for _, c := range s.state.Categories {
		marker := "•"
		if c.ID == s.categoryID {
			marker = "▶"
		}
		sb.WriteString(fmt.Sprintf("%s %s <code>%s</code>\n", marker, categoryLabel(c), escape(c.Color)))
	}
	return b.sendText(chatID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleNewCategory(ctx context.Context, chatID int64, args string) error {
	name, color := parseCategoryArgs(args)
	if name == "" {
		return b.sendText(chatID, "Usage: /newcategory &lt;name&gt; [#color]")
	}

	category, err := b.todos.CreateCategory(ctx, name, color)
	if err != nil {
		log.Printf("create category for %d: %v", chatID, err)
		return b.sendText(chatID, "Could not create the category.")
	}

	b.dispatch(chatID, view.CategoryAdded{Category: category})
	return b.sendText(chatID, "Created "+categoryLabel(category)+".")
}

func (b *Bot) handleFilter(chatID int64, arg string) error {
	if arg != "" {
		if _, err := model.ParseDate(arg); err != nil {
			return b.sendText(chatID, "Filter date must be formatted as YYYY-MM-DD.")
		}
	}
	b.dispatch(chatID, view.DateFilterSet{Date: arg})
	return b.sendTodoList(chatID)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.Message == nil || cb.Message.Chat == nil || !cb.Message.Chat.IsPrivate() {
		return nil
	}
	if _, err := b.tg.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack: %v", err)
	}

	chatID := cb.Message.Chat.ID
	b.ensureSession(chatID)

	switch {
	case strings.HasPrefix(cb.Data, cbCompletePrefix):
		id, err := parseTodoID(cb.Data, cbCompletePrefix)
		if err != nil {
			return nil
		}
		log.Printf("[info] callback complete chat=%d todo=%s", chatID, id)
		return b.toggle(ctx, chatID, id)
	case strings.HasPrefix(cb.Data, cbDeletePrefix):
		id, err := parseTodoID(cb.Data, cbDeletePrefix)
		if err != nil {
			return nil
		}
		log.Printf("[info] callback delete chat=%d todo=%s", chatID, id)
		return b.remove(ctx, chatID, id)
	default:
		return nil
	}
}

func (b *Bot) toggle(ctx context.Context, chatID int64, id string) error {
	todo, ok := b.findTodo(chatID, id)
	if !ok {
		return b.sendText(chatID, "Todo not found. Refresh with /todos.")
	}

	in := client.UpdateFrom(todo)
	in.Completed = !todo.Completed
	updated, err := b.todos.UpdateTodo(ctx, in)
	if err != nil {
		log.Printf("update todo %s: %v", id, err)
		return b.sendText(chatID, "Could not update the todo.")
	}

	b.dispatch(chatID, view.TodoReconciled{Todo: updated})
	return b.sendTodoList(chatID)
}

func (b *Bot) remove(ctx context.Context, chatID int64, id string) error {
	if err := b.todos.DeleteTodo(ctx, id); err != nil {
		log.Printf("delete todo %s: %v", id, err)
		if client.IsTransport(err) {
			return b.sendText(chatID, "Could not reach the server, the todo was kept.")
		}
	}

	b.dispatch(chatID, view.TodoRemoved{ID: id})
	return b.sendTodoList(chatID)
}

func (b *Bot) sendTodoList(chatID int64) error {
	s := b.snapshot(chatID)
	text, buttons := renderTodoList(s.state)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if len(buttons) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	}
	_, err := b.tg.Send(msg)
	return err
}

func (b *Bot) loadCategories(ctx context.Context, chatID int64) error {
	categories, err := b.todos.ListCategories(ctx)
	if err != nil {
		return err
	}
	b.dispatch(chatID, view.CategoriesLoaded{Categories: categories})
	return nil
}

// ensureSession registers the chat on first contact.
func (b *Bot) ensureSession(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.sessions[chatID]; !ok {
		b.sessions[chatID] = &session{dueToday: true}
	}
}

func (b *Bot) snapshot(chatID int64) session {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sessions[chatID]; ok {
		return *s
	}
	return session{dueToday: true}
}

func (b *Bot) dispatch(chatID int64, actions ...view.Action) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[chatID]
	if !ok {
		s = &session{dueToday: true}
		b.sessions[chatID] = s
	}
	for _, a := range actions {
		s.state = view.Reduce(s.state, a)
	}
}

func (b *Bot) chats() []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]int64, 0, len(b.sessions))
	for id := range b.sessions {
		ids = append(ids, id)
	}
	return ids
}

func (b *Bot) findTodo(chatID int64, id string) (model.Todo, bool) {
	s := b.snapshot(chatID)
	for _, t := range s.state.Todos {
		if t.ID == id {
			return t, true
		}
	}
	return model.Todo{}, false
}

func (b *Bot) findCategory(chatID int64, name string) (model.Category, bool) {
	s := b.snapshot(chatID)
	for _, c := range s.state.Categories {
		if strings.EqualFold(strings.TrimSpace(c.Name), name) {
			return c, true
		}
	}
	return model.Category{}, false
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.tg.Send(msg)
	return err
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelTodos),
			tgbotapi.NewKeyboardButton(menuLabelCategories),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelDigest),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}
