package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"task-tracker/internal/logger"
	"task-tracker/internal/ui"
)

// sender - часть BotAPI, которой бот отправляет ответы
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot держит отдельную доску задач на каждый чат
type Bot struct {
	api      sender
	newBoard func() *ui.Board

	mu     sync.Mutex
	boards map[int64]*ui.Board
}

func NewBot(api sender, newBoard func() *ui.Board) *Bot {
	return &Bot{
		api:      api,
		newBoard: newBoard,
		boards:   make(map[int64]*ui.Board),
	}
}

// Run обрабатывает сообщения до закрытия канала или отмены ctx
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer wg.Done()
				b.handleMessage(ctx, msg)
			}(update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user := ""
	if msg.From != nil {
		user = msg.From.UserName
	}
	logger.Info(ctx, "Получено сообщение", "chat_id", msg.Chat.ID, "user", user, "text", msg.Text)

	var reply string
	if msg.IsCommand() {
		reply = b.dispatch(ctx, msg.Chat.ID, msg.Command(), msg.CommandArguments())
	} else {
		reply = b.dispatch(ctx, msg.Chat.ID, "", msg.Text)
	}
	b.sendMessage(msg.Chat.ID, reply)
}

// dispatch выполняет команду в чате chatID и возвращает текст ответа.
// Пустая command означает обычный текст.
func (b *Bot) dispatch(ctx context.Context, chatID int64, command, args string) string {
	args = strings.TrimSpace(args)
	board := b.board(chatID)

	switch command {
	case "help":
		return helpText
	case "start":
		board.Load(ctx)
		return welcomeText + "\n\n" + render(board.View())
	}

	if err := board.Load(ctx); err != nil {
		return render(board.View())
	}
	if view := board.View(); view.Loading || view.LoadError != "" {
		return render(view)
	}

	switch command {
	case "list":
		return render(board.View())
	case "add":
		if args == "" {
			return "Укажите задачу после команды: /add Купить молоко"
		}
		return b.afterAction(board, board.Add(ctx, args), "✅ Задача добавлена!")
	case "done":
		id, errText := taskAt(board.View(), args, "/done 1")
		if errText != "" {
			return errText
		}
		return b.afterAction(board, board.MarkDone(ctx, id), "✅ Задача отмечена выполненной!")
	case "delete":
		id, errText := taskAt(board.View(), args, "/delete 1")
		if errText != "" {
			return errText
		}
		return b.afterAction(board, board.Delete(ctx, id), "🗑️ Задача удалена!")
	case "edit":
		id, errText := taskAt(board.View(), args, "/edit 1")
		if errText != "" {
			return errText
		}
		switch err := board.StartEdit(id); {
		case errors.Is(err, ui.ErrTaskCompleted):
			return "❌ Выполненную задачу нельзя переименовать"
		case err != nil:
			return "❌ Ошибка: " + err.Error()
		}
		return fmt.Sprintf("✏️ Введите новое название для «%s» или /cancel", board.View().Draft)
	case "cancel":
		board.CancelEdit()
		return "Редактирование отменено"
	case "":
		if board.View().EditingID == "" {
			return "Чтобы добавить задачу, используйте /add. Список команд: /help"
		}
		board.SetDraft(args)
		return b.afterAction(board, board.SubmitEdit(ctx), "✏️ Задача переименована!")
	default:
		return "Неизвестная команда. Используйте /help для списка команд."
	}
}

func (b *Bot) board(chatID int64) *ui.Board {
	b.mu.Lock()
	defer b.mu.Unlock()

	board, ok := b.boards[chatID]
	if !ok {
		board = b.newBoard()
		b.boards[chatID] = board
	}
	return board
}

func (b *Bot) afterAction(board *ui.Board, err error, okText string) string {
	if errors.Is(err, ui.ErrBlankName) {
		return "❌ " + ui.ErrBlankName.Error()
	}
	if err != nil {
		return render(board.View())
	}
	return okText + "\n\n" + render(board.View())
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		logger.Error(context.Background(), err, "Ошибка отправки сообщения", "chat_id", chatID)
	}
}

// taskAt переводит номер из списка (с 1) в ID задачи
func taskAt(view ui.View, arg, example string) (string, string) {
	if arg == "" {
		return "", "Укажите номер задачи: " + example
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return "", "Номер задачи должен быть числом"
	}
	if n < 1 || n > len(view.Tasks) {
		return "", fmt.Sprintf("Нет задачи с номером %d", n)
	}
	return view.Tasks[n-1].ID, ""
}

func render(view ui.View) string {
	if view.Loading {
		return "⏳ Загрузка..."
	}
	if view.LoadError != "" {
		return "❌ " + view.LoadError
	}

	var sb strings.Builder
	if view.Notice != "" {
		sb.WriteString("⚠️ " + view.Notice + "\n\n")
	}
	if len(view.Tasks) == 0 {
		sb.WriteString("📭 Список задач пуст")
		return sb.String()
	}

	sb.WriteString("📋 Ваши задачи:\n")
	for i, task := range view.Tasks {
		status := "🟢"
		if task.Completed {
			status = "✅"
		}
		fmt.Fprintf(&sb, "\n%s %d. %s", status, i+1, task.Name)
		if task.ID == view.EditingID {
			sb.WriteString(" ✏️")
		}
	}
	return sb.String()
}

const welcomeText = `🎯 Добро пожаловать в Task Tracker!

Используйте /help для списка команд.`

const helpText = `🤖 Помощь по командам

/start - Загрузить список задач
/list - Показать все задачи
/add [задача] - Добавить задачу
/done [номер] - Отметить задачу выполненной
/delete [номер] - Удалить задачу
/edit [номер] - Переименовать задачу, следующим сообщением отправьте новое название
/cancel - Отменить переименование
/help - Показать эту справку`
