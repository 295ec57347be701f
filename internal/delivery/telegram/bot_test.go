package telegram

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

	"github.com/smartspec/build-advisor/internal/domain/entity"
	"github.com/smartspec/build-advisor/internal/domain/repository"
	"github.com/smartspec/build-advisor/internal/usecase"
)

type fakeBot struct {
	mu      sync.Mutex
	sent    []tgbotapi.Chattable
	notify  chan tgbotapi.Chattable
	updates chan tgbotapi.Update
}

func newFakeBot() *fakeBot {
	return &fakeBot{
		notify:  make(chan tgbotapi.Chattable, 32),
		updates: make(chan tgbotapi.Update, 8),
	}
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	f.sent = append(f.sent, c)
	f.mu.Unlock()
	select {
	case f.notify <- c:
	default:
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeBot) StopReceivingUpdates() {}

// texts returns the text of every sent message, skipping chat actions.
func (f *fakeBot) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeBot) waitForMessage(t *testing.T) string {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case c := <-f.notify:
			if m, ok := c.(tgbotapi.MessageConfig); ok {
				return m.Text
			}
		case <-deadline:
			t.Fatal("no message sent")
			return ""
		}
	}
}

type stubUseCase struct {
	mu      sync.Mutex
	saved   *entity.SavedBuild
	err     error
	history []entity.SavedBuild
	builds  map[string]entity.SavedBuild
	userIDs []string
	block   chan struct{}
}

func (s *stubUseCase) GetRecommendation(ctx context.Context, req entity.BuildRequest) (*entity.BuildRecommendation, error) {
	saved, err := s.RecommendForUser(ctx, "", req)
	if err != nil {
		return nil, err
	}
	return &saved.Build, nil
}

func (s *stubUseCase) RecommendForUser(_ context.Context, userID string, _ entity.BuildRequest) (*entity.SavedBuild, error) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userIDs = append(s.userIDs, userID)
	return s.saved, s.err
}

func (s *stubUseCase) History(context.Context, string) ([]entity.SavedBuild, error) {
	return s.history, s.err
}

func (s *stubUseCase) GetBuild(_ context.Context, id string) (*entity.SavedBuild, error) {
	b, ok := s.builds[id]
	if !ok {
		return nil, repository.ErrBuildNotFound
	}
	return &b, nil
}

const buildArgs = `{"budget":1000,"minFps":56,"gamesList":["Fortnite"],"displayResolution":"1080p","graphicalQuality":"Standard","preOwnedHardware":[]}`

func sampleSaved() entity.SavedBuild {
	req := entity.BuildRequest{Budget: 1000, MinFps: 56, GamesList: []string{"Fortnite"}, PreOwnedHardware: []entity.PreOwnedPart{}}
	rec := entity.BuildRecommendation{Input: &req}
	for _, cat := range entity.Categories {
		rec.SetComponent(cat, entity.Component{Name: cat + " pick", PriceCAD: "$100", Justification: "good value"})
	}
	return entity.SavedBuild{
		ID:        "0b5c7f0e-1111-2222-3333-444455556666",
		UserID:    "tg:42",
		Build:     rec,
		CreatedAt: time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
	}
}

func commandMessage(text string) *tgbotapi.Message {
	cmdLen := len(strings.Fields(text)[0])
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: 42},
		Chat:      &tgbotapi.Chat{ID: 7, Type: "private"},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}
}

func TestExtractCommandAndArgs(t *testing.T) {
	msg := commandMessage("/build " + buildArgs)
	assert.Equal(t, "build", extractCommand(msg))
	assert.Equal(t, buildArgs, commandArgs(msg))

	plain := &tgbotapi.Message{Text: "  /Export@advisor_bot  abc-123 "}
	assert.Equal(t, "export", extractCommand(plain))
	assert.Equal(t, "abc-123", commandArgs(plain))

	assert.Empty(t, extractCommand(&tgbotapi.Message{Text: "hello"}))
	assert.Empty(t, commandArgs(commandMessage("/history")))
}

func TestHelpCommand(t *testing.T) {
	bot := newFakeBot()
	h := newBotHandler(bot, "advisor_bot", &stubUseCase{}, nil, 1)

	h.handleMessage(context.Background(), commandMessage("/help"))
	require.Len(t, bot.texts(), 1)
	assert.Contains(t, bot.texts()[0], "/build")

	h.handleMessage(context.Background(), commandMessage("/nope"))
	assert.Contains(t, bot.texts()[1], "Unknown command")
}

func TestBuildCommand_InvalidJSON(t *testing.T) {
	bot := newFakeBot()
	uc := &stubUseCase{}
	h := newBotHandler(bot, "advisor_bot", uc, nil, 1)

	h.handleMessage(context.Background(), commandMessage(`/build {"budget":"lots"}`))

	require.Len(t, bot.texts(), 1)
	assert.Contains(t, bot.texts()[0], "Could not read the requirements")
	assert.Empty(t, uc.userIDs)
	assert.False(t, h.isProcessing(42))
}

func TestBuildCommand_EndToEnd(t *testing.T) {
	saved := sampleSaved()
	bot := newFakeBot()
	uc := &stubUseCase{saved: &saved}
	h := newBotHandler(bot, "advisor_bot", uc, nil, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Start(ctx) }()

	bot.updates <- tgbotapi.Update{Message: commandMessage("/build " + buildArgs)}
	text := bot.waitForMessage(t)

	assert.Contains(t, text, "CPUs: CPUs pick ($100)")
	assert.Contains(t, text, "Power Supply: Power_Supply pick")
	assert.Contains(t, text, "Total: $800 CAD")
	assert.Contains(t, text, "/export "+saved.ID)
	assert.Equal(t, []string{"tg:42"}, uc.userIDs)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
	assert.False(t, h.isProcessing(42))
}

func TestRunBuildJob_Failures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"bad response", usecase.ErrBadResponse, badResponseText},
		{"provider", errors.New("quota"), failedText},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bot := newFakeBot()
			h := newBotHandler(bot, "advisor_bot", &stubUseCase{err: tc.err}, nil, 1)
			require.True(t, h.startProcessing(42))

			h.runBuildJob(&buildJob{ctx: context.Background(), userID: 42, chatID: 7})

			assert.Equal(t, []string{tc.want}, bot.texts())
			assert.False(t, h.isProcessing(42))
		})
	}
}

func TestBuildCommand_BusyUser(t *testing.T) {
	bot := newFakeBot()
	h := newBotHandler(bot, "advisor_bot", &stubUseCase{}, nil, 1)
	require.True(t, h.startProcessing(42))

	h.handleMessage(context.Background(), commandMessage("/build "+buildArgs))
	assert.Equal(t, []string{busyText}, bot.texts())
}

func TestSubmitAfterShutdownIsRejected(t *testing.T) {
	bot := newFakeBot()
	h := newBotHandler(bot, "advisor_bot", &stubUseCase{}, nil, 1)
	h.workerPool.shutdown()
	require.True(t, h.startProcessing(42))

	ok := h.workerPool.submit(&buildJob{ctx: context.Background(), userID: 42, chatID: 7})
	assert.False(t, ok)
	assert.False(t, h.isProcessing(42))
}

func TestPoolRejectsWhenAllWorkersBusy(t *testing.T) {
	saved := sampleSaved()
	bot := newFakeBot()
	uc := &stubUseCase{saved: &saved, block: make(chan struct{})}
	h := newBotHandler(bot, "advisor_bot", uc, nil, 1)
	h.workerPool.start()

	require.True(t, h.startProcessing(1))
	require.True(t, h.workerPool.submit(&buildJob{ctx: context.Background(), userID: 1, chatID: 10}))

	require.True(t, h.startProcessing(2))
	assert.False(t, h.workerPool.submit(&buildJob{ctx: context.Background(), userID: 2, chatID: 20}))
	assert.False(t, h.isProcessing(2))
	assert.Contains(t, bot.waitForMessage(t), "busy")

	close(uc.block)
	h.workerPool.shutdown()
	assert.False(t, h.isProcessing(1))
}

func TestHistoryCommand(t *testing.T) {
	bot := newFakeBot()
	h := newBotHandler(bot, "advisor_bot", &stubUseCase{history: []entity.SavedBuild{sampleSaved()}}, nil, 1)

	h.handleMessage(context.Background(), commandMessage("/history"))

	require.Len(t, bot.texts(), 1)
	text := bot.texts()[0]
	assert.Contains(t, text, "2026-03-01 12:30")
	assert.Contains(t, text, "$800 CAD")
	assert.Contains(t, text, "CPU: CPUs pick")
}

func TestExportCommand(t *testing.T) {
	saved := sampleSaved()
	other := sampleSaved()
	other.ID = "someone-else"
	other.UserID = "tg:99"
	uc := &stubUseCase{builds: map[string]entity.SavedBuild{saved.ID: saved, other.ID: other}}
	bot := newFakeBot()
	h := newBotHandler(bot, "advisor_bot", uc, nil, 1)

	h.handleMessage(context.Background(), commandMessage("/export "+saved.ID))
	bot.mu.Lock()
	require.Len(t, bot.sent, 1)
	doc, ok := bot.sent[0].(tgbotapi.DocumentConfig)
	bot.mu.Unlock()
	require.True(t, ok)
	file, ok := doc.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "build_"+saved.ID+".xlsx", file.Name)
	assert.NotEmpty(t, file.Bytes)

	h.handleMessage(context.Background(), commandMessage("/export someone-else"))
	h.handleMessage(context.Background(), commandMessage("/export"))
	assert.Equal(t, []string{"Build not found.", "Usage: /export <build_id>"}, bot.texts())
}

func TestSplitIntoChunks(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitIntoChunks("short", 10))

	chunks := splitIntoChunks("line one\nline two\nline three", 12)
	assert.Equal(t, []string{"line one", "line two", "line three"}, chunks)

	multi := strings.Repeat("ё", 10) // 2 bytes each
	for _, c := range splitIntoChunks(multi, 5) {
		assert.True(t, len(c) <= 5)
		assert.Equal(t, 0, len(c)%2, "chunk must not split a rune")
	}
}

func TestFormatHistory_Empty(t *testing.T) {
	assert.Contains(t, formatHistory(nil), "no saved builds")
}
