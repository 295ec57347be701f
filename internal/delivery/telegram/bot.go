package telegram

import (
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/smartspec/build-advisor/internal/usecase"
)

// botAPI the part of *tgbotapi.BotAPI the handler uses
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// BotHandler Telegram bot handler
type BotHandler struct {
	bot             botAPI
	username        string
	recommendations usecase.RecommendationUseCase
	log             *zap.Logger
	workerPool      *workerPool

	processingMu sync.Mutex
	processing   map[int64]bool
}

// NewBotHandler connects to Telegram with token
func NewBotHandler(token string, uc usecase.RecommendationUseCase, log *zap.Logger) (*BotHandler, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return newBotHandler(bot, bot.Self.UserName, uc, log, defaultWorkerCount), nil
}

func newBotHandler(bot botAPI, username string, uc usecase.RecommendationUseCase, log *zap.Logger, workers int) *BotHandler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &BotHandler{
		bot:             bot,
		username:        username,
		recommendations: uc,
		log:             log.Named("telegram"),
		processing:      make(map[int64]bool),
	}
	h.workerPool = newWorkerPool(h, workers)
	return h
}

// GetBotUsername bot username
func (h *BotHandler) GetBotUsername() string {
	return h.username
}
