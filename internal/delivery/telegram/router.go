package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Start receives updates until ctx is cancelled.
func (h *BotHandler) Start(ctx context.Context) error {
	h.workerPool.start()
	defer h.workerPool.shutdown()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	h.log.Info("bot started", zap.String("username", h.username))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go h.handleMessage(ctx, update.Message)
		}
	}
}

func (h *BotHandler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message == nil || message.From == nil || message.Chat == nil {
		return
	}
	if extractCommand(message) != "" {
		h.handleCommand(ctx, message)
		return
	}
	if message.Chat.IsPrivate() {
		h.sendMessage(message.Chat.ID, unknownInputText)
	}
}
