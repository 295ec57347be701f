package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const messageLimit = 4096

// sendMessage sends text, split to Telegram's message limit
func (h *BotHandler) sendMessage(chatID int64, text string) {
	if h.bot == nil {
		h.log.Warn("sendMessage skipped, bot is nil", zap.Int64("chat_id", chatID))
		return
	}
	if strings.TrimSpace(text) == "" {
		h.log.Warn("empty message suppressed", zap.Int64("chat_id", chatID))
		text = failedText
	}

	for _, chunk := range splitIntoChunks(text, messageLimit) {
		if _, err := h.bot.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			h.log.Error("send message failed", zap.Int64("chat_id", chatID), zap.Error(err))
			return
		}
	}
}

func (h *BotHandler) sendDocument(chatID int64, name string, data []byte) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := h.bot.Send(doc); err != nil {
		h.log.Error("send document failed", zap.Int64("chat_id", chatID), zap.String("file", name), zap.Error(err))
		h.sendMessage(chatID, "Could not send the file.")
	}
}

func (h *BotHandler) sendChatAction(chatID int64, action string) {
	if _, err := h.bot.Send(tgbotapi.NewChatAction(chatID, action)); err != nil {
		h.log.Debug("chat action failed", zap.Error(err))
	}
}

// splitIntoChunks splits on rune boundaries, preferring line breaks
func splitIntoChunks(s string, limit int) []string {
	if limit <= 0 || len(s) <= limit {
		return []string{s}
	}
	var chunks []string
	for len(s) > limit {
		cut := strings.LastIndex(s[:limit], "\n")
		if cut <= 0 {
			cut = limit
			for cut > 0 && !isRuneStart(s[cut]) {
				cut--
			}
		}
		chunks = append(chunks, s[:cut])
		s = strings.TrimPrefix(s[cut:], "\n")
	}
	if s != "" {
		chunks = append(chunks, s)
	}
	return chunks
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
