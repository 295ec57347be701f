package telegram

// startProcessing one build per user at a time
func (h *BotHandler) startProcessing(userID int64) bool {
	h.processingMu.Lock()
	defer h.processingMu.Unlock()
	if h.processing[userID] {
		return false
	}
	h.processing[userID] = true
	return true
}

func (h *BotHandler) endProcessing(userID int64) {
	h.processingMu.Lock()
	delete(h.processing, userID)
	h.processingMu.Unlock()
}

func (h *BotHandler) isProcessing(userID int64) bool {
	h.processingMu.Lock()
	defer h.processingMu.Unlock()
	return h.processing[userID]
}
