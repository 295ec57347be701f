package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/smartspec/build-advisor/internal/domain/repository"
	"github.com/smartspec/build-advisor/internal/infrastructure/export"
	"github.com/smartspec/build-advisor/internal/usecase"
)

const helpText = `PC Build Advisor

/build {json} - recommend a build. Example:
/build {"budget":1000,"minFps":60,"gamesList":["Fortnite"],"displayResolution":"1080p","graphicalQuality":"high","preOwnedHardware":[]}

/history - your saved builds
/export <build_id> - download a build as a spreadsheet
/help - this message`

const (
	unknownInputText = "Send /help to see what I can do."
	busyText         = "Your previous build is still being prepared. Please wait."
	badResponseText  = "The model returned a malformed build (bad response). Please try again."
	failedText       = "Sorry, the build could not be generated right now. Please try again later."
)

// handleCommand dispatches a slash command
func (h *BotHandler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	switch extractCommand(message) {
	case "start", "help":
		h.sendMessage(chatID, helpText)
	case "build":
		h.handleBuildCommand(ctx, message)
	case "history":
		h.handleHistoryCommand(ctx, message)
	case "export":
		h.handleExportCommand(ctx, message)
	default:
		h.sendMessage(chatID, "Unknown command. "+unknownInputText)
	}
}

func (h *BotHandler) handleBuildCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	req, err := usecase.DecodeBuildRequest([]byte(commandArgs(message)))
	if err != nil {
		h.sendMessage(chatID, "Could not read the requirements: "+err.Error()+"\n\n"+helpText)
		return
	}

	userID := message.From.ID
	if !h.startProcessing(userID) {
		h.sendMessage(chatID, busyText)
		return
	}
	h.sendChatAction(chatID, tgbotapi.ChatTyping)

	h.workerPool.submit(&buildJob{
		ctx:    ctx,
		userID: userID,
		chatID: chatID,
		req:    req,
	})
}

// runBuildJob is executed by a pool worker.
func (h *BotHandler) runBuildJob(job *buildJob) {
	defer h.endProcessing(job.userID)

	saved, err := h.recommendations.RecommendForUser(job.ctx, historyUserID(job.userID), job.req)
	if err != nil {
		if errors.Is(err, usecase.ErrBadResponse) {
			h.sendMessage(job.chatID, badResponseText)
			return
		}
		h.log.Error("recommendation failed", zap.Int64("user_id", job.userID), zap.Error(err))
		h.sendMessage(job.chatID, failedText)
		return
	}
	h.sendMessage(job.chatID, formatSavedBuild(*saved))
}

func (h *BotHandler) handleHistoryCommand(ctx context.Context, message *tgbotapi.Message) {
	builds, err := h.recommendations.History(ctx, historyUserID(message.From.ID))
	if err != nil {
		h.log.Error("history lookup failed", zap.Int64("user_id", message.From.ID), zap.Error(err))
		h.sendMessage(message.Chat.ID, "Could not load your builds.")
		return
	}
	h.sendMessage(message.Chat.ID, formatHistory(builds))
}

func (h *BotHandler) handleExportCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	id := strings.TrimSpace(commandArgs(message))
	if id == "" {
		h.sendMessage(chatID, "Usage: /export <build_id>")
		return
	}

	build, err := h.recommendations.GetBuild(ctx, id)
	if err != nil || build.UserID != historyUserID(message.From.ID) {
		if err != nil && !errors.Is(err, repository.ErrBuildNotFound) {
			h.log.Error("build lookup failed", zap.String("build_id", id), zap.Error(err))
		}
		h.sendMessage(chatID, "Build not found.")
		return
	}

	data, err := export.BuildXLSX(*build)
	if err != nil {
		h.log.Error("xlsx export failed", zap.String("build_id", id), zap.Error(err))
		h.sendMessage(chatID, "Export failed.")
		return
	}
	h.sendDocument(chatID, export.FileName(*build), data)
}

// historyUserID namespaces Telegram users in the shared build history.
func historyUserID(telegramID int64) string {
	return "tg:" + strconv.FormatInt(telegramID, 10)
}

func extractCommand(msg *tgbotapi.Message) string {
	if msg == nil {
		return ""
	}
	if msg.IsCommand() {
		return strings.ToLower(msg.Command())
	}
	txt := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(txt, "/") {
		return ""
	}
	first := strings.TrimPrefix(strings.Fields(txt)[0], "/")
	if first == "" {
		return ""
	}
	return strings.ToLower(strings.SplitN(first, "@", 2)[0])
}

// commandArgs text after the command word, newlines kept
func commandArgs(msg *tgbotapi.Message) string {
	if msg == nil {
		return ""
	}
	if msg.IsCommand() {
		return strings.TrimSpace(msg.CommandArguments())
	}
	txt := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(txt, "/") {
		return ""
	}
	if i := strings.IndexAny(txt, " \t\n"); i >= 0 {
		return strings.TrimSpace(txt[i:])
	}
	return ""
}
