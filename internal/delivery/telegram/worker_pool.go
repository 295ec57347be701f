package telegram

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/smartspec/build-advisor/internal/domain/entity"
)

// buildJob a /build request waiting for the model
type buildJob struct {
	ctx    context.Context
	userID int64
	chatID int64
	req    entity.BuildRequest
}

// workerPool bounds how many model calls the bot makes at once. Jobs are never
// queued: a job either gets a free slot immediately or is rejected.
type workerPool struct {
	slots       chan struct{}
	workerCount int
	handler     *BotHandler
	wg          sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

const defaultWorkerCount = 8

func newWorkerPool(handler *BotHandler, workerCount int) *workerPool {
	if workerCount <= 0 {
		workerCount = defaultWorkerCount
	}
	return &workerPool{
		slots:       make(chan struct{}, workerCount),
		workerCount: workerCount,
		handler:     handler,
	}
}

// start reopens a stopped pool.
func (wp *workerPool) start() {
	wp.mu.Lock()
	wp.closed = false
	wp.mu.Unlock()
	wp.handler.log.Info("build workers ready", zap.Int("workers", wp.workerCount))
}

// submit runs job on a free slot; a full or stopped pool rejects it.
func (wp *workerPool) submit(job *buildJob) bool {
	wp.mu.RLock()
	accepted := false
	if !wp.closed {
		select {
		case wp.slots <- struct{}{}:
			accepted = true
			wp.wg.Add(1)
		default:
			wp.handler.log.Warn("all build workers busy", zap.Int64("user_id", job.userID))
		}
	}
	wp.mu.RUnlock()

	if !accepted {
		wp.handler.endProcessing(job.userID)
		wp.handler.sendMessage(job.chatID, "The bot is busy right now. Please try again in a moment.")
		return false
	}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.slots }()
		wp.process(job)
	}()
	return true
}

func (wp *workerPool) process(job *buildJob) {
	defer func() {
		if r := recover(); r != nil {
			wp.handler.log.Error("panic in build worker",
				zap.Int64("user_id", job.userID),
				zap.Any("panic", r),
			)
			wp.handler.endProcessing(job.userID)
			wp.handler.sendMessage(job.chatID, failedText)
		}
	}()
	wp.handler.runBuildJob(job)
}

// shutdown rejects new jobs and waits for running ones.
func (wp *workerPool) shutdown() {
	wp.mu.Lock()
	wp.closed = true
	wp.mu.Unlock()

	wp.wg.Wait()
	wp.handler.log.Info("build workers stopped")
}
