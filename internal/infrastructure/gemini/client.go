package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/smartspec/build-advisor/internal/domain/constants"
	"github.com/smartspec/build-advisor/internal/domain/repository"
)

var (
	// ErrMissingAPIKey no Gemini credential configured
	ErrMissingAPIKey = errors.New("gemini api key is not configured")
	// ErrNoCandidates model returned no candidates
	ErrNoCandidates = errors.New("no response candidates")
	// ErrBlocked candidate stopped by the safety filter
	ErrBlocked = errors.New("response blocked by safety filter")
)

// contentGenerator is the part of *genai.GenerativeModel the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// connectFunc configures the provider and returns a model handle.
type connectFunc func(ctx context.Context, apiKey, modelName string) (contentGenerator, io.Closer, error)

// Options Gemini client settings
type Options struct {
	APIKey    string
	ModelName string
	Timeout   time.Duration
	Logger    *zap.Logger
}

type geminiClient struct {
	apiKey    string
	modelName string
	timeout   time.Duration
	log       *zap.Logger
	connect   connectFunc

	mu     sync.Mutex
	model  contentGenerator
	closer io.Closer
}

// NewGeminiClient returns a client whose model handle is created on first use.
func NewGeminiClient(opts Options) repository.AIRepository {
	return newGeminiClient(opts, connectGenAI)
}

func newGeminiClient(opts Options, connect connectFunc) *geminiClient {
	if opts.ModelName == "" {
		opts.ModelName = constants.GeminiModelName
	}
	if opts.Timeout <= 0 {
		opts.Timeout = constants.DefaultGenerationTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &geminiClient{
		apiKey:    opts.APIKey,
		modelName: opts.ModelName,
		timeout:   opts.Timeout,
		log:       opts.Logger.Named("gemini"),
		connect:   connect,
	}
}

func connectGenAI(ctx context.Context, apiKey, modelName string) (contentGenerator, io.Closer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client.GenerativeModel(modelName), client, nil
}

// ensureInitialized creates the model handle once. A failed attempt leaves the
// handle empty so the next request tries again.
func (g *geminiClient) ensureInitialized(ctx context.Context) (contentGenerator, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.model != nil {
		return g.model, nil
	}
	model, closer, err := g.connect(ctx, g.apiKey, g.modelName)
	if err != nil {
		return nil, err
	}
	g.model = model
	g.closer = closer
	g.log.Info("model handle ready", zap.String("model", g.modelName))
	return g.model, nil
}

// GenerateText sends the prompt once. No retry: every failure goes back to the caller.
func (g *geminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	model, err := g.ensureInitialized(ctx)
	if err != nil {
		return "", fmt.Errorf("gemini init: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	started := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		g.log.Error("generate content failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrNoCandidates
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		g.log.Warn("response blocked by safety filter")
		return "", ErrBlocked
	}

	text := extractText(resp)
	g.log.Debug("generation finished",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("chars", len(text)),
	)
	return text, nil
}

// extractText concatenates the text parts of every candidate
func extractText(resp *genai.GenerateContentResponse) string {
	var result strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				result.WriteString(string(txt))
			}
		}
	}
	return result.String()
}

// Close closes the client if it was ever created
func (g *geminiClient) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closer == nil {
		return nil
	}
	err := g.closer.Close()
	g.closer = nil
	g.model = nil
	return err
}
