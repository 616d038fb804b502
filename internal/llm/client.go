// Package llm wraps the external chat-completion service. Every operation
// returns a Result envelope; failures of any kind (network, rate limit,
// malformed response) are converted at this boundary and never propagate as
// errors or panics.
package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/pvlab/backend/pkg/circuitbreaker"
	"github.com/pvlab/backend/pkg/logger"
	"github.com/pvlab/backend/pkg/retry"
)

// Per-task sampling temperatures. Lower values for analytical tasks, higher
// for open conversation.
const (
	TempChat         float32 = 0.7
	TempAnalysis     float32 = 0.3
	TempReview       float32 = 0.2
	TempTroubleshoot float32 = 0.5
	TempDecision     float32 = 0.4
)

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Result is the uniform outcome envelope for every gateway operation.
type Result struct {
	Success   bool      `json:"success"`
	Content   string    `json:"content,omitempty"`
	Usage     Usage     `json:"usage,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	MaxAttempts int
}

type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

func NewClient(cfg Config) *Client {
	client := openai.NewClient(cfg.APIKey)

	cb := circuitbreaker.NewCircuitBreaker("llm", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.NoRetry()
	if cfg.MaxAttempts > 1 {
		retryConfig = retry.Config{
			MaxAttempts:    cfg.MaxAttempts,
			InitialDelay:   500 * time.Millisecond,
			MaxDelay:       5 * time.Second,
			Multiplier:     2.0,
			JitterFraction: 0.1,
			Logger:         logger.GetLogger(),
		}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = TempChat
	}

	logger.Info("LLM client initialized",
		zap.String("model", cfg.Model),
		zap.Int("max_attempts", retryConfig.MaxAttempts),
	)

	return &Client{
		client:      client,
		model:       cfg.Model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     timeout,
		cb:          cb,
		retryConfig: retryConfig,
	}
}

func failure(err error) Result {
	return Result{
		Success:   false,
		Error:     err.Error(),
		Timestamp: time.Now().UTC(),
	}
}

// complete performs one chat completion and normalizes the outcome.
func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string, history []Turn, temperature float32, maxTokens int) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = failure(fmt.Errorf("llm call panicked: %v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt,
	})

	var resp openai.ChatCompletionResponse

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			var callErr error
			resp, callErr = c.client.CreateChatCompletion(
				ctx,
				openai.ChatCompletionRequest{
					Model:       c.model,
					Messages:    messages,
					Temperature: temperature,
					MaxTokens:   maxTokens,
				},
			)
			if callErr != nil {
				return fmt.Errorf("failed to create completion: %w", callErr)
			}
			return nil
		})
	})

	if err != nil {
		logger.Warn("LLM call failed", zap.Error(err))
		return failure(err)
	}

	if len(resp.Choices) == 0 {
		return failure(fmt.Errorf("empty completion response"))
	}

	logger.Debug("LLM completion generated",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return Result{
		Success: true,
		Content: resp.Choices[0].Message.Content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		Timestamp: time.Now().UTC(),
	}
}

// Converse sends a chat message with optional conversation history. Chat is
// the one task whose temperature is operator-tunable.
func (c *Client) Converse(ctx context.Context, message string, history []Turn) Result {
	return c.complete(ctx, chatSystemPrompt, message, history, c.temperature, 0)
}

// AnalyzeData asks for an analysis of arbitrary structured test data.
func (c *Client) AnalyzeData(ctx context.Context, data map[string]any, analysisType, contextNote string) Result {
	prompt := buildAnalysisPrompt(data, analysisType, contextNote)
	return c.complete(ctx, analysisSystemPrompt, prompt, nil, TempAnalysis, 0)
}

// ReviewReport asks for a quality/compliance review of report data.
func (c *Client) ReviewReport(ctx context.Context, reportData map[string]any, standards []string) Result {
	prompt := buildReviewPrompt(reportData, standards)
	return c.complete(ctx, reviewSystemPrompt, prompt, nil, TempReview, 0)
}

// TroubleshootingGuidance asks for help with an equipment or test issue.
func (c *Client) TroubleshootingGuidance(ctx context.Context, issue, equipment, testType string, errorData map[string]any) Result {
	prompt := buildTroubleshootingPrompt(issue, equipment, testType, errorData)
	return c.complete(ctx, troubleshootingSystemPrompt, prompt, nil, TempTroubleshoot, 0)
}

// DecisionRecommendation asks for a recommendation among options.
func (c *Client) DecisionRecommendation(ctx context.Context, decisionContext string, options []map[string]any, criteria []string) Result {
	prompt := buildDecisionPrompt(decisionContext, options, criteria)
	return c.complete(ctx, decisionSystemPrompt, prompt, nil, TempDecision, 0)
}

// TestDigest is the condensed view of a test result used for summaries.
type TestDigest struct {
	TestName    string `json:"test_name"`
	Result      string `json:"result"`
	KeyFindings string `json:"key_findings"`
}

// ExecutiveSummary generates summary prose for a report.
func (c *Client) ExecutiveSummary(ctx context.Context, digests []TestDigest) Result {
	prompt := buildSummaryPrompt(digests)
	return c.complete(ctx, "", prompt, nil, TempAnalysis, 1024)
}

// InterpretResults generates a short interpretation of one test's outcome.
func (c *Client) InterpretResults(ctx context.Context, testName string, measurements map[string]any, criteria map[string]string) Result {
	prompt := buildInterpretationPrompt(testName, measurements, criteria)
	return c.complete(ctx, "", prompt, nil, TempAnalysis, 512)
}

// EnhanceText rewrites text in the requested tone, preserving data.
func (c *Client) EnhanceText(ctx context.Context, text, tone string) Result {
	if tone == "" {
		tone = "professional"
	}
	prompt := buildEnhancementPrompt(text, tone)
	return c.complete(ctx, "", prompt, nil, TempAnalysis, 0)
}
