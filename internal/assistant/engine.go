// Package assistant is the intelligence layer: it joins the conversation
// store, the knowledge base, and the model gateway into task-level
// operations (chat, analysis, review, troubleshooting, decision support).
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pvlab/backend/internal/knowledge"
	"github.com/pvlab/backend/internal/llm"
	"github.com/pvlab/backend/internal/session"
	"github.com/pvlab/backend/pkg/logger"
)

// Gateway is the slice of the model client the engine needs.
type Gateway interface {
	Converse(ctx context.Context, message string, history []llm.Turn) llm.Result
	AnalyzeData(ctx context.Context, data map[string]any, analysisType, contextNote string) llm.Result
	ReviewReport(ctx context.Context, reportData map[string]any, standards []string) llm.Result
	TroubleshootingGuidance(ctx context.Context, issue, equipment, testType string, errorData map[string]any) llm.Result
	DecisionRecommendation(ctx context.Context, decisionContext string, options []map[string]any, criteria []string) llm.Result
}

// ResponseCache caches model results keyed by prompt hash. Optional; a nil
// cache disables caching.
type ResponseCache interface {
	Get(ctx context.Context, key string) (llm.Result, bool)
	Set(ctx context.Context, key string, result llm.Result)
}

type Engine struct {
	gateway   Gateway
	sessions  *session.Store
	knowledge *knowledge.Store
	cache     ResponseCache
}

func NewEngine(gateway Gateway, sessions *session.Store, kb *knowledge.Store, cache ResponseCache) *Engine {
	return &Engine{
		gateway:   gateway,
		sessions:  sessions,
		knowledge: kb,
		cache:     cache,
	}
}

func (e *Engine) Sessions() *session.Store    { return e.sessions }
func (e *Engine) Knowledge() *knowledge.Store { return e.knowledge }

// Context categories consulted for every chat turn, in prompt order.
var defaultContextCategories = []string{"standards", "test_procedures", "equipment", "best_practices"}

// KnowledgeHit groups the matches retrieved for one category.
type KnowledgeHit struct {
	Category string           `json:"category"`
	Matches  []knowledge.Match `json:"matches"`
}

// ContextInfo is the assembled retrieval context for a query.
type ContextInfo struct {
	Query               string         `json:"query"`
	ConversationHistory []session.Turn `json:"conversation_history"`
	Knowledge           []KnowledgeHit `json:"knowledge"`
}

// BuildContext gathers recent conversation turns and knowledge entries
// relevant to a query. Categories defaults to the standard four; categories
// with no matches are omitted.
func (e *Engine) BuildContext(query, sessionID string, categories []string) ContextInfo {
	info := ContextInfo{Query: query}

	if sessionID != "" {
		if sess, ok := e.sessions.Get(sessionID); ok {
			info.ConversationHistory = sess.RecentMessages(5)
		}
	}

	if len(categories) == 0 {
		categories = defaultContextCategories
	}

	for _, cat := range categories {
		if matches, ok := e.knowledge.Retrieve(query, cat); ok {
			info.Knowledge = append(info.Knowledge, KnowledgeHit{Category: cat, Matches: matches})
		}
	}

	return info
}

// enhancePrompt appends a [Relevant Context] block when retrieval found
// anything. Categories keep their assembly order so the same query produces
// the same prompt.
func enhancePrompt(message string, info ContextInfo) string {
	if len(info.Knowledge) == 0 {
		return message
	}

	var b strings.Builder
	b.WriteString(message)
	b.WriteString("\n\n[Relevant Context]:\n")
	for _, hit := range info.Knowledge {
		fmt.Fprintf(&b, "\n%s:\n", strings.ToUpper(hit.Category))
		for _, m := range hit.Matches {
			fmt.Fprintf(&b, "- %s: %s\n", m.Key, entrySummary(m.Entry.Content))
		}
	}
	return b.String()
}

// entrySummary renders an entry for prompt injection: the "content" field
// when present, otherwise the whole value.
func entrySummary(content any) string {
	if m, ok := content.(map[string]any); ok {
		if c, ok := m["content"].(string); ok {
			return c
		}
	}
	return fmt.Sprintf("%v", content)
}

func toLLMTurns(turns []session.Turn) []llm.Turn {
	out := make([]llm.Turn, len(turns))
	for i, t := range turns {
		out[i] = llm.Turn{Role: t.Role, Content: t.Content}
	}
	return out
}

// ChatResponse is the outcome of one chat turn.
type ChatResponse struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message,omitempty"`
	SessionID   string    `json:"session_id"`
	ContextUsed bool      `json:"context_used"`
	Usage       llm.Usage `json:"usage,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Error       string    `json:"error,omitempty"`
}

// Chat handles one conversational turn with context awareness. The user and
// assistant messages are appended to the session only after a successful
// model call, so a failed turn leaves the log untouched.
func (e *Engine) Chat(ctx context.Context, message, sessionID, userID string, includeContext bool) ChatResponse {
	sess := e.sessions.GetOrCreate(sessionID, userID)

	prompt := message
	contextUsed := false
	if includeContext {
		info := e.BuildContext(message, sess.ID, nil)
		prompt = enhancePrompt(message, info)
		contextUsed = true
	}

	history := toLLMTurns(sess.RecentMessages(0))

	result := e.gateway.Converse(ctx, prompt, history)
	if !result.Success {
		logger.Warn("Chat turn failed",
			zap.String("session_id", sess.ID),
			zap.String("error", result.Error),
		)
		return ChatResponse{
			Success:   false,
			SessionID: sess.ID,
			Error:     result.Error,
			Timestamp: result.Timestamp,
		}
	}

	sess.AppendMessage(session.RoleUser, message)
	sess.AppendMessage(session.RoleAssistant, result.Content)

	return ChatResponse{
		Success:     true,
		Message:     result.Content,
		SessionID:   sess.ID,
		ContextUsed: contextUsed,
		Usage:       result.Usage,
		Timestamp:   result.Timestamp,
	}
}

// AnalyzeData runs an AI analysis over structured test data. When a session
// is given, the previous analysis marker feeds into the prompt context and a
// new marker is stored afterward.
func (e *Engine) AnalyzeData(ctx context.Context, data map[string]any, testType, analysisType, sessionID string) llm.Result {
	if analysisType == "" {
		analysisType = "comprehensive"
	}

	contextNote := fmt.Sprintf("Test Type: %s\nAnalysis: %s", testType, analysisType)

	if sessionID != "" {
		if sess, ok := e.sessions.Get(sessionID); ok {
			prev := sess.GetMetadata("last_analysis", "None")
			contextNote += fmt.Sprintf("\nPrevious Context: %v", prev)
		}
	}

	result := e.fromCacheOr(ctx, cacheKey("analyze", testType, analysisType, data), func() llm.Result {
		return e.gateway.AnalyzeData(ctx, data, analysisType, contextNote)
	})

	if sessionID != "" && result.Success {
		sess := e.sessions.GetOrCreate(sessionID, "")
		sess.SetMetadata("last_analysis", map[string]any{
			"test_type": testType,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}

	return result
}

// StructuredReview is a coarse machine-readable digest of a free-text
// review.
type StructuredReview struct {
	RawReview         string    `json:"raw_review"`
	HasIssues         bool      `json:"has_issues"`
	CompletenessScore float64   `json:"completeness_score"`
	Timestamp         time.Time `json:"timestamp"`
}

type ReviewResponse struct {
	llm.Result
	StructuredReview *StructuredReview `json:"structured_review,omitempty"`
}

// ReviewReport reviews report data for quality and compliance. Known
// standards get their requirements injected from the knowledge base before
// the model sees the report.
func (e *Engine) ReviewReport(ctx context.Context, reportData map[string]any, standards []string) ReviewResponse {
	for _, std := range standards {
		key := strings.ReplaceAll(strings.ToLower(std), " ", "_")
		if matches, ok := e.knowledge.Get("standards", key); ok && len(matches) > 0 {
			reportData["_standard_requirements"] = matches[0].Entry.Content
		}
	}

	result := e.gateway.ReviewReport(ctx, reportData, standards)
	resp := ReviewResponse{Result: result}
	if result.Success {
		resp.StructuredReview = parseReview(result.Content)
	}
	return resp
}

var reviewIssueWords = []string{"error", "missing", "issue", "problem", "incorrect"}

func parseReview(reviewText string) *StructuredReview {
	lower := strings.ToLower(reviewText)

	hasIssues := false
	for _, w := range reviewIssueWords {
		if strings.Contains(lower, w) {
			hasIssues = true
			break
		}
	}

	return &StructuredReview{
		RawReview:         reviewText,
		HasIssues:         hasIssues,
		CompletenessScore: estimateCompleteness(lower),
		Timestamp:         time.Now().UTC(),
	}
}

// estimateCompleteness scores a review by the balance of positive and
// negative wording. No signal either way reads as 0.5.
func estimateCompleteness(lowerText string) float64 {
	positive := []string{"complete", "adequate", "sufficient", "good", "correct"}
	negative := []string{"missing", "incomplete", "insufficient", "error", "incorrect"}

	var pos, neg int
	for _, w := range positive {
		if strings.Contains(lowerText, w) {
			pos++
		}
	}
	for _, w := range negative {
		if strings.Contains(lowerText, w) {
			neg++
		}
	}

	if pos+neg == 0 {
		return 0.5
	}
	return float64(pos) / float64(pos+neg)
}

// Troubleshoot provides guidance for an equipment or test issue. Equipment
// and procedure entries from the knowledge base are folded into the error
// data, and the exchange is logged to the session on success.
func (e *Engine) Troubleshoot(ctx context.Context, issue, equipment, testType string, errorData map[string]any, sessionID string) llm.Result {
	lookup := func(category, name string) any {
		key := strings.ReplaceAll(strings.ToLower(name), " ", "_")
		if matches, ok := e.knowledge.Get(category, key); ok && len(matches) > 0 {
			return matches[0].Entry.Content
		}
		return nil
	}

	var equipmentInfo, procedureInfo any
	if equipment != "" {
		equipmentInfo = lookup("equipment", equipment)
	}
	if testType != "" {
		procedureInfo = lookup("test_procedures", testType)
	}

	if equipmentInfo != nil || procedureInfo != nil {
		if errorData == nil {
			errorData = make(map[string]any)
		}
		errorData["_equipment_info"] = equipmentInfo
		errorData["_procedure_info"] = procedureInfo
	}

	result := e.gateway.TroubleshootingGuidance(ctx, issue, equipment, testType, errorData)

	if sessionID != "" && result.Success {
		sess := e.sessions.GetOrCreate(sessionID, "")
		sess.AppendMessage(session.RoleUser, "Troubleshooting: "+issue)
		sess.AppendMessage(session.RoleAssistant, result.Content)
	}

	return result
}

// DecisionSupport evaluates options against criteria. Best-practice entries
// are appended to the decision context, and the exchange is logged to the
// session on success.
func (e *Engine) DecisionSupport(ctx context.Context, decisionContext string, options []map[string]any, criteria []string, sessionID string) llm.Result {
	if matches, ok := e.knowledge.Get("best_practices", ""); ok && len(matches) > 0 {
		var b strings.Builder
		b.WriteString(decisionContext)
		b.WriteString("\n\nRelevant Best Practices:\n")
		for _, m := range matches {
			fmt.Fprintf(&b, "- %s: %s\n", m.Key, entrySummary(m.Entry.Content))
		}
		decisionContext = b.String()
	}

	result := e.gateway.DecisionRecommendation(ctx, decisionContext, options, criteria)

	if sessionID != "" && result.Success {
		sess := e.sessions.GetOrCreate(sessionID, "")
		sess.AppendMessage(session.RoleUser, "Decision: "+decisionContext)
		sess.AppendMessage(session.RoleAssistant, result.Content)
	}

	return result
}

// Insights reports automated observations over stored data. Data sources are
// not wired up yet, so the scope is echoed back with an empty insight list.
type Insights struct {
	Success   bool      `json:"success"`
	Scope     string    `json:"scope"`
	Insights  []string  `json:"insights"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *Engine) GetInsights(scope string) Insights {
	if scope == "" {
		scope = "recent"
	}
	return Insights{
		Success:   true,
		Scope:     scope,
		Insights:  []string{},
		Timestamp: time.Now().UTC(),
	}
}
