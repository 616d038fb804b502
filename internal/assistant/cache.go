package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pvlab/backend/internal/llm"
	"github.com/pvlab/backend/pkg/utils"
)

// cacheKey derives a stable key from the operation name and its inputs.
// Map arguments serialize with sorted keys, so equal inputs hash equally.
func cacheKey(op string, parts ...any) string {
	payload, err := json.Marshal(parts)
	if err != nil {
		payload = []byte(fmt.Sprintf("%v", parts))
	}
	return "llm:" + op + ":" + utils.HashString(string(payload))
}

// fromCacheOr serves a cached result when available, otherwise calls the
// model and caches a successful outcome. Failures are never cached.
func (e *Engine) fromCacheOr(ctx context.Context, key string, call func() llm.Result) llm.Result {
	if e.cache != nil {
		if result, ok := e.cache.Get(ctx, key); ok {
			return result
		}
	}

	result := call()

	if e.cache != nil && result.Success {
		e.cache.Set(ctx, key, result)
	}
	return result
}
