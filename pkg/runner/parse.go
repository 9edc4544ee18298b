package runner

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

// extractJSONBlock は AI 応答からJSON本体を切り出します。
// コードフェンス → 最外の波括弧 → 応答全文、の順で試みるのだ。
func extractJSONBlock(raw string) string {
	raw = strings.TrimSpace(raw)

	matches := jsonBlockRegex.FindStringSubmatch(raw)
	if len(matches) > 1 {
		return matches[1]
	}

	// Fallback 1: Find the outermost JSON object.
	firstBracket := strings.Index(raw, "{")
	lastBracket := strings.LastIndex(raw, "}")
	if firstBracket != -1 && lastBracket != -1 && lastBracket > firstBracket {
		return raw[firstBracket : lastBracket+1]
	}

	// Fallback 2: Assume the entire response is JSON.
	return raw
}

func parseStoryboard(raw string) (domain.Storyboard, error) {
	var sb domain.Storyboard
	if err := json.Unmarshal([]byte(extractJSONBlock(raw)), &sb); err != nil {
		return domain.Storyboard{}, fmt.Errorf("AIからの応答に含まれるJSONの解析に失敗しました (応答抜粋: %q): %w", truncateString(raw, 200), err)
	}
	return sb, nil
}

func parseScene(raw string) (domain.Scene, error) {
	var sc domain.Scene
	if err := json.Unmarshal([]byte(extractJSONBlock(raw)), &sc); err != nil {
		return domain.Scene{}, fmt.Errorf("AIからの応答に含まれるJSONの解析に失敗しました (応答抜粋: %q): %w", truncateString(raw, 200), err)
	}
	return sc, nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
