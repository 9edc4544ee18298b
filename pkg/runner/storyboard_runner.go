package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"
	"github.com/shouni/go-web-exact/v2/pkg/extract"
)

// DefaultTitle はAIがタイトルを返さなかった場合のフォールバックです。
const DefaultTitle = "Untitled Production"

// StoryboardRunner はコンセプトまたは記事URLから構造化された台本を生成します。
type StoryboardRunner struct {
	cfg           config.Config
	characters    domain.CharactersMap
	extractor     *extract.Extractor
	promptBuilder *prompts.StoryPromptBuilder
	aiClient      TextModel
}

// NewStoryboardRunner は依存関係（ビルダーを含む）を注入して初期化します。
func NewStoryboardRunner(
	cfg config.Config,
	characters domain.CharactersMap,
	ext *extract.Extractor,
	pb *prompts.StoryPromptBuilder,
	ai TextModel,
) *StoryboardRunner {
	return &StoryboardRunner{
		cfg:           cfg,
		characters:    characters,
		extractor:     ext,
		promptBuilder: pb,
		aiClient:      ai,
	}
}

// Run はリクエストを検証し、Gemini を用いて台本 JSON を生成します。
// 返却される Storyboard のシーン番号は必ず 1 始まりの連番に正規化されるのだ。
func (sr *StoryboardRunner) Run(ctx context.Context, req domain.StoryRequest) (domain.Storyboard, error) {
	if err := req.Validate(sr.characters); err != nil {
		return domain.Storyboard{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	// 1. リンク入力モードの場合は、記事本文を抽出するのだ
	sourceText, err := sr.resolveSource(ctx, req)
	if err != nil {
		return domain.Storyboard{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	finalPrompt := sr.promptBuilder.BuildStoryboard(req, sourceText)

	// 2. Gemini API を呼び出し
	slog.Info("StoryboardRunner: Calling Gemini API",
		"model", sr.cfg.GeminiModel,
		"story_type", req.StoryType,
		"scenes", req.SceneCount,
	)
	resp, err := sr.aiClient.GenerateContent(ctx, finalPrompt, sr.cfg.GeminiModel)
	if err != nil {
		return domain.Storyboard{}, fmt.Errorf("%w: 台本生成のAPI呼び出しに失敗しました: %w", ErrGeneration, err)
	}

	// 3. AI 応答をパースして構造化データに変換
	sb, err := parseStoryboard(resp.Text)
	if err != nil {
		return domain.Storyboard{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	if err := sr.validateStoryboard(&sb); err != nil {
		return domain.Storyboard{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	// 4. 後続工程が前提とする不変条件を確定させる
	sb.StoryType = req.StoryType
	sb.ImageRatio = req.AspectRatio()
	if strings.TrimSpace(sb.Title) == "" {
		sb.Title = DefaultTitle
	}
	sb.NormalizeScenes(req.Characters)

	slog.Info("StoryboardRunner: Storyboard generated",
		"title", sb.Title,
		"scenes", len(sb.Scenes),
		"shorts", len(sb.Shorts),
	)
	return sb, nil
}

func (sr *StoryboardRunner) resolveSource(ctx context.Context, req domain.StoryRequest) (string, error) {
	if req.InputType != domain.InputLink {
		return "", nil
	}
	if sr.extractor == nil {
		return "", fmt.Errorf("リンク入力モードには extractor が必要です")
	}
	slog.Info("StoryboardRunner: Extracting text", "url", req.NewsLink)
	text, _, err := sr.extractor.FetchAndExtractText(ctx, req.NewsLink)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from URL: %w", err)
	}
	return text, nil
}

// validateStoryboard はAI応答が制作に足る形をしているかを検査します。
func (sr *StoryboardRunner) validateStoryboard(sb *domain.Storyboard) error {
	if len(sb.Scenes) == 0 {
		return fmt.Errorf("AI応答にシーンが1つも含まれていません")
	}
	if sb.Metadata.IsZero() {
		return fmt.Errorf("AI応答に配信メタデータが含まれていません")
	}
	return nil
}
