package runner

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"
)

// SceneExtender は既存の台本に連続性を保ったまま追加シーンを1つ生成します。
// 生成されたシーンの番号は常に「既存シーン数 + 1」に強制されるのだ。
type SceneExtender struct {
	cfg           config.Config
	promptBuilder *prompts.StoryPromptBuilder
	aiClient      TextModel
}

// NewSceneExtender は依存関係を注入して初期化します。
func NewSceneExtender(cfg config.Config, pb *prompts.StoryPromptBuilder, ai TextModel) *SceneExtender {
	return &SceneExtender{
		cfg:           cfg,
		promptBuilder: pb,
		aiClient:      ai,
	}
}

// Extend は最終シーンの続きとなるシーンを生成して返します。
// 台本本体は変更しません。追加の確定は呼び出し側（ストア）の責務なのだ。
func (se *SceneExtender) Extend(ctx context.Context, sb domain.Storyboard, language string, activeNames []string) (domain.Scene, error) {
	finalPrompt, ok := se.promptBuilder.BuildExtension(&sb, language, activeNames)
	if !ok {
		return domain.Scene{}, fmt.Errorf("%w: 延長元の台本にシーンがありません", ErrExtension)
	}

	slog.Info("SceneExtender: Calling Gemini API",
		"model", se.cfg.GeminiModel,
		"current_scenes", len(sb.Scenes),
	)
	resp, err := se.aiClient.GenerateContent(ctx, finalPrompt, se.cfg.GeminiModel)
	if err != nil {
		return domain.Scene{}, fmt.Errorf("%w: シーン延長のAPI呼び出しに失敗しました: %w", ErrExtension, err)
	}

	sc, err := parseScene(resp.Text)
	if err != nil {
		return domain.Scene{}, fmt.Errorf("%w: %w", ErrExtension, err)
	}
	if err := validateScene(sc); err != nil {
		return domain.Scene{}, fmt.Errorf("%w: %w", ErrExtension, err)
	}

	// AIの返した番号は信用しない。連番の不変条件はここで確定させるのだ。
	sc.SceneNumber = len(sb.Scenes) + 1
	if len(sc.Characters) == 0 {
		sc.Characters = slices.Clone(activeNames)
	}
	if strings.TrimSpace(sc.SceneRole) == "" {
		if last, ok := sb.LastScene(); ok {
			sc.SceneRole = prompts.NextRole(last.SceneRole)
		}
	}

	slog.Info("SceneExtender: Scene generated", "scene_number", sc.SceneNumber, "role", sc.SceneRole)
	return sc, nil
}

// validateScene はAI応答が1シーンとして成立する形かを検査します。
// ナレーションも動作指示も無いシーンは描画も収録もできないため拒否するのだ。
func validateScene(sc domain.Scene) error {
	if strings.TrimSpace(sc.Dialog) == "" && strings.TrimSpace(sc.Actions) == "" {
		return fmt.Errorf("AI応答のシーンにナレーションも動作指示も含まれていません")
	}
	return nil
}
