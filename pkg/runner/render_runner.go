package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"
)

// AssetRenderer は単一のシーン画像またはサムネイル画像を描画する実体です。
// キャラクターの見た目の一貫性は、プロンプト上のDNA定義と
// 名前から決定論的に導出するシード値の両方で固定するのだ。
type AssetRenderer struct {
	cfg           config.Config
	characters    domain.CharactersMap
	promptBuilder *prompts.ImagePromptBuilder
	imageClient   ImageModel
}

// NewAssetRenderer は、AssetRendererの新しいインスタンスを生成して返す。
func NewAssetRenderer(cfg config.Config, chars domain.CharactersMap, pb *prompts.ImagePromptBuilder, img ImageModel) *AssetRenderer {
	return &AssetRenderer{
		cfg:           cfg,
		characters:    chars,
		promptBuilder: pb,
		imageClient:   img,
	}
}

// RenderScene はシーン1枚ぶんの画像を生成して返します。台本本体は変更しません。
func (ar *AssetRenderer) RenderScene(ctx context.Context, scene domain.Scene, storyType, aspectRatio string) (*imagedom.ImageResponse, error) {
	prompt, systemPrompt, negPrompt := ar.promptBuilder.BuildScene(scene, storyType)

	// 人物モードでは、筆頭キャストの名前からシード値を固定するのだ
	var seedPtr *int64
	if storyType == domain.StoryHuman {
		if cast := ar.characters.Select(scene.Characters); len(cast) > 0 {
			seed := int64(domain.GetSeedFromName(cast[0].Name))
			seedPtr = &seed
		}
	}

	slog.Info("AssetRenderer: シーンを描画中...",
		"scene", scene.SceneNumber,
		"story_type", storyType,
		"cast", scene.Characters,
	)

	resp, err := ar.imageClient.GenerateMangaPanel(ctx, imagedom.ImageGenerationRequest{
		Prompt:         prompt,
		NegativePrompt: negPrompt,
		SystemPrompt:   systemPrompt,
		Seed:           seedPtr,
		AspectRatio:    aspectRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: シーン %d の描画に失敗しました: %w", ErrRender, scene.SceneNumber, err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: シーン %d の応答に画像データが含まれていません", ErrRender, scene.SceneNumber)
	}
	return resp, nil
}

// RenderThumbnail は指定スタイルのサムネイル画像を1枚生成して返します。
// サムネイルは配信面の都合で常に横長（16:9）で描画するのだ。
func (ar *AssetRenderer) RenderThumbnail(ctx context.Context, style prompts.ThumbnailStyle, sb domain.Storyboard, hookSample string) (*imagedom.ImageResponse, error) {
	summary := sb.Metadata.AnalyticalSummary
	if summary == "" {
		summary = sb.Metadata.ThesisStatement
	}
	prompt, systemPrompt, negPrompt := ar.promptBuilder.BuildThumbnail(style, sb.Title, summary, castNames(sb), sb.StoryType, hookSample)

	var seedPtr *int64
	if sb.StoryType == domain.StoryHuman {
		if cast := ar.characters.Select(castNames(sb)); len(cast) > 0 {
			seed := int64(domain.GetSeedFromName(cast[0].Name))
			seedPtr = &seed
		}
	}

	slog.Info("AssetRenderer: サムネイルを描画中...", "style", style.ID, "title", sb.Title)

	resp, err := ar.imageClient.GenerateMangaPanel(ctx, imagedom.ImageGenerationRequest{
		Prompt:         prompt,
		NegativePrompt: negPrompt,
		SystemPrompt:   systemPrompt,
		Seed:           seedPtr,
		AspectRatio:    domain.RatioLandscape,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: サムネイル(%s)の描画に失敗しました: %w", ErrRender, style.ID, err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: サムネイル(%s)の応答に画像データが含まれていません", ErrRender, style.ID)
	}
	return resp, nil
}

// castNames は台本全体に登場するキャラクター名の重複なしリストを返すのだ。
func castNames(sb domain.Storyboard) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, sc := range sb.Scenes {
		for _, name := range sc.Characters {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
