package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
)

// generateCmd は、AIによるストーリーボード（台本・メタデータ・ショート案）の生成を実行するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "AIにストーリーボードを生成させますなのだ。",
	Long: `トピック文または記事URLを解析し、シーン構成・ナレーション台本・配信メタデータ・
ショート動画案を含むストーリーボードを生成するのだ。
--render-all を付けると、生成直後に全シーンの画像まで一括で描画するのだよ。`,
	RunE: generateCommand,
}

func init() {
	generateCmd.Flags().BoolVar(&opts.RenderAll, "render-all", false, "生成直後に全シーンの画像を描画するのだ。")
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if opts.Concept == "" && opts.NewsLink == "" {
		return fmt.Errorf("ソース（--concept または --link）を指定してほしいのだ")
	}

	mgr, err := setupManager(ctx)
	if err != nil {
		return err
	}

	req := buildStoryRequest(mgr.Characters())
	slog.Info("ストーリーボード生成パイプラインを起動するのだ！",
		"input_type", req.InputType,
		"story_type", req.StoryType,
		"scenes", req.SceneCount,
		"output", opts.OutputDir,
	)

	sb, err := mgr.BuildStoryboardRunner().Run(ctx, req)
	if err != nil {
		return fmt.Errorf("台本生成中にエラーが発生したのだ: %w", err)
	}
	mgr.Store().Install(sb)

	if opts.RenderAll {
		result, err := mgr.BuildBatchRenderer().RenderAll(ctx)
		if err != nil {
			return fmt.Errorf("一括描画中にエラーが発生したのだ: %w", err)
		}
		for _, f := range result.Failed {
			slog.Warn("描画に失敗したシーンがあるのだ", "scene", f.SceneNumber, "error", f.Err)
		}
	}

	snapshot, _, ok := mgr.Store().Snapshot()
	if !ok {
		return fmt.Errorf("台本の状態が失われたのだ")
	}
	published, err := mgr.BuildPublisher().Publish(ctx, snapshot, nil, publisher.Options{OutputDir: opts.OutputDir})
	if err != nil {
		return fmt.Errorf("成果物の保存に失敗したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！", "storyboard", published.StoryboardPath)
	return nil
}

// buildStoryRequest はCLIフラグからリクエストを組み立てるのだ。
func buildStoryRequest(registry domain.CharactersMap) domain.StoryRequest {
	inputType := opts.InputType
	if opts.NewsLink != "" {
		inputType = domain.InputLink
	}

	characters := opts.Characters
	if len(characters) == 0 {
		characters = registry.Names()
	}

	return domain.StoryRequest{
		InputType:       inputType,
		StoryType:       opts.StoryType,
		Concept:         opts.Concept,
		NewsLink:        opts.NewsLink,
		ThumbnailSample: opts.ThumbnailSample,
		Category:        opts.Category,
		SceneCount:      opts.SceneCount,
		Audience:        opts.Audience,
		Language:        opts.Language,
		VideoFormat:     opts.VideoFormat,
		Characters:      characters,
	}
}
