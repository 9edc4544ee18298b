package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-storyboard-kit/pkg/prompts"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
)

var thumbnailStyleID string

// thumbnailCmd は、台本の配信メタデータを基にサムネイル画像を描画するのだ。
var thumbnailCmd = &cobra.Command{
	Use:   "thumbnail",
	Short: "配信用のサムネイル画像を描画しますなのだ。",
	Long: `保存済みの storyboard.json のタイトルと分析サマリーを基に、
クリック率を意識したサムネイル画像を描画するのだ。
--style を省略すると、全スタイル分を一括で描画するのだよ。`,
	RunE: thumbnailCommand,
}

func init() {
	thumbnailCmd.Flags().StringVar(&thumbnailStyleID, "style", "", "サムネイルのスタイルID（省略で全スタイル）なのだ。")
}

func thumbnailCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if opts.StoryboardFile == "" {
		return fmt.Errorf("台本ファイル（--storyboard）を指定してほしいのだ")
	}

	styles := prompts.ThumbnailStyles
	if thumbnailStyleID != "" {
		style, ok := prompts.StyleByID(thumbnailStyleID)
		if !ok {
			return fmt.Errorf("未知のサムネイルスタイルなのだ: %q", thumbnailStyleID)
		}
		styles = []prompts.ThumbnailStyle{style}
	}

	mgr, err := setupManager(ctx)
	if err != nil {
		return err
	}

	sb, err := publisher.Load(ctx, mgr.Reader(), opts.StoryboardFile)
	if err != nil {
		return err
	}
	mgr.Store().Install(sb)

	assets, failures, err := mgr.BuildBatchRenderer().RenderThumbnails(ctx, styles, opts.ThumbnailSample)
	if err != nil {
		return fmt.Errorf("サムネイル描画中にエラーが発生したのだ: %w", err)
	}
	for _, f := range failures {
		slog.Warn("描画に失敗したスタイルがあるのだ", "style", f.StyleID, "error", f.Err)
	}
	if len(assets) == 0 {
		return fmt.Errorf("サムネイルが1枚も描画できなかったのだ")
	}

	published, err := mgr.BuildPublisher().Publish(ctx, sb, assets, publisher.Options{OutputDir: opts.OutputDir})
	if err != nil {
		return fmt.Errorf("成果物の保存に失敗したのだ: %w", err)
	}

	slog.Info("サムネイルを保存したのだ！",
		"count", len(assets),
		"failed", len(failures),
		"output", published.ThumbnailPaths,
	)
	return nil
}
