package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-storyboard-kit/pkg/publisher"
)

// renderCmd は、保存済みの台本に対するシーン画像の描画を実行するのだ。
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "台本のシーン画像を描画しますなのだ。",
	Long: `保存済みの storyboard.json を読み込み、シーン画像を描画するのだ。
--scene を指定すると該当シーンだけを明示的に再描画し、
省略すると未描画の全シーンを順番に描画するのだよ。
一括描画では個々の失敗は記録だけして残りを続行するのだ。`,
	RunE: renderCommand,
}

func init() {
	renderCmd.Flags().IntVar(&opts.SceneNumber, "scene", 0, "描画対象のシーン番号（省略で未描画の全シーン）なのだ。")
}

func renderCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if opts.StoryboardFile == "" {
		return fmt.Errorf("台本ファイル（--storyboard）を指定してほしいのだ")
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

	batch := mgr.BuildBatchRenderer()
	if opts.SceneNumber > 0 {
		if err := batch.RenderOne(ctx, opts.SceneNumber); err != nil {
			return fmt.Errorf("シーン描画中にエラーが発生したのだ: %w", err)
		}
	} else {
		result, err := batch.RenderAll(ctx)
		if err != nil {
			return fmt.Errorf("一括描画中にエラーが発生したのだ: %w", err)
		}
		slog.Info("一括描画の結果なのだ",
			"rendered", len(result.Rendered),
			"skipped", len(result.Skipped),
			"failed", len(result.Failed),
		)
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

	slog.Info("描画工程が完了したのだ！", "storyboard", published.StoryboardPath)
	return nil
}
