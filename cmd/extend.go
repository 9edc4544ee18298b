package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-storyboard-kit/pkg/publisher"
)

// extendCmd は、保存済みの台本に連続性を保った追加シーンを1つ生成するのだ。
var extendCmd = &cobra.Command{
	Use:   "extend",
	Short: "既存の台本にシーンを1つ追加しますなのだ。",
	Long: `保存済みの storyboard.json を読み込み、最終シーンの続きとなるシーンを生成して
末尾に追記するのだ。既存シーンの台本と画像には一切手を付けないのだよ。`,
	RunE: extendCommand,
}

func extendCommand(cmd *cobra.Command, args []string) error {
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
	epoch := mgr.Store().Install(sb)

	activeNames := opts.Characters
	if len(activeNames) == 0 {
		activeNames = mgr.Characters().Names()
	}

	scene, err := mgr.BuildSceneExtender().Extend(ctx, sb, opts.Language, activeNames)
	if err != nil {
		return fmt.Errorf("シーン延長中にエラーが発生したのだ: %w", err)
	}
	if !mgr.Store().AppendScene(epoch, scene) {
		return fmt.Errorf("シーンの追記に失敗したのだ")
	}

	snapshot, _, ok := mgr.Store().Snapshot()
	if !ok {
		return fmt.Errorf("台本の状態が失われたのだ")
	}
	published, err := mgr.BuildPublisher().Publish(ctx, snapshot, nil, publisher.Options{OutputDir: opts.OutputDir})
	if err != nil {
		return fmt.Errorf("成果物の保存に失敗したのだ: %w", err)
	}

	slog.Info("シーンを追加したのだ！", "scene", scene.SceneNumber, "storyboard", published.StoryboardPath)
	return nil
}
