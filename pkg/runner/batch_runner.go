package runner

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"
	"github.com/shouni/go-storyboard-kit/pkg/store"
)

// BatchFailure は一括描画中に失敗した1件の記録です。
type BatchFailure struct {
	SceneNumber int
	Err         error
}

// BatchResult は一括描画の集計結果です。
// 一部のシーンが失敗しても残りのシーンの描画は継続されるのだ。
type BatchResult struct {
	Rendered []int
	Skipped  []int
	Failed   []BatchFailure
}

// ThumbnailAsset は描画済みサムネイル1枚ぶんのデータです。
type ThumbnailAsset struct {
	StyleID  string
	Data     []byte
	MimeType string
}

// ThumbnailFailure はサムネイル一括描画中に失敗した1件の記録です。
type ThumbnailFailure struct {
	StyleID string
	Err     error
}

// BatchRenderer は、ストア上の台本に対する一括描画を調停する実体です。
// 外部APIのレート制限を尊重して意図的に逐次実行し、
// 描画中に台本が差し替えられた場合（エポック前進）は残りを静かに打ち切るのだ。
type BatchRenderer struct {
	cfg      config.Config
	renderer *AssetRenderer
	store    *store.Store
	limiter  *rate.Limiter
}

// NewBatchRenderer は、BatchRendererの新しいインスタンスを生成して返す。
func NewBatchRenderer(cfg config.Config, renderer *AssetRenderer, st *store.Store) *BatchRenderer {
	interval := cfg.RateInterval
	if interval <= 0 {
		interval = config.DefaultRateInterval
	}
	return &BatchRenderer{
		cfg:      cfg,
		renderer: renderer,
		store:    st,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
	}
}

// RenderAll はストア上の全シーンを順番に描画します。
// 描画済みのシーンはスキップし、個々の失敗は記録だけして続行するのだ。
func (br *BatchRenderer) RenderAll(ctx context.Context) (BatchResult, error) {
	var result BatchResult

	sb, epoch, ok := br.store.Snapshot()
	if !ok {
		return result, fmt.Errorf("%w: 描画対象の台本が読み込まれていません", ErrRender)
	}

	slog.Info("BatchRenderer: 一括描画を開始するのだ", "scenes", len(sb.Scenes), "interval", br.cfg.RateInterval)

	for _, scene := range sb.Scenes {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		// 台本が差し替えられていたら、このバッチの残りは無効なのだ
		if br.store.Epoch() != epoch {
			slog.Warn("BatchRenderer: 台本が差し替えられたため一括描画を中断します", "scene", scene.SceneNumber)
			return result, nil
		}
		if scene.HasImage() {
			result.Skipped = append(result.Skipped, scene.SceneNumber)
			continue
		}

		if err := br.limiter.Wait(ctx); err != nil {
			return result, err
		}

		resp, err := br.renderer.RenderScene(ctx, scene, sb.StoryType, sb.ImageRatio)
		if err != nil {
			slog.Error("BatchRenderer: シーンの描画に失敗したのだ", "scene", scene.SceneNumber, "error", err)
			result.Failed = append(result.Failed, BatchFailure{SceneNumber: scene.SceneNumber, Err: err})
			continue
		}

		committed := br.store.UpdateScene(epoch, scene.SceneNumber, func(s *domain.Scene) {
			s.RenderedData = resp.Data
			s.RenderedMime = resp.MimeType
		})
		if !committed {
			slog.Warn("BatchRenderer: 台本が差し替えられたため描画結果を破棄します", "scene", scene.SceneNumber)
			return result, nil
		}
		result.Rendered = append(result.Rendered, scene.SceneNumber)
	}

	slog.Info("BatchRenderer: 一括描画が完了したのだ",
		"rendered", len(result.Rendered),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed),
	)
	return result, nil
}

// RenderOne は指定されたシーン1件を明示的に描画し直します。
// 明示的な再描画なので、描画済みであっても上書きするのだ。
func (br *BatchRenderer) RenderOne(ctx context.Context, sceneNumber int) error {
	sb, epoch, ok := br.store.Snapshot()
	if !ok {
		return fmt.Errorf("%w: 描画対象の台本が読み込まれていません", ErrRender)
	}
	idx := sb.SceneIndex(sceneNumber)
	if idx < 0 {
		return fmt.Errorf("%w: シーン %d は存在しません", ErrRender, sceneNumber)
	}

	if err := br.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := br.renderer.RenderScene(ctx, sb.Scenes[idx], sb.StoryType, sb.ImageRatio)
	if err != nil {
		return err
	}

	if !br.store.UpdateScene(epoch, sceneNumber, func(s *domain.Scene) {
		s.RenderedData = resp.Data
		s.RenderedMime = resp.MimeType
	}) {
		return fmt.Errorf("%w: 台本が差し替えられたため描画結果を破棄しました", ErrRender)
	}
	return nil
}

// RenderThumbnails は指定スタイル群のサムネイルを順番に描画します。
// スタイルごとの失敗は記録だけして残りを続行するのだ。
func (br *BatchRenderer) RenderThumbnails(ctx context.Context, styles []prompts.ThumbnailStyle, hookSample string) ([]ThumbnailAsset, []ThumbnailFailure, error) {
	sb, _, ok := br.store.Snapshot()
	if !ok {
		return nil, nil, fmt.Errorf("%w: 描画対象の台本が読み込まれていません", ErrRender)
	}

	var (
		assets   []ThumbnailAsset
		failures []ThumbnailFailure
	)
	for _, style := range styles {
		if err := ctx.Err(); err != nil {
			return assets, failures, err
		}
		if err := br.limiter.Wait(ctx); err != nil {
			return assets, failures, err
		}

		resp, err := br.renderer.RenderThumbnail(ctx, style, sb, hookSample)
		if err != nil {
			slog.Error("BatchRenderer: サムネイルの描画に失敗したのだ", "style", style.ID, "error", err)
			failures = append(failures, ThumbnailFailure{StyleID: style.ID, Err: err})
			continue
		}
		assets = append(assets, ThumbnailAsset{StyleID: style.ID, Data: resp.Data, MimeType: resp.MimeType})
	}
	return assets, failures, nil
}
