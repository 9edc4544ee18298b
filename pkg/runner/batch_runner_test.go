package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"
	"github.com/shouni/go-storyboard-kit/pkg/store"
)

func fiveSceneStoryboard() domain.Storyboard {
	sb := domain.Storyboard{
		Title:      "The Canal Crisis",
		ImageRatio: domain.RatioLandscape,
		StoryType:  domain.StoryHuman,
		Metadata:   domain.Metadata{ThesisStatement: "t", AnalyticalSummary: "summary"},
	}
	for i := 1; i <= 5; i++ {
		sb.Scenes = append(sb.Scenes, domain.Scene{
			SceneNumber: i,
			Dialog:      "...",
			Actions:     "the story advances",
			Characters:  []string{"Emma"},
		})
	}
	return sb
}

func newBatchRenderer(t *testing.T, img ImageModel, st *store.Store) *BatchRenderer {
	cfg := testConfig()
	chars := defaultChars(t)
	renderer := NewAssetRenderer(cfg, chars, prompts.NewImagePromptBuilder(chars, cfg.StyleSuffix), img)
	return NewBatchRenderer(cfg, renderer, st)
}

func TestBatchRenderer_RenderAll(t *testing.T) {
	ctx := context.Background()

	t.Run("1件の失敗が他のシーンの描画を止めない", func(t *testing.T) {
		st := store.New()
		st.Install(fiveSceneStoryboard())
		fake := &fakeImageModel{failAt: 3}

		result, err := newBatchRenderer(t, fake, st).RenderAll(ctx)
		if err != nil {
			t.Fatalf("バッチ自体は成功するはずなのだ: %v", err)
		}
		if len(result.Rendered) != 4 {
			t.Errorf("4件は描画されるはずなのだ: %v", result.Rendered)
		}
		if len(result.Failed) != 1 || result.Failed[0].SceneNumber != 3 {
			t.Fatalf("シーン3の失敗だけが記録されるはずなのだ: %+v", result.Failed)
		}
		if !errors.Is(result.Failed[0].Err, ErrRender) {
			t.Errorf("失敗は ErrRender として記録されるのだ: %v", result.Failed[0].Err)
		}

		// ストア上では成功したシーンだけが描画済みになっているのだ
		sb, _, _ := st.Snapshot()
		for _, sc := range sb.Scenes {
			wantImage := sc.SceneNumber != 3
			if sc.HasImage() != wantImage {
				t.Errorf("シーン%d の描画状態が不正なのだ: %v", sc.SceneNumber, sc.HasImage())
			}
		}
	})

	t.Run("描画済みのシーンはスキップされる", func(t *testing.T) {
		st := store.New()
		sb := fiveSceneStoryboard()
		sb.Scenes[1].RenderedData = []byte("already")
		sb.Scenes[1].RenderedMime = "image/png"
		st.Install(sb)
		fake := &fakeImageModel{}

		result, err := newBatchRenderer(t, fake, st).RenderAll(ctx)
		if err != nil {
			t.Fatalf("バッチに失敗したのだ: %v", err)
		}
		if fake.calls != 4 {
			t.Errorf("描画済みを除く4回だけ呼ばれるはずなのだ: %d", fake.calls)
		}
		if len(result.Skipped) != 1 || result.Skipped[0] != 2 {
			t.Errorf("シーン2がスキップ扱いになるはずなのだ: %v", result.Skipped)
		}
	})

	t.Run("台本が差し替えられたら残りを打ち切り結果を破棄する", func(t *testing.T) {
		st := store.New()
		st.Install(fiveSceneStoryboard())
		replacement := fiveSceneStoryboard()
		replacement.Title = "Replacement"

		fake := &fakeImageModel{}
		fake.onCall = func(call int) {
			// 2枚目の描画中にユーザーが新しい台本を生成した状況なのだ
			if call == 2 {
				st.Install(replacement)
			}
		}

		result, err := newBatchRenderer(t, fake, st).RenderAll(ctx)
		if err != nil {
			t.Fatalf("打ち切りはエラーではないのだ: %v", err)
		}
		if len(result.Rendered) != 1 {
			t.Errorf("確定済みは1件だけのはずなのだ: %v", result.Rendered)
		}
		if fake.calls != 2 {
			t.Errorf("差し替え後は追加の描画をしないのだ: %d", fake.calls)
		}

		// 新しい台本は古いバッチの書き込みを一切受けていないのだ
		sb, _, _ := st.Snapshot()
		if sb.Title != "Replacement" {
			t.Fatalf("新しい台本が保持されているはずなのだ: %q", sb.Title)
		}
		for _, sc := range sb.Scenes {
			if sc.HasImage() {
				t.Errorf("シーン%d に古いバッチの画像が混入したのだ", sc.SceneNumber)
			}
		}
	})

	t.Run("台本が未読み込みならErrRenderになる", func(t *testing.T) {
		st := store.New()
		_, err := newBatchRenderer(t, &fakeImageModel{}, st).RenderAll(ctx)
		if !errors.Is(err, ErrRender) {
			t.Errorf("ErrRender になるはずなのだ: %v", err)
		}
	})

	t.Run("キャンセルで中断しても確定済みの結果は返る", func(t *testing.T) {
		st := store.New()
		st.Install(fiveSceneStoryboard())
		cctx, cancel := context.WithCancel(ctx)
		fake := &fakeImageModel{}
		fake.onCall = func(call int) {
			if call == 2 {
				cancel()
			}
		}

		result, err := newBatchRenderer(t, fake, st).RenderAll(cctx)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("キャンセルが返るはずなのだ: %v", err)
		}
		if len(result.Rendered) < 1 {
			t.Errorf("キャンセル前に確定したシーンは結果に残るのだ: %v", result.Rendered)
		}
	})
}

func TestBatchRenderer_RenderOne(t *testing.T) {
	ctx := context.Background()

	t.Run("明示的な再描画は既存画像を上書きする", func(t *testing.T) {
		st := store.New()
		sb := fiveSceneStoryboard()
		sb.Scenes[0].RenderedData = []byte("old")
		sb.Scenes[0].RenderedMime = "image/png"
		st.Install(sb)
		fake := &fakeImageModel{}

		if err := newBatchRenderer(t, fake, st).RenderOne(ctx, 1); err != nil {
			t.Fatalf("再描画に失敗したのだ: %v", err)
		}
		got, _, _ := st.Snapshot()
		if string(got.Scenes[0].RenderedData) == "old" {
			t.Error("画像が上書きされるはずなのだ")
		}
	})

	t.Run("存在しないシーン番号はErrRenderになる", func(t *testing.T) {
		st := store.New()
		st.Install(fiveSceneStoryboard())
		err := newBatchRenderer(t, &fakeImageModel{}, st).RenderOne(ctx, 99)
		if !errors.Is(err, ErrRender) {
			t.Errorf("ErrRender になるはずなのだ: %v", err)
		}
	})
}

func TestBatchRenderer_RenderThumbnails(t *testing.T) {
	ctx := context.Background()

	t.Run("スタイルごとの失敗を隔離して残りを続行する", func(t *testing.T) {
		st := store.New()
		st.Install(fiveSceneStoryboard())
		fake := &fakeImageModel{failAt: 2}

		assets, failures, err := newBatchRenderer(t, fake, st).RenderThumbnails(ctx, prompts.ThumbnailStyles, "")
		if err != nil {
			t.Fatalf("一括描画自体は成功するはずなのだ: %v", err)
		}
		if want := len(prompts.ThumbnailStyles) - 1; len(assets) != want {
			t.Errorf("%d件の成功が返るはずなのだ: %d", want, len(assets))
		}
		if len(failures) != 1 || failures[0].StyleID != prompts.ThumbnailStyles[1].ID {
			t.Errorf("2番目のスタイルの失敗だけが記録されるはずなのだ: %+v", failures)
		}
	})
}

func TestAssetRenderer_SeedLocking(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	chars := defaultChars(t)

	t.Run("人物モードでは筆頭キャストのシードが固定される", func(t *testing.T) {
		fake := &fakeImageModel{}
		ar := NewAssetRenderer(cfg, chars, prompts.NewImagePromptBuilder(chars, cfg.StyleSuffix), fake)
		scene := domain.Scene{SceneNumber: 1, Actions: "x", Characters: []string{"Pap", "Emma"}}

		if _, err := ar.RenderScene(ctx, scene, domain.StoryHuman, domain.RatioLandscape); err != nil {
			t.Fatalf("描画に失敗したのだ: %v", err)
		}
		req := fake.requests[0]
		if req.Seed == nil {
			t.Fatal("シードが設定されるはずなのだ")
		}
		// Select は名前順に並べるので、筆頭は Emma になるのだ
		if want := int64(domain.GetSeedFromName("Emma")); *req.Seed != want {
			t.Errorf("シードが筆頭キャスト由来ではないのだ: got=%d want=%d", *req.Seed, want)
		}
	})

	t.Run("ハイブリッドモードではシードを使わない", func(t *testing.T) {
		fake := &fakeImageModel{}
		ar := NewAssetRenderer(cfg, chars, prompts.NewImagePromptBuilder(chars, cfg.StyleSuffix), fake)
		scene := domain.Scene{SceneNumber: 1, Actions: "x"}

		if _, err := ar.RenderScene(ctx, scene, domain.StoryHybrid, domain.RatioLandscape); err != nil {
			t.Fatalf("描画に失敗したのだ: %v", err)
		}
		if fake.requests[0].Seed != nil {
			t.Error("ハイブリッドモードではシードなしのはずなのだ")
		}
	})
}
