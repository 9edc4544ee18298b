// Package publisher は制作パッケージ（台本JSON・Markdown・画像群)の永続化を担います。
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/shouni/go-remote-io/pkg/remoteio"
	"golang.org/x/sync/errgroup"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/runner"
)

// Options はパブリッシュ動作を制御する設定項目です。
type Options struct {
	OutputDir string
}

// PublishResult はパブリッシュ処理の結果として生成されたファイルの情報を保持します。
type PublishResult struct {
	StoryboardPath string   // 保存された storyboard.json のパス
	MarkdownPath   string   // 生成された制作パッケージMarkdownのパス
	ImagePaths     []string // 保存されたシーン画像のパスリスト
	ThumbnailPaths []string // 保存されたサムネイル画像のパスリスト
}

const (
	defaultStoryboardName = "storyboard.json"
	defaultPackageName    = "production_package.md"
	defaultImageDirName   = "images"
	defaultThumbDirName   = "thumbnails"
)

// Publisher は成果物の永続化とフォーマット変換を担います。
type Publisher struct {
	writer remoteio.OutputWriter
}

// New は指定されたライターを使う Publisher を作成して返す。
func New(writer remoteio.OutputWriter) *Publisher {
	return &Publisher{writer: writer}
}

// Publish は画像の保存、台本JSONとMarkdownの書き出しを一括して実行するのだ！
// 画像ファイルの保存は並列で行うが、台本JSONは画像パスの確定後に書き出す。
func (p *Publisher) Publish(ctx context.Context, sb domain.Storyboard, thumbs []runner.ThumbnailAsset, opts Options) (PublishResult, error) {
	result := PublishResult{}

	storyboardPath, err := ResolveOutputPath(opts.OutputDir, defaultStoryboardName)
	if err != nil {
		return result, err
	}
	markdownPath, err := ResolveOutputPath(opts.OutputDir, defaultPackageName)
	if err != nil {
		return result, err
	}
	imgDir, err := ResolveOutputPath(opts.OutputDir, defaultImageDirName)
	if err != nil {
		return result, err
	}
	thumbDir, err := ResolveOutputPath(opts.OutputDir, defaultThumbDirName)
	if err != nil {
		return result, err
	}

	// 1. シーン画像とサムネイルの保存（ファイル書き込みだけ並列化するのだ）
	saved := sb.Clone()
	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)

	for i := range saved.Scenes {
		if len(saved.Scenes[i].RenderedData) == 0 {
			continue
		}
		name := fmt.Sprintf("scene_%d%s", saved.Scenes[i].SceneNumber, extFromMime(saved.Scenes[i].RenderedMime))
		fullPath, err := ResolveOutputPath(imgDir, name)
		if err != nil {
			return result, fmt.Errorf("出力パスの解決に失敗しました: %w", err)
		}
		saved.Scenes[i].ImagePath = path.Join(defaultImageDirName, name)

		sc := saved.Scenes[i]
		eg.Go(func() error {
			if err := p.writer.Write(egCtx, fullPath, bytes.NewReader(sc.RenderedData), mimeOrPNG(sc.RenderedMime)); err != nil {
				return fmt.Errorf("画像の書き込みに失敗しました %s: %w", fullPath, err)
			}
			mu.Lock()
			result.ImagePaths = append(result.ImagePaths, fullPath)
			mu.Unlock()
			return nil
		})
	}

	for _, th := range thumbs {
		if len(th.Data) == 0 {
			continue
		}
		name := fmt.Sprintf("thumbnail_%s%s", th.StyleID, extFromMime(th.MimeType))
		fullPath, err := ResolveOutputPath(thumbDir, name)
		if err != nil {
			return result, fmt.Errorf("出力パスの解決に失敗しました: %w", err)
		}

		th := th
		eg.Go(func() error {
			if err := p.writer.Write(egCtx, fullPath, bytes.NewReader(th.Data), mimeOrPNG(th.MimeType)); err != nil {
				return fmt.Errorf("サムネイルの書き込みに失敗しました %s: %w", fullPath, err)
			}
			mu.Lock()
			result.ThumbnailPaths = append(result.ThumbnailPaths, fullPath)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return result, err
	}

	// 2. 台本JSONの書き出し（確定した画像パスを含む）
	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return result, fmt.Errorf("台本のシリアライズに失敗しました: %w", err)
	}
	if err := p.writer.Write(ctx, storyboardPath, bytes.NewReader(data), "application/json; charset=utf-8"); err != nil {
		return result, fmt.Errorf("台本JSONの書き込みに失敗しました: %w", err)
	}
	result.StoryboardPath = storyboardPath

	// 3. 制作パッケージMarkdownの書き出し
	content := buildMarkdown(saved)
	if err := p.writer.Write(ctx, markdownPath, strings.NewReader(content), "text/markdown; charset=utf-8"); err != nil {
		return result, fmt.Errorf("markdownファイルの書き込みに失敗しました: %w", err)
	}
	result.MarkdownPath = markdownPath

	slog.Info("Publisher: 制作パッケージを保存したのだ",
		"storyboard", result.StoryboardPath,
		"images", len(result.ImagePaths),
		"thumbnails", len(result.ThumbnailPaths),
	)
	return result, nil
}

// Load は保存済みの台本JSONを読み込んで復元します。
func Load(ctx context.Context, reader remoteio.InputReader, filePath string) (domain.Storyboard, error) {
	rc, err := reader.Open(ctx, filePath)
	if err != nil {
		return domain.Storyboard{}, fmt.Errorf("台本ファイルを開けませんでした %s: %w", filePath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return domain.Storyboard{}, fmt.Errorf("台本ファイルの読み込みに失敗しました: %w", err)
	}

	var sb domain.Storyboard
	if err := json.Unmarshal(data, &sb); err != nil {
		return domain.Storyboard{}, fmt.Errorf("台本JSONの解析に失敗しました: %w", err)
	}
	return sb, nil
}

// buildMarkdown は人間のレビュー用に制作パッケージのMarkdownを構築します。
func buildMarkdown(sb domain.Storyboard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", sb.Title)

	if !sb.Metadata.IsZero() {
		b.WriteString("## Distribution Metadata\n\n")
		if sb.Metadata.ViralTitle != "" {
			fmt.Fprintf(&b, "- **Viral Title:** %s\n", sb.Metadata.ViralTitle)
		}
		if sb.Metadata.ThesisStatement != "" {
			fmt.Fprintf(&b, "- **Thesis:** %s\n", sb.Metadata.ThesisStatement)
		}
		if sb.Metadata.Keywords != "" {
			fmt.Fprintf(&b, "- **Keywords:** %s\n", sb.Metadata.Keywords)
		}
		if len(sb.Metadata.Hashtags) > 0 {
			fmt.Fprintf(&b, "- **Hashtags:** %s\n", strings.Join(sb.Metadata.Hashtags, " "))
		}
		if sb.Metadata.LongDescription != "" {
			fmt.Fprintf(&b, "\n%s\n", sb.Metadata.LongDescription)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Scenes\n\n")
	for _, sc := range sb.Scenes {
		fmt.Fprintf(&b, "### Scene %d", sc.SceneNumber)
		if sc.SceneRole != "" {
			fmt.Fprintf(&b, " / %s", sc.SceneRole)
		}
		b.WriteString("\n\n")
		if sc.ImagePath != "" {
			fmt.Fprintf(&b, "![Scene %d](%s)\n\n", sc.SceneNumber, sc.ImagePath)
		}
		if sc.Setting != "" {
			fmt.Fprintf(&b, "- **Setting:** %s\n", sc.Setting)
		}
		if sc.Dialog != "" {
			fmt.Fprintf(&b, "- **Voice Over:** %s\n", sc.Dialog)
		}
		if sc.Actions != "" {
			fmt.Fprintf(&b, "- **Actions:** %s\n", sc.Actions)
		}
		if sc.Emotion != "" {
			fmt.Fprintf(&b, "- **Emotion:** %s\n", sc.Emotion)
		}
		if len(sc.Characters) > 0 {
			fmt.Fprintf(&b, "- **Cast:** %s\n", strings.Join(sc.Characters, ", "))
		}
		b.WriteString("\n")
	}

	if len(sb.Shorts) > 0 {
		b.WriteString("## Shorts\n\n")
		for _, sh := range sb.Shorts {
			fmt.Fprintf(&b, "### Short %d (from Scene %d)\n\n", sh.ID, sh.SourceScene)
			if sh.Narration != "" {
				fmt.Fprintf(&b, "- **Narration:** %s\n", sh.Narration)
			}
			if sh.Purpose != "" {
				fmt.Fprintf(&b, "- **Purpose:** %s\n", sh.Purpose)
			}
			if sh.VideoProductionPrompt != "" {
				fmt.Fprintf(&b, "- **Production Prompt:** %s\n", sh.VideoProductionPrompt)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

func extFromMime(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

func mimeOrPNG(mime string) string {
	if mime == "" {
		return "image/png"
	}
	return mime
}
