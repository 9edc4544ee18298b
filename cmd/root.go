package cmd

import (
	"context"
	"fmt"
	"os"

	clibase "github.com/shouni/go-cli-base"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/spf13/cobra"

	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/workflow"
)

var opts config.GenerateOptions

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- ソース入力関連 ---
	rootCmd.PersistentFlags().StringVar(&opts.InputType, "input-type", domain.InputConcept, "入力モード（concept | link）なのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.Concept, "concept", "t", "", "動画のトピック文なのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.NewsLink, "link", "u", "", "記事または動画のURLなのだ。")

	// --- 制作設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.StoryType, "story-type", "s", domain.StoryHybrid, "制作モード（hybrid | human）なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.Category, "category", domain.Categories[0], "カテゴリ（ニッチ）なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.Audience, "audience", domain.Audiences[0], "想定視聴者層なのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.Language, "language", "l", domain.Languages[0], "ナレーションの出力言語なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.VideoFormat, "video-format", domain.FormatLong, "動画フォーマット（long | short）なのだ。")
	rootCmd.PersistentFlags().IntVarP(&opts.SceneCount, "scenes", "n", 10, "生成するシーン数なのだ。")
	rootCmd.PersistentFlags().StringSliceVar(&opts.Characters, "characters", nil, "有効にするキャスト名（省略で全員）なのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.CharacterConfig, "char-config", "c", "", "キャストの視覚情報（DNA）を定義したJSONパス（省略で組み込みキャスト）なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ThumbnailSample, "hook-sample", "", "サムネイル用のフック文サンプルなのだ。")

	// --- 生成結果の入出力 ---
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "保存先ディレクトリ（ローカル or gs://...）なのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.StoryboardFile, "storyboard", "f", "", "既存の台本JSONのパスなのだ。")

	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.AIModel, "model", config.DefaultGeminiModel, "テキスト生成に使う Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", config.DefaultImageModel, "画像生成に使う Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.HTTPTimeout, "http-timeout", config.DefaultHTTPTimeout, "Webリクエストのタイムアウトなのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.RateInterval, "rate-interval", config.DefaultRateInterval, "画像生成呼び出しの間隔なのだ。")
}

// preRunAppE は、コマンド実行前に環境変数などの必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	// Gemini APIを利用するため、APIキーの存在チェックは欠かせないのだ！
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}

	return nil
}

// setupManager は環境変数とフラグから設定を組み立て、ワークフローを初期化するのだ。
func setupManager(ctx context.Context) (*workflow.Manager, error) {
	cfg := config.LoadConfig()
	if opts.AIModel != "" {
		cfg.GeminiModel = opts.AIModel
	}
	if opts.ImageModel != "" {
		cfg.ImageModel = opts.ImageModel
	}
	if opts.RateInterval > 0 {
		cfg.RateInterval = opts.RateInterval
	}
	if opts.HTTPTimeout > 0 {
		cfg.RequestTimeout = opts.HTTPTimeout
	}

	chars, err := loadCharacters()
	if err != nil {
		return nil, err
	}

	httpClient := httpkit.New(cfg.RequestTimeout)

	gcsFactory, err := gcsfactory.NewGCSClientFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client factory: %w", err)
	}
	reader, err := gcsFactory.NewInputReader()
	if err != nil {
		return nil, err
	}
	writer, err := gcsFactory.NewOutputWriter()
	if err != nil {
		return nil, err
	}

	return workflow.New(ctx, workflow.ManagerArgs{
		Config:     cfg,
		HTTPClient: httpClient,
		Reader:     reader,
		Writer:     writer,
		Characters: chars,
	})
}

// loadCharacters はキャスト定義を読み込むのだ。パス未指定なら組み込みキャストを使う。
func loadCharacters() (domain.CharactersMap, error) {
	if opts.CharacterConfig == "" {
		chars, err := domain.DefaultCharacters()
		if err != nil {
			return nil, fmt.Errorf("組み込みキャストの読み込みに失敗したのだ: %w", err)
		}
		return chars, nil
	}
	chars, err := domain.LoadCharacters(opts.CharacterConfig)
	if err != nil {
		return nil, fmt.Errorf("キャスト定義の読み込みに失敗したのだ: %w", err)
	}
	return chars, nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	clibase.Execute(
		"storyboard-kit",
		addAppFlags,
		preRunAppE,
		generateCmd,
		extendCmd,
		renderCmd,
		thumbnailCmd,
	)
}
