package config

import (
	"time"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultGeminiModel = "gemini-3-pro-preview"
	DefaultImageModel  = "gemini-2.5-flash-image"
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultRateInterval は連続する画像生成呼び出しの間隔です。
	// バッチ描画は外部レート制限を尊重して意図的に逐次実行されるのだ。
	DefaultRateInterval = 10 * time.Second

	DefaultOutputDir = "output"

	// DefaultStyleSuffix は全アセット共通で適用する画風（スタイルシード）です。
	DefaultStyleSuffix = "Professional 3D Stylized Realism, PolyMatter visual style, Octane 8k render, soft cinematic studio lighting, consistent clay-texture materials"
)

// Config は go-storyboard-kit の各 Runner を動作させるための基本設定なのだ。
type Config struct {
	// --- AI Model Settings ---
	GeminiAPIKey string
	GeminiModel  string
	ImageModel   string

	// --- Generation Settings ---
	StyleSuffix  string
	RateInterval time.Duration

	// RequestTimeout は本文抽出・画像取得に使う共有HTTPクライアントのタイムアウトです。
	RequestTimeout time.Duration
}

// NewConfig はデフォルト値で初期化された Config を作成し、必要最小限の値をセットして返すのだ。
func NewConfig(apiKey string) Config {
	cfg := DefaultConfig()
	cfg.GeminiAPIKey = apiKey
	return cfg
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数なのだ。
func DefaultConfig() Config {
	return Config{
		GeminiModel:    DefaultGeminiModel,
		ImageModel:     DefaultImageModel,
		StyleSuffix:    DefaultStyleSuffix,
		RateInterval:   DefaultRateInterval,
		RequestTimeout: DefaultHTTPTimeout,
	}
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() Config {
	cfg := DefaultConfig()
	cfg.GeminiAPIKey = envutil.GetEnv("GEMINI_API_KEY", "")
	cfg.GeminiModel = envutil.GetEnv("GEMINI_MODEL", DefaultGeminiModel)
	cfg.ImageModel = envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel)
	cfg.StyleSuffix = envutil.GetEnv("IMAGE_PROMPT_SUFFIX", DefaultStyleSuffix)
	return cfg
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// ソース入力関連
	InputType string // --input-type: concept | link
	Concept   string // --concept
	NewsLink  string // --link

	// 制作設定
	StoryType       string   // --story-type: hybrid | human
	Category        string   // --category
	Audience        string   // --audience
	Language        string   // --language
	VideoFormat     string   // --video-format: long | short
	SceneCount      int      // --scenes
	Characters      []string // --characters
	ThumbnailSample string   // --hook-sample
	CharacterConfig string   // --char-config: キャスト定義JSONのパス（空なら組み込みキャスト）

	// 生成結果の入出力
	OutputDir      string // --output-dir（ローカル or gs://...）
	StoryboardFile string // --storyboard: 既存の台本JSONパス（extend/render/thumbnailで使用）

	// AI挙動設定
	AIModel    string // --model: テキスト生成用のGeminiモデル
	ImageModel string // --image-model: 画像生成用のGeminiモデル

	// 描画制御
	SceneNumber int  // --scene: 単一シーン描画の対象番号（0なら全シーン）
	Force       bool // --force: 描画済みシーンの明示的な再描画
	RenderAll   bool // --render-all: 生成直後に全シーンを描画する

	// 実行制御
	HTTPTimeout  time.Duration // --http-timeout
	RateInterval time.Duration // --rate-interval
}
