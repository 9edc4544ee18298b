// Package workflow は、台本生成から画像描画・公開までの各工程を担う
// Runner 群を構築・管理します。
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	imagekit "github.com/shouni/gemini-image-kit/pkg/generator"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/go-web-exact/v2/pkg/extract"
	"google.golang.org/genai"

	"github.com/shouni/go-storyboard-kit/pkg/config"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/prompts"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
	"github.com/shouni/go-storyboard-kit/pkg/runner"
	"github.com/shouni/go-storyboard-kit/pkg/store"
)

const (
	defaultGeminiTemperature = float32(0.2)
	defaultCacheExpiration   = 5 * time.Minute
	cacheCleanupInterval     = 15 * time.Minute
	defaultTTL               = 5 * time.Minute
)

// ManagerArgs は Manager の構築に必要な依存一式です。
type ManagerArgs struct {
	Config     config.Config
	HTTPClient httpkit.ClientInterface
	Reader     remoteio.InputReader
	Writer     remoteio.OutputWriter
	Characters domain.CharactersMap
}

// Manager は、ワークフローの各工程を担う Runner 群を構築・管理します。
type Manager struct {
	cfg        config.Config
	httpClient httpkit.ClientInterface
	reader     remoteio.InputReader
	writer     remoteio.OutputWriter
	characters domain.CharactersMap
	aiClient   gemini.GenerativeModel
	extractor  *extract.Extractor
	imageGen   imagekit.ImageGenerator
	storyPB    *prompts.StoryPromptBuilder
	imagePB    *prompts.ImagePromptBuilder
	store      *store.Store
}

// New は、設定とキャラクター定義を基に新しい Manager を初期化します。
func New(ctx context.Context, args ManagerArgs) (*Manager, error) {
	if args.HTTPClient == nil {
		return nil, fmt.Errorf("httpClient は必須です")
	}
	if args.Reader == nil {
		return nil, fmt.Errorf("InputReader は必須です")
	}
	if args.Writer == nil {
		return nil, fmt.Errorf("OutputWriter は必須です")
	}
	if args.Characters == nil {
		return nil, fmt.Errorf("CharactersMap は必須です")
	}
	if args.Config.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GeminiAPIKey は必須です")
	}

	aiClient, err := initializeAIClient(ctx, args.Config.GeminiAPIKey)
	if err != nil {
		return nil, err
	}

	extractor, err := extract.NewExtractor(args.HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("エクストラクタの初期化に失敗しました: %w", err)
	}

	imageGen, err := initializeImageGenerator(args.Config, args.Reader, args.HTTPClient, aiClient)
	if err != nil {
		return nil, fmt.Errorf("画像生成エンジンの初期化に失敗しました: %w", err)
	}

	return &Manager{
		cfg:        args.Config,
		httpClient: args.HTTPClient,
		reader:     args.Reader,
		writer:     args.Writer,
		characters: args.Characters,
		aiClient:   aiClient,
		extractor:  extractor,
		imageGen:   imageGen,
		storyPB:    prompts.NewStoryPromptBuilder(args.Characters),
		imagePB:    prompts.NewImagePromptBuilder(args.Characters, args.Config.StyleSuffix),
		store:      store.New(),
	}, nil
}

// Store はセッション状態（現在のストーリーボード）を返します。
func (m *Manager) Store() *store.Store {
	return m.store
}

// Characters は読み込み済みのキャスト定義を返します。
func (m *Manager) Characters() domain.CharactersMap {
	return m.characters
}

// Reader は入力リーダー（ローカル/GCS両対応）を返します。
func (m *Manager) Reader() remoteio.InputReader {
	return m.reader
}

// BuildStoryboardRunner は台本生成を担当する Runner を作成するのだ。
func (m *Manager) BuildStoryboardRunner() *runner.StoryboardRunner {
	return runner.NewStoryboardRunner(m.cfg, m.characters, m.extractor, m.storyPB, m.aiClient)
}

// BuildSceneExtender はシーン延長を担当する Runner を作成するのだ。
func (m *Manager) BuildSceneExtender() *runner.SceneExtender {
	return runner.NewSceneExtender(m.cfg, m.storyPB, m.aiClient)
}

// BuildBatchRenderer は画像の一括描画を担当する Runner を作成するのだ。
func (m *Manager) BuildBatchRenderer() *runner.BatchRenderer {
	renderer := runner.NewAssetRenderer(m.cfg, m.characters, m.imagePB, m.imageGen)
	return runner.NewBatchRenderer(m.cfg, renderer, m.store)
}

// BuildPublisher は成果物の保存を担当する Publisher を作成するのだ。
func (m *Manager) BuildPublisher() *publisher.Publisher {
	return publisher.New(m.writer)
}

// initializeAIClient は gemini クライアントを初期化します。
func initializeAIClient(ctx context.Context, apiKey string) (gemini.GenerativeModel, error) {
	clientConfig := gemini.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(defaultGeminiTemperature),
	}
	aiClient, err := gemini.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}

// initializeImageGenerator は、画像キャッシュを含む ImageGenerator を初期化します。
func initializeImageGenerator(cfg config.Config, reader remoteio.InputReader, httpClient httpkit.ClientInterface, aiClient gemini.GenerativeModel) (imagekit.ImageGenerator, error) {
	imgCache := cache.New(defaultCacheExpiration, cacheCleanupInterval)
	core, err := imagekit.NewGeminiImageCore(
		aiClient,
		reader,
		httpClient,
		imgCache,
		defaultTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("GeminiImageCore の初期化に失敗しました: %w", err)
	}

	return imagekit.NewGeminiGenerator(cfg.ImageModel, core)
}
