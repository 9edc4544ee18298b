// Package runner は、台本生成・シーン延長・画像描画という
// パイプラインの各段を実行する Runner 群を提供します。
package runner

import (
	"context"
	"errors"

	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
	gemini "github.com/shouni/go-gemini-client/pkg/gemini"
)

// 各段の失敗を呼び出し側で区別するための番兵エラーなのだ。
var (
	// ErrGeneration は台本生成（地の文からの構造化）の失敗を示します。
	ErrGeneration = errors.New("storyboard generation failed")

	// ErrExtension はシーン延長の失敗を示します。
	ErrExtension = errors.New("scene extension failed")

	// ErrRender は画像描画の失敗を示します。
	ErrRender = errors.New("image rendering failed")
)

// TextModel はテキスト生成モデルが満たすべき契約です。
// 本番実装は gemini.GenerativeModel が担い、テストではフェイクに差し替えます。
type TextModel interface {
	GenerateContent(ctx context.Context, prompt string, model string) (*gemini.Response, error)
}

// ImageModel は画像生成モデルが満たすべき契約です。
type ImageModel interface {
	GenerateMangaPanel(ctx context.Context, req imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error)
}
