package domain

import (
	"fmt"
	"slices"
)

// 入力ソースの種別なのだ。
const (
	InputConcept = "concept"
	InputLink    = "link"
)

// 制作モードの種別。Hybrid は顔なしデータビジュアル、Human は固定キャスト劇です。
const (
	StoryHybrid = "hybrid"
	StoryHuman  = "human"
)

// 動画フォーマットとそれに対応するアスペクト比です。
const (
	FormatLong  = "long"
	FormatShort = "short"

	RatioLandscape = "16:9"
	RatioPortrait  = "9:16"
)

const (
	// MinSceneCount は1本のストーリーボードに含めるシーンの最小数です。
	MinSceneCount = 1
	// MaxSceneCount は1本のストーリーボードに含めるシーンの最大数です。
	MaxSceneCount = 50
)

// Categories は対応しているカテゴリ（ニッチ）の一覧なのだ。
var Categories = []string{
	"Sejarah & Tragedi",
	"Sains & Inovasi",
	"Teknologi & Masa Future",
	"Ekonomi & Kebijakan",
	"Biografi Tokoh Dunia",
	"Lingkungan & Krisis",
	"Kesehatan & Riset",
	"Budaya & Analisis Sosial",
}

// Audiences は対応している想定視聴者層の一覧なのだ。
var Audiences = []string{
	"Umum (Analytical)",
	"Remaja (Edu-tainment)",
	"Dewasa (Deep Dive)",
}

// Languages はナレーション出力に対応している言語の一覧なのだ。
var Languages = []string{
	"Indonesian",
	"English",
	"Japanese",
	"Spanish",
	"Arabic",
	"Mandarin",
	"Russian",
	"German",
	"French",
	"Italian",
}

// StoryRequest はストーリーボード生成のユーザー入力を保持します。
type StoryRequest struct {
	InputType       string   // InputConcept | InputLink
	StoryType       string   // StoryHybrid | StoryHuman
	Concept         string   // InputConcept 時のトピック文
	NewsLink        string   // InputLink 時の記事/動画URL
	ThumbnailSample string   // サムネイル生成時のフック文（任意）
	Category        string   // カテゴリ（ニッチ）
	SceneCount      int      // シーン数（1〜50にクランプされる）
	Audience        string   // 想定視聴者層
	Language        string   // ナレーションの出力言語
	VideoFormat     string   // FormatLong | FormatShort
	Characters      []string // 有効なキャストの名前集合（空にはならない）
}

// AspectRatio は動画フォーマットに対応する画像アスペクト比を返します。
func (r StoryRequest) AspectRatio() string {
	if r.VideoFormat == FormatShort {
		return RatioPortrait
	}
	return RatioLandscape
}

// Topic は入力モードに応じたソーステキスト（トピック文またはURL）を返します。
func (r StoryRequest) Topic() string {
	if r.InputType == InputLink {
		return r.NewsLink
	}
	return r.Concept
}

// ClampSceneCount はシーン数を許容範囲 [MinSceneCount, MaxSceneCount] に収めます。
func ClampSceneCount(n int) int {
	if n < MinSceneCount {
		return MinSceneCount
	}
	if n > MaxSceneCount {
		return MaxSceneCount
	}
	return n
}

// ToggleCharacter は指定キャラクターの有効/無効を切り替えます。
// 最後の1人を無効化しようとした場合は何もしません。キャスト集合は決して空にならないのだ。
func (r *StoryRequest) ToggleCharacter(name string) {
	idx := slices.Index(r.Characters, name)
	if idx < 0 {
		r.Characters = append(r.Characters, name)
		return
	}
	if len(r.Characters) == 1 {
		return
	}
	r.Characters = slices.Delete(r.Characters, idx, idx+1)
}

// Validate はリクエストの整合性を検証し、最初に見つかった問題を返すのだ。
func (r *StoryRequest) Validate(registry CharactersMap) error {
	switch r.InputType {
	case InputConcept:
		if r.Concept == "" {
			return fmt.Errorf("トピック文（concept）を指定してほしいのだ")
		}
	case InputLink:
		if r.NewsLink == "" {
			return fmt.Errorf("記事または動画のURL（link）を指定してほしいのだ")
		}
	default:
		return fmt.Errorf("未知の入力モードなのだ: %q", r.InputType)
	}

	if r.StoryType != StoryHybrid && r.StoryType != StoryHuman {
		return fmt.Errorf("未知の制作モードなのだ: %q", r.StoryType)
	}
	if r.VideoFormat != FormatLong && r.VideoFormat != FormatShort {
		return fmt.Errorf("未知の動画フォーマットなのだ: %q", r.VideoFormat)
	}
	if len(r.Characters) == 0 {
		return fmt.Errorf("有効なキャストが1人も選択されていないのだ")
	}
	for _, name := range r.Characters {
		if _, ok := registry[name]; !ok {
			return fmt.Errorf("未登録のキャラクターなのだ: %q", name)
		}
	}

	r.SceneCount = ClampSceneCount(r.SceneCount)
	return nil
}
