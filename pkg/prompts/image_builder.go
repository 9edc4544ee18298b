package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

const (
	// NegativeScenePrompt シーン画像では「埋め込み文字」とスタイル崩れを徹底排除します
	NegativeScenePrompt = "floating text, embedded text, subtitles, captions, letters, words, watermark, username, low quality, distorted, bad anatomy, photorealistic human skin, style drift"

	// NegativeCharacterDrift キャラクターの再設計をあらゆる軸で禁止するのだ
	NegativeCharacterDrift = "character redesign, different outfit, different hairstyle, aged up, aged down, altered facial features, inconsistent character appearance"

	// NegativeThumbnailPrompt サムネイルでは文字の多用と雑多な構図を排除します
	NegativeThumbnailPrompt = "excessive text, paragraph of text, cluttered composition, watermark, low quality, distorted, bad anatomy"

	// CinematicTags クオリティ向上のための共通タグ
	CinematicTags = "cinematic composition, volumetric atmosphere, high resolution, sharp focus, 8k"
)

const (
	// RenderingStyle は全アセット共通の画風を定義します。
	RenderingStyle = `### GLOBAL VISUAL STYLE ###
- RENDERING: Professional 3D Stylized Realism, PolyMatter visual style, Octane 8k render, soft cinematic studio lighting, consistent clay-texture materials.`

	// sceneSystemInstruction はシーン画像生成のシステム指示です。
	sceneSystemInstruction = "You are a professional documentary visual artist. Create a single high-quality cinematic 3D clay render. Stay strictly within the declared style."
)

// ImagePromptBuilder は、キャラクター情報を考慮して画像生成プロンプトを構築します。
type ImagePromptBuilder struct {
	characterMap  domain.CharactersMap
	defaultSuffix string // 全アセット共通で適用する画風サフィックス
}

// NewImagePromptBuilder は新しい ImagePromptBuilder を生成します。
func NewImagePromptBuilder(characterMap domain.CharactersMap, suffix string) *ImagePromptBuilder {
	return &ImagePromptBuilder{
		characterMap:  characterMap,
		defaultSuffix: suffix,
	}
}

// BuildScene は、1シーン分の UserPrompt, SystemPrompt, NegativePrompt を生成します。
//
// Human モードではそのシーンに登場するキャラクターだけを、ロック済みの外見テキストと共に列挙します。
// シーンに登場しないキャラクターは決して含めません。キャラクター集合が空のシーンは
// 全キャストへ暗黙にフォールバックせず、「主要人物なし・環境のみ」として明示的に描画させるのだ。
// Hybrid モードではキャラクターを一切含めず、地図・チャート・抽象データのビジュアルを要求します。
func (pb *ImagePromptBuilder) BuildScene(scene domain.Scene, storyType string) (userPrompt, systemPrompt, negativePrompt string) {
	systemPrompt = pb.buildSystemPrompt()

	var sb strings.Builder
	if storyType == domain.StoryHybrid {
		sb.WriteString("CINEMATIC DOCUMENTARY RENDER: 3D CLAY ANALYTICAL EXPLAINER (FACELESS).\n")
		fmt.Fprintf(&sb, "SECTION: %s.\n", scene.NarrativeSection)
		fmt.Fprintf(&sb, "SCENE: %s. %s.\n", scene.Setting, scene.Actions)
		fmt.Fprintf(&sb, "VISUAL ELEMENTS: World maps, abstract 3D charts, industrial atmosphere, based on %q.\n", scene.VisualNotes)
		sb.WriteString("STRICT: NO FLOATING TEXT. NO EMBEDDED TEXT. Minimalist typography only if unavoidable.\n")
		negativePrompt = NegativeScenePrompt
	} else {
		sb.WriteString("3D CLAY CHARACTER DNA PRODUCTION.\n")
		cast := pb.characterMap.Select(scene.Characters)
		if len(cast) == 0 {
			sb.WriteString("CAST: No principal character. Environment-only shot: render the setting itself as the subject.\n")
		} else {
			sb.WriteString("DNA REFERENCE (reproduce EXACTLY, 100% match):\n")
			for _, char := range cast {
				fmt.Fprintf(&sb, "- %s: %s\n", char.Name, char.Appearance)
			}
			sb.WriteString("STRICT: Match facial details exactly. No redesign, no outfit change, no age change, no hairstyle change.\n")
		}
		fmt.Fprintf(&sb, "SCENE: %s. %s.\n", scene.Setting, scene.Actions)
		fmt.Fprintf(&sb, "MOOD: %s. NOTES: %s.\n", scene.Emotion, scene.VisualNotes)
		negativePrompt = NegativeScenePrompt + ", " + NegativeCharacterDrift
	}
	sb.WriteString("STYLE: ")
	sb.WriteString(CinematicTags)
	sb.WriteString(".")

	return sb.String(), systemPrompt, negativePrompt
}

// BuildThumbnail は、スタイル・タイトル・要約・任意のフック文からサムネイル用プロンプトを生成します。
func (pb *ImagePromptBuilder) BuildThumbnail(style ThumbnailStyle, title, summary string, characterNames []string, storyType, hookSample string) (userPrompt, systemPrompt, negativePrompt string) {
	systemPrompt = pb.buildSystemPrompt()

	var sb strings.Builder
	fmt.Fprintf(&sb, "VIRAL THUMBNAIL [%s]. 3D CLAY CINEMATIC.\n", strings.ToUpper(storyType))
	fmt.Fprintf(&sb, "TITLE HEADLINE: %s.\n", title)
	fmt.Fprintf(&sb, "SUBJECT SUMMARY: %s.\n", summary)
	fmt.Fprintf(&sb, "STYLE DIRECTION [%s]: %s: %s.\n", style.ID, style.Label, style.Desc)

	hook := hookSample
	if hook == "" {
		hook = "High tension"
	}
	fmt.Fprintf(&sb, "HOOK_REF: %s.\n", hook)

	if storyType == domain.StoryHuman {
		if cast := pb.characterMap.Select(characterNames); len(cast) > 0 {
			sb.WriteString("DNA REFERENCE:\n")
			for _, char := range cast {
				fmt.Fprintf(&sb, "- %s: %s\n", char.Name, char.Appearance)
			}
		}
	} else {
		sb.WriteString("SCENERY: Professional documentary landscape, faceless.\n")
	}

	sb.WriteString("Minimal text, dramatic lighting, volumetric atmosphere.")

	negativePrompt = NegativeThumbnailPrompt
	if storyType == domain.StoryHuman {
		negativePrompt += ", " + NegativeCharacterDrift
	}
	return sb.String(), systemPrompt, negativePrompt
}

// buildSystemPrompt はシステム指示と共通画風をまとめます。
func (pb *ImagePromptBuilder) buildSystemPrompt() string {
	parts := []string{sceneSystemInstruction, RenderingStyle}
	if pb.defaultSuffix != "" {
		parts = append(parts, fmt.Sprintf("### ARTISTIC STYLE ###\n%s", pb.defaultSuffix))
	}
	return strings.Join(parts, "\n\n")
}
