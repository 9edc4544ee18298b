// Package prompts は、ストーリーボード・シーン・サムネイルの各生成リクエスト文字列を
// 決定論的に組み立てます。外部モデルの呼び出しはステートレスで視覚的な記憶を共有しないため、
// キャラクターの外見テキストを毎回一言一句そのまま繰り返すこと（DNAロック）が
// 一貫性を保証する唯一のメカニズムです。最適化のために重複を除去してはいけないのだ。
package prompts

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

//go:embed system_story.md
var storySystemInstruction string

// SceneRoles はロング動画の固定された物語構成（幕構成）です。
// シーン数がこれより多い場合は循環し、少ない場合は先頭から切り詰められます。
var SceneRoles = []string{
	"HOOK",
	"BIG QUESTION",
	"BACKGROUND",
	"KEY ACTORS",
	"POINT OF NO RETURN",
	"CAUSE AND EFFECT",
	"GLOBAL IMPACT",
	"RELEVANCE TODAY",
}

// extensionRoleCycle は追記シーンに与える役割の循環なのだ（HOOK→CONTEXT→REVEAL→...）。
var extensionRoleCycle = map[string]string{
	"HOOK":    "CONTEXT",
	"CONTEXT": "REVEAL",
}

// RoleForScene は i 番目（0始まり）のシーンに割り当てる物語上の役割を返します。
func RoleForScene(i int) string {
	return SceneRoles[i%len(SceneRoles)]
}

// NextRole は直前のシーンの役割から、追記シーンに与える役割を返します。
func NextRole(last string) string {
	if next, ok := extensionRoleCycle[last]; ok {
		return next
	}
	return "REVEAL"
}

// StoryPromptBuilder は、キャラクター情報を考慮して台本生成プロンプトを構築します。
type StoryPromptBuilder struct {
	characterMap domain.CharactersMap
}

// NewStoryPromptBuilder は新しい StoryPromptBuilder を生成します。
func NewStoryPromptBuilder(chars domain.CharactersMap) *StoryPromptBuilder {
	return &StoryPromptBuilder{characterMap: chars}
}

// BuildStoryboard はストーリーボード一式（メタデータ・全シーン・ショート群）を
// 1回のテキスト生成で得るための完全なプロンプトを構築します。
// sourceText はリンク入力モードで抽出済みの本文、コンセプト入力モードでは空で構いません。
func (pb *StoryPromptBuilder) BuildStoryboard(req domain.StoryRequest, sourceText string) string {
	var sb strings.Builder

	sb.WriteString("INITIATE PRODUCTION PACKAGE\n")
	fmt.Fprintf(&sb, "ENGINE MODE: %s\n", engineModeLabel(req.StoryType))
	fmt.Fprintf(&sb, "TOPIC: %q\n", req.Topic())
	if sourceText != "" {
		fmt.Fprintf(&sb, "SOURCE MATERIAL (extracted from the link):\n<<<\n%s\n>>>\n", sourceText)
	}
	fmt.Fprintf(&sb, "CATEGORY: %s\n", req.Category)
	fmt.Fprintf(&sb, "AUDIENCE: %s\n", req.Audience)
	fmt.Fprintf(&sb, "FORMAT: %s (%s)\n", req.VideoFormat, req.AspectRatio())
	fmt.Fprintf(&sb, "SEGMENTS: %d\n\n", req.SceneCount)

	// 物語構成：シーンごとの役割を明示的に列挙するのだ
	sb.WriteString("### ACT STRUCTURE (one role per scene, in this exact order) ###\n")
	for i := 0; i < req.SceneCount; i++ {
		fmt.Fprintf(&sb, "SCENE %d: %s\n", i+1, RoleForScene(i))
	}
	sb.WriteString("\n")

	// キャストのDNA定義：外見テキストは一言一句そのまま再掲させる
	if req.StoryType == domain.StoryHuman {
		sb.WriteString(BuildCharacterIdentitySection(pb.characterMap.Select(req.Characters)))
		sb.WriteString("Only the characters listed above may appear. Reproduce their appearance descriptions VERBATIM wherever a character is referenced.\n\n")
	} else {
		sb.WriteString("### FACELESS MODE ###\nNo recurring characters. Visuals are maps, charts, and abstract data environments.\n\n")
	}

	// 言語規則：ナレーション系は出力言語、ビジュアル系は描画モデルの語彙を安定させるため常に英語
	fmt.Fprintf(&sb, "### LANGUAGE RULES ###\n")
	fmt.Fprintf(&sb, "- All narrative fields (dialog, narration, narrative_section, metadata texts): %s.\n", req.Language)
	sb.WriteString("- All visual description fields (setting, actions, visual_notes, video_production_prompt): ALWAYS English, regardless of the narrative language.\n\n")

	sb.WriteString(responseShapeSection)
	sb.WriteString("\n\n")
	sb.WriteString(storySystemInstruction)

	return sb.String()
}

// BuildExtension は、末尾のシーンから物語を1シーンだけ続けるためのプロンプトを構築します。
// 直前シーンの actions を値として引用することで、モデルに文字通りの直前文脈を与えます。
func (pb *StoryPromptBuilder) BuildExtension(sb *domain.Storyboard, language string, activeNames []string) (string, bool) {
	last, ok := sb.LastScene()
	if !ok {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ADAPTIVE ENGINE: Continue production %q in [%s] mode.\n", sb.Title, strings.ToUpper(sb.StoryType))
	fmt.Fprintf(&b, "THESIS: Follow %q.\n", sb.Metadata.ThesisStatement)
	fmt.Fprintf(&b, "CONTINUITY: Progress exactly from the previous scene's actions: %q.\n", last.Actions)
	b.WriteString("Continue without resetting visual state: keep the identical style, lighting, and character appearance.\n")

	if sb.StoryType == domain.StoryHuman {
		b.WriteString("\n")
		b.WriteString(BuildCharacterIdentitySection(pb.characterMap.Select(activeNames)))
	}

	fmt.Fprintf(&b, "\nReturn JSON for ONE additional scene, number %d, with role %s.\n", last.SceneNumber+1, NextRole(last.SceneRole))
	fmt.Fprintf(&b, "LANGUAGE RULES: narrative fields in %s; visual description fields ALWAYS in English.\n", language)
	b.WriteString("The JSON object must contain exactly these fields: scene_number, scene_role, narrative_section, setting, dialog, actions, emotion, visual_notes, ctr_message, characters.\n")

	return b.String(), true
}

// BuildCharacterIdentitySection は登場キャラクターの視覚的特徴をマスター定義として出力します。
func BuildCharacterIdentitySection(chars []domain.Character) string {
	if len(chars) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("### CHARACTER MASTER DEFINITIONS (STRICT IDENTITY) ###\n")
	for _, char := range chars {
		// SUBJECT [名前] の形式でAIにアイデンティティを固定させるのだ
		fmt.Fprintf(&sb, "- SUBJECT [%s]: APPEARANCE: {%s} PERSONALITY: {%s}\n", char.Name, char.Appearance, char.Personality)
	}
	return sb.String()
}

func engineModeLabel(storyType string) string {
	if storyType == domain.StoryHybrid {
		return "Hybrid Elegant (Faceless)"
	}
	return "Human Analytical (DNA)"
}

// responseShapeSection は台本パッケージに要求するJSON構造の説明です。
const responseShapeSection = `### RETURN JSON PACKAGE (no prose outside the JSON) ###
{
  "storyboard_title": "...",
  "metadata": {
    "thesis_statement": "...",
    "viral_title": "...",
    "long_description": "...",
    "hashtags": [],
    "keywords": "...",
    "analytical_summary": "...",
    "resolved_niche": { "ui_category": "...", "youtube_niche": "...", "authority_cluster": "..." },
    "thinking_framework": { "macro_context": "...", "causal_chain": [], "hidden_mechanism": "...", "contrarian_angle": "...", "future_projection": "..." },
    "seo_analysis": { "title_candidates": [], "selected_title": "...", "keyword_cluster": {}, "ctr_formula": "..." }
  },
  "scenes": [
    {
      "scene_number": 1,
      "scene_role": "HOOK",
      "narrative_section": "...",
      "setting": "...",
      "dialog": "Permanent VO script (authoritative & calm)...",
      "actions": "...",
      "emotion": "...",
      "visual_notes": "...",
      "ctr_message": "...",
      "characters": []
    }
  ],
  "shorts": [
    {
      "id": 1,
      "source_scene": 1,
      "short_intent": "CURIOSITY",
      "narration": "...",
      "emotion": "...",
      "purpose": "...",
      "visual_logic": "...",
      "video_production_prompt": "..."
    }
  ]
}`
