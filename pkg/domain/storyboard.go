package domain

import "encoding/json"

// Scene はストーリーボードの1シーン（ナレーション台本と描画可能なビジュアル指示）を保持します。
// SceneNumber は 1 始まりの連番で、シーン更新時の安定キーになります。
type Scene struct {
	SceneNumber      int      `json:"scene_number"`
	SceneRole        string   `json:"scene_role,omitempty"` // HOOK / CONTEXT / REVEAL 等の構成上の役割
	NarrativeSection string   `json:"narrative_section"`
	Setting          string   `json:"setting"`
	Dialog           string   `json:"dialog"` // 恒久的なボイスオーバー台本
	Actions          string   `json:"actions"`
	Emotion          string   `json:"emotion"`
	VisualNotes      string   `json:"visual_notes"`
	CTRMessage       string   `json:"ctr_message,omitempty"`
	Characters       []string `json:"characters,omitempty"` // このシーンに登場するキャラクター名

	// 生成済みシーン画像。JSONの台本には含めず、保存時はパスだけを記録するのだ。
	RenderedData []byte `json:"-"`
	RenderedMime string `json:"-"`
	ImagePath    string `json:"image_path,omitempty"`
}

// HasImage はこのシーンに描画済み画像が紐づいているかを返します。
func (s Scene) HasImage() bool {
	return len(s.RenderedData) > 0 || s.ImagePath != ""
}

// ShortScript はロング動画の特定シーンから派生するショート動画の台本です。
// 生成後は読み取り専用で、シーンのような追記プロトコルは持ちません。
type ShortScript struct {
	ID                    int    `json:"id"`
	SourceScene           int    `json:"source_scene"` // 同じストーリーボード内の Scene.SceneNumber への参照
	Intent                string `json:"short_intent,omitempty"`
	Narration             string `json:"narration"`
	Emotion               string `json:"emotion"`
	Purpose               string `json:"purpose"`
	VisualLogic           string `json:"visual_logic"`
	VideoProductionPrompt string `json:"video_production_prompt"`
}

// Metadata は生成される SEO・分析メタデータです。
// サブドキュメント（思考フレームワークやSEO分析）はこの層では解釈せず、そのまま保持します。
type Metadata struct {
	ThesisStatement   string   `json:"thesis_statement"`
	ViralTitle        string   `json:"viral_title"`
	LongDescription   string   `json:"long_description"`
	Hashtags          []string `json:"hashtags"`
	Keywords          string   `json:"keywords"`
	AnalyticalSummary string   `json:"analytical_summary"`

	ResolvedNiche     json.RawMessage `json:"resolved_niche,omitempty"`
	ThinkingFramework json.RawMessage `json:"thinking_framework,omitempty"`
	SEOAnalysis       json.RawMessage `json:"seo_analysis,omitempty"`
}

// IsZero はメタデータ本体が全く生成されなかったかどうかを返します。
func (m Metadata) IsZero() bool {
	return m.ThesisStatement == "" && m.ViralTitle == "" && m.LongDescription == "" &&
		len(m.Hashtags) == 0 && m.Keywords == "" && m.AnalyticalSummary == ""
}

// Storyboard は1本の制作パッケージ全体（ルート集約）です。
// 新しい生成リクエストで丸ごと置き換えられ、シーン追記と画像描画でフィールド単位に更新されます。
type Storyboard struct {
	Title      string        `json:"storyboard_title"`
	ImageRatio string        `json:"image_ratio"` // "16:9" | "9:16"
	StoryType  string        `json:"story_type"`  // StoryHybrid | StoryHuman
	Metadata   Metadata      `json:"metadata"`
	Scenes     []Scene       `json:"scenes"`
	Shorts     []ShortScript `json:"shorts"`
}

// LastScene は末尾のシーンを返します。シーンが存在しない場合は ok=false を返すのだ。
func (sb *Storyboard) LastScene() (Scene, bool) {
	if len(sb.Scenes) == 0 {
		return Scene{}, false
	}
	return sb.Scenes[len(sb.Scenes)-1], true
}

// SceneIndex は scene_number に一致するシーンの添字を返します。見つからなければ -1 なのだ。
func (sb *Storyboard) SceneIndex(sceneNumber int) int {
	for i := range sb.Scenes {
		if sb.Scenes[i].SceneNumber == sceneNumber {
			return i
		}
	}
	return -1
}

// NormalizeScenes はモデル応答のシーン列を正規化します。
// シーン番号はモデルの申告を信用せず、常に配列位置 (index+1) に振り直して連番を保証します。
// キャラクター集合が省略されたシーンには activeNames（リクエスト時の有効キャスト）を補うのだ。
func (sb *Storyboard) NormalizeScenes(activeNames []string) {
	for i := range sb.Scenes {
		sb.Scenes[i].SceneNumber = i + 1
		if len(sb.Scenes[i].Characters) == 0 && len(activeNames) > 0 {
			sb.Scenes[i].Characters = append([]string(nil), activeNames...)
		}
	}
}

// Clone はストーリーボードの浅くない複製を返します。
// シーン列とショート列は新しいスライスにコピーされ、呼び出し元の変更から隔離されます。
func (sb *Storyboard) Clone() Storyboard {
	copied := *sb
	copied.Scenes = make([]Scene, len(sb.Scenes))
	copy(copied.Scenes, sb.Scenes)
	copied.Shorts = make([]ShortScript, len(sb.Shorts))
	copy(copied.Shorts, sb.Shorts)
	return copied
}
