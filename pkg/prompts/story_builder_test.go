package prompts

import (
	"strings"
	"testing"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

func testCharacters() domain.CharactersMap {
	return domain.CharactersMap{
		"Emma": {Name: "Emma", Appearance: "3D Clay style, young woman, analytical expression", Personality: "Strategic"},
		"Pap":  {Name: "Pap", Appearance: "3D Clay style, middle-aged man, asymmetrical mustache", Personality: "Skeptical"},
		"Nda":  {Name: "Nda", Appearance: "3D Clay style, woman with elegant hijab", Personality: "Wise"},
	}
}

func TestRoleForScene(t *testing.T) {
	t.Run("8シーンまでは固定の幕構成が割り当てられること", func(t *testing.T) {
		if RoleForScene(0) != "HOOK" {
			t.Errorf("scene 1 の期待値 HOOK, 実際の値 %s", RoleForScene(0))
		}
		if RoleForScene(7) != "RELEVANCE TODAY" {
			t.Errorf("scene 8 の期待値 RELEVANCE TODAY, 実際の値 %s", RoleForScene(7))
		}
	})

	t.Run("9シーン目以降は先頭から循環すること", func(t *testing.T) {
		if RoleForScene(8) != "HOOK" {
			t.Errorf("scene 9 の期待値 HOOK, 実際の値 %s", RoleForScene(8))
		}
	})
}

func TestNextRole(t *testing.T) {
	cases := map[string]string{
		"HOOK":    "CONTEXT",
		"CONTEXT": "REVEAL",
		"REVEAL":  "REVEAL",
		"":        "REVEAL",
	}
	for last, want := range cases {
		if got := NextRole(last); got != want {
			t.Errorf("NextRole(%q): 期待値 %s, 実際の値 %s", last, want, got)
		}
	}
}

func TestStoryPromptBuilder_BuildStoryboard(t *testing.T) {
	pb := NewStoryPromptBuilder(testCharacters())

	humanReq := domain.StoryRequest{
		InputType:   domain.InputConcept,
		StoryType:   domain.StoryHuman,
		Concept:     "The History of Batik",
		Category:    "Budaya & Analisis Sosial",
		SceneCount:  5,
		Audience:    "Umum (Analytical)",
		Language:    "Indonesian",
		VideoFormat: domain.FormatLong,
		Characters:  []string{"Emma", "Pap"},
	}

	t.Run("有効キャストの外見テキストが一言一句含まれること", func(t *testing.T) {
		prompt := pb.BuildStoryboard(humanReq, "")

		for _, name := range humanReq.Characters {
			char := testCharacters()[name]
			if !strings.Contains(prompt, char.Appearance) {
				t.Errorf("%q の外見テキストがプロンプトに含まれていません", name)
			}
		}
		// 選択されていないキャラクターは含まれないこと
		if strings.Contains(prompt, "elegant hijab") {
			t.Error("未選択キャラクター Nda がプロンプトに含まれています")
		}
	})

	t.Run("シーン数分の役割リストが列挙されること", func(t *testing.T) {
		prompt := pb.BuildStoryboard(humanReq, "")
		for i := 0; i < humanReq.SceneCount; i++ {
			line := "SCENE " + string(rune('1'+i)) + ": " + RoleForScene(i)
			if !strings.Contains(prompt, line) {
				t.Errorf("役割行 %q が見つかりません", line)
			}
		}
		if strings.Contains(prompt, "SCENE 6:") {
			t.Error("シーン数を超える役割行が含まれています")
		}
	})

	t.Run("言語規則が出力言語と英語ピボットを指定すること", func(t *testing.T) {
		prompt := pb.BuildStoryboard(humanReq, "")
		if !strings.Contains(prompt, "Indonesian") {
			t.Error("目的言語がプロンプトに含まれていません")
		}
		if !strings.Contains(prompt, "ALWAYS English") {
			t.Error("ビジュアル記述の英語ピボット指定が含まれていません")
		}
	})

	t.Run("hybridモードではキャラクター定義が含まれないこと", func(t *testing.T) {
		hybridReq := humanReq
		hybridReq.StoryType = domain.StoryHybrid
		prompt := pb.BuildStoryboard(hybridReq, "")

		if strings.Contains(prompt, "CHARACTER MASTER DEFINITIONS") {
			t.Error("facelessモードにキャラクター定義が含まれています")
		}
		if !strings.Contains(prompt, "FACELESS MODE") {
			t.Error("facelessモードの宣言が含まれていません")
		}
	})

	t.Run("抽出済み本文がソース素材として埋め込まれること", func(t *testing.T) {
		linkReq := humanReq
		linkReq.InputType = domain.InputLink
		linkReq.NewsLink = "https://example.com/article"
		prompt := pb.BuildStoryboard(linkReq, "Extracted article body.")

		if !strings.Contains(prompt, "Extracted article body.") {
			t.Error("抽出済み本文がプロンプトに含まれていません")
		}
		if !strings.Contains(prompt, "https://example.com/article") {
			t.Error("ソースURLがプロンプトに含まれていません")
		}
	})
}

func TestStoryPromptBuilder_BuildExtension(t *testing.T) {
	pb := NewStoryPromptBuilder(testCharacters())

	sb := &domain.Storyboard{
		Title:     "The Silent Collapse",
		StoryType: domain.StoryHuman,
		Metadata:  domain.Metadata{ThesisStatement: "A quiet policy change rewired an economy."},
		Scenes: []domain.Scene{
			{SceneNumber: 1, SceneRole: "HOOK", Actions: "Emma opens the sealed archive folder"},
		},
	}

	t.Run("直前シーンのactionsが値として引用されること", func(t *testing.T) {
		prompt, ok := pb.BuildExtension(sb, "English", []string{"Emma"})
		if !ok {
			t.Fatal("シーンが存在するのに ok=false が返りました")
		}
		if !strings.Contains(prompt, `"Emma opens the sealed archive folder"`) {
			t.Error("直前シーンの actions が引用されていません")
		}
		if !strings.Contains(prompt, "without resetting visual state") {
			t.Error("ビジュアル状態の維持指示が含まれていません")
		}
		if !strings.Contains(prompt, "number 2") {
			t.Error("次シーンの番号指定が含まれていません")
		}
		if !strings.Contains(prompt, "role CONTEXT") {
			t.Error("HOOKの次の役割 CONTEXT が指定されていません")
		}
	})

	t.Run("空のストーリーボードでは構築できないこと", func(t *testing.T) {
		empty := &domain.Storyboard{}
		if _, ok := pb.BuildExtension(empty, "English", nil); ok {
			t.Error("空のストーリーボードで ok=true が返りました")
		}
	})
}
