package domain

import (
	"reflect"
	"testing"
)

func TestStoryRequest_ToggleCharacter(t *testing.T) {
	t.Run("有効なキャラクターを外せること", func(t *testing.T) {
		req := StoryRequest{Characters: []string{"Emma", "Pap"}}
		req.ToggleCharacter("Pap")
		if !reflect.DeepEqual(req.Characters, []string{"Emma"}) {
			t.Errorf("期待値 [Emma], 実際の値 %v", req.Characters)
		}
	})

	t.Run("無効なキャラクターを追加できること", func(t *testing.T) {
		req := StoryRequest{Characters: []string{"Emma"}}
		req.ToggleCharacter("Nda")
		if !reflect.DeepEqual(req.Characters, []string{"Emma", "Nda"}) {
			t.Errorf("期待値 [Emma Nda], 実際の値 %v", req.Characters)
		}
	})

	t.Run("最後の1人は外せないこと", func(t *testing.T) {
		req := StoryRequest{Characters: []string{"Emma"}}
		req.ToggleCharacter("Emma")
		if len(req.Characters) != 1 {
			t.Errorf("キャスト集合が空になりました: %v", req.Characters)
		}
	})
}

func TestStoryRequest_AspectRatio(t *testing.T) {
	longReq := StoryRequest{VideoFormat: FormatLong}
	if ratio := longReq.AspectRatio(); ratio != RatioLandscape {
		t.Errorf("longフォーマットの期待値 %s, 実際の値 %s", RatioLandscape, ratio)
	}

	shortReq := StoryRequest{VideoFormat: FormatShort}
	if ratio := shortReq.AspectRatio(); ratio != RatioPortrait {
		t.Errorf("shortフォーマットの期待値 %s, 実際の値 %s", RatioPortrait, ratio)
	}
}

func TestClampSceneCount(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, MinSceneCount},
		{-3, MinSceneCount},
		{5, 5},
		{50, 50},
		{51, MaxSceneCount},
	}
	for _, c := range cases {
		if got := ClampSceneCount(c.in); got != c.want {
			t.Errorf("ClampSceneCount(%d): 期待値 %d, 実際の値 %d", c.in, c.want, got)
		}
	}
}

func TestStoryRequest_Validate(t *testing.T) {
	registry := CharactersMap{
		"Emma": Character{Name: "Emma"},
		"Pap":  Character{Name: "Pap"},
	}

	valid := func() StoryRequest {
		return StoryRequest{
			InputType:   InputConcept,
			StoryType:   StoryHuman,
			Concept:     "The Discovery of Penicillin",
			SceneCount:  5,
			Language:    "English",
			VideoFormat: FormatLong,
			Characters:  []string{"Emma"},
		}
	}

	t.Run("正常なリクエストが検証を通ること", func(t *testing.T) {
		req := valid()
		if err := req.Validate(registry); err != nil {
			t.Fatalf("正常なリクエストが拒否されました: %v", err)
		}
	})

	t.Run("シーン数が範囲内にクランプされること", func(t *testing.T) {
		req := valid()
		req.SceneCount = 999
		if err := req.Validate(registry); err != nil {
			t.Fatalf("検証に失敗しました: %v", err)
		}
		if req.SceneCount != MaxSceneCount {
			t.Errorf("期待値 %d, 実際の値 %d", MaxSceneCount, req.SceneCount)
		}
	})

	t.Run("conceptモードでトピックが空ならエラーになること", func(t *testing.T) {
		req := valid()
		req.Concept = ""
		if err := req.Validate(registry); err == nil {
			t.Error("空のトピックでエラーが発生しませんでした")
		}
	})

	t.Run("linkモードでURLが空ならエラーになること", func(t *testing.T) {
		req := valid()
		req.InputType = InputLink
		if err := req.Validate(registry); err == nil {
			t.Error("空のURLでエラーが発生しませんでした")
		}
	})

	t.Run("未登録キャラクターが拒否されること", func(t *testing.T) {
		req := valid()
		req.Characters = []string{"Ghost"}
		if err := req.Validate(registry); err == nil {
			t.Error("未登録キャラクターでエラーが発生しませんでした")
		}
	})

	t.Run("空のキャスト集合が拒否されること", func(t *testing.T) {
		req := valid()
		req.Characters = nil
		if err := req.Validate(registry); err == nil {
			t.Error("空のキャスト集合でエラーが発生しませんでした")
		}
	})
}
