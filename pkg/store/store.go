// Package store は1セッション分のストーリーボード状態を保持します。
// 保持するのは常に高々1本で、新しい生成で丸ごと置き換えられ、
// シーンの追記と画像描画でフィールド単位に更新されます。
package store

import (
	"sync"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// Store はセッション中の現在のストーリーボードを排他制御付きで保持します。
// epoch は Install のたびに増加する世代カウンターで、
// 古い世代を対象にした書き込み（実行中バッチの残り分など）を無効化するために使います。
type Store struct {
	mu      sync.RWMutex
	current *domain.Storyboard
	epoch   uint64
}

// New は空の Store を生成します。
func New() *Store {
	return &Store{}
}

// Install はストーリーボードを丸ごと差し替え、新しい世代番号を返します。
// 以前の描画状態は新しいオブジェクトと共に暗黙に破棄されるのだ。
func (s *Store) Install(sb domain.Storyboard) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := sb.Clone()
	s.current = &copied
	s.epoch++
	return s.epoch
}

// Clear は保持中のストーリーボードを破棄します。世代番号は進めます。
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.epoch++
}

// Snapshot は現在のストーリーボードの複製と世代番号を返します。
// 保持していない場合は ok=false を返すのだ。
func (s *Store) Snapshot() (sb domain.Storyboard, epoch uint64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.Storyboard{}, s.epoch, false
	}
	return s.current.Clone(), s.epoch, true
}

// Epoch は現在の世代番号を返します。
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// UpdateScene は scene_number が一致するシーンだけを mutate で書き換えます。
// 番号が見つからない場合は何もしません（エラーではなく no-op）。
// epoch が現在の世代と一致しない場合、書き込みは黙って破棄されます。
// シーン番号の変更と並び替えはこの操作では起こり得ません。
func (s *Store) UpdateScene(epoch uint64, sceneNumber int, mutate func(*domain.Scene)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.epoch != epoch {
		return false
	}
	idx := s.current.SceneIndex(sceneNumber)
	if idx < 0 {
		return false
	}
	keep := s.current.Scenes[idx].SceneNumber
	mutate(&s.current.Scenes[idx])
	s.current.Scenes[idx].SceneNumber = keep
	return true
}

// AppendScene はシーンを末尾に追記します。追記専用で、既存シーンには触れません。
// 番号は保持数+1 に強制され、モデルが返した番号が何であれ連番が保たれるのだ。
func (s *Store) AppendScene(epoch uint64, sc domain.Scene) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.epoch != epoch {
		return false
	}
	sc.SceneNumber = len(s.current.Scenes) + 1
	s.current.Scenes = append(s.current.Scenes, sc)
	return true
}
