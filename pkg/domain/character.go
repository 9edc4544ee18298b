package domain

import (
	"crypto/sha256"
	_ "embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Character はストーリーボードに登場する固定キャストの定義を保持します。
// Appearance は画像生成プロンプトへ毎回「一言一句そのまま」注入される外見テキストで、
// ステートレスな生成呼び出し間で見た目を固定する唯一の手段です（DNAロック）。
type Character struct {
	Name        string `json:"name"`
	Appearance  string `json:"appearance"`
	Personality string `json:"personality"`
	AvatarColor string `json:"avatar_color"` // 表示用の不透明なスタイルトークン
}

// CharactersMap は名前をキーとしたキャラクターの検索用マップなのだ。
type CharactersMap map[string]Character

//go:embed characters.json
var defaultCharactersJSON []byte

// DefaultCharacters は組み込みの固定キャスト（チャンネルのレギュラー陣）を返すのだ。
func DefaultCharacters() (CharactersMap, error) {
	return ParseCharacters(defaultCharactersJSON)
}

// LoadCharacters は指定されたファイルパスからJSONを読み込み、キャラクターマップを返すのだ。
func LoadCharacters(path string) (CharactersMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("キャラクターファイルの読み込みに失敗したのだ: %w", err)
	}
	return ParseCharacters(data)
}

// ParseCharacters はJSONバイト列からキャラクターマップをパースして返すのだ。
func ParseCharacters(charactersJSON []byte) (CharactersMap, error) {
	var chars CharactersMap
	if err := json.Unmarshal(charactersJSON, &chars); err != nil {
		return nil, fmt.Errorf("キャラクター設定のデコードに失敗したのだ: %w", err)
	}
	if len(chars) == 0 {
		return nil, fmt.Errorf("キャラクター設定が空なのだ")
	}
	return chars, nil
}

// Names は登録されている全キャラクター名をソート済みスライスで返します。
func (m CharactersMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select は names に含まれる登録済みキャラクターだけを、名前順で返します。
// 未登録の名前は黙って無視します（モデルが架空の名前を返すことがあるため）。
func (m CharactersMap) Select(names []string) []Character {
	seen := make(map[string]bool, len(names))
	var selected []Character
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if c, ok := m[name]; ok {
			selected = append(selected, c)
		}
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i].Name < selected[j].Name })
	return selected
}

// String はキャラクターの情報を文字列で返すのだ。
func (c Character) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.Personality)
}

// GetSeedFromName は名前から決定論的なシード値を生成します。
// 明示的なシード指定がなくても、同じキャラクターなら常に同じシードが使われます。
func GetSeedFromName(name string) int32 {
	hash := sha256.Sum256([]byte(name))
	seed := int32(binary.BigEndian.Uint32(hash[:4]))
	// Geminiのシード値は正の数が望ましいため、最上位ビットを落とすのが安全なのだ
	return seed & 0x7FFFFFFF
}
