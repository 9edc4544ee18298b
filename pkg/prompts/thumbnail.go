package prompts

// ThumbnailStyle はサムネイルのA/Bテスト用スタイル定義です。
type ThumbnailStyle struct {
	ID    string
	Label string
	Desc  string
}

// ThumbnailStyles は対応しているサムネイルスタイルの固定カタログなのだ。
var ThumbnailStyles = []ThumbnailStyle{
	{ID: "conflict", Label: "Konflik & Kontras Ekstrem", Desc: "Dua kekuatan berlawanan dalam satu frame."},
	{ID: "shock", Label: "Shock Value", Desc: "Momen mengejutkan atau fakta yang tak terduga."},
	{ID: "expression", Label: "Ekspresi Wajah", Desc: "Close-up emosi karakter yang mendalam."},
	{ID: "before_after", Label: "Before vs After", Desc: "Perbandingan perubahan drastis."},
	{ID: "global", Label: "Global Scale", Desc: "Dampak masif pada skala dunia."},
	{ID: "minimalist", Label: "Minimalist Premium", Desc: "Elegan, bersih, dan penuh misteri."},
	{ID: "provocative", Label: "Pertanyaan Provokatif", Desc: "Visual yang memicu pertanyaan besar."},
}

// StyleByID はIDに一致するサムネイルスタイルを返します。
func StyleByID(id string) (ThumbnailStyle, bool) {
	for _, s := range ThumbnailStyles {
		if s.ID == id {
			return s, true
		}
	}
	return ThumbnailStyle{}, false
}
