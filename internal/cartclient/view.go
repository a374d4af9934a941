package cartclient

import "sync"

// Row は描画済みの1明細と、その行に結び付いた操作。
type Row struct {
	ItemID   ItemID
	Product  string
	Variant  string
	LineText string

	mu    sync.Mutex
	input string
	ctrl  *RowController
}

// Input は数量入力欄の表示値。
func (r *Row) Input() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.input
}

// Type はキー入力で表示値だけを変える（コミットしない）。
func (r *Row) Type(v string) {
	r.mu.Lock()
	r.input = v
	r.mu.Unlock()
}

// Controller は wire 済みなら行の操作を返す。
func (r *Row) Controller() *RowController {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ctrl
}

func (r *Row) attach(rc *RowController) {
	r.mu.Lock()
	r.ctrl = rc
	r.mu.Unlock()
}

// View はカートドロワーの描画先。DOM の代わりに HTML 断片と行を持つ。
type View struct {
	mu        sync.Mutex
	itemsHTML string
	totalText string
	badgeText string
	rows      []*Row
	renders   int
}

func NewView() *View {
	return &View{badgeText: "0"}
}

func (v *View) ItemsHTML() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.itemsHTML
}

func (v *View) TotalText() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.totalText
}

func (v *View) BadgeText() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.badgeText
}

// Renders は Render が何回 view を置き換えたか。
func (v *View) Renders() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.renders
}

// Rows は現在描画されている行。
func (v *View) Rows() []*Row {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]*Row, len(v.rows))
	copy(out, v.rows)
	return out
}

// Row は現在の描画から id の行を探す。
func (v *View) Row(id ItemID) (*Row, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, r := range v.rows {
		if r.ItemID == id {
			return r, true
		}
	}
	return nil, false
}

func (v *View) SetBadge(text string) {
	v.mu.Lock()
	v.badgeText = text
	v.mu.Unlock()
}

// replace は中身を丸ごと差し替える。古い行は捨てる。
func (v *View) replace(itemsHTML, totalText, badgeText string, rows []*Row) {
	v.mu.Lock()
	v.itemsHTML = itemsHTML
	v.totalText = totalText
	v.badgeText = badgeText
	v.rows = rows
	v.renders++
	v.mu.Unlock()
}
