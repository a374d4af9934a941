package cartclient

import "sync"

// toggle は closed -> open -> closed の2状態。
type toggle struct {
	mu   sync.Mutex
	open bool
}

func (t *toggle) set(open bool) {
	t.mu.Lock()
	t.open = open
	t.mu.Unlock()
}

func (t *toggle) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

// Drawer はカートドロワーの開閉。データの状態とは独立。
type Drawer struct{ toggle }

func (d *Drawer) Open()  { d.set(true) }
func (d *Drawer) Close() { d.set(false) }

// ReserveModal は予約モーダルの開閉。
type ReserveModal struct{ toggle }

func (m *ReserveModal) Open()  { m.set(true) }
func (m *ReserveModal) Close() { m.set(false) }

// BackdropClick は背景クリック。クリック対象が背景そのもので、パネル内でない時だけ閉じる。
func (m *ReserveModal) BackdropClick(targetIsBackdrop, withinPanel bool) bool {
	if !targetIsBackdrop || withinPanel {
		return false
	}
	m.Close()
	return true
}
