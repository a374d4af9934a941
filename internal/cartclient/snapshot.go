package cartclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	MinQuantity = 1
	MaxQuantity = 20
)

// ItemIDは明細の安定キー。サーバーは数値で返すが文字列でも受ける。
type ItemID string

func (id *ItemID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("item id: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

// CartLine はスナップショットの1明細。
type CartLine struct {
	ID      ItemID `json:"id"`
	Product string `json:"product"`
	Size    string `json:"size"`
	Qty     int    `json:"qty"`
	Line    Money  `json:"line"`
	Image   string `json:"image"`
}

// Snapshot はサーバーが返すカート全体。クライアントでは組み立てない。
type Snapshot struct {
	Items []CartLine `json:"items"`
	Count int        `json:"count"`
	Total Money      `json:"total"`
}

// Clamp は数量を [MinQuantity, MaxQuantity] に収める。
func Clamp(v int) int {
	if v < MinQuantity {
		return MinQuantity
	}
	if v > MaxQuantity {
		return MaxQuantity
	}
	return v
}

// ParseQuantity は入力欄の値を整数として読む。先頭の数字だけを使い、読めなければ1。
func ParseQuantity(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		// 上限を超えた桁はクランプで落ちるので打ち切る
		if n < 1_000_000 {
			n = n*10 + int(r-'0')
		}
		digits++
	}
	if digits == 0 {
		return 1
	}
	if neg {
		return -n
	}
	return n
}
