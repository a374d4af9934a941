package cartclient

import (
	"errors"
	"strings"
)

// ItemPlaceholder はURLテンプレート内の明細IDの位置。
const ItemPlaceholder = "/0/"

var ErrMissingPlaceholder = errors.New("url template has no /0/ segment")

// Endpoints はホスト側から渡されるURL群。
type Endpoints struct {
	ModalData  string // スナップショット取得
	RemoveItem string // 例: /cart/item/0/remove/
	SetQty     string // 例: /cart/item/0/update/
}

func (e Endpoints) Validate() error {
	for _, tmpl := range []string{e.RemoveItem, e.SetQty} {
		if tmpl != "" && !strings.Contains(tmpl, ItemPlaceholder) {
			return ErrMissingPlaceholder
		}
	}
	return nil
}

// ItemURL はテンプレートの /0/ を最初の1箇所だけ id に置き換える。
func ItemURL(template string, id ItemID) string {
	return strings.Replace(template, ItemPlaceholder, "/"+string(id)+"/", 1)
}
