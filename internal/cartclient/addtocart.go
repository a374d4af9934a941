package cartclient

import (
	"context"
	"net/url"
	"strconv"
)

// AddToCartForm は商品詳細の「カートに追加」フォーム。
type AddToCartForm struct {
	Action string
	Fields url.Values
}

// SubmitAddToCart はフォーム送信を横取りして POST する。
// 成功: バッジ更新 → ドロワーを開く → refresh。失敗: 通知してドロワーは閉じたまま。
func (c *Controller) SubmitAddToCart(ctx context.Context, form AddToCartForm) bool {
	res, err := c.transport.PostForm(ctx, form.Action, form.Fields, form.Fields.Get(CSRFFormField), c.msgs.AddFailed)
	if err != nil {
		c.alert(err, c.msgs.AddFailed)
		return false
	}

	if res.CartCount != nil {
		c.view.SetBadge(strconv.Itoa(*res.CartCount))
	}

	c.drawer.Open()
	if err := c.Refresh(ctx); err != nil {
		c.alert(err, c.msgs.AddError)
	}
	return true
}
