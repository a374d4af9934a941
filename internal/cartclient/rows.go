package cartclient

import "context"

// RowController は1行分の操作（削除・増減・直接入力）。
type RowController struct {
	row  *Row
	cart *Controller
}

func (rc *RowController) ItemID() ItemID { return rc.row.ItemID }

func (rc *RowController) OnRemove(ctx context.Context) {
	if err := rc.cart.Remove(ctx, rc.row.ItemID); err != nil {
		rc.cart.alert(err, rc.cart.msgs.RemoveFailed)
	}
}

// OnQuantityDelta は今表示されている値に delta を足して送る。
// サーバーが確定するまで入力欄の値は変えない。
func (rc *RowController) OnQuantityDelta(ctx context.Context, delta int) {
	rc.commit(ctx, ParseQuantity(rc.row.Input())+delta)
}

// OnQuantityCommit は入力欄の change（キー入力ごとではない）。
func (rc *RowController) OnQuantityCommit(ctx context.Context, value string) {
	rc.row.Type(value)
	rc.commit(ctx, ParseQuantity(value))
}

func (rc *RowController) commit(ctx context.Context, qty int) {
	if err := rc.cart.SetQuantity(ctx, rc.row.ItemID, qty); err != nil {
		rc.cart.alert(err, rc.cart.msgs.UpdateFailed)
	}
}
