package cartclient

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Event はUI操作1回分。
type Event interface {
	event()
}

// CartOpenRequested は data-open-cart 要素のクリック。
type CartOpenRequested struct{}

// DrawerToggled はドロワーの開閉（overlay や閉じるボタンは Open=false）。
type DrawerToggled struct{ Open bool }

type ItemRemoved struct{ ItemID ItemID }

// QuantityChanged はステッパー（+1 / -1）。
type QuantityChanged struct {
	ItemID ItemID
	Delta  int
}

// QuantityEdited は入力欄の change。
type QuantityEdited struct {
	ItemID ItemID
	Value  string
}

type AddToCartSubmitted struct{ Form AddToCartForm }

type ReserveToggled struct{ Open bool }

type ReserveBackdropClicked struct {
	TargetIsBackdrop bool
	WithinPanel      bool
}

func (CartOpenRequested) event()      {}
func (DrawerToggled) event()          {}
func (ItemRemoved) event()            {}
func (QuantityChanged) event()        {}
func (QuantityEdited) event()         {}
func (AddToCartSubmitted) event()     {}
func (ReserveToggled) event()         {}
func (ReserveBackdropClicked) event() {}

// Dispatcher は型付きイベントを受け取り、ハンドラへ振り分ける。
type Dispatcher struct {
	cart   *Controller
	events chan Event
	logger *slog.Logger
	wg     sync.WaitGroup
}

// DI
func NewDispatcher(cart *Controller, buffer int) *Dispatcher {
	return &Dispatcher{
		cart:   cart,
		events: make(chan Event, buffer),
		logger: cart.logger,
	}
}

// Post はイベントをキューに積む。ctx が終わっていれば捨てる。
func (d *Dispatcher) Post(ctx context.Context, ev Event) bool {
	select {
	case d.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Run はイベントループ。ハンドラの通信待ちでループは止めない。
// 同じ行への連続操作は順序付けもキャンセルもしない。
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-d.events:
			d.wg.Add(1)
			go func() {
				defer d.wg.Done()
				d.Handle(ctx, ev)
			}()
		}
	}
}

// Handle は1イベントを同期で処理する。
func (d *Dispatcher) Handle(ctx context.Context, ev Event) {
	c := d.cart
	switch e := ev.(type) {
	case CartOpenRequested:
		if err := c.Open(ctx); err != nil {
			// 開くこと自体は止めない
			d.logger.Debug("refresh on open failed", "err", err)
		}
	case DrawerToggled:
		if e.Open {
			c.drawer.Open()
			return
		}
		c.Close()
	case ItemRemoved:
		if rc, ok := d.row(e.ItemID); ok {
			rc.OnRemove(ctx)
		}
	case QuantityChanged:
		if rc, ok := d.row(e.ItemID); ok {
			rc.OnQuantityDelta(ctx, e.Delta)
		}
	case QuantityEdited:
		if rc, ok := d.row(e.ItemID); ok {
			rc.OnQuantityCommit(ctx, e.Value)
		}
	case AddToCartSubmitted:
		c.SubmitAddToCart(ctx, e.Form)
	case ReserveToggled:
		if e.Open {
			c.OpenReserve()
			return
		}
		c.CloseReserve()
	case ReserveBackdropClicked:
		c.reserve.BackdropClick(e.TargetIsBackdrop, e.WithinPanel)
	default:
		d.logger.Warn("unknown event", "type", fmt.Sprintf("%T", ev))
	}
}

// row は今の描画から行の操作を引く。描画されていない行への操作は無視。
func (d *Dispatcher) row(id ItemID) (*RowController, bool) {
	r, ok := d.cart.view.Row(id)
	if !ok {
		d.logger.Debug("event for row not rendered", "item_id", id)
		return nil, false
	}
	rc := r.Controller()
	return rc, rc != nil
}
