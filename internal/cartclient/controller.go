// Package cartclient keeps a rendered cart drawer in sync with a server-held
// cart. Every mutation is sent to the server and followed by a full snapshot
// fetch; the view is always replaced from the server's answer, never patched.
package cartclient

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
)

// Notifier はユーザーへのブロッキングな通知（alert）。
type Notifier interface {
	Alert(msg string)
}

type NotifierFunc func(msg string)

func (f NotifierFunc) Alert(msg string) { f(msg) }

// Options はページ初期化時にホストから渡される設定。
type Options struct {
	Endpoints  Endpoints
	HTTPClient *http.Client
	Tokens     TokenSource
	Messages   Messages
	Locale     string
	Currency   string
	Notifier   Notifier
	Logger     *slog.Logger

	// Sequenced を立てると、後から発行した refresh より古いスナップショットは描画しない。
	// 既定(false)では最後に返ってきた応答が勝つ。
	Sequenced bool
}

// Controller はカートの操作窓口。ページごとに1つ作り、必要な部品に渡す。
type Controller struct {
	endpoints Endpoints
	transport *Transport
	renderer  *Renderer
	view      *View
	drawer    *Drawer
	reserve   *ReserveModal
	notifier  Notifier
	msgs      Messages
	logger    *slog.Logger
	sequenced bool

	issued   atomic.Uint64
	renderMu sync.Mutex
	rendered uint64
}

// DI
func New(opts Options) (*Controller, error) {
	if err := opts.Endpoints.Validate(); err != nil {
		return nil, err
	}

	msgs := opts.Messages
	if msgs == (Messages{}) {
		msgs = DefaultMessages()
	}
	locale := opts.Locale
	if locale == "" {
		locale = "pt-PT"
	}
	currency := opts.Currency
	if currency == "" {
		currency = "MZN"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		endpoints: opts.Endpoints,
		transport: NewTransport(opts.HTTPClient, opts.Tokens, msgs),
		renderer:  NewRenderer(NewMoneyFormatter(locale, currency), msgs),
		view:      NewView(),
		drawer:    &Drawer{},
		reserve:   &ReserveModal{},
		notifier:  opts.Notifier,
		msgs:      msgs,
		logger:    logger.With("component", "cartclient"),
		sequenced: opts.Sequenced,
	}
	return c, nil
}

func (c *Controller) View() *View            { return c.view }
func (c *Controller) Drawer() *Drawer        { return c.drawer }
func (c *Controller) Reserve() *ReserveModal { return c.reserve }
func (c *Controller) Messages() Messages     { return c.msgs }

// Open はドロワーを開いてから refresh する。refresh の失敗はそのまま返す。
func (c *Controller) Open(ctx context.Context) error {
	c.drawer.Open()
	return c.Refresh(ctx)
}

func (c *Controller) Close() {
	c.drawer.Close()
}

func (c *Controller) OpenReserve()  { c.reserve.Open() }
func (c *Controller) CloseReserve() { c.reserve.Close() }

// Refresh はスナップショットを取り直して描画し、行を wire し直す。
// 失敗時は前の描画をそのまま残す。
func (c *Controller) Refresh(ctx context.Context) error {
	if c.endpoints.ModalData == "" {
		return nil
	}
	token := c.issued.Add(1)

	snap, err := c.transport.FetchSnapshot(ctx, c.endpoints.ModalData)
	if err != nil {
		return err
	}
	return c.render(token, snap)
}

// render と wire は1つのロックの中で順に行う（描画の途中に別の描画を挟まない）。
func (c *Controller) render(token uint64, snap Snapshot) error {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	if c.sequenced && token < c.rendered {
		c.logger.Debug("stale snapshot discarded", "token", token, "rendered", c.rendered)
		return nil
	}

	rows, err := c.renderer.Render(c.view, snap)
	if err != nil {
		return err
	}
	c.rendered = token
	c.wire(rows)
	return nil
}

func (c *Controller) wire(rows []*Row) {
	for _, r := range rows {
		r.attach(&RowController{row: r, cart: c})
	}
}

// Remove は明細を削除して refresh する。
func (c *Controller) Remove(ctx context.Context, id ItemID) error {
	if _, err := c.transport.Mutate(ctx, c.endpoints.RemoveItem, id, nil); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// SetQuantity は数量をクランプして送り、refresh する。
func (c *Controller) SetQuantity(ctx context.Context, id ItemID, qty int) error {
	form := url.Values{"quantity": {strconv.Itoa(Clamp(qty))}}
	if _, err := c.transport.Mutate(ctx, c.endpoints.SetQty, id, form); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// alert はサーバーの文言、無ければ操作ごとの fallback を通知する。
func (c *Controller) alert(err error, fallback string) {
	msg := fallback
	if te, ok := AsTransportError(err); ok && te.Message != "" {
		msg = te.Message
	} else if err != nil {
		c.logger.Debug("cart action failed", "err", err)
	}
	if c.notifier == nil {
		c.logger.Warn("cart action failed", "message", msg)
		return
	}
	c.notifier.Alert(msg)
}
