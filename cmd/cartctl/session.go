package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"text/tabwriter"

	"storefront/internal/cartclient"
	"storefront/internal/config"
	"storefront/internal/logger"
)

// app は1回のコマンド実行分のホスト（ページ1枚に相当）。
type app struct {
	cfg    *config.ClientConfig
	base   *url.URL
	jar    http.CookieJar
	client *http.Client
	ctrl   *cartclient.Controller
	disp   *cartclient.Dispatcher
	addURL string
	out    io.Writer
	errOut io.Writer
	state  string

	alerts atomic.Int32
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func newApp(cfgPath, statePath string, out, errOut io.Writer) (*app, error) {
	cfg, err := config.LoadClient(cfgPath)
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	endpoints, err := cfg.Resolved()
	if err != nil {
		return nil, err
	}
	addURL, err := cfg.AddToCartURL()
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		base:   base,
		jar:    jar,
		client: &http.Client{Jar: jar, Timeout: cfg.Timeout},
		addURL: addURL,
		out:    out,
		errOut: errOut,
		state:  statePath,
	}
	if err := a.loadCookies(); err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	a.ctrl, err = cartclient.New(cartclient.Options{
		Endpoints:  endpoints,
		HTTPClient: a.client,
		Tokens:     cartclient.CookieToken{Jar: jar, URL: base},
		Locale:     cfg.Locale,
		Currency:   cfg.Currency,
		Notifier:   cartclient.NotifierFunc(a.alert),
		Logger:     logger.NewText(errOut, level),
		Sequenced:  cfg.Sequenced,
	})
	if err != nil {
		return nil, err
	}
	a.disp = cartclient.NewDispatcher(a.ctrl, 16)
	return a, nil
}

func (a *app) alert(msg string) {
	a.alerts.Add(1)
	fmt.Fprintf(a.errOut, "! %s\n", msg)
}

// failed は通知が1回でも出たか。
func (a *app) failed() error {
	if a.alerts.Load() > 0 {
		return errAlerted
	}
	return nil
}

// ensureToken は CSRF cookie が無ければ読み込みで取得する。
func (a *app) ensureToken(ctx context.Context) error {
	if (cartclient.CookieToken{Jar: a.jar, URL: a.base}).Token() != "" {
		return nil
	}
	return a.ctrl.Refresh(ctx)
}

func (a *app) loadCookies() error {
	if a.state == "" {
		return nil
	}
	b, err := os.ReadFile(a.state)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading state %s: %w", a.state, err)
	}

	var saved []savedCookie
	if err := json.Unmarshal(b, &saved); err != nil {
		// 壊れていたら新しいセッションで始める
		return nil
	}
	cookies := make([]*http.Cookie, 0, len(saved))
	for _, s := range saved {
		cookies = append(cookies, &http.Cookie{Name: s.Name, Value: s.Value, Path: "/"})
	}
	a.jar.SetCookies(a.base, cookies)
	return nil
}

func (a *app) saveCookies() error {
	if a.state == "" {
		return nil
	}
	var saved []savedCookie
	for _, c := range a.jar.Cookies(a.base) {
		saved = append(saved, savedCookie{Name: c.Name, Value: c.Value})
	}
	b, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(a.state), 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	if err := os.WriteFile(a.state, b, 0o600); err != nil {
		return fmt.Errorf("writing state %s: %w", a.state, err)
	}
	return nil
}

// printDrawer は今の描画を出力する。
func (a *app) printDrawer() {
	v := a.ctrl.View()
	if showHTML {
		fmt.Fprintln(a.out, v.ItemsHTML())
		return
	}

	rows := v.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(a.out, a.ctrl.Messages().EmptyCart)
	} else {
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tPRODUCT\tVARIANT\tQTY\tLINE")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ItemID, r.Product, r.Variant, r.Input(), r.LineText)
		}
		tw.Flush()
	}
	fmt.Fprintf(a.out, "Total: %s  (itens: %s)\n", v.TotalText(), v.BadgeText())
}
