package cartclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	HeaderCSRF        = "X-CSRFToken"
	HeaderRequestedBy = "X-Requested-With"
	AjaxMarker        = "XMLHttpRequest"

	// フォームに埋め込まれる anti-forgery トークンのフィールド名
	CSRFFormField = "csrfmiddlewaretoken"
)

// TransportError はコアで唯一のエラー種別。
// Message が空なら呼び出し側の操作ごとの文言を使う。
type TransportError struct {
	Status  int // 0 はネットワーク失敗
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("transport error (%d)", e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AsTransportError は err から *TransportError を取り出す。
func AsTransportError(err error) (*TransportError, bool) {
	var te *TransportError
	ok := errors.As(err, &te)
	return te, ok
}

// DecodeResult は応答ボディの解釈結果。Malformed のとき Value はゼロ値。
type DecodeResult[T any] struct {
	Value     T
	Malformed bool
}

func decodeJSON[T any](body []byte) DecodeResult[T] {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return DecodeResult[T]{Malformed: true}
	}
	return DecodeResult[T]{Value: v}
}

// envelope は全応答に共通する成否フィールド。
type envelope struct {
	OK        *bool  `json:"ok"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	CartCount *int   `json:"cart_count"`
}

func (e envelope) failed() bool { return e.OK != nil && !*e.OK }

func (e envelope) errorText() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// MutationResult は変更系リクエストの結果。Payload が無い(Malformed)場合もある。
type MutationResult struct {
	CartCount *int
	Message   string
	Malformed bool
}

// TokenSource は現在のドキュメントから anti-forgery トークンを読む。
type TokenSource interface {
	Token() string
}

type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// CookieToken は cookie jar に入っている csrftoken を読む。
type CookieToken struct {
	Jar  http.CookieJar
	URL  *url.URL
	Name string
}

func (t CookieToken) Token() string {
	if t.Jar == nil || t.URL == nil {
		return ""
	}
	name := t.Name
	if name == "" {
		name = "csrftoken"
	}
	for _, c := range t.Jar.Cookies(t.URL) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// Transport はカートストアへのHTTPを包む。
type Transport struct {
	client *http.Client
	tokens TokenSource
	msgs   Messages
}

// DI
func NewTransport(client *http.Client, tokens TokenSource, msgs Messages) *Transport {
	if client == nil {
		client = http.DefaultClient
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &Transport{client: client, tokens: tokens, msgs: msgs}
}

// Mutate は明細単位のエンドポイントにPOSTする。id が空ならテンプレートをそのまま使う。
func (t *Transport) Mutate(ctx context.Context, template string, id ItemID, form url.Values) (MutationResult, error) {
	target := template
	if id != "" {
		target = ItemURL(template, id)
	}
	return t.PostForm(ctx, target, form, "", "")
}

// PostForm はフォームを送る。token が空ならドキュメントのトークンを使う。
// サーバーが文言を返さない失敗は fallback、それも空なら "Erro (<status>)"。
func (t *Transport) PostForm(ctx context.Context, target string, form url.Values, token, fallback string) (MutationResult, error) {
	if form == nil {
		form = url.Values{}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return MutationResult{}, &TransportError{Message: err.Error(), Err: err}
	}
	if token == "" {
		token = t.tokens.Token()
	}
	req.Header.Set(HeaderCSRF, token)
	req.Header.Set(HeaderRequestedBy, AjaxMarker)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	status, body, err := t.do(req)
	if err != nil {
		return MutationResult{}, err
	}

	res := decodeJSON[envelope](body)
	if err := t.check(status, res, fallback); err != nil {
		return MutationResult{}, err
	}
	if res.Malformed {
		return MutationResult{Malformed: true}, nil
	}
	return MutationResult{CartCount: res.Value.CartCount, Message: res.Value.Message}, nil
}

// FetchSnapshot はスナップショットをGETする。
func (t *Transport) FetchSnapshot(ctx context.Context, target string) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Snapshot{}, &TransportError{Message: err.Error(), Err: err}
	}
	req.Header.Set(HeaderRequestedBy, AjaxMarker)

	status, body, err := t.do(req)
	if err != nil {
		return Snapshot{}, err
	}

	env := decodeJSON[envelope](body)
	if err := t.check(status, env, t.msgs.LoadFailed); err != nil {
		return Snapshot{}, err
	}

	snap := decodeJSON[Snapshot](body)
	if env.Malformed || snap.Malformed {
		return Snapshot{}, &TransportError{Status: status, Message: t.msgs.LoadFailed}
	}
	return snap.Value, nil
}

func (t *Transport) do(req *http.Request) (int, []byte, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &TransportError{Status: resp.StatusCode, Message: err.Error(), Err: err}
	}
	return resp.StatusCode, body, nil
}

// check は非2xx か ok:false を失敗にする。fallback が空ならステータス入りの文言。
func (t *Transport) check(status int, res DecodeResult[envelope], fallback string) error {
	ok2xx := status >= 200 && status < 300
	if ok2xx && (res.Malformed || !res.Value.failed()) {
		return nil
	}

	msg := ""
	if !res.Malformed {
		msg = res.Value.errorText()
	}
	if msg == "" {
		msg = fallback
	}
	if msg == "" {
		msg = fmt.Sprintf(t.msgs.StatusError, status)
	}
	return &TransportError{Status: status, Message: msg}
}
