package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"storefront/internal/cartclient"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ClientEnvPrefix は cartctl の環境変数上書きの接頭辞。
const ClientEnvPrefix = "CARTCTL_"

// ClientConfig はページ初期化時にホストが渡す設定を、端末ホスト向けにファイル化したもの。
type ClientConfig struct {
	BaseURL   string          `yaml:"base_url" koanf:"base_url"`
	Endpoints ClientEndpoints `yaml:"endpoints" koanf:"endpoints"`
	Locale    string          `yaml:"locale" koanf:"locale"`
	Currency  string          `yaml:"currency" koanf:"currency"`
	Sequenced bool            `yaml:"sequenced" koanf:"sequenced"`
	Timeout   time.Duration   `yaml:"timeout" koanf:"timeout"` // 0 は無制限
}

type ClientEndpoints struct {
	ModalData  string `yaml:"modal_data" koanf:"modal_data"`
	RemoveItem string `yaml:"remove_item" koanf:"remove_item"`
	SetQty     string `yaml:"set_qty" koanf:"set_qty"`
	AddToCart  string `yaml:"add_to_cart" koanf:"add_to_cart"`
	Catalog    string `yaml:"catalog" koanf:"catalog"`
}

func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: "http://localhost:8080",
		Endpoints: ClientEndpoints{
			ModalData:  "/cart/modal-data/",
			RemoveItem: "/cart/item/0/remove/",
			SetQty:     "/cart/item/0/update/",
			AddToCart:  "/cart/add/",
			Catalog:    "/merch/",
		},
		Locale:   "pt-PT",
		Currency: "MZN",
	}
}

// LoadClient reads the YAML file at path (if it exists) over the defaults,
// then overlays CARTCTL_* environment variables. CARTCTL_ENDPOINTS_SET_QTY
// maps to endpoints.set_qty.
func LoadClient(path string) (*ClientConfig, error) {
	k := koanf.New(".")
	cfg := DefaultClientConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(ClientEnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, ClientEnvPrefix))
	if rest, ok := strings.CutPrefix(key, "endpoints_"); ok {
		return "endpoints." + rest
	}
	return key
}

func (c *ClientConfig) Validate() error {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url %q: %w", c.BaseURL, err)
	}
	if !base.IsAbs() {
		return fmt.Errorf("base_url %q must be absolute", c.BaseURL)
	}
	if c.Endpoints.AddToCart == "" {
		return fmt.Errorf("endpoints.add_to_cart is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if err := c.endpoints().Validate(); err != nil {
		return fmt.Errorf("endpoints: %w", err)
	}
	return nil
}

func (c *ClientConfig) endpoints() cartclient.Endpoints {
	return cartclient.Endpoints{
		ModalData:  c.Endpoints.ModalData,
		RemoveItem: c.Endpoints.RemoveItem,
		SetQty:     c.Endpoints.SetQty,
	}
}

// Resolved は相対URLを base_url 基準で絶対URLにしたエンドポイントを返す。
func (c *ClientConfig) Resolved() (cartclient.Endpoints, error) {
	e := c.endpoints()
	var err error
	for _, p := range []*string{&e.ModalData, &e.RemoveItem, &e.SetQty} {
		if *p, err = c.resolve(*p); err != nil {
			return cartclient.Endpoints{}, err
		}
	}
	return e, nil
}

// AddToCartURL は追加フォームの action。
func (c *ClientConfig) AddToCartURL() (string, error) {
	return c.resolve(c.Endpoints.AddToCart)
}

// CatalogURL は商品一覧の URL。詳細は末尾に "<slug>/" を足す。
func (c *ClientConfig) CatalogURL() (string, error) {
	return c.resolve(c.Endpoints.Catalog)
}

func (c *ClientConfig) resolve(ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", ref, err)
	}
	return base.ResolveReference(u).String(), nil
}
