package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"text/tabwriter"

	"storefront/internal/cartclient"
	"storefront/internal/usecase"

	"github.com/spf13/cobra"
)

var featuredOnly bool

var merchCmd = &cobra.Command{
	Use:     "merch [SLUG]",
	Aliases: []string{"catalog"},
	Short:   "List products, or the variants of one product (variant ID is what add takes)",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if len(args) == 1 {
				var p usecase.ProductOutput
				if err := a.getCatalog(ctx, url.PathEscape(args[0])+"/", nil, &p); err != nil {
					return err
				}
				a.printProduct(p)
				return nil
			}

			q := url.Values{}
			if featuredOnly {
				q.Set("featured", "1")
			}
			var list usecase.ProductListOutput
			if err := a.getCatalog(ctx, "", q, &list); err != nil {
				return err
			}
			if len(list.Items) == 0 {
				fmt.Fprintln(a.out, "Nenhum produto.")
				return nil
			}
			for _, p := range list.Items {
				a.printProduct(p)
			}
			return nil
		})
	},
}

func init() {
	merchCmd.Flags().BoolVar(&featuredOnly, "featured", false, "only featured products")
}

// getCatalog は一覧 URL からの相対パスを GET して JSON を読む。
func (a *app) getCatalog(ctx context.Context, ref string, q url.Values, dst any) error {
	base, err := a.cfg.CatalogURL()
	if err != nil {
		return err
	}
	u, err := url.Parse(base)
	if err != nil {
		return err
	}
	if ref != "" {
		u = u.JoinPath(ref)
	}
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(res.Body).Decode(&body) == nil && body.Error != "" {
			return fmt.Errorf("catalog: %s", body.Error)
		}
		return fmt.Errorf("catalog: status %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return fmt.Errorf("catalog: decoding response: %w", err)
	}
	return nil
}

func (a *app) printProduct(p usecase.ProductOutput) {
	money := cartclient.NewMoneyFormatter(a.cfg.Locale, a.cfg.Currency)

	fmt.Fprintf(a.out, "%s (%s)\n", p.Name, p.Slug)
	if len(p.Variants) == 0 {
		fmt.Fprintln(a.out, "  esgotado")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  VARIANT\tSIZE\tPRICE\tSTOCK")
	for _, v := range p.Variants {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%d\n", v.ID, v.Size, money.Format(cartclient.NewMoney(v.Price)), v.Stock)
	}
	tw.Flush()
}
