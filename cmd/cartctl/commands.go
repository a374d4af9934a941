package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"storefront/internal/cartclient"

	"github.com/spf13/cobra"
)

var addQty int

var viewCmd = &cobra.Command{
	Use:     "view",
	Aliases: []string{"open"},
	Short:   "Open the drawer and show the cart",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			a.disp.Handle(ctx, cartclient.CartOpenRequested{})
			a.printDrawer()
			return nil
		})
	},
}

var addCmd = &cobra.Command{
	Use:   "add VARIANT_ID",
	Short: "Submit the add-to-cart form for a product variant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			if err := a.ensureToken(ctx); err != nil {
				return err
			}
			a.disp.Handle(ctx, cartclient.AddToCartSubmitted{Form: cartclient.AddToCartForm{
				Action: a.addURL,
				Fields: url.Values{
					"variant_id": {args[0]},
					"quantity":   {strconv.Itoa(addQty)},
				},
			}})
			if a.ctrl.Drawer().IsOpen() {
				a.printDrawer()
			}
			return nil
		})
	},
}

var incCmd = &cobra.Command{
	Use:   "inc ITEM_ID",
	Short: "Press + on a cart row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return rowCommand(cmd, args[0], func(id cartclient.ItemID) cartclient.Event {
			return cartclient.QuantityChanged{ItemID: id, Delta: +1}
		})
	},
}

var decCmd = &cobra.Command{
	Use:   "dec ITEM_ID",
	Short: "Press - on a cart row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return rowCommand(cmd, args[0], func(id cartclient.ItemID) cartclient.Event {
			return cartclient.QuantityChanged{ItemID: id, Delta: -1}
		})
	},
}

var qtyCmd = &cobra.Command{
	Use:   "qty ITEM_ID VALUE",
	Short: "Type a quantity into a cart row and commit it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return rowCommand(cmd, args[0], func(id cartclient.ItemID) cartclient.Event {
			return cartclient.QuantityEdited{ItemID: id, Value: args[1]}
		})
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm ITEM_ID",
	Aliases: []string{"remove"},
	Short:   "Remove a cart row",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return rowCommand(cmd, args[0], func(id cartclient.ItemID) cartclient.Event {
			return cartclient.ItemRemoved{ItemID: id}
		})
	},
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session: each line is a UI event handled by the event loop",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return runShell(ctx, a, cmd.InOrStdin())
		})
	},
}

func init() {
	addCmd.Flags().IntVarP(&addQty, "qty", "q", 1, "quantity field of the form")

	rootCmd.AddCommand(merchCmd, viewCmd, addCmd, incCmd, decCmd, qtyCmd, rmCmd, shellCmd)
}

// withApp は app を作ってコマンドを実行し、cookie を保存する。
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(cfgFile, stateFile, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runErr := fn(ctx, a)
	if err := a.saveCookies(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return runErr
	}
	return a.failed()
}

// rowCommand は描画してから行へのイベントを流す（ページ上で行が見えている状態にする）。
func rowCommand(cmd *cobra.Command, rawID string, ev func(id cartclient.ItemID) cartclient.Event) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.ctrl.Open(ctx); err != nil {
			return err
		}
		id := cartclient.ItemID(rawID)
		if _, ok := a.ctrl.View().Row(id); !ok {
			return fmt.Errorf("item %s is not in the cart", rawID)
		}
		a.disp.Handle(ctx, ev(id))
		a.printDrawer()
		return nil
	})
}

const shellHelp = `commands:
  open | close            open/close the drawer
  add VARIANT [QTY]       submit the add-to-cart form
  inc ID | dec ID         press +/- on a row
  qty ID VALUE            type and commit a quantity
  rm ID                   remove a row
  reserve open|close      toggle the reserve modal
  show                    print the drawer
  quit`

func runShell(ctx context.Context, a *app, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.ensureToken(ctx); err != nil {
		fmt.Fprintln(a.errOut, err)
	}

	done := make(chan error, 1)
	go func() { done <- a.disp.Run(ctx) }()

	fmt.Fprintln(a.out, shellHelp)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			break
		}
		if fields[0] == "show" {
			a.printDrawer()
			continue
		}
		ev, err := a.parseEvent(fields)
		if err != nil {
			fmt.Fprintln(a.errOut, err)
			continue
		}
		a.disp.Post(ctx, ev)
	}

	cancel()
	<-done
	// 終了時は失敗回数で終了コードを決めない（対話中に表示済み）
	a.alerts.Store(0)
	return sc.Err()
}

func (a *app) parseEvent(f []string) (cartclient.Event, error) {
	need := func(n int) error {
		if len(f) < n {
			return fmt.Errorf("%s: missing argument (try help)", f[0])
		}
		return nil
	}

	switch f[0] {
	case "open":
		return cartclient.CartOpenRequested{}, nil
	case "close":
		return cartclient.DrawerToggled{Open: false}, nil
	case "add":
		if err := need(2); err != nil {
			return nil, err
		}
		qty := "1"
		if len(f) > 2 {
			qty = f[2]
		}
		return cartclient.AddToCartSubmitted{Form: cartclient.AddToCartForm{
			Action: a.addURL,
			Fields: url.Values{"variant_id": {f[1]}, "quantity": {qty}},
		}}, nil
	case "inc", "dec":
		if err := need(2); err != nil {
			return nil, err
		}
		delta := +1
		if f[0] == "dec" {
			delta = -1
		}
		return cartclient.QuantityChanged{ItemID: cartclient.ItemID(f[1]), Delta: delta}, nil
	case "qty":
		if err := need(3); err != nil {
			return nil, err
		}
		return cartclient.QuantityEdited{ItemID: cartclient.ItemID(f[1]), Value: f[2]}, nil
	case "rm":
		if err := need(2); err != nil {
			return nil, err
		}
		return cartclient.ItemRemoved{ItemID: cartclient.ItemID(f[1])}, nil
	case "reserve":
		if err := need(2); err != nil {
			return nil, err
		}
		return cartclient.ReserveToggled{Open: f[1] == "open"}, nil
	default:
		return nil, fmt.Errorf("unknown command %q\n%s", f[0], shellHelp)
	}
}
