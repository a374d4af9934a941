package cartclient

import (
	"bytes"
	"html/template"
	"strconv"
)

const emptyTmpl = `<div class="text-sm text-white/60">{{.}}</div>`

const rowsTmpl = `{{range .Rows}}
<div class="rounded-2xl border border-white/10 bg-black/30 p-4" data-cart-row data-item-id="{{.ID}}">
  <div class="flex gap-3">
    {{if .Image}}<img src="{{.Image}}" class="h-16 w-16 rounded-xl object-cover border border-white/10" alt="">{{else}}<div class="h-16 w-16 rounded-xl border border-white/10 bg-black/40"></div>{{end}}
    <div class="flex-1">
      <div class="font-display uppercase text-lg leading-[0.9]">{{.Product}}</div>
      <div class="mt-2 font-monoish text-xs text-white/60">{{$.VariantLabel}}: {{.Variant}}</div>
      <div class="mt-2 flex items-center gap-2">
        <button type="button" data-qty-minus>-</button>
        <input class="w-14 text-center" value="{{.Qty}}" inputmode="numeric" data-qty-input />
        <button type="button" data-qty-plus>+</button>
        <div class="ml-auto font-monoish text-xs text-white/60">{{.Line}}</div>
      </div>
    </div>
    <button type="button" class="text-[10px] kicker text-white/60" data-remove>{{$.RemoveLabel}}</button>
  </div>
</div>{{end}}`

type rowView struct {
	ID      ItemID
	Image   string
	Product string
	Variant string
	Qty     int
	Line    string
}

type rowsView struct {
	Rows         []rowView
	VariantLabel string
	RemoveLabel  string
}

// Renderer はスナップショットから view を作り直す。
type Renderer struct {
	empty *template.Template
	rows  *template.Template
	money MoneyFormatter
	msgs  Messages
}

func NewRenderer(money MoneyFormatter, msgs Messages) *Renderer {
	return &Renderer{
		empty: template.Must(template.New("empty").Parse(emptyTmpl)),
		rows:  template.Must(template.New("rows").Parse(rowsTmpl)),
		money: money,
		msgs:  msgs,
	}
}

// Render は view の明細・合計・バッジを置き換え、新しい行を返す。
// 行の操作はまだ結び付けない（呼び出し側が wire する）。
func (r *Renderer) Render(v *View, s Snapshot) ([]*Row, error) {
	badge := strconv.Itoa(s.Count)
	total := r.money.Format(s.Total)

	var buf bytes.Buffer
	if len(s.Items) == 0 {
		if err := r.empty.Execute(&buf, r.msgs.EmptyCart); err != nil {
			return nil, err
		}
		v.replace(buf.String(), total, badge, nil)
		return nil, nil
	}

	data := rowsView{
		Rows:         make([]rowView, 0, len(s.Items)),
		VariantLabel: r.msgs.VariantLabel,
		RemoveLabel:  r.msgs.RemoveLabel,
	}
	rows := make([]*Row, 0, len(s.Items))
	for _, it := range s.Items {
		variant := it.Size
		if variant == "" {
			variant = "—"
		}
		line := r.money.Format(it.Line)

		data.Rows = append(data.Rows, rowView{
			ID:      it.ID,
			Image:   it.Image,
			Product: it.Product,
			Variant: variant,
			Qty:     it.Qty,
			Line:    line,
		})
		rows = append(rows, &Row{
			ItemID:   it.ID,
			Product:  it.Product,
			Variant:  variant,
			LineText: line,
			input:    strconv.Itoa(it.Qty),
		})
	}

	if err := r.rows.Execute(&buf, data); err != nil {
		return nil, err
	}
	v.replace(buf.String(), total, badge, rows)
	return rows, nil
}
