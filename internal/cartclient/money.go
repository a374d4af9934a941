package cartclient

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Money はサーバーが決めた金額。表示のためだけに持つ。
type Money struct {
	decimal.Decimal
}

var groupingThreshold = decimal.NewFromInt(10000)

func NewMoney(v string) Money {
	return Money{Decimal: decimal.RequireFromString(v)}
}

// MoneyFormatter はロケール表記 + 通貨記号で金額を表示する。
type MoneyFormatter struct {
	printer     *message.Printer
	currency    string
	minGrouping int
}

// 4桁では桁区切りしない言語（CLDR の minimumGroupingDigits=2）
var minGrouping2 = map[language.Base]bool{
	language.MustParseBase("pt"): true,
	language.MustParseBase("es"): true,
	language.MustParseBase("pl"): true,
}

func NewMoneyFormatter(locale, currency string) MoneyFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.EuropeanPortuguese
	}
	f := MoneyFormatter{
		printer:     message.NewPrinter(tag),
		currency:    currency,
		minGrouping: 1,
	}
	if base, _ := tag.Base(); minGrouping2[base] {
		f.minGrouping = 2
	}
	return f
}

// Format は小数2桁に丸めて表示する。整数部は int64 のまま x/text に渡すので桁は落ちない。
func (f MoneyFormatter) Format(m Money) string {
	if f.printer == nil {
		f = NewMoneyFormatter("pt-PT", f.currency)
	}

	amount := m.Round(2)
	abs := amount.Abs()
	whole := abs.Truncate(0)

	var opts []number.Option
	if f.minGrouping > 1 && abs.LessThan(groupingThreshold) {
		opts = append(opts, number.NoSeparator())
	}
	s := f.printer.Sprint(number.Decimal(whole.IntPart(), opts...))

	// "0.50" -> "5"
	if frac := strings.TrimRight(abs.Sub(whole).StringFixed(2)[2:], "0"); frac != "" {
		s += f.decimalSeparator() + frac
	}
	if amount.IsNegative() {
		s = "-" + s
	}
	if f.currency == "" {
		return s
	}
	return s + " " + f.currency
}

// ロケールの小数点記号（1.5 を書かせて取り出す）
func (f MoneyFormatter) decimalSeparator() string {
	s := f.printer.Sprint(number.Decimal(1.5))
	return strings.TrimSuffix(strings.TrimPrefix(s, "1"), "5")
}
