package actions

import (
	"strings"

	"github.com/dustin/go-humanize"
)

var currencySymbols = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
	"jpy": "¥",
}

// FormatPrice renders price for humans: two decimals with thousands
// separators, or up to eight significant decimals below 1.
func FormatPrice(price float64, vsCurrency string) string {
	var num string
	if price != 0 && price < 1 && price > -1 {
		num = humanize.CommafWithDigits(price, 8)
	} else {
		num = humanize.FormatFloat("#,###.##", price)
	}

	vs := strings.ToLower(vsCurrency)
	if sym, ok := currencySymbols[vs]; ok {
		if strings.HasPrefix(num, "-") {
			return "-" + sym + num[1:]
		}
		return sym + num
	}
	if vs == "" {
		return num
	}
	return num + " " + strings.ToUpper(vs)
}
