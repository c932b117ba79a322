// Package receipt renders a printable A4 receipt for a recorded sale.
package receipt

import (
	"fmt"
	"time"

	"deposito-pos/internal/model"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const ContentType = "application/pdf"

var (
	colorPrimary = &props.Color{Red: 20, Green: 83, Blue: 45}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}

	printer = message.NewPrinter(language.BrazilianPortuguese)
)

// BRL formats an amount as Brazilian currency, e.g. "R$ 1.234,50".
func BRL(d decimal.Decimal) string {
	return "R$ " + printer.Sprintf("%.2f", d.InexactFloat64())
}

// FileName is Venda_<number>.pdf.
func FileName(sale *model.Sale) string {
	return fmt.Sprintf("Venda_%s.pdf", sale.Number)
}

// Render builds the receipt PDF.
func Render(sale *model.Sale, shopName string, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.Local
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprovante de Venda "+sale.Number, true).
		WithAuthor(shopName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(sale, shopName, loc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(itemsHeaderRow())
	m.AddRows(itemRows(sale.Items)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(sale))
	m.AddRows(line.NewRow(4))
	m.AddRows(footerRow(sale))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("receipt: generate: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(sale *model.Sale, shopName string, loc *time.Location) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(shopName, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Comprovante de venda (sem valor fiscal)", props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("VENDA", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(sale.Number, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6}),
			text.New(sale.SoldAt.In(loc).Format("02/01/2006 15:04"), props.Text{Size: 8, Align: align.Right, Top: 13, Color: colorGray}),
		),
	)
}

func customerRow(sale *model.Sale) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(sale.CustomerName, "Consumidor"), props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New("Telefone: "+nonEmpty(sale.CustomerPhone, "-"), props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("VENDEDOR", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(sale.SellerName, props.Text{Size: 9, Align: align.Right, Top: 6}),
			text.New(sale.PaymentMethod.Label()+" · "+sale.Status.Label(), props.Text{Size: 8, Align: align.Right, Top: 11, Color: colorGray}),
		),
	)
}

func itemsHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("Qtd.", 1, align.Center),
		h("Produto", 6, align.Left),
		h("Preço Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

func itemRows(items []model.SaleLineItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(it.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(BRL(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(3).Add(text.New(BRL(it.Subtotal), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return rows
}

func totalsRow(sale *model.Sale) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right})
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:"),
			text.New("Desconto:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 5}),
			text.New("TOTAL:", props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Right: 2, Top: 11, Color: colorPrimary}),
		),
		col.New(3).Add(
			value(BRL(sale.Subtotal)),
			text.New(BRL(sale.Discount), props.Text{Size: 9, Align: align.Right, Top: 5}),
			text.New(BRL(sale.Total), props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 11, Color: colorPrimary}),
		),
	)
}

// footerRow carries a QR code with the sale id so the receipt can be looked up.
func footerRow(sale *model.Sale) core.Row {
	notes := nonEmpty(sale.Notes, "")
	return row.New(35).Add(
		col.New(3).Add(code.NewQr(sale.ID.String(), props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New(fmt.Sprintf("%d itens", sale.ItemCount()), props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
			text.New(notes, props.Text{Size: 8, Top: 10, Left: 3}),
			text.New("Obrigado pela preferência!", props.Text{Style: fontstyle.Bold, Size: 10, Top: 22, Left: 3, Color: colorPrimary}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
