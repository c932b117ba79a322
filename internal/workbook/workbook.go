// Package workbook lays report aggregates out as an .xlsx spreadsheet with
// currency formatting and live formulas for the totals.
package workbook

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"deposito-pos/internal/report"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type Kind string

const (
	KindSales     Kind = "vendas"
	KindInventory Kind = "estoque"
	KindFull      Kind = "completo"
)

const (
	SheetSales     = "Vendas"
	SheetDashboard = "Dashboard"
	SheetTop       = "Top Produtos"
	SheetStock     = "Estoque"
	SheetAlerts    = "Alertas"

	currencyFormat = "R$ #,##0.00"
	percentFormat  = "0.00%"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ParseKind accepts vendas, estoque or completo.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindSales, KindInventory, KindFull:
		return k, nil
	}
	return "", fmt.Errorf("invalid report type %q", s)
}

func (k Kind) includesSales() bool     { return k == KindSales || k == KindFull }
func (k Kind) includesInventory() bool { return k == KindInventory || k == KindFull }

// FileName is Relatorio_<kind>_<yyyy-mm-dd>.xlsx.
func FileName(k Kind, now time.Time) string {
	return fmt.Sprintf("Relatorio_%s_%s.xlsx", k, now.Format("2006-01-02"))
}

// Input is everything a workbook is built from.
type Input struct {
	Kind        Kind
	Sales       report.SalesSummary
	Inventory   report.InventorySummary
	GeneratedAt time.Time
	Location    *time.Location
}

type builder struct {
	f        *excelize.File
	in       Input
	currency int
	percent  int
	bold     int
}

// Build creates the workbook in memory.
func Build(in Input) (*excelize.File, error) {
	if in.Location == nil {
		in.Location = time.Local
	}
	f := excelize.NewFile()
	b := &builder{f: f, in: in}

	var err error
	cur := currencyFormat
	if b.currency, err = f.NewStyle(&excelize.Style{CustomNumFmt: &cur}); err != nil {
		return nil, err
	}
	pct := percentFormat
	if b.percent, err = f.NewStyle(&excelize.Style{CustomNumFmt: &pct}); err != nil {
		return nil, err
	}
	if b.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return nil, err
	}

	var steps []func() error
	if in.Kind.includesSales() {
		steps = append(steps, b.salesSheet, b.dashboardSheet, b.topProductsSheet)
	}
	if in.Kind.includesInventory() {
		steps = append(steps, b.stockSheet, b.alertsSheet)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("invalid report type %q", in.Kind)
	}
	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write builds the workbook and serializes it.
func Write(in Input) ([]byte, error) {
	f, err := Build(in)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf *bytes.Buffer
	if buf, err = f.WriteToBuffer(); err != nil {
		return nil, fmt.Errorf("workbook: write: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *builder) period() string {
	r := b.in.Sales.Range
	return fmt.Sprintf("%s a %s", r.Start.In(b.in.Location).Format(report.DayLayout), r.End.In(b.in.Location).Format(report.DayLayout))
}

func (b *builder) generated() string {
	return b.in.GeneratedAt.In(b.in.Location).Format(report.DayLayout)
}

// row writes values starting at column A of the given 1-based row.
func (b *builder) row(sheet string, r int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, r)
	if err != nil {
		return err
	}
	return b.f.SetSheetRow(sheet, cell, &values)
}

func (b *builder) formula(sheet string, col string, r int, formula string) error {
	return b.f.SetCellFormula(sheet, fmt.Sprintf("%s%d", col, r), formula)
}

// sum writes SUM over rows first..last of col, or a literal 0 when the range
// is empty so the totals cell never refers to itself.
func (b *builder) sum(sheet, col string, r, first, last int) error {
	if last < first {
		return b.f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, r), 0)
	}
	return b.formula(sheet, col, r, fmt.Sprintf("SUM(%s%d:%s%d)", col, first, col, last))
}

func (b *builder) style(sheet, from, to string, style int) error {
	return b.f.SetCellStyle(sheet, from, to, style)
}

func (b *builder) widths(sheet string, widths ...float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := b.f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func money(d decimal.Decimal) float64 { return d.InexactFloat64() }

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// salesSheet lists every sale with header on row 5, data from row 6 and the
// totals and ticket rows right after the data.
func (b *builder) salesSheet() error {
	const sheet = SheetSales
	if _, err := b.f.NewSheet(sheet); err != nil {
		return err
	}

	const header = 5
	sales := b.in.Sales.Sales
	first := header + 1
	last := header + len(sales)
	total := last + 1

	rows := [][]any{
		{"RELATÓRIO DE VENDAS DETALHADAS"},
		{"Período: " + b.period()},
		{"Data de Geração: " + b.generated()},
		{},
		{"ID Venda", "Número", "Data", "Cliente", "Telefone", "Vendedor", "Forma Pagamento", "Status", "Subtotal", "Desconto", "Total", "Observações"},
	}
	for i, r := range rows {
		if err := b.row(sheet, i+1, r...); err != nil {
			return err
		}
	}

	for i, s := range sales {
		err := b.row(sheet, first+i,
			s.ID.String(),
			s.Number,
			s.SoldAt.In(b.in.Location).Format(report.DayLayout),
			s.CustomerName,
			dash(s.CustomerPhone),
			s.SellerName,
			s.PaymentMethod.Label(),
			s.Status.Label(),
			money(s.Subtotal),
			money(s.Discount),
			money(s.Total),
			dash(s.Notes),
		)
		if err != nil {
			return err
		}
	}

	if err := b.row(sheet, total, "", "", "", "", "", "", "", "TOTAIS:"); err != nil {
		return err
	}
	for _, col := range []string{"I", "J", "K"} {
		if err := b.sum(sheet, col, total, first, last); err != nil {
			return err
		}
	}
	if len(sales) == 0 {
		if err := b.row(sheet, total+1, "", "", "", "", "", "", "", "TICKET MÉDIO:", "", "", 0); err != nil {
			return err
		}
	} else {
		if err := b.row(sheet, total+1, "", "", "", "", "", "", "", "TICKET MÉDIO:"); err != nil {
			return err
		}
		ticket := fmt.Sprintf("IF(COUNT(K%d:K%d)=0,0,K%d/COUNT(K%d:K%d))", first, last, total, first, last)
		if err := b.formula(sheet, "K", total+1, ticket); err != nil {
			return err
		}
	}

	if err := b.style(sheet, "A1", "A1", b.bold); err != nil {
		return err
	}
	if err := b.style(sheet, fmt.Sprintf("A%d", header), fmt.Sprintf("L%d", header), b.bold); err != nil {
		return err
	}
	if err := b.style(sheet, fmt.Sprintf("I%d", first), fmt.Sprintf("K%d", total+1), b.currency); err != nil {
		return err
	}
	return b.widths(sheet, 38, 12, 12, 25, 15, 20, 18, 12, 14, 12, 14, 30)
}

// dashboardSheet holds the indicators and the three groupings.
func (b *builder) dashboardSheet() error {
	const sheet = SheetDashboard
	if _, err := b.f.NewSheet(sheet); err != nil {
		return err
	}
	s := b.in.Sales

	r := 1
	put := func(values ...any) error {
		err := b.row(sheet, r, values...)
		r++
		return err
	}
	var currencyCells []string
	putMoney := func(label any, count any, total decimal.Decimal) error {
		currencyCells = append(currencyCells, fmt.Sprintf("C%d", r))
		return put(label, count, money(total))
	}
	heading := func(title, first, second, third string) error {
		if err := put(); err != nil {
			return err
		}
		if err := put(title); err != nil {
			return err
		}
		if err := b.style(sheet, fmt.Sprintf("A%d", r-1), fmt.Sprintf("A%d", r-1), b.bold); err != nil {
			return err
		}
		return put(first, second, third)
	}

	steps := []func() error{
		func() error { return put("DASHBOARD DE VENDAS") },
		func() error { return put("Período: " + b.period()) },
		func() error { return put("Gerado em: " + b.generated()) },
		func() error { return heading("INDICADORES PRINCIPAIS", "Métrica", "Valor", "") },
		func() error { return put("Total de Vendas", s.Count) },
		func() error {
			currencyCells = append(currencyCells, fmt.Sprintf("B%d", r))
			return put("Faturamento Total", money(s.Revenue))
		},
		func() error {
			currencyCells = append(currencyCells, fmt.Sprintf("B%d", r))
			return put("Ticket Médio", money(s.AverageTicket))
		},
		func() error {
			return heading("VENDAS POR FORMA DE PAGAMENTO", "Forma de Pagamento", "Quantidade", "Valor Total")
		},
		func() error {
			for _, g := range s.ByPayment {
				if err := putMoney(g.Label, g.Count, g.Total); err != nil {
					return err
				}
			}
			return nil
		},
		func() error { return heading("PERFORMANCE POR VENDEDOR", "Vendedor", "Quantidade", "Valor Total") },
		func() error {
			for _, g := range s.BySeller {
				if err := putMoney(g.Label, g.Count, g.Total); err != nil {
					return err
				}
			}
			return nil
		},
		func() error { return heading("VENDAS DIÁRIAS", "Data", "Quantidade", "Valor Total") },
		func() error {
			for _, g := range s.ByDay {
				if err := putMoney(g.Key, g.Count, g.Total); err != nil {
					return err
				}
			}
			return nil
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}

	if err := b.style(sheet, "A1", "A1", b.bold); err != nil {
		return err
	}
	for _, c := range currencyCells {
		if err := b.style(sheet, c, c, b.currency); err != nil {
			return err
		}
	}
	return b.widths(sheet, 35, 15, 18)
}

func medal(i int) string {
	switch i {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	}
	return fmt.Sprintf("%dº", i+1)
}

func (b *builder) topProductsSheet() error {
	const sheet = SheetTop
	if _, err := b.f.NewSheet(sheet); err != nil {
		return err
	}
	if err := b.row(sheet, 1, "TOP PRODUTOS MAIS VENDIDOS"); err != nil {
		return err
	}
	if err := b.row(sheet, 3, "Ranking", "Produto", "Quantidade", "Total Vendido"); err != nil {
		return err
	}
	top := b.in.Sales.TopProducts
	for i, p := range top {
		if err := b.row(sheet, 4+i, medal(i), p.Name, p.Quantity, money(p.Revenue)); err != nil {
			return err
		}
	}
	if err := b.style(sheet, "A3", "D3", b.bold); err != nil {
		return err
	}
	if len(top) > 0 {
		if err := b.style(sheet, "D4", fmt.Sprintf("D%d", 3+len(top)), b.currency); err != nil {
			return err
		}
	}
	return b.widths(sheet, 12, 35, 12, 18)
}

// stockSheet has its header on row 4, one product per row from row 5 with a
// per-row stock value formula, then a totals row.
func (b *builder) stockSheet() error {
	const sheet = SheetStock
	if _, err := b.f.NewSheet(sheet); err != nil {
		return err
	}

	const header = 4
	rows := b.in.Inventory.Rows
	first := header + 1
	last := header + len(rows)
	total := last + 1

	if err := b.row(sheet, 1, "RELATÓRIO DE ESTOQUE"); err != nil {
		return err
	}
	if err := b.row(sheet, 2, "Data de Geração: "+b.generated()); err != nil {
		return err
	}
	if err := b.row(sheet, header, "Código", "Nome", "Categoria", "Fornecedor", "Preço Custo", "Preço Venda", "Margem %", "Estoque", "Mínimo", "Status", "Valor em Estoque"); err != nil {
		return err
	}

	for i, p := range rows {
		r := first + i
		status := "OK"
		if p.Status == report.StockLow {
			status = "BAIXO"
		}
		err := b.row(sheet, r,
			p.Code, p.Name, p.Category, p.Supplier,
			money(p.CostPrice), money(p.SalePrice), p.Margin.InexactFloat64(),
			p.StockQuantity, p.MinimumQuantity, status,
		)
		if err != nil {
			return err
		}
		if err := b.formula(sheet, "K", r, fmt.Sprintf("F%d*H%d", r, r)); err != nil {
			return err
		}
	}

	if err := b.row(sheet, total, "", "", "", "TOTAIS:"); err != nil {
		return err
	}
	for _, col := range []string{"E", "H", "K"} {
		if err := b.sum(sheet, col, total, first, last); err != nil {
			return err
		}
	}

	styles := []struct {
		from, to string
		id       int
	}{
		{"A1", "A1", b.bold},
		{fmt.Sprintf("A%d", header), fmt.Sprintf("K%d", header), b.bold},
		{fmt.Sprintf("E%d", first), fmt.Sprintf("F%d", total), b.currency},
		{fmt.Sprintf("G%d", first), fmt.Sprintf("G%d", total), b.percent},
		{fmt.Sprintf("K%d", first), fmt.Sprintf("K%d", total), b.currency},
	}
	for _, s := range styles {
		if err := b.style(sheet, s.from, s.to, s.id); err != nil {
			return err
		}
	}
	return b.widths(sheet, 12, 30, 15, 20, 14, 14, 10, 10, 10, 12, 18)
}

func (b *builder) alertsSheet() error {
	const sheet = SheetAlerts
	if _, err := b.f.NewSheet(sheet); err != nil {
		return err
	}
	inv := b.in.Inventory

	r := 1
	put := func(values ...any) error {
		err := b.row(sheet, r, values...)
		r++
		return err
	}
	lines := [][]any{
		{"ALERTAS DE ESTOQUE"},
		{"Gerado em: " + b.generated()},
		{},
		{"RESUMO DOS ALERTAS"},
		{"Status", "Quantidade de Produtos"},
		{"Produtos em Falta", len(inv.OutOfStock)},
		{"Estoque Baixo", len(inv.LowStock)},
		{"Atenção", len(inv.Attention)},
		{},
		{"PRODUTOS EM FALTA"},
	}
	for _, l := range lines {
		if err := put(l...); err != nil {
			return err
		}
	}

	if len(inv.OutOfStock) > 0 {
		if err := put("Código", "Produto", "Categoria", "Fornecedor"); err != nil {
			return err
		}
		for _, p := range inv.OutOfStock {
			if err := put(p.Code, p.Name, p.Category, p.Supplier); err != nil {
				return err
			}
		}
	} else if err := put("Nenhum produto em falta!"); err != nil {
		return err
	}

	if err := put(); err != nil {
		return err
	}
	if err := put("ESTOQUE BAIXO"); err != nil {
		return err
	}
	if len(inv.LowStock) > 0 {
		if err := put("Código", "Produto", "Atual", "Mínimo", "Diferença"); err != nil {
			return err
		}
		for _, p := range inv.LowStock {
			if err := put(p.Code, p.Name, p.StockQuantity, p.MinimumQuantity, p.MinimumQuantity-p.StockQuantity); err != nil {
				return err
			}
		}
	} else if err := put("Todos os estoques estão adequados!"); err != nil {
		return err
	}

	if err := put(); err != nil {
		return err
	}
	if err := put("ATENÇÃO"); err != nil {
		return err
	}
	if len(inv.Attention) > 0 {
		if err := put("Código", "Produto", "Atual", "Mínimo"); err != nil {
			return err
		}
		for _, p := range inv.Attention {
			if err := put(p.Code, p.Name, p.StockQuantity, p.MinimumQuantity); err != nil {
				return err
			}
		}
	} else if err := put("Nenhum produto próximo do mínimo."); err != nil {
		return err
	}

	return b.widths(sheet, 12, 35, 12, 20, 12)
}
