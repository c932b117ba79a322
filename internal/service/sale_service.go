package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"deposito-pos/internal/events"
	"deposito-pos/internal/model"
	"deposito-pos/internal/receipt"
	"deposito-pos/internal/repository"
	"deposito-pos/internal/session"
	"deposito-pos/internal/ws"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type SaleService interface {
	RecordSale(ctx context.Context, req *RecordSaleRequest) (*model.Sale, error)
	ListSales(ctx context.Context, filter repository.SaleFilter) ([]model.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.SaleStatus) (*model.Sale, error)
	DeleteSale(ctx context.Context, id uuid.UUID) error
	Receipt(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}

type SaleLineInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	// UnitPrice defaults to the product's current sale price.
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

type RecordSaleRequest struct {
	Items         []SaleLineInput     `json:"items"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	CustomerName  string              `json:"customer_name"`
	CustomerPhone string              `json:"customer_phone"`
	Notes         string              `json:"notes"`
}

type SaleConfig struct {
	// AtomicStock writes the sale and its guarded stock decrements in one
	// transaction. When false the sale is inserted first and stock is
	// overwritten product by product with no rollback.
	AtomicStock bool
	ShopName    string
	Location    *time.Location
}

type saleService struct {
	sales     repository.SaleRepository
	products  repository.ProductRepository
	tx        repository.TxRunner
	snapshots *Snapshotter
	hub       ws.Broadcaster
	publisher events.Publisher
	cfg       SaleConfig
	now       func() time.Time
}

func NewSaleService(
	sales repository.SaleRepository,
	products repository.ProductRepository,
	tx repository.TxRunner,
	snapshots *Snapshotter,
	hub ws.Broadcaster,
	publisher events.Publisher,
	cfg SaleConfig,
) SaleService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &saleService{
		sales:     sales,
		products:  products,
		tx:        tx,
		snapshots: snapshots,
		hub:       hub,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// saleNumber is "V" followed by the last six digits of the unix millis clock.
func saleNumber(t time.Time) string {
	return fmt.Sprintf("V%06d", t.UnixMilli()%1_000_000)
}

// plannedLine is one distinct product of the cart with the stock seen at submit time.
type plannedLine struct {
	item          model.SaleLineItem
	snapshotStock int
}

// mergeLines sums quantities of repeated products keeping first-seen order.
// The first explicit unit price of a product wins.
func mergeLines(items []SaleLineInput) ([]SaleLineInput, error) {
	idx := make(map[uuid.UUID]int)
	var merged []SaleLineInput
	for i, it := range items {
		if it.ProductID == uuid.Nil {
			return nil, invalid(fmt.Sprintf("items[%d].product_id", i), "produto é obrigatório")
		}
		if it.Quantity <= 0 {
			return nil, invalid(fmt.Sprintf("items[%d].quantity", i), "a quantidade deve ser maior que zero")
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return nil, invalid(fmt.Sprintf("items[%d].unit_price", i), "o preço não pode ser negativo")
		}
		if j, ok := idx[it.ProductID]; ok {
			merged[j].Quantity += it.Quantity
			if merged[j].UnitPrice == nil {
				merged[j].UnitPrice = it.UnitPrice
			}
			continue
		}
		idx[it.ProductID] = len(merged)
		merged = append(merged, it)
	}
	return merged, nil
}

// plan validates the cart against the current product snapshot. Nothing is
// locked; the stock may change before the write.
func (s *saleService) plan(ctx context.Context, req *RecordSaleRequest) ([]plannedLine, error) {
	if len(req.Items) == 0 {
		return nil, invalid("items", "a venda deve ter pelo menos um item")
	}
	lines, err := mergeLines(req.Items)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr("load products", err)
	}
	byID := make(map[uuid.UUID]model.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	planned := make([]plannedLine, 0, len(lines))
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return nil, invalid("items", "produto %s não encontrado", l.ProductID)
		}
		if !p.Active {
			return nil, invalid("items", "produto %s inativo", p.Name)
		}
		if l.Quantity > p.StockQuantity {
			return nil, invalid("items", "estoque insuficiente para %s: disponível %d, solicitado %d", p.Name, p.StockQuantity, l.Quantity)
		}
		price := p.SalePrice
		if l.UnitPrice != nil {
			price = *l.UnitPrice
		}
		planned = append(planned, plannedLine{
			item:          model.NewLineItem(p.ID, p.Name, l.Quantity, price),
			snapshotStock: p.StockQuantity,
		})
	}
	return planned, nil
}

func (s *saleService) RecordSale(ctx context.Context, req *RecordSaleRequest) (*model.Sale, error) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	method := req.PaymentMethod
	if method == "" {
		method = model.PaymentCash
	}
	if !method.Valid() {
		return nil, invalid("payment_method", "forma de pagamento inválida: %q", method)
	}

	planned, err := s.plan(ctx, req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sale := &model.Sale{
		Number:        saleNumber(now),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Discount:      decimal.Zero,
		PaymentMethod: method,
		Status:        model.SaleCompleted,
		SellerID:      sess.AccountID,
		SellerName:    sess.Name,
		Notes:         strings.TrimSpace(req.Notes),
		SoldAt:        now,
	}
	for _, l := range planned {
		sale.Items = append(sale.Items, l.item)
	}
	sale.ComputeTotals()

	var writeErr error
	if s.cfg.AtomicStock {
		writeErr = s.writeAtomic(ctx, sale, planned)
		if writeErr != nil {
			return nil, writeErr
		}
	} else {
		writeErr = s.writeSequential(ctx, sale, planned)
		if writeErr != nil && !errors.Is(writeErr, ErrPartialStockUpdate) {
			return nil, writeErr
		}
	}

	s.afterRecord(ctx, sess, sale)
	return sale, writeErr
}

func (s *saleService) writeAtomic(ctx context.Context, sale *model.Sale, planned []plannedLine) error {
	err := s.tx.Run(ctx, func(st repository.Stores) error {
		if err := st.Sales.Create(ctx, sale); err != nil {
			return err
		}
		for _, l := range planned {
			if err := st.Products.DecrementStock(ctx, l.item.ProductID, l.item.Quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return invalid("items", "estoque insuficiente para %s", l.item.ProductName)
				}
				return err
			}
		}
		return nil
	})
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return storeErr("record sale", err)
}

// writeSequential inserts the sale and then overwrites each stock with
// snapshot minus quantity. It stops at the first failure and reports which
// products were left untouched.
func (s *saleService) writeSequential(ctx context.Context, sale *model.Sale, planned []plannedLine) error {
	if err := s.sales.Create(ctx, sale); err != nil {
		return storeErr("record sale", err)
	}
	for i, l := range planned {
		if err := s.products.SetStock(ctx, l.item.ProductID, l.snapshotStock-l.item.Quantity); err != nil {
			perr := &PartialStockError{SaleID: sale.ID, Number: sale.Number, Err: err}
			for _, done := range planned[:i] {
				perr.Updated = append(perr.Updated, done.item.ProductID)
			}
			for _, rest := range planned[i:] {
				perr.Failed = append(perr.Failed, rest.item.ProductID)
			}
			log.Error().Err(err).Str("sale", sale.Number).Int("failed", len(perr.Failed)).Msg("stock left inconsistent after sale")
			return perr
		}
	}
	return nil
}

func (s *saleService) afterRecord(ctx context.Context, sess session.Session, sale *model.Sale) {
	s.snapshots.RefreshSales(ctx)
	s.snapshots.RefreshProducts(ctx)

	notify(s.hub, "sale_recorded", "sale_created", sess, sale,
		"%s registrou a venda %s (%s)", sess.Name, sale.Number, receipt.BRL(sale.Total))

	ev := events.SaleRecorded{
		SaleID:        sale.ID,
		Number:        sale.Number,
		Total:         sale.Total,
		PaymentMethod: string(sale.PaymentMethod),
		SellerID:      sale.SellerID,
		SoldAt:        sale.SoldAt,
	}
	for _, it := range sale.Items {
		ev.Items = append(ev.Items, events.SaleRecordedItem{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	if err := s.publisher.PublishSaleRecorded(ctx, ev); err != nil {
		log.Warn().Err(err).Str("sale", sale.Number).Msg("publish sale event")
	}
	log.Info().Str("sale", sale.Number).Str("total", sale.Total.StringFixed(2)).Int("items", len(sale.Items)).Msg("sale recorded")
}

func (s *saleService) ListSales(ctx context.Context, filter repository.SaleFilter) ([]model.Sale, error) {
	sales, err := s.sales.FindAll(ctx, filter)
	if err != nil {
		return nil, storeErr("list sales", err)
	}
	return sales, nil
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find sale", err)
	}
	return sale, nil
}

// UpdateStatus changes only the status; stock is not restored on cancel.
func (s *saleService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SaleStatus) (*model.Sale, error) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if !status.Valid() {
		return nil, invalid("status", "status inválido: %q", status)
	}
	if err := s.sales.UpdateStatus(ctx, id, status); err != nil {
		return nil, storeErr("update sale status", err)
	}
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find sale", err)
	}

	s.snapshots.RefreshSales(ctx)
	notify(s.hub, "sale_update", "status_changed", sess, sale, "%s alterou a venda %s para %s", sess.Name, sale.Number, status.Label())
	return sale, nil
}

func (s *saleService) DeleteSale(ctx context.Context, id uuid.UUID) error {
	sess, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return storeErr("find sale", err)
	}
	if err := s.sales.Delete(ctx, id); err != nil {
		return storeErr("delete sale", err)
	}

	s.snapshots.RefreshSales(ctx)
	notify(s.hub, "sale_update", "sale_deleted", sess, map[string]string{"id": id.String()}, "%s excluiu a venda %s", sess.Name, sale.Number)
	return nil
}

func (s *saleService) Receipt(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := receipt.Render(sale, s.cfg.ShopName, s.cfg.Location)
	if err != nil {
		return nil, "", err
	}
	return pdf, receipt.FileName(sale), nil
}
