package service

import (
	"context"
	"fmt"
	"time"

	"deposito-pos/internal/model"
	"deposito-pos/internal/repository"
	"deposito-pos/internal/session"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	DefaultAdminEmail    = "admin@deposito.com"
	DefaultAdminPassword = "123456"
	DefaultAdminName     = "Administrador"
)

// Pinger checks that a dependency is reachable.
type Pinger func(ctx context.Context) error

type SetupService interface {
	// Run seeds a fresh installation. It refuses once any account exists.
	Run(ctx context.Context) (*SetupResult, error)
	Diagnostics(ctx context.Context) *Diagnostics
}

type SetupResult struct {
	Success bool     `json:"success"`
	Logs    []string `json:"logs"`
}

type CheckResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

type Diagnostics struct {
	Config       CheckResult `json:"config"`
	Database     CheckResult `json:"database"`
	Redis        CheckResult `json:"redis"`
	Kafka        CheckResult `json:"kafka"`
	AccountCount int64       `json:"account_count"`
	HasAccounts  bool        `json:"has_accounts"`
	CheckedAt    time.Time   `json:"checked_at"`
}

type SetupDeps struct {
	Accounts   repository.AccountRepository
	Categories repository.CategoryRepository
	Products   repository.ProductRepository
	Sales      repository.SaleRepository
	Auth       AuthService
	Snapshots  *Snapshotter
	PingDB     Pinger
	PingRedis  Pinger // nil when Redis is not configured
	Kafka      []string
}

type setupService struct {
	d SetupDeps
}

func NewSetupService(d SetupDeps) SetupService {
	return &setupService{d: d}
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// sampleProducts is the starter catalogue of a fresh install.
func sampleProducts() []model.Product {
	mk := func(code, name, category, supplier, cost, sale string, stock, min int) model.Product {
		return model.Product{
			Code: code, Name: name, Category: category, Supplier: supplier,
			CostPrice: money(cost), SalePrice: money(sale),
			StockQuantity: stock, MinimumQuantity: min,
			Unit: "Unidade", Active: true,
		}
	}
	return []model.Product{
		mk("CERV001", "Cerveja Skol 350ml", "Cerveja", "Ambev", "2.50", "4.00", 120, 30),
		mk("CERV002", "Cerveja Brahma 350ml", "Cerveja", "Ambev", "2.60", "4.20", 100, 30),
		mk("CERV003", "Cerveja Heineken 330ml", "Cerveja", "Heineken", "4.00", "6.50", 80, 20),
		mk("REFR001", "Coca-Cola 2L", "Refrigerante", "Coca-Cola", "6.00", "9.00", 50, 15),
		mk("REFR002", "Guaraná Antarctica 2L", "Refrigerante", "Ambev", "5.50", "8.50", 45, 15),
		mk("AGUA001", "Água Mineral 500ml", "Água", "Indaia", "1.20", "2.50", 200, 50),
		mk("DEST001", "Cachaça 51 1L", "Destilado", "Cachaça 51", "15.00", "25.00", 30, 10),
		mk("ENER001", "Red Bull 250ml", "Energético", "Red Bull", "8.00", "12.00", 60, 20),
	}
}

func (s *setupService) Run(ctx context.Context) (*SetupResult, error) {
	n, err := s.d.Accounts.Count(ctx)
	if err != nil {
		return nil, storeErr("count accounts", err)
	}
	if n > 0 {
		return nil, ErrSetupDone
	}

	res := &SetupResult{}
	logf := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		res.Logs = append(res.Logs, msg)
		log.Info().Str("step", "setup").Msg(msg)
	}

	logf("Criando usuário administrador...")
	admin, err := s.d.Auth.CreateIdentity(ctx, DefaultAdminEmail, DefaultAdminPassword, DefaultAdminName, model.RoleAdmin)
	if err != nil {
		logf("Erro ao criar administrador: %v", err)
		return res, nil
	}
	logf("Administrador criado! Use: %s / %s", DefaultAdminEmail, DefaultAdminPassword)

	logf("Criando categorias...")
	created, err := s.d.Categories.SeedDefaults(ctx)
	if err != nil {
		logf("Erro ao criar categorias: %v", err)
	} else {
		logf("%d categorias criadas com sucesso!", created)
	}

	logf("Criando produtos...")
	products := sampleProducts()
	var stored []model.Product
	for i := range products {
		if err := s.d.Products.Create(ctx, &products[i]); err != nil {
			logf("Erro ao criar produto %s: %v", products[i].Code, err)
			continue
		}
		stored = append(stored, products[i])
	}
	logf("%d produtos criados com sucesso!", len(stored))

	logf("Criando venda de exemplo...")
	if err := s.sampleSale(ctx, admin, stored); err != nil {
		logf("Erro ao criar venda: %v", err)
	} else {
		logf("Venda de exemplo criada com sucesso!")
	}

	s.d.Snapshots.RefreshAll(ctx)
	logf("Configuração inicial concluída!")
	res.Success = true
	return res, nil
}

// sampleSale records 12 Skol and 2 Coca-Cola without touching stock.
func (s *setupService) sampleSale(ctx context.Context, admin *model.Account, products []model.Product) error {
	byCode := make(map[string]model.Product, len(products))
	for _, p := range products {
		byCode[p.Code] = p
	}
	skol, ok1 := byCode["CERV001"]
	coca, ok2 := byCode["REFR001"]
	if !ok1 || !ok2 {
		return fmt.Errorf("sample products missing")
	}

	seller := session.FromAccount(admin)
	now := time.Now()
	sale := &model.Sale{
		Number:        saleNumber(now),
		CustomerName:  "Cliente Exemplo",
		CustomerPhone: "(11) 99999-9999",
		Items: []model.SaleLineItem{
			model.NewLineItem(skol.ID, skol.Name, 12, skol.SalePrice),
			model.NewLineItem(coca.ID, coca.Name, 2, coca.SalePrice),
		},
		Discount:      decimal.Zero,
		PaymentMethod: model.PaymentPix,
		Status:        model.SaleCompleted,
		SellerID:      seller.AccountID,
		SellerName:    seller.Name,
		Notes:         "Venda de exemplo",
		SoldAt:        now,
	}
	sale.ComputeTotals()
	return s.d.Sales.Create(ctx, sale)
}

func check(ctx context.Context, p Pinger) CheckResult {
	if err := p(ctx); err != nil {
		return CheckResult{OK: false, Message: err.Error()}
	}
	return CheckResult{OK: true}
}

func (s *setupService) Diagnostics(ctx context.Context) *Diagnostics {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	d := &Diagnostics{
		Config:    CheckResult{OK: true},
		CheckedAt: time.Now(),
	}
	if s.d.PingDB != nil {
		d.Database = check(ctx, s.d.PingDB)
	} else {
		d.Database = CheckResult{Message: "não configurado"}
	}
	if s.d.PingRedis != nil {
		d.Redis = check(ctx, s.d.PingRedis)
	} else {
		d.Redis = CheckResult{OK: true, Message: "desativado"}
	}
	if len(s.d.Kafka) > 0 {
		d.Kafka = CheckResult{OK: true, Message: fmt.Sprintf("%d broker(s)", len(s.d.Kafka))}
	} else {
		d.Kafka = CheckResult{OK: true, Message: "desativado"}
	}

	if d.Database.OK {
		n, err := s.d.Accounts.Count(ctx)
		if err != nil {
			d.Database = CheckResult{Message: err.Error()}
		} else {
			d.AccountCount = n
			d.HasAccounts = n > 0
		}
	}
	return d
}
