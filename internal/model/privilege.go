package model

// Privilege is a permission code checked by the route middleware.
type Privilege struct {
	Code      string `json:"code"` // e.g., "product:create"
	Name      string `json:"name"`
	AdminOnly bool   `json:"admin_only"`
}

const (
	PrivUserView   = "user:view"
	PrivUserCreate = "user:create"
	PrivUserUpdate = "user:update"
	PrivUserDelete = "user:delete"

	PrivProductView   = "product:view"
	PrivProductCreate = "product:create"
	PrivProductUpdate = "product:update"
	PrivProductDelete = "product:delete"

	PrivCategoryView   = "category:view"
	PrivCategoryManage = "category:manage"

	PrivSaleView   = "sale:view"
	PrivSaleCreate = "sale:create"
	PrivSaleUpdate = "sale:update"
	PrivSaleDelete = "sale:delete"

	PrivDashboardView = "dashboard:view"
	PrivReportView    = "report:view"
)

// DefaultPrivileges lists every privilege. Sellers get all but the admin-only ones.
var DefaultPrivileges = []Privilege{
	// User management
	{Code: PrivUserView, Name: "Ver Usuários", AdminOnly: true},
	{Code: PrivUserCreate, Name: "Criar Usuário", AdminOnly: true},
	{Code: PrivUserUpdate, Name: "Editar Usuário", AdminOnly: true},
	{Code: PrivUserDelete, Name: "Excluir Usuário", AdminOnly: true},
	// Products
	{Code: PrivProductView, Name: "Ver Produtos"},
	{Code: PrivProductCreate, Name: "Cadastrar Produto"},
	{Code: PrivProductUpdate, Name: "Editar Produto"},
	{Code: PrivProductDelete, Name: "Excluir Produto"},
	// Categories
	{Code: PrivCategoryView, Name: "Ver Categorias"},
	{Code: PrivCategoryManage, Name: "Gerenciar Categorias"},
	// Sales
	{Code: PrivSaleView, Name: "Ver Vendas"},
	{Code: PrivSaleCreate, Name: "Registrar Venda"},
	{Code: PrivSaleUpdate, Name: "Alterar Status da Venda"},
	{Code: PrivSaleDelete, Name: "Excluir Venda", AdminOnly: true},
	// Dashboard & reports
	{Code: PrivDashboardView, Name: "Ver Dashboard"},
	{Code: PrivReportView, Name: "Ver Relatórios"},
}
