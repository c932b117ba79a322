package model

// Category is a reference list entry; products keep the name as free text.
type Category struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name" validate:"required"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

var DefaultCategories = []Category{
	{Name: "Cerveja", Description: "Cervejas em geral"},
	{Name: "Refrigerante", Description: "Refrigerantes e bebidas gasosas"},
	{Name: "Água", Description: "Águas minerais e saborizadas"},
	{Name: "Vinho", Description: "Vinhos tintos, brancos e rosés"},
	{Name: "Destilado", Description: "Whisky, vodka, cachaça, etc"},
	{Name: "Energético", Description: "Bebidas energéticas"},
	{Name: "Suco", Description: "Sucos naturais e industrializados"},
	{Name: "Outros", Description: "Outros produtos"},
}
