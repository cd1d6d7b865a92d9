package model

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel
	TenantID  string          `db:"tenant_id" json:"tenant_id"`
	SKU       string          `db:"sku" json:"sku"`
	Name      string          `db:"name" json:"name"`
	BasePrice decimal.Decimal `db:"base_price" json:"base_price"`
	IsActive  bool            `db:"is_active" json:"is_active"`
}

type Location struct {
	BaseModel
	TenantID  string `db:"tenant_id" json:"tenant_id"`
	Name      string `db:"name" json:"name"`
	IsDefault bool   `db:"is_default" json:"is_default"`
	IsActive  bool   `db:"is_active" json:"is_active"`
}

type Customer struct {
	BaseModel
	TenantID string `db:"tenant_id" json:"tenant_id"`
	Name     string `db:"name" json:"name"`
}
