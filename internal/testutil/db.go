// Package testutil opens migrated in-memory databases and seeds the rows
// most tests need: a tenant, a worker and a customer.
package testutil

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/internal/infrastructure/database"
	infraRepo "github.com/sangkips/tillbook-api/internal/infrastructure/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// NewDB opens a private in-memory SQLite database with every table migrated
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := unsafeChars.ReplaceAllString(t.Name(), "_")
	db, err := database.NewSQLiteDB("file:"+name+"?mode=memory&cache=shared", logger.Silent, zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Fixture is a tenant with one worker and one customer
type Fixture struct {
	Tenant   *entity.Tenant
	Worker   *entity.User
	Customer *entity.Customer
	Ctx      context.Context
}

// Seed creates a tenant, a worker who is a member of it, and the customer "Acme - John"
func Seed(t testing.TB, db *gorm.DB) *Fixture {
	t.Helper()
	worker := &entity.User{FirstName: "Jane", LastName: "Cashier", Email: uuid.NewString() + "@example.com"}
	mustCreate(t, db, worker)

	tenant := &entity.Tenant{
		Name:     "Corner Shop",
		Slug:     "corner-shop-" + uuid.NewString()[:8],
		OwnerID:  worker.ID,
		Settings: entity.DefaultTenantSettings(),
	}
	mustCreate(t, db, tenant)
	mustCreate(t, db, &entity.TenantMembership{TenantID: tenant.ID, UserID: worker.ID, Role: entity.MembershipOwner})

	customer := &entity.Customer{TenantID: tenant.ID, Company: "Acme", Name: "John"}
	mustCreate(t, db, customer)

	return &Fixture{
		Tenant:   tenant,
		Worker:   worker,
		Customer: customer,
		Ctx:      infraRepo.WithTenant(context.Background(), tenant.ID),
	}
}

// ItemSpec describes an inventory item to seed
type ItemSpec struct {
	Name             string
	BaseUnit         string
	AtomicUnit       string
	ConversionFactor string
	LossFactor       string
	Onhand           string
	CostPrice        string
	SalesPrice       string
	ReorderPoint     string
}

// AddItem seeds an inventory item for the fixture's tenant
func (f *Fixture) AddItem(t testing.TB, db *gorm.DB, in ItemSpec) *entity.InventoryItem {
	t.Helper()
	item := &entity.InventoryItem{
		TenantID:         f.Tenant.ID,
		Name:             in.Name,
		BaseUnit:         orDefault(in.BaseUnit, "pcs"),
		AtomicUnit:       in.AtomicUnit,
		ConversionFactor: Dec(orDefault(in.ConversionFactor, "1")),
		LossFactor:       Dec(orDefault(in.LossFactor, "0")),
		Onhand:           Dec(orDefault(in.Onhand, "0")),
		CostPrice:        Dec(orDefault(in.CostPrice, "0")),
		SalesPrice:       Dec(orDefault(in.SalesPrice, "0")),
		ReorderPoint:     Dec(orDefault(in.ReorderPoint, "0")),
		Version:          1,
	}
	mustCreate(t, db, item)
	return item
}

// AddConversion seeds a unit conversion for item
func (f *Fixture) AddConversion(t testing.TB, db *gorm.DB, item *entity.InventoryItem, toUnit, rate, price string) *entity.UnitConversion {
	t.Helper()
	conv := &entity.UnitConversion{
		InventoryID:    item.ID,
		FromUnit:       item.BaseUnit,
		ToUnit:         toUnit,
		ConversionRate: Dec(rate),
		SalesPrice:     Dec(orDefault(price, "0")),
	}
	mustCreate(t, db, conv)
	return conv
}

// AddCustomer seeds another customer for the fixture's tenant
func (f *Fixture) AddCustomer(t testing.TB, db *gorm.DB, company, name string) *entity.Customer {
	t.Helper()
	c := &entity.Customer{TenantID: f.Tenant.ID, Company: company, Name: name}
	mustCreate(t, db, c)
	return c
}

// Onhand reloads the stock level of an item
func Onhand(t testing.TB, db *gorm.DB, id uuid.UUID) decimal.Decimal {
	t.Helper()
	var item entity.InventoryItem
	if err := db.First(&item, "id = ?", id).Error; err != nil {
		t.Fatalf("reload item: %v", err)
	}
	return item.Onhand
}

// Dec parses a decimal literal
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func mustCreate(t testing.TB, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Omit(clause.Associations).Create(v).Error; err != nil {
		t.Fatalf("seed %T: %v", v, err)
	}
}
