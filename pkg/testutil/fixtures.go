package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserFixture represents test user data
type UserFixture struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProductFixture represents test product data
type ProductFixture struct {
	ID          string
	SKU         string
	Name        string
	Description string
	CategoryID  *string
	SupplierID  *string
	Location    string
	Unit        string
	UnitPrice   float64
	Quantity    int
	MinStock    int
	CreatedAt   time.Time
}

// BatchFixture represents test batch data
type BatchFixture struct {
	ID         string
	ProductID  string
	LotNumber  string
	Quantity   int
	ExpiryDate *time.Time
	ReceivedAt time.Time
}

// SupplierFixture represents test supplier data
type SupplierFixture struct {
	ID          string
	Name        string
	RUT         string
	ContactName string
	Email       string
	Phone       string
	Address     string
	CreatedAt   time.Time
}

// CategoryFixture represents test category data
type CategoryFixture struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// FixtureFactory creates test fixtures with sensible defaults
type FixtureFactory struct {
	sequence int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{sequence: 0}
}

// nextSeq returns the next sequence number for unique values
func (f *FixtureFactory) nextSeq() int {
	f.sequence++
	return f.sequence
}

// User creates a user fixture with defaults
func (f *FixtureFactory) User(opts ...func(*UserFixture)) UserFixture {
	seq := f.nextSeq()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)

	user := UserFixture{
		ID:           uuid.New().String(),
		Username:     fmt.Sprintf("user%d", seq),
		Email:        fmt.Sprintf("user%d@maestranza.cl", seq),
		PasswordHash: string(hash),
		FullName:     fmt.Sprintf("Test User %d", seq),
		Role:         "operator",
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	for _, opt := range opts {
		opt(&user)
	}

	return user
}

// WithUsername sets the username
func WithUsername(username string) func(*UserFixture) {
	return func(u *UserFixture) {
		u.Username = username
	}
}

// WithRole sets the user role
func WithRole(role string) func(*UserFixture) {
	return func(u *UserFixture) {
		u.Role = role
	}
}

// WithPassword sets the user password (hashed)
func WithPassword(password string) func(*UserFixture) {
	return func(u *UserFixture) {
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		u.PasswordHash = string(hash)
	}
}

// Inactive marks the user as inactive
func Inactive() func(*UserFixture) {
	return func(u *UserFixture) {
		u.IsActive = false
	}
}

// Product creates a product fixture with defaults
func (f *FixtureFactory) Product(opts ...func(*ProductFixture)) ProductFixture {
	seq := f.nextSeq()

	product := ProductFixture{
		ID:        uuid.New().String(),
		SKU:       fmt.Sprintf("SKU-%04d", seq),
		Name:      fmt.Sprintf("Test Product %d", seq),
		Location:  "Bodega A",
		Unit:      "unit",
		UnitPrice: 1500,
		Quantity:  100,
		MinStock:  10,
		CreatedAt: time.Now(),
	}

	for _, opt := range opts {
		opt(&product)
	}

	return product
}

// WithSKU sets the product SKU
func WithSKU(sku string) func(*ProductFixture) {
	return func(p *ProductFixture) {
		p.SKU = sku
	}
}

// WithProductName sets the product name
func WithProductName(name string) func(*ProductFixture) {
	return func(p *ProductFixture) {
		p.Name = name
	}
}

// WithQuantity sets the product stock level
func WithQuantity(qty int) func(*ProductFixture) {
	return func(p *ProductFixture) {
		p.Quantity = qty
	}
}

// WithMinStock sets the product minimum stock threshold
func WithMinStock(min int) func(*ProductFixture) {
	return func(p *ProductFixture) {
		p.MinStock = min
	}
}

// WithCategoryID sets the product category
func WithCategoryID(id string) func(*ProductFixture) {
	return func(p *ProductFixture) {
		p.CategoryID = &id
	}
}

// WithSupplierID sets the product supplier
func WithSupplierID(id string) func(*ProductFixture) {
	return func(p *ProductFixture) {
		p.SupplierID = &id
	}
}

// Batch creates a batch fixture with defaults for the given product
func (f *FixtureFactory) Batch(productID string, opts ...func(*BatchFixture)) BatchFixture {
	seq := f.nextSeq()

	batch := BatchFixture{
		ID:         uuid.New().String(),
		ProductID:  productID,
		LotNumber:  fmt.Sprintf("LOT-%04d", seq),
		Quantity:   50,
		ReceivedAt: time.Now(),
	}

	for _, opt := range opts {
		opt(&batch)
	}

	return batch
}

// WithExpiryDate sets the batch expiry date
func WithExpiryDate(t time.Time) func(*BatchFixture) {
	return func(b *BatchFixture) {
		b.ExpiryDate = &t
	}
}

// ExpiringInDays sets the batch expiry relative to now
func ExpiringInDays(days int) func(*BatchFixture) {
	return func(b *BatchFixture) {
		t := time.Now().AddDate(0, 0, days)
		b.ExpiryDate = &t
	}
}

// WithBatchQuantity sets the batch quantity
func WithBatchQuantity(qty int) func(*BatchFixture) {
	return func(b *BatchFixture) {
		b.Quantity = qty
	}
}

// Supplier creates a supplier fixture with defaults
func (f *FixtureFactory) Supplier(opts ...func(*SupplierFixture)) SupplierFixture {
	seq := f.nextSeq()

	supplier := SupplierFixture{
		ID:          uuid.New().String(),
		Name:        fmt.Sprintf("Proveedor %d Ltda.", seq),
		RUT:         fmt.Sprintf("76.%03d.%03d-K", seq, seq),
		ContactName: fmt.Sprintf("Contact %d", seq),
		Email:       fmt.Sprintf("ventas%d@proveedor.cl", seq),
		Phone:       "+56 2 2345 6789",
		Address:     "Av. Industrial 1234, Santiago",
		CreatedAt:   time.Now(),
	}

	for _, opt := range opts {
		opt(&supplier)
	}

	return supplier
}

// WithRUT sets the supplier RUT
func WithRUT(rut string) func(*SupplierFixture) {
	return func(s *SupplierFixture) {
		s.RUT = rut
	}
}

// Category creates a category fixture with defaults
func (f *FixtureFactory) Category(opts ...func(*CategoryFixture)) CategoryFixture {
	seq := f.nextSeq()

	category := CategoryFixture{
		ID:          uuid.New().String(),
		Name:        fmt.Sprintf("Category %d", seq),
		Description: "Test category",
		CreatedAt:   time.Now(),
	}

	for _, opt := range opts {
		opt(&category)
	}

	return category
}

// WithCategoryName sets the category name
func WithCategoryName(name string) func(*CategoryFixture) {
	return func(c *CategoryFixture) {
		c.Name = name
	}
}

// DefaultTestUsers returns a set of standard test users
func DefaultTestUsers(factory *FixtureFactory) []UserFixture {
	return []UserFixture{
		factory.User(WithUsername("admin"), WithRole("admin")),
		factory.User(WithUsername("bodeguero"), WithRole("operator")),
		factory.User(WithUsername("supervisor"), WithRole("supervisor")),
		factory.User(WithUsername("inactive"), Inactive()),
	}
}
