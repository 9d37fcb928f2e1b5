package service

import (
	"context"
	"strings"

	"github.com/maestranza/inventory-backend/internal/inventory/repository"
	"github.com/maestranza/inventory-backend/pkg/errors"
	"github.com/maestranza/inventory-backend/pkg/logger"
)

// InventoryService covers catalog CRUD: products, batches, categories,
// suppliers, projects and kits. Stock levels only change through the
// stock service.
type InventoryService struct {
	products   *repository.ProductRepository
	batches    *repository.BatchRepository
	categories *repository.CategoryRepository
	suppliers  *repository.SupplierRepository
	projects   *repository.ProjectRepository
	kits       *repository.KitRepository
	logger     *logger.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	products *repository.ProductRepository,
	batches *repository.BatchRepository,
	categories *repository.CategoryRepository,
	suppliers *repository.SupplierRepository,
	projects *repository.ProjectRepository,
	kits *repository.KitRepository,
	log *logger.Logger,
) *InventoryService {
	return &InventoryService{
		products:   products,
		batches:    batches,
		categories: categories,
		suppliers:  suppliers,
		projects:   projects,
		kits:       kits,
		logger:     log,
	}
}

// Products

// CreateProduct creates a product after validating its identity fields
func (s *InventoryService) CreateProduct(ctx context.Context, p *repository.Product) error {
	p.SKU = strings.TrimSpace(p.SKU)
	p.Name = strings.TrimSpace(p.Name)
	if p.SKU == "" {
		return errors.BadRequest("sku is required")
	}
	if p.Name == "" {
		return errors.BadRequest("name is required")
	}
	if p.Quantity < 0 {
		return errors.BadRequest("quantity cannot be negative")
	}
	if p.MinStock < 0 {
		return errors.BadRequest("min_stock cannot be negative")
	}
	return s.products.Create(ctx, p)
}

// GetProduct gets a product by ID
func (s *InventoryService) GetProduct(ctx context.Context, id string) (*repository.Product, error) {
	return s.products.GetByID(ctx, id)
}

// GetProductBySKU gets a product by SKU
func (s *InventoryService) GetProductBySKU(ctx context.Context, sku string) (*repository.Product, error) {
	return s.products.GetBySKU(ctx, sku)
}

// ListProducts lists products with pagination and filters
func (s *InventoryService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]*repository.Product, int, error) {
	return s.products.List(ctx, filter)
}

// UpdateProduct updates a product's catalog fields
func (s *InventoryService) UpdateProduct(ctx context.Context, p *repository.Product) error {
	if strings.TrimSpace(p.SKU) == "" {
		return errors.BadRequest("sku is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.BadRequest("name is required")
	}
	if p.MinStock < 0 {
		return errors.BadRequest("min_stock cannot be negative")
	}
	return s.products.Update(ctx, p)
}

// DeleteProduct removes a product
func (s *InventoryService) DeleteProduct(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

// Batches

// CreateBatch registers a received lot against an existing product
func (s *InventoryService) CreateBatch(ctx context.Context, b *repository.Batch) error {
	if b.ProductID == "" {
		return errors.BadRequest("product_id is required")
	}
	if strings.TrimSpace(b.LotNumber) == "" {
		return errors.BadRequest("lot_number is required")
	}
	if b.Quantity < 0 {
		return errors.BadRequest("quantity cannot be negative")
	}

	if _, err := s.products.GetByID(ctx, b.ProductID); err != nil {
		return err
	}
	return s.batches.Create(ctx, b)
}

// GetBatch gets a batch by ID
func (s *InventoryService) GetBatch(ctx context.Context, id string) (*repository.Batch, error) {
	return s.batches.GetByID(ctx, id)
}

// ListBatches lists a product's batches
func (s *InventoryService) ListBatches(ctx context.Context, productID string) ([]*repository.Batch, error) {
	return s.batches.ListByProduct(ctx, productID)
}

// UpdateBatch updates a batch
func (s *InventoryService) UpdateBatch(ctx context.Context, b *repository.Batch) error {
	if strings.TrimSpace(b.LotNumber) == "" {
		return errors.BadRequest("lot_number is required")
	}
	if b.Quantity < 0 {
		return errors.BadRequest("quantity cannot be negative")
	}
	return s.batches.Update(ctx, b)
}

// DeleteBatch removes a batch
func (s *InventoryService) DeleteBatch(ctx context.Context, id string) error {
	return s.batches.Delete(ctx, id)
}

// Categories

// CreateCategory creates a category
func (s *InventoryService) CreateCategory(ctx context.Context, c *repository.Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.BadRequest("name is required")
	}
	return s.categories.Create(ctx, c)
}

// GetCategory gets a category by ID
func (s *InventoryService) GetCategory(ctx context.Context, id string) (*repository.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// ListCategories lists all categories
func (s *InventoryService) ListCategories(ctx context.Context) ([]*repository.Category, error) {
	return s.categories.List(ctx)
}

// UpdateCategory updates a category
func (s *InventoryService) UpdateCategory(ctx context.Context, c *repository.Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.BadRequest("name is required")
	}
	return s.categories.Update(ctx, c)
}

// DeleteCategory removes a category
func (s *InventoryService) DeleteCategory(ctx context.Context, id string) error {
	return s.categories.Delete(ctx, id)
}

// Suppliers

// CreateSupplier creates a supplier. The RUT is normalized before storage so
// the unique constraint catches the same vendor entered with different
// formatting.
func (s *InventoryService) CreateSupplier(ctx context.Context, sup *repository.Supplier) error {
	if strings.TrimSpace(sup.Name) == "" {
		return errors.BadRequest("name is required")
	}
	sup.RUT = NormalizeRUT(sup.RUT)
	if sup.RUT == "" {
		return errors.BadRequest("rut is required")
	}
	return s.suppliers.Create(ctx, sup)
}

// GetSupplier gets a supplier by ID
func (s *InventoryService) GetSupplier(ctx context.Context, id string) (*repository.Supplier, error) {
	return s.suppliers.GetByID(ctx, id)
}

// ListSuppliers lists all suppliers
func (s *InventoryService) ListSuppliers(ctx context.Context) ([]*repository.Supplier, error) {
	return s.suppliers.List(ctx)
}

// UpdateSupplier updates a supplier
func (s *InventoryService) UpdateSupplier(ctx context.Context, sup *repository.Supplier) error {
	if strings.TrimSpace(sup.Name) == "" {
		return errors.BadRequest("name is required")
	}
	sup.RUT = NormalizeRUT(sup.RUT)
	if sup.RUT == "" {
		return errors.BadRequest("rut is required")
	}
	return s.suppliers.Update(ctx, sup)
}

// DeleteSupplier removes a supplier
func (s *InventoryService) DeleteSupplier(ctx context.Context, id string) error {
	return s.suppliers.Delete(ctx, id)
}

// Projects

// CreateProject creates a project
func (s *InventoryService) CreateProject(ctx context.Context, p *repository.Project) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.BadRequest("name is required")
	}
	return s.projects.Create(ctx, p)
}

// GetProject gets a project by ID
func (s *InventoryService) GetProject(ctx context.Context, id string) (*repository.Project, error) {
	return s.projects.GetByID(ctx, id)
}

// ListProjects lists all projects
func (s *InventoryService) ListProjects(ctx context.Context) ([]*repository.Project, error) {
	return s.projects.List(ctx)
}

// UpdateProject updates a project
func (s *InventoryService) UpdateProject(ctx context.Context, p *repository.Project) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.BadRequest("name is required")
	}
	return s.projects.Update(ctx, p)
}

// DeleteProject removes a project
func (s *InventoryService) DeleteProject(ctx context.Context, id string) error {
	return s.projects.Delete(ctx, id)
}

// Kits

// CreateKit creates a kit with its component list
func (s *InventoryService) CreateKit(ctx context.Context, kit *repository.Kit) error {
	if strings.TrimSpace(kit.Name) == "" {
		return errors.BadRequest("name is required")
	}
	for _, c := range kit.Components {
		if c.Quantity <= 0 {
			return errors.BadRequest("component quantity must be positive")
		}
	}
	return s.kits.Create(ctx, kit)
}

// GetKit gets a kit by ID
func (s *InventoryService) GetKit(ctx context.Context, id string) (*repository.Kit, error) {
	return s.kits.GetByID(ctx, id)
}

// ListKits lists all kits
func (s *InventoryService) ListKits(ctx context.Context) ([]*repository.Kit, error) {
	return s.kits.List(ctx)
}

// UpdateKit updates a kit and replaces its component list
func (s *InventoryService) UpdateKit(ctx context.Context, kit *repository.Kit) error {
	if strings.TrimSpace(kit.Name) == "" {
		return errors.BadRequest("name is required")
	}
	for _, c := range kit.Components {
		if c.Quantity <= 0 {
			return errors.BadRequest("component quantity must be positive")
		}
	}
	return s.kits.Update(ctx, kit)
}

// DeleteKit removes a kit
func (s *InventoryService) DeleteKit(ctx context.Context, id string) error {
	return s.kits.Delete(ctx, id)
}

// NormalizeRUT uppercases a Chilean RUT and strips dots and spaces, keeping
// the dash before the check digit.
func NormalizeRUT(rut string) string {
	rut = strings.ToUpper(strings.TrimSpace(rut))
	rut = strings.ReplaceAll(rut, ".", "")
	rut = strings.ReplaceAll(rut, " ", "")
	return rut
}
