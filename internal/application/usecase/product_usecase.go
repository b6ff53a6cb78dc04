package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/application/ledger"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. El stock solo se fija al crear;
// después lo mueven los registros del libro.
type ProductUseCase struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	txRunner     ledger.TxRunner
	log          zerolog.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	txRunner ledger.TxRunner,
	log zerolog.Logger,
) *ProductUseCase {
	return &ProductUseCase{repo: repo, categoryRepo: categoryRepo, txRunner: txRunner, log: log}
}

// Create crea un producto con su stock inicial. (marca, modelo) es único sin distinguir mayúsculas.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.Brand = strings.TrimSpace(in.Brand)
	in.Model = strings.TrimSpace(in.Model)
	if in.Model == "" {
		return nil, domain.Invalid("model", "requerido")
	}
	if in.Price.IsNegative() {
		return nil, domain.Invalid("price", "no puede ser negativo")
	}
	if in.StockQuantity < 0 {
		return nil, domain.Invalid("stock_quantity", "no puede ser negativo")
	}
	if err := uc.ensureCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	existing, err := uc.repo.FindByBrandModel(ctx, in.Brand, in.Model)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		CategoryID:    in.CategoryID,
		Brand:         in.Brand,
		Model:         in.Model,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		MinStockLevel: in.MinStockLevel,
		Supplier:      strings.TrimSpace(in.Supplier),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID. (nil, nil) si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil || product == nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con búsqueda por marca/modelo y filtro de categoría.
func (uc *ProductUseCase) List(ctx context.Context, search, categoryID string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	filter := repository.ProductFilter{Search: search, CategoryID: categoryID, Limit: page.Limit, Offset: page.Offset}
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := uc.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update actualiza atributos. Nunca modifica el stock. (nil, nil) si no existe.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil || product == nil {
		return nil, err
	}
	if in.CategoryID != nil && *in.CategoryID != product.CategoryID {
		if err := uc.ensureCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *in.CategoryID
	}
	if in.Brand != nil {
		product.Brand = strings.TrimSpace(*in.Brand)
	}
	if in.Model != nil {
		m := strings.TrimSpace(*in.Model)
		if m == "" {
			return nil, domain.Invalid("model", "requerido")
		}
		product.Model = m
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.Invalid("price", "no puede ser negativo")
		}
		product.Price = *in.Price
	}
	if in.MinStockLevel != nil {
		if *in.MinStockLevel < 0 {
			return nil, domain.Invalid("min_stock_level", "no puede ser negativo")
		}
		product.MinStockLevel = *in.MinStockLevel
	}
	if in.Supplier != nil {
		product.Supplier = strings.TrimSpace(*in.Supplier)
	}
	if other, err := uc.repo.FindByBrandModel(ctx, product.Brand, product.Model); err != nil {
		return nil, err
	} else if other != nil && other.ID != product.ID {
		return nil, domain.ErrDuplicate
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Delete borra el producto y todos sus registros en una transacción, sin revertir stock.
// confirmation debe ser "marca/modelo" (o solo el modelo si no hay marca).
func (uc *ProductUseCase) Delete(ctx context.Context, id, confirmation string) (*dto.DeleteProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if strings.TrimSpace(confirmation) != product.DisplayName() {
		return nil, domain.ErrConfirmationMismatch
	}

	var deleted int64
	err = uc.txRunner.Run(ctx, func(
		entryRepo repository.LedgerRepository,
		productRepo repository.ProductRepository,
		_ repository.CategoryRepository,
	) error {
		n, err := entryRepo.DeleteByProduct(ctx, id)
		if err != nil {
			return err
		}
		deleted = n
		return productRepo.Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", id).Int64("deleted_entries", deleted).Msg("producto eliminado")
	return &dto.DeleteProductResponse{ProductID: id, DeletedEntries: deleted}, nil
}

func (uc *ProductUseCase) ensureCategory(ctx context.Context, categoryID string) error {
	if strings.TrimSpace(categoryID) == "" {
		return domain.Invalid("category_id", "requerido")
	}
	c, err := uc.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID,
		CategoryID:    p.CategoryID,
		Brand:         p.Brand,
		Model:         p.Model,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
		Supplier:      p.Supplier,
		LowStock:      p.IsLowStock(),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
