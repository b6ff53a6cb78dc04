// Package ledger contiene los casos de uso del libro de movimientos: registrar, editar y borrar
// entradas/salidas manteniendo el stock de cada producto consistente, y la importación masiva.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	domainledger "github.com/jhoicas/suministros-api/internal/domain/ledger"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

// StockAdjuster registra, edita y borra movimientos. Cada operación calcula el delta neto por
// producto antes de escribir y lo aplica, junto con la fila del registro, en una sola transacción
// (bloqueo de fila del producto + actualización relativa del stock).
type StockAdjuster struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	entryRepo   repository.LedgerRepository
	log         zerolog.Logger
	now         func() time.Time
}

// NewStockAdjuster construye el caso de uso.
func NewStockAdjuster(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	entryRepo repository.LedgerRepository,
	log zerolog.Logger,
) *StockAdjuster {
	return &StockAdjuster{
		txRunner:    txRunner,
		productRepo: productRepo,
		entryRepo:   entryRepo,
		log:         log.With().Str("component", "stock_adjuster").Logger(),
		now:         time.Now,
	}
}

// entryFields campos ya validados de un registro.
type entryFields struct {
	productID   string
	quantity    int64
	date        time.Time
	department  string
	handlerName string
	note        string
}

// CreateEntry registra un movimiento. Para OUT falla con *domain.InsufficientStockError si el
// stock actual no alcanza; en ese caso no se escribe nada.
func (uc *StockAdjuster) CreateEntry(ctx context.Context, userID string, in dto.CreateEntryRequest) (*dto.EntryResponse, error) {
	entryType := strings.ToUpper(strings.TrimSpace(in.Type))
	if !entity.IsValidEntryType(entryType) {
		return nil, domain.Invalid("type", "debe ser IN u OUT")
	}
	f, err := uc.validateFields(entryType, in.ProductID, in.Quantity, in.Date, in.Department, in.HandlerName, in.Note)
	if err != nil {
		return nil, err
	}
	if err := uc.ensureProduct(ctx, f.productID); err != nil {
		return nil, err
	}

	now := uc.now()
	entry := &entity.LedgerEntry{
		ID:          uuid.New().String(),
		ProductID:   f.productID,
		Type:        entryType,
		Quantity:    f.quantity,
		Date:        f.date,
		Department:  f.department,
		HandlerName: f.handlerName,
		Note:        f.note,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var stockAfter int64
	err = uc.txRunner.Run(ctx, func(
		entryRepo repository.LedgerRepository,
		productRepo repository.ProductRepository,
		_ repository.CategoryRepository,
	) error {
		after, err := applyChanges(ctx, productRepo, domainledger.Plan(nil, domainledger.VersionOf(entry)))
		if err != nil {
			return err
		}
		product, err := productRepo.GetByID(ctx, entry.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		entry.Price = product.Price
		stockAfter = after[entry.ProductID]
		return entryRepo.Create(ctx, entry)
	})
	if err != nil {
		uc.logRejection(err, "crear", entry.ProductID)
		return nil, err
	}

	uc.log.Info().
		Str("entry_id", entry.ID).
		Str("product_id", entry.ProductID).
		Str("type", entry.Type).
		Int64("quantity", entry.Quantity).
		Int64("stock_after", stockAfter).
		Msg("registro creado")
	resp := toEntryResponse(entry)
	resp.StockAfter = &stockAfter
	return resp, nil
}

// EditEntry reemplaza producto, cantidad, fecha y metadatos de un registro existente.
// El tipo no cambia. La reversión del registro anterior y la aplicación del nuevo se combinan
// en un único delta por producto, de modo que un rechazo no deja nada que restaurar.
func (uc *StockAdjuster) EditEntry(ctx context.Context, id string, in dto.UpdateEntryRequest) (*dto.EntryResponse, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalid("id", "requerido")
	}
	current, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	if t := strings.ToUpper(strings.TrimSpace(in.Type)); t != "" && t != current.Type {
		return nil, domain.Invalid("type", "el tipo de un registro no se puede cambiar")
	}
	f, err := uc.validateFields(current.Type, in.ProductID, in.Quantity, in.Date, in.Department, in.HandlerName, in.Note)
	if err != nil {
		return nil, err
	}
	if f.productID != current.ProductID {
		if err := uc.ensureProduct(ctx, f.productID); err != nil {
			return nil, err
		}
	}

	var (
		updated    *entity.LedgerEntry
		stockAfter int64
	)
	err = uc.txRunner.Run(ctx, func(
		entryRepo repository.LedgerRepository,
		productRepo repository.ProductRepository,
		_ repository.CategoryRepository,
	) error {
		// Relee con bloqueo: la versión a revertir es la que está confirmada ahora.
		old, err := entryRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if old == nil {
			return domain.ErrNotFound
		}
		next := *old
		next.ProductID = f.productID
		next.Quantity = f.quantity
		next.Date = f.date
		next.Department = f.department
		next.HandlerName = f.handlerName
		next.Note = f.note
		next.UpdatedAt = uc.now()

		after, err := applyChanges(ctx, productRepo, domainledger.Plan(domainledger.VersionOf(old), domainledger.VersionOf(&next)))
		if err != nil {
			return err
		}
		product, err := productRepo.GetByID(ctx, next.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		next.Price = product.Price
		if v, ok := after[next.ProductID]; ok {
			stockAfter = v
		} else {
			stockAfter = product.StockQuantity
		}
		if err := entryRepo.Update(ctx, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		uc.logRejection(err, "editar", f.productID)
		return nil, err
	}

	uc.log.Info().
		Str("entry_id", updated.ID).
		Str("product_id", updated.ProductID).
		Int64("quantity", updated.Quantity).
		Int64("stock_after", stockAfter).
		Msg("registro editado")
	resp := toEntryResponse(updated)
	resp.StockAfter = &stockAfter
	return resp, nil
}

// DeleteEntry revierte el efecto del registro y lo borra en la misma transacción.
// Borrar una entrada (IN) cuyo stock ya se consumió falla con *domain.InsufficientStockError.
func (uc *StockAdjuster) DeleteEntry(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.Invalid("id", "requerido")
	}
	current, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return domain.ErrNotFound
	}

	err = uc.txRunner.Run(ctx, func(
		entryRepo repository.LedgerRepository,
		productRepo repository.ProductRepository,
		_ repository.CategoryRepository,
	) error {
		old, err := entryRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if old == nil {
			return domain.ErrNotFound
		}
		if _, err := applyChanges(ctx, productRepo, domainledger.Plan(domainledger.VersionOf(old), nil)); err != nil {
			return err
		}
		return entryRepo.Delete(ctx, old.ID)
	})
	if err != nil {
		uc.logRejection(err, "borrar", current.ProductID)
		return err
	}
	uc.log.Info().Str("entry_id", id).Str("product_id", current.ProductID).Msg("registro borrado")
	return nil
}

// GetEntry obtiene un registro por ID. Devuelve (nil, nil) si no existe.
func (uc *StockAdjuster) GetEntry(ctx context.Context, id string) (*dto.EntryResponse, error) {
	e, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil || e == nil {
		return nil, err
	}
	return toEntryResponse(e), nil
}

// ListEntries lista registros con filtros y paginación.
func (uc *StockAdjuster) ListEntries(ctx context.Context, q dto.EntryListQuery) (*dto.EntryListResponse, error) {
	q.DefaultPage()
	filter, err := entryFilter(q)
	if err != nil {
		return nil, err
	}
	list, err := uc.entryRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := uc.entryRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.EntryResponse, 0, len(list))
	for _, v := range list {
		items = append(items, *ToEntryViewResponse(v))
	}
	return &dto.EntryListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

func (uc *StockAdjuster) validateFields(entryType, productID string, quantity int64, date, department, handler, note string) (entryFields, error) {
	f := entryFields{
		productID:   strings.TrimSpace(productID),
		quantity:    quantity,
		department:  strings.TrimSpace(department),
		handlerName: strings.TrimSpace(handler),
		note:        strings.TrimSpace(note),
	}
	if f.productID == "" {
		return f, domain.Invalid("product_id", "requerido")
	}
	if quantity <= 0 {
		return f, domain.Invalid("quantity", "debe ser mayor que cero")
	}
	if entryType == entity.EntryTypeOUT {
		if f.department == "" {
			return f, domain.Invalid("department", "requerido en salidas")
		}
		if f.handlerName == "" {
			return f, domain.Invalid("handler_name", "requerido en salidas")
		}
	}
	if strings.TrimSpace(date) == "" {
		now := uc.now()
		f.date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return f, nil
	}
	d, err := ParseDate(date)
	if err != nil {
		return f, domain.Invalid("date", "formato esperado AAAA-MM-DD")
	}
	f.date = d
	return f, nil
}

func (uc *StockAdjuster) ensureProduct(ctx context.Context, productID string) error {
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	return nil
}

func (uc *StockAdjuster) logRejection(err error, op, productID string) {
	var ise *domain.InsufficientStockError
	switch {
	case errors.As(err, &ise):
		uc.log.Warn().Str("op", op).Str("product_id", ise.ProductID).
			Int64("available", ise.Available).Int64("requested", ise.Requested).
			Msg("movimiento rechazado por stock insuficiente")
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidInput):
		uc.log.Debug().Err(err).Str("op", op).Str("product_id", productID).Msg("movimiento rechazado")
	default:
		uc.log.Error().Err(err).Str("op", op).Str("product_id", productID).Msg("fallo de almacenamiento")
	}
}

// applyChanges bloquea cada producto afectado en orden, valida que el stock no quede negativo y
// escribe el delta relativo. Devuelve el stock resultante por producto.
func applyChanges(ctx context.Context, productRepo repository.ProductRepository, changes []domainledger.Change) (map[string]int64, error) {
	after := make(map[string]int64, len(changes))
	for _, c := range changes {
		p, err := productRepo.GetForUpdate(ctx, c.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.ErrNotFound
		}
		if err := domainledger.Check(c, p.StockQuantity); err != nil {
			return nil, err
		}
		if err := productRepo.AdjustStock(ctx, c.ProductID, c.Delta); err != nil {
			return nil, fmt.Errorf("ajustar stock de %s: %w", c.ProductID, err)
		}
		after[c.ProductID] = p.StockQuantity + c.Delta
	}
	return after, nil
}

// ParseDate acepta AAAA-MM-DD o AAAA/MM/DD.
func ParseDate(s string) (time.Time, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "/", "-")
	return time.Parse(entity.DateLayout, s)
}

func entryFilter(q dto.EntryListQuery) (repository.EntryFilter, error) {
	f := repository.EntryFilter{
		Type:       strings.ToUpper(q.Type),
		ProductID:  q.ProductID,
		Department: q.Department,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	if q.StartDate != "" {
		d, err := ParseDate(q.StartDate)
		if err != nil {
			return f, domain.Invalid("start_date", "formato esperado AAAA-MM-DD")
		}
		f.From = &d
	}
	if q.EndDate != "" {
		d, err := ParseDate(q.EndDate)
		if err != nil {
			return f, domain.Invalid("end_date", "formato esperado AAAA-MM-DD")
		}
		f.To = &d
	}
	return f, nil
}

func toEntryResponse(e *entity.LedgerEntry) *dto.EntryResponse {
	return &dto.EntryResponse{
		ID:          e.ID,
		ProductID:   e.ProductID,
		Type:        e.Type,
		Quantity:    e.Quantity,
		Price:       e.Price,
		Total:       e.Total(),
		Date:        e.Date.Format(entity.DateLayout),
		Department:  e.Department,
		HandlerName: e.HandlerName,
		Note:        e.Note,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

// ToEntryViewResponse convierte un registro con datos de producto en su DTO.
func ToEntryViewResponse(v *entity.LedgerEntryView) *dto.EntryResponse {
	resp := toEntryResponse(&v.LedgerEntry)
	resp.Brand = v.Brand
	resp.Model = v.Model
	resp.CategoryName = v.CategoryName
	return resp
}
