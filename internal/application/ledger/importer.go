package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/catalog"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	domainledger "github.com/jhoicas/suministros-api/internal/domain/ledger"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

// DefaultChunkSize registros por transacción al importar.
const DefaultChunkSize = 50

// ImportInput una importación masiva de un solo tipo.
type ImportInput struct {
	Type       string
	Records    []ImportRecord
	SkipHeader bool // descarta el primer registro (encabezado)
	CreatedBy  string
}

// BulkImporter importa registros en lote. Crea primero las categorías y productos que falten y
// luego los registros en bloques de ChunkSize, cada bloque en su propia transacción.
// No hay atomicidad entre bloques: si uno falla, los anteriores quedan confirmados y el resultado
// parcial (con LastCommittedLine) se devuelve junto con el error.
type BulkImporter struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	chunkSize    int
	log          zerolog.Logger
	now          func() time.Time
}

// NewBulkImporter construye el importador. chunkSize <= 0 usa DefaultChunkSize.
func NewBulkImporter(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	chunkSize int,
	log zerolog.Logger,
) *BulkImporter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &BulkImporter{
		txRunner:     txRunner,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		chunkSize:    chunkSize,
		log:          log.With().Str("component", "bulk_importer").Logger(),
		now:          time.Now,
	}
}

type lineError struct {
	line int
	msg  string
}

// importPlan estado de una importación: filas válidas, altas pendientes y errores por línea.
type importPlan struct {
	rows          []*importRow
	newCategories []*entity.Category
	newProducts   []*entity.Product
	errs          []lineError
}

// ImportBatch procesa los registros. Las filas mal formadas y las salidas sin stock suficiente se
// reportan como errores por línea y no detienen la importación.
func (uc *BulkImporter) ImportBatch(ctx context.Context, in ImportInput) (*dto.ImportResult, error) {
	entryType := strings.ToUpper(strings.TrimSpace(in.Type))
	if !entity.IsValidEntryType(entryType) {
		return nil, domain.Invalid("type", "debe ser IN u OUT")
	}
	records := in.Records
	if in.SkipHeader && len(records) > 0 {
		records = records[1:]
	}

	plan := &importPlan{}
	for _, rec := range records {
		if rec.IsBlank() {
			continue
		}
		row, err := parseImportRecord(entryType, rec)
		if err != nil {
			plan.errs = append(plan.errs, lineError{rec.Line, err.Error()})
			continue
		}
		plan.rows = append(plan.rows, row)
	}
	if len(plan.rows) == 0 && len(plan.errs) == 0 {
		return nil, domain.Invalid("file", "el archivo no contiene registros")
	}

	if err := uc.resolve(ctx, entryType, plan); err != nil {
		return nil, err
	}

	result := &dto.ImportResult{}
	err := uc.execute(ctx, entryType, in.CreatedBy, plan, result)
	result.Errors = plan.sortedErrors()

	ev := uc.log.Info()
	if err != nil {
		ev = uc.log.Error().Err(err)
	}
	ev.Str("type", entryType).
		Int("created", result.Created).
		Int("new_categories", result.NewCategories).
		Int("new_products", result.NewProducts).
		Int("line_errors", len(result.Errors)).
		Int("last_committed_line", result.LastCommittedLine).
		Msg("importación procesada")
	return result, err
}

// resolve asocia cada fila a una categoría y producto existentes o pendientes de crear.
// Las coincidencias no distinguen mayúsculas; un nombre nuevo se da de alta una sola vez.
func (uc *BulkImporter) resolve(ctx context.Context, entryType string, plan *importPlan) error {
	categories, err := uc.categoryRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("listar categorías: %w", err)
	}
	products, err := uc.productRepo.List(ctx, repository.ProductFilter{})
	if err != nil {
		return fmt.Errorf("listar productos: %w", err)
	}

	catByName := make(map[string]string, len(categories))
	slugs := make(map[string]bool, len(categories))
	for _, c := range categories {
		catByName[strings.ToLower(c.Name)] = c.ID
		slugs[c.Slug] = true
	}
	prodByKey := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		prodByKey[entity.LookupKey(p.Brand, p.Model)] = p
	}

	now := uc.now()
	for _, row := range plan.rows {
		nameKey := strings.ToLower(row.category)
		catID, ok := catByName[nameKey]
		if !ok {
			slug := catalog.UniqueSlug(row.category, func(s string) bool { return slugs[s] })
			slugs[slug] = true
			c := &entity.Category{ID: uuid.New().String(), Name: row.category, Slug: slug, CreatedAt: now}
			plan.newCategories = append(plan.newCategories, c)
			catByName[nameKey] = c.ID
			catID = c.ID
		}

		key := entity.LookupKey(row.brand, row.model)
		p, ok := prodByKey[key]
		if !ok {
			p = &entity.Product{
				ID:         uuid.New().String(),
				CategoryID: catID,
				Brand:      row.brand,
				Model:      row.model,
				Price:      decimal.Zero,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if entryType == entity.EntryTypeIN {
				p.Price = row.price
				p.Supplier = row.handlerName
			}
			plan.newProducts = append(plan.newProducts, p)
			prodByKey[key] = p
		}
		row.productID = p.ID
		row.productLabel = p.DisplayName()
	}
	return nil
}

func (uc *BulkImporter) execute(ctx context.Context, entryType, createdBy string, plan *importPlan, result *dto.ImportResult) error {
	if len(plan.newCategories) > 0 {
		err := uc.txRunner.Run(ctx, func(_ repository.LedgerRepository, _ repository.ProductRepository, categoryRepo repository.CategoryRepository) error {
			for _, c := range plan.newCategories {
				if err := categoryRepo.Create(ctx, c); err != nil {
					return fmt.Errorf("crear categoría %q: %w", c.Name, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		result.NewCategories = len(plan.newCategories)
	}

	if len(plan.newProducts) > 0 {
		err := uc.txRunner.Run(ctx, func(_ repository.LedgerRepository, productRepo repository.ProductRepository, _ repository.CategoryRepository) error {
			for _, p := range plan.newProducts {
				if err := productRepo.Create(ctx, p); err != nil {
					return fmt.Errorf("crear producto %q: %w", p.DisplayName(), err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		result.NewProducts = len(plan.newProducts)
	}

	for start := 0; start < len(plan.rows); start += uc.chunkSize {
		end := start + uc.chunkSize
		if end > len(plan.rows) {
			end = len(plan.rows)
		}
		chunk := plan.rows[start:end]

		var (
			created  int
			rejected []lineError
		)
		err := uc.txRunner.Run(ctx, func(entryRepo repository.LedgerRepository, productRepo repository.ProductRepository, _ repository.CategoryRepository) error {
			created, rejected = 0, nil
			for _, row := range chunk {
				ok, err := uc.applyRow(ctx, entryRepo, productRepo, entryType, createdBy, row)
				var ise *domain.InsufficientStockError
				switch {
				case errors.As(err, &ise):
					rejected = append(rejected, lineError{row.line, fmt.Sprintf(
						"stock insuficiente para %s (actual: %d, solicitado: %d)", row.productLabel, ise.Available, ise.Requested)})
				case err != nil:
					return fmt.Errorf("línea %d: %w", row.line, err)
				case ok:
					created++
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		result.Created += created
		result.LastCommittedLine = chunk[len(chunk)-1].line
		plan.errs = append(plan.errs, rejected...)
	}
	return nil
}

// applyRow registra una fila dentro de la transacción del bloque. Devuelve
// *domain.InsufficientStockError sin escribir nada si la salida no tiene stock.
func (uc *BulkImporter) applyRow(
	ctx context.Context,
	entryRepo repository.LedgerRepository,
	productRepo repository.ProductRepository,
	entryType, createdBy string,
	row *importRow,
) (bool, error) {
	now := uc.now()
	entry := &entity.LedgerEntry{
		ID:          uuid.New().String(),
		ProductID:   row.productID,
		Type:        entryType,
		Quantity:    row.quantity,
		Date:        row.date,
		Department:  row.department,
		HandlerName: row.handlerName,
		Note:        row.note,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	change := domainledger.Plan(nil, domainledger.VersionOf(entry))[0]

	p, err := productRepo.GetForUpdate(ctx, row.productID)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, domain.ErrNotFound
	}
	if err := domainledger.Check(change, p.StockQuantity); err != nil {
		return false, err
	}
	if err := productRepo.AdjustStock(ctx, p.ID, change.Delta); err != nil {
		return false, err
	}
	// IN conserva el precio de la fila; OUT copia el precio actual del producto.
	entry.Price = p.Price
	if entryType == entity.EntryTypeIN {
		entry.Price = row.price
	}
	if err := entryRepo.Create(ctx, entry); err != nil {
		return false, err
	}
	return true, nil
}

func (p *importPlan) sortedErrors() []string {
	sort.SliceStable(p.errs, func(i, j int) bool { return p.errs[i].line < p.errs[j].line })
	out := make([]string, 0, len(p.errs))
	for _, e := range p.errs {
		out = append(out, fmt.Sprintf("línea %d: %s", e.line, e.msg))
	}
	return out
}
