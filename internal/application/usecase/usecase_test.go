package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/suministros-api/internal/application/dto"
	"github.com/jhoicas/suministros-api/internal/application/ledger"
	"github.com/jhoicas/suministros-api/internal/application/usecase"
	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/infrastructure/memory"
)

type catalogFixture struct {
	store      *memory.Store
	products   *usecase.ProductUseCase
	categories *usecase.CategoryUseCase
	adjuster   *ledger.StockAdjuster
	ctx        context.Context
}

func newCatalogFixture() *catalogFixture {
	store := memory.NewStore()
	tx := memory.NewTxRunner(store)
	return &catalogFixture{
		store:      store,
		products:   usecase.NewProductUseCase(store.Products(), store.Categories(), tx, zerolog.Nop()),
		categories: usecase.NewCategoryUseCase(store.Categories()),
		adjuster:   ledger.NewStockAdjuster(tx, store.Products(), store.Entries(), zerolog.Nop()),
		ctx:        context.Background(),
	}
}

func (f *catalogFixture) category(t *testing.T, name string) string {
	t.Helper()
	c, err := f.categories.Create(f.ctx, dto.CreateCategoryRequest{Name: name})
	require.NoError(t, err)
	return c.ID
}

// ──────────────────────────────────────────────────────────────────────────────
// Categorías
// ──────────────────────────────────────────────────────────────────────────────

func TestCategoryUseCase_CreateGeneraSlug(t *testing.T) {
	f := newCatalogFixture()

	c, err := f.categories.Create(f.ctx, dto.CreateCategoryRequest{Name: "  Papelería y Útiles "})
	require.NoError(t, err)
	assert.Equal(t, "Papelería y Útiles", c.Name)
	assert.Equal(t, "papeleria-y-utiles", c.Slug)
}

func TestCategoryUseCase_NombreDuplicadoSinMayusculas(t *testing.T) {
	f := newCatalogFixture()
	f.category(t, "Tóner")

	_, err := f.categories.Create(f.ctx, dto.CreateCategoryRequest{Name: "TÓNER"})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	_, err = f.categories.Create(f.ctx, dto.CreateCategoryRequest{Name: "   "})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestCategoryUseCase_SlugRepetidoRecibeSufijo(t *testing.T) {
	f := newCatalogFixture()
	f.category(t, "Toner")

	c, err := f.categories.Create(f.ctx, dto.CreateCategoryRequest{Name: "Tóner"})
	require.NoError(t, err)
	assert.NotEqual(t, "toner", c.Slug)
	assert.Regexp(t, `^toner-[0-9a-z]{8}$`, c.Slug)

	list, err := f.categories.List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestProductUseCase_CreateYDuplicado(t *testing.T) {
	f := newCatalogFixture()
	catID := f.category(t, "Tóner")

	p, err := f.products.Create(f.ctx, dto.CreateProductRequest{
		CategoryID:    catID,
		Brand:         "HP",
		Model:         "CF283A",
		Price:         decimal.RequireFromString("62.90"),
		StockQuantity: 3,
		MinStockLevel: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.StockQuantity)
	assert.True(t, p.LowStock)

	_, err = f.products.Create(f.ctx, dto.CreateProductRequest{CategoryID: catID, Brand: "hp", Model: "cf283a"})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	_, err = f.products.Create(f.ctx, dto.CreateProductRequest{CategoryID: "nope", Model: "X"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = f.products.Create(f.ctx, dto.CreateProductRequest{CategoryID: catID, Model: "X", Price: decimal.NewFromInt(-1)})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestProductUseCase_UpdateNoTocaStock(t *testing.T) {
	f := newCatalogFixture()
	catID := f.category(t, "Tóner")
	p, err := f.products.Create(f.ctx, dto.CreateProductRequest{CategoryID: catID, Brand: "HP", Model: "A", StockQuantity: 7})
	require.NoError(t, err)

	price := decimal.RequireFromString("10.5")
	model := "A2"
	got, err := f.products.Update(f.ctx, p.ID, dto.UpdateProductRequest{Price: &price, Model: &model})
	require.NoError(t, err)
	assert.Equal(t, "A2", got.Model)
	assert.True(t, price.Equal(got.Price))
	assert.Equal(t, int64(7), got.StockQuantity)

	missing, err := f.products.Update(f.ctx, "nope", dto.UpdateProductRequest{Model: &model})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProductUseCase_ListBuscaPorMarcaYModelo(t *testing.T) {
	f := newCatalogFixture()
	toner := f.category(t, "Tóner")
	papel := f.category(t, "Papel")
	for _, m := range []string{"CF283A", "CE285A"} {
		_, err := f.products.Create(f.ctx, dto.CreateProductRequest{CategoryID: toner, Brand: "HP", Model: m})
		require.NoError(t, err)
	}
	_, err := f.products.Create(f.ctx, dto.CreateProductRequest{CategoryID: papel, Brand: "Chamex", Model: "A4"})
	require.NoError(t, err)

	list, err := f.products.List(f.ctx, "hp", "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Page.Total)
	assert.Equal(t, 20, list.Page.Limit)

	list, err = f.products.List(f.ctx, "", papel, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "A4", list.Items[0].Model)
}

func TestProductUseCase_DeleteExigeConfirmacionYBorraRegistros(t *testing.T) {
	f := newCatalogFixture()
	catID := f.category(t, "Tóner")
	p, err := f.products.Create(f.ctx, dto.CreateProductRequest{CategoryID: catID, Brand: "HP", Model: "CF283A", StockQuantity: 10})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := f.adjuster.CreateEntry(f.ctx, "u1", dto.CreateEntryRequest{
			ProductID: p.ID, Type: "OUT", Quantity: 1, Department: "TI", HandlerName: "Luis",
		})
		require.NoError(t, err)
	}

	_, err = f.products.Delete(f.ctx, p.ID, "CF283A")
	assert.True(t, errors.Is(err, domain.ErrConfirmationMismatch))

	res, err := f.products.Delete(f.ctx, p.ID, "HP/CF283A")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.DeletedEntries)

	got, err := f.products.GetByID(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	entries, err := f.adjuster.ListEntries(f.ctx, dto.EntryListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, entries.Page.Total)

	_, err = f.products.Delete(f.ctx, p.ID, "HP/CF283A")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestProductUseCase_DeleteSinMarcaConfirmaConModelo(t *testing.T) {
	f := newCatalogFixture()
	catID := f.category(t, "Papel")
	p, err := f.products.Create(f.ctx, dto.CreateProductRequest{CategoryID: catID, Model: "Resma A4"})
	require.NoError(t, err)

	res, err := f.products.Delete(f.ctx, p.ID, " Resma A4 ")
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.DeletedEntries)
}
