package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const entryColumns = `id, product_id, type, quantity, price, date, department, handler_name, note, created_by, created_at, updated_at`

// LedgerRepo registros del libro (tabla transactions) sobre PostgreSQL.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Create persiste un registro. El ajuste de stock lo hace el caller en la misma tx.
func (r *LedgerRepo) Create(ctx context.Context, e *entity.LedgerEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO transactions (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.ProductID, e.Type, e.Quantity, e.Price, e.Date, e.Department, e.HandlerName, e.Note, e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) || isInvalidText(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID obtiene un registro por ID.
func (r *LedgerRepo) GetByID(ctx context.Context, id string) (*entity.LedgerEntry, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+entryColumns+` FROM transactions WHERE id = $1`, id)
}

// GetForUpdate obtiene el registro con SELECT ... FOR UPDATE.
func (r *LedgerRepo) GetForUpdate(ctx context.Context, id string) (*entity.LedgerEntry, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+entryColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)
}

// Update reemplaza los campos editables. type y created_* no cambian.
func (r *LedgerRepo) Update(ctx context.Context, e *entity.LedgerEntry) error {
	if !validID(e.ID) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE transactions SET product_id = $2, quantity = $3, price = $4, date = $5,
			department = $6, handler_name = $7, note = $8, updated_at = $9
		WHERE id = $1`,
		e.ID, e.ProductID, e.Quantity, e.Price, e.Date, e.Department, e.HandlerName, e.Note, e.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) || isInvalidText(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update transaction: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un registro.
func (r *LedgerRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// DeleteByProduct elimina todos los registros de un producto y devuelve cuántos borró.
func (r *LedgerRepo) DeleteByProduct(ctx context.Context, productID string) (int64, error) {
	if !validID(productID) {
		return 0, nil
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM transactions WHERE product_id = $1`, productID)
	if err != nil {
		return 0, fmt.Errorf("delete transactions by product: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// List registros con datos del producto y categoría; fecha descendente.
func (r *LedgerRepo) List(ctx context.Context, f repository.EntryFilter) ([]*entity.LedgerEntryView, error) {
	where, args := entryWhere(f)
	query := `
		SELECT t.id, t.product_id, t.type, t.quantity, t.price, t.date, t.department, t.handler_name, t.note,
			t.created_by, t.created_at, t.updated_at, p.brand, p.model, COALESCE(c.name, '')
		FROM transactions t
		JOIN products p ON p.id = t.product_id
		LEFT JOIN categories c ON c.id = p.category_id` + where + `
		ORDER BY t.date DESC, t.created_at DESC, t.id`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntryView
	for rows.Next() {
		var v entity.LedgerEntryView
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Type, &v.Quantity, &v.Price, &v.Date, &v.Department,
			&v.HandlerName, &v.Note, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt, &v.Brand, &v.Model, &v.CategoryName); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}

// Count cuenta los registros del filtro.
func (r *LedgerRepo) Count(ctx context.Context, f repository.EntryFilter) (int, error) {
	where, args := entryWhere(f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM transactions t`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func (r *LedgerRepo) getOne(ctx context.Context, query string, args ...any) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&e.ID, &e.ProductID, &e.Type, &e.Quantity, &e.Price, &e.Date, &e.Department, &e.HandlerName,
		&e.Note, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &e, nil
}

// entryWhere construye el WHERE sobre el alias t de transactions.
func entryWhere(f repository.EntryFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Type != "" {
		add("t.type = $%d", f.Type)
	}
	if f.ProductID != "" {
		if validID(f.ProductID) {
			add("t.product_id = $%d", f.ProductID)
		} else {
			conds = append(conds, "false")
		}
	}
	if f.Department != "" {
		add("t.department = $%d", f.Department)
	}
	if f.From != nil {
		add("t.date >= $%d", *f.From)
	}
	if f.To != nil {
		add("t.date <= $%d", *f.To)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
