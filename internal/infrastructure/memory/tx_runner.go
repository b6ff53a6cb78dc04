package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/suministros-api/internal/application/ledger"
	"github.com/jhoicas/suministros-api/internal/domain/repository"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks sobre una copia del estado y la publica si fn no devuelve error.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run equivale a BEGIN / COMMIT: todo o nada.
func (r *TxRunner) Run(ctx context.Context, fn func(
	entryRepo repository.LedgerRepository,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
) error) error {
	s := r.store
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	tx := &txState{st: s.st.clone()}
	s.mu.RUnlock()

	if err := fn(newLedgerRepo(tx), newProductRepo(tx), newCategoryRepo(tx)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	if s.commitHook != nil {
		if err := s.commitHook(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}

	s.mu.Lock()
	s.st = tx.st
	s.mu.Unlock()
	return nil
}
