// Package memory implementa los puertos de persistencia en memoria. Se usa en desarrollo
// (STORE_DRIVER=memory) y en los tests de casos de uso.
package memory

import (
	"sync"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

type state struct {
	products   map[string]entity.Product
	categories map[string]entity.Category
	entries    map[string]entity.LedgerEntry
	users      map[string]entity.User
}

func newState() *state {
	return &state{
		products:   make(map[string]entity.Product),
		categories: make(map[string]entity.Category),
		entries:    make(map[string]entity.LedgerEntry),
		users:      make(map[string]entity.User),
	}
}

func (s *state) clone() *state {
	c := &state{
		products:   make(map[string]entity.Product, len(s.products)),
		categories: make(map[string]entity.Category, len(s.categories)),
		entries:    make(map[string]entity.LedgerEntry, len(s.entries)),
		users:      make(map[string]entity.User, len(s.users)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

// backend acceso al estado: el Store (auto-commit) o la copia de una transacción en curso.
type backend interface {
	read(fn func(st *state) error) error
	write(fn func(st *state) error) error
}

// Store base de datos en memoria. Las escrituras, con o sin transacción, se serializan con txMu;
// una transacción trabaja sobre una copia del estado y la publica solo al confirmar.
type Store struct {
	txMu       sync.Mutex
	mu         sync.RWMutex
	st         *state
	commitHook func() error
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// SetCommitHook registra una función que se ejecuta antes de confirmar cada transacción;
// si devuelve error la transacción se descarta. Permite simular fallos de almacenamiento.
func (s *Store) SetCommitHook(hook func() error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.commitHook = hook
}

func (s *Store) read(fn func(st *state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

func (s *Store) write(fn func(st *state) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// txState copia privada de una transacción; el Store ya está bloqueado por txMu.
type txState struct {
	st *state
}

func (t *txState) read(fn func(st *state) error) error  { return fn(t.st) }
func (t *txState) write(fn func(st *state) error) error { return fn(t.st) }

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return newProductRepo(s) }

// Categories repositorio de categorías fuera de transacción.
func (s *Store) Categories() *CategoryRepo { return newCategoryRepo(s) }

// Entries repositorio de registros fuera de transacción.
func (s *Store) Entries() *LedgerRepo { return newLedgerRepo(s) }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{db: s} }

// Reports consultas de dashboard y reportes.
func (s *Store) Reports() *ReportRepo { return &ReportRepo{db: s} }
