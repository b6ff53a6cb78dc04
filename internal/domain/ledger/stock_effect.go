// Package ledger reúne las reglas puras del libro de movimientos: qué delta aplica cada registro
// sobre el stock de su producto y cuándo ese delta está prohibido.
package ledger

import (
	"sort"

	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

// Version estado de un registro que afecta al stock: a qué producto, de qué tipo y cuánto.
type Version struct {
	ProductID string
	Type      string
	Quantity  int64
}

// VersionOf extrae la parte de un registro que afecta al stock.
func VersionOf(e *entity.LedgerEntry) *Version {
	if e == nil {
		return nil
	}
	return &Version{ProductID: e.ProductID, Type: e.Type, Quantity: e.Quantity}
}

// Effect delta que aplica un registro: +cantidad para IN, -cantidad para OUT.
func Effect(entryType string, quantity int64) int64 {
	if entryType == entity.EntryTypeOUT {
		return -quantity
	}
	return quantity
}

// Reversal delta que deshace Effect.
func Reversal(entryType string, quantity int64) int64 {
	return -Effect(entryType, quantity)
}

// Change delta neto sobre un producto, listo para escribirse como actualización relativa.
// Released es lo que la reversión de la versión anterior devuelve al stock (>= 0); con él se
// evalúa el stock "como si el registro anterior no existiera".
type Change struct {
	ProductID string
	Delta     int64
	Released  int64
}

// Plan combina la reversión de old y la aplicación de next en un único delta por producto.
// old nil = creación; next nil = borrado. Omite productos con delta cero y devuelve los cambios
// ordenados por ProductID para bloquear filas siempre en el mismo orden.
func Plan(old, next *Version) []Change {
	byProduct := make(map[string]*Change, 2)
	get := func(id string) *Change {
		c, ok := byProduct[id]
		if !ok {
			c = &Change{ProductID: id}
			byProduct[id] = c
		}
		return c
	}
	if old != nil {
		rev := Reversal(old.Type, old.Quantity)
		c := get(old.ProductID)
		c.Delta += rev
		if rev > 0 {
			c.Released += rev
		}
	}
	if next != nil {
		get(next.ProductID).Delta += Effect(next.Type, next.Quantity)
	}

	out := make([]Change, 0, len(byProduct))
	for _, c := range byProduct {
		if c.Delta != 0 {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// Check valida el cambio contra el stock actual del producto.
// Solo falla si el cambio reduce el stock y el resultado queda negativo; un stock ya
// desincronizado no impide operaciones que lo aumentan.
func Check(c Change, current int64) error {
	if c.Delta >= 0 || current+c.Delta >= 0 {
		return nil
	}
	available := current + c.Released
	return &domain.InsufficientStockError{
		ProductID: c.ProductID,
		Available: available,
		Requested: available - (current + c.Delta),
	}
}
