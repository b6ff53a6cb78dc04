package ledger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/suministros-api/internal/domain"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/domain/ledger"
)

func out(product string, q int64) *ledger.Version {
	return &ledger.Version{ProductID: product, Type: entity.EntryTypeOUT, Quantity: q}
}

func in(product string, q int64) *ledger.Version {
	return &ledger.Version{ProductID: product, Type: entity.EntryTypeIN, Quantity: q}
}

func TestEffectYReversal(t *testing.T) {
	assert.Equal(t, int64(5), ledger.Effect(entity.EntryTypeIN, 5))
	assert.Equal(t, int64(-5), ledger.Effect(entity.EntryTypeOUT, 5))
	assert.Equal(t, int64(-5), ledger.Reversal(entity.EntryTypeIN, 5))
	assert.Equal(t, int64(5), ledger.Reversal(entity.EntryTypeOUT, 5))
}

func TestPlan_Creacion(t *testing.T) {
	changes := ledger.Plan(nil, out("p1", 4))
	require.Len(t, changes, 1)
	assert.Equal(t, ledger.Change{ProductID: "p1", Delta: -4}, changes[0])
}

func TestPlan_Borrado(t *testing.T) {
	changes := ledger.Plan(out("p1", 4), nil)
	require.Len(t, changes, 1)
	assert.Equal(t, ledger.Change{ProductID: "p1", Delta: 4, Released: 4}, changes[0])

	changes = ledger.Plan(in("p1", 7), nil)
	require.Len(t, changes, 1)
	assert.Equal(t, ledger.Change{ProductID: "p1", Delta: -7}, changes[0])
}

func TestPlan_EdicionMismoProductoCombinaDelta(t *testing.T) {
	// revertir +4 y aplicar -2 = +2 neto
	changes := ledger.Plan(out("p1", 4), out("p1", 2))
	require.Len(t, changes, 1)
	assert.Equal(t, int64(2), changes[0].Delta)
	assert.Equal(t, int64(4), changes[0].Released)
}

func TestPlan_EdicionSinCambioDeCantidadNoGeneraDelta(t *testing.T) {
	assert.Empty(t, ledger.Plan(out("p1", 3), out("p1", 3)))
}

func TestPlan_CambioDeProductoOrdenado(t *testing.T) {
	changes := ledger.Plan(out("zeta", 3), out("alfa", 5))
	require.Len(t, changes, 2)
	assert.Equal(t, "alfa", changes[0].ProductID)
	assert.Equal(t, int64(-5), changes[0].Delta)
	assert.Equal(t, "zeta", changes[1].ProductID)
	assert.Equal(t, int64(3), changes[1].Delta)
}

func TestCheck_SalidaMayorAlStock(t *testing.T) {
	err := ledger.Check(ledger.Plan(nil, out("p1", 10))[0], 6)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, int64(6), ise.Available)
	assert.Equal(t, int64(10), ise.Requested)
}

func TestCheck_EdicionEvaluaSinLaVersionAnterior(t *testing.T) {
	// stock 6 con una salida de 4 ya aplicada: subir la salida a 10 es válido (6+4-10 = 0)
	c := ledger.Plan(out("p1", 4), out("p1", 10))[0]
	assert.NoError(t, ledger.Check(c, 6))

	c = ledger.Plan(out("p1", 4), out("p1", 11))[0]
	err := ledger.Check(c, 6)
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, int64(10), ise.Available)
	assert.Equal(t, int64(11), ise.Requested)
}

func TestCheck_BorrarEntradaNoPuedeDejarNegativo(t *testing.T) {
	c := ledger.Plan(in("p1", 8), nil)[0]
	assert.NoError(t, ledger.Check(c, 8))

	err := ledger.Check(c, 5)
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, int64(5), ise.Available)
	assert.Equal(t, int64(8), ise.Requested)
}

func TestCheck_AumentoSiemprePermitido(t *testing.T) {
	c := ledger.Plan(nil, in("p1", 2))[0]
	assert.NoError(t, ledger.Check(c, -3))
}
