package sales_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/erp-core/internal/domain"
	"github.com/jhoicas/erp-core/internal/domain/sales"
)

func TestCanTransition_FlujoLineal(t *testing.T) {
	flow := []string{"pending", "picking", "packed", "dispatched", "delivered", "completed"}
	for i := 0; i < len(flow)-1; i++ {
		assert.True(t, sales.CanTransition(flow[i], flow[i+1]), "%s → %s", flow[i], flow[i+1])
	}
}

func TestCanTransition_SaltosYRetrocesosRechazados(t *testing.T) {
	assert.False(t, sales.CanTransition("pending", "dispatched"))
	assert.False(t, sales.CanTransition("packed", "picking"))
	assert.False(t, sales.CanTransition("pending", "pending"))
	assert.False(t, sales.CanTransition("completed", "cancelled"))
	assert.False(t, sales.CanTransition("cancelled", "pending"))
}

func TestCanTransition_CancelarDesdeNoTerminal(t *testing.T) {
	for _, s := range []string{"pending", "picking", "packed", "dispatched", "delivered"} {
		assert.True(t, sales.CanTransition(s, "cancelled"), s)
	}
}

func TestCheckTransition_ErrorTipado(t *testing.T) {
	err := sales.CheckTransition("delivered", "picking")
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	assert.NoError(t, sales.CheckTransition("delivered", "completed"))
}

func TestRestocksOnCancel(t *testing.T) {
	assert.True(t, sales.RestocksOnCancel("packed"))
	assert.False(t, sales.RestocksOnCancel("dispatched"))
	assert.False(t, sales.RestocksOnCancel("delivered"))
}
