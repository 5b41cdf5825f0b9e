package ranging

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locator/internal/beacon"
)

func TestPathLoss(t *testing.T) {
	m := PathLoss{TxPower: -40, Exponent: 2}

	assert.InDelta(t, 1.0, m.Distance(-40), 1e-12)
	assert.InDelta(t, 10.0, m.Distance(-60), 1e-9)
	assert.InDelta(t, 100.0, m.Distance(-80), 1e-9)
	assert.Less(t, m.Distance(-30), 1.0)
}

func TestLogLinear(t *testing.T) {
	m := LogLinear{Slope: -0.05, Intercept: -1}

	assert.InDelta(t, 1.0, m.Distance(-20), 1e-12)
	assert.InDelta(t, 10.0, m.Distance(-40), 1e-9)
}

func TestTable_Infer(t *testing.T) {
	tbl := NewTable()
	tbl.Set(beacon.A, DefaultPathLoss)
	tbl.Set(beacon.B, LogLinear{Slope: 1, Intercept: 400})

	d, ok := tbl.Infer(beacon.A, -43.4)
	require.True(t, ok)
	assert.InDelta(t, 1.0, d, 1e-9)

	_, ok = tbl.Infer(beacon.C, -50)
	assert.False(t, ok, "no model for C")

	_, ok = tbl.Infer(beacon.B, 0)
	assert.False(t, ok, "overflow to +Inf is not a range")

	_, ok = tbl.Infer(beacon.A, math.NaN())
	assert.False(t, ok)
}

func TestParseModel(t *testing.T) {
	m, err := ParseModel("", -43.4, 2.4, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPathLoss, m)

	m, err = ParseModel("log_linear", 0, 0, -0.03, 0.5)
	require.NoError(t, err)
	assert.Equal(t, LogLinear{Slope: -0.03, Intercept: 0.5}, m)

	_, err = ParseModel("path_loss", -40, 0, 0, 0)
	assert.Error(t, err)

	_, err = ParseModel("neural", 0, 0, 0, 0)
	assert.Error(t, err)
}
