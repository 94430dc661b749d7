package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountReconcile(t *testing.T) {
	a := Account{
		InvestmentTotal:  6000,
		EarningTotal:     600,
		TotalWithdrawals: 1500,
	}
	a.Reconcile()
	assert.Equal(t, int64(5100), a.CurrentBalance)

	a.TotalWithdrawals = 0
	a.Reconcile()
	assert.Equal(t, int64(6600), a.CurrentBalance)
}

func TestAccountHasGranted(t *testing.T) {
	a := Account{ReferralsGranted: []string{"r1", "r2"}}

	assert.True(t, a.HasGranted("r1"))
	assert.False(t, a.HasGranted("r3"))

	var empty Account
	assert.False(t, empty.HasGranted("r1"))
}
