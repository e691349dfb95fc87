package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coffertool/coffer/internal/model"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$0", formatMoney(0))
	assert.Equal(t, "$950", formatMoney(950))
	assert.Equal(t, "$1,000,000", formatMoney(1_000_000))
	assert.Equal(t, "-$42,500", formatMoney(-42_500))
}

func TestApprovedDisplay(t *testing.T) {
	assert.Equal(t, "-", approvedDisplay(model.Proposal{Status: model.StatusPending}))

	amount := 500_000.0
	assert.Equal(t, "$500,000", approvedDisplay(model.Proposal{
		Status:         model.StatusApproved,
		ApprovedAmount: &amount,
	}))
}
