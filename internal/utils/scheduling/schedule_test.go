package scheduling_test

import (
	"testing"
	"time"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	"github.com/sahelimmo/lotissement_app/internal/utils/scheduling"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saleDate() time.Time {
	return time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
}

func TestGenerate_InstallmentSale(t *testing.T) {
	terms := scheduling.Terms{
		SaleID:           "sale_1",
		PaymentType:      domain.PaymentInstallment,
		SaleDate:         saleDate(),
		TotalPrice:       decimal.NewFromInt(1000000),
		DownPayment:      decimal.NewFromInt(200000),
		InstallmentCount: 4,
	}

	installments, err := scheduling.Generate(terms)
	require.NoError(t, err)
	require.Len(t, installments, 4)

	for i, inst := range installments {
		assert.Equal(t, i+1, inst.Sequence)
		assert.True(t, decimal.NewFromInt(200000).Equal(inst.Amount), "installment %d amount", i+1)
		assert.Equal(t, saleDate().AddDate(0, i+1, 0), inst.DueDate)
		assert.Equal(t, domain.InstallmentPending, inst.Status)
	}
}

func TestGenerate_ExplicitFirstDueDate(t *testing.T) {
	firstDue := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	terms := scheduling.Terms{
		SaleID:           "sale_7",
		PaymentType:      domain.PaymentInstallment,
		SaleDate:         saleDate(),
		TotalPrice:       decimal.NewFromInt(120000),
		InstallmentCount: 3,
		FirstDueDate:     &firstDue,
	}

	installments, err := scheduling.Generate(terms)
	require.NoError(t, err)
	require.Len(t, installments, 3)
	for i, inst := range installments {
		assert.Equal(t, firstDue.AddDate(0, i, 0), inst.DueDate)
	}
}

func TestGenerate_RoundingRemainderOnLastInstallment(t *testing.T) {
	// 100000 / 3 does not divide evenly; nominal truncates to 33333.33 and the
	// last installment absorbs the remainder.
	terms := scheduling.Terms{
		SaleID:           "sale_2",
		PaymentType:      domain.PaymentInstallment,
		SaleDate:         saleDate(),
		TotalPrice:       decimal.NewFromInt(100000),
		DownPayment:      decimal.Zero,
		InstallmentCount: 3,
	}

	installments, err := scheduling.Generate(terms)
	require.NoError(t, err)
	require.Len(t, installments, 3)

	assert.True(t, decimal.RequireFromString("33333.33").Equal(installments[0].Amount))
	assert.True(t, decimal.RequireFromString("33333.33").Equal(installments[1].Amount))
	assert.True(t, decimal.RequireFromString("33333.34").Equal(installments[2].Amount))

	sum := decimal.Zero
	for _, inst := range installments {
		sum = sum.Add(inst.Amount)
	}
	assert.True(t, decimal.NewFromInt(100000).Equal(sum), "schedule sum must equal total - down exactly")
}

func TestGenerate_CashSale(t *testing.T) {
	terms := scheduling.Terms{
		SaleID:      "sale_3",
		PaymentType: domain.PaymentCash,
		SaleDate:    saleDate(),
		TotalPrice:  decimal.NewFromInt(500000),
		DownPayment: decimal.NewFromInt(100000),
	}

	installments, err := scheduling.Generate(terms)
	require.NoError(t, err)
	require.Len(t, installments, 1)
	assert.Equal(t, saleDate(), installments[0].DueDate)
	assert.True(t, decimal.NewFromInt(400000).Equal(installments[0].Amount))
}

func TestGenerate_CashSaleFullyCoveredByDownPayment(t *testing.T) {
	terms := scheduling.Terms{
		SaleID:      "sale_4",
		PaymentType: domain.PaymentCash,
		SaleDate:    saleDate(),
		TotalPrice:  decimal.NewFromInt(500000),
		DownPayment: decimal.NewFromInt(500000),
	}

	installments, err := scheduling.Generate(terms)
	require.NoError(t, err)
	assert.Empty(t, installments)
}

func TestGenerate_InvalidInputs(t *testing.T) {
	_, err := scheduling.Generate(scheduling.Terms{
		SaleID:      "sale_5",
		PaymentType: domain.PaymentCash,
		SaleDate:    saleDate(),
		TotalPrice:  decimal.NewFromInt(100),
		DownPayment: decimal.NewFromInt(200),
	})
	assert.Error(t, err, "down payment above total price")

	_, err = scheduling.Generate(scheduling.Terms{
		SaleID:           "sale_6",
		PaymentType:      domain.PaymentInstallment,
		SaleDate:         saleDate(),
		TotalPrice:       decimal.NewFromInt(100),
		InstallmentCount: 0,
	})
	assert.Error(t, err, "zero installment count")
}
