package domain_test

import (
	"testing"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSale_NetPayable(t *testing.T) {
	sale := domain.Sale{
		TotalPrice:  decimal.NewFromInt(120000),
		DownPayment: decimal.NewFromInt(20000),
	}
	assert.True(t, sale.NetPayable().Equal(decimal.NewFromInt(100000)))
}

func TestSale_UnitStatusAtCreation(t *testing.T) {
	tests := []struct {
		name string
		sale domain.Sale
		want domain.UnitStatus
	}{
		{
			name: "installment sale reserves the unit",
			sale: domain.Sale{PaymentType: domain.PaymentInstallment, Status: domain.SaleInProgress},
			want: domain.UnitReserved,
		},
		{
			name: "cash sale with remaining balance reserves the unit",
			sale: domain.Sale{PaymentType: domain.PaymentCash, Status: domain.SaleInProgress},
			want: domain.UnitReserved,
		},
		{
			name: "sale complete at creation marks the unit sold",
			sale: domain.Sale{PaymentType: domain.PaymentCash, Status: domain.SaleComplete},
			want: domain.UnitSold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sale.UnitStatusAtCreation())
		})
	}
}
