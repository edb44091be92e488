package domain_test

import (
	"testing"
	"time"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInstallment_DeriveStatus(t *testing.T) {
	asOf := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name        string
		installment domain.Installment
		want        domain.InstallmentStatus
	}{
		{
			name: "unpaid with future due date is pending",
			installment: domain.Installment{
				Amount:  decimal.NewFromInt(200000),
				DueDate: asOf.AddDate(0, 1, 0),
			},
			want: domain.InstallmentPending,
		},
		{
			name: "unpaid due today is still pending",
			installment: domain.Installment{
				Amount:  decimal.NewFromInt(200000),
				DueDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			},
			want: domain.InstallmentPending,
		},
		{
			name: "unpaid past due is late",
			installment: domain.Installment{
				Amount:  decimal.NewFromInt(200000),
				DueDate: asOf.AddDate(0, 0, -1),
			},
			want: domain.InstallmentLate,
		},
		{
			name: "partially paid past due is late",
			installment: domain.Installment{
				Amount:     decimal.NewFromInt(200000),
				PaidAmount: decimal.NewFromInt(150000),
				DueDate:    asOf.AddDate(0, -2, 0),
			},
			want: domain.InstallmentLate,
		},
		{
			name: "fully paid past due is paid, late is not sticky",
			installment: domain.Installment{
				Amount:     decimal.NewFromInt(200000),
				PaidAmount: decimal.NewFromInt(200000),
				DueDate:    asOf.AddDate(0, -2, 0),
				Status:     domain.InstallmentLate,
			},
			want: domain.InstallmentPaid,
		},
		{
			name: "paid above nominal is paid",
			installment: domain.Installment{
				Amount:     decimal.NewFromInt(200000),
				PaidAmount: decimal.NewFromInt(200001),
				DueDate:    asOf.AddDate(0, 1, 0),
			},
			want: domain.InstallmentPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.installment.DeriveStatus(asOf)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInstallment_DaysOverdue(t *testing.T) {
	asOf := time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		installment domain.Installment
		want        int
	}{
		{
			name: "due in the future",
			installment: domain.Installment{
				Amount:  decimal.NewFromInt(100),
				DueDate: asOf.AddDate(0, 0, 3),
			},
			want: 0,
		},
		{
			name: "ten days past due, unpaid",
			installment: domain.Installment{
				Amount:  decimal.NewFromInt(100),
				DueDate: time.Date(2025, 6, 5, 8, 0, 0, 0, time.UTC),
			},
			want: 10,
		},
		{
			name: "past due but settled",
			installment: domain.Installment{
				Amount:     decimal.NewFromInt(100),
				PaidAmount: decimal.NewFromInt(100),
				DueDate:    asOf.AddDate(0, 0, -10),
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.installment.DaysOverdue(asOf))
		})
	}
}

func TestBlock_CanAssign(t *testing.T) {
	max := 2
	capped := domain.Block{BlockID: "blk_1", MaxUnits: &max}
	uncapped := domain.Block{BlockID: "blk_2"}

	assert.True(t, capped.CanAssign(0))
	assert.True(t, capped.CanAssign(1))
	assert.False(t, capped.CanAssign(2))
	assert.False(t, capped.CanAssign(3))
	assert.True(t, uncapped.CanAssign(1000))
}
