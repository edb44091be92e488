package mapping

import (
	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	"github.com/sahelimmo/lotissement_app/internal/models"
)

// ToModelSale converts a domain Sale to a model Sale
func ToModelSale(d domain.Sale) models.Sale {
	return models.Sale{
		SaleID:              d.SaleID,
		AgencyID:            d.AgencyID,
		UnitID:              d.UnitID,
		BuyerID:             d.BuyerID,
		TotalPrice:          d.TotalPrice,
		PaymentType:         string(d.PaymentType),
		SaleDate:            d.SaleDate,
		Status:              string(d.Status),
		DownPayment:         d.DownPayment,
		InstallmentCount:    d.InstallmentCount,
		MonthlyAmount:       d.MonthlyAmount,
		AcceptedOutstanding: d.AcceptedOutstanding,
		CancelledAt:         d.CancelledAt,
		CompletedAt:         d.CompletedAt,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainSale converts a model Sale to a domain Sale
func ToDomainSale(m models.Sale) domain.Sale {
	return domain.Sale{
		SaleID:              m.SaleID,
		AgencyID:            m.AgencyID,
		UnitID:              m.UnitID,
		BuyerID:             m.BuyerID,
		TotalPrice:          m.TotalPrice,
		PaymentType:         domain.PaymentType(m.PaymentType),
		SaleDate:            m.SaleDate,
		Status:              domain.SaleStatus(m.Status),
		DownPayment:         m.DownPayment,
		InstallmentCount:    m.InstallmentCount,
		MonthlyAmount:       m.MonthlyAmount,
		AcceptedOutstanding: m.AcceptedOutstanding,
		CancelledAt:         m.CancelledAt,
		CompletedAt:         m.CompletedAt,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelInstallment converts a domain Installment to a model Installment
func ToModelInstallment(d domain.Installment) models.Installment {
	return models.Installment{
		InstallmentID: d.InstallmentID,
		SaleID:        d.SaleID,
		Sequence:      d.Sequence,
		DueDate:       d.DueDate,
		Amount:        d.Amount,
		Status:        string(d.Status),
		PaidAmount:    d.PaidAmount,
		PaidDate:      d.PaidDate,
		PaymentMethod: d.PaymentMethod,
		ReceiptNumber: d.ReceiptNumber,
		Version:       d.Version,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInstallment converts a model Installment to a domain Installment
func ToDomainInstallment(m models.Installment) domain.Installment {
	return domain.Installment{
		InstallmentID: m.InstallmentID,
		SaleID:        m.SaleID,
		Sequence:      m.Sequence,
		DueDate:       m.DueDate,
		Amount:        m.Amount,
		Status:        domain.InstallmentStatus(m.Status),
		PaidAmount:    m.PaidAmount,
		PaidDate:      m.PaidDate,
		PaymentMethod: m.PaymentMethod,
		ReceiptNumber: m.ReceiptNumber,
		Version:       m.Version,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainInstallmentSlice converts model Installments to domain Installments
func ToDomainInstallmentSlice(ms []models.Installment) []domain.Installment {
	ds := make([]domain.Installment, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainInstallment(m)
	}
	return ds
}

// ToModelPayment converts a domain Payment to a model Payment
func ToModelPayment(d domain.Payment) models.Payment {
	return models.Payment{
		PaymentID:         d.PaymentID,
		InstallmentID:     d.InstallmentID,
		SaleID:            d.SaleID,
		Amount:            d.Amount,
		PaidDate:          d.PaidDate,
		Method:            d.Method,
		ReceiptNumber:     d.ReceiptNumber,
		ExternalReference: d.ExternalReference,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPayment converts a model Payment to a domain Payment
func ToDomainPayment(m models.Payment) domain.Payment {
	return domain.Payment{
		PaymentID:         m.PaymentID,
		InstallmentID:     m.InstallmentID,
		SaleID:            m.SaleID,
		Amount:            m.Amount,
		PaidDate:          m.PaidDate,
		Method:            m.Method,
		ReceiptNumber:     m.ReceiptNumber,
		ExternalReference: m.ExternalReference,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPaymentSlice converts model Payments to domain Payments
func ToDomainPaymentSlice(ms []models.Payment) []domain.Payment {
	ds := make([]domain.Payment, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPayment(m)
	}
	return ds
}
