package dto

import (
	"time"

	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApplyPaymentRequest defines the data for recording a payment against an installment.
type ApplyPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaidDate      time.Time       `json:"paidDate" binding:"required"`
	Method        string          `json:"method" binding:"required"`
	ReceiptNumber string          `json:"receiptNumber"`
}

// SettlementNotification is the payload the payment collaborator posts to the
// settlement webhook. ExternalReference is the collaborator's settlement id;
// re-delivery of an already recorded reference is absorbed without effect.
type SettlementNotification struct {
	ExternalReference string          `json:"externalReference" binding:"required"`
	InstallmentID     string          `json:"installmentID" binding:"required"`
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	PaidDate          time.Time       `json:"paidDate" binding:"required"`
	Method            string          `json:"method" binding:"required"`
	ReceiptNumber     string          `json:"receiptNumber"`
}

// PaymentResponse defines the data returned for a recorded payment.
type PaymentResponse struct {
	PaymentID         string          `json:"paymentID"`
	InstallmentID     string          `json:"installmentID"`
	SaleID            string          `json:"saleID"`
	Amount            decimal.Decimal `json:"amount"`
	PaidDate          time.Time       `json:"paidDate"`
	Method            string          `json:"method"`
	ReceiptNumber     string          `json:"receiptNumber"`
	ExternalReference *string         `json:"externalReference,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// ToPaymentResponse converts a domain.Payment to PaymentResponse DTO.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:         p.PaymentID,
		InstallmentID:     p.InstallmentID,
		SaleID:            p.SaleID,
		Amount:            p.Amount,
		PaidDate:          p.PaidDate,
		Method:            p.Method,
		ReceiptNumber:     p.ReceiptNumber,
		ExternalReference: p.ExternalReference,
		CreatedAt:         p.CreatedAt,
	}
}

// ToPaymentResponses converts a slice of domain.Payment to DTOs.
func ToPaymentResponses(ps []domain.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(ps))
	for i, p := range ps {
		responses[i] = ToPaymentResponse(&p)
	}
	return responses
}
