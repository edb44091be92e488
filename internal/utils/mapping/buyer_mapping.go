package mapping

import (
	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	"github.com/sahelimmo/lotissement_app/internal/models"
)

// ToModelBuyer converts a domain Buyer to a model Buyer
func ToModelBuyer(d domain.Buyer) models.Buyer {
	return models.Buyer{
		BuyerID:     d.BuyerID,
		AgencyID:    d.AgencyID,
		FullName:    d.FullName,
		Phone:       d.Phone,
		Email:       d.Email,
		NationalID:  d.NationalID,
		Address:     d.Address,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBuyer converts a model Buyer to a domain Buyer
func ToDomainBuyer(m models.Buyer) domain.Buyer {
	return domain.Buyer{
		BuyerID:     m.BuyerID,
		AgencyID:    m.AgencyID,
		FullName:    m.FullName,
		Phone:       m.Phone,
		Email:       m.Email,
		NationalID:  m.NationalID,
		Address:     m.Address,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
