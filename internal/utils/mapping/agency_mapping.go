package mapping

import (
	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	"github.com/sahelimmo/lotissement_app/internal/models"
)

// ToModelAgency converts a domain Agency to a model Agency
func ToModelAgency(d domain.Agency) models.Agency {
	return models.Agency{
		AgencyID:    d.AgencyID,
		Name:        d.Name,
		Description: d.Description,
		Phone:       d.Phone,
		Email:       d.Email,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAgency converts a model Agency to a domain Agency
func ToDomainAgency(m models.Agency) domain.Agency {
	return domain.Agency{
		AgencyID:    m.AgencyID,
		Name:        m.Name,
		Description: m.Description,
		Phone:       m.Phone,
		Email:       m.Email,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelUserAgency converts a domain UserAgency membership to its model
func ToModelUserAgency(d domain.UserAgency) models.UserAgency {
	return models.UserAgency{
		UserID:   d.UserID,
		AgencyID: d.AgencyID,
		Role:     string(d.Role),
		JoinedAt: d.JoinedAt,
	}
}

// ToDomainUserAgency converts a model UserAgency membership to its domain form
func ToDomainUserAgency(m models.UserAgency) domain.UserAgency {
	return domain.UserAgency{
		UserID:   m.UserID,
		AgencyID: m.AgencyID,
		Role:     domain.UserAgencyRole(m.Role),
		JoinedAt: m.JoinedAt,
	}
}
