package mapping

import (
	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	"github.com/sahelimmo/lotissement_app/internal/models"
)

// ToModelUnit converts a domain Unit to a model Unit
func ToModelUnit(d domain.Unit) models.Unit {
	return models.Unit{
		UnitID:         d.UnitID,
		AgencyID:       d.AgencyID,
		SubdivisionID:  d.SubdivisionID,
		BlockID:        d.BlockID,
		Reference:      d.Reference,
		Area:           d.Area,
		ListedPrice:    d.ListedPrice,
		Status:         string(d.Status),
		AssignedUserID: d.AssignedUserID,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainUnit converts a model Unit to a domain Unit
func ToDomainUnit(m models.Unit) domain.Unit {
	return domain.Unit{
		UnitID:         m.UnitID,
		AgencyID:       m.AgencyID,
		SubdivisionID:  m.SubdivisionID,
		BlockID:        m.BlockID,
		Reference:      m.Reference,
		Area:           m.Area,
		ListedPrice:    m.ListedPrice,
		Status:         domain.UnitStatus(m.Status),
		AssignedUserID: m.AssignedUserID,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}
