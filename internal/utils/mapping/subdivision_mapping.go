package mapping

import (
	"github.com/sahelimmo/lotissement_app/internal/core/domain"
	"github.com/sahelimmo/lotissement_app/internal/models"
)

// ToModelSubdivision converts a domain Subdivision to a model Subdivision
func ToModelSubdivision(d domain.Subdivision) models.Subdivision {
	return models.Subdivision{
		SubdivisionID: d.SubdivisionID,
		AgencyID:      d.AgencyID,
		Name:          d.Name,
		Location:      d.Location,
		Description:   d.Description,
		TotalArea:     d.TotalArea,
		IsActive:      d.IsActive,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainSubdivision converts a model Subdivision to a domain Subdivision
func ToDomainSubdivision(m models.Subdivision) domain.Subdivision {
	return domain.Subdivision{
		SubdivisionID: m.SubdivisionID,
		AgencyID:      m.AgencyID,
		Name:          m.Name,
		Location:      m.Location,
		Description:   m.Description,
		TotalArea:     m.TotalArea,
		IsActive:      m.IsActive,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelBlock converts a domain Block to a model Block
func ToModelBlock(d domain.Block) models.Block {
	return models.Block{
		BlockID:       d.BlockID,
		SubdivisionID: d.SubdivisionID,
		Name:          d.Name,
		MaxUnits:      d.MaxUnits,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBlock converts a model Block to a domain Block
func ToDomainBlock(m models.Block) domain.Block {
	return domain.Block{
		BlockID:       m.BlockID,
		SubdivisionID: m.SubdivisionID,
		Name:          m.Name,
		MaxUnits:      m.MaxUnits,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}
