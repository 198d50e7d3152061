package dto

import "github.com/dynoinc/respond/internal/incident"

// IncidentAttrs is the JSONB attrs column of the incidents table. It holds the
// parts of the aggregate that are never filtered on.
type IncidentAttrs struct {
	Tags      []string           `json:"tags,omitzero"`
	Roles     []incident.Role    `json:"roles,omitzero"`
	Comments  []incident.Comment `json:"comments,omitzero"`
	CreatedBy incident.User      `json:"created_by,omitzero"`
}

func NewIncidentAttrs(inc *incident.Incident) IncidentAttrs {
	return IncidentAttrs{
		Tags:      inc.Tags,
		Roles:     inc.Roles,
		Comments:  inc.Comments,
		CreatedBy: inc.CreatedBy,
	}
}

func (a IncidentAttrs) Apply(inc *incident.Incident) {
	inc.Tags = a.Tags
	inc.Roles = a.Roles
	inc.Comments = a.Comments
	inc.CreatedBy = a.CreatedBy
}
