package domain

import "github.com/hilthontt/encore/internal/domain/filter"

// QueueQuery returns the song_requests query the caller may see: the whole
// queue by rank for staff, the participant's own requests newest first otherwise.
func QueueQuery(roles Roles, uid string) (filter.DynamicFilter, error) {
	switch {
	case roles.IsStaff():
		return filter.DynamicFilter{
			Sort: []filter.Sort{
				{ColID: "Order", Sort: filter.SortAsc},
				{ColID: "SubmittedAt", Sort: filter.SortAsc},
			},
		}, nil
	case roles.IsParticipant:
		if uid == "" {
			return filter.DynamicFilter{}, ErrUnauthenticated
		}
		return filter.DynamicFilter{
			Filter: map[string]filter.Filter{
				"ParticipantID": filter.Equals(uid),
			},
			Sort: []filter.Sort{
				{ColID: "SubmittedAt", Sort: filter.SortDesc},
			},
		}, nil
	}

	return filter.DynamicFilter{}, ErrNoRole
}
