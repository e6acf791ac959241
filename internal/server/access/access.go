// Package access decides, for a viewer and a news record, whether the record
// may be seen or changed. It is the single authorization boundary: services
// must consult it before surfacing content or calling a mutating repository
// method. A nil viewer means the request is anonymous.
package access

import "github.com/dpavlenko/newsboard/internal/server/models"

// CanView reports whether viewer may read n. Public records are readable by
// anyone, including anonymous viewers; private records only by their owner.
func CanView(viewer *models.User, n *models.News) bool {
	if n == nil {
		return false
	}
	if !n.Private {
		return true
	}
	return viewer != nil && viewer.ID == n.OwnerID
}

// CanMutate reports whether viewer may edit or delete n. Only the owner may,
// regardless of the privacy flag.
func CanMutate(viewer *models.User, n *models.News) bool {
	if viewer == nil || n == nil {
		return false
	}
	return viewer.ID == n.OwnerID
}
