package services

import "github.com/mockview-ai/backend/apperrors"

// assertOwnership is the access guard every mutating operation runs through.
// It is always applied after the existence check, so a confirmed resource
// owned by someone else yields Forbidden rather than NotFound.
func assertOwnership(resourceOwnerID, requesterID string) error {
	if resourceOwnerID != requesterID {
		return apperrors.Forbidden("you do not have access to this resource")
	}
	return nil
}
