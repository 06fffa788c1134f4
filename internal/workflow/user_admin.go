package workflow

import (
	"cleancity/backend/internal/apperr"
	"cleancity/backend/internal/models"
)

const userSearchLimit = 20

// SearchUsers matches accounts by name or email, optionally narrowed to one
// role. Admins use it to pick a worker for assignment.
func (s *Service) SearchUsers(query string, roleFilter models.Role) ([]models.User, error) {
	if query == "" || len(query) > 100 {
		return nil, apperr.ErrValidation
	}
	if roleFilter != "" && !roleFilter.Valid() {
		return nil, apperr.ErrValidation
	}
	return s.Storage.SearchUsers(query, roleFilter, userSearchLimit)
}

// ChangeUserRole sets another account's role. Callers cannot change their own
// role, and the target must exist.
func (s *Service) ChangeUserRole(caller Caller, targetID string, role models.Role) error {
	if !role.Valid() {
		return apperr.ErrValidation
	}
	if caller.ID == targetID {
		return apperr.ErrValidation
	}

	target, err := s.Storage.GetUserByID(targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperr.ErrNotFound
	}

	return s.Storage.UpdateUserRole(targetID, role)
}
