// Package admin provides site-wide administration functionality: listing
// users and flipping the is_admin flag. The admin flag is managed only here,
// out of band of registration and login.
package admin

import (
	"context"
	"log/slog"

	"github.com/ecotrackapp/ecotrack/internal/apperror"
	"github.com/ecotrackapp/ecotrack/internal/plugins/auth"
)

// usersPerPage is the number of users shown per admin list page.
const usersPerPage = 50

// AdminService handles user administration.
type AdminService interface {
	// ListUsers returns one page of users plus the total count.
	ListUsers(ctx context.Context, page int) ([]auth.User, int, error)

	// SetAdmin grants or revokes the admin role. Revoking the last
	// remaining admin is refused, otherwise the site would be locked out
	// of its own administration.
	SetAdmin(ctx context.Context, userID string, isAdmin bool) (*auth.User, error)
}

// adminService implements AdminService on top of the auth user repository.
type adminService struct {
	users auth.UserRepository
}

// NewAdminService creates a new admin service.
func NewAdminService(users auth.UserRepository) AdminService {
	return &adminService{users: users}
}

// ListUsers returns a page of users ordered by creation date.
func (s *adminService) ListUsers(ctx context.Context, page int) ([]auth.User, int, error) {
	if page < 1 {
		page = 1
	}
	return s.users.ListUsers(ctx, (page-1)*usersPerPage, usersPerPage)
}

// SetAdmin flips the admin flag for a user. Demotions check the admin count
// first; the count includes the target, so a lone admin demoting themself
// (or anyone racing them to it) is refused with a conflict.
func (s *adminService) SetAdmin(ctx context.Context, userID string, isAdmin bool) (*auth.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && user.IsAdmin {
		admins, err := s.users.CountAdmins(ctx)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, apperror.NewConflict("cannot remove the last admin")
		}
	}

	if err := s.users.UpdateIsAdmin(ctx, userID, isAdmin); err != nil {
		return nil, err
	}
	user.IsAdmin = isAdmin

	slog.Info("admin flag changed",
		slog.String("user_id", userID),
		slog.Bool("is_admin", isAdmin),
	)
	return user, nil
}
