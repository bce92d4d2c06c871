package users

import (
	"context"
	"errors"
	"strings"

	"github.com/qehclinic/portal-backend/internal/models"
	"github.com/qehclinic/portal-backend/internal/roles"
)

var ErrUserNotFound = errors.New("user not found")

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// UpsertFromClaims creates or updates a user using OIDC claims. The role
// claim resolves through the standard fallback (anything broken -> public).
func (s *Service) UpsertFromClaims(ctx context.Context, claims map[string]interface{}) (*models.User, error) {
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	if sub == "" {
		return nil, nil
	}
	u := &models.User{
		Sub:   sub,
		Email: email,
		Name:  name,
		Role:  roles.FromClaims(claims).String(),
	}
	return s.repo.UpsertBySub(ctx, u)
}

func (s *Service) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	return s.repo.GetBySub(ctx, sub)
}

// AssignRole sets the role for the user with the given email. Validated
// against the known role set; callers pass "master" or "officer",
// "public" strips elevated access. Takes effect on the user's next sign-in.
func (s *Service) AssignRole(ctx context.Context, email, role string) error {
	r := roles.Parse(role)
	if r == roles.Public && strings.ToLower(strings.TrimSpace(role)) != "public" {
		return errors.New("unknown role: " + role)
	}
	return s.repo.SetRoleByEmail(ctx, email, r.String())
}
