package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FullNameFromIdentity derives a display name from the token claims: first
// plus last name when either is present, then email, then the bare user id.
func FullNameFromIdentity(identity Identity) string {
	name := strings.TrimSpace(strings.TrimSpace(identity.FirstName) + " " + strings.TrimSpace(identity.LastName))
	if name != "" {
		return name
	}
	if identity.Email != "" {
		return identity.Email
	}
	return identity.ID
}

// NormalizeRole maps an arbitrary role claim onto the known roles, falling
// back to kasir for anything unrecognized.
func NormalizeRole(raw string) ProfileRole {
	switch ProfileRole(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleKasir:
		return RoleKasir
	case RoleStafDapur:
		return RoleStafDapur
	default:
		return defaultRole
	}
}

type ProfileService interface {
	// UpsertProfile creates or refreshes the local profile row for an
	// authenticated identity and returns the stored profile.
	UpsertProfile(ctx context.Context, identity Identity) (*Profile, error)
	GetProfile(ctx context.Context, id string) (*Profile, error)
}

type profileService struct {
	pool     *pgxpool.Pool
	reporter *IssueReporter
}

func NewProfileService(pool *pgxpool.Pool, reporter *IssueReporter) ProfileService {
	return &profileService{pool: pool, reporter: reporter}
}

func (s *profileService) UpsertProfile(ctx context.Context, identity Identity) (*Profile, error) {
	if identity.ID == "" {
		return nil, errors.New("identity has no id")
	}

	fullName := FullNameFromIdentity(identity)
	role := NormalizeRole(identity.Role)
	var email *string
	if identity.Email != "" {
		email = &identity.Email
	}

	var profile Profile
	err := s.pool.QueryRow(ctx, `
		INSERT INTO profiles (id, email, full_name, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email, full_name = EXCLUDED.full_name, updated_at = now()
		RETURNING id, email, full_name, role, created_at, updated_at
	`, identity.ID, email, fullName, role).Scan(
		&profile.ID, &profile.Email, &profile.FullName, &profile.Role,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if IsMissingTable(err) {
			s.reporter.Report(err, "profiles:upsert")
			return &Profile{ID: identity.ID, Email: email, FullName: fullName, Role: role}, nil
		}
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return &profile, nil
}

func (s *profileService) GetProfile(ctx context.Context, id string) (*Profile, error) {
	var profile Profile
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, full_name, role, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`, id).Scan(
		&profile.ID, &profile.Email, &profile.FullName, &profile.Role,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}
