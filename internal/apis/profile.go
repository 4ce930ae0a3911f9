// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package apis

import (
	"context"

	"github.com/bonitasoft/bonita-engine-sub001/internal/apierr"
)

// Profile is a named set of permissions.
type Profile struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"isDefault"`
}

var defaultProfiles = []Profile{
	{ID: 1, Name: "User", Description: "Work on tasks and start processes", Default: true},
	{ID: 2, Name: "Administrator", Description: "Administer the tenant", Default: true},
	{ID: 3, Name: "Process manager", Description: "Monitor processes and cases", Default: true},
}

// ProfileAPI reads the tenant's profiles.
type ProfileAPI struct{}

// GetProfile stays available while the tenant is paused so administrators
// can still be resolved.
func (a *ProfileAPI) GetProfile(ctx context.Context, name string) (Profile, error) {
	if _, err := boundTenant(ctx); err != nil {
		return Profile{}, err
	}
	for _, p := range defaultProfiles {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, apierr.Business("profile.not_found", "profile %s not found", name)
}

func (a *ProfileAPI) ListProfiles(ctx context.Context) ([]Profile, error) {
	if _, err := boundTenant(ctx); err != nil {
		return nil, err
	}
	return append([]Profile(nil), defaultProfiles...), nil
}

// GetProfileByID is deprecated; use GetProfile.
func (a *ProfileAPI) GetProfileByID(ctx context.Context, id int64) (Profile, error) {
	if _, err := boundTenant(ctx); err != nil {
		return Profile{}, err
	}
	for _, p := range defaultProfiles {
		if p.ID == id {
			return p, nil
		}
	}
	return Profile{}, apierr.Business("profile.not_found", "profile %d not found", id)
}
