package repositories

import (
	"github.com/zatekoja/wastenutrient/internal/domain/entities"
)

// PlantRepository defines read-only access to plant requirement profiles
type PlantRepository interface {
	// Lookup returns the profile for a plant name or an UNKNOWN_PLANT error
	Lookup(name string) (entities.PlantProfile, error)

	// List returns every profile in catalog order
	List() []entities.PlantProfile
}
