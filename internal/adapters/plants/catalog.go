package plants

import (
	"fmt"

	"github.com/zatekoja/wastenutrient/internal/domain/entities"
	"github.com/zatekoja/wastenutrient/internal/domain/repositories"
	apperrors "github.com/zatekoja/wastenutrient/pkg/errors"
)

// Catalog is an immutable, in-memory plant requirement table. It is safe for
// concurrent reads.
type Catalog struct {
	profiles []entities.PlantProfile
	index    map[string]int
}

var _ repositories.PlantRepository = (*Catalog)(nil)

// NewCatalog validates profiles and builds a catalog preserving their order.
func NewCatalog(profiles []entities.PlantProfile) (*Catalog, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("plant catalog is empty")
	}

	c := &Catalog{
		profiles: make([]entities.PlantProfile, 0, len(profiles)),
		index:    make(map[string]int, len(profiles)),
	}
	for _, p := range profiles {
		if err := validateProfile(p); err != nil {
			return nil, err
		}
		key := entities.NormalizePlantName(string(p.Name))
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("duplicate plant %q", p.Name)
		}
		c.index[key] = len(c.profiles)
		c.profiles = append(c.profiles, p.Clone())
	}
	return c, nil
}

// DefaultCatalog returns the built-in five-plant catalog.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultProfiles())
	if err != nil {
		panic(fmt.Sprintf("built-in plant catalog is invalid: %v", err))
	}
	return c
}

// Lookup finds a profile by name, ignoring case, spaces, dashes and underscores.
func (c *Catalog) Lookup(name string) (entities.PlantProfile, error) {
	i, ok := c.index[entities.NormalizePlantName(name)]
	if !ok {
		return entities.PlantProfile{}, apperrors.NewUnknownPlantError(name)
	}
	return c.profiles[i].Clone(), nil
}

// List returns copies of every profile in catalog order.
func (c *Catalog) List() []entities.PlantProfile {
	out := make([]entities.PlantProfile, len(c.profiles))
	for i, p := range c.profiles {
		out[i] = p.Clone()
	}
	return out
}

func validateProfile(p entities.PlantProfile) error {
	if p.Name == "" {
		return fmt.Errorf("plant profile without a name")
	}
	for _, n := range entities.PrimaryNutrients() {
		r, ok := p.NutrientRanges[n]
		if !ok {
			return fmt.Errorf("plant %q: missing %s range", p.Name, n)
		}
		if err := validateRange(r); err != nil {
			return fmt.Errorf("plant %q: %s %w", p.Name, n, err)
		}
	}
	if err := validateRange(p.PHRange); err != nil {
		return fmt.Errorf("plant %q: pH %w", p.Name, err)
	}
	if err := validateRange(p.OptimalCNRatio); err != nil {
		return fmt.Errorf("plant %q: C:N ratio %w", p.Name, err)
	}
	return nil
}

func validateRange(r entities.Range) error {
	if r.Min < 0 || r.Min > r.Optimal || r.Optimal > r.Max || r.Min == r.Max {
		return fmt.Errorf("range must satisfy 0 <= min <= optimal <= max with min < max, got %v/%v/%v", r.Min, r.Optimal, r.Max)
	}
	return nil
}
