package plants

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/zatekoja/wastenutrient/internal/domain/entities"
)

type catalogFile struct {
	Plants []plantEntry `toml:"plant"`
}

type plantEntry struct {
	Name        string         `toml:"name"`
	DisplayName string         `toml:"display_name"`
	Description string         `toml:"description"`
	Nitrogen    entities.Range `toml:"nitrogen"`
	Phosphorus  entities.Range `toml:"phosphorus"`
	Potassium   entities.Range `toml:"potassium"`
	PH          entities.Range `toml:"ph"`
	CNRatio     entities.Range `toml:"cn_ratio"`
}

// LoadCatalog reads a TOML catalog from path. An empty path yields the
// built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plant catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes TOML catalog content.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse plant catalog: %w", err)
	}

	profiles := make([]entities.PlantProfile, 0, len(file.Plants))
	for _, p := range file.Plants {
		display := p.DisplayName
		if display == "" {
			display = p.Name
		}
		profiles = append(profiles, entities.PlantProfile{
			Name:        entities.PlantName(p.Name),
			DisplayName: display,
			Description: p.Description,
			NutrientRanges: map[entities.Nutrient]entities.Range{
				entities.NutrientNitrogen:   p.Nitrogen,
				entities.NutrientPhosphorus: p.Phosphorus,
				entities.NutrientPotassium:  p.Potassium,
			},
			PHRange:        p.PH,
			OptimalCNRatio: p.CNRatio,
		})
	}

	c, err := NewCatalog(profiles)
	if err != nil {
		return nil, fmt.Errorf("invalid plant catalog: %w", err)
	}
	return c, nil
}
