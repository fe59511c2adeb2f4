package plants

import "github.com/zatekoja/wastenutrient/internal/domain/entities"

func defaultProfiles() []entities.PlantProfile {
	return []entities.PlantProfile{
		{
			Name:        entities.PlantTomatoes,
			DisplayName: "Tomatoes",
			Description: "Heavy feeders that need high nitrogen during vegetative growth and more phosphorus during fruiting.",
			NutrientRanges: map[entities.Nutrient]entities.Range{
				entities.NutrientNitrogen:   {Min: 1.5, Max: 3.5, Optimal: 2.5},
				entities.NutrientPhosphorus: {Min: 0.3, Max: 0.8, Optimal: 0.5},
				entities.NutrientPotassium:  {Min: 1.2, Max: 2.5, Optimal: 1.8},
			},
			PHRange:        entities.Range{Min: 6.0, Max: 6.8, Optimal: 6.4},
			OptimalCNRatio: entities.Range{Min: 20, Max: 30, Optimal: 25},
		},
		{
			Name:        entities.PlantLeafyGreens,
			DisplayName: "Leafy Greens",
			Description: "Need high nitrogen for leaf development. Great for nitrogen-rich waste materials.",
			NutrientRanges: map[entities.Nutrient]entities.Range{
				entities.NutrientNitrogen:   {Min: 2.0, Max: 4.0, Optimal: 3.0},
				entities.NutrientPhosphorus: {Min: 0.2, Max: 0.5, Optimal: 0.3},
				entities.NutrientPotassium:  {Min: 1.0, Max: 2.0, Optimal: 1.5},
			},
			PHRange:        entities.Range{Min: 6.0, Max: 7.0, Optimal: 6.5},
			OptimalCNRatio: entities.Range{Min: 15, Max: 25, Optimal: 20},
		},
		{
			Name:        entities.PlantRootVegetables,
			DisplayName: "Root Vegetables",
			Description: "Require balanced nutrients with higher potassium for root development.",
			NutrientRanges: map[entities.Nutrient]entities.Range{
				entities.NutrientNitrogen:   {Min: 1.0, Max: 2.0, Optimal: 1.5},
				entities.NutrientPhosphorus: {Min: 0.4, Max: 0.9, Optimal: 0.6},
				entities.NutrientPotassium:  {Min: 1.5, Max: 3.0, Optimal: 2.0},
			},
			PHRange:        entities.Range{Min: 5.8, Max: 6.8, Optimal: 6.3},
			OptimalCNRatio: entities.Range{Min: 20, Max: 30, Optimal: 25},
		},
		{
			Name:        entities.PlantFruitTrees,
			DisplayName: "Fruit Trees",
			Description: "Need balanced nutrition throughout the year with emphasis on phosphorus and potassium for fruit production.",
			NutrientRanges: map[entities.Nutrient]entities.Range{
				entities.NutrientNitrogen:   {Min: 1.2, Max: 2.5, Optimal: 1.8},
				entities.NutrientPhosphorus: {Min: 0.3, Max: 0.7, Optimal: 0.5},
				entities.NutrientPotassium:  {Min: 1.4, Max: 2.8, Optimal: 2.0},
			},
			PHRange:        entities.Range{Min: 6.0, Max: 7.0, Optimal: 6.5},
			OptimalCNRatio: entities.Range{Min: 25, Max: 35, Optimal: 30},
		},
		{
			Name:        entities.PlantGrains,
			DisplayName: "Grains",
			Description: "Require moderate nutrients with consistent nitrogen availability throughout growth.",
			NutrientRanges: map[entities.Nutrient]entities.Range{
				entities.NutrientNitrogen:   {Min: 1.0, Max: 2.2, Optimal: 1.6},
				entities.NutrientPhosphorus: {Min: 0.2, Max: 0.5, Optimal: 0.3},
				entities.NutrientPotassium:  {Min: 1.0, Max: 2.0, Optimal: 1.5},
			},
			PHRange:        entities.Range{Min: 6.0, Max: 7.5, Optimal: 6.5},
			OptimalCNRatio: entities.Range{Min: 20, Max: 30, Optimal: 25},
		},
	}
}
