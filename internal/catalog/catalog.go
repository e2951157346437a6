// Package catalog defines the garment catalog the fitting room browses:
// an ordered list of items, each with an ordered list of scenes used to
// prompt the image-generation service. The catalog is read-only to the
// rest of the system.
package catalog

import "fmt"

// Scene is one visual backdrop/style a garment can be rendered in.
type Scene struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

// Item is one garment in the catalog.
type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	GarmentURL  string  `json:"garmentUrl"`
	Scenes      []Scene `json:"scenes"`
}

// Validate checks that an item is usable by the fitting room.
func (it Item) Validate() error {
	if it.ID == "" {
		return fmt.Errorf("item has no id")
	}
	if it.GarmentURL == "" {
		return fmt.Errorf("item %s has no garment image", it.ID)
	}
	if len(it.Scenes) == 0 {
		return fmt.Errorf("item %s has no scenes", it.ID)
	}
	for _, s := range it.Scenes {
		if s.ID == "" || s.Prompt == "" {
			return fmt.Errorf("item %s has an incomplete scene", it.ID)
		}
	}
	return nil
}

// Validate checks every item and that item IDs are unique.
func Validate(items []Item) error {
	if len(items) == 0 {
		return fmt.Errorf("catalog is empty")
	}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return err
		}
		if seen[it.ID] {
			return fmt.Errorf("duplicate item id %s", it.ID)
		}
		seen[it.ID] = true
	}
	return nil
}

// defaultScenes are the four backdrops every built-in item is rendered in.
func defaultScenes(itemID string) []Scene {
	return []Scene{
		{ID: itemID + "-studio", Label: "Studio", Prompt: "clean studio backdrop, soft diffused lighting, editorial fashion photograph"},
		{ID: itemID + "-street", Label: "Street", Prompt: "city street at golden hour, candid street-style photograph, shallow depth of field"},
		{ID: itemID + "-coast", Label: "Coast", Prompt: "seaside promenade, bright daylight, relaxed resort-wear photograph"},
		{ID: itemID + "-evening", Label: "Evening", Prompt: "upscale evening venue, warm ambient light, elegant full-length photograph"},
	}
}

// Default returns the built-in catalog used when the store is empty.
func Default() []Item {
	return []Item{
		{
			ID:          "denim-jacket",
			Name:        "Indigo Denim Jacket",
			Description: "Classic-cut denim jacket in deep indigo wash.",
			GarmentURL:  "https://cdn.specchio.app/garments/denim-jacket.jpg",
			Scenes:      defaultScenes("denim-jacket"),
		},
		{
			ID:          "linen-shirt",
			Name:        "Sand Linen Shirt",
			Description: "Loose-fit linen shirt in warm sand.",
			GarmentURL:  "https://cdn.specchio.app/garments/linen-shirt.jpg",
			Scenes:      defaultScenes("linen-shirt"),
		},
		{
			ID:          "wool-coat",
			Name:        "Charcoal Wool Coat",
			Description: "Mid-length wool coat in charcoal grey.",
			GarmentURL:  "https://cdn.specchio.app/garments/wool-coat.jpg",
			Scenes:      defaultScenes("wool-coat"),
		},
		{
			ID:          "silk-dress",
			Name:        "Emerald Silk Dress",
			Description: "Flowing silk dress in emerald green.",
			GarmentURL:  "https://cdn.specchio.app/garments/silk-dress.jpg",
			Scenes:      defaultScenes("silk-dress"),
		},
	}
}
