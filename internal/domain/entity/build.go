package entity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/smartspec/build-advisor/internal/domain/constants"
)

// Component categories in the order the prompt template lists them.
const (
	CategoryCPU         = "CPUs"
	CategoryGPU         = "GPUs"
	CategoryRAM         = "RAM"
	CategoryMotherboard = "Motherboards"
	CategoryStorage     = "Storage"
	CategoryPowerSupply = "Power_Supply"
	CategoryCase        = "Case"
	CategoryCooling     = "Cooling"
)

// Categories is the fixed set of top-level keys of a recommendation.
var Categories = []string{
	CategoryCPU,
	CategoryGPU,
	CategoryRAM,
	CategoryMotherboard,
	CategoryStorage,
	CategoryPowerSupply,
	CategoryCase,
	CategoryCooling,
}

// ErrInvalidRequest build request does not have the expected shape
var ErrInvalidRequest = errors.New("invalid build request")

// PreOwnedPart a part the user already owns
type PreOwnedPart struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// BuildRequest user requirements for a PC build
type BuildRequest struct {
	Budget            float64        `json:"budget"` // CAD
	MinFps            float64        `json:"minFps"`
	GamesList         []string       `json:"gamesList"`
	DisplayResolution string         `json:"displayResolution"`
	GraphicalQuality  string         `json:"graphicalQuality"`
	PreOwnedHardware  []PreOwnedPart `json:"preOwnedHardware"`
}

// Validate checks the request shape. Values themselves are not judged.
func (r BuildRequest) Validate() error {
	if r.GamesList == nil {
		return fmt.Errorf("%w: gamesList is required", ErrInvalidRequest)
	}
	if r.PreOwnedHardware == nil {
		return fmt.Errorf("%w: preOwnedHardware is required", ErrInvalidRequest)
	}
	for i, part := range r.PreOwnedHardware {
		if strings.TrimSpace(part.Type) == "" || strings.TrimSpace(part.Name) == "" {
			return fmt.Errorf("%w: preOwnedHardware[%d] needs type and name", ErrInvalidRequest, i)
		}
	}
	return nil
}

// Component a single recommended part
type Component struct {
	Name          string `json:"name"`
	PriceCAD      string `json:"price_CAD"`
	Justification string `json:"Justification"`
}

// BuildRecommendation model output plus the request it answers
type BuildRecommendation struct {
	CPUs         Component     `json:"CPUs"`
	GPUs         Component     `json:"GPUs"`
	RAM          Component     `json:"RAM"`
	Motherboards Component     `json:"Motherboards"`
	Storage      Component     `json:"Storage"`
	PowerSupply  Component     `json:"Power_Supply"`
	Case         Component     `json:"Case"`
	Cooling      Component     `json:"Cooling"`
	Input        *BuildRequest `json:"input,omitempty"`
}

// CategoryComponent pairs a category key with its part
type CategoryComponent struct {
	Category  string
	Component Component
}

// Component returns the part for a category key.
func (b *BuildRecommendation) Component(category string) (Component, bool) {
	switch category {
	case CategoryCPU:
		return b.CPUs, true
	case CategoryGPU:
		return b.GPUs, true
	case CategoryRAM:
		return b.RAM, true
	case CategoryMotherboard:
		return b.Motherboards, true
	case CategoryStorage:
		return b.Storage, true
	case CategoryPowerSupply:
		return b.PowerSupply, true
	case CategoryCase:
		return b.Case, true
	case CategoryCooling:
		return b.Cooling, true
	}
	return Component{}, false
}

// SetComponent stores the part for a category key.
func (b *BuildRecommendation) SetComponent(category string, c Component) bool {
	switch category {
	case CategoryCPU:
		b.CPUs = c
	case CategoryGPU:
		b.GPUs = c
	case CategoryRAM:
		b.RAM = c
	case CategoryMotherboard:
		b.Motherboards = c
	case CategoryStorage:
		b.Storage = c
	case CategoryPowerSupply:
		b.PowerSupply = c
	case CategoryCase:
		b.Case = c
	case CategoryCooling:
		b.Cooling = c
	default:
		return false
	}
	return true
}

// Components returns every category with its part in template order.
func (b *BuildRecommendation) Components() []CategoryComponent {
	out := make([]CategoryComponent, 0, len(Categories))
	for _, cat := range Categories {
		c, _ := b.Component(cat)
		out = append(out, CategoryComponent{Category: cat, Component: c})
	}
	return out
}

// TotalCAD sums the parsable prices. Unparsable prices are skipped and counted.
func (b *BuildRecommendation) TotalCAD() (total float64, skipped int) {
	for _, cc := range b.Components() {
		price, ok := ParsePriceCAD(cc.Component.PriceCAD)
		if !ok {
			skipped++
			continue
		}
		total += price
	}
	return total, skipped
}

// ParsePriceCAD parses prices such as "$1,500", "C$433" or "180 CAD".
func ParsePriceCAD(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimSuffix(s, "CAD"))
	for _, prefix := range []string{"CA$", "C$", "$"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimPrefix(s, prefix)
			break
		}
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// ErrorResult payload returned instead of a recommendation
type ErrorResult struct {
	Error string `json:"error"`
}

// BadResponse is the sentinel returned when model output cannot be parsed.
var BadResponse = ErrorResult{Error: constants.BadResponseMessage}

// SavedBuild recommendation kept in build history
type SavedBuild struct {
	ID        string              `json:"buildid"`
	UserID    string              `json:"userid"`
	Build     BuildRecommendation `json:"buildjson"`
	CreatedAt time.Time           `json:"created_at"`
}
