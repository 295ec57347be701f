package usecase

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/smartspec/build-advisor/internal/domain/entity"
)

// ErrBadResponse model text could not be parsed into a recommendation
var ErrBadResponse = errors.New("bad response")

// Markdown fences the model wraps its JSON in
const (
	fenceJSON  = "```json"
	fencePlain = "```"
)

// StripFences removes every code fence marker from the model text.
func StripFences(raw string) string {
	out := strings.ReplaceAll(raw, fenceJSON, "")
	return strings.ReplaceAll(out, fencePlain, "")
}

// ParseRecommendation turns model text into a recommendation echoing req.
// Every failure wraps ErrBadResponse.
func ParseRecommendation(raw string, req entity.BuildRequest) (*entity.BuildRecommendation, error) {
	cleaned := strings.TrimSpace(StripFences(raw))
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty text", ErrBadResponse)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if top == nil {
		return nil, fmt.Errorf("%w: not an object", ErrBadResponse)
	}
	if err := checkCategoryKeys(top); err != nil {
		return nil, err
	}

	rec := &entity.BuildRecommendation{}
	for _, cat := range entity.Categories {
		value := bytes.TrimSpace(top[cat])
		if len(value) == 0 || value[0] != '{' {
			return nil, fmt.Errorf("%w: %s is not an object", ErrBadResponse, cat)
		}
		var c entity.Component
		if err := json.Unmarshal(value, &c); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadResponse, cat, err)
		}
		rec.SetComponent(cat, c)
	}

	input := req
	rec.Input = &input
	return rec, nil
}

func checkCategoryKeys(top map[string]json.RawMessage) error {
	var missing, extra []string
	for _, cat := range entity.Categories {
		if _, ok := top[cat]; !ok {
			missing = append(missing, cat)
		}
	}
	if len(top) != len(entity.Categories) || len(missing) > 0 {
		known := make(map[string]struct{}, len(entity.Categories))
		for _, cat := range entity.Categories {
			known[cat] = struct{}{}
		}
		for k := range top {
			if _, ok := known[k]; !ok {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		return fmt.Errorf("%w: missing keys %v, unexpected keys %v", ErrBadResponse, missing, extra)
	}
	return nil
}
