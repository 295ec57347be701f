package usecase

import (
	"strings"
	"testing"

	"github.com/smartspec/build-advisor/internal/domain/entity"
)

func TestBuildPrompt_ContainsEveryRequestField(t *testing.T) {
	req := entity.BuildRequest{
		Budget:            2750.5,
		MinFps:            144,
		GamesList:         []string{"Marvel Rivals", "Fortnite"},
		DisplayResolution: "1440p",
		GraphicalQuality:  "Ray-tracing",
		PreOwnedHardware: []entity.PreOwnedPart{
			{Type: "CPU", Name: "Intel Core-i7"},
			{Type: "GPU", Name: "RTX 3070"},
		},
	}

	prompt := BuildPrompt(req)

	for _, want := range []string{
		`"budget":2750.5`,
		`"minFps":144`,
		`"gamesList":["Marvel Rivals","Fortnite"]`,
		`"displayResolution":"1440p"`,
		`"graphicalQuality":"Ray-tracing"`,
		`{"type":"CPU","name":"Intel Core-i7"}`,
		`{"type":"GPU","name":"RTX 3070"}`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt is missing %s", want)
		}
	}
}

func TestBuildPrompt_EmptyCollectionsStillSerialized(t *testing.T) {
	prompt := BuildPrompt(entity.BuildRequest{Budget: 500})
	if !strings.Contains(prompt, `"gamesList":[]`) {
		t.Errorf("expected empty games list in prompt")
	}
	if !strings.Contains(prompt, `"preOwnedHardware":[]`) {
		t.Errorf("expected empty hardware list in prompt")
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	req := entity.BuildRequest{Budget: 1000, GamesList: []string{"Fortnite"}, PreOwnedHardware: []entity.PreOwnedPart{}}
	if BuildPrompt(req) != BuildPrompt(req) {
		t.Fatalf("prompt should be deterministic")
	}
}

func TestBuildPrompt_RulesAndTemplate(t *testing.T) {
	prompt := BuildPrompt(entity.BuildRequest{})

	for _, cat := range entity.Categories {
		if !strings.Contains(prompt, `"`+cat+`"`) {
			t.Errorf("template is missing category %s", cat)
		}
	}
	for _, rule := range []string{
		"must only contain the given format no other text",
		"Canadian Dollars",
		"you MUST use them",
		"best build possible with the given budget",
		"justification",
		"pre-owned parts",
	} {
		if !strings.Contains(prompt, rule) {
			t.Errorf("prompt is missing rule %q", rule)
		}
	}
}

func TestBuildTemplate_IsValidRecommendation(t *testing.T) {
	rec, err := ParseRecommendation(buildTemplate, entity.BuildRequest{})
	if err != nil {
		t.Fatalf("template should parse as a recommendation: %v", err)
	}
	if rec.GPUs.Name != "NVIDIA GeForce RTX 4090" {
		t.Fatalf("unexpected GPU: %+v", rec.GPUs)
	}
}
