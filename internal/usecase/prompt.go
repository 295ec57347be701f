package usecase

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/smartspec/build-advisor/internal/domain/entity"
)

// buildTemplate is a filled example, not a schema. The model infers the key set
// from it, so keys and nesting must stay as they are.
const buildTemplate = `
    {
    "CPUs": 
        {
          "name": "Intel Core i9-14900K",
          "price_CAD": "$433",
          "Justification": "Based on the budget of 10,000 CAD, the Intel Core i9-14900K is the best CPU for gaming and multitasking. It will allow you to hit your 1440p 144Hz target in your desired games of marvel rivals and fortnite."
        },
    "GPUs": 
        {
          "name": "NVIDIA GeForce RTX 4090",
          "price_CAD": "$1,500",
          "Justification": "*add justification here*"
        },
    "RAM": 
        {
          "name": "Corsair Vengeance RGB Pro 32GB",
          "price_CAD": "$180",
          "Justification": "*add justification here*"
        },
    "Motherboards": 
        {
          "name": "ASUS ROG Strix Z690-E",
          "price_CAD": "$400",
          "Justification": "*add justification here*"
        },
    "Storage": 
        {
          "name": "Samsung 980 Pro 1TB",
          "price_CAD": "$200",
          "Justification": "*add justification here*"
        },
    "Power_Supply": 
        {
          "name": "Corsair RM850x",
          "price_CAD": "$150",
          "Justification": "*add justification here*"
        },
    "Case": 
        {
          "name": "NZXT H510",
          "price_CAD": "$70",
          "Justification": "*add justification here*"
        },
    "Cooling": 
        {
          "name": "NZXT Kraken X63",
          "price_CAD": "$150",
          "Justification": "*add justification here*"
        }
    }
    `

const promptFormat = `Respond in the following JSON format:%s. Your response must only contain the given format no other text.
Based on the following requirements for a PC Build:%s. Fill in the provided template for the best PC Build recommendation following.
All prices provided must be in Canadian Dollars. If the requirements parts names are given, you MUST use them in your provided build. 
If the budget is not enough to meet the requirements, please provide the best build possible with the given budget. You must provide a justification 
for each part in the build referencing the price inputed requirement, graphical quality, and games provided while also explaining why pre-owned parts would still work.
`

// BuildPrompt renders the generation prompt for a request. Same request, same prompt.
func BuildPrompt(req entity.BuildRequest) string {
	return fmt.Sprintf(promptFormat, buildTemplate, requirementsText(req))
}

func requirementsText(req entity.BuildRequest) string {
	if req.GamesList == nil {
		req.GamesList = []string{}
	}
	if req.PreOwnedHardware == nil {
		req.PreOwnedHardware = []entity.PreOwnedPart{}
	}
	raw, err := json.Marshal(req)
	if err != nil {
		// Plain struct of strings and numbers; only NaN/Inf can end up here.
		return fmt.Sprintf("%+v", req)
	}
	return string(raw)
}
