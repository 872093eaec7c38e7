package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"

	"cakeflow-backend/internal/core"
)

type AgentService interface {
	ProposeRestock(ctx context.Context, ingredients []core.Ingredient) (*core.RestockProposal, error)
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

// ProposeRestock asks the model for purchase suggestions covering the
// low-stock ingredients. The proposal is advisory; nothing is persisted.
func (a *Agent) ProposeRestock(ctx context.Context, ingredients []core.Ingredient) (*core.RestockProposal, error) {
	low := lowStock(ingredients)
	if len(low) == 0 {
		return &core.RestockProposal{
			Summary:    "All ingredients are above their low-stock thresholds; no restock needed.",
			Confidence: 1.0,
		}, nil
	}

	prompt := fmt.Sprintf(`You are a purchasing assistant for a small bakery.
Your goal is to propose purchase quantities for the ingredients running low.
Rules:
1. Suggest quantities ONLY for ingredients in the list below.
2. Copy ingredient names and units exactly as given.
3. Quantities must be decimal strings in the ingredient's own unit (e.g. "2.5").
4. Aim to bring each ingredient comfortably above its threshold without overstocking perishables.
5. Provide a confidence score (0.0-1.0).

Low-stock ingredients:
%s`, formatStockList(low))

	// Dynamically generate the JSON schema from the Go struct
	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "restock_proposal",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A purchase suggestion for low-stock bakery ingredients"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var proposal core.RestockProposal
	if err := json.Unmarshal([]byte(content), &proposal); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}

	if err := validateProposal(&proposal, low); err != nil {
		return nil, fmt.Errorf("proposal validation failed: %w", err)
	}

	return &proposal, nil
}

// lowStock filters to ingredients at or below their threshold. A zero
// threshold means the ingredient is not tracked for restocking.
func lowStock(ingredients []core.Ingredient) []core.Ingredient {
	var low []core.Ingredient
	for _, ing := range ingredients {
		if ing.LowStockThreshold.IsPositive() && ing.CurrentStock.LessThanOrEqual(ing.LowStockThreshold) {
			low = append(low, ing)
		}
	}
	return low
}

func formatStockList(ingredients []core.Ingredient) string {
	var b strings.Builder
	for _, ing := range ingredients {
		fmt.Fprintf(&b, "- %s: %s %s in stock, threshold %s %s\n",
			ing.Name, ing.CurrentStock, ing.Unit, ing.LowStockThreshold, ing.Unit)
	}
	return b.String()
}

// validateProposal rejects lines naming ingredients the model was not given.
func validateProposal(proposal *core.RestockProposal, low []core.Ingredient) error {
	known := make(map[string]bool, len(low))
	for _, ing := range low {
		known[ing.Name] = true
	}
	for _, line := range proposal.Lines {
		if !known[line.IngredientName] {
			return fmt.Errorf("unknown ingredient %q in proposal", line.IngredientName)
		}
	}
	if proposal.Confidence < 0 || proposal.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range", proposal.Confidence)
	}
	return nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v core.RestockProposal
	return reflector.Reflect(v)
}
