package ai

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"cakeflow-backend/internal/core"
)

func ing(name string, stock, threshold int64, unit string) core.Ingredient {
	return core.Ingredient{
		Name:              name,
		CurrentStock:      decimal.NewFromInt(stock),
		LowStockThreshold: decimal.NewFromInt(threshold),
		Unit:              unit,
	}
}

func TestLowStock(t *testing.T) {
	ingredients := []core.Ingredient{
		ing("Tepung Terigu", 2, 5, "kg"),  // below threshold
		ing("Gula Pasir", 5, 5, "kg"),     // exactly at threshold counts as low
		ing("Mentega", 10, 5, "kg"),       // healthy
		ing("Pewarna Makanan", 0, 0, "ml"), // zero threshold is untracked
	}

	low := lowStock(ingredients)
	if len(low) != 2 {
		t.Fatalf("low stock count = %d, want 2", len(low))
	}
	if low[0].Name != "Tepung Terigu" || low[1].Name != "Gula Pasir" {
		t.Errorf("unexpected low-stock set: %v, %v", low[0].Name, low[1].Name)
	}
}

func TestFormatStockList(t *testing.T) {
	out := formatStockList([]core.Ingredient{ing("Tepung Terigu", 2, 5, "kg")})
	if !strings.Contains(out, "Tepung Terigu") || !strings.Contains(out, "2 kg in stock") {
		t.Errorf("unexpected stock list: %q", out)
	}
}

func TestValidateProposal(t *testing.T) {
	low := []core.Ingredient{ing("Tepung Terigu", 2, 5, "kg")}

	valid := &core.RestockProposal{
		Summary:    "Buy flour.",
		Confidence: 0.9,
		Lines: []core.RestockLine{
			{IngredientName: "Tepung Terigu", Quantity: "5", Unit: "kg", Reasoning: "Below threshold."},
		},
	}
	if err := validateProposal(valid, low); err != nil {
		t.Errorf("valid proposal rejected: %v", err)
	}

	unknown := &core.RestockProposal{
		Confidence: 0.9,
		Lines:      []core.RestockLine{{IngredientName: "Coklat Bubuk", Quantity: "1", Unit: "kg"}},
	}
	if err := validateProposal(unknown, low); err == nil {
		t.Errorf("proposal naming an unknown ingredient should be rejected")
	}

	badConfidence := &core.RestockProposal{Confidence: 1.5}
	if err := validateProposal(badConfidence, low); err == nil {
		t.Errorf("out-of-range confidence should be rejected")
	}
}
