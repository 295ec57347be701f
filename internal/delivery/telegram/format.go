package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/smartspec/build-advisor/internal/domain/constants"
	"github.com/smartspec/build-advisor/internal/domain/entity"
)

func formatSavedBuild(b entity.SavedBuild) string {
	var sb strings.Builder
	sb.WriteString(formatRecommendation(b.Build))
	if b.ID != "" {
		fmt.Fprintf(&sb, "\n\nBuild ID: %s\n/export %s", b.ID, b.ID)
	}
	return sb.String()
}

func formatRecommendation(rec entity.BuildRecommendation) string {
	var sb strings.Builder
	sb.WriteString("Recommended build")
	if rec.Input != nil {
		fmt.Fprintf(&sb, " (budget %s %s, %s fps", formatAmount(rec.Input.Budget), constants.CurrencyCode, formatAmount(rec.Input.MinFps))
		if len(rec.Input.GamesList) > 0 {
			fmt.Fprintf(&sb, ", %s", strings.Join(rec.Input.GamesList, ", "))
		}
		sb.WriteString(")")
	}
	sb.WriteString("\n")

	for _, cc := range rec.Components() {
		fmt.Fprintf(&sb, "\n%s: %s", categoryLabel(cc.Category), nonEmpty(cc.Component.Name, "-"))
		if cc.Component.PriceCAD != "" {
			fmt.Fprintf(&sb, " (%s)", cc.Component.PriceCAD)
		}
		if j := strings.TrimSpace(cc.Component.Justification); j != "" {
			fmt.Fprintf(&sb, "\n  %s", j)
		}
	}

	total, skipped := rec.TotalCAD()
	fmt.Fprintf(&sb, "\n\nTotal: $%s %s", formatAmount(total), constants.CurrencyCode)
	if skipped > 0 {
		fmt.Fprintf(&sb, " (%d price(s) could not be read)", skipped)
	}
	return sb.String()
}

func formatHistory(builds []entity.SavedBuild) string {
	if len(builds) == 0 {
		return "You have no saved builds yet. Use /build to create one."
	}
	var sb strings.Builder
	sb.WriteString("Your builds:\n")
	for i, b := range builds {
		total, _ := b.Build.TotalCAD()
		fmt.Fprintf(&sb, "\n%d. %s  $%s %s  %s\n   CPU: %s, GPU: %s\n   /export %s",
			i+1,
			b.CreatedAt.Format("2006-01-02 15:04"),
			formatAmount(total),
			constants.CurrencyCode,
			shortID(b.ID),
			nonEmpty(b.Build.CPUs.Name, "-"),
			nonEmpty(b.Build.GPUs.Name, "-"),
			b.ID,
		)
	}
	return sb.String()
}

func categoryLabel(category string) string {
	return strings.ReplaceAll(category, "_", " ")
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func nonEmpty(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
