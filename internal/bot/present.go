package bot

import (
	"fmt"
	"strings"

	"github.com/jaruiz/ticket-scan-bot/internal/extraction"
)

const (
	noItemsLine = "No se encontraron artículos detallados."

	fallbackPrefix = "La IA procesó la imagen, pero tuvo problemas para estructurar la información. " +
		"Aquí está la respuesta original:\n\n"
)

// Render formats a normalized record as a Markdown chat message. Line
// order is fixed; the time line is suppressed when the model could not
// read one, and item sub-parts are gated on their sentinels.
func Render(record *extraction.ReceiptRecord) string {
	lines := []string{
		"🎉 *Resumen del ticket* 🎉\n",
		fmt.Sprintf("📍 *Restaurante:* %s", record.RestaurantName),
		fmt.Sprintf("🗓️ *Fecha:* %s", record.Date),
	}

	if record.Time != extraction.NotAvailable && !strings.EqualFold(record.Time, "not applicable") {
		lines = append(lines, fmt.Sprintf("⏰ *Hora:* %s", record.Time))
	}
	lines = append(lines, fmt.Sprintf("💰 *Total:* %s\n", record.Total))

	if len(record.Items) == 0 {
		lines = append(lines, noItemsLine)
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "🍔 *Artículos consumidos:*")
	for _, item := range record.Items {
		lines = append(lines, "➡️ "+renderItem(item))
	}

	return strings.Join(lines, "\n")
}

func renderItem(item extraction.LineItem) string {
	var b strings.Builder
	if item.Quantity != "" {
		fmt.Fprintf(&b, "%sx ", item.Quantity)
	}
	b.WriteString(item.Name)
	if item.TotalPrice != extraction.NotApplicable {
		fmt.Fprintf(&b, " *%s*", item.TotalPrice)
	}
	if item.UnitPrice != extraction.NotApplicable {
		fmt.Fprintf(&b, " (👤 %s por unidad)", item.UnitPrice)
	}
	return b.String()
}

// RenderFallback wraps unparseable model output in an explanation so
// the user still gets an answer.
func RenderFallback(raw string) string {
	return fallbackPrefix + raw
}
