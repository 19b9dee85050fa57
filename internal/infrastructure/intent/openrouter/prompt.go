package openrouter

import (
	"fmt"
	"strings"

	"github.com/serviciospe/discovery-assistant/internal/core/domain"
)

const maxHistoryTurns = 12

func buildMessages(history []domain.ConversationTurn, chatCtx domain.ChatContext) []map[string]string {
	turns := history
	if len(turns) > maxHistoryTurns {
		turns = turns[len(turns)-maxHistoryTurns:]
	}

	messages := make([]map[string]string, 0, len(turns)+1)
	messages = append(messages, map[string]string{
		"role":    "system",
		"content": buildSystemPrompt(chatCtx),
	})
	for _, turn := range turns {
		messages = append(messages, map[string]string{
			"role":    string(turn.Role),
			"content": turn.Content,
		})
	}
	return messages
}

func buildSystemPrompt(chatCtx domain.ChatContext) string {
	var builder strings.Builder
	builder.WriteString(`Eres el asistente de ServiciosPE, una app para descubrir negocios y servicios locales en Perú.
Responde siempre con un objeto JSON estricto, sin markdown y sin claves extra:
{"message": string, "action": {"type": "search", "q": string, "category": string, "distance": number, "openNow": boolean, "index": number} | null}

Si el usuario busca un lugar o servicio, devuelve una action de tipo "search" con los filtros que puedas inferir.
Si solo conversa, devuelve action null y responde en "message" de forma breve y en español.
"distance" es el radio en metros. "index" solo cuando el usuario pide una opción concreta de la lista anterior (1 = la primera).
`)

	if chatCtx.Coords != nil {
		builder.WriteString("\nEl usuario compartió su ubicación y las búsquedas cercanas están disponibles.")
	} else {
		builder.WriteString("\nEl usuario no compartió su ubicación; no inventes resultados cercanos.")
	}
	if chatCtx.Filters.Category != "" {
		fmt.Fprintf(&builder, "\nFiltro activo de categoría: %s.", chatCtx.Filters.Category)
	}
	if chatCtx.Filters.Distance > 0 {
		fmt.Fprintf(&builder, "\nRadio activo: %d metros.", chatCtx.Filters.Distance)
	}
	if chatCtx.Filters.OpenNow {
		builder.WriteString("\nEl usuario prefiere lugares abiertos ahora.")
	}
	return builder.String()
}
