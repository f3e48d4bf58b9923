package conversation

import (
	"fmt"
	"strings"

	"ceiba21/internal/domain"
)

// User-facing message builders. All texts are Spanish, the language of the
// client base; keyboard payloads follow the "action:value" convention.

func mainMenuResponse(user *domain.User) *domain.Response {
	return &domain.Response{
		Text: fmt.Sprintf("¡Hola %s! 👋\n\nBienvenido a Ceiba21, tu casa de cambio de confianza.\n\n¿Qué deseas hacer?", user.DisplayName()),
		Buttons: [][]domain.Button{
			{{Text: "💱 Nueva operación", Data: "action:new_operation"}},
			{{Text: "📋 Mi última orden", Data: "action:status"}},
			{{Text: "❓ Ayuda", Data: "action:help"}},
		},
	}
}

func currencyListResponse(currencies []domain.Currency) *domain.Response {
	buttons := make([][]domain.Button, 0, len(currencies))
	for _, c := range currencies {
		buttons = append(buttons, []domain.Button{{
			Text: fmt.Sprintf("%s %s", c.Symbol, c.Name),
			Data: fmt.Sprintf("currency:%d", c.ID),
		}})
	}
	buttons = append(buttons, []domain.Button{{Text: "⬅️ Volver", Data: "action:main_menu"}})

	return &domain.Response{
		Text:    "💱 ¿Qué moneda deseas recibir?",
		Buttons: buttons,
	}
}

func methodListResponse(methods []domain.PaymentMethod) *domain.Response {
	buttons := make([][]domain.Button, 0, len(methods))
	for _, m := range methods {
		buttons = append(buttons, []domain.Button{{
			Text: m.Name,
			Data: fmt.Sprintf("method:%d", m.ID),
		}})
	}
	buttons = append(buttons, []domain.Button{{Text: "⬅️ Volver", Data: "action:back_currency"}})

	return &domain.Response{
		Text:    "💳 ¿Cómo vas a enviar los dólares?",
		Buttons: buttons,
	}
}

func amountPromptResponse(min, max string) *domain.Response {
	return domain.TextResponse(fmt.Sprintf("💵 ¿Cuántos dólares deseas cambiar?\n\nMínimo: $%s\nMáximo: $%s", min, max))
}

func calculationResponse(data *domain.ConversationData) *domain.Response {
	calc := data.Calculation
	var b strings.Builder

	b.WriteString("🧮 *Resumen de tu operación*\n\n")
	fmt.Fprintf(&b, "Envías: $%s (%s)\n", calc.AmountUSD.StringFixed(2), data.PaymentMethodName)
	if calc.FeeUSD.Sign() > 0 {
		fmt.Fprintf(&b, "Comisión: $%s\n", calc.FeeUSD.StringFixed(2))
		fmt.Fprintf(&b, "Neto: $%s\n", calc.NetUSD.StringFixed(2))
	}
	fmt.Fprintf(&b, "Tasa: %s\n", calc.ExchangeRate.String())
	fmt.Fprintf(&b, "\n✅ *Recibes: %s %s*\n\n¿Confirmas?", calc.AmountLocal.StringFixed(2), calc.CurrencyCode)

	return &domain.Response{
		Text: b.String(),
		Buttons: [][]domain.Button{
			{
				{Text: "✅ Confirmar", Data: "confirm:yes"},
				{Text: "✏️ Cambiar monto", Data: "confirm:no"},
			},
			{{Text: "❌ Cancelar", Data: "action:cancel"}},
		},
	}
}

func bankPromptResponse() *domain.Response {
	return domain.TextResponse("🏦 ¿A qué banco te depositamos?\n\nEjemplo: Banco de Venezuela")
}

func accountPromptResponse() *domain.Response {
	return domain.TextResponse("🔢 Ingresa el número de cuenta:")
}

func holderPromptResponse() *domain.Response {
	return domain.TextResponse("👤 Nombre completo del titular de la cuenta:")
}

func nationalIDPromptResponse() *domain.Response {
	return domain.TextResponse("🪪 Cédula o documento del titular:\n\nEjemplo: V-12345678")
}

func proofPromptResponse(reference string) *domain.Response {
	if reference == "" {
		return domain.TextResponse("📎 Adjunta el comprobante de pago (captura o foto) para continuar.")
	}
	return domain.TextResponse(fmt.Sprintf(
		"📎 Adjunta el comprobante de pago de la orden *%s* (captura o foto) para continuar.", reference))
}

func operatorTakeoverResponse() *domain.Response {
	return domain.TextResponse("👨‍💼 Un operador tomará tu caso en breve. Mantente atento a este chat.")
}

func orderCreatedResponse(order *domain.Order) *domain.Response {
	return domain.TextResponse(fmt.Sprintf(
		"📄 Orden *%s* creada.\n\nEnvía $%s y adjunta aquí el comprobante de pago (captura o foto) para continuar.",
		order.Reference, order.AmountUSD.StringFixed(2)))
}

func orderSubmittedResponse(order *domain.Order) *domain.Response {
	return domain.TextResponse(fmt.Sprintf(
		"✅ ¡Comprobante recibido!\n\nTu orden *%s* está en cola de verificación. Te avisaremos apenas el pago esté confirmado.",
		order.Reference))
}

func orderStatusResponse(order *domain.Order) *domain.Response {
	status := map[domain.OrderStatus]string{
		domain.OrderDraft:     "📝 Borrador",
		domain.OrderPending:   "⏳ En cola de verificación",
		domain.OrderInProcess: "🔄 En proceso",
		domain.OrderCompleted: "✅ Completada",
		domain.OrderCancelled: "❌ Cancelada",
	}[order.Status]

	return domain.TextResponse(fmt.Sprintf(
		"📋 Orden *%s*\n\nEstado: %s\nMonto: $%s\nRecibes: %s %s",
		order.Reference, status, order.AmountUSD.StringFixed(2),
		order.AmountLocal.StringFixed(2), order.CurrencyCode))
}

func helpResponse() *domain.Response {
	return &domain.Response{
		Text: "❓ *Ayuda*\n\n" +
			"• /start reinicia la conversación\n" +
			"• /status muestra tu última orden\n" +
			"• /cancel cancela la operación en curso\n\n" +
			"Si necesitas atención personalizada escribe a @ceiba21soporte.",
		Buttons: [][]domain.Button{
			{{Text: "👨‍💼 Hablar con un operador", Data: "action:operator"}},
		},
	}
}

func cancelledResponse() *domain.Response {
	return domain.TextResponse("❌ Operación cancelada.\n\nEscribe /start cuando quieras comenzar de nuevo.")
}

func unknownInputResponse() *domain.Response {
	return domain.TextResponse("🤔 No entendí eso. Usa los botones o escribe /start para ver el menú.")
}
