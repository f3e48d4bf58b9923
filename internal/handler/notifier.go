package handler

import (
	"context"
	"fmt"
	"strings"

	"ceiba21/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// TelegramNotifier announces order events in the operator group chat.
// It implements service.Notifier.
type TelegramNotifier struct {
	bot            *tele.Bot
	operatorChatID int64
	logger         *zap.Logger
}

// NewTelegramNotifier creates a notifier posting to the given chat
func NewTelegramNotifier(bot *tele.Bot, operatorChatID int64, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		bot:            bot,
		operatorChatID: operatorChatID,
		logger:         logger,
	}
}

// NotifyNewOrder announces a freshly submitted order to the operator chat
func (n *TelegramNotifier) NotifyNewOrder(ctx context.Context, order *domain.Order, user *domain.User) error {
	var b strings.Builder

	fmt.Fprintf(&b, "🆕 *Nueva orden %s*\n\n", order.Reference)
	fmt.Fprintf(&b, "Cliente: %s\n", user.DisplayName())
	fmt.Fprintf(&b, "Monto: $%s\n", order.AmountUSD.StringFixed(2))
	if order.FeeUSD.Sign() > 0 {
		fmt.Fprintf(&b, "Comisión: $%s\n", order.FeeUSD.StringFixed(2))
	}
	fmt.Fprintf(&b, "Paga: %s %s\n\n", order.AmountLocal.StringFixed(2), order.CurrencyCode)
	fmt.Fprintf(&b, "Banco: %s\n", order.ClientPaymentData.Bank)
	fmt.Fprintf(&b, "Cuenta: %s\n", order.ClientPaymentData.Account)
	fmt.Fprintf(&b, "Titular: %s (%s)", order.ClientPaymentData.Holder, order.ClientPaymentData.NationalID)

	return n.post(b.String())
}

// NotifyOrderCompleted announces a settled order
func (n *TelegramNotifier) NotifyOrderCompleted(ctx context.Context, order *domain.Order) error {
	return n.post(fmt.Sprintf("✅ Orden *%s* completada: %s %s pagados.",
		order.Reference, order.AmountLocal.StringFixed(2), order.CurrencyCode))
}

// NotifyOrderCancelled announces a cancelled order with its reason
func (n *TelegramNotifier) NotifyOrderCancelled(ctx context.Context, order *domain.Order) error {
	return n.post(fmt.Sprintf("❌ Orden *%s* cancelada: %s",
		order.Reference, order.CancellationReason))
}

func (n *TelegramNotifier) post(text string) error {
	_, err := n.bot.Send(&tele.Chat{ID: n.operatorChatID}, text, tele.ModeMarkdown)
	if err != nil {
		n.logger.Error("Operator chat send failed", zap.Error(err))
	}
	return err
}
