package conversation

import (
	"context"
	"errors"
	"strconv"

	"ceiba21/internal/domain"
	"ceiba21/internal/parser"
	"ceiba21/internal/service"

	"go.uber.org/zap"
)

var errInvalidStep = errors.New("input does not match the conversation step")

func (e *Engine) handleCommand(ctx context.Context, user *domain.User, command string) (*domain.Response, error) {
	switch command {
	case "start":
		return e.resetConversation(ctx, user)
	case "cancel":
		return e.cancelConversation(ctx, user)
	case "help", "ayuda":
		return helpResponse(), nil
	case "status", "estado":
		return e.latestOrderStatus(ctx, user)
	default:
		return unknownInputResponse(), nil
	}
}

func (e *Engine) handleAction(ctx context.Context, user *domain.User, value string) (*domain.Response, error) {
	switch value {
	case "new_operation":
		return e.showCurrencies(ctx, user)
	case "main_menu":
		return e.resetConversation(ctx, user)
	case "back_currency":
		return e.showCurrencies(ctx, user)
	case "help":
		return helpResponse(), nil
	case "status":
		return e.latestOrderStatus(ctx, user)
	case "operator":
		return e.requestOperator(ctx, user)
	case "cancel":
		return e.cancelConversation(ctx, user)
	default:
		return unknownInputResponse(), nil
	}
}

// requestOperator flips the conversation to manual attention and, when an
// order is already in flight, hands it to an available operator
func (e *Engine) requestOperator(ctx context.Context, user *domain.User) (*domain.Response, error) {
	if err := e.advance(ctx, user.ID, domain.StateManualAttention); err != nil {
		if err == errInvalidStep {
			return e.promptFor(ctx, user)
		}
		return nil, err
	}

	data, err := e.sessions.Data(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if data.OrderID != 0 {
		// A draft not yet in the operator queue stays where it is
		if err := e.orders.Escalate(ctx, data.OrderID); err != nil && err != service.ErrInvalidTransition {
			e.logger.Warn("Could not hand order to an operator",
				zap.Int64("order_id", data.OrderID),
				zap.Error(err))
		}
	}

	return operatorTakeoverResponse(), nil
}

func (e *Engine) showCurrencies(ctx context.Context, user *domain.User) (*domain.Response, error) {
	currencies, err := e.catalog.ActiveCurrencies(ctx)
	if err != nil {
		return nil, err
	}
	if len(currencies) == 0 {
		return domain.TextResponse("⚠️ No hay monedas disponibles en este momento. Intenta más tarde."), nil
	}

	if err := e.advance(ctx, user.ID, domain.StateSelectCurrency); err != nil {
		if err == errInvalidStep {
			return e.promptFor(ctx, user)
		}
		return nil, err
	}
	// Entering currency selection restarts the data collection
	if err := e.sessions.SetData(ctx, user.ID, &domain.ConversationData{}); err != nil {
		return nil, err
	}
	return currencyListResponse(currencies), nil
}

func (e *Engine) handleCurrencySelected(ctx context.Context, user *domain.User, value string) (*domain.Response, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return unknownInputResponse(), nil
	}

	currency, err := e.catalog.CurrencyByID(ctx, id)
	if err != nil {
		e.logger.Warn("Callback for unknown currency", zap.String("value", value))
		return unknownInputResponse(), nil
	}

	data, err := e.sessions.Data(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	data.CurrencyID = currency.ID
	data.CurrencyCode = currency.Code
	data.CurrencyName = currency.Name
	if err := e.sessions.SetData(ctx, user.ID, data); err != nil {
		return nil, err
	}

	methods, err := e.catalog.ActivePaymentMethods(ctx)
	if err != nil {
		return nil, err
	}
	if len(methods) == 0 {
		return domain.TextResponse("⚠️ No hay métodos de pago disponibles. Intenta más tarde."), nil
	}

	return e.stepTo(ctx, user, domain.StateSelectPaymentMethod, methodListResponse(methods))
}

func (e *Engine) handleMethodSelected(ctx context.Context, user *domain.User, value string) (*domain.Response, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return unknownInputResponse(), nil
	}

	method, err := e.catalog.PaymentMethodByID(ctx, id)
	if err != nil {
		e.logger.Warn("Callback for unknown payment method", zap.String("value", value))
		return unknownInputResponse(), nil
	}

	data, err := e.sessions.Data(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	data.PaymentMethodID = method.ID
	data.PaymentMethodName = method.Name
	if err := e.sessions.SetData(ctx, user.ID, data); err != nil {
		return nil, err
	}

	return e.stepTo(ctx, user, domain.StateEnterAmount,
		amountPromptResponse(e.minAmount.StringFixed(2), e.maxAmount.StringFixed(2)))
}

func (e *Engine) handleAmount(ctx context.Context, user *domain.User, text string) (*domain.Response, error) {
	amount, ok, errMsg := parser.ValidateAmount(text, e.minAmount, e.maxAmount)
	if !ok {
		return domain.TextResponse(errMsg), nil
	}

	data, err := e.sessions.Data(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if err := data.RequireCurrency(); err != nil {
		return e.resetConversation(ctx, user)
	}
	if err := data.RequirePaymentMethod(); err != nil {
		return e.resetConversation(ctx, user)
	}

	method, err := e.catalog.PaymentMethodByID(ctx, data.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	currency, err := e.catalog.CurrencyByID(ctx, data.CurrencyID)
	if err != nil {
		return nil, err
	}

	calc, err := e.calc.Calculate(ctx, amount, method, currency)
	if err == service.ErrNoRate {
		return domain.TextResponse("⚠️ No tenemos tasa para esa moneda en este momento. Intenta más tarde."), nil
	}
	if err != nil {
		return nil, err
	}

	data.AmountUSD = amount
	data.Calculation = calc
	if err := e.sessions.SetData(ctx, user.ID, data); err != nil {
		return nil, err
	}

	return e.stepTo(ctx, user, domain.StateConfirmCalculation, calculationResponse(data))
}

func (e *Engine) handleConfirmation(ctx context.Context, user *domain.User, value string) (*domain.Response, error) {
	switch value {
	case "yes":
		data, err := e.sessions.Data(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if _, err := data.RequireCalculation(); err != nil {
			return e.resetConversation(ctx, user)
		}
		return e.stepTo(ctx, user, domain.StateEnterBank, bankPromptResponse())
	case "no":
		return e.stepTo(ctx, user, domain.StateEnterAmount,
			amountPromptResponse(e.minAmount.StringFixed(2), e.maxAmount.StringFixed(2)))
	default:
		return unknownInputResponse(), nil
	}
}

func (e *Engine) handleBank(ctx context.Context, user *domain.User, text string) (*domain.Response, error) {
	bank, ok, errMsg := parser.ValidateBankName(text)
	if !ok {
		return domain.TextResponse(errMsg), nil
	}

	data, err := e.sessions.Data(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	data.Bank = bank
	if err := e.sessions.SetData(ctx, user.ID, data); err != nil {
		return nil, err
	}

	return e.stepTo(ctx, user, domain.StateEnterAccount, accountPromptResponse())
}

func (e *Engine) handleAccount(ctx context.Context, user *domain.User, text string) (*domain.Response, error) {
	data, err := e.sessions.Data(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	country := domain.CountryForCurrency(data.CurrencyCode)
	account, ok, errMsg := parser.ValidateAccount(text, country)
	if !ok {
		return domain.TextResponse(errMsg), nil
	}

	data.Account = account
	if err := e.sessions.SetData(ctx, user.ID, data); err != nil {
		return nil, err
	}

	return e.stepTo(ctx, user, domain.StateEnterHolder, holderPromptResponse())
}

func (e *Engine) handleHolder(ctx context.Context, user *domain.User, chatID, text string) (*domain.Response, error) {
	holder, ok, errMsg := parser.ValidateHolderName(text)
	if !ok {
		return domain.TextResponse(errMsg), nil
	}

	data, err := e.sessions.Data(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	data.Holder = holder
	if err := e.sessions.SetData(ctx, user.ID, data); err != nil {
		return nil, err
	}

	return e.stepTo(ctx, user, domain.StateEnterID, nationalIDPromptResponse())
}

func (e *Engine) handleNationalID(ctx context.Context, user *domain.User, chatID, text string) (*domain.Response, error) {
	data, err := e.sessions.Data(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	country := domain.CountryForCurrency(data.CurrencyCode)
	nationalID, ok, errMsg := parser.ValidateNationalID(text, country)
	if !ok {
		return domain.TextResponse(errMsg), nil
	}

	data.NationalID = nationalID

	order, err := e.orders.CreateDraft(ctx, user.ID, data, chatID)
	if err != nil {
		e.logger.Error("Draft creation failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return domain.TextResponse("⚠️ No pudimos crear tu orden. Escribe /start para intentar de nuevo."), nil
	}

	data.OrderID = order.ID
	data.OrderReference = order.Reference
	if err := e.sessions.SetData(ctx, user.ID, data); err != nil {
		return nil, err
	}

	return e.stepTo(ctx, user, domain.StateAwaitProof, orderCreatedResponse(order))
}

func (e *Engine) cancelConversation(ctx context.Context, user *domain.User) (*domain.Response, error) {
	data, err := e.sessions.Data(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	// Cancel the draft order too when one was already created
	if data.OrderID != 0 {
		if _, err := e.orders.Cancel(ctx, data.OrderID, "Cancelada por el cliente"); err != nil && err != service.ErrInvalidTransition {
			e.logger.Error("Draft cancellation failed",
				zap.Int64("order_id", data.OrderID),
				zap.Error(err))
		}
	}

	if err := e.sessions.Clear(ctx, user.ID); err != nil {
		return nil, err
	}
	return cancelledResponse(), nil
}

func (e *Engine) latestOrderStatus(ctx context.Context, user *domain.User) (*domain.Response, error) {
	order, err := e.orders.LatestByUser(ctx, user.ID)
	if err == service.ErrOrderNotFound {
		return domain.TextResponse("📭 Todavía no tienes órdenes. Escribe /start para crear la primera."), nil
	}
	if err != nil {
		return nil, err
	}
	return orderStatusResponse(order), nil
}
