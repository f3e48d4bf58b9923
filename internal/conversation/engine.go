package conversation

import (
	"context"

	"ceiba21/internal/domain"
	"ceiba21/internal/parser"
	"ceiba21/internal/repository"
	"ceiba21/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxInputLength = 200

// Engine drives the order-intake dialogue. It is channel-agnostic: inputs
// arrive as plain text, callbacks and proof references; outputs leave as
// domain.Response values for the platform adapter to render.
type Engine struct {
	sessions repository.SessionStore
	catalog  repository.CatalogRepository
	calc     *service.CalculatorService
	orders   *service.OrderService
	logger   *zap.Logger

	minAmount decimal.Decimal
	maxAmount decimal.Decimal
}

// NewEngine creates a conversation engine
func NewEngine(
	sessions repository.SessionStore,
	catalog repository.CatalogRepository,
	calc *service.CalculatorService,
	orders *service.OrderService,
	logger *zap.Logger,
	minAmount, maxAmount decimal.Decimal,
) *Engine {
	return &Engine{
		sessions:  sessions,
		catalog:   catalog,
		calc:      calc,
		orders:    orders,
		logger:    logger,
		minAmount: minAmount,
		maxAmount: maxAmount,
	}
}

// HandleMessage processes a free-text message from the user
func (e *Engine) HandleMessage(ctx context.Context, user *domain.User, chatID, text string) (*domain.Response, error) {
	text = parser.Sanitize(text, maxInputLength)

	if parser.IsCommand(text) {
		return e.handleCommand(ctx, user, parser.ExtractCommand(text))
	}

	state, err := e.sessions.State(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	switch state {
	case domain.StateEnterAmount:
		return e.handleAmount(ctx, user, text)
	case domain.StateEnterBank:
		return e.handleBank(ctx, user, text)
	case domain.StateEnterAccount:
		return e.handleAccount(ctx, user, text)
	case domain.StateEnterHolder:
		return e.handleHolder(ctx, user, chatID, text)
	case domain.StateEnterID:
		return e.handleNationalID(ctx, user, chatID, text)
	case domain.StateStart:
		return e.startConversation(ctx, user)
	default:
		// Free text where a button or proof is expected
		return unknownInputResponse(), nil
	}
}

// HandleCallback processes an inline button press
func (e *Engine) HandleCallback(ctx context.Context, user *domain.User, chatID, data string) (*domain.Response, error) {
	action, value := parser.ParseCallback(data)

	switch action {
	case "action":
		return e.handleAction(ctx, user, value)
	case "currency":
		return e.handleCurrencySelected(ctx, user, value)
	case "method":
		return e.handleMethodSelected(ctx, user, value)
	case "confirm":
		return e.handleConfirmation(ctx, user, value)
	default:
		e.logger.Warn("Unknown callback action",
			zap.String("action", action),
			zap.Int64("user_id", user.ID))
		return unknownInputResponse(), nil
	}
}

// HandleProof processes an attached payment proof (photo or document)
func (e *Engine) HandleProof(ctx context.Context, user *domain.User, chatID, fileRef string) (*domain.Response, error) {
	state, err := e.sessions.State(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if state != domain.StateAwaitProof {
		return unknownInputResponse(), nil
	}

	data, err := e.sessions.Data(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	orderID, err := data.RequireOrder()
	if err != nil {
		e.logger.Error("Proof received without draft order", zap.Int64("user_id", user.ID))
		return e.resetConversation(ctx, user)
	}

	if err := e.orders.AttachProof(ctx, orderID, fileRef); err != nil {
		return nil, err
	}
	order, err := e.orders.Submit(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := e.advance(ctx, user.ID, domain.StateCompleted); err != nil {
		return nil, err
	}
	return orderSubmittedResponse(order), nil
}

// advance moves the session to the next state if the transition whitelist
// allows it. A rejected transition is a programming or concurrency bug; it
// is logged and surfaced, the session stays where it was.
func (e *Engine) advance(ctx context.Context, userID int64, next domain.ConversationState) error {
	current, err := e.sessions.State(ctx, userID)
	if err != nil {
		return err
	}
	if !current.CanTransitionTo(next) {
		e.logger.Warn("Rejected conversation transition",
			zap.Int64("user_id", userID),
			zap.String("from", string(current)),
			zap.String("to", string(next)))
		return errInvalidStep
	}
	return e.sessions.SetState(ctx, userID, next)
}

// stepTo advances the session and returns the given response. When the
// whitelist rejects the jump (stale buttons, double taps) the session is left
// untouched and the current state's prompt is re-emitted instead.
func (e *Engine) stepTo(ctx context.Context, user *domain.User, next domain.ConversationState, resp *domain.Response) (*domain.Response, error) {
	err := e.advance(ctx, user.ID, next)
	if err == errInvalidStep {
		return e.promptFor(ctx, user)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// promptFor re-emits the prompt belonging to the session's current state
// without advancing it or touching the collected data
func (e *Engine) promptFor(ctx context.Context, user *domain.User) (*domain.Response, error) {
	state, err := e.sessions.State(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	switch state {
	case domain.StateMainMenu:
		return mainMenuResponse(user), nil
	case domain.StateSelectCurrency:
		currencies, err := e.catalog.ActiveCurrencies(ctx)
		if err != nil {
			return nil, err
		}
		return currencyListResponse(currencies), nil
	case domain.StateSelectPaymentMethod:
		methods, err := e.catalog.ActivePaymentMethods(ctx)
		if err != nil {
			return nil, err
		}
		return methodListResponse(methods), nil
	case domain.StateEnterAmount:
		return amountPromptResponse(e.minAmount.StringFixed(2), e.maxAmount.StringFixed(2)), nil
	case domain.StateConfirmCalculation:
		data, err := e.sessions.Data(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if data.Calculation == nil {
			return e.resetConversation(ctx, user)
		}
		return calculationResponse(data), nil
	case domain.StateEnterBank:
		return bankPromptResponse(), nil
	case domain.StateEnterAccount:
		return accountPromptResponse(), nil
	case domain.StateEnterHolder:
		return holderPromptResponse(), nil
	case domain.StateEnterID:
		return nationalIDPromptResponse(), nil
	case domain.StateAwaitProof:
		data, err := e.sessions.Data(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		return proofPromptResponse(data.OrderReference), nil
	default:
		// Terminal states have nothing left to prompt for
		return e.resetConversation(ctx, user)
	}
}

// resetConversation wipes the session and shows the main menu
func (e *Engine) resetConversation(ctx context.Context, user *domain.User) (*domain.Response, error) {
	if err := e.sessions.Clear(ctx, user.ID); err != nil {
		return nil, err
	}
	if err := e.sessions.SetState(ctx, user.ID, domain.StateMainMenu); err != nil {
		return nil, err
	}
	return mainMenuResponse(user), nil
}

func (e *Engine) startConversation(ctx context.Context, user *domain.User) (*domain.Response, error) {
	if err := e.advance(ctx, user.ID, domain.StateMainMenu); err != nil {
		return nil, err
	}
	return mainMenuResponse(user), nil
}
