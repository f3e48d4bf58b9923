package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ConversationState represents a step of the order-intake dialogue
type ConversationState string

const (
	StateStart               ConversationState = "start"
	StateMainMenu            ConversationState = "main_menu"
	StateSelectCurrency      ConversationState = "select_currency"
	StateSelectPaymentMethod ConversationState = "select_payment_method"
	StateEnterAmount         ConversationState = "enter_amount"
	StateConfirmCalculation  ConversationState = "confirm_calculation"
	StateEnterBank           ConversationState = "enter_bank"
	StateEnterAccount        ConversationState = "enter_account"
	StateEnterHolder         ConversationState = "enter_holder"
	StateEnterID             ConversationState = "enter_id"
	StateAwaitProof          ConversationState = "await_proof"
	StateCompleted           ConversationState = "completed"
	StateCancelled           ConversationState = "cancelled"
	StateManualAttention     ConversationState = "manual_attention"
)

// conversationTransitions is the per-state whitelist of allowed next states.
// Transitions to StateStart and StateManualAttention are always allowed and
// therefore not listed here.
var conversationTransitions = map[ConversationState][]ConversationState{
	StateStart:               {StateMainMenu},
	StateMainMenu:            {StateSelectCurrency, StateCancelled},
	StateSelectCurrency:      {StateSelectPaymentMethod, StateMainMenu, StateCancelled},
	StateSelectPaymentMethod: {StateEnterAmount, StateSelectCurrency, StateCancelled},
	StateEnterAmount:         {StateConfirmCalculation, StateSelectPaymentMethod, StateCancelled},
	StateConfirmCalculation:  {StateEnterBank, StateEnterAmount, StateCancelled},
	StateEnterBank:           {StateEnterAccount, StateCancelled},
	StateEnterAccount:        {StateEnterHolder, StateEnterBank, StateCancelled},
	StateEnterHolder:         {StateEnterID, StateEnterAccount, StateCancelled},
	StateEnterID:             {StateAwaitProof, StateEnterHolder, StateCancelled},
	StateAwaitProof:          {StateCompleted, StateManualAttention, StateCancelled},
}

// AllConversationStates lists every defined state, in flow order
func AllConversationStates() []ConversationState {
	return []ConversationState{
		StateStart, StateMainMenu, StateSelectCurrency, StateSelectPaymentMethod,
		StateEnterAmount, StateConfirmCalculation, StateEnterBank, StateEnterAccount,
		StateEnterHolder, StateEnterID, StateAwaitProof,
		StateCompleted, StateCancelled, StateManualAttention,
	}
}

// ParseConversationState converts a stored token back into a state
func ParseConversationState(s string) (ConversationState, error) {
	for _, st := range AllConversationStates() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown conversation state %q", s)
}

// IsTerminal reports whether the conversation has ended in this state
func (s ConversationState) IsTerminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateManualAttention
}

// CanTransitionTo checks the transition whitelist. An operator takeover
// (manual_attention) and an explicit reset (start) are allowed from anywhere;
// a terminal state only allows the reset.
func (s ConversationState) CanTransitionTo(next ConversationState) bool {
	if next == StateStart {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	if next == StateManualAttention {
		return true
	}
	for _, allowed := range conversationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Calculation is the conversion snapshot echoed back to the user and copied
// into the order when it is created
type Calculation struct {
	AmountUSD    decimal.Decimal `json:"amount_usd"`
	FeeUSD       decimal.Decimal `json:"fee_usd"`
	NetUSD       decimal.Decimal `json:"net_usd"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	AmountLocal  decimal.Decimal `json:"amount_local"`
	CurrencyCode string          `json:"currency_code"`
}

// ConversationData is the data bag accumulated across dialogue turns.
// It is a fixed schema on purpose: a handler reading a field that was never
// collected gets an explicit error from the Require helpers instead of a
// silent zero value.
type ConversationData struct {
	CurrencyID   int64  `json:"currency_id,omitempty"`
	CurrencyCode string `json:"currency_code,omitempty"`
	CurrencyName string `json:"currency_name,omitempty"`

	PaymentMethodID   int64  `json:"payment_method_id,omitempty"`
	PaymentMethodName string `json:"payment_method_name,omitempty"`

	AmountUSD   decimal.Decimal `json:"amount_usd,omitempty"`
	Calculation *Calculation    `json:"calculation,omitempty"`

	Bank       string `json:"bank,omitempty"`
	Account    string `json:"account,omitempty"`
	Holder     string `json:"holder,omitempty"`
	NationalID string `json:"national_id,omitempty"`

	OrderID        int64  `json:"order_id,omitempty"`
	OrderReference string `json:"order_reference,omitempty"`
}

// RequireCurrency returns an error if no currency was selected yet
func (d *ConversationData) RequireCurrency() error {
	if d.CurrencyID == 0 || d.CurrencyCode == "" {
		return fmt.Errorf("conversation data: currency not selected")
	}
	return nil
}

// RequirePaymentMethod returns an error if no payment method was selected yet
func (d *ConversationData) RequirePaymentMethod() error {
	if d.PaymentMethodID == 0 {
		return fmt.Errorf("conversation data: payment method not selected")
	}
	return nil
}

// RequireCalculation returns the stored calculation or an error if the amount
// step was never completed
func (d *ConversationData) RequireCalculation() (*Calculation, error) {
	if d.Calculation == nil {
		return nil, fmt.Errorf("conversation data: calculation not present")
	}
	return d.Calculation, nil
}

// RequireBankDetails returns an error unless every bank field was collected
func (d *ConversationData) RequireBankDetails() error {
	if d.Bank == "" || d.Account == "" || d.Holder == "" || d.NationalID == "" {
		return fmt.Errorf("conversation data: bank details incomplete")
	}
	return nil
}

// RequireOrder returns the draft order id or an error if none was created
func (d *ConversationData) RequireOrder() (int64, error) {
	if d.OrderID == 0 {
		return 0, fmt.Errorf("conversation data: no order attached")
	}
	return d.OrderID, nil
}
