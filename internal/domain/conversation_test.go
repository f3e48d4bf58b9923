package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationState_CanTransitionTo(t *testing.T) {
	// Full transition matrix. Everything not listed as allowed must be
	// rejected, so a typo in the whitelist breaks this test.
	allowed := map[ConversationState][]ConversationState{
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

	for _, from := range AllConversationStates() {
		for _, to := range AllConversationStates() {
			want := false
			if to == StateStart {
				// Reset is always possible
				want = true
			} else if !from.IsTerminal() {
				if to == StateManualAttention {
					// Operator takeover from any live state
					want = true
				}
				for _, a := range allowed[from] {
					if a == to {
						want = true
					}
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestConversationState_Terminal(t *testing.T) {
	assert.True(t, StateCompleted.IsTerminal())
	assert.True(t, StateCancelled.IsTerminal())
	assert.True(t, StateManualAttention.IsTerminal())
	assert.False(t, StateEnterAmount.IsTerminal())
	assert.False(t, StateStart.IsTerminal())
}

func TestParseConversationState(t *testing.T) {
	for _, st := range AllConversationStates() {
		got, err := ParseConversationState(string(st))
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}

	_, err := ParseConversationState("teleported")
	assert.Error(t, err)
}

func TestConversationData_RequireHelpers(t *testing.T) {
	var d ConversationData

	assert.Error(t, d.RequireCurrency())
	assert.Error(t, d.RequirePaymentMethod())
	assert.Error(t, d.RequireBankDetails())

	_, err := d.RequireCalculation()
	assert.Error(t, err)
	_, err = d.RequireOrder()
	assert.Error(t, err)

	d = ConversationData{
		CurrencyID:      3,
		CurrencyCode:    "VES",
		PaymentMethodID: 2,
		Calculation:     &Calculation{},
		Bank:            "Banco de Venezuela",
		Account:         "01020123456789012345",
		Holder:          "María González",
		NationalID:      "V-12345678",
		OrderID:         10,
	}

	assert.NoError(t, d.RequireCurrency())
	assert.NoError(t, d.RequirePaymentMethod())
	assert.NoError(t, d.RequireBankDetails())

	calc, err := d.RequireCalculation()
	require.NoError(t, err)
	assert.NotNil(t, calc)

	id, err := d.RequireOrder()
	require.NoError(t, err)
	assert.Equal(t, int64(10), id)
}
