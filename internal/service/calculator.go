package service

import (
	"context"
	"fmt"

	"ceiba21/internal/domain"
	"ceiba21/internal/formula"
	"ceiba21/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var one = decimal.New(1, 0)

// CalculatorService computes conversion previews. All intermediate math is
// exact; only the three published figures (fee, net, local amount) are
// rounded, half away from zero, to two decimal places.
type CalculatorService struct {
	rates  repository.RateRepository
	logger *zap.Logger
}

// NewCalculatorService creates a new calculator service
func NewCalculatorService(rates repository.RateRepository, logger *zap.Logger) *CalculatorService {
	return &CalculatorService{rates: rates, logger: logger}
}

// Calculate produces the conversion snapshot for a gross USD amount paid
// through the given method into the given currency.
//
// Fee: fee = (amount - fixed) * rate, net = amount - fixed - fee.
// Rate resolution: the method+currency quote's final value wins over the
// currency's base rate.
func (s *CalculatorService) Calculate(ctx context.Context, amountUSD decimal.Decimal, method *domain.PaymentMethod, currency *domain.Currency) (*domain.Calculation, error) {
	rate, err := s.resolveRate(ctx, method, currency)
	if err != nil {
		return nil, err
	}

	feeUSD := decimal.Zero
	netUSD := amountUSD
	if method.HasPlatformFee {
		afterFixed := amountUSD.Sub(method.FeeFixed)
		feeUSD = afterFixed.Mul(method.FeeRate).Round(2)
		netUSD = afterFixed.Sub(feeUSD).Round(2)
	}

	if netUSD.Sign() <= 0 {
		return nil, fmt.Errorf("amount %s does not cover the platform fee", amountUSD)
	}

	return &domain.Calculation{
		AmountUSD:    amountUSD,
		FeeUSD:       feeUSD,
		NetUSD:       netUSD,
		ExchangeRate: rate,
		AmountLocal:  netUSD.Mul(rate).Round(2),
		CurrencyCode: currency.Code,
	}, nil
}

// CalculateReverse answers "how much do I have to send so the client receives
// this local amount": net = local / rate, then the fee formula is inverted,
// amount = net / (1 - fee_rate) + fixed, rounded to the nearest cent.
func (s *CalculatorService) CalculateReverse(ctx context.Context, amountLocal decimal.Decimal, method *domain.PaymentMethod, currency *domain.Currency) (*domain.Calculation, error) {
	rate, err := s.resolveRate(ctx, method, currency)
	if err != nil {
		return nil, err
	}
	if rate.Sign() <= 0 {
		return nil, fmt.Errorf("rate %s cannot be inverted", rate)
	}

	netUSD := amountLocal.Div(rate).Round(2)
	amountUSD := netUSD
	if method.HasPlatformFee {
		divisor := one.Sub(method.FeeRate)
		if divisor.Sign() <= 0 {
			return nil, fmt.Errorf("fee rate %s leaves nothing to receive", method.FeeRate)
		}
		amountUSD = netUSD.Div(divisor).Add(method.FeeFixed).Round(2)
	}
	return s.Calculate(ctx, amountUSD, method, currency)
}

// resolveRate picks the effective USD→local rate: a configured quote's final
// value first, then the method's own fixed manual value, then the currency's
// base rate. A formula-typed method value is evaluated against the base rate.
func (s *CalculatorService) resolveRate(ctx context.Context, method *domain.PaymentMethod, currency *domain.Currency) (decimal.Decimal, error) {
	quote, err := s.rates.QuoteFor(ctx, method.ID, currency.ID)
	if err != nil {
		return decimal.Zero, err
	}
	if quote != nil && quote.FinalValue.Valid {
		return quote.FinalValue.Decimal, nil
	}

	if method.ValueType == domain.ValueManual && method.USDValue.Valid {
		return method.USDValue.Decimal, nil
	}

	base, err := s.rates.RateForCurrency(ctx, currency.ID)
	if err == repository.ErrNotFound {
		return decimal.Zero, ErrNoRate
	}
	if err != nil {
		return decimal.Zero, err
	}

	if method.ValueType == domain.ValueFormula && method.USDFormula != "" {
		rate, err := formula.Eval(method.USDFormula, base.Rate)
		if err != nil {
			s.logger.Error("Pricing formula failed, falling back to base rate",
				zap.String("method", method.Code),
				zap.Error(err))
			return base.Rate, nil
		}
		return rate, nil
	}

	return base.Rate, nil
}
