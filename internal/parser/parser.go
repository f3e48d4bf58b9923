package parser

import (
	"regexp"
	"strings"

	"ceiba21/internal/domain"

	"github.com/shopspring/decimal"
)

// Validation of raw chat input. Every function here is total: any string,
// however malformed, produces either a normalized value or a ready-to-display
// rejection message.

var (
	amountPattern     = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	accountVEPattern  = regexp.MustCompile(`^\d{20}$`)
	accountCOPattern  = regexp.MustCompile(`^\d{10,16}$`)
	accountAnyPattern = regexp.MustCompile(`^\d{8,20}$`)

	idVEPattern = regexp.MustCompile(`^[VE]-?\d{6,9}$`)
	idCOPattern = regexp.MustCompile(`^\d{6,10}$`)
	idCLPattern = regexp.MustCompile(`^\d{7,8}-[0-9K]$`)
	idARPattern = regexp.MustCompile(`^\d{7,8}$`)

	phoneVEPattern = regexp.MustCompile(`^04\d{9}$`)
	phoneCOPattern = regexp.MustCompile(`^3\d{9}$`)
	phoneCLPattern = regexp.MustCompile(`^9\d{8}$`)
	phoneARPattern = regexp.MustCompile(`^\d{10}$`)

	holderPattern  = regexp.MustCompile(`^[\p{L}\s'.-]+$`)
	controlPattern = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)
)

// ValidateAmount parses a USD amount with up to two decimal places and checks
// it against the configured limits. The returned decimal is exact.
func ValidateAmount(text string, min, max decimal.Decimal) (decimal.Decimal, bool, string) {
	text = strings.TrimSpace(text)

	if !amountPattern.MatchString(text) {
		return decimal.Zero, false, "❌ Monto inválido. Ingresa solo números.\n\nEjemplo: 100 o 50.50"
	}

	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false, "❌ Monto inválido. Ingresa solo números."
	}

	if amount.LessThan(min) {
		return decimal.Zero, false, "❌ Monto mínimo: $" + min.StringFixed(2)
	}
	if amount.GreaterThan(max) {
		return decimal.Zero, false, "❌ Monto máximo: $" + max.StringFixed(2)
	}

	return amount, true, ""
}

// ValidateAccount validates a bank account number using the destination
// country's rules. Spaces and dashes are stripped before validation.
func ValidateAccount(text, country string) (string, bool, string) {
	text = strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(text))

	switch country {
	case domain.CountryVenezuela:
		if !accountVEPattern.MatchString(text) {
			return "", false, "❌ Cuenta inválida. Debe tener 20 dígitos.\n\nEjemplo: 01020123456789012345"
		}
	case domain.CountryColombia:
		if !accountCOPattern.MatchString(text) {
			return "", false, "❌ Cuenta inválida. Debe tener entre 10 y 16 dígitos."
		}
	default:
		if !accountAnyPattern.MatchString(text) {
			return "", false, "❌ Cuenta inválida. Debe tener al menos 8 dígitos."
		}
	}

	return text, true, ""
}

// ValidateNationalID validates a national identity document and normalizes it
// to the canonical display form of the country (e.g. "v12345678" becomes
// "V-12345678" for Venezuela).
func ValidateNationalID(text, country string) (string, bool, string) {
	text = strings.ToUpper(strings.TrimSpace(text))

	switch country {
	case domain.CountryVenezuela:
		if !idVEPattern.MatchString(text) {
			return "", false, "❌ Cédula inválida.\n\nFormato: V-12345678 o E-12345678\n(Se acepta v minúscula también)"
		}
		if !strings.Contains(text, "-") {
			text = text[:1] + "-" + text[1:]
		}
	case domain.CountryColombia:
		if !idCOPattern.MatchString(text) {
			return "", false, "❌ Cédula inválida.\n\nDebe tener entre 6 y 10 dígitos."
		}
	case domain.CountryChile:
		if !idCLPattern.MatchString(text) {
			return "", false, "❌ RUT inválido.\n\nFormato: 12345678-9"
		}
	case domain.CountryArgentina:
		if !idARPattern.MatchString(text) {
			return "", false, "❌ DNI inválido.\n\nDebe tener 7 u 8 dígitos."
		}
	default:
		return ValidateNationalID(text, domain.CountryVenezuela)
	}

	return text, true, ""
}

// ValidateHolderName validates the account holder's full name: at least two
// words, letters (any alphabet), spaces, apostrophes and hyphens only.
func ValidateHolderName(text string) (string, bool, string) {
	text = strings.Join(strings.Fields(text), " ")

	if len(text) < 3 {
		return "", false, "❌ Nombre muy corto. Ingresa nombre completo."
	}
	if len(strings.Fields(text)) < 2 {
		return "", false, "❌ Ingresa nombre y apellido completo.\n\nEjemplo: Juan Pérez"
	}
	if !holderPattern.MatchString(text) {
		return "", false, "❌ Nombre inválido. Solo letras y espacios."
	}

	return text, true, ""
}

// ValidateBankName validates a free-text bank name
func ValidateBankName(text string) (string, bool, string) {
	text = strings.TrimSpace(text)

	if len(text) < 3 {
		return "", false, "❌ Nombre de banco muy corto."
	}
	if len(text) > 100 {
		return "", false, "❌ Nombre de banco muy largo."
	}

	return text, true, ""
}

// ValidatePhone validates a mobile number and formats it per country
func ValidatePhone(text, country string) (string, bool, string) {
	text = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(text))

	switch country {
	case domain.CountryVenezuela:
		if !phoneVEPattern.MatchString(text) {
			return "", false, "❌ Teléfono inválido.\n\nFormato: 04121234567 (11 dígitos)"
		}
		text = text[:4] + "-" + text[4:]
	case domain.CountryColombia:
		if !phoneCOPattern.MatchString(text) {
			return "", false, "❌ Teléfono inválido.\n\nFormato: 3001234567 (10 dígitos)"
		}
	case domain.CountryChile:
		if !phoneCLPattern.MatchString(text) {
			return "", false, "❌ Teléfono inválido.\n\nFormato: 912345678 (9 dígitos)"
		}
	case domain.CountryArgentina:
		if !phoneARPattern.MatchString(text) {
			return "", false, "❌ Teléfono inválido.\n\nFormato: 1112345678 (10 dígitos)"
		}
	default:
		return ValidatePhone(text, domain.CountryVenezuela)
	}

	return text, true, ""
}

// ParseCallback splits a button payload "action:value" on the first colon.
// Malformed payloads degrade to (whole string, "").
func ParseCallback(data string) (action, value string) {
	parts := strings.SplitN(data, ":", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return data, ""
}

// Sanitize trims, caps the length and strips control characters from raw
// user input
func Sanitize(text string, maxLength int) string {
	text = strings.TrimSpace(text)
	// Truncate on runes, not bytes, so a multi-byte character is never split
	if runes := []rune(text); len(runes) > maxLength {
		text = string(runes[:maxLength])
	}
	return controlPattern.ReplaceAllString(text, "")
}

// IsCommand reports whether the text is a chat command like "/start"
func IsCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "/")
}

// ExtractCommand returns the bare command name, lowercased, without the
// leading slash or arguments. Empty string if the text is not a command.
func ExtractCommand(text string) string {
	text = strings.TrimSpace(text)
	if !IsCommand(text) {
		return ""
	}
	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
