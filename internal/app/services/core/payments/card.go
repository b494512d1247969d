package payments

import (
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/exceptions"
	"strings"
	"time"
	"unicode"
)

// normalizeCardNumber strips spaces and dashes. It returns "" when anything else is not a digit.
func normalizeCardNumber(number string) string {
	var b strings.Builder
	for _, r := range number {
		switch {
		case r == ' ' || r == '-':
			continue
		case unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			return ""
		}
	}
	return b.String()
}

func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ValidateCard checks number, expiry and CVV shape. Card data is never persisted beyond the last four digits.
func ValidateCard(card models.CardDetails, now time.Time) (models.CardDetails, error) {
	number := normalizeCardNumber(card.Number)
	if len(number) < 13 || len(number) > 19 {
		return card, exceptions.ErrInvalidCardDetails("card number must have 13 to 19 digits")
	}
	if !luhnValid(number) {
		return card, exceptions.ErrInvalidCardDetails("card number failed checksum")
	}

	if card.ExpiryMonth < 1 || card.ExpiryMonth > 12 {
		return card, exceptions.ErrInvalidCardDetails("expiry month must be between 1 and 12")
	}
	year, month, _ := now.Date()
	if card.ExpiryYear < year || (card.ExpiryYear == year && time.Month(card.ExpiryMonth) < month) {
		return card, exceptions.ErrInvalidCardDetails("card has expired")
	}

	if len(card.CVV) < 3 || len(card.CVV) > 4 || normalizeCardNumber(card.CVV) != card.CVV {
		return card, exceptions.ErrInvalidCardDetails("cvv must have 3 or 4 digits")
	}
	if strings.TrimSpace(card.HolderName) == "" {
		return card, exceptions.ErrInvalidCardDetails("card holder name is required")
	}

	card.Number = number
	return card, nil
}
