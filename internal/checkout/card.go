package checkout

import "strings"

// NormalizeCardNumber strips everything but digits.
func NormalizeCardNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCardNumber renders digits in space-separated groups of four,
// matching how the number appears on the physical card.
func FormatCardNumber(raw string) string {
	digits := NormalizeCardNumber(raw)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatExpiry renders digits as MM/YY once at least two are present.
func FormatExpiry(raw string) string {
	digits := NormalizeCardNumber(raw)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) >= 2 {
		return digits[:2] + "/" + digits[2:]
	}
	return digits
}

// MaskCard reduces a card number to its last four digits. Only the
// masked form is ever recorded on an order.
func MaskCard(raw string) string {
	digits := NormalizeCardNumber(raw)
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return "**** **** **** " + digits
}
