package order

import (
	"strings"
	"unicode"
)

const whatsAppBaseURL = "https://wa.me/"

// WhatsAppLink builds https://wa.me/<digits>?text=<message>.
func WhatsAppLink(phone, message string) string {
	return whatsAppBaseURL + DigitsOnly(phone) + "?text=" + EncodeURIComponent(message)
}

// PhoneLink keeps a leading + and drops whitespace.
func PhoneLink(phone string) string {
	return "tel:" + strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, phone)
}

func MailLink(email string) string {
	return "mailto:" + strings.TrimSpace(email)
}

func DigitsOnly(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}

const upperHex = "0123456789ABCDEF"

// EncodeURIComponent percent-encodes s the way browsers encode a query
// component: UTF-8 bytes outside A-Z a-z 0-9 - _ . ! ~ * ' ( ) are escaped
// and space becomes %20.
func EncodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreservedComponent(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
	return b.String()
}

func isUnreservedComponent(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
