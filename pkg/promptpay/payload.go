// Package promptpay builds Thai PromptPay (EMVCo merchant-presented) QR payloads.
package promptpay

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	tagPayloadFormat   = "00"
	tagPointOfInit     = "01"
	tagMerchantAccount = "29"
	tagCountryCode     = "58"
	tagCurrency        = "53"
	tagAmount          = "54"
	tagChecksum        = "63"

	subTagAID      = "00"
	subTagPhone    = "01"
	subTagTaxID    = "02"
	subTagEWallet  = "03"
	promptPayAppID = "A000000677010111"

	payloadFormat = "01"
	staticQR      = "11"
	dynamicQR     = "12"
	countryTH     = "TH"
	currencyTHB   = "764"
)

var (
	// ErrInvalidTarget indicates the PromptPay id is not a phone, tax id or e-wallet id
	ErrInvalidTarget = errors.New("promptpay id must be a phone number, 13-digit tax id or 15-digit e-wallet id")

	// ErrInvalidAmount indicates a negative or non-finite amount
	ErrInvalidAmount = errors.New("amount must be a positive number")

	nonDigits = regexp.MustCompile(`\D`)
)

// Payload returns the EMVCo string for target. A nil amount yields a static
// (reusable) code; otherwise the amount is embedded with two decimals.
func Payload(target string, amount *float64) (string, error) {
	digits := nonDigits.ReplaceAllString(target, "")
	if len(digits) < 9 || len(digits) > 15 {
		return "", ErrInvalidTarget
	}

	subTag := subTagPhone
	switch {
	case len(digits) >= 15:
		subTag = subTagEWallet
	case len(digits) >= 13:
		subTag = subTagTaxID
	}

	account := field(subTagAID, promptPayAppID) + field(subTag, formatTarget(digits))

	var b strings.Builder
	b.WriteString(field(tagPayloadFormat, payloadFormat))
	if amount != nil {
		b.WriteString(field(tagPointOfInit, dynamicQR))
	} else {
		b.WriteString(field(tagPointOfInit, staticQR))
	}
	b.WriteString(field(tagMerchantAccount, account))
	b.WriteString(field(tagCountryCode, countryTH))
	b.WriteString(field(tagCurrency, currencyTHB))
	if amount != nil {
		if !(*amount > 0) || *amount > 1e12 {
			return "", ErrInvalidAmount
		}
		b.WriteString(field(tagAmount, strconv.FormatFloat(*amount, 'f', 2, 64)))
	}

	// The checksum covers everything up to and including its own tag and length.
	b.WriteString(tagChecksum + "04")
	data := b.String()
	return data + fmt.Sprintf("%04X", CRC16(data)), nil
}

// formatTarget turns a local phone number into the 13-digit 0066 form
func formatTarget(digits string) string {
	if len(digits) >= 13 {
		return digits
	}
	phone := "66" + strings.TrimPrefix(digits, "0")
	if len(phone) < 13 {
		phone = strings.Repeat("0", 13-len(phone)) + phone
	}
	return phone
}

func field(tag, value string) string {
	return fmt.Sprintf("%s%02d%s", tag, len(value), value)
}

// CRC16 is CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF)
func CRC16(data string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(data); i++ {
		crc ^= uint16(data[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
