package promptpay

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/yeqown/go-qrcode"
)

// DataURI renders payload as a JPEG QR image and returns it as a data URI
func DataURI(payload string) (string, error) {
	qrc, err := qrcode.New(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr code: %w", err)
	}

	var buf bytes.Buffer
	if err := qrc.SaveTo(&buf); err != nil {
		return "", fmt.Errorf("failed to render qr code: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
