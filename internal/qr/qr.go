// Package qr renders the scannable label codes that point at item pages.
package qr

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Size is the rendered QR code edge length in pixels.
const Size = 256

// ItemURL returns the public URL encoded on an item's label.
func ItemURL(baseURL, publicID string) string {
	return strings.TrimSuffix(baseURL, "/") + "/i/" + publicID
}

// EncodePNG renders a QR code PNG for the given URL with medium error
// correction.
func EncodePNG(url string) ([]byte, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, Size)
	if err != nil {
		return nil, fmt.Errorf("encoding QR code: %w", err)
	}
	return png, nil
}
