package service

import (
	"strings"

	"github.com/skip2/go-qrcode"
)

// DefaultQRGenerator renders a branch's menu URL as a 256px PNG.
type DefaultQRGenerator struct {
	BaseURL string
}

func (g DefaultQRGenerator) Generate(target string) ([]byte, error) {
	link := target
	if !strings.HasPrefix(target, "http") {
		link = strings.TrimRight(g.BaseURL, "/") + target
	}
	return qrcode.Encode(link, qrcode.Medium, 256)
}

var _ QRGenerator = DefaultQRGenerator{}
