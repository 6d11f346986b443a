package service

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// ErrBadColor signals a QR color that is not a #RRGGBB hex string.
var ErrBadColor = errors.New("color must be a #RRGGBB hex string")

const defaultQRSize = 512

// QRService renders QR code PNGs for short links.
type QRService interface {
	RenderPNG(content, foreground, background string, size int) ([]byte, error)
}

type qrService struct{}

// NewQRService returns the PNG renderer.
func NewQRService() QRService {
	return &qrService{}
}

// RenderPNG encodes content into a PNG of size x size pixels using the given
// hex colors. Empty colors default to black on white.
func (s *qrService) RenderPNG(content, foreground, background string, size int) ([]byte, error) {
	if size <= 0 {
		size = defaultQRSize
	}

	fg, err := parseHexColor(foreground, color.Black)
	if err != nil {
		return nil, err
	}
	bg, err := parseHexColor(background, color.White)
	if err != nil {
		return nil, err
	}

	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	qr.ForegroundColor = fg
	qr.BackgroundColor = bg

	png, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("render qr png: %w", err)
	}
	return png, nil
}

func parseHexColor(s string, fallback color.Color) (color.Color, error) {
	if s == "" {
		return fallback, nil
	}
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return nil, ErrBadColor
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil, ErrBadColor
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xFF,
	}, nil
}
