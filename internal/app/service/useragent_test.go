package service

import (
	"strings"
	"testing"

	"github.com/GSMS-B/ProjectQR/internal/app/model"
	"github.com/stretchr/testify/assert"
)

func TestClassifyAgent(t *testing.T) {
	tests := []struct {
		name       string
		ua         string
		device     string
		browserHas string
		osHas      string
	}{
		{
			name:       "android chrome is mobile",
			ua:         "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
			device:     model.DeviceMobile,
			browserHas: "Chrome",
			osHas:      "Android",
		},
		{
			name:       "ipad safari is tablet",
			ua:         "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			device:     model.DeviceTablet,
			browserHas: "Safari",
			osHas:      "iOS",
		},
		{
			name:       "windows firefox is desktop",
			ua:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:130.0) Gecko/20100101 Firefox/130.0",
			device:     model.DeviceDesktop,
			browserHas: "Firefox",
			osHas:      "Windows",
		},
		{
			name:   "crawler is bot",
			ua:     "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			device: model.DeviceBot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ClassifyAgent(tt.ua)
			assert.Equal(t, tt.device, info.Device)
			if tt.browserHas != "" {
				assert.True(t, strings.HasPrefix(info.Browser, tt.browserHas),
					"browser %q should start with %q", info.Browser, tt.browserHas)
			}
			if tt.osHas != "" {
				assert.Contains(t, info.OS, tt.osHas)
			}
		})
	}
}

func TestClassifyAgent_EmptyDegradesToUnknown(t *testing.T) {
	info := ClassifyAgent("   ")
	assert.Equal(t, model.DeviceUnknown, info.Device)
	assert.Equal(t, model.DeviceUnknown, info.OS)
	assert.Equal(t, model.DeviceUnknown, info.Browser)
}
