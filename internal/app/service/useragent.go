package service

import (
	"strings"

	"github.com/GSMS-B/ProjectQR/internal/app/model"
	ua "github.com/mileusna/useragent"
)

// AgentInfo is the classified form of a raw user-agent header.
type AgentInfo struct {
	Device  string
	OS      string
	Browser string
}

// ClassifyAgent buckets a user-agent string into a device category and
// human-readable OS/browser labels. Empty or unparseable input degrades to
// Unknown rather than failing.
func ClassifyAgent(raw string) AgentInfo {
	info := AgentInfo{
		Device:  model.DeviceUnknown,
		OS:      model.DeviceUnknown,
		Browser: model.DeviceUnknown,
	}
	if strings.TrimSpace(raw) == "" {
		return info
	}

	parsed := ua.Parse(raw)

	switch {
	case parsed.Bot:
		info.Device = model.DeviceBot
	case parsed.Mobile:
		info.Device = model.DeviceMobile
	case parsed.Tablet:
		info.Device = model.DeviceTablet
	case parsed.Desktop:
		info.Device = model.DeviceDesktop
	}

	if parsed.OS != "" {
		info.OS = parsed.OS
		if parsed.OSVersion != "" {
			info.OS += " " + parsed.OSVersion
		}
	}

	if parsed.Name != "" {
		info.Browser = parsed.Name
		if parsed.Version != "" {
			info.Browser += " " + parsed.Version
		}
	}

	return info
}
