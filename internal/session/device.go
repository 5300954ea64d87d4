package session

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// Fingerprint derives a stable device fingerprint from the user agent:
// browser, major version, OS, and platform class. IP addresses are
// deliberately excluded; they churn too often to identify a device.
func Fingerprint(userAgentString string) string {
	if userAgentString == "" {
		return ""
	}

	ua := useragent.New(userAgentString)
	browser, version := ua.Browser()

	majorVersion := "unknown"
	if version != "" {
		parts := strings.Split(version, ".")
		if len(parts) > 0 && parts[0] != "" {
			majorVersion = parts[0]
		}
	}

	os := ua.OS()
	platform := "desktop"
	if ua.Mobile() {
		platform = "mobile"
	}

	browser = strings.ToLower(strings.TrimSpace(browser))
	if browser == "" {
		browser = "unknown"
	}
	os = strings.ToLower(strings.TrimSpace(os))
	if os == "" {
		os = "unknown"
	}

	data := fmt.Sprintf("%s|%s|%s|%s", browser, majorVersion, os, platform)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
