package bundle

import (
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-z0-9]+`)

// SuggestedFilename builds the download name for an exported artifact:
// the identity name lowercased with runs of non-alphanumerics collapsed
// to underscores, then the artifact suffix and extension.
//
//	SuggestedFilename("Alex Rivera", "recovery_kit", "json")
//	  -> "alex_rivera_recovery_kit.json"
func SuggestedFilename(identityName, suffix, ext string) string {
	name := strings.ToLower(strings.TrimSpace(identityName))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "identity"
	}
	return name + "_" + suffix + "." + ext
}
