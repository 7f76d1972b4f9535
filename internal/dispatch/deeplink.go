package dispatch

import (
	"net/url"
	"strings"
)

// DeepLink builds the click-to-chat URL that opens a conversation with
// phone and pre-fills text. Spaces are encoded as %20, not '+'.
func DeepLink(baseURL, phone, text string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return strings.TrimRight(baseURL, "/") + "/send?phone=" + phone + "&text=" + encoded
}
