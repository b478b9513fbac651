package chat

import (
	"regexp"
	"strings"

	pkgerrors "github.com/alugafacil/alugafacil-backend/pkg/errors"
)

// MaxMessageLength caps outgoing message size.
const MaxMessageLength = 1000

var (
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	digitRunPattern = regexp.MustCompile(`\d{8,}`)
	urlPattern      = regexp.MustCompile(`(?i)(https?://|www\.)\S+`)
)

// contactKeywords name out-of-band contact channels. Messages mentioning
// them are rejected to keep commerce inside the platform's fee flow.
var contactKeywords = []string{
	"whatsapp",
	"telegram",
	"instagram",
	"facebook",
	"phone",
	"telefone",
	"contato",
	"contact",
	"pix",
	"zap",
}

// FilterMessage applies the outgoing content policy. System messages
// bypass it at the call site, never here.
func FilterMessage(text string) error {
	if strings.TrimSpace(text) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "message is empty")
	}
	if len(text) > MaxMessageLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "message exceeds the maximum length")
	}
	if emailPattern.MatchString(text) {
		return pkgerrors.New(pkgerrors.CodeValidation, "messages may not contain email addresses")
	}
	if digitRunPattern.MatchString(text) {
		return pkgerrors.New(pkgerrors.CodeValidation, "messages may not contain phone numbers")
	}
	if urlPattern.MatchString(text) {
		return pkgerrors.New(pkgerrors.CodeValidation, "messages may not contain links")
	}

	lowered := strings.ToLower(text)
	for _, keyword := range contactKeywords {
		if strings.Contains(lowered, keyword) {
			return pkgerrors.New(pkgerrors.CodeValidation, "messages may not reference outside contact channels")
		}
	}
	return nil
}
