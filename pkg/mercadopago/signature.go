package mercadopago

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	pkgerrors "github.com/alugafacil/alugafacil-backend/pkg/errors"
)

// SignatureHeader is the parsed form of the x-signature header,
// which arrives as "ts=<unix>,v1=<hex-hmac>".
type SignatureHeader struct {
	TS string
	V1 string
}

// ParseSignatureHeader splits the x-signature header into its parts.
func ParseSignatureHeader(header string) (SignatureHeader, error) {
	var parsed SignatureHeader
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "ts":
			parsed.TS = strings.TrimSpace(value)
		case "v1":
			parsed.V1 = strings.TrimSpace(value)
		}
	}
	if parsed.TS == "" || parsed.V1 == "" {
		return SignatureHeader{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "malformed x-signature header")
	}
	return parsed, nil
}

// VerifySignature checks the webhook HMAC for the given payment id. The
// manifest is "id:<paymentId lowercased>;request-id:<requestID>;ts:<ts>;"
// signed with the shared secret. The comparison is case-insensitive over
// the hex digest.
func VerifySignature(secret, paymentID, requestID, signatureHeader string) error {
	parsed, err := ParseSignatureHeader(signatureHeader)
	if err != nil {
		return err
	}

	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", strings.ToLower(paymentID), requestID, parsed.TS)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(parsed.V1))) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook signature mismatch")
	}
	return nil
}
