package redact

// Builtin rules for the credential shapes the trust core handles. A bearer
// token keeps its header segment so operators can still see the algorithm;
// hex identifiers keep a 6-character prefix for correlation.
var (
	// BearerToken masks the payload and signature segments of a JWT-shaped token
	BearerToken = MustNewRule(
		"bearer_token",
		`\beyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*`,
		"eyJ***.***",
	)

	// HexSignature masks 64-character hex strings (HMAC-SHA256 cookie signatures)
	HexSignature = MustNewRule(
		"hex_signature",
		`\b[a-f0-9]{64}\b`,
		"****",
	)

	// SessionID shortens 32-character hex session identifiers to a prefix
	SessionID = MustNewRule(
		"session_id",
		`\b([a-f0-9]{6})[a-f0-9]{26}\b`,
		"$1****",
	)
)

// Credentials returns a hook preloaded with every builtin rule
func Credentials() *Hook {
	h := NewHook()
	h.AddRule(BearerToken, HexSignature, SessionID)
	return h
}
