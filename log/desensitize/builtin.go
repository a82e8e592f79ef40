package desensitize

const mask = "******"

var (
	// AuthorizationRule masks the Authorization header value
	AuthorizationRule = MustNewFieldRule("authorization", "Authorization", mask)

	// ProxyAuthorizationRule masks the Proxy-Authorization header value
	ProxyAuthorizationRule = MustNewFieldRule("proxy-authorization", "Proxy-Authorization", mask)

	// CookieRule masks request cookies
	CookieRule = MustNewFieldRule("cookie", "Cookie", mask)

	// SetCookieRule masks cookies set by the server
	SetCookieRule = MustNewFieldRule("set-cookie", "Set-Cookie", mask)

	// APIKeyRule masks the conventional X-Api-Key header
	APIKeyRule = MustNewFieldRule("api-key", "X-Api-Key", mask)

	// BearerRule masks bearer tokens that end up in free text such as error messages
	BearerRule = MustNewContentRule("bearer", `(?i)(bearer\s+)[A-Za-z0-9\-._~+/]+=*`, "${1}"+mask)
)

// BuiltinRules returns the rules covering credentials carried in HTTP headers
func BuiltinRules() []Rule {
	return []Rule{
		AuthorizationRule,
		ProxyAuthorizationRule,
		CookieRule,
		SetCookieRule,
		APIKeyRule,
		BearerRule,
	}
}
