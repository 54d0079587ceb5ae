package shelters

import "strings"

const (
	ConfigUserAgentKey      = "user_agent"
	ConfigAcceptLanguageKey = "accept_language"
	ConfigHeadersKey        = "headers"
	ConfigSessionCookieKey  = "session_cookie"
)

// ConfigString returns the trimmed string value for key from the shelter config or a fallback.
func ConfigString(s Shelter, key, fallback string) string {
	if raw, ok := s.Config[key]; ok {
		if val, ok := raw.(string); ok {
			if trimmed := strings.TrimSpace(val); trimmed != "" {
				return trimmed
			}
		}
	}
	return fallback
}

// Headers builds the extra request headers sent to a shelter (skips empty values).
// Free-form entries under "headers" win over the named keys.
func Headers(s Shelter) map[string]string {
	headers := make(map[string]string)

	if v := ConfigString(s, ConfigUserAgentKey, ""); v != "" {
		headers["User-Agent"] = v
	}
	if v := ConfigString(s, ConfigAcceptLanguageKey, ""); v != "" {
		headers["Accept-Language"] = v
	}

	// yaml.v3 decodes nested maps as map[string]any, encoding/json likewise.
	if extra, ok := s.Config[ConfigHeadersKey].(map[string]any); ok {
		for k, raw := range extra {
			key := strings.TrimSpace(k)
			val, _ := raw.(string)
			val = strings.TrimSpace(val)
			if key == "" || val == "" {
				continue
			}
			headers[key] = val
		}
	}

	if len(headers) == 0 {
		return nil
	}
	return headers
}

// SessionCookie returns the shelter-specific session cookie value, or fallback.
func SessionCookie(s Shelter, fallback string) string {
	return ConfigString(s, ConfigSessionCookieKey, fallback)
}
