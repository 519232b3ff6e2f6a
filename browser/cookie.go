package browser

import "github.com/playwright-community/playwright-go"

// Cookie is one browser cookie in the shape the session cache persists:
// name, value, domain, path, and expiry are the contract; the remaining
// attributes ride along so re-injection keeps the browser's original
// semantics.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expiry"`
	HTTPOnly bool    `json:"http_only,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	SameSite string  `json:"same_site,omitempty"`
}

func fromPlaywrightCookies(in []playwright.Cookie) []Cookie {
	out := make([]Cookie, 0, len(in))
	for _, c := range in {
		ck := Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != nil {
			ck.SameSite = string(*c.SameSite)
		}
		out = append(out, ck)
	}
	return out
}

func toOptionalCookies(in []Cookie) []playwright.OptionalCookie {
	out := make([]playwright.OptionalCookie, 0, len(in))
	for _, c := range in {
		oc := playwright.OptionalCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   playwright.String(c.Domain),
			Path:     playwright.String(c.Path),
			HttpOnly: playwright.Bool(c.HTTPOnly),
			Secure:   playwright.Bool(c.Secure),
		}
		// Playwright treats a missing expiry as a session cookie; -1 is its
		// own session-cookie marker and must not be forwarded.
		if c.Expires > 0 {
			oc.Expires = playwright.Float(c.Expires)
		}
		if ss := sameSiteAttribute(c.SameSite); ss != nil {
			oc.SameSite = ss
		}
		out = append(out, oc)
	}
	return out
}

func sameSiteAttribute(v string) *playwright.SameSiteAttribute {
	switch v {
	case "Strict":
		return playwright.SameSiteAttributeStrict
	case "Lax":
		return playwright.SameSiteAttributeLax
	case "None":
		return playwright.SameSiteAttributeNone
	default:
		return nil
	}
}
