package authflow

import "net/url"

// FlowKind classifies how the current page load was reached. It is a closed
// set so the bootstrapper's decision table can be exhaustive.
type FlowKind int

const (
	FlowNone FlowKind = iota
	FlowRecovery
	FlowInvite
	FlowMagicLink
	FlowAuthCode
)

func (k FlowKind) String() string {
	switch k {
	case FlowRecovery:
		return "recovery"
	case FlowInvite:
		return "invite"
	case FlowMagicLink:
		return "magiclink"
	case FlowAuthCode:
		return "authorization-code"
	default:
		return "none"
	}
}

// Context is the URL-derived ground truth for one page load. It must be
// computed synchronously, before any platform call: the platform's own
// session events arrive later and, for an invite or recovery link, the first
// one is indistinguishable from an ordinary "already signed in" event.
// Once computed it is treated as immutable.
type Context struct {
	Kind         FlowKind
	AccessToken  string
	RefreshToken string
	Code         string
}

// RequiresPassword reports whether this flow must terminate on the
// set-a-new-password screen no matter what session state exists.
func (c Context) RequiresPassword() bool {
	return c.Kind == FlowRecovery || c.Kind == FlowInvite
}

// Detect classifies a page URL from its query string and fragment.
// First match wins:
//
//	type=recovery|invite|magiclink + any token material -> that flow
//	bare authorization `code` query parameter           -> authorization-code
//	anything else                                       -> none
func Detect(u *url.URL) Context {
	query := u.Query()
	frag, _ := url.ParseQuery(u.Fragment)

	ctx := Context{
		AccessToken:  frag.Get("access_token"),
		RefreshToken: frag.Get("refresh_token"),
		Code:         query.Get("code"),
	}

	typ := frag.Get("type")
	if typ == "" {
		typ = query.Get("type")
	}
	hasTokenMaterial := ctx.AccessToken != "" || ctx.Code != "" ||
		query.Get("token") != "" || frag.Get("token") != ""

	if hasTokenMaterial {
		switch typ {
		case "recovery":
			ctx.Kind = FlowRecovery
			return ctx
		case "invite":
			ctx.Kind = FlowInvite
			return ctx
		case "magiclink":
			ctx.Kind = FlowMagicLink
			return ctx
		}
	}

	if ctx.Code != "" && typ == "" {
		ctx.Kind = FlowAuthCode
		return ctx
	}

	ctx.Kind = FlowNone
	return ctx
}

// CleanURL returns u with the consumed auth parameters removed so a reload
// does not replay the flow. Unrelated query parameters survive; the fragment
// is dropped only when it carried token material. An authorization code that
// was never successfully exchanged stays in place, along with its type
// marker, so a reload can retry the exchange under the same flow.
func CleanURL(u *url.URL, flow Context, codeExchanged bool) *url.URL {
	clean := *u
	query := clean.Query()
	if flow.Code == "" || codeExchanged {
		query.Del("code")
		query.Del("type")
	}
	query.Del("token")
	clean.RawQuery = query.Encode()

	if flow.AccessToken != "" || flow.RefreshToken != "" {
		clean.Fragment = ""
		clean.RawFragment = ""
	}
	return &clean
}
