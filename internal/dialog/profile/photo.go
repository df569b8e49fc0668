package profile

import (
	"net/url"
	"strings"
)

// PhotoKind tags where the draft's avatar comes from.
type PhotoKind int

const (
	PhotoNone PhotoKind = iota
	PhotoExternal
	PhotoUploaded
)

func (k PhotoKind) String() string {
	switch k {
	case PhotoExternal:
		return "external"
	case PhotoUploaded:
		return "uploaded"
	default:
		return "none"
	}
}

// PhotoSource is the draft avatar. URL is empty for PhotoNone.
type PhotoSource struct {
	Kind PhotoKind
	URL  string
}

// DefaultExternalHosts are identity-provider photo hosts (Google sign-in avatars).
var DefaultExternalHosts = []string{"googleusercontent.com"}

// ClassifyPhoto tags an existing avatar URL. Photos served from an identity provider host,
// or a subdomain of one, are External; any other URL was uploaded by the user.
func ClassifyPhoto(raw string, externalHosts []string) PhotoSource {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PhotoSource{}
	}
	if u, err := url.Parse(raw); err == nil {
		host := strings.ToLower(u.Hostname())
		for _, h := range externalHosts {
			h = strings.ToLower(strings.TrimPrefix(h, "."))
			if host == h || strings.HasSuffix(host, "."+h) {
				return PhotoSource{Kind: PhotoExternal, URL: raw}
			}
		}
	}
	return PhotoSource{Kind: PhotoUploaded, URL: raw}
}
