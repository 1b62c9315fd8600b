package model

import (
	"net/url"
	"path"
	"strings"
)

// TermPlaceholder is replaced with the encoded search term in dictionary URLs.
const TermPlaceholder = "[LUTE]"

const defaultDictionaryName = "Dictionary"

type DictionaryUse string

const (
	UseTerms     DictionaryUse = "terms"
	UseSentences DictionaryUse = "sentences"
)

type DictionarySource string

const (
	SourceInternal DictionarySource = "internal"
	SourceExternal DictionarySource = "external"
	SourceOffline  DictionarySource = "offline"
)

// DictionaryInfo is one configured dictionary for a language.
type DictionaryInfo struct {
	URL    string
	UseFor DictionaryUse
	Active bool
	// Popup is true for sources the server marks as popup-only; they are
	// opened externally instead of being embedded.
	Popup bool
}

func NewDictionaryInfo(rawURL string, use DictionaryUse, active bool) DictionaryInfo {
	if use != UseSentences {
		use = UseTerms
	}
	return DictionaryInfo{URL: strings.TrimSpace(rawURL), UseFor: use, Active: active}
}

func (d DictionaryInfo) Source() DictionarySource {
	u := strings.ToLower(d.URL)
	switch {
	case strings.HasPrefix(u, "http://"), strings.HasPrefix(u, "https://"), strings.HasPrefix(u, "//"):
		return SourceExternal
	case strings.HasPrefix(u, "file:"), strings.HasPrefix(u, "content:"):
		return SourceOffline
	default:
		return SourceInternal
	}
}

// DisplayName is the host for web sources (without a leading "www.") and
// the file name for everything else. It never returns "".
func (d DictionaryInfo) DisplayName() string {
	raw := strings.ReplaceAll(d.URL, TermPlaceholder, "")
	if raw == "" {
		return defaultDictionaryName
	}
	if d.Source() == SourceExternal {
		if strings.HasPrefix(raw, "//") {
			raw = "https:" + raw
		}
		u, err := url.Parse(raw)
		if err != nil || u.Hostname() == "" {
			return defaultDictionaryName
		}
		return strings.TrimPrefix(u.Hostname(), "www.")
	}
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	name := path.Base(strings.TrimRight(p, "/"))
	if ext := path.Ext(name); ext != "" && ext != name {
		name = strings.TrimSuffix(name, ext)
	}
	if name == "" || name == "." || name == "/" {
		return defaultDictionaryName
	}
	return name
}

// EncodeTerm percent-encodes a term the way encodeURIComponent does.
func EncodeTerm(term string) string {
	return strings.ReplaceAll(url.QueryEscape(term), "+", "%20")
}

// LookupURL substitutes the term into the template. Server-relative
// templates are resolved against serverURL.
func (d DictionaryInfo) LookupURL(term, serverURL string) (string, error) {
	raw := strings.ReplaceAll(d.URL, TermPlaceholder, EncodeTerm(term))
	if d.Source() != SourceInternal {
		if strings.HasPrefix(raw, "//") {
			raw = "https:" + raw
		}
		return raw, nil
	}
	base, err := url.Parse(serverURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// TermDictionaries returns the active term-lookup dictionaries in order.
func TermDictionaries(all []DictionaryInfo) []DictionaryInfo {
	var out []DictionaryInfo
	for _, d := range all {
		if d.Active && d.UseFor == UseTerms && d.URL != "" {
			out = append(out, d)
		}
	}
	return out
}
