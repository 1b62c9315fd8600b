package dict

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const strippedElements = "script, style, iframe, object, embed, noscript, frame, frameset, meta[http-equiv]"

var (
	adName = regexp.MustCompile(`(?i)(^|[-_\s])(ad|ads|adv|advert|adverts|advertisement|adsbygoogle|adslot|adunit|banner-ad|sponsor|sponsored|promo|tracker|tracking|doubleclick|outbrain|taboola|dfp|gpt)([-_\s\d]|$)`)
	adHost = regexp.MustCompile(`(?i)(doubleclick\.net|googlesyndication\.com|googleadservices\.com|google-analytics\.com|googletagmanager\.com|adservice\.google\.|amazon-adsystem\.com|adnxs\.com|taboola\.com|outbrain\.com|scorecardresearch\.com|quantserve\.com|criteo\.(com|net)|facebook\.com/tr)`)
)

var keepAlways = map[string]bool{"html": true, "head": true, "body": true}

// Sanitizer strips executable content, ads and trackers from fetched
// dictionary pages. Sanitize(Sanitize(x)) == Sanitize(x).
type Sanitizer struct{}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// Sanitize returns the cleaned markup. Fragments stay fragments; full
// documents are returned as full documents.
func (s *Sanitizer) Sanitize(page string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return ""
	}

	doc.Find(strippedElements).Remove()

	doc.Find("[class], [id]").Each(func(_ int, sel *goquery.Selection) {
		class, _ := sel.Attr("class")
		id, _ := sel.Attr("id")
		if keepAlways[goquery.NodeName(sel)] {
			return
		}
		if isAdName(class) || isAdName(id) {
			sel.Remove()
		}
	})

	doc.Find("img, a, link, source, video, audio").Each(func(_ int, sel *goquery.Selection) {
		for _, name := range []string{"src", "href", "srcset"} {
			if v, ok := sel.Attr(name); ok && adHost.MatchString(v) {
				sel.Remove()
				return
			}
		}
	})

	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		for _, n := range sel.Nodes {
			stripAttrs(n)
		}
	})

	var out string
	if isFullDocument(page) {
		out, err = goquery.OuterHtml(doc.Selection.Children())
	} else {
		out, err = doc.Find("body").Html()
	}
	if err != nil {
		return ""
	}
	return out
}

func isAdName(v string) bool {
	for _, token := range strings.Fields(v) {
		if adName.MatchString(token) {
			return true
		}
	}
	return false
}

// stripAttrs drops inline event handlers and javascript: urls.
func stripAttrs(n *html.Node) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		if strings.HasPrefix(key, "on") {
			continue
		}
		if (key == "href" || key == "src") && strings.HasPrefix(strings.ToLower(strings.TrimSpace(a.Val)), "javascript:") {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

func isFullDocument(page string) bool {
	head := strings.ToLower(page)
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype")
}
