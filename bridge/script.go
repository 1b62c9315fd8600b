package bridge

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// Channel is the name under which the native side receives messages.
	Channel = "LuteBridge"

	ChromeHiddenClass = "lutego-chrome-hidden"
	styleElementID    = "lutego-custom-styles"
)

// jsString renders s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// ThemeClassScript tags the document with the theme class so that styles
// keyed on it apply before first paint.
func ThemeClassScript(class string) string {
	if class == "" {
		return ""
	}
	return fmt.Sprintf(`(function(){var c=%s;var d=document.documentElement;if(d&&!d.classList.contains(c)){d.classList.add(c);}if(document.body&&!document.body.classList.contains(c)){document.body.classList.add(c);}})();`, jsString(class))
}

// InjectCSSScript installs css in a single style element, replacing what an
// earlier call installed.
func InjectCSSScript(css string) string {
	return fmt.Sprintf(`(function(){var id=%s;var s=document.getElementById(id);if(!s){s=document.createElement("style");s.id=id;(document.head||document.documentElement).appendChild(s);}s.textContent=%s;})();`, jsString(styleElementID), jsString(css))
}

// EntryPointsScript defines the functions the page calls to reach the
// native side. Each posts one typed message. token makes repeated
// injections of the same page a no-op.
func EntryPointsScript(token string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `(function(){if(window.__lutegoToken===%s){return;}window.__lutegoToken=%s;`, jsString(token), jsString(token))
	fmt.Fprintf(&b, `var post=function(m){var ch=window[%s];if(ch&&ch.postMessage){ch.postMessage(JSON.stringify(m));}};`, jsString(Channel))
	b.WriteString(`window.lutego={`)
	b.WriteString(fmt.Sprintf(`bookSelected:function(id){post({type:%s,bookId:parseInt(id,10)});},`, jsString(TypeBookSelected)))
	b.WriteString(fmt.Sprintf(`dictionaryTextSelected:function(t){post({type:%s,text:String(t)});},`, jsString(TypeDictionaryTextSelected)))
	b.WriteString(fmt.Sprintf(`chromeToggled:function(h){post({type:%s,hidden:!!h});},`, jsString(TypeChromeToggled)))
	b.WriteString(fmt.Sprintf(`termClicked:function(id,t){post({type:%s,termId:parseInt(id,10),text:String(t)});},`, jsString(TypeTermClicked)))
	b.WriteString(fmt.Sprintf(`pageChanged:function(id,p){post({type:%s,bookId:parseInt(id,10),page:parseInt(p,10)});}`, jsString(TypePageChanged)))
	b.WriteString(`};})();`)
	return b.String()
}

// ChromeStateScript replays the saved title and progress bar visibility.
func ChromeStateScript(hidden bool) string {
	op := "remove"
	if hidden {
		op = "add"
	}
	return fmt.Sprintf(`(function(){var d=document.documentElement;if(d){d.classList.%s(%s);}})();`, op, jsString(ChromeHiddenClass))
}

func joinScripts(scripts ...string) string {
	var parts []string
	for _, s := range scripts {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}
