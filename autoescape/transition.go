// This file computes the context after a run of literal text, given the
// context it started in. Adapted from html/template's context/transition
// machinery (see CongLeSolutionX-go_community/src/html/template/escape.go),
// generalized to the richer UriPart enumeration this package's context
// tracks and renamed to the package's lower-case field/type style.
package autoescape

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/robfig/soy/ast"
)

// elementContentType classifies elements whose content model is not plain
// PCDATA.
var elementContentType = map[string]elementKind{
	"script":   elementScript,
	"style":    elementStyle,
	"textarea": elementTextarea,
	"title":    elementTitle,
	"listing":  elementListing,
	"xmp":      elementXmp,
}

// voidElements never have a closing tag or body.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// attrTypeMap classifies attributes by name so that their values are
// escaped for the sub-language they embed.
var attrTypeMap = map[string]attrKind{
	"href": attrURL, "src": attrURL, "xlink:href": attrURL, "xml:base": attrURL,
	"action": attrURL, "formaction": attrURL, "icon": attrURL, "manifest": attrURL,
	"poster": attrURL, "data": attrURL, "cite": attrURL, "background": attrURL,
	"longdesc": attrURL, "usemap": attrURL, "profile": attrURL, "codebase": attrURL,
	"style":       attrStyle,
	"http-equiv":  attrMeta,
}

func attrKindFor(name string) attrKind {
	name = strings.ToLower(name)
	if k, ok := attrTypeMap[name]; ok {
		return k
	}
	if strings.HasPrefix(name, "on") {
		return attrScript
	}
	return attrNone
}

// attrStartStates maps an attribute kind to the state entered once its
// value begins (after any opening quote is consumed).
var attrStartStates = [...]state{
	attrNone:    stateAttr,
	attrScript:  stateJS,
	attrStyle:   stateCSS,
	attrURL:     stateURL,
	attrMeta:    stateAttr,
	attrUnknown: stateAttr,
}

func attrStartState(a attrKind) state {
	return attrStartStates[a]
}

// delimEnds maps each delim to the set of characters that terminate it.
var delimEnds = [...]string{
	delimDoubleQuote:   `"`,
	delimSingleQuote:   "'",
	delimSpaceOrTagEnd: " \t\n\f\r>",
}

var doctypeBytes = []byte("<!DOCTYPE")

// escapeText advances c across the entire raw-text node n, returning the
// resulting context. It does not itself insert escaping directives; it only
// infers what context results from literal markup (e.g. entering/leaving a
// <script> element, or matching quotes).
func escapeText(c context, n *ast.RawTextNode) context {
	s, i := n.Text, 0
	for i != len(s) {
		c1, nread := contextAfterText(c, s[i:])
		i1 := i + nread
		if i == i1 && c.state == c1.state {
			panic(fmt.Sprintf("infinite loop from %v to %v on %q..%q", c, c1, s[:i], s[i:]))
		}
		c, i = c1, i1
	}
	return c
}

// contextAfterText starts in context c, consumes some tokens from the front
// of s, then returns the context after those tokens and the unprocessed
// suffix length consumed.
func contextAfterText(c context, s []byte) (context, int) {
	if c.delim == delimNone {
		c1, i := tSpecialTagEnd(c, s)
		if i == 0 {
			// A special end tag (`</script>`) has been seen and all content
			// preceding it has been consumed.
			return c1, 0
		}
		return transitionFunc[c.state](c, s[:i])
	}

	// We are inside a delimited attribute value.
	i := bytes.IndexAny(s, delimEnds[c.delim])
	if i == -1 {
		i = len(s)
	}
	if c.delim == delimSpaceOrTagEnd {
		if j := bytes.IndexAny(s[:i], "\"'<=`"); j >= 0 {
			return context{
				state: stateError,
				err:   errorf(ErrBadHTML, "%q in unquoted attr: %q", s[j:j+1], s[:i]),
			}, len(s)
		}
	}
	if i == len(s) {
		// Remain inside the attribute. Decode entities first so that
		// sub-language rules don't need to special-case token boundaries
		// split by an entity, e.g. <button onclick="alert(&quot;Hi!&quot;)">.
		for u := []byte(html.UnescapeString(string(s))); len(u) != 0; {
			c1, i1 := transitionFunc[c.state](c, u)
			c, u = c1, u[i1:]
		}
		return c, len(s)
	}
	if c.delim != delimSpaceOrTagEnd {
		i++ // consume the closing quote
	}
	// On exiting an attribute, discard all state but the tag-level element.
	return context{state: stateTag, element: c.element}, i
}

// tSpecialTagEnd looks for the end tag that terminates a raw-text or RCDATA
// element (</script>, </style>, </textarea>, </title>, </listing>, </xmp>).
// If found, it returns the post-tag context and 0 (signaling the caller to
// re-enter at stateText with no further bytes consumed from this chunk
// besides what preceded the tag, which has already been scanned by the
// enclosing state's own transition function on a previous call). If no such
// closing tag is found in s, it returns (c, len(s)) to let the state's own
// transition function run over the whole chunk.
func tSpecialTagEnd(c context, s []byte) (context, int) {
	if c.element == elementNone {
		return c, len(s)
	}
	end := "</" + c.element.String()
	i := indexCaseInsensitive(s, end)
	if i == -1 {
		return c, len(s)
	}
	if i != 0 {
		return c, i
	}
	// Consume the end tag itself through the next '>'.
	j := bytes.IndexByte(s, '>')
	if j == -1 {
		return context{state: stateError, err: errorf(ErrBadHTML, "unterminated close tag %q", end)}, len(s)
	}
	return context{state: stateText}, 0
}

func indexCaseInsensitive(s []byte, sub string) int {
	return bytes.Index(bytes.ToLower(s), []byte(strings.ToLower(sub)))
}

// transitionFunc holds, for each state reachable with delim==delimNone (plus
// the states reached while decoding entities inside an attribute value), the
// function that scans a chunk of text and returns the resulting context and
// how many bytes were consumed.
var transitionFunc = map[state]func(context, []byte) (context, int){
	stateText:        tText,
	stateRCDATA:       tText,
	stateTag:          tTag,
	stateAttrName:     tAttrName,
	stateAfterName:    tAfterName,
	stateBeforeValue:  tBeforeValue,
	stateHTMLCmt:      tHTMLCmt,
	stateAttr:         tConsumeAll,
	stateURL:          tURL,
	stateCSS:          tCSS,
	stateCSSDqStr:     tCSSStr('"'),
	stateCSSSqStr:     tCSSStr('\''),
	stateCSSURL:       tURL,
	stateCSSDqURL:     tCSSURLQuoted('"'),
	stateCSSSqURL:     tCSSURLQuoted('\''),
	stateCSSBlockCmt:  tBlockCmt("*/", stateCSS),
	stateCSSLineCmt:   tLineCmt(stateCSS),
	stateJS:           tJS,
	stateJSDqStr:      tJSStr('"'),
	stateJSSqStr:      tJSStr('\''),
	stateJSRegexp:     tJSRegexp,
	stateJSBlockCmt:   tBlockCmt("*/", stateJS),
	stateJSLineCmt:    tLineCmt(stateJS),
}

func tConsumeAll(c context, s []byte) (context, int) { return c, len(s) }

// tText scans PCDATA (or, when c.element != elementNone, RCDATA/raw-text
// content) looking only for the start of a tag.
func tText(c context, s []byte) (context, int) {
	i := bytes.IndexByte(s, '<')
	if i == -1 {
		return c, len(s)
	}
	if bytes.HasPrefix(bytes.ToUpper(s[i:]), doctypeBytes) {
		// Treat <!DOCTYPE as plain text; find the end of the tag.
		j := bytes.IndexByte(s[i:], '>')
		if j == -1 {
			return c, len(s)
		}
		return c, i + j + 1
	}
	rest := s[i+1:]
	switch {
	case len(rest) > 0 && rest[0] == '!':
		if bytes.HasPrefix(rest, []byte("!--")) {
			return context{state: stateHTMLCmt}, i + 4
		}
		// Unrecognized declaration; consume through '>'.
		j := bytes.IndexByte(rest, '>')
		if j == -1 {
			return c, len(s)
		}
		return c, i + 1 + j + 1
	case len(rest) > 0 && rest[0] == '/':
		name, n := scanName(rest[1:])
		if n == 0 {
			return c, i + 1
		}
		_ = name
		j := bytes.IndexByte(rest[1+n:], '>')
		if j == -1 {
			return c, len(s)
		}
		return context{state: stateText}, i + 1 + 1 + n + j + 1
	case len(rest) > 0 && isNameStart(rest[0]):
		name, n := scanName(rest)
		if n == 0 {
			return c, i + 1
		}
		lower := strings.ToLower(name)
		elem := elementContentType[lower]
		if voidElements[lower] {
			elem = elementVoid
		}
		return context{state: stateTag, element: elem}, i + 1 + n
	default:
		return c, i + 1
	}
}

func isNameStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameCont(b byte) bool {
	return isNameStart(b) || (b >= '0' && b <= '9') || b == '-' || b == ':' || b == '.'
}

func scanName(s []byte) (string, int) {
	if len(s) == 0 || !isNameStart(s[0]) {
		return "", 0
	}
	i := 1
	for i < len(s) && isNameCont(s[i]) {
		i++
	}
	return string(s[:i]), i
}

// tTag scans the space between a tag name (or an attribute value) and the
// next attribute name or the end of the tag.
func tTag(c context, s []byte) (context, int) {
	for i, b := range s {
		switch {
		case b == '>':
			if c.element == elementVoid || c.element == elementNone {
				return context{state: stateText}, i + 1
			}
			// RCDATA/raw-text elements enter their special content state.
			switch c.element {
			case elementScript:
				return context{state: stateJS, element: c.element}, i + 1
			case elementStyle:
				return context{state: stateCSS, element: c.element}, i + 1
			case elementTextarea, elementTitle, elementListing, elementXmp:
				return context{state: stateRCDATA, element: c.element}, i + 1
			}
			return context{state: stateText}, i + 1
		case b == '/':
			continue
		case b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f':
			continue
		case isNameStart(b):
			return context{state: stateAttrName, element: c.element}, i
		}
	}
	return c, len(s)
}

// tAttrName scans an attribute name.
func tAttrName(c context, s []byte) (context, int) {
	name, n := scanName(s)
	if n == 0 {
		// Not a name-start byte (e.g. whitespace before the name properly
		// begins, or the tag ended): let tTag's caller re-dispatch.
		return context{state: stateTag, element: c.element}, 0
	}
	kind := attrKindFor(name)
	if bytes.ContainsRune(s[:n], '{') {
		// A dynamic attribute name (e.g. on{$name}=...): cannot be
		// statically classified.
		kind = attrUnknown
	}
	return context{state: stateAfterName, element: c.element, attr: kind}, n
}

// tAfterName scans the space (if any) between an attribute name and its `=`.
func tAfterName(c context, s []byte) (context, int) {
	for i, b := range s {
		switch b {
		case ' ', '\t', '\n', '\r', '\f':
			continue
		case '=':
			return context{state: stateBeforeValue, element: c.element, attr: c.attr}, i + 1
		default:
			// No '=': this was a valueless attribute. Start a new one.
			return context{state: stateTag, element: c.element}, i
		}
	}
	return c, len(s)
}

// tBeforeValue scans the space (if any) between `=` and the value.
func tBeforeValue(c context, s []byte) (context, int) {
	for i, b := range s {
		switch b {
		case ' ', '\t', '\n', '\r', '\f':
			continue
		case '"':
			return context{state: attrStartState(c.attr), delim: delimDoubleQuote, element: c.element, attr: c.attr, urlPart: startURLPart(c.attr)}, i + 1
		case '\'':
			return context{state: attrStartState(c.attr), delim: delimSingleQuote, element: c.element, attr: c.attr, urlPart: startURLPart(c.attr)}, i + 1
		default:
			return context{state: attrStartState(c.attr), delim: delimSpaceOrTagEnd, element: c.element, attr: c.attr, urlPart: startURLPart(c.attr)}, i
		}
	}
	return c, len(s)
}

func startURLPart(a attrKind) urlPart {
	if a == attrURL {
		return urlPartStart
	}
	return urlPartNone
}

func tHTMLCmt(c context, s []byte) (context, int) {
	i := bytes.Index(s, []byte("-->"))
	if i == -1 {
		return c, len(s)
	}
	return context{state: stateText}, i + 3
}

// tURL scans URL text (either inside an href/src-like attribute or a CSS
// url(...) token), advancing urlPart as '?' and '#' are seen.
func tURL(c context, s []byte) (context, int) {
	for i, b := range s {
		switch b {
		case '?':
			if c.urlPart == urlPartStart || c.urlPart == urlPartPreQuery {
				c.urlPart = urlPartQuery
			}
		case '#':
			c.urlPart = urlPartFragment
		case ')':
			if c.state == stateCSSURL {
				return context{state: stateCSS, element: c.element, attr: c.attr}, i + 1
			}
		default:
			if c.urlPart == urlPartStart {
				c.urlPart = urlPartPreQuery
			}
		}
		_ = i
	}
	return c, len(s)
}

func tCSS(c context, s []byte) (context, int) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			return context{state: stateCSSDqStr, element: c.element, attr: c.attr}, i + 1
		case '\'':
			return context{state: stateCSSSqStr, element: c.element, attr: c.attr}, i + 1
		case '/':
			if i+1 < len(s) && s[i+1] == '*' {
				return context{state: stateCSSBlockCmt, element: c.element, attr: c.attr}, i + 2
			}
			if i+1 < len(s) && s[i+1] == '/' {
				return context{state: stateCSSLineCmt, element: c.element, attr: c.attr}, i + 2
			}
		}
		if bytes.HasPrefix(s[i:], []byte("url(")) || bytes.HasPrefix(s[i:], []byte("Url(")) || bytes.HasPrefix(s[i:], []byte("URL(")) {
			j := i + 4
			for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
				j++
			}
			switch {
			case j < len(s) && s[j] == '"':
				return context{state: stateCSSDqURL, element: c.element, attr: c.attr, urlPart: urlPartStart}, j + 1
			case j < len(s) && s[j] == '\'':
				return context{state: stateCSSSqURL, element: c.element, attr: c.attr, urlPart: urlPartStart}, j + 1
			default:
				return context{state: stateCSSURL, element: c.element, attr: c.attr, urlPart: urlPartStart}, j
			}
		}
	}
	return c, len(s)
}

func tCSSStr(quote byte) func(context, []byte) (context, int) {
	return func(c context, s []byte) (context, int) {
		for i := 0; i < len(s); i++ {
			switch s[i] {
			case '\\':
				i++ // skip escaped char
			case quote:
				return context{state: stateCSS, element: c.element, attr: c.attr}, i + 1
			}
		}
		return c, len(s)
	}
}

func tCSSURLQuoted(quote byte) func(context, []byte) (context, int) {
	return func(c context, s []byte) (context, int) {
		for i := 0; i < len(s); i++ {
			switch s[i] {
			case '?':
				if c.urlPart == urlPartStart {
					c.urlPart = urlPartPreQuery
				}
			case quote:
				return context{state: stateCSS, element: c.element, attr: c.attr}, i + 1
			default:
				if c.urlPart == urlPartStart {
					c.urlPart = urlPartPreQuery
				}
			}
		}
		return c, len(s)
	}
}

func tBlockCmt(end string, returnTo state) func(context, []byte) (context, int) {
	return func(c context, s []byte) (context, int) {
		i := bytes.Index(s, []byte(end))
		if i == -1 {
			return c, len(s)
		}
		return context{state: returnTo, element: c.element, attr: c.attr}, i + len(end)
	}
}

func tLineCmt(returnTo state) func(context, []byte) (context, int) {
	return func(c context, s []byte) (context, int) {
		i := bytes.IndexAny(s, "\n\r")
		if i == -1 {
			return c, len(s)
		}
		return context{state: returnTo, element: c.element, attr: c.attr}, i
	}
}

func tJS(c context, s []byte) (context, int) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			return context{state: stateJSDqStr, element: c.element, attr: c.attr}, i + 1
		case '\'':
			return context{state: stateJSSqStr, element: c.element, attr: c.attr}, i + 1
		case '/':
			if i+1 < len(s) && s[i+1] == '*' {
				return context{state: stateJSBlockCmt, element: c.element, attr: c.attr}, i + 2
			}
			if i+1 < len(s) && s[i+1] == '/' {
				return context{state: stateJSLineCmt, element: c.element, attr: c.attr}, i + 2
			}
			switch c.jsSlash {
			case jsSlashRegex:
				return context{state: stateJSRegexp, element: c.element, attr: c.attr}, i + 1
			case jsSlashDivOp:
				continue
			default:
				return context{
					state: stateError,
					err:   errorf(ErrAmbiguousJsSlash, "'/' could be a regex or division in ambiguous JS context; disambiguate with parens or a preceding value"),
				}, len(s)
			}
		}
	}
	return c, len(s)
}

func tJSStr(quote byte) func(context, []byte) (context, int) {
	return func(c context, s []byte) (context, int) {
		for i := 0; i < len(s); i++ {
			switch s[i] {
			case '\\':
				i++
			case quote:
				return context{state: stateJS, element: c.element, attr: c.attr, jsSlash: jsSlashDivOp}, i + 1
			}
		}
		return c, len(s)
	}
}

func tJSRegexp(c context, s []byte) (context, int) {
	inCharClass := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '[':
			inCharClass = true
		case ']':
			inCharClass = false
		case '/':
			if !inCharClass {
				return context{state: stateJS, element: c.element, attr: c.attr, jsSlash: jsSlashDivOp}, i + 1
			}
		}
	}
	return c, len(s)
}
