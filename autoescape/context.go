package autoescape

import "fmt"

// state identifies the part of an HTML document or embedded language that a
// context is positioned in.
type state uint8

const (
	// stateText is parsed character data outside any tag. This is HtmlPcdata
	// in spec terms.
	stateText state = iota
	// stateRCDATA is text inside a <title>, <textarea>, and similar elements
	// where the text is rendered but tags are not recognized
	// (HtmlRcdata(ElementKind)).
	stateRCDATA
	// stateTag occurs before an HTML attribute or the end of a tag, e.g. in
	// `<a {{if .}}href="foo"{{end}}>`.
	stateTag
	// stateAttrName occurs inside an attribute name.
	stateAttrName
	// stateAfterName occurs after an attr name ends but before an `=`.
	stateAfterName
	// stateBeforeValue occurs after the `=` sign but before the value.
	stateBeforeValue
	// stateHTMLCmt occurs inside an `<!--...-->` comment.
	stateHTMLCmt
	// stateAttr occurs inside an attribute value delimited by quotes or space
	// where the value is not treated as a special sub-language (Css/Js/Url).
	stateAttr
	// stateCSS occurs in a <style> element or style attribute.
	stateCSS
	stateCSSDqStr
	stateCSSSqStr
	stateCSSURL
	stateCSSDqURL
	stateCSSSqURL
	stateCSSBlockCmt
	stateCSSLineCmt
	// stateJS occurs inside a <script> element or inline event handler.
	stateJS
	stateJSDqStr
	stateJSSqStr
	stateJSRegexp
	stateJSBlockCmt
	stateJSLineCmt
	// stateURL occurs inside a URL-typed attribute (href, src, ...).
	stateURL
	// stateError is a sink state once an irrecoverable problem is found.
	stateError
)

func (s state) String() string {
	switch s {
	case stateText:
		return "text"
	case stateRCDATA:
		return "RCDATA"
	case stateTag:
		return "tag"
	case stateAttrName:
		return "attrName"
	case stateAfterName:
		return "afterName"
	case stateBeforeValue:
		return "beforeValue"
	case stateHTMLCmt:
		return "HTMLCmt"
	case stateAttr:
		return "attr"
	case stateCSS:
		return "CSS"
	case stateCSSDqStr:
		return "CSSDqStr"
	case stateCSSSqStr:
		return "CSSSqStr"
	case stateCSSURL:
		return "CSSURL"
	case stateCSSDqURL:
		return "CSSDqURL"
	case stateCSSSqURL:
		return "CSSSqURL"
	case stateCSSBlockCmt:
		return "CSSBlockCmt"
	case stateCSSLineCmt:
		return "CSSLineCmt"
	case stateJS:
		return "JS"
	case stateJSDqStr:
		return "JSDqStr"
	case stateJSSqStr:
		return "JSSqStr"
	case stateJSRegexp:
		return "JSRegexp"
	case stateJSBlockCmt:
		return "JSBlockCmt"
	case stateJSLineCmt:
		return "JSLineCmt"
	case stateURL:
		return "URL"
	case stateError:
		return "error"
	}
	return "state(?)"
}

// isComment reports whether s is one of the non-HTML-text comment states.
func isComment(s state) bool {
	switch s {
	case stateHTMLCmt, stateCSSBlockCmt, stateCSSLineCmt, stateJSBlockCmt, stateJSLineCmt:
		return true
	}
	return false
}

// isInTag reports whether s occurs somewhere between `<tagname` and the `>`
// that closes it, including inside attribute values.
func isInTag(s state) bool {
	switch s {
	case stateTag, stateAttrName, stateAfterName, stateBeforeValue, stateAttr,
		stateCSS, stateCSSDqStr, stateCSSSqStr, stateCSSURL, stateCSSDqURL, stateCSSSqURL,
		stateCSSBlockCmt, stateCSSLineCmt,
		stateJS, stateJSDqStr, stateJSSqStr, stateJSRegexp, stateJSBlockCmt, stateJSLineCmt,
		stateURL:
		return true
	}
	return false
}

// delim identifies the quoting convention in effect for an attribute value.
type delim uint8

const (
	delimNone delim = iota
	delimDoubleQuote
	delimSingleQuote
	delimSpaceOrTagEnd
)

func (d delim) String() string {
	switch d {
	case delimNone:
		return "none"
	case delimDoubleQuote:
		return "\""
	case delimSingleQuote:
		return "'"
	case delimSpaceOrTagEnd:
		return "spaceOrTagEnd"
	}
	return "delim(?)"
}

// elementKind distinguishes elements whose content model is special.
type elementKind uint8

const (
	elementNone elementKind = iota
	elementScript
	elementStyle
	elementTextarea
	elementTitle
	elementListing
	elementXmp
	elementVoid
	// elementUnknown is used when an element's name contains an
	// interpolation and so cannot be statically classified.
	elementUnknown
)

func (e elementKind) String() string {
	switch e {
	case elementNone:
		return ""
	case elementScript:
		return "script"
	case elementStyle:
		return "style"
	case elementTextarea:
		return "textarea"
	case elementTitle:
		return "title"
	case elementListing:
		return "listing"
	case elementXmp:
		return "xmp"
	case elementVoid:
		return "void"
	case elementUnknown:
		return "unknown"
	}
	return "element(?)"
}

// attrKind classifies an attribute so that values can be escaped according
// to the sub-language they hold.
type attrKind uint8

const (
	attrNone attrKind = iota
	attrScript
	attrStyle
	attrURL
	attrMeta
	// attrUnknown is used when an attribute's name contains an
	// interpolation and so cannot be statically classified.
	attrUnknown
)

func (a attrKind) String() string {
	switch a {
	case attrNone:
		return "plaintext"
	case attrScript:
		return "script"
	case attrStyle:
		return "style"
	case attrURL:
		return "url"
	case attrMeta:
		return "meta"
	case attrUnknown:
		return "unknown"
	}
	return "attr(?)"
}

// urlPart tracks how far into a URL value we are, so that query/fragment
// characters get query-appropriate escaping instead of path escaping.
type urlPart uint8

const (
	urlPartNone urlPart = iota
	urlPartStart
	urlPartPreQuery
	urlPartQuery
	urlPartFragment
	urlPartUnknownPreFragment
	urlPartUnknown
	urlPartMaybeVariableScheme
	urlPartMaybeSchemePart
)

func (u urlPart) String() string {
	switch u {
	case urlPartNone:
		return "none"
	case urlPartStart:
		return "start"
	case urlPartPreQuery:
		return "preQuery"
	case urlPartQuery:
		return "query"
	case urlPartFragment:
		return "fragment"
	case urlPartUnknownPreFragment:
		return "unknownPreFragment"
	case urlPartUnknown:
		return "unknown"
	case urlPartMaybeVariableScheme:
		return "maybeVariableScheme"
	case urlPartMaybeSchemePart:
		return "maybeSchemePart"
	}
	return "urlPart(?)"
}

// jsSlash disambiguates whether the next `/` token starts a regular
// expression literal or is a division operator.
type jsSlash uint8

const (
	jsSlashNone jsSlash = iota
	jsSlashRegex
	jsSlashDivOp
	jsSlashUnknown
)

func (j jsSlash) String() string {
	switch j {
	case jsSlashNone:
		return "none"
	case jsSlashRegex:
		return "regex"
	case jsSlashDivOp:
		return "divOp"
	case jsSlashUnknown:
		return "unknown"
	}
	return "jsSlash(?)"
}

// context is the tuple describing the lexical state of the output stream at
// a single point in a template. It is a plain value: two contexts are
// interchangeable whenever all their fields compare equal.
type context struct {
	state   state
	delim   delim
	element elementKind
	attr    attrKind
	urlPart urlPart
	jsSlash jsSlash
	err     *Error
}

func (c context) String() string {
	return fmt.Sprintf("{state=%v delim=%v element=%v attr=%v urlPart=%v jsSlash=%v}",
		c.state, c.delim, c.element, c.attr, c.urlPart, c.jsSlash)
}

// eq reports whether c and d describe the same lexical position. Error
// contexts are never equal to anything, including another error context,
// mirroring that two failures are not interchangeable states.
func (c context) eq(d context) bool {
	if c.state == stateError || d.state == stateError {
		return false
	}
	return c.state == d.state && c.delim == d.delim && c.element == d.element &&
		c.attr == d.attr && c.urlPart == d.urlPart && c.jsSlash == d.jsSlash
}

// joinContext computes the context that results from two branches of
// control flow (the arms of an {if}/{switch}, or a loop's {ifempty} branch
// and the loop's start) converging. Fields that disagree are widened when a
// widening is defined; otherwise join fails, using mkErr to build the
// reported error.
func joinContext(a, b context, mkErr func(code ErrorCode, format string, args ...interface{}) *Error) context {
	if a.state == stateError {
		return a
	}
	if b.state == stateError {
		return b
	}
	if a.eq(b) {
		return a
	}
	if a.state != b.state || a.delim != b.delim || a.element != b.element || a.attr != b.attr {
		return context{
			state: stateError,
			err:   mkErr(ErrAmbiguousBranches, "branches end in different contexts: %v, %v", a, b),
		}
	}

	widened := a
	if a.urlPart != b.urlPart {
		widened.urlPart = widenURLPart(a.urlPart, b.urlPart)
	}
	if a.jsSlash != b.jsSlash {
		widened.jsSlash = jsSlashUnknown
	}
	return widened
}

// widenURLPart implements the ladder described in DESIGN.md: PreQuery/Query
// widen to UnknownPreFragment (more of the URL, including a fragment, may
// yet be seen); anything wider, or a Fragment disagreeing with anything
// before the fragment, widens all the way to Unknown.
func widenURLPart(a, b urlPart) urlPart {
	if a == b {
		return a
	}
	lo, hi := a, b
	if lo == urlPartPreQuery && hi == urlPartQuery || lo == urlPartQuery && hi == urlPartPreQuery {
		return urlPartUnknownPreFragment
	}
	set := map[urlPart]bool{a: true, b: true}
	onlyPreFragment := true
	for p := range set {
		switch p {
		case urlPartStart, urlPartPreQuery, urlPartQuery, urlPartUnknownPreFragment:
		default:
			onlyPreFragment = false
		}
	}
	if onlyPreFragment {
		return urlPartUnknownPreFragment
	}
	return urlPartUnknown
}
