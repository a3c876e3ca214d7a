// Package autoescape provides template rewriters that apply escaping rules.
package autoescape

import (
	"fmt"

	"github.com/robfig/soy/ast"
	"github.com/robfig/soy/data"
	"github.com/robfig/soy/soyhtml"
	"github.com/robfig/soy/template"
)

// Strict rewrites every strict or contextual template in the given registry
// to add contextually-appropriate escaping directives to all print
// commands, and clones templates that are called from a context other than
// plain HTML text so that each call site gets the escaping it needs.
//
// Instead of specifying an escaping routine to use for a dynamic value,
// specify the "kind" of the data (text, html, css, uri, js, attributes) and
// the correct escaping routines are chosen for the kind of data and the
// context it is used in.
//
// NOTE: There are some differences in the escaping behavior from the
// official implementation. Roughly, this implementation is a little more
// conservative. Here is a partial list
//
//  +----------------+------+-----------+---------+
//  | Context        | From | To (Java) | To (Go) |
//  +----------------+------+-----------+---------+
//  | Attributes     | '    | '         | &#39;   |
//  | JS             | <    | &lt;      | \u003c  |
//  | JS             | >    | &gt;      | \u003e  |
//  | JS String      | /    | /         | \/      |
//  | JS String      | '    | \'        | \x27    |
//  | JS String      | "    | \"        | \x22    |
//  +----------------+------+-----------+---------+
//
func Strict(reg *template.Registry) (err error) {
	defer func() {
		if e := recover(); e != nil {
			if typed, ok := e.(*Error); ok {
				err = typed
				return
			}
			err = fmt.Errorf("%v", e)
		}
	}()

	if serr := sanityCheck(reg); serr != nil {
		return serr
	}

	var eng = &engine{registry: reg, inferences: newInferences(reg)}
	var cl = newCloner(eng, reg)
	eng.cloner = cl

	var graph = newCallGraph(reg)
	for _, root := range graph.roots() {
		mode := effectiveMode(root.Namespace.Autoescape, root.Node.Autoescape)
		if mode != ast.AutoescapeStrict && mode != ast.AutoescapeContextual {
			continue
		}
		var start = context{state: stateText}
		if root.Node.Kind != "" {
			start = context{state: startStateForKind(kind(root.Node.Kind))}
		}
		cl.endContextFor(root, start)
	}

	return nil
}

func startStateForKind(kind kind) state {
	switch kind {
	case kindCSS:
		return stateCSS
	case kindNone, kindHTML:
		return stateText
	case kindAttr:
		return stateTag
	case kindJS:
		return stateJS
	case kindURL:
		return stateURL
	case kindText:
		// Escaping is disabled for kind="text"; there is no sub-language to
		// track, so treat it like plain text for context purposes.
		return stateText
	default:
		return stateText
	}
}

// funcMap maps escaping-directive names to the functions that render their
// inputs safe in the context the catalogue chose them for.
var funcMap = map[string]func(value data.Value, args []data.Value) data.Value{
	"escapeHtmlAttribute":        attrEscaper,
	"escapeHtmlAttributeNospace": htmlNospaceEscaper,
	"escapeCssString":            cssEscaper,
	"filterCssValue":             cssValueFilter,
	"filterHtmlElementName":      htmlNameFilter,
	"filterHtmlAttributes":       htmlAttributesFilter,
	"escapeHtml":                 htmlEscaper,
	"escapeHtmlRcdata":           rcdataEscaper,
	"escapeJsRegex":              jsRegexpEscaper,
	"escapeJsString":             jsStrEscaper,
	"escapeJsValue":              jsValEscaper,
	"escapeUri":                  urlEscaper,
	"filterNormalizeUri":         urlFilterNormalizer,
	"normalizeUri":               urlNormalizer,
	"commentEscaper":             commentEscaper,
}

func init() {
	for k, v := range funcMap {
		soyhtml.PrintDirectives[k] = soyhtml.PrintDirective{Apply: v, ValidArgLengths: []int{0}, CancelAutoescape: true}
	}
}

// filterFailsafe is an innocuous word that is emitted in place of unsafe
// values by sanitizer functions. It is not a keyword in any programming
// language, contains no special characters, is not empty, and when it
// appears in output it is distinct enough that a developer can find the
// source of the problem via a search engine.
const filterFailsafe = data.String("zSoyz")
