package autoescape

import (
	"github.com/robfig/soy/ast"
	"github.com/robfig/soy/template"
)

type engine struct {
	registry            *template.Registry
	inferences          *inferences
	cloner              *cloner
	currentTemplateName string
	currentTemplate     *template.Template
}

// raise panics with a located *Error; the panic is recovered by Strict.
func (e *engine) raise(code ErrorCode, node ast.Node, f string, args ...interface{}) {
	err := errorf(code, f, args...)
	err.Name = e.currentTemplateName
	if e.registry != nil && node != nil {
		err.Line = e.registry.LineNumber(e.currentTemplateName, node)
	}
	panic(err)
}

func (e *engine) infer(node ast.Node, start context) (end context) {
	return e.walk(node, start)
}

func (e *engine) walk(node ast.Node, start context) (end context) {
	var ctx = start
	switch node := node.(type) {
	case *ast.TemplateNode:
		e.currentTemplateName = node.Name
		e.currentTemplate = e.registry.Template(node.Name)
		if node.Kind != "" {
			if !isValidStartContextForKind(kind(node.Kind), ctx) {
				e.raise(ErrIncompatibleCallKind, node,
					"template %s declared kind %v but called in context %v", node.Name, node.Kind, ctx)
			}
			ctx = context{state: startStateForKind(kind(node.Kind))}
		}
		ctx = e.walk(node.Body, ctx)
		if node.Kind != "" && !isValidEndContextForKind(kind(node.Kind), ctx) {
			e.raise(ErrStrictBlockBadEnd, node, "template %s of kind %v ends in context %v: %s",
				node.Name, node.Kind, ctx.state, likelyEndContextMismatchCause(kind(node.Kind), ctx))
		}
		return ctx

	case *ast.RawTextNode:
		ctx = escapeText(ctx, node)
		if ctx.state == stateError {
			e.raise(ErrBadHTML, node, "starting in %v, failed to compute output context for raw text: %s",
				start.state, node.Text)
		}
		return ctx

	case *ast.LiteralNode:
		ctx = escapeText(ctx, &ast.RawTextNode{Pos: node.Pos, Text: []byte(node.Body)})
		if ctx.state == stateError {
			e.raise(ErrBadHTML, node, "starting in %v, failed to compute output context for {literal}", start.state)
		}
		return ctx

	case *ast.PrintNode:
		ctx = ctx.beforeDynamicValue()
		for _, d := range node.Directives {
			if cancelsAutoescape(d.Name) {
				return ctx
			}
		}
		var escapingModes = e.inferences.escapingModes[node]
		if len(escapingModes) == 0 {
			var modes = ctx.escapingModes()
			if len(modes) == 0 {
				e.raise(ErrDirectiveInComment, node, "{print} not allowed in context %v", ctx)
			}
			e.inferences.setEscapingDirectives(node, ctx, modes)
			for _, m := range modes {
				node.Directives = append(node.Directives, &ast.PrintDirectiveNode{Pos: node.Pos, Name: string(m)})
			}
			escapingModes = modes
		} else if !ctx.isCompatibleWith(escapingModes[0]) {
			e.raise(ErrIncompatibleEscapingMode, node, "escaping modes %v not compatible with context %v", escapingModes, ctx)
		}
		return e.contextAfterEscaping(node, ctx, escapingModes)

	case *ast.CssNode:
		return ctx // opaque identifier; never requires escaping

	case *ast.LogNode, *ast.DebuggerNode:
		return ctx // debug-only, not part of the rendered output

	case *ast.LetValueNode:
		return ctx // the value itself isn't printed at the point of {let}

	case *ast.LetContentNode:
		e.walkTypedBlock(contentKind(node.Kind), node.Body, node)
		return ctx

	case *ast.CallParamContentNode:
		e.walkTypedBlock(contentKind(node.Kind), node.Content, node)
		return ctx

	case *ast.MsgNode:
		if !isValidMsgContext(ctx) {
			e.raise(ErrMessageForbiddenInContext, node, "{msg} not allowed in context %v", ctx)
		}
		for _, child := range node.Body {
			ctx = e.walk(child, ctx)
		}
		return ctx

	case *ast.CallNode:
		return e.inferCall(node, ctx)

	case *ast.IfNode:
		return e.joinBranches(ctx, node, func(join func(context)) {
			var hasElse bool
			for _, cond := range node.Conds {
				if cond.Cond == nil {
					hasElse = true
				}
				join(e.walk(cond.Body, ctx))
			}
			if !hasElse {
				join(ctx)
			}
		})

	case *ast.SwitchNode:
		return e.joinBranches(ctx, node, func(join func(context)) {
			var hasDefault bool
			for _, c := range node.Cases {
				if len(c.Values) == 0 {
					hasDefault = true
				}
				join(e.walk(c.Body, ctx))
			}
			if !hasDefault {
				join(ctx)
			}
		})

	case *ast.ForNode:
		var loopEnd = e.walk(node.Body, ctx)
		if loopEnd.state == stateError {
			e.raise(loopEnd.err.Code, node, "%s", loopEnd.err.Description)
		}
		if !loopEnd.eq(ctx) {
			e.raise(ErrLoopChangesContext, node, "loop body changes context from %v to %v", ctx, loopEnd)
		}
		if node.IfEmpty != nil {
			var emptyEnd = e.walk(node.IfEmpty, ctx)
			var joined = joinContext(ctx, emptyEnd, func(code ErrorCode, f string, a ...interface{}) *Error { return errorf(code, f, a...) })
			if joined.state == stateError {
				e.raise(joined.err.Code, node, "%s", joined.err.Description)
			}
			return joined
		}
		return ctx
	}

	if node, ok := node.(ast.ParentNode); ok {
		for _, child := range node.Children() {
			ctx = e.walk(child, ctx)
		}
	}

	return ctx
}

// joinBranches runs body, which reports each branch's end context to join,
// and returns the widened context across all reported branches.
func (e *engine) joinBranches(ctx context, node ast.Node, body func(join func(context))) context {
	var joined context
	var first = true
	var mkErr = func(code ErrorCode, f string, a ...interface{}) *Error { return errorf(code, f, a...) }
	body(func(c context) {
		if first {
			joined, first = c, false
			return
		}
		joined = joinContext(joined, c, mkErr)
	})
	if joined.state == stateError {
		e.raise(joined.err.Code, node, "%s", joined.err.Description)
	}
	return joined
}

// walkTypedBlock validates that body (the content of a kind-typed {let} or
// {param}) starts and ends in the canonical contexts for k, independent of
// the context surrounding the {let}/{param} itself.
func (e *engine) walkTypedBlock(k kind, body ast.Node, node ast.Node) {
	var start = context{state: startStateForKind(k)}
	var end = e.walk(body, start)
	if end.state == stateError {
		e.raise(end.err.Code, node, "%s", end.err.Description)
	}
	if !isValidEndContextForKind(k, end) {
		e.raise(ErrBlockBadEnd, node, "block of kind %v ends in context %v: %s",
			k, end.state, likelyEndContextMismatchCause(k, end))
	}
}

// contentKind resolves the kind="..." attribute of a {let}/{param} content
// block, defaulting to html when omitted (the common case in practice).
func contentKind(k string) kind {
	if k == "" {
		return kindHTML
	}
	return kind(k)
}

// isValidMsgContext restricts {msg} to contexts where its placeholder
// children are unambiguous: plain text, RCDATA, or a plaintext attribute
// value. It is never valid inside CSS, JS, a URL, or markup structure
// itself, since a translator-supplied message could reorder placeholders
// across what would otherwise be static delimiters.
func isValidMsgContext(c context) bool {
	switch c.state {
	case stateText, stateRCDATA:
		return true
	case stateAttr:
		return c.attr == attrNone
	}
	return false
}

func (e *engine) contextAfterEscaping(node ast.Node, start context, escapes []escapingMode) context {
	var end = start
	if len(escapes) > 0 {
		end = start.contextAfterEscaping(escapes[0])
	}
	if end.state == stateError {
		if start.urlPart == urlPartUnknown {
			e.raise(ErrAmbiguousUriPart, node, "cannot determine URL part of %v", node)
		} else {
			e.raise(ErrDirectiveInComment, node, "{print} or {call} not allowed in comments: %v", node)
		}
	}
	return end
}

func isValidStartContextForKind(kind kind, ctx context) bool {
	if kind == kindAttr {
		return ctx.state == stateAttrName || ctx.state == stateTag
	}
	return ctx.state == startStateForKind(kind)
}

func isValidEndContextForKind(kind kind, ctx context) bool {
	switch kind {
	case kindText:
		return true // escaping is disabled for kind="text"; anything goes
	case kindNone, kindHTML:
		return ctx.state == stateText
	case kindCSS:
		return ctx.state == stateCSS
	case kindURL:
		return ctx.state == stateURL && ctx.urlPart != urlPartNone && ctx.urlPart != urlPartStart
	case kindAttr:
		return ctx.state == stateAttrName || ctx.state == stateTag
	case kindJS:
		return ctx.state == stateJS
	default:
		return false
	}
}

func likelyEndContextMismatchCause(kind kind, ctx context) string {
	if kind == kindAttr {
		return "an unterminated attribute value, or ending with an unquoted attribute"
	}

	switch ctx.state {
	case stateTag, stateAttrName, stateAfterName, stateBeforeValue:
		return "an unterminated HTML tag or attribute"
	case stateCSS:
		return "an unclosed style block or attribute"
	case stateJS:
		return "an unclosed script block or attribute"
	case stateCSSBlockCmt, stateCSSLineCmt, stateJSBlockCmt, stateJSLineCmt:
		return "an unterminated comment"
	case stateCSSDqStr, stateCSSSqStr, stateJSDqStr, stateJSSqStr:
		return "an unterminated string literal"
	case stateURL, stateCSSURL, stateCSSDqURL, stateCSSSqURL:
		return "an unterminated or empty URI"
	case stateJSRegexp:
		return "an unterminated regular expression"
	default:
		return "unknown to compiler"
	}
}
