package autoescape

import (
	"fmt"

	"github.com/robfig/soy/ast"
	"github.com/robfig/soy/template"
)

// derivationKey identifies one specialization of a template: the template it
// derives from and the context callers reach it in.
type derivationKey struct {
	name string
	ctx  context
}

// cloner drives call-site specialization: each (template, start context)
// pair seen at a {call} is resolved to exactly one concrete template — the
// base template itself when called at its natural starting context, or a
// deterministically-named clone otherwise — and its end context is
// memoized so recursive and repeated calls converge instead of looping.
type cloner struct {
	engine   *engine
	registry *template.Registry

	inProgress map[derivationKey]bool
	endContext map[derivationKey]context
	byKey      map[derivationKey]*template.Template
	order      []derivationKey // insertion order, kept for deterministic re-derivation
	next       int
}

func newCloner(e *engine, reg *template.Registry) *cloner {
	return &cloner{
		engine:     e,
		registry:   reg,
		inProgress: make(map[derivationKey]bool),
		endContext: make(map[derivationKey]context),
		byKey:      make(map[derivationKey]*template.Template),
	}
}

// endContextFor computes (memoized) the context that results after running
// t starting from start, cloning t first if start is not t's own natural
// starting context. A self-recursive call encountered mid-computation is
// resolved by assuming it returns to the same context it was entered in —
// true of the recursive templates in practice (a loop-shaped body that
// hands control back to itself leaves the cursor where it found it).
func (c *cloner) endContextFor(t template.Template, start context) context {
	key := derivationKey{t.Node.Name, start}
	if end, ok := c.endContext[key]; ok {
		return end
	}
	if c.inProgress[key] {
		return start
	}

	target := t
	if t.Node.Kind == "" && !start.eq(context{state: stateText}) {
		// A contextual (kind-less) template reached from somewhere other
		// than the default root context needs its own specialized copy so
		// the root copy (rooted at stateText) is left untouched for other
		// callers.
		if existing, ok := c.byKey[key]; ok {
			target = *existing
		} else {
			target = c.specialize(t, c.next)
			c.next++
			c.byKey[key] = &target
		}
	}

	c.inProgress[key] = true
	c.order = append(c.order, key)
	end := c.engine.walk(target.Node, start)
	delete(c.inProgress, key)
	if end.state != stateError {
		c.endContext[key] = end
	}
	return end
}

// specialize creates a deterministically-named clone of t's body so it can
// be independently re-escaped for a start context other than t's own.
func (c *cloner) specialize(t template.Template, suffix int) template.Template {
	name := fmt.Sprintf("%s__C%d", t.Node.Name, suffix)
	node := &ast.TemplateNode{
		Pos:        t.Node.Pos,
		Name:       name,
		Body:       cloneBody(t.Node.Body).(*ast.ListNode),
		Autoescape: t.Node.Autoescape,
		Kind:       t.Node.Kind,
	}
	derived := template.Template{Doc: t.Doc, Node: node, Namespace: t.Namespace}
	c.registry.Templates = append(c.registry.Templates, derived)

	for _, f := range c.registry.SoyFiles {
		for i, n := range f.Body {
			if tn, ok := n.(*ast.TemplateNode); ok && tn == t.Node {
				rest := append([]ast.Node{node}, f.Body[i+1:]...)
				f.Body = append(f.Body[:i+1], rest...)
				return derived
			}
		}
	}
	return derived
}

// inferCall resolves a {call} site: it looks up the callee,
// decides whether it needs a clone for ctx, retargets node.Name to whichever
// concrete template will actually run, and returns that template's end
// context (the context after the call returns, at this call site).
func (e *engine) inferCall(node *ast.CallNode, ctx context) context {
	for _, p := range node.Params {
		if cp, ok := p.(*ast.CallParamContentNode); ok {
			e.walk(cp, ctx)
		}
	}

	callee := e.registry.Template(node.Name)
	if callee == nil {
		return e.inferExternCall(node, ctx)
	}

	calleeMode := effectiveMode(callee.Namespace.Autoescape, callee.Node.Autoescape)
	if e.currentTemplate != nil {
		callerMode := effectiveMode(e.currentTemplate.Namespace.Autoescape, e.currentTemplate.Node.Autoescape)
		if callerMode == ast.AutoescapeStrict && calleeMode != ast.AutoescapeStrict {
			e.raise(ErrStrictForbidsNonStrictCall, node,
				"strict template %s calls non-strict template %s", e.currentTemplateName, node.Name)
		}
	}
	if calleeMode == ast.AutoescapeOff {
		return e.inferExternCall(node, ctx)
	}

	start := ctx
	if callee.Node.Kind != "" {
		start = context{state: startStateForKind(kind(callee.Node.Kind))}
		if !ctx.eq(start) && !isValidStartContextForKind(kind(callee.Node.Kind), ctx) {
			e.raise(ErrIncompatibleCallKind, node,
				"cannot call %s of kind %v from context %v", node.Name, callee.Node.Kind, ctx)
		}
	}

	end := e.cloner.endContextFor(*callee, start)
	if end.state == stateError {
		e.raise(end.err.Code, node, "in call to %s: %s", node.Name, end.err.Description)
	}

	key := derivationKey{callee.Node.Name, start}
	if derived, ok := e.cloner.byKey[key]; ok {
		node.Name = derived.Node.Name
	}
	return end
}

// inferExternCall handles a call to a template this registry cannot see
// (true externs, delegate calls with no unique implementation, or calls
// into a non-contextual/no-autoescape template this engine does not
// rewrite). A strict caller gets the conservative assumption that the
// callee produces HTML and must already be at the canonical HTML start
// context; a non-strict (contextual) caller may call it from stateText
// only, since nothing is known about what context it expects.
func (e *engine) inferExternCall(node *ast.CallNode, ctx context) context {
	if e.currentTemplate != nil && effectiveMode(e.currentTemplate.Namespace.Autoescape, e.currentTemplate.Node.Autoescape) == ast.AutoescapeStrict {
		if !ctx.eq(context{state: stateText}) {
			e.raise(ErrIncompatibleCallKind, node,
				"cannot call external template %s from context %v", node.Name, ctx)
		}
		return ctx
	}
	if !ctx.eq(context{state: stateText}) {
		e.raise(ErrIncompatibleCallKind, node,
			"cannot call external template %s from context %v", node.Name, ctx)
	}
	return ctx
}

// cloneBody deep-copies the structural nodes autoescape mutates (print
// directives, call targets) or must independently re-walk (typed content
// blocks, branches, loops), while sharing expression subtrees (data refs,
// conditions, values) since nothing in this package ever writes to them.
func cloneBody(n ast.Node) ast.Node {
	switch n := n.(type) {
	case nil:
		return nil
	case *ast.ListNode:
		c := &ast.ListNode{Pos: n.Pos}
		for _, child := range n.Nodes {
			c.Nodes = append(c.Nodes, cloneBody(child))
		}
		return c
	case *ast.RawTextNode:
		cp := *n
		return &cp
	case *ast.PrintNode:
		cp := *n
		cp.Directives = append([]*ast.PrintDirectiveNode(nil), n.Directives...)
		for i, d := range cp.Directives {
			dd := *d
			cp.Directives[i] = &dd
		}
		return &cp
	case *ast.LiteralNode:
		cp := *n
		return &cp
	case *ast.CssNode:
		cp := *n
		return &cp
	case *ast.LogNode:
		cp := *n
		return &cp
	case *ast.DebuggerNode:
		cp := *n
		return &cp
	case *ast.LetValueNode:
		cp := *n
		return &cp
	case *ast.LetContentNode:
		cp := *n
		cp.Body = cloneBody(n.Body)
		return &cp
	case *ast.MsgNode:
		cp := *n
		cp.Body = make([]ast.Node, len(n.Body))
		for i, child := range n.Body {
			cp.Body[i] = cloneBody(child)
		}
		return &cp
	case *ast.CallNode:
		cp := *n
		cp.Params = append([]ast.Node(nil), n.Params...)
		for i, p := range cp.Params {
			cp.Params[i] = cloneBody(p)
		}
		return &cp
	case *ast.CallParamValueNode:
		cp := *n
		return &cp
	case *ast.CallParamContentNode:
		cp := *n
		cp.Content = cloneBody(n.Content)
		return &cp
	case *ast.IfNode:
		cp := *n
		cp.Conds = make([]*ast.IfCondNode, len(n.Conds))
		for i, ic := range n.Conds {
			icc := *ic
			icc.Body = cloneBody(ic.Body)
			cp.Conds[i] = &icc
		}
		return &cp
	case *ast.SwitchNode:
		cp := *n
		cp.Cases = make([]*ast.SwitchCaseNode, len(n.Cases))
		for i, sc := range n.Cases {
			scc := *sc
			scc.Body = cloneBody(sc.Body)
			cp.Cases[i] = &scc
		}
		return &cp
	case *ast.ForNode:
		cp := *n
		cp.Body = cloneBody(n.Body)
		if n.IfEmpty != nil {
			cp.IfEmpty = cloneBody(n.IfEmpty)
		}
		return &cp
	default:
		return n
	}
}
