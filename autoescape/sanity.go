package autoescape

import (
	"fmt"

	"github.com/robfig/soy/ast"
	"github.com/robfig/soy/template"
)

// sanityCheck runs the context-independent checks that spec.md documents as
// a pre-pass: they depend only on syntax (what attributes/directives a
// template wrote), never on inferred context, so they run once before the
// (potentially repeated, call-site-specialized) context inference below.
func sanityCheck(reg *template.Registry) error {
	for i := range reg.Templates {
		t := reg.Templates[i]
		mode := effectiveMode(t.Namespace.Autoescape, t.Node.Autoescape)

		if mode == ast.AutoescapeStrict && t.Node.Kind == "" {
			return &Error{Code: ErrMissingKindInStrict, Name: t.Node.Name,
				Description: fmt.Sprintf("template %s is autoescape=\"strict\" but declares no kind", t.Node.Name)}
		}
		if mode == ast.AutoescapeOff && t.Node.Kind != "" {
			return &Error{Code: ErrTypedBlockInNoAutoescape, Name: t.Node.Name,
				Description: fmt.Sprintf("template %s declares kind=%q but autoescape is disabled", t.Node.Name, t.Node.Kind)}
		}

		if err := sanityWalk(t.Node.Name, t.Node, mode); err != nil {
			return err
		}
	}
	return nil
}

func sanityWalk(templateName string, node ast.Node, mode ast.AutoescapeType) error {
	switch n := node.(type) {
	case *ast.PrintNode:
		for _, d := range n.Directives {
			if d.Name == "text" {
				return &Error{Code: ErrReservedDirective, Name: templateName,
					Description: "|text is reserved and may not be written directly"}
			}
			if mode == ast.AutoescapeStrict && cancelsAutoescape(d.Name) && d.Name != "id" {
				return &Error{Code: ErrStrictForbidsCancellingDirective, Name: templateName,
					Description: fmt.Sprintf("strict template may not use the autoescape-canceling directive |%s", d.Name)}
			}
		}
	case *ast.LetContentNode:
		if n.Kind == "" && mode == ast.AutoescapeStrict {
			return &Error{Code: ErrMissingKindInStrict, Name: templateName,
				Description: fmt.Sprintf("{let $%s} in a strict template must declare kind=\"...\"", n.Name)}
		}
	case *ast.CallParamContentNode:
		if n.Kind == "" && mode == ast.AutoescapeStrict {
			return &Error{Code: ErrMissingKindInStrict, Name: templateName,
				Description: fmt.Sprintf("{param %s} in a strict template must declare kind=\"...\"", n.Key)}
		}
	}

	if parent, ok := node.(ast.ParentNode); ok {
		for _, child := range parent.Children() {
			if child == nil {
				continue
			}
			if err := sanityWalk(templateName, child, mode); err != nil {
				return err
			}
		}
	}
	return nil
}
