package template

import (
	"fmt"
	"strings"

	"github.com/robfig/soy/ast"
)

// Registry holds every parsed soy file and the templates found within them,
// indexed by fully-qualified name.
type Registry struct {
	SoyFiles  []*ast.SoyFileNode
	Templates []Template
}

// Template is a single {template} definition together with the SoyDoc that
// documents it and the {namespace} of the file it came from.
type Template struct {
	Doc       *ast.SoyDocNode
	Node      *ast.TemplateNode
	Namespace *ast.NamespaceNode
}

// Add adds the given file to the registry. The following rules are enforced:
// every soyfile must begin with a {namespace} (except for leading SoyDoc),
// and every template must be preceded by SoyDoc.
func (r *Registry) Add(soyfile *ast.SoyFileNode) error {
	r.SoyFiles = append(r.SoyFiles, soyfile)

	var ns *ast.NamespaceNode
	for i := 0; i < len(soyfile.Body); i++ {
		switch n := soyfile.Body[i].(type) {
		case *ast.NamespaceNode:
			ns = n
		case *ast.TemplateNode:
			if ns == nil {
				return fmt.Errorf("template %q requires a namespace", n.Name)
			}
			var sdn *ast.SoyDocNode
			if i > 0 {
				sdn, _ = soyfile.Body[i-1].(*ast.SoyDocNode)
			}
			if sdn == nil {
				return fmt.Errorf("template %q requires SoyDoc", n.Name)
			}
			r.Templates = append(r.Templates, Template{Doc: sdn, Node: n, Namespace: ns})
		}
	}
	return nil
}

// Template looks up a template by its fully-qualified name.
func (r *Registry) Template(name string) *Template {
	for i := range r.Templates {
		if r.Templates[i].Node.Name == name {
			return &r.Templates[i]
		}
	}
	return nil
}

// ParamNames returns the names declared in the template's SoyDoc.
func (t Template) ParamNames() []string {
	var names []string
	for _, p := range t.Doc.Params {
		names = append(names, p.Name)
	}
	return names
}

// LineNumber returns the 1-based line on which node begins within the named
// template's source file, used to attach a location to escaper errors.
func (r *Registry) LineNumber(templateName string, node ast.Node) int {
	t := r.Template(templateName)
	if t == nil || node == nil {
		return 0
	}
	for _, f := range r.SoyFiles {
		for _, n := range f.Body {
			if tn, ok := n.(*ast.TemplateNode); ok && tn == t.Node {
				return 1 + strings.Count(f.Text[:min(int(node.Position()), len(f.Text))], "\n")
			}
		}
	}
	return 0
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
