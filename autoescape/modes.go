package autoescape

import "github.com/robfig/soy/ast"

// effectiveMode resolves the mode governing a template: an explicit
// autoescape="..." on the template wins, otherwise the namespace's setting
// applies, and if neither set one the file-level default is contextual.
func effectiveMode(namespaceMode, templateMode ast.AutoescapeType) ast.AutoescapeType {
	if templateMode != ast.AutoescapeUnspecified {
		return templateMode
	}
	if namespaceMode != ast.AutoescapeUnspecified {
		return namespaceMode
	}
	return ast.AutoescapeContextual
}
