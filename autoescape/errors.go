package autoescape

import (
	"fmt"

	"github.com/robfig/soy/ast"
	"github.com/robfig/soy/errortypes"
)

// ErrorCode identifies the kind of failure a rewrite raised, matching the
// stable codes in the specification's error catalogue.
type ErrorCode int

const (
	ErrAmbiguousBranches ErrorCode = iota
	ErrLoopChangesContext
	ErrAmbiguousJsSlash
	ErrAmbiguousUriPart
	ErrIncompatibleEscapingMode
	ErrDirectiveInComment
	ErrStrictBlockBadEnd
	ErrStrictForbidsCancellingDirective
	ErrStrictForbidsNonStrictCall
	ErrIncompatibleCallKind
	ErrMessageForbiddenInContext
	ErrBlockBadEnd
	ErrMissingKindInStrict
	ErrReservedDirective
	ErrTypedBlockInNoAutoescape
	// ErrBadHTML and ErrNoSuchTemplate are implementation-level failures the
	// spec's catalogue does not name a code for but the lexer/cloning engine
	// must still be able to report.
	ErrBadHTML
	ErrNoSuchTemplate
)

func (c ErrorCode) String() string {
	switch c {
	case ErrAmbiguousBranches:
		return "AmbiguousBranches"
	case ErrLoopChangesContext:
		return "LoopChangesContext"
	case ErrAmbiguousJsSlash:
		return "AmbiguousJsSlash"
	case ErrAmbiguousUriPart:
		return "AmbiguousUriPart"
	case ErrIncompatibleEscapingMode:
		return "IncompatibleEscapingMode"
	case ErrDirectiveInComment:
		return "DirectiveInComment"
	case ErrStrictBlockBadEnd:
		return "StrictBlockBadEnd"
	case ErrStrictForbidsCancellingDirective:
		return "StrictForbidsCancellingDirective"
	case ErrStrictForbidsNonStrictCall:
		return "StrictForbidsNonStrictCall"
	case ErrIncompatibleCallKind:
		return "IncompatibleCallKind"
	case ErrMessageForbiddenInContext:
		return "MessageForbiddenInContext"
	case ErrBlockBadEnd:
		return "BlockBadEnd"
	case ErrMissingKindInStrict:
		return "MissingKindInStrict"
	case ErrReservedDirective:
		return "ReservedDirective"
	case ErrTypedBlockInNoAutoescape:
		return "TypedBlockInNoAutoescape"
	case ErrBadHTML:
		return "BadHTML"
	case ErrNoSuchTemplate:
		return "NoSuchTemplate"
	}
	return "Unknown"
}

// Error is raised for any failure discovered while inferring or cloning
// templates. It carries enough location information for a caller to render
// a "file:line:col: message" diagnostic, per spec.md §7.
type Error struct {
	Code        ErrorCode
	Name        string // template name, filled in by the caller if unset
	File        string
	Line, Col   int
	Description string
	Snippet     string
}

func (e *Error) Error() string {
	loc := e.File
	if e.Name != "" {
		if loc != "" {
			loc += " "
		}
		loc += "template " + e.Name
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	if loc == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Description)
	}
	return fmt.Sprintf("%s: %s: %s", loc, e.Code, e.Description)
}

func (e *Error) File_() string { return e.File }
func (e *Error) Line_() int    { return e.Line }
func (e *Error) Col_() int     { return e.Col }

var _ errortypes.ErrFilePos = (*filePosError)(nil)

// filePosError adapts Error to errortypes.ErrFilePos without forcing every
// caller of errorf to satisfy that three-method interface directly.
type filePosError struct{ err *Error }

func (e filePosError) Error() string { return e.err.Error() }
func (e filePosError) File() string  { return e.err.File }
func (e filePosError) Line() int     { return e.err.Line }
func (e filePosError) Col() int      { return e.err.Col }

// AsErrFilePos exposes err (if it is one of ours) through the pack's shared
// errortypes.ErrFilePos contract.
func AsErrFilePos(err error) errortypes.ErrFilePos {
	if e, ok := err.(*Error); ok {
		return filePosError{e}
	}
	return nil
}

// errorf constructs a location-free *Error. Used by code (like the raw-text
// scanner) that has no access to a registry or template name; the engine
// fills in Name/Line when the error surfaces from a node it was walking.
func errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Description: fmt.Sprintf(format, args...)}
}

// lineNumberer is the one method of template.Registry that locating an
// error needs.
type lineNumberer interface {
	LineNumber(templateName string, node ast.Node) int
}
