package document

import "sort"

// Severity ranks a diagnostic.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// EncodedRange is a range in the language server's position encoding.
type EncodedRange struct {
	StartLine int
	StartChar int
	EndLine   int
	EndChar   int
}

// Diagnostic is a message attached to a range of the document. Start and End
// follow edits the same way cursors do.
type Diagnostic struct {
	Start    Position
	End      Position
	Encoded  EncodedRange
	Severity Severity
	Message  string
	Source   string
}

// SetDiagnostics replaces all diagnostics.
func (d *Document) SetDiagnostics(ds []Diagnostic) {
	d.diagnostics = append(d.diagnostics[:0], ds...)
	for i := range d.diagnostics {
		d.diagnostics[i].Start = d.Clamp(d.diagnostics[i].Start)
		d.diagnostics[i].End = d.Clamp(d.diagnostics[i].End)
	}
	sort.SliceStable(d.diagnostics, func(i, j int) bool {
		return d.diagnostics[i].Start.Less(d.diagnostics[j].Start)
	})
}

// Diagnostics returns a copy of all diagnostics ordered by start.
func (d *Document) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), d.diagnostics...)
}

// DiagnosticsOnRow returns diagnostics overlapping row.
func (d *Document) DiagnosticsOnRow(row int) []Diagnostic {
	var out []Diagnostic
	for _, dg := range d.diagnostics {
		if dg.Start.Row <= row && row <= dg.End.Row {
			out = append(out, dg)
		}
	}
	return out
}

// DiagnosticsAt returns diagnostics whose range covers p. Empty ranges
// match their own position.
func (d *Document) DiagnosticsAt(p Position) []Diagnostic {
	var out []Diagnostic
	for _, dg := range d.diagnostics {
		r := Range{Start: dg.Start, End: dg.End}
		if r.Contains(p) || (r.IsEmpty() && r.Start == p) {
			out = append(out, dg)
		}
	}
	return out
}

// SetHover stores hover text for display next to the main cursor.
func (d *Document) SetHover(text string) { d.hover = text }

// Hover returns the stored hover text.
func (d *Document) Hover() string { return d.hover }
