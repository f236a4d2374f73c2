package diag

type Note struct {
	Span Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Span
	Notes    []Note
}

func New(sev Severity, code Code, primary Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
		Notes:    nil,
	}
}

// Of returns a diagnostic for code at the code's own severity.
func Of(code Code, primary Span, msg string) Diagnostic {
	return New(code.Severity(), code, primary, msg)
}

func (d Diagnostic) WithNote(sp Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
