package metadata

import "fmt"

// SyntaxError reports a malformed query expression.
//
// Pos is the byte offset of the offending token within the query string;
// Token is the offending substring (empty at end of input).
type SyntaxError struct {
	Pos    int
	Token  string
	Reason string
}

func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("query syntax error at offset %d: %s", e.Pos, e.Reason)
	}
	return fmt.Sprintf("query syntax error at offset %d near %q: %s", e.Pos, e.Token, e.Reason)
}

// FieldError reports a field name the index cannot resolve, or an operator
// the field's registered type does not support.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("query field %q: %s", e.Field, e.Reason)
}
