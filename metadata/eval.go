package metadata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cameronmartino/qurro/model"
)

// boundExpr is an expression tree whose fields have been resolved against a
// concrete index. Evaluation is per feature ordinal and allocation-free.
type boundExpr interface {
	matches(ord model.Ordinal) bool
}

type boundAnd struct{ left, right boundExpr }

func (e *boundAnd) matches(ord model.Ordinal) bool {
	return e.left.matches(ord) && e.right.matches(ord)
}

type boundOr struct{ left, right boundExpr }

func (e *boundOr) matches(ord model.Ordinal) bool {
	return e.left.matches(ord) || e.right.matches(ord)
}

type boundNot struct{ child boundExpr }

func (e *boundNot) matches(ord model.Ordinal) bool {
	return !e.child.matches(ord)
}

type boundCmp struct {
	f   *field
	op  Operator
	num float64
	str string
}

func (e *boundCmp) matches(ord model.Ordinal) bool {
	v := e.f.values[ord]
	if v.IsMissing() {
		// Missing values match nothing, not even !=.
		return false
	}
	if e.f.typ == FieldTypeNumeric {
		switch e.op {
		case OpEqual:
			return v.F64 == e.num
		case OpNotEqual:
			return v.F64 != e.num
		case OpGreaterThan:
			return v.F64 > e.num
		case OpGreaterEqual:
			return v.F64 >= e.num
		case OpLessThan:
			return v.F64 < e.num
		case OpLessEqual:
			return v.F64 <= e.num
		}
		return false
	}
	switch e.op {
	case OpEqual:
		return v.S == e.str
	case OpNotEqual:
		return v.S != e.str
	case OpContains:
		return strings.Contains(v.S, e.str)
	}
	return false
}

// bind resolves field names case-insensitively and checks each operator
// against the field's registered type. Ordered comparisons require numeric
// fields, contains requires text fields, and == / != follow the field type.
func bind(n node, ix *Index) (boundExpr, error) {
	switch n := n.(type) {
	case *andNode:
		left, err := bind(n.left, ix)
		if err != nil {
			return nil, err
		}
		right, err := bind(n.right, ix)
		if err != nil {
			return nil, err
		}
		return &boundAnd{left: left, right: right}, nil
	case *orNode:
		left, err := bind(n.left, ix)
		if err != nil {
			return nil, err
		}
		right, err := bind(n.right, ix)
		if err != nil {
			return nil, err
		}
		return &boundOr{left: left, right: right}, nil
	case *notNode:
		child, err := bind(n.child, ix)
		if err != nil {
			return nil, err
		}
		return &boundNot{child: child}, nil
	case *cmpNode:
		return bindCmp(n, ix)
	default:
		return nil, fmt.Errorf("metadata: unknown query node %T", n)
	}
}

func bindCmp(n *cmpNode, ix *Index) (boundExpr, error) {
	f, ok := ix.resolveField(n.field)
	if !ok {
		return nil, &FieldError{Field: n.field, Reason: "unknown field"}
	}

	cmp := &boundCmp{f: f, op: n.op}
	switch f.typ {
	case FieldTypeNumeric:
		if n.op == OpContains {
			return nil, &FieldError{Field: f.name, Reason: "contains requires a text field"}
		}
		num, err := strconv.ParseFloat(n.raw, 64)
		if err != nil {
			return nil, &FieldError{Field: f.name, Reason: fmt.Sprintf("value %q is not numeric", n.raw)}
		}
		cmp.num = num
	case FieldTypeText:
		switch n.op {
		case OpGreaterThan, OpGreaterEqual, OpLessThan, OpLessEqual:
			return nil, &FieldError{Field: f.name, Reason: "ordered comparison requires a numeric field"}
		}
		cmp.str = n.raw
	}
	return cmp, nil
}
