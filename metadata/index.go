package metadata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/cameronmartino/qurro/model"
)

// Row is one feature's metadata as delivered by the loader.
type Row struct {
	ID     model.FeatureID
	Values map[string]Value
}

// field holds one column of the index: its canonical name, its registered
// type, and a value per feature ordinal.
type field struct {
	name   string
	typ    FieldType
	values []Value
}

// Index is the immutable per-feature attribute table plus the query
// evaluator. It is read-only after Build and safe for concurrent use.
type Index struct {
	ids      []model.FeatureID
	ordinals map[model.FeatureID]model.Ordinal

	fieldOrder []string
	fields     map[string]*field
	folded     map[string]string // lower(name) -> canonical name

	cache queryCache
}

// Build constructs an Index from the loader's metadata snapshot.
//
// fieldNames fixes the column order. Feature ids are sanitized with
// model.SanitizeID before registration. Build fails on empty or duplicate
// ids and on field names that collide case-insensitively.
//
// A field is registered as numeric when it has at least one non-missing
// value and every non-missing value is numeric; otherwise it is text, and
// any numeric cells are stringified so the column stays homogeneous.
func Build(fieldNames []string, rows []Row) (*Index, error) {
	ix := &Index{
		ids:      make([]model.FeatureID, 0, len(rows)),
		ordinals: make(map[model.FeatureID]model.Ordinal, len(rows)),
		fields:   make(map[string]*field, len(fieldNames)),
		folded:   make(map[string]string, len(fieldNames)),
	}
	ix.cache.init()

	for _, name := range fieldNames {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("metadata: empty field name")
		}
		lower := strings.ToLower(name)
		if prev, ok := ix.folded[lower]; ok {
			return nil, fmt.Errorf("metadata: field %q collides with %q (fields resolve case-insensitively)", name, prev)
		}
		ix.folded[lower] = name
		ix.fieldOrder = append(ix.fieldOrder, name)
		ix.fields[name] = &field{name: name, values: make([]Value, 0, len(rows))}
	}

	for _, row := range rows {
		id := model.FeatureID(model.SanitizeID(string(row.ID)))
		if strings.TrimSpace(string(id)) == "" {
			return nil, fmt.Errorf("metadata: empty feature id")
		}
		if _, ok := ix.ordinals[id]; ok {
			return nil, fmt.Errorf("metadata: duplicate feature id %q", id)
		}
		ix.ordinals[id] = model.Ordinal(len(ix.ids))
		ix.ids = append(ix.ids, id)

		for _, name := range ix.fieldOrder {
			v, ok := row.Values[name]
			if !ok || v.Kind == KindInvalid {
				v = Missing()
			}
			f := ix.fields[name]
			f.values = append(f.values, v)
		}
	}

	for _, name := range ix.fieldOrder {
		registerFieldType(ix.fields[name])
	}
	return ix, nil
}

// registerFieldType fixes a column's type from its values: numeric only if
// every non-missing value is numeric and there is at least one. Text columns
// get any numeric stragglers stringified.
func registerFieldType(f *field) {
	numeric := false
	for _, v := range f.values {
		switch v.Kind {
		case KindNumeric:
			numeric = true
		case KindText:
			f.typ = FieldTypeText
			coerceToText(f)
			return
		}
	}
	if numeric {
		f.typ = FieldTypeNumeric
		return
	}
	f.typ = FieldTypeText
}

func coerceToText(f *field) {
	for i, v := range f.values {
		if v.Kind == KindNumeric {
			f.values[i] = Text(strconv.FormatFloat(v.F64, 'g', -1, 64))
		}
	}
}

// Len returns the number of features in the index.
func (ix *Index) Len() int { return len(ix.ids) }

// IDs returns the feature ids in ordinal order. The returned slice is
// shared and must be treated as read-only.
func (ix *Index) IDs() []model.FeatureID { return ix.ids }

// Ordinal returns the dense ordinal of a feature id.
func (ix *Index) Ordinal(id model.FeatureID) (model.Ordinal, bool) {
	ord, ok := ix.ordinals[id]
	return ord, ok
}

// ID returns the feature id at the given ordinal.
func (ix *Index) ID(ord model.Ordinal) (model.FeatureID, bool) {
	if int(ord) >= len(ix.ids) {
		return "", false
	}
	return ix.ids[ord], true
}

// FieldNames returns the field names in column order. The returned slice is
// shared and must be treated as read-only.
func (ix *Index) FieldNames() []string { return ix.fieldOrder }

// FieldType resolves a field name case-insensitively and returns its
// registered type.
func (ix *Index) FieldType(name string) (FieldType, bool) {
	f, ok := ix.resolveField(name)
	if !ok {
		return 0, false
	}
	return f.typ, true
}

// Value returns the metadata value of one field for one feature, resolving
// the field name case-insensitively.
func (ix *Index) Value(name string, id model.FeatureID) (Value, bool) {
	f, ok := ix.resolveField(name)
	if !ok {
		return Value{}, false
	}
	ord, ok := ix.ordinals[id]
	if !ok {
		return Value{}, false
	}
	return f.values[ord], true
}

func (ix *Index) resolveField(name string) (*field, bool) {
	if f, ok := ix.fields[name]; ok {
		return f, true
	}
	canonical, ok := ix.folded[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return ix.fields[canonical], true
}

// Evaluate parses, binds, and evaluates a query against the index,
// returning the bitmap of matching feature ordinals.
//
// Parsing and binding happen once per distinct query string; repeated
// evaluations reuse the cached bound expression. Errors are *SyntaxError or
// *FieldError.
func (ix *Index) Evaluate(query string) (*roaring.Bitmap, error) {
	ex, err := ix.cache.get(query, func() (boundExpr, error) {
		n, err := parse(query)
		if err != nil {
			return nil, err
		}
		return bind(n, ix)
	})
	if err != nil {
		return nil, err
	}

	bm := roaring.New()
	for ord := range ix.ids {
		if ex.matches(model.Ordinal(ord)) {
			bm.Add(uint32(ord))
		}
	}
	return bm, nil
}
