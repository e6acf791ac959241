// Package admin implements the out-of-band record fix-up utility. Records
// are selected with a closed predicate language (field, comparator, literal
// triples joined by AND/OR) and changed through an allow-listed set of
// mutable fields. Nothing in this package evaluates caller-supplied code or
// writes to a field name it does not know.
package admin

import (
	"fmt"
	"strings"

	"github.com/dpavlenko/newsboard/internal/common"
)

// Field names a user column addressable by the predicate language.
type Field string

const (
	FieldID        Field = "id"
	FieldName      Field = "name"
	FieldEmail     Field = "email"
	FieldAbout     Field = "about"
	FieldCreatedAt Field = "created_at"
)

// predicateFields lists every field a predicate may compare against.
var predicateFields = map[Field]struct{}{
	FieldID:        {},
	FieldName:      {},
	FieldEmail:     {},
	FieldAbout:     {},
	FieldCreatedAt: {},
}

// mutableFields lists every field a change set may write. The id, credential
// and timestamp columns are deliberately absent.
var mutableFields = map[Field]struct{}{
	FieldName:  {},
	FieldEmail: {},
	FieldAbout: {},
}

// Op is a comparison operator of the predicate language.
type Op string

const (
	OpEq Op = "="
	OpNe Op = "<>"
	OpLt Op = "<"
	OpLe Op = "<="
	OpGt Op = ">"
	OpGe Op = ">="
)

var ops = map[Op]struct{}{
	OpEq: {}, OpNe: {}, OpLt: {}, OpLe: {}, OpGt: {}, OpGe: {},
}

// Predicate selects user records. Implementations are Cond and the trees
// produced by And and Or; there is no way to inject free-form SQL or code.
type Predicate interface {
	compile(b *sqlBuilder) error
}

// Cond compares a single field against a literal value.
type Cond struct {
	Field Field
	Op    Op
	Value any
}

func (c Cond) compile(b *sqlBuilder) error {
	if _, ok := predicateFields[c.Field]; !ok {
		return fmt.Errorf("%w: field %q not allowed in predicates", common.ErrCapabilityViolation, c.Field)
	}
	if _, ok := ops[c.Op]; !ok {
		return fmt.Errorf("%w: operator %q not allowed", common.ErrCapabilityViolation, c.Op)
	}
	b.args = append(b.args, c.Value)
	fmt.Fprintf(&b.sql, "%s %s $%d", c.Field, c.Op, len(b.args))
	return nil
}

type junction struct {
	word  string
	parts []Predicate
}

func (j junction) compile(b *sqlBuilder) error {
	if len(j.parts) == 0 {
		return fmt.Errorf("%w: empty %s", common.ErrCapabilityViolation, strings.ToLower(j.word))
	}
	b.sql.WriteString("(")
	for i, p := range j.parts {
		if i > 0 {
			b.sql.WriteString(" " + j.word + " ")
		}
		if err := p.compile(b); err != nil {
			return err
		}
	}
	b.sql.WriteString(")")
	return nil
}

// And combines predicates so that all of them must hold.
func And(parts ...Predicate) Predicate {
	return junction{word: "AND", parts: parts}
}

// Or combines predicates so that at least one of them must hold.
func Or(parts ...Predicate) Predicate {
	return junction{word: "OR", parts: parts}
}

type sqlBuilder struct {
	sql  strings.Builder
	args []any
}

// compilePredicate turns a predicate into a parameterized WHERE clause body.
// The literal values travel as query arguments, never as SQL text.
func compilePredicate(p Predicate) (string, []any, error) {
	if p == nil {
		return "", nil, fmt.Errorf("%w: nil predicate", common.ErrCapabilityViolation)
	}
	b := &sqlBuilder{}
	if err := p.compile(b); err != nil {
		return "", nil, err
	}
	return b.sql.String(), b.args, nil
}

// Changes is a set of field updates to apply to a matched record.
type Changes map[Field]string

// validate rejects any change outside the mutable allow-list.
func (c Changes) validate() error {
	if len(c) == 0 {
		return fmt.Errorf("%w: empty change set", common.ErrCapabilityViolation)
	}
	for f := range c {
		if _, ok := mutableFields[f]; !ok {
			return fmt.Errorf("%w: field %q is not mutable", common.ErrCapabilityViolation, f)
		}
	}
	return nil
}
