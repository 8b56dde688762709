package domain

import (
	"fmt"
	"strings"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	apperrors "github.com/louisbranch/grimoire.space/internal/platform/errors"
)

// Predicate decides whether an entity is eligible for matching.
type Predicate func(Entity) bool

// And folds predicates with logical AND. Nil predicates are skipped; with no
// predicates the result accepts everything, so a missing base predicate means
// "accept all".
func And(predicates ...Predicate) Predicate {
	kept := make([]Predicate, 0, len(predicates))
	for _, p := range predicates {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return func(e Entity) bool {
		for _, p := range kept {
			if !p(e) {
				return false
			}
		}
		return true
	}
}

// SRDOnly keeps only entities in the freely redistributable SRD subset.
func SRDOnly(e Entity) bool {
	return e.SRD
}

func filterDeclarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("name", filtering.TypeString),
		filtering.DeclareIdent("source", filtering.TypeString),
		filtering.DeclareIdent("kind", filtering.TypeString),
		filtering.DeclareIdent("srd", filtering.TypeBool),
	)
}

// CompilePredicate parses an AIP-160 filter expression over the fields name,
// source, kind, and srd and compiles it to an in-memory predicate. An empty
// expression compiles to nil (accept all).
func CompilePredicate(filterStr string) (Predicate, error) {
	if strings.TrimSpace(filterStr) == "" {
		return nil, nil
	}

	decls, err := filterDeclarations()
	if err != nil {
		return nil, fmt.Errorf("create declarations: %w", err)
	}

	parsed, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeLookupFilterInvalid, "parse filter expression", err)
	}

	predicate, err := compileExpr(parsed.CheckedExpr.Expr)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeLookupFilterInvalid, "compile filter expression", err)
	}
	return predicate, nil
}

func compileExpr(e *expr.Expr) (Predicate, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}
	call, ok := e.ExprKind.(*expr.Expr_CallExpr)
	if !ok {
		return nil, fmt.Errorf("unsupported expression type: %T", e.ExprKind)
	}
	return compileCall(call.CallExpr)
}

func compileCall(call *expr.Expr_Call) (Predicate, error) {
	switch call.Function {
	case "_&&_", "AND":
		return compileBinary(call.Args, func(left, right Predicate) Predicate {
			return func(e Entity) bool { return left(e) && right(e) }
		})
	case "_||_", "OR":
		return compileBinary(call.Args, func(left, right Predicate) Predicate {
			return func(e Entity) bool { return left(e) || right(e) }
		})
	case "NOT", "!_":
		if len(call.Args) != 1 {
			return nil, fmt.Errorf("NOT requires 1 argument")
		}
		inner, err := compileExpr(call.Args[0])
		if err != nil {
			return nil, err
		}
		return func(e Entity) bool { return !inner(e) }, nil
	case "_==_", "=":
		return compileComparison(call.Args, false)
	case "_!=_", "!=":
		return compileComparison(call.Args, true)
	default:
		return nil, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func compileBinary(args []*expr.Expr, combine func(left, right Predicate) Predicate) (Predicate, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("binary operator requires 2 arguments")
	}
	left, err := compileExpr(args[0])
	if err != nil {
		return nil, err
	}
	right, err := compileExpr(args[1])
	if err != nil {
		return nil, err
	}
	return combine(left, right), nil
}

func compileComparison(args []*expr.Expr, negate bool) (Predicate, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("comparison requires 2 arguments")
	}
	field, err := extractFieldName(args[0])
	if err != nil {
		return nil, err
	}
	value, err := extractValue(args[1])
	if err != nil {
		return nil, err
	}

	var matches Predicate
	switch field {
	case "name":
		want, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("field name requires a string value")
		}
		normalized := NormalizeName(want)
		matches = func(e Entity) bool { return NormalizeName(e.Name) == normalized }
	case "source":
		want, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("field source requires a string value")
		}
		matches = func(e Entity) bool { return e.Source == want }
	case "kind":
		want, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("field kind requires a string value")
		}
		matches = func(e Entity) bool { return string(e.Kind) == want }
	case "srd":
		want, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("field srd requires a bool value")
		}
		matches = func(e Entity) bool { return e.SRD == want }
	default:
		return nil, fmt.Errorf("unknown field: %s", field)
	}

	if negate {
		inner := matches
		return func(e Entity) bool { return !inner(e) }, nil
	}
	return matches, nil
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}
	ident, ok := e.ExprKind.(*expr.Expr_IdentExpr)
	if !ok {
		return "", fmt.Errorf("expected identifier, got %T", e.ExprKind)
	}
	return ident.IdentExpr.Name, nil
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}
	constant, ok := e.ExprKind.(*expr.Expr_ConstExpr)
	if !ok {
		return nil, fmt.Errorf("expected constant, got %T", e.ExprKind)
	}
	switch kind := constant.ConstExpr.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}
