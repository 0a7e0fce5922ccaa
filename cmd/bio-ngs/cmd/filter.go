package cmd

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"
	"strconv"

	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
)

const filterHelp = `Filter expression on a single record.

EXAMPLES:
   mapping_quality >= 30 && !secondary_alignment
   read_group == "A" || re(ref_name, "^chr[XY]$")

The expression is parsed with the Go parser and follows Go's operator
precedence. The operands of a comparison must be of the same type.

  expr = int literal | string literal | field | flag |
         !expr | expr && expr | expr || expr |
         expr (== | != | < | <= | > | >=) expr |
         re(expr, "regexp") | (expr)

  string fields: ref_name, mate_ref_name, rec_name, read_group
  int fields:    ref_id, position, mate_ref_id, mate_position,
                 sequence_length, mapping_quality, template_length
  flags:         paired, proper_pair, unmapped, mate_is_unmapped,
                 is_reverse_strand, mate_is_reverse_strand, first_of_pair,
                 second_of_pair, secondary_alignment, failed_quality_control,
                 duplicate, supplementary, chimeric
`

var rgTag = sam.NewTag("RG")

var intFields = map[string]func(r *sam.Record) int64{
	"ref_id":          func(r *sam.Record) int64 { return int64(r.Ref.ID()) },
	"position":        func(r *sam.Record) int64 { return int64(r.Pos) },
	"mate_ref_id":     func(r *sam.Record) int64 { return int64(r.MateRef.ID()) },
	"mate_position":   func(r *sam.Record) int64 { return int64(r.MatePos) },
	"sequence_length": func(r *sam.Record) int64 { return int64(r.Seq.Length) },
	"mapping_quality": func(r *sam.Record) int64 { return int64(r.MapQ) },
	"template_length": func(r *sam.Record) int64 { return int64(r.TempLen) },
}

var strFields = map[string]func(r *sam.Record) string{
	"ref_name":      func(r *sam.Record) string { return r.Ref.Name() },
	"mate_ref_name": func(r *sam.Record) string { return r.MateRef.Name() },
	"rec_name":      func(r *sam.Record) string { return r.Name },
	"read_group": func(r *sam.Record) string {
		if aux := r.AuxFields.Get(rgTag); aux != nil {
			if s, ok := aux.Value().(string); ok {
				return s
			}
		}
		return ""
	},
}

var flagFields = map[string]sam.Flags{
	"paired":                 sam.Paired,
	"proper_pair":            sam.ProperPair,
	"unmapped":               sam.Unmapped,
	"mate_is_unmapped":       sam.MateUnmapped,
	"is_reverse_strand":      sam.Reverse,
	"mate_is_reverse_strand": sam.MateReverse,
	"first_of_pair":          sam.Read1,
	"second_of_pair":         sam.Read2,
	"secondary_alignment":    sam.Secondary,
	"failed_quality_control": sam.QCFail,
	"duplicate":              sam.Duplicate,
	"supplementary":          sam.Supplementary,
}

// filterFunc reports whether a record is selected.
type filterFunc func(r *sam.Record) bool

type exprType int

const (
	typeBool exprType = iota
	typeInt
	typeStr
)

func (t exprType) String() string {
	return [...]string{"bool", "int", "string"}[t]
}

// compiled is one node of a filter expression. Exactly one of the functions
// is set, according to typ.
type compiled struct {
	typ exprType
	b   func(r *sam.Record) bool
	i   func(r *sam.Record) int64
	s   func(r *sam.Record) string
	// lit is set for string literals.
	lit *string
}

func chimeric(r *sam.Record) bool {
	f := r.Flags
	return f&sam.Paired != 0 && f&sam.Unmapped == 0 && f&sam.MateUnmapped == 0 && r.Ref.ID() != r.MateRef.ID()
}

func compileIdent(name string) (compiled, error) {
	if fn, ok := intFields[name]; ok {
		return compiled{typ: typeInt, i: fn}, nil
	}
	if fn, ok := strFields[name]; ok {
		return compiled{typ: typeStr, s: fn}, nil
	}
	if name == "chimeric" {
		return compiled{typ: typeBool, b: chimeric}, nil
	}
	if flag, ok := flagFields[name]; ok {
		return compiled{typ: typeBool, b: func(r *sam.Record) bool { return r.Flags&flag != 0 }}, nil
	}
	return compiled{}, errors.Errorf("unknown field %q", name)
}

func compileExpr(node ast.Expr) (compiled, error) {
	switch e := node.(type) {
	case *ast.ParenExpr:
		return compileExpr(e.X)
	case *ast.Ident:
		return compileIdent(e.Name)
	case *ast.BasicLit:
		switch e.Kind {
		case token.INT:
			v, err := strconv.ParseInt(e.Value, 0, 64)
			if err != nil {
				return compiled{}, err
			}
			return compiled{typ: typeInt, i: func(*sam.Record) int64 { return v }}, nil
		case token.STRING:
			v, err := strconv.Unquote(e.Value)
			if err != nil {
				return compiled{}, err
			}
			return compiled{typ: typeStr, s: func(*sam.Record) string { return v }, lit: &v}, nil
		}
	case *ast.CallExpr:
		fun, ok := e.Fun.(*ast.Ident)
		if !ok || fun.Name != "re" || len(e.Args) != 2 {
			return compiled{}, errors.Errorf("%s: only re(expr, regexp) can be called", exprString(e))
		}
		x, err := compileExpr(e.Args[0])
		if err != nil {
			return compiled{}, err
		}
		pat, err := compileExpr(e.Args[1])
		if err != nil {
			return compiled{}, err
		}
		if x.typ != typeStr || pat.lit == nil {
			return compiled{}, errors.Errorf("%s: re() takes a string and a string literal", exprString(e))
		}
		re, err := regexp.Compile(*pat.lit)
		if err != nil {
			return compiled{}, err
		}
		return compiled{typ: typeBool, b: func(r *sam.Record) bool { return re.MatchString(x.s(r)) }}, nil
	case *ast.UnaryExpr:
		if e.Op != token.NOT {
			break
		}
		x, err := compileExpr(e.X)
		if err != nil {
			return compiled{}, err
		}
		if x.typ != typeBool {
			return compiled{}, errors.Errorf("%s: operand of ! must be bool, not %v", exprString(e), x.typ)
		}
		return compiled{typ: typeBool, b: func(r *sam.Record) bool { return !x.b(r) }}, nil
	case *ast.BinaryExpr:
		return compileBinary(e)
	}
	return compiled{}, errors.Errorf("%s: unsupported expression", exprString(node))
}

func compileBinary(e *ast.BinaryExpr) (compiled, error) {
	x, err := compileExpr(e.X)
	if err != nil {
		return compiled{}, err
	}
	y, err := compileExpr(e.Y)
	if err != nil {
		return compiled{}, err
	}
	if x.typ != y.typ {
		return compiled{}, errors.Errorf("%s: mismatched types %v and %v", exprString(e), x.typ, y.typ)
	}
	out := compiled{typ: typeBool}
	switch e.Op {
	case token.LAND, token.LOR:
		if x.typ != typeBool {
			return compiled{}, errors.Errorf("%s: operands must be bool", exprString(e))
		}
		if e.Op == token.LAND {
			out.b = func(r *sam.Record) bool { return x.b(r) && y.b(r) }
		} else {
			out.b = func(r *sam.Record) bool { return x.b(r) || y.b(r) }
		}
		return out, nil
	case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ:
	default:
		return compiled{}, errors.Errorf("%s: unsupported operator %v", exprString(e), e.Op)
	}
	var cmp func(r *sam.Record) int
	switch x.typ {
	case typeInt:
		cmp = func(r *sam.Record) int { return compare(x.i(r), y.i(r)) }
	case typeStr:
		cmp = func(r *sam.Record) int { return compare(x.s(r), y.s(r)) }
	case typeBool:
		if e.Op != token.EQL && e.Op != token.NEQ {
			return compiled{}, errors.Errorf("%s: bools can only be compared for equality", exprString(e))
		}
		eq := e.Op == token.EQL
		out.b = func(r *sam.Record) bool { return (x.b(r) == y.b(r)) == eq }
		return out, nil
	}
	op := e.Op
	out.b = func(r *sam.Record) bool {
		c := cmp(r)
		switch op {
		case token.EQL:
			return c == 0
		case token.NEQ:
			return c != 0
		case token.LSS:
			return c < 0
		case token.LEQ:
			return c <= 0
		case token.GTR:
			return c > 0
		}
		return c >= 0
	}
	return out, nil
}

func compare[T int64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func exprString(node ast.Expr) string {
	switch e := node.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.BasicLit:
		return e.Value
	case *ast.ParenExpr:
		return "(" + exprString(e.X) + ")"
	case *ast.UnaryExpr:
		return e.Op.String() + exprString(e.X)
	case *ast.BinaryExpr:
		return exprString(e.X) + " " + e.Op.String() + " " + exprString(e.Y)
	case *ast.CallExpr:
		s := exprString(e.Fun) + "("
		for i, arg := range e.Args {
			if i > 0 {
				s += ", "
			}
			s += exprString(arg)
		}
		return s + ")"
	}
	return fmt.Sprintf("%T", node)
}

// parseFilter compiles a filter expression. An empty expression selects
// every record.
func parseFilter(text string) (filterFunc, error) {
	if text == "" {
		return func(*sam.Record) bool { return true }, nil
	}
	node, err := parser.ParseExpr(text)
	if err != nil {
		return nil, errors.Wrapf(err, "filter %q", text)
	}
	c, err := compileExpr(node)
	if err != nil {
		return nil, errors.Wrapf(err, "filter %q", text)
	}
	if c.typ != typeBool {
		return nil, errors.Errorf("filter %q: not a boolean expression", text)
	}
	return c.b, nil
}
