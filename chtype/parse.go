package chtype

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Parse parses the printed ClickHouse type syntax (e.g. "Array(Nullable(String))")
// into the canonical Type representation. It is a hand-written recursive
// descent parser; the grammar has no left recursion and balanced
// parentheses bound nesting depth.
func Parse(s string) (Type, error) {
	p := &parser{src: s}
	t, err := p.parseType()
	if err != nil {
		return Type{}, errors.Wrapf(err, "chtype: parsing %q", s)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Type{}, errors.Errorf("chtype: trailing input after %q: %q", s, p.src[p.pos:])
	}
	return t, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return errors.Errorf("chtype: expected %q at position %d in %q", c, p.pos, p.src)
	}
	p.pos++
	return nil
}

// identifier reads a bare identifier: letters, digits, underscore.
func (p *parser) identifier() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '(' || c == ')' || c == ',' || c == ' ' || c == '=' || c == '\'' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) number() (int, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && (p.src[p.pos] >= '0' && p.src[p.pos] <= '9' || p.src[p.pos] == '-') {
		p.pos++
	}
	if start == p.pos {
		return 0, errors.Errorf("chtype: expected number at position %d in %q", p.pos, p.src)
	}
	return strconv.Atoi(p.src[start:p.pos])
}

// quotedString reads a single-quoted string literal used in enum value lists.
func (p *parser) quotedString() (string, error) {
	if err := p.expect('\''); err != nil {
		return "", err
	}
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '\\' && p.pos+1 < len(p.src) {
			sb.WriteByte(p.src[p.pos+1])
			p.pos += 2
			continue
		}
		if c == '\'' {
			p.pos++
			return sb.String(), nil
		}
		sb.WriteByte(c)
		p.pos++
	}
	return "", errors.New("chtype: unterminated string literal")
}

func (p *parser) parseType() (Type, error) {
	name := p.identifier()
	switch name {
	case "UInt8":
		return UInt8, nil
	case "UInt16":
		return UInt16, nil
	case "UInt32":
		return UInt32, nil
	case "UInt64":
		return UInt64, nil
	case "UInt128":
		return UInt128, nil
	case "UInt256":
		return UInt256, nil
	case "Int8":
		return Int8, nil
	case "Int16":
		return Int16, nil
	case "Int32":
		return Int32, nil
	case "Int64":
		return Int64, nil
	case "Int128":
		return Int128, nil
	case "Int256":
		return Int256, nil
	case "Float32":
		return Float32, nil
	case "Float64":
		return Float64, nil
	case "BFloat16":
		return Type{Kind: KindBFloat16}, nil
	case "String":
		return String, nil
	case "Date":
		return Date, nil
	case "Date32":
		return Date32, nil
	case "UUID":
		return UUID, nil
	case "IPv4":
		return IPv4, nil
	case "IPv6":
		return IPv6, nil
	case "Dynamic":
		return Dynamic, nil
	case "FixedString":
		if err := p.expect('('); err != nil {
			return Type{}, err
		}
		n, err := p.number()
		if err != nil {
			return Type{}, err
		}
		if err := p.expect(')'); err != nil {
			return Type{}, err
		}
		return FixedString(n), nil
	case "DateTime":
		tz := ""
		p.skipSpace()
		if p.peek() == '(' {
			p.pos++
			p.skipSpace()
			if p.peek() == '\'' {
				s, err := p.quotedString()
				if err != nil {
					return Type{}, err
				}
				tz = s
			}
			if err := p.expect(')'); err != nil {
				return Type{}, err
			}
		}
		return DateTime(tz), nil
	case "DateTime64":
		if err := p.expect('('); err != nil {
			return Type{}, err
		}
		prec, err := p.number()
		if err != nil {
			return Type{}, err
		}
		tz := ""
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			p.skipSpace()
			tz, err = p.quotedString()
			if err != nil {
				return Type{}, err
			}
		}
		if err := p.expect(')'); err != nil {
			return Type{}, err
		}
		return DateTime64(prec, tz), nil
	case "Decimal", "Decimal32", "Decimal64", "Decimal128", "Decimal256":
		if err := p.expect('('); err != nil {
			return Type{}, err
		}
		precision, err := p.number()
		if err != nil {
			return Type{}, err
		}
		if err := p.expect(','); err != nil {
			return Type{}, err
		}
		scale, err := p.number()
		if err != nil {
			return Type{}, err
		}
		if err := p.expect(')'); err != nil {
			return Type{}, err
		}
		kind := decimalKindForPrecision(name, precision)
		return Decimal(kind, precision, scale), nil
	case "Enum8", "Enum16":
		if err := p.expect('('); err != nil {
			return Type{}, err
		}
		var values []EnumValue
		for {
			p.skipSpace()
			label, err := p.quotedString()
			if err != nil {
				return Type{}, err
			}
			if err := p.expect('='); err != nil {
				return Type{}, err
			}
			v, err := p.number()
			if err != nil {
				return Type{}, err
			}
			values = append(values, EnumValue{Name: label, Value: int16(v)})
			p.skipSpace()
			if p.peek() == ',' {
				p.pos++
				continue
			}
			break
		}
		if err := p.expect(')'); err != nil {
			return Type{}, err
		}
		kind := KindEnum8
		if name == "Enum16" {
			kind = KindEnum16
		}
		return Enum(kind, values), nil
	case "Array":
		if err := p.expect('('); err != nil {
			return Type{}, err
		}
		inner, err := p.parseType()
		if err != nil {
			return Type{}, err
		}
		if err := p.expect(')'); err != nil {
			return Type{}, err
		}
		return Array(inner), nil
	case "Nullable":
		if err := p.expect('('); err != nil {
			return Type{}, err
		}
		inner, err := p.parseType()
		if err != nil {
			return Type{}, err
		}
		if err := p.expect(')'); err != nil {
			return Type{}, err
		}
		if inner.Kind == KindNullable {
			return Type{}, errors.New("chtype: Nullable cannot nest inside Nullable")
		}
		if inner.Kind == KindArray || inner.Kind == KindMap {
			return Type{}, errors.New("chtype: Nullable cannot directly contain Array or Map")
		}
		return Nullable(inner), nil
	case "LowCardinality":
		if err := p.expect('('); err != nil {
			return Type{}, err
		}
		inner, err := p.parseType()
		if err != nil {
			return Type{}, err
		}
		if err := p.expect(')'); err != nil {
			return Type{}, err
		}
		return LowCardinality(inner), nil
	case "Map":
		if err := p.expect('('); err != nil {
			return Type{}, err
		}
		key, err := p.parseType()
		if err != nil {
			return Type{}, err
		}
		if err := p.expect(','); err != nil {
			return Type{}, err
		}
		val, err := p.parseType()
		if err != nil {
			return Type{}, err
		}
		if err := p.expect(')'); err != nil {
			return Type{}, err
		}
		return Map(key, val), nil
	case "Tuple":
		if err := p.expect('('); err != nil {
			return Type{}, err
		}
		fields, err := p.parseFieldList()
		if err != nil {
			return Type{}, err
		}
		if err := p.expect(')'); err != nil {
			return Type{}, err
		}
		return Tuple(fields...), nil
	case "Nested":
		if err := p.expect('('); err != nil {
			return Type{}, err
		}
		fields, err := p.parseFieldList()
		if err != nil {
			return Type{}, err
		}
		if err := p.expect(')'); err != nil {
			return Type{}, err
		}
		return Type{Kind: KindNested, Fields: fields}, nil
	case "Variant":
		if err := p.expect('('); err != nil {
			return Type{}, err
		}
		var variants []Type
		for {
			t, err := p.parseType()
			if err != nil {
				return Type{}, err
			}
			variants = append(variants, t)
			p.skipSpace()
			if p.peek() == ',' {
				p.pos++
				continue
			}
			break
		}
		if err := p.expect(')'); err != nil {
			return Type{}, err
		}
		return Type{Kind: KindVariant, Variants: variants}, nil
	default:
		return Type{}, errors.Errorf("chtype: unknown type name %q", name)
	}
}

// parseFieldList parses a comma-separated list of "name Type" or bare
// "Type" entries, as used by Tuple and Nested.
func (p *parser) parseFieldList() ([]TupleElem, error) {
	var fields []TupleElem
	for {
		p.skipSpace()
		start := p.pos
		name := p.identifier()
		p.skipSpace()
		// A bare type name is followed immediately by '(' or ',' or ')';
		// a named field is followed by another identifier (the type).
		if p.peek() == '(' || p.peek() == ',' || p.peek() == ')' {
			p.pos = start
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			fields = append(fields, TupleElem{Type: t})
		} else {
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			fields = append(fields, TupleElem{Name: name, Type: t})
		}
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	return fields, nil
}

func decimalKindForPrecision(name string, precision int) Kind {
	switch name {
	case "Decimal32":
		return KindDecimal32
	case "Decimal64":
		return KindDecimal64
	case "Decimal128":
		return KindDecimal128
	case "Decimal256":
		return KindDecimal256
	}
	switch {
	case precision <= 9:
		return KindDecimal32
	case precision <= 18:
		return KindDecimal64
	case precision <= 38:
		return KindDecimal128
	default:
		return KindDecimal256
	}
}
