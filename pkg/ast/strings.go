package ast

import (
	"strings"
)

// NodeString renders a type-id, name, specifier or expression back to
// compact C++ source text. It is used for names that embed types and for
// diagnostics; it does not reproduce the original formatting.
func NodeString(n Node) string {
	if isNilNode(n) {
		return ""
	}
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

func writeNode(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case Name:
		sb.WriteString(n.String())
	case *TypeID:
		writeSpecifier(sb, n.Specifier)
		if n.Declarator != nil {
			if d := declaratorString(n.Declarator); d != "" {
				sb.WriteString(" ")
				sb.WriteString(d)
			}
		}
	case DeclSpecifier:
		writeSpecifier(sb, n)
	case *IdExpression:
		sb.WriteString(n.Name.String())
	case *LiteralExpression:
		sb.WriteString(n.Value)
	case *UnaryExpression:
		writeUnary(sb, n)
	case *BinaryExpression:
		writeNode(sb, n.Left)
		sb.WriteString(" " + n.Op.String() + " ")
		writeNode(sb, n.Right)
	case *ConditionalExpression:
		writeNode(sb, n.Condition)
		sb.WriteString(" ? ")
		writeNode(sb, n.Positive)
		sb.WriteString(" : ")
		writeNode(sb, n.Negative)
	case *ExpressionList:
		for i, e := range n.Expressions() {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeNode(sb, e)
		}
	case *CastExpression:
		if n.Op == CastC {
			sb.WriteString("(" + NodeString(n.Type) + ")")
		} else {
			sb.WriteString(n.Op.String() + "<" + NodeString(n.Type) + ">(")
		}
		writeNode(sb, n.Operand)
		if n.Op != CastC {
			sb.WriteString(")")
		}
	case *FunctionCallExpression:
		writeNode(sb, n.Function)
		sb.WriteString("(" + NodeString(n.Arguments) + ")")
	case *ArraySubscriptExpression:
		writeNode(sb, n.Array)
		sb.WriteString("[" + NodeString(n.Subscript) + "]")
	case *FieldReference:
		writeNode(sb, n.Owner)
		if n.Arrow {
			sb.WriteString("->")
		} else {
			sb.WriteString(".")
		}
		if n.Template {
			sb.WriteString("template ")
		}
		sb.WriteString(n.Field.String())
	case *TypeIdExpression:
		if n.Op == TypeIdSizeof {
			sb.WriteString("sizeof(")
		} else {
			sb.WriteString("typeid(")
		}
		sb.WriteString(NodeString(n.Type) + ")")
	case *NewExpression:
		if n.Global {
			sb.WriteString("::")
		}
		sb.WriteString("new ")
		if n.Placement != nil {
			sb.WriteString("(" + NodeString(n.Placement) + ") ")
		}
		if n.NewTypeID {
			sb.WriteString(NodeString(n.Type))
		} else {
			sb.WriteString("(" + NodeString(n.Type) + ")")
		}
		for _, d := range n.Dimensions() {
			sb.WriteString("[" + NodeString(d) + "]")
		}
		if n.HasInit {
			sb.WriteString("(" + NodeString(n.Initializer) + ")")
		}
	case *DeleteExpression:
		if n.Global {
			sb.WriteString("::")
		}
		sb.WriteString("delete ")
		if n.Vector {
			sb.WriteString("[] ")
		}
		writeNode(sb, n.Operand)
	case *SimpleTypeConstructorExpression:
		sb.WriteString(n.Type + "(" + NodeString(n.Value) + ")")
	case *TypenameExpression:
		sb.WriteString("typename " + n.Name.String() + "(" + NodeString(n.Value) + ")")
	case *ProblemExpression:
		sb.WriteString("<problem>")
	case *InitializerExpression:
		writeNode(sb, n.Value)
	case *InitializerList:
		sb.WriteString("{")
		for i, c := range n.Initializers() {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeNode(sb, c)
		}
		sb.WriteString("}")
	case *ConstructorInitializer:
		sb.WriteString("(" + NodeString(n.Value) + ")")
	case Declarator:
		sb.WriteString(declaratorString(n))
	case *ParameterDeclaration:
		writeSpecifier(sb, n.Specifier)
		if n.Declarator != nil {
			if d := declaratorString(n.Declarator); d != "" {
				sb.WriteString(" " + d)
			}
		}
	}
}

func writeUnary(sb *strings.Builder, n *UnaryExpression) {
	switch n.Op {
	case UnaryPostfixIncr, UnaryPostfixDecr:
		writeNode(sb, n.Operand)
		sb.WriteString(n.Op.String())
	case UnaryBracketed:
		sb.WriteString("(" + NodeString(n.Operand) + ")")
	case UnarySizeof, UnaryThrow:
		sb.WriteString(n.Op.String())
		if n.Operand != nil {
			sb.WriteString(" ")
			writeNode(sb, n.Operand)
		}
	case UnaryTypeid:
		sb.WriteString("typeid(" + NodeString(n.Operand) + ")")
	default:
		sb.WriteString(n.Op.String())
		writeNode(sb, n.Operand)
	}
}

func writeSpecifier(sb *strings.Builder, s DeclSpecifier) {
	if isNilNode(s) {
		return
	}
	var parts []string
	f := s.Flags()
	if f.Storage != StorageUnspecified {
		parts = append(parts, f.Storage.String())
	}
	if f.Const {
		parts = append(parts, "const")
	}
	if f.Volatile {
		parts = append(parts, "volatile")
	}
	switch s := s.(type) {
	case *SimpleDeclSpecifier:
		if s.Signed {
			parts = append(parts, "signed")
		}
		if s.Unsigned {
			parts = append(parts, "unsigned")
		}
		if s.Short {
			parts = append(parts, "short")
		}
		if s.LongLong {
			parts = append(parts, "long long")
		} else if s.Long {
			parts = append(parts, "long")
		}
		if s.Type != TypeUnspecified {
			parts = append(parts, s.Type.String())
		}
	case *NamedTypeSpecifier:
		if s.Typename {
			parts = append(parts, "typename")
		}
		parts = append(parts, s.Name.String())
	case *ElaboratedTypeSpecifier:
		parts = append(parts, s.Kind.String(), s.Name.String())
	case *CompositeTypeSpecifier:
		parts = append(parts, s.Key.String())
		if s.Name != nil && s.Name.String() != "" {
			parts = append(parts, s.Name.String())
		}
	case *EnumerationSpecifier:
		parts = append(parts, "enum")
		if s.Name != nil && s.Name.Value != "" {
			parts = append(parts, s.Name.Value)
		}
	}
	sb.WriteString(strings.Join(parts, " "))
}

func declaratorString(d Declarator) string {
	var sb strings.Builder
	for _, op := range d.PointerOperators() {
		switch op := op.(type) {
		case *Pointer:
			sb.WriteString("*")
			if op.Const {
				sb.WriteString(" const")
			}
			if op.Volatile {
				sb.WriteString(" volatile")
			}
		case *Reference:
			sb.WriteString("&")
		case *PointerToMember:
			sb.WriteString(op.Class.String() + "::*")
		}
	}
	if inner := d.Nested(); inner != nil {
		sb.WriteString("(" + declaratorString(inner) + ")")
	} else if name := d.Name(); name != nil {
		sb.WriteString(name.String())
	}
	switch d := d.(type) {
	case *ArrayDeclarator:
		for _, m := range d.ArrayModifiers() {
			sb.WriteString("[" + NodeString(m.Size) + "]")
		}
	case *FunctionDeclarator:
		sb.WriteString("(")
		for i, p := range d.Parameters() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(NodeString(p))
		}
		if d.VarArgs {
			if len(d.Parameters()) > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("...")
		}
		sb.WriteString(")")
		if d.Const {
			sb.WriteString(" const")
		}
	case *FieldDeclarator:
		if d.BitWidth != nil {
			sb.WriteString(" : " + NodeString(d.BitWidth))
		}
	}
	return sb.String()
}
