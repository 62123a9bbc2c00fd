package ast

// Children returns the direct children of n in source order. Nil fields are
// skipped.
func Children(n Node) []Node {
	var out []Node
	add := func(children ...Node) {
		for _, c := range children {
			if !isNilNode(c) {
				out = append(out, c)
			}
		}
	}

	switch n := n.(type) {
	case *TranslationUnit:
		add(nodes(n.Declarations())...)
	case *SimpleDeclaration:
		add(n.Specifier)
		add(nodes(n.Declarators())...)
	case *FunctionDefinition:
		add(n.Specifier, n.Declarator, n.Body)
		add(nodes(n.CatchHandlers())...)
	case *NamespaceDefinition:
		add(n.Name)
		add(nodes(n.Declarations())...)
	case *NamespaceAlias:
		add(n.Alias, n.Target)
	case *UsingDirective:
		add(n.Namespace)
	case *UsingDeclaration:
		add(n.Name)
	case *LinkageSpecification:
		add(nodes(n.Declarations())...)
	case *TemplateDeclaration:
		add(nodes(n.Parameters())...)
		add(n.Declaration)
	case *TemplateSpecialization:
		add(n.Declaration)
	case *ExplicitTemplateInstantiation:
		add(n.Declaration)

	case *NamedTypeSpecifier:
		add(n.Name)
	case *ElaboratedTypeSpecifier:
		add(n.Name)
	case *CompositeTypeSpecifier:
		add(n.Name)
		add(nodes(n.Bases())...)
		add(nodes(n.Members())...)
	case *BaseSpecifier:
		add(n.Name)
	case *EnumerationSpecifier:
		add(n.Name)
		add(nodes(n.Enumerators())...)
	case *Enumerator:
		add(n.Name, n.Value)

	case *BasicDeclarator:
		addDeclarator(add, n)
	case *ArrayDeclarator:
		addDeclarator(add, n)
		add(nodes(n.ArrayModifiers())...)
	case *FunctionDeclarator:
		add(nodes(n.PointerOperators())...)
		add(n.Nested(), n.Name())
		add(nodes(n.Parameters())...)
		add(nodes(n.ExceptionSpecification())...)
		add(nodes(n.ChainInitializers())...)
		add(n.Initializer())
	case *FieldDeclarator:
		addDeclarator(add, n)
		add(n.BitWidth)
	case *ArrayModifier:
		add(n.Size)
	case *ConstructorChainInitializer:
		add(n.Member, n.Value)
	case *PointerToMember:
		add(n.Class)
	case *InitializerExpression:
		add(n.Value)
	case *InitializerList:
		add(nodes(n.Initializers())...)
	case *ConstructorInitializer:
		add(n.Value)
	case *ParameterDeclaration:
		add(n.Specifier, n.Declarator)
	case *TypeID:
		add(n.Specifier, n.Declarator)
	case *SimpleTypeTemplateParameter:
		add(n.Name, n.Default)
	case *TemplatedTypeTemplateParameter:
		add(nodes(n.Parameters())...)
		add(n.Name, n.Default)

	case *QualifiedName:
		add(nodes(n.Segments())...)
	case *TemplateID:
		add(n.Template)
		add(nodes(n.Arguments())...)
	case *ConversionName:
		add(n.Type)

	case *IdExpression:
		add(n.Name)
	case *UnaryExpression:
		add(n.Operand)
	case *BinaryExpression:
		add(n.Left, n.Right)
	case *ConditionalExpression:
		add(n.Condition, n.Positive, n.Negative)
	case *ExpressionList:
		add(nodes(n.Expressions())...)
	case *CastExpression:
		add(n.Type, n.Operand)
	case *FunctionCallExpression:
		add(n.Function, n.Arguments)
	case *ArraySubscriptExpression:
		add(n.Array, n.Subscript)
	case *FieldReference:
		add(n.Owner, n.Field)
	case *TypeIdExpression:
		add(n.Type)
	case *NewExpression:
		add(n.Placement, n.Type)
		add(nodes(n.Dimensions())...)
		add(n.Initializer)
	case *DeleteExpression:
		add(n.Operand)
	case *SimpleTypeConstructorExpression:
		add(n.Value)
	case *TypenameExpression:
		add(n.Name, n.Value)

	case *CompoundStatement:
		add(nodes(n.Statements())...)
	case *DeclarationStatement:
		add(n.Declaration)
	case *ExpressionStatement:
		add(n.Expression)
	case *IfStatement:
		add(n.Condition, n.Then, n.Else)
	case *WhileStatement:
		add(n.Condition, n.Body)
	case *DoStatement:
		add(n.Body, n.Condition)
	case *ForStatement:
		add(n.Init, n.Condition, n.Iteration, n.Body)
	case *SwitchStatement:
		add(n.Controller, n.Body)
	case *CaseStatement:
		add(n.Value)
	case *LabelStatement:
		add(n.Name)
	case *GotoStatement:
		add(n.Name)
	case *ReturnStatement:
		add(n.Value)
	case *TryBlockStatement:
		add(n.Body)
		add(nodes(n.CatchHandlers())...)
	case *CatchHandler:
		add(n.Declaration, n.Body)
	}
	return out
}

func addDeclarator(add func(...Node), d Declarator) {
	add(nodes(d.PointerOperators())...)
	add(d.Nested(), d.Name(), d.Initializer())
}

func nodes[T Node](items []T) []Node {
	out := make([]Node, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

// Inspect traverses the tree rooted at n in pre-order, calling f for each
// node. If f returns false the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if isNilNode(n) || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

// Number assigns pre-order IDs starting at 1 to every node under root and
// returns the number of nodes visited.
func Number(root Node) int {
	next := NodeID(0)
	Inspect(root, func(n Node) bool {
		next++
		n.base().id = next
		return true
	})
	return int(next)
}
