package ast

// StorageClass is the storage class specifier of a declaration
type StorageClass int

const (
	StorageUnspecified StorageClass = iota
	StorageAuto
	StorageRegister
	StorageStatic
	StorageExtern
	StorageMutable
	StorageTypedef
)

func (s StorageClass) String() string {
	switch s {
	case StorageAuto:
		return "auto"
	case StorageRegister:
		return "register"
	case StorageStatic:
		return "static"
	case StorageExtern:
		return "extern"
	case StorageMutable:
		return "mutable"
	case StorageTypedef:
		return "typedef"
	default:
		return ""
	}
}

// Specifiers holds the qualifier and function-specifier flags common to all
// declaration specifiers.
type Specifiers struct {
	Storage  StorageClass
	Const    bool
	Volatile bool
	Restrict bool
	Inline   bool
	Virtual  bool
	Explicit bool
	Friend   bool
}

// IsTypedef reports whether the declaration introduces a type alias
func (s *Specifiers) IsTypedef() bool { return s.Storage == StorageTypedef }

// specifierBase is embedded by every DeclSpecifier
type specifierBase struct {
	nodeBase
	Specifiers
}

func (s *specifierBase) Flags() *Specifiers { return &s.Specifiers }
func (s *specifierBase) declSpecifierNode() {}

// SimpleType is the fundamental type of a simple declaration specifier
type SimpleType int

const (
	TypeUnspecified SimpleType = iota
	TypeVoid
	TypeChar
	TypeWcharT
	TypeBool
	TypeInt
	TypeFloat
	TypeDouble
)

func (t SimpleType) String() string {
	switch t {
	case TypeVoid:
		return "void"
	case TypeChar:
		return "char"
	case TypeWcharT:
		return "wchar_t"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	default:
		return ""
	}
}

// SimpleDeclSpecifier is a specifier built only from keywords, e.g.
// "static unsigned long int". Constructors and destructors carry one with
// no type at all.
type SimpleDeclSpecifier struct {
	specifierBase
	Type     SimpleType
	Signed   bool
	Unsigned bool
	Short    bool
	Long     bool
	LongLong bool
}

// HasType reports whether the specifier names a type
func (s *SimpleDeclSpecifier) HasType() bool {
	return s.Type != TypeUnspecified || s.Signed || s.Unsigned || s.Short || s.Long || s.LongLong
}

// NamedTypeSpecifier refers to a type by name, e.g. "std::string"
type NamedTypeSpecifier struct {
	specifierBase
	Name     Name
	Typename bool
}

// ElaboratedKind is the class key of an elaborated type specifier
type ElaboratedKind int

const (
	ElaboratedEnum ElaboratedKind = iota
	ElaboratedStruct
	ElaboratedUnion
	ElaboratedClass
)

func (k ElaboratedKind) String() string {
	switch k {
	case ElaboratedEnum:
		return "enum"
	case ElaboratedStruct:
		return "struct"
	case ElaboratedUnion:
		return "union"
	default:
		return "class"
	}
}

// ElaboratedTypeSpecifier is "class Foo", "enum E" and the like. Without
// declarators it is a forward declaration.
type ElaboratedTypeSpecifier struct {
	specifierBase
	Kind ElaboratedKind
	Name Name
}

// CompositeKey is the class key of a class definition
type CompositeKey int

const (
	KeyStruct CompositeKey = iota
	KeyUnion
	KeyClass
)

func (k CompositeKey) String() string {
	switch k {
	case KeyStruct:
		return "struct"
	case KeyUnion:
		return "union"
	default:
		return "class"
	}
}

// CompositeTypeSpecifier is a class, struct or union definition
type CompositeTypeSpecifier struct {
	specifierBase
	Key     CompositeKey
	Name    Name
	bases   NodeList[*BaseSpecifier]
	members NodeList[Declaration]
}

// AddBase appends a base specifier
func (c *CompositeTypeSpecifier) AddBase(b *BaseSpecifier) {
	c.bases.Add(Attach(c, b))
}

// Bases returns the base clause entries
func (c *CompositeTypeSpecifier) Bases() []*BaseSpecifier { return c.bases.All() }

// AddMember appends a member declaration
func (c *CompositeTypeSpecifier) AddMember(d Declaration) {
	c.members.Add(Attach(c, d))
}

// Members returns the member declarations in order
func (c *CompositeTypeSpecifier) Members() []Declaration { return c.members.All() }

// RemoveMember nulls the member at index i, leaving a hole until the next read
func (c *CompositeTypeSpecifier) RemoveMember(i int) bool { return c.members.Remove(i) }

// BaseSpecifier is one entry of a base clause
type BaseSpecifier struct {
	nodeBase
	Name       Name
	Virtual    bool
	Visibility AccessLevel
}

// EnumerationSpecifier is an enum definition
type EnumerationSpecifier struct {
	specifierBase
	Name        *SimpleName
	enumerators NodeList[*Enumerator]
}

// AddEnumerator appends an enumerator
func (e *EnumerationSpecifier) AddEnumerator(en *Enumerator) {
	e.enumerators.Add(Attach(e, en))
}

// Enumerators returns the enumerators in order
func (e *EnumerationSpecifier) Enumerators() []*Enumerator { return e.enumerators.All() }

// Enumerator is one constant of an enumeration
type Enumerator struct {
	nodeBase
	Name  *SimpleName
	Value Expression
}
