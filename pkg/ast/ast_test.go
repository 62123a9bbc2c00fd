package ast

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeListGrowth(t *testing.T) {
	var l NodeList[*SimpleName]
	assert.Equal(t, 0, l.Cap())
	assert.NotNil(t, l.All(), "empty list should return an empty slice")
	assert.Len(t, l.All(), 0)

	for i := 0; i < 4; i++ {
		l.Add(&SimpleName{Value: string(rune('a' + i))})
	}
	assert.Equal(t, 4, l.Cap())

	l.Add(&SimpleName{Value: "e"})
	assert.Equal(t, 8, l.Cap())
	require.Len(t, l.All(), 5)
	assert.Equal(t, "e", l.All()[4].Value)
}

func TestNodeListRemoveCompacts(t *testing.T) {
	var l NodeList[*SimpleName]
	for _, v := range []string{"a", "b", "c"} {
		l.Add(&SimpleName{Value: v})
	}

	assert.True(t, l.Remove(1))
	assert.False(t, l.Remove(1), "a hole cannot be removed twice")
	assert.False(t, l.Remove(7))
	assert.Equal(t, 2, l.Len())

	all := l.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Value)
	assert.Equal(t, "c", all[1].Value)

	// After compaction indices refer to the new order.
	assert.True(t, l.Remove(1))
	all = l.All()
	require.Len(t, all, 1)
	assert.Equal(t, "a", all[0].Value)
}

func TestNodeListAddAfterRemovingEverything(t *testing.T) {
	unit := &TranslationUnit{}
	unit.AddDeclaration(&SimpleDeclaration{})
	require.True(t, unit.RemoveDeclaration(0))
	assert.Empty(t, unit.Declarations())

	second := &SimpleDeclaration{}
	require.NotPanics(t, func() { unit.AddDeclaration(second) })
	require.Len(t, unit.Declarations(), 1)
	assert.Same(t, second, unit.Declarations()[0])
}

func TestNodeListConcurrentReadsWithHoles(t *testing.T) {
	var l NodeList[*SimpleName]
	for i := 0; i < 16; i++ {
		l.Add(&SimpleName{Value: string(rune('a' + i))})
	}
	for i := 0; i < 16; i += 2 {
		require.True(t, l.Remove(i))
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			all := l.All()
			assert.Len(t, all, 8)
			assert.Equal(t, "b", all[0].Value)
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, l.Len())
}

func TestAttachSetsParentOnce(t *testing.T) {
	unit := &TranslationUnit{}
	decl := &SimpleDeclaration{}
	unit.AddDeclaration(decl)
	assert.Same(t, unit, decl.Parent())

	other := &NamespaceDefinition{}
	assert.Panics(t, func() { other.AddDeclaration(decl) })

	// Attaching nil is a no-op.
	var missing *SimpleName
	assert.NotPanics(t, func() { Attach(unit, missing) })
}

type countingResolver struct {
	calls   atomic.Int32
	binding Binding
}

func (r *countingResolver) Lookup(Name) Binding {
	r.calls.Add(1)
	return r.binding
}

type fakeBinding string

func (b fakeBinding) Name() string { return string(b) }

func TestResolveBindingMemoizes(t *testing.T) {
	r := &countingResolver{binding: fakeBinding("x")}
	n := &SimpleName{Value: "x"}

	assert.Nil(t, n.Binding())
	first := n.ResolveBinding(r)
	second := n.ResolveBinding(r)

	assert.Equal(t, fakeBinding("x"), first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), r.calls.Load())
	assert.Equal(t, first, n.Binding())
}

func TestResolveBindingMemoizesNil(t *testing.T) {
	r := &countingResolver{}
	n := &SimpleName{Value: "missing"}

	assert.Nil(t, n.ResolveBinding(r))
	assert.Nil(t, n.ResolveBinding(r))
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestResolveBindingConcurrent(t *testing.T) {
	r := &countingResolver{binding: fakeBinding("y")}
	n := &SimpleName{Value: "y"}

	var wg sync.WaitGroup
	results := make([]Binding, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = n.ResolveBinding(r)
		}(i)
	}
	wg.Wait()

	for _, b := range results {
		assert.Equal(t, fakeBinding("y"), b)
	}
}

func TestQualifiedNameString(t *testing.T) {
	q := &QualifiedName{FullyQualified: true}
	q.AddSegment(&SimpleName{Value: "std"})
	tid := &TemplateID{Template: &SimpleName{Value: "vector"}}
	tid.AddArgument(&TypeID{Specifier: &SimpleDeclSpecifier{Type: TypeInt}})
	q.AddSegment(tid)

	assert.Equal(t, "::std::vector<int>", q.String())
	assert.Equal(t, "vector", q.Identifier())
	assert.Same(t, tid, LastSegment(q))
}

func TestNumberPreOrder(t *testing.T) {
	unit := &TranslationUnit{}
	decl := &SimpleDeclaration{}
	spec := &SimpleDeclSpecifier{Type: TypeInt}
	decl.Specifier = Attach(decl, DeclSpecifier(spec))
	d := &BasicDeclarator{}
	SetName(d, &SimpleName{Value: "x"})
	decl.AddDeclarator(d)
	unit.AddDeclaration(decl)

	count := Number(unit)
	assert.Equal(t, 5, count)
	assert.Equal(t, NodeID(1), unit.ID())
	assert.Equal(t, NodeID(2), decl.ID())
	assert.Equal(t, NodeID(3), spec.ID())
	assert.Equal(t, NodeID(4), d.ID())
	assert.Equal(t, NodeID(5), d.Name().ID())
}

func TestNodeStringTypeID(t *testing.T) {
	d := &BasicDeclarator{}
	AddPointerOperator(d, &Pointer{})
	spec := &SimpleDeclSpecifier{Type: TypeChar}
	spec.Const = true
	typ := &TypeID{Specifier: spec, Declarator: d}

	assert.Equal(t, "const char *", NodeString(typ))
	assert.Equal(t, "operator const char *", (&ConversionName{Type: typ}).String())
}
