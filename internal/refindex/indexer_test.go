package refindex

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/datamanager/internal/graph"
	"github.com/standardbeagle/datamanager/internal/memdoc"
)

func newIndexedDoc() (*memdoc.Document, *Indexer) {
	doc := memdoc.New("Test")
	app := memdoc.NewApp(doc)
	return doc, NewIndexer(graph.NewAccess(app))
}

func TestCollectDecorated(t *testing.T) {
	doc, ix := newIndexedDoc()
	doc.MustAddObject(memdoc.TypeVarSet, "Params").AddProperty("Length", "Base", "10")
	doc.MustAddObject(memdoc.TypePart, "Box").
		SetExpression("Length", "<<Params>>.Length").
		SetExpression(".Placement.Base.x", "Params.Length / 2").
		SetExpression("Width", "<<Params>>.LengthMax")

	refs := ix.Collect(doc, Query{
		Search:    NewSearch("Params", "Length"),
		OwnerName: "Params",
		OwnerType: memdoc.TypeVarSet,
	})

	assert.Equal(t, map[string]string{
		"Box.Length":           "<<Params>>.Length",
		"Box.Placement.Base.x": "Params.Length / 2",
	}, refs)
}

func TestCollectInternalOnlyOnOwner(t *testing.T) {
	doc, ix := newIndexedDoc()
	doc.MustAddObject(memdoc.TypeVarSet, "Params").
		AddProperty("foo", "Base", "1").
		AddProperty("foobar", "Base", "2").
		SetExpression("foobar", "foo * 2")
	// Same bare name inside another container must not count.
	doc.MustAddObject(memdoc.TypeVarSet, "Params001").
		AddProperty("foo", "Base", "1").
		AddProperty("baz", "Base", "3").
		SetExpression("baz", "foo + 1")

	q := Query{Search: NewSearch("Params", "foo"), OwnerName: "Params", OwnerType: memdoc.TypeVarSet}
	assert.Equal(t, map[string]string{"Params.foobar": "foo * 2"}, ix.Collect(doc, q))

	q = Query{Search: NewSearch("Params", "foobar"), OwnerName: "Params", OwnerType: memdoc.TypeVarSet}
	assert.Empty(t, ix.Collect(doc, q))
}

func TestCollectInternalRequiresOwnerType(t *testing.T) {
	doc, ix := newIndexedDoc()
	doc.MustAddObject(memdoc.TypePart, "Params").SetExpression("x", "foo")

	q := Query{Search: NewSearch("Params", "foo"), OwnerName: "Params", OwnerType: memdoc.TypeVarSet}
	assert.Empty(t, ix.Collect(doc, q))
}

func TestCollectParentOnly(t *testing.T) {
	doc, ix := newIndexedDoc()
	doc.MustAddObject(memdoc.TypeVarSet, "Params")
	doc.MustAddObject(memdoc.TypePart, "Box").
		SetExpression("Length", "<<Params>>.A").
		SetExpression("Width", "Params.B")

	refs := ix.Collect(doc, Query{Search: NewSearch("Params", ""), OwnerName: "Params"})
	assert.Equal(t, []string{"Box.Length"}, SortedKeys(refs))
}

func TestCollectNilDocument(t *testing.T) {
	ix := NewIndexer(graph.NewAccess(nil))
	assert.Empty(t, ix.Collect(nil, Query{Search: NewSearch("P", "x")}))
}
