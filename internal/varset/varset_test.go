package varset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/datamanager/internal/config"
	"github.com/standardbeagle/datamanager/internal/graph"
	"github.com/standardbeagle/datamanager/internal/memdoc"
	"github.com/standardbeagle/datamanager/internal/types"
)

func newQuery(doc *memdoc.Document) *Query {
	cfg := config.Default()
	return NewQuery(graph.NewAccess(memdoc.NewApp(doc)), cfg.VarSet, cfg.CopyOnChange)
}

// buildDocument creates:
//
//	Params     Length, Width (Base), Segments (Boom)
//	Params001  copy-on-change clone of Params
//	Box        expressions referencing Params
func buildDocument(t *testing.T) *memdoc.Document {
	t.Helper()
	doc := memdoc.New("Test")
	doc.MustAddObject(memdoc.TypeVarSet, "Params").
		AddProperty("Width", "Base", "5").
		AddProperty("Length", "Base", "10").
		AddProperty("Segments", "Boom", "3")
	doc.MustAddObject(memdoc.TypeVarSet, "Params001").
		AddProperty("Length", "Base", "10")
	doc.MustAddObject(memdoc.TypeGroup, "CopyOnChangeGroup").AddToGroup("Holder")
	doc.MustAddObject(memdoc.TypePart, "Holder").LinkTo("Params001")
	doc.MustAddObject(memdoc.TypePart, "Box").
		SetExpression("Length", "<<Params>>.Length").
		SetExpression(".Placement.Base.x", "Params.Length / 2")
	doc.MustAddObject(memdoc.TypePart, "Box001").
		SetExpression("Length", "<<Params001>>.Length")
	return doc
}

func TestVarSets(t *testing.T) {
	q := newQuery(buildDocument(t))

	assert.Equal(t, []string{"Params", "Params001"}, q.VarSets(false))
	assert.Equal(t, []string{"Params"}, q.VarSets(true))
}

func TestVarSetsNoDocument(t *testing.T) {
	q := newQuery(nil)
	assert.Empty(t, q.VarSets(true))
	assert.Empty(t, q.VariableNames("Params"))
	assert.Empty(t, q.References("Params", "Length"))
	assert.False(t, q.RemoveVariable("Params", "Length"))
}

func TestVariableNames(t *testing.T) {
	q := newQuery(buildDocument(t))

	assert.Equal(t, []string{"Length", "Segments", "Width"}, q.VariableNames("Params"))
	assert.Empty(t, q.VariableNames("Box"), "non-VarSet objects have no variables")
	assert.Empty(t, q.VariableNames("Missing"))
}

func TestVariableNamesLegacyProfile(t *testing.T) {
	doc := buildDocument(t)
	require.NoError(t, doc.SetProfile(memdoc.ProfileLegacy))
	q := newQuery(doc)

	// Falls back to PropertiesList minus built-ins.
	assert.Equal(t, []string{"Length", "Segments", "Width"}, q.VariableNames("Params"))
	// No group capability: everything is in the default group.
	assert.Equal(t, []string{"Base"}, q.GroupNames("Params"))
}

func TestVariableGroups(t *testing.T) {
	q := newQuery(buildDocument(t))

	assert.Equal(t, map[string]string{
		"Length":   "Base",
		"Width":    "Base",
		"Segments": "Boom",
	}, q.VariableGroups("Params"))
	assert.Equal(t, []string{"Base", "Boom"}, q.GroupNames("Params"))
	assert.Equal(t, []string{"Length", "Width"}, q.VariableNamesForGroup("Params", "Base"))
	assert.Equal(t, []string{"Segments"}, q.VariableNamesForGroup("Params", "Boom"))
	assert.Equal(t, []string{"Length", "Segments", "Width"}, q.VariableNamesForGroup("Params", ""))
	assert.Equal(t, []string{"Length", "Width"}, q.VariableNamesForGroup("Params", "  "), "blank group means default")
}

func TestReferences(t *testing.T) {
	q := newQuery(buildDocument(t))

	assert.Equal(t, map[string]string{
		"Box.Length":           "<<Params>>.Length",
		"Box.Placement.Base.x": "Params.Length / 2",
	}, q.References("Params", "Length"))

	assert.Equal(t, map[string]string{
		"Box001.Length": "<<Params001>>.Length",
	}, q.References("Params001", "Length"))

	assert.Equal(t, []string{"Box.Length"}, keys(q.References("Params", "")), "parent-only search needs the decorated form")
}

func TestReferencesCloneScenario(t *testing.T) {
	doc := memdoc.New("Boom")
	doc.MustAddObject(memdoc.TypeVarSet, "Params").AddProperty("BoomSegments", "Base", "4")
	doc.MustAddObject(memdoc.TypeVarSet, "Params001").AddProperty("BoomSegments", "Base", "4")
	doc.MustAddObject(memdoc.TypePart, "A").SetExpression("Count", "<<Params>>.BoomSegments")
	doc.MustAddObject(memdoc.TypePart, "B").SetExpression("Count", "<<Params001>>.BoomSegments")

	q := newQuery(doc)
	assert.Equal(t, map[string]string{"A.Count": "<<Params>>.BoomSegments"}, q.References("Params", "BoomSegments"))
}

func TestReferencesInternal(t *testing.T) {
	doc := memdoc.New("Test")
	doc.MustAddObject(memdoc.TypeVarSet, "Params").
		AddProperty("foo", "Base", "1").
		AddProperty("foobar", "Base", "2").
		SetExpression("foobar", "foo * 2")

	q := newQuery(doc)
	assert.Len(t, q.References("Params", "foo"), 1)
	assert.Empty(t, q.References("Params", "foobar"))
}

func TestRemoveVariable(t *testing.T) {
	doc := buildDocument(t)
	q := newQuery(doc)

	assert.True(t, q.RemoveVariable("Params", "Width"))
	assert.Equal(t, []string{"Length", "Segments"}, q.VariableNames("Params"))

	assert.False(t, q.RemoveVariable("Params", "Width"), "already removed")
	assert.False(t, q.RemoveVariable("Params", "Label"), "built-in properties are refused by the host")
	assert.False(t, q.RemoveVariable("Box", "Length"), "not a VarSet")
	assert.False(t, q.RemoveVariable("Missing", "Length"))
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func refTexts(refs []types.ParentChildRef) []string {
	return types.RefTexts(refs)
}
