package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/datamanager/internal/memdoc"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func buildDocument() *memdoc.Document {
	doc := memdoc.New("Tools")
	doc.MustAddObject(memdoc.TypeVarSet, "Params").
		AddProperty("Length", "Base", "10").
		AddProperty("Unused", "Base", "1")
	doc.MustAddObject(memdoc.TypeSpreadsheet, "Sheet").
		SetCell("B1", "=3").DefineAlias("B1", "Gap").
		SetCell("B2", "=4").DefineAlias("B2", "Spare")
	doc.MustAddObject(memdoc.TypePart, "Box").
		SetExpression("Length", "<<Params>>.Length").
		SetExpression("Gap", "Sheet.Gap")
	return doc
}

func call(t *testing.T, handler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error), args string) *mcp.CallToolResult {
	t.Helper()
	result, err := handler(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: json.RawMessage(args)},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func decode[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	var out T
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestListParents(t *testing.T) {
	s := NewServer(memdoc.NewApp(buildDocument()), nil, "")

	resp := decode[ListParentsResponse](t, call(t, s.handleListParents, `{}`))
	assert.Equal(t, "varsets", resp.Tab)
	assert.Equal(t, []string{"Params"}, resp.Parents)

	resp = decode[ListParentsResponse](t, call(t, s.handleListParents, `{"tab":"aliases"}`))
	assert.Equal(t, []string{"Sheet"}, resp.Parents)

	resp = decode[ListParentsResponse](t, call(t, s.handleListParents, `{"filter":"Parms"}`))
	assert.Empty(t, resp.Parents)
	assert.Equal(t, []string{"Params"}, resp.Suggestions)
}

func TestInvalidInputIsToolError(t *testing.T) {
	s := NewServer(memdoc.NewApp(buildDocument()), nil, "")

	result := call(t, s.handleListParents, `{"tab":"cells"}`)
	assert.True(t, result.IsError)

	result = call(t, s.handleListChildren, `{"parents":"Params"}`)
	assert.True(t, result.IsError)

	result = call(t, s.handleListChildren, `{}`)
	assert.True(t, result.IsError)
}

func TestListChildrenAndExpressions(t *testing.T) {
	s := NewServer(memdoc.NewApp(buildDocument()), nil, "")

	children := decode[ListChildrenResponse](t, call(t, s.handleListChildren, `{"tab":"aliases","parents":["Sheet"],"only_unused":true}`))
	require.Len(t, children.Children, 1)
	assert.Equal(t, "Spare", children.Children[0].Child)

	exprs := decode[ExpressionsResponse](t, call(t, s.handleExpressions, `{"selected":["Params.Length","Params.Unused"]}`))
	require.Len(t, exprs.Items, 1)
	assert.Equal(t, "Box.Length = <<Params>>.Length", exprs.Items[0].Display)
	assert.Equal(t, "Box", exprs.Items[0].ObjectName)
	assert.Equal(t, map[string]int{"Params.Length": 1, "Params.Unused": 0}, exprs.Counts)
}

func TestUseLabel(t *testing.T) {
	doc := buildDocument()
	params, _ := doc.Lookup("Params")
	params.SetLabel("Dimensions")
	box, _ := doc.Lookup("Box")
	box.SetLabel("Housing")
	s := NewServer(memdoc.NewApp(doc), nil, "")

	parents := decode[ListParentsResponse](t, call(t, s.handleListParents, `{"filter":"Dim","use_label":true}`))
	assert.Equal(t, []string{"Params"}, parents.Parents)
	assert.Equal(t, []string{"Dimensions"}, parents.Display)

	parents = decode[ListParentsResponse](t, call(t, s.handleListParents, `{"filter":"Dim"}`))
	assert.Empty(t, parents.Parents)
	assert.Empty(t, parents.Display)

	children := decode[ListChildrenResponse](t, call(t, s.handleListChildren, `{"parents":["Params"],"use_label":true}`))
	assert.Equal(t, []string{"Dimensions.Length", "Dimensions.Unused"}, children.Display)

	exprs := decode[ExpressionsResponse](t, call(t, s.handleExpressions, `{"selected":["Params.Length"],"use_label":true}`))
	require.Len(t, exprs.Items, 1)
	assert.Equal(t, "Housing.Length = <<Params>>.Length", exprs.Items[0].Display)
	assert.Equal(t, "Box", exprs.Items[0].ObjectName)
}

func TestRemoveUnusedSavesDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	doc := buildDocument()
	require.NoError(t, doc.SaveFile(path))

	s := NewServer(memdoc.NewApp(doc), nil, path)
	saves := 0
	s.OnSaved(func() { saves++ })

	resp := decode[RemoveUnusedResponse](t, call(t, s.handleRemoveUnused,
		`{"selected":["Params.Unused","Params.Length"],"parents":["Params"]}`))
	assert.Equal(t, []string{"Params.Unused"}, resp.RemoveResult.Removed)
	assert.Equal(t, []string{"Params.Length"}, resp.RemoveResult.StillUsed)
	assert.True(t, resp.Update.ClearExpressions)
	assert.True(t, resp.Saved)
	assert.Empty(t, resp.SaveError)
	assert.Equal(t, 1, saves)

	loaded, err := memdoc.LoadFile(path)
	require.NoError(t, err)
	params, ok := loaded.Lookup("Params")
	require.True(t, ok)
	assert.NotContains(t, params.PropertiesList(), "Unused")

	result := call(t, s.handleRemoveUnused, `{"selected":[]}`)
	assert.True(t, result.IsError)

	resp = decode[RemoveUnusedResponse](t, call(t, s.handleRemoveUnused, `{"selected":["Params.Length"]}`))
	assert.False(t, resp.Saved, "nothing removed, nothing saved")
	assert.Equal(t, 1, saves)
}

func TestSuggestParents(t *testing.T) {
	s := NewServer(memdoc.NewApp(buildDocument()), nil, "")

	resp := decode[SuggestParentsResponse](t, call(t, s.handleSuggestParents, `{"tab":"aliases","name":"shet"}`))
	assert.Equal(t, []string{"Sheet"}, resp.Suggestions)

	resp = decode[SuggestParentsResponse](t, call(t, s.handleSuggestParents, `{"name":"zzz"}`))
	assert.Equal(t, []string{}, resp.Suggestions)
}

type statsView struct {
	Tabs []struct {
		Tab      string `json:"tab"`
		Children struct {
			Total   int `json:"total"`
			Orphans int `json:"orphans"`
		} `json:"children"`
	} `json:"tabs"`
}

func TestStats(t *testing.T) {
	s := NewServer(memdoc.NewApp(buildDocument()), nil, "")

	out := decode[statsView](t, call(t, s.handleStats, `{"top":1}`))
	require.Len(t, out.Tabs, 2)
	assert.Equal(t, "varsets", out.Tabs[0].Tab)
	assert.Equal(t, 2, out.Tabs[0].Children.Total)
	assert.Equal(t, 1, out.Tabs[0].Children.Orphans)
}

func TestReplaceDocument(t *testing.T) {
	s := NewServer(memdoc.NewApp(buildDocument()), nil, "")

	next := memdoc.New("Next")
	next.MustAddObject(memdoc.TypeVarSet, "Other")
	s.ReplaceDocument(next)

	resp := decode[ListParentsResponse](t, call(t, s.handleListParents, `{}`))
	assert.Equal(t, []string{"Other"}, resp.Parents)
}

func TestSessionRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := NewServer(memdoc.NewApp(buildDocument()), nil, "")
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	g, gctx := errgroup.WithContext(ctx)
	serverSession, err := s.MCPServer().Connect(gctx, serverTransport, nil)
	require.NoError(t, err)
	g.Go(func() error {
		_ = serverSession.Wait()
		return nil
	})

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"expressions", "list_children", "list_parents", "remove_unused", "stats", "suggest_parents"}, names)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "list_children",
		Arguments: map[string]any{"tab": "varsets", "parents": []string{"Params"}},
	})
	require.NoError(t, err)
	children := decode[ListChildrenResponse](t, result)
	assert.Len(t, children.Children, 2)

	require.NoError(t, session.Close())
	require.NoError(t, g.Wait())
}
