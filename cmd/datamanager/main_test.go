package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/datamanager/internal/debug"
	"github.com/standardbeagle/datamanager/internal/memdoc"
	"github.com/standardbeagle/datamanager/internal/types"
)

// setupProject writes a snapshot and a config pointing at it, and isolates
// the test from any config in the real home directory.
func setupProject(t *testing.T) (dir, docPath string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir = t.TempDir()
	docPath = filepath.Join(dir, "model.json")

	doc := memdoc.New("Model")
	doc.MustAddObject(memdoc.TypeVarSet, "Params").
		AddProperty("Length", "Base", "10").
		AddProperty("Unused", "Base", "1")
	doc.MustAddObject(memdoc.TypeSpreadsheet, "Sheet").
		SetCell("B1", "=3").DefineAlias("B1", "Gap").
		SetCell("B2", "=4").DefineAlias("B2", "Spare")
	doc.MustAddObject(memdoc.TypePart, "Box").
		SetExpression("Length", "<<Params>>.Length").
		SetExpression("Gap", "Sheet.Gap")
	require.NoError(t, doc.SaveFile(docPath))

	kdl := "version 1\ndocument {\n    path \"model.json\"\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".datamanager.kdl"), []byte(kdl), 0644))
	return dir, docPath
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	app := newApp()
	var stdout, stderr bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"datamanager"}, args...))
	return stdout.String(), stderr.String(), err
}

func TestParentsCommand(t *testing.T) {
	dir, _ := setupProject(t)

	out, _, err := run(t, "--root", dir, "parents")
	require.NoError(t, err)
	assert.Equal(t, "Params\n", out)

	out, _, err = run(t, "--root", dir, "--tab", "aliases", "parents")
	require.NoError(t, err)
	assert.Equal(t, "Sheet\n", out)

	out, errOut, err := run(t, "--root", dir, "parents", "--filter", "Parms")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "did you mean: Params")
}

func TestChildrenCommand(t *testing.T) {
	dir, _ := setupProject(t)

	out, _, err := run(t, "--root", dir, "children", "Params")
	require.NoError(t, err)
	assert.Equal(t, "Params.Length\nParams.Unused\n", out)

	out, _, err = run(t, "--root", dir, "--json", "-t", "aliases", "children", "--only-unused", "Sheet")
	require.NoError(t, err)
	var refs []types.ParentChildRef
	require.NoError(t, json.Unmarshal([]byte(out), &refs))
	assert.Equal(t, []types.ParentChildRef{{Parent: "Sheet", Child: "Spare"}}, refs)

	_, _, err = run(t, "--root", dir, "children")
	assert.Error(t, err)
}

func TestRefsCommand(t *testing.T) {
	dir, _ := setupProject(t)

	out, _, err := run(t, "--root", dir, "refs", "Params.Length")
	require.NoError(t, err)
	assert.Equal(t, "Params.Length: 1\n  Box.Length = <<Params>>.Length\n", out)
}

func TestRemoveUnusedCommand(t *testing.T) {
	dir, docPath := setupProject(t)

	out, _, err := run(t, "--root", dir, "remove-unused", "Params.Unused", "Params.Length")
	require.NoError(t, err)
	assert.Contains(t, out, "removed: Params.Unused\n")
	assert.Contains(t, out, "still used: Params.Length\n")

	doc, err := memdoc.LoadFile(docPath)
	require.NoError(t, err)
	params, ok := doc.Lookup("Params")
	require.True(t, ok)
	assert.NotContains(t, params.PropertiesList(), "Unused")

	_, _, err = run(t, "--root", dir, "remove-unused")
	assert.Error(t, err, "an empty selection is refused")
}

func TestRemoveUnusedNoSave(t *testing.T) {
	dir, docPath := setupProject(t)
	before, err := os.ReadFile(docPath)
	require.NoError(t, err)

	_, _, err = run(t, "--root", dir, "-t", "aliases", "remove-unused", "--no-save", "Sheet.Spare")
	require.NoError(t, err)

	after, err := os.ReadFile(docPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSuggestCommand(t *testing.T) {
	dir, _ := setupProject(t)

	out, _, err := run(t, "--root", dir, "suggest", "parms")
	require.NoError(t, err)
	assert.Equal(t, "Params\n", out)
}

func TestDocumentFlagOverridesConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	docPath := filepath.Join(dir, "other.toml")
	doc := memdoc.New("Other")
	doc.MustAddObject(memdoc.TypeVarSet, "Globals")
	require.NoError(t, doc.SaveFile(docPath))

	out, _, err := run(t, "--root", dir, "--document", docPath, "parents")
	require.NoError(t, err)
	assert.Equal(t, "Globals\n", out)
}

func TestMissingDocument(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, _, err := run(t, "--root", t.TempDir(), "parents")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no document")
}

func TestBadFlags(t *testing.T) {
	dir, _ := setupProject(t)

	_, _, err := run(t, "--root", dir, "--tab", "cells", "parents")
	assert.Error(t, err)

	_, _, err = run(t, "--root", dir, "--profile", "modern", "parents")
	assert.Error(t, err)

	out, _, err := run(t, "--root", dir, "--profile", "legacy", "-t", "aliases", "children", "Sheet")
	require.NoError(t, err)
	assert.Equal(t, "Sheet.Gap\nSheet.Spare\n", out)
}

func TestStatsCommand(t *testing.T) {
	dir, _ := setupProject(t)

	out, _, err := run(t, "--root", dir, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "varsets: 1 parents (0 derived), 2 children, 1 unused, 1 references (max 1)")
	assert.Contains(t, out, "aliases: 1 parents (0 derived), 2 children, 1 unused, 1 references (max 1)")
}

func TestTreeCommand(t *testing.T) {
	dir, _ := setupProject(t)

	out, _, err := run(t, "--root", dir, "tree")
	require.NoError(t, err)
	assert.Equal(t, "Params\n  ├─ Length (1)\n  └─ Unused (unused)\n", out)

	out, _, err = run(t, "--root", dir, "-t", "aliases", "tree", "--format", "compact", "--only-unused")
	require.NoError(t, err)
	assert.Equal(t, "Sheet: Spare=0\n", out)
}

func TestDebugFlag(t *testing.T) {
	dir, _ := setupProject(t)
	t.Cleanup(func() {
		debug.EnableDebug = "false"
		debug.SetDebugOutput(nil)
	})

	out, errOut, err := run(t, "--root", dir, "--debug", "parents")
	require.NoError(t, err)
	assert.Equal(t, "Params\n", out)
	assert.Contains(t, errOut, "[DEBUG] document")
	assert.Contains(t, errOut, "tab varsets")
}

func TestUseLabelFlag(t *testing.T) {
	dir, docPath := setupProject(t)
	doc, err := memdoc.LoadFile(docPath)
	require.NoError(t, err)
	params, ok := doc.Lookup("Params")
	require.True(t, ok)
	params.SetLabel("Dimensions")
	box, ok := doc.Lookup("Box")
	require.True(t, ok)
	box.SetLabel("Housing")
	require.NoError(t, doc.SaveFile(docPath))

	out, _, err := run(t, "--root", dir, "--use-label", "parents", "--filter", "Dim*")
	require.NoError(t, err)
	assert.Equal(t, "Dimensions\n", out)

	out, _, err = run(t, "--root", dir, "-l", "parents", "--filter", "Par")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, _, err = run(t, "--root", dir, "--use-label", "children", "Params")
	require.NoError(t, err)
	assert.Equal(t, "Dimensions.Length\nDimensions.Unused\n", out)

	out, _, err = run(t, "--root", dir, "--use-label", "refs", "Params.Length")
	require.NoError(t, err)
	assert.Equal(t, "Params.Length: 1\n  Housing.Length = <<Params>>.Length\n", out)

	out, _, err = run(t, "--root", dir, "--use-label", "--json", "parents")
	require.NoError(t, err)
	var parents struct {
		Parents []string `json:"parents"`
		Display []string `json:"display"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parents))
	assert.Equal(t, []string{"Params"}, parents.Parents)
	assert.Equal(t, []string{"Dimensions"}, parents.Display)
}
