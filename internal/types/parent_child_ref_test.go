package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseParentChildRef(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   ParentChildRef
		wantOK bool
	}{
		{"simple", "Params.Length", ParentChildRef{"Params", "Length"}, true},
		{"child keeps later dots", "Sheet.a.b", ParentChildRef{"Sheet", "a.b"}, true},
		{"no dot", "Params", ParentChildRef{}, false},
		{"empty parent", ".Length", ParentChildRef{}, false},
		{"empty child", "Params.", ParentChildRef{}, false},
		{"empty", "", ParentChildRef{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseParentChildRef(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParentChildRef_TextRoundTrip(t *testing.T) {
	refs := []ParentChildRef{
		{"Params", "Length"},
		{"Spreadsheet001", "width_mm"},
		{"A", "x"},
	}
	for _, ref := range refs {
		parsed, ok := ParseParentChildRef(ref.Text())
		assert.True(t, ok, ref.Text())
		assert.Equal(t, ref, parsed)
	}
}

func TestNormalizeSelection(t *testing.T) {
	got := NormalizeSelection([]string{"A.x", "A.y", "A.x", "bad", "bad"})
	assert.Equal(t, []string{"A.x", "A.y", "bad"}, got)
	assert.Empty(t, NormalizeSelection(nil))
}

func TestRefTexts(t *testing.T) {
	got := RefTexts([]ParentChildRef{{"A", "x"}, {"B", "y"}})
	assert.Equal(t, []string{"A.x", "B.y"}, got)
}

func TestExpressionItem_DisplayText(t *testing.T) {
	item := NewExpressionItem("Box", "Box.Length", "<<Params>>.Length")
	assert.Equal(t, "Box.Length = <<Params>>.Length", item.DisplayText())

	def := ExpressionItem{ObjectName: "Sheet", LHS: "Sheet.A1", RHS: "'width", Operator: OperatorAliasDefinition}
	assert.Equal(t, "Sheet.A1 := 'width", def.DisplayText())

	bare := ExpressionItem{LHS: "a", RHS: "b"}
	assert.Equal(t, "a = b", bare.DisplayText())
}

func TestParseExpressionItemObjectName(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"Box.Length = <<Params>>.Length", "Box", true},
		{"Sheet.A1 := 'Width", "Sheet", true},
		{"Box.Placement.Base.x = 2", "Box", true},
		{"NoDot = 1", "", false},
		{"", "", false},
		{".Length = 1", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseExpressionItemObjectName(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}
