package display

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/standardbeagle/datamanager/internal/types"
)

// TreeNode is one parent and its children with reference counts.
type TreeNode struct {
	Parent   string      `json:"parent"`
	Children []TreeChild `json:"children"`
}

// TreeChild is one child of a TreeNode.
type TreeChild struct {
	Name       string `json:"name"`
	References int    `json:"references"`
}

// BuildTree groups refs by parent, keeping first-seen order, and attaches
// the count of each "parent.child" from counts.
func BuildTree(refs []types.ParentChildRef, counts map[string]int) []TreeNode {
	var nodes []TreeNode
	index := make(map[string]int)
	for _, ref := range refs {
		i, ok := index[ref.Parent]
		if !ok {
			i = len(nodes)
			index[ref.Parent] = i
			nodes = append(nodes, TreeNode{Parent: ref.Parent})
		}
		nodes[i].Children = append(nodes[i].Children, TreeChild{
			Name:       ref.Child,
			References: counts[ref.Text()],
		})
	}
	return nodes
}

// TreeFormatter formats parent/child trees for display
type TreeFormatter struct {
	options FormatterOptions
}

// FormatterOptions controls tree formatting
type FormatterOptions struct {
	Format     string // "text", "json", "compact"
	ShowCounts bool   // Append reference counts to children
	Indent     string // Indentation string
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(options FormatterOptions) *TreeFormatter {
	if options.Indent == "" {
		options.Indent = "  "
	}
	return &TreeFormatter{options: options}
}

// Format formats the tree for display
func (tf *TreeFormatter) Format(nodes []TreeNode) string {
	if len(nodes) == 0 {
		return "No entries\n"
	}

	switch tf.options.Format {
	case "json":
		return tf.formatJSON(nodes)
	case "compact":
		return tf.formatCompact(nodes)
	default:
		return tf.formatText(nodes)
	}
}

func (tf *TreeFormatter) formatText(nodes []TreeNode) string {
	var sb strings.Builder
	for _, node := range nodes {
		sb.WriteString(node.Parent)
		sb.WriteString("\n")

		for i, child := range node.Children {
			branch := "├─ "
			if i == len(node.Children)-1 {
				branch = "└─ "
			}
			sb.WriteString(tf.options.Indent)
			sb.WriteString(branch)
			sb.WriteString(child.Name)
			if tf.options.ShowCounts {
				sb.WriteString(countLabel(child.References))
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func countLabel(n int) string {
	if n == 0 {
		return " (unused)"
	}
	return fmt.Sprintf(" (%d)", n)
}

// formatCompact prints one "parent: a, b" line per parent.
func (tf *TreeFormatter) formatCompact(nodes []TreeNode) string {
	var sb strings.Builder
	for _, node := range nodes {
		names := make([]string, 0, len(node.Children))
		for _, child := range node.Children {
			name := child.Name
			if tf.options.ShowCounts {
				name += fmt.Sprintf("=%d", child.References)
			}
			names = append(names, name)
		}
		sb.WriteString(node.Parent + ": " + strings.Join(names, ", ") + "\n")
	}
	return sb.String()
}

func (tf *TreeFormatter) formatJSON(nodes []TreeNode) string {
	data, err := json.MarshalIndent(nodes, "", tf.options.Indent)
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data) + "\n"
}
