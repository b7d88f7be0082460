package types

// RemoveUnusedResult partitions a selection after a remove-unused attempt.
// The three lists are disjoint and together equal the normalized selection.
type RemoveUnusedResult struct {
	Removed   []string `json:"removed"`
	StillUsed []string `json:"still_used"`
	Failed    []string `json:"failed"`
}

// NewRemoveUnusedResult returns a result with non-nil empty lists.
func NewRemoveUnusedResult() RemoveUnusedResult {
	return RemoveUnusedResult{
		Removed:   []string{},
		StillUsed: []string{},
		Failed:    []string{},
	}
}

// Total returns the number of classified entries.
func (r RemoveUnusedResult) Total() int {
	return len(r.Removed) + len(r.StillUsed) + len(r.Failed)
}

// PostRemoveUpdate tells a view what to show after a removal.
type PostRemoveUpdate struct {
	ChildItems       []ParentChildRef `json:"child_items"`
	ClearExpressions bool             `json:"clear_expressions"`
}

// RemoveUnusedAndUpdateResult combines the removal outcome and the refreshed list.
type RemoveUnusedAndUpdateResult struct {
	RemoveResult RemoveUnusedResult `json:"remove_result"`
	Update       PostRemoveUpdate   `json:"update"`
}
