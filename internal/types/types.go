package types

import (
	"github.com/gnoswap-labs/selparse/internal/grammar"
	"github.com/gnoswap-labs/selparse/internal/tree"
)

// Report is the outcome of parsing one token document.
type Report struct {
	Filename string
	Tree     *tree.Tree
	// Position is where the cursor stopped in the whitespace-free tokens.
	Position int
	Total    int
	Complete bool
	// Diagnostic explains an incomplete parse. Empty when Complete.
	Diagnostic string
}

// NewReport summarizes a parse result.
func NewReport(filename string, res *grammar.Result) *Report {
	r := &Report{
		Filename: filename,
		Tree:     res.Tree,
		Position: res.Pos,
		Total:    res.Total,
		Complete: res.Complete(),
	}
	if err := res.Diagnostic(); err != nil {
		r.Diagnostic = err.Error()
	}
	return r
}
