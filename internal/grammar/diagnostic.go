package grammar

import (
	"fmt"
	"strings"

	"github.com/gnoswap-labs/selparse/internal/token"
)

// Diagnostic describes the right-most position where a match failed.
// It survives rollback, so it points at the deepest point any alternative
// reached before the grammar gave up. Expected holds token classes, or a
// production name when the production was entered at end of input.
type Diagnostic struct {
	Pos      int
	Expected []string
	Found    *token.Token // nil at end of input
}

func (d *Diagnostic) expect(symbol string) {
	for _, e := range d.Expected {
		if e == symbol {
			return
		}
	}
	d.Expected = append(d.Expected, symbol)
}

func (d *Diagnostic) Error() string {
	found := "end of input"
	if d.Found != nil {
		found = d.Found.String()
	}
	return fmt.Sprintf("at token %d: expected %s, found %s", d.Pos, strings.Join(d.Expected, " or "), found)
}
