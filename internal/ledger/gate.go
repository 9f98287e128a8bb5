package ledger

import (
	"context"
	"fmt"
)

// Prompt describes the question a Gate asks.
type Prompt struct {
	Title       string
	Description string
	Affirmative string // label of the "yes" answer
}

// Gate is the yes/no confirmation step required before destructive commands.
type Gate interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

func confirm(ctx context.Context, g Gate, p Prompt) error {
	if g == nil {
		return ErrDeclined
	}
	ok, err := g.Confirm(ctx, p)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeclined, err)
	}
	if !ok {
		return ErrDeclined
	}
	return nil
}
