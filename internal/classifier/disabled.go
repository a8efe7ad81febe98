package classifier

import (
	"context"
	"fmt"
)

var errNoAPIKey = fmt.Errorf("%w: no GEMINI_API_KEY set", ErrUnavailable)

// Disabled stands in when no API key is configured.
type Disabled struct{}

func (Disabled) Classify(context.Context, Request) (*Result, error) {
	return nil, errNoAPIKey
}
