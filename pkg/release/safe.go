package release

import (
	"errors"
	"fmt"
)

// SafeParser wraps a Parser so that neither errors nor panics escape
// untyped. Every failure comes back as a *ParseError.
type SafeParser struct {
	Parser Parser
}

// Parse delegates to the wrapped parser, recovering panics.
func (s SafeParser) Parse(name string) (tok RawTokens, err error) {
	defer func() {
		if r := recover(); r != nil {
			tok = RawTokens{}
			err = &ParseError{Name: name, Err: fmt.Errorf("%w: %v", ErrParserPanic, r)}
		}
	}()

	tok, err = s.Parser.Parse(name)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return RawTokens{}, err
		}
		return RawTokens{}, &ParseError{Name: name, Err: err}
	}
	return tok, nil
}
