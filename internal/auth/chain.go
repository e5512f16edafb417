package auth

import (
	"context"
	"errors"
)

// ChainValidator tries each validator in order and returns the first success
type ChainValidator struct {
	validators []TokenValidator
}

func NewChainValidator(validators ...TokenValidator) *ChainValidator {
	return &ChainValidator{validators: validators}
}

func (c *ChainValidator) ValidateToken(ctx context.Context, token string) (*Principal, error) {
	var errs []error
	for _, v := range c.validators {
		p, err := v.ValidateToken(ctx, token)
		if err == nil {
			return p, nil
		}
		// an expired local token should not fall through to other issuers
		if errors.Is(err, ErrExpiredToken) {
			return nil, err
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrInvalidToken
	}
	return nil, errors.Join(append([]error{ErrInvalidToken}, errs...)...)
}
