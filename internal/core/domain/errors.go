package domain

import "errors"

var (
	ErrOutOfStock     = errors.New("out of stock")
	ErrUnknownProduct = errors.New("unknown product")
	ErrNotInCart      = errors.New("product not in cart")
	ErrDeclined       = errors.New("operation declined")
	ErrInvalidPrice   = errors.New("invalid price")
)
