package utils

import (
	nanoid "github.com/jaevor/go-nanoid"
)

const (
	OrderTokenLength   = 11
	orderTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var orderToken func() string

func init() {
	gen, err := nanoid.CustomASCII(orderTokenAlphabet, OrderTokenLength)
	if err != nil {
		panic(err)
	}
	orderToken = gen
}

// NewOrderToken returns a random 11 character alphanumeric order id.
func NewOrderToken() string {
	return orderToken()
}
