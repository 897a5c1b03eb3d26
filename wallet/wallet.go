// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wallet

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrEmptyAddress   = errors.New("wallet address is required")
	ErrInvalidAddress = errors.New("invalid wallet address")
)

// Normalize lowercases and trims a wallet address. Every address is
// normalized before it touches storage, so each wallet maps to exactly one
// voters row regardless of checksum casing.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Validate normalizes the address and checks it is a well-formed hex
// address. Returns the normalized form on success.
func Validate(address string) (string, error) {
	normalized := Normalize(address)
	if normalized == "" {
		return "", ErrEmptyAddress
	}
	if !common.IsHexAddress(normalized) {
		return "", ErrInvalidAddress
	}
	return normalized, nil
}

// Short returns the abbreviated display form (0x1234...abcd) used by the
// dashboard pages.
func Short(address string) string {
	if len(address) < 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
