// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package wallet handles wallet address normalization and validation.

Addresses are stored lowercase-trimmed so that checksummed and lowercase
spellings of the same wallet map to one voter record:

	normalized, err := wallet.Validate(req.WalletAddress)

Short produces the abbreviated 0x1234...abcd display form.
*/
package wallet
