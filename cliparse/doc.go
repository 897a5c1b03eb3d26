// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse parses server configuration from CLI flags and environment
variables. Flags win over environment variables; PORT defaults to 3000,
DATABASE_URL is required.
*/
package cliparse
