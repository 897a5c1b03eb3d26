// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and JSON helpers.

  - WithLogging: per-request start/completion logging via slog
  - CORS: cross-origin headers for the browser pages
  - JSONResponse / ErrorResponse: uniform JSON writing; errors always use
    the {success:false, error} shape
  - ParseJSONBody: request body decoding
  - GetClientIP: X-Forwarded-For / X-Real-IP aware client address
*/
package middleware
