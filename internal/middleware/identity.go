package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// accountID returns the authenticated staff account ID as a string, or
// "guest" for unauthenticated requests. JWTAuth stores the subject claim
// under "account_id"; JSON decoding leaves numeric claims as float64.
func accountID(c echo.Context) string {
	switch v := c.Get("account_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	}
	return "guest"
}
