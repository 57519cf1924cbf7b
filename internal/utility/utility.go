package utility

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// GetUserIDFromContext safely retrieves the user ID from the Echo context.
func GetUserIDFromContext(c echo.Context) (string, error) {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}
