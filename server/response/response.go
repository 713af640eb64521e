package response

import (
	"github.com/gin-gonic/gin"

	apiError "github.com/AmmarC10/ContractinGO-BE/errors"
)

// JSON writes the standard response envelope. Failures carry
// {"success": false, "error": <message>}; successes carry the payload under
// "data" with an optional human-readable message.
func JSON(c *gin.Context, message string, status int, data interface{}, err error) {
	if err != nil {
		msg := err.Error()
		if apiErr, ok := err.(*apiError.Error); ok {
			msg = apiErr.Message
			if status == 0 {
				status = apiErr.Status
			}
		}
		c.JSON(status, gin.H{
			"success": false,
			"error":   msg,
		})
		return
	}

	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}
