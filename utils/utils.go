package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gringotts/onboarding/types"
)

// APIResponse renders the uniform response envelope
func APIResponse(ctx *gin.Context, httpCode int, status string, message string, data interface{}) {
	ctx.JSON(httpCode, types.Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// GetErrorData extracts field-level error data from a binding error
func GetErrorData(err error) []types.ErrorData {
	var errorData []types.ErrorData

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			errorData = append(errorData, types.ErrorData{
				Field:   fe.Field(),
				Message: validationMessage(fe),
			})
		}
		return errorData
	}

	return []types.ErrorData{{Field: "", Message: err.Error()}}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("Failed on the '%s' rule", fe.Tag())
	}
}

// ParseJSONResponse reads a response body into a map. Responses with a
// status of 400 or above are returned together with an error.
func ParseJSONResponse(res *http.Response) (map[string]interface{}, error) {
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, err
	}

	if res.StatusCode >= 400 {
		return data, fmt.Errorf("API error: %s", res.Status)
	}

	return data, nil
}

var mobileNumberRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// IsValidMobileNumber reports whether number looks like a dialable phone number
func IsValidMobileNumber(number string) bool {
	return mobileNumberRegex.MatchString(number)
}
