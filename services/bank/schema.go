package bank

import (
	"fmt"

	"github.com/gringotts/onboarding/types"
	"github.com/xeipuuv/gojsonschema"
)

// Creation responses are validated for the fields the next workflow step
// depends on. A 2xx response that fails its schema is a provisioning
// failure, not a success.
const accountResponseSchema = `{
	"type": "object",
	"required": ["id", "accountNumber"],
	"properties": {
		"id": {"type": "integer", "minimum": 1},
		"accountNumber": {"type": "string", "minLength": 1},
		"accountType": {"type": "string"},
		"balance": {"type": "number"}
	}
}`

const cardResponseSchema = `{
	"type": "object",
	"required": ["id", "accountId", "cardNumber"],
	"properties": {
		"id": {"type": "integer", "minimum": 1},
		"accountId": {"type": "integer", "minimum": 1},
		"cardNumber": {"type": "string", "minLength": 1},
		"cvv": {"type": "string"},
		"expiry": {"type": "string"},
		"tempPin": {"type": "string"}
	}
}`

var (
	accountSchema *gojsonschema.Schema
	cardSchema    *gojsonschema.Schema
)

func init() {
	var err error
	accountSchema, err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(accountResponseSchema))
	if err != nil {
		panic(fmt.Sprintf("bank: invalid account response schema: %s", err))
	}
	cardSchema, err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(cardResponseSchema))
	if err != nil {
		panic(fmt.Sprintf("bank: invalid card response schema: %s", err))
	}
}

// validateResponse checks a 2xx body against the step's schema
func validateResponse(schema *gojsonschema.Schema, body []byte, step string) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &types.ProvisioningError{Step: step, Message: fmt.Sprintf("unparseable response: %v", err)}
	}

	if !result.Valid() {
		return &types.ProvisioningError{Step: step, Message: result.Errors()[0].String()}
	}

	return nil
}
