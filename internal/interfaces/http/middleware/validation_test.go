package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationItem struct {
	ID    string `json:"id" binding:"required"`
	Delta int    `json:"delta" binding:"required"`
}

type validationRequest struct {
	Items []validationItem `json:"items" binding:"required,min=1,max=2,dive"`
	Mode  string           `json:"mode" binding:"omitempty,oneof=fast slow"`
}

func bindValidation(t *testing.T, body string) error {
	t.Helper()
	SetupValidator()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req validationRequest
	return c.ShouldBindJSON(&req)
}

func TestValidationDetails(t *testing.T) {
	t.Run("uses json names and nested paths", func(t *testing.T) {
		err := bindValidation(t, `{"items":[{"id":"a","delta":1},{"delta":2}],"mode":"other"}`)
		require.Error(t, err)

		details := ValidationDetails(err)
		require.Len(t, details, 2)
		assert.Equal(t, "items[1].id", details[0].Field)
		assert.Equal(t, "This field is required", details[0].Message)
		assert.Equal(t, "mode", details[1].Field)
		assert.Equal(t, "Must be one of: fast slow", details[1].Message)
	})

	t.Run("slice bounds", func(t *testing.T) {
		err := bindValidation(t, `{"items":[]}`)
		require.Error(t, err)

		details := ValidationDetails(err)
		require.Len(t, details, 1)
		assert.Equal(t, "items", details[0].Field)
		assert.Equal(t, "Must contain at least 1 items", details[0].Message)
	})

	t.Run("non validation errors", func(t *testing.T) {
		assert.Nil(t, ValidationDetails(errors.New("boom")))
		assert.Nil(t, ValidationDetails(bindValidation(t, `{not json`)))
	})
}
