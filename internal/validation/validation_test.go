package validation

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestIsValidCustomerID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"CUST00001", true},
		{"CUST99999", true},
		{"CUST00000", true},

		// Invalid cases
		{"cust00001", false},  // Lowercase prefix
		{"CUST0001", false},   // Too short
		{"CUST000001", false}, // Too long
		{"CUSTABCDE", false},  // Non-digits
		{"00001", false},      // No prefix
		{"", false},
		{"CUST", false},
	}

	for _, tc := range tests {
		result := IsValidCustomerID(tc.id)
		if result != tc.valid {
			t.Errorf("IsValidCustomerID(%q) = %v, want %v", tc.id, result, tc.valid)
		}
	}
}

func TestValidate(t *testing.T) {
	// Test valid input
	errors := Validate(
		InRange("low", 33, 0, 100),
		InRange("high", 67, 0, 100),
	)
	if len(errors) != 0 {
		t.Errorf("Expected no errors, got %v", errors)
	}

	// Test invalid input
	errors = Validate(
		InRange("low", -5, 0, 100),
		InRange("high", 150, 0, 100),
	)
	if len(errors) != 2 {
		t.Errorf("Expected 2 errors, got %d", len(errors))
	}
	if errors.Error() != "low: out of range" {
		t.Errorf("Expected first error surfaced, got %q", errors.Error())
	}
}

func TestInRange(t *testing.T) {
	tests := []struct {
		value int
		valid bool
	}{
		{0, true},
		{50, true},
		{100, true},
		{-1, false},
		{101, false},
	}

	for _, tc := range tests {
		err := InRange("threshold", tc.value, 0, 100)()
		valid := err == nil
		if valid != tc.valid {
			t.Errorf("InRange(%d, 0, 100) valid=%v, want %v", tc.value, valid, tc.valid)
		}
	}
}

func TestCustomerIDParamMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/customers/:id", CustomerIDParamMiddleware(), func(c *gin.Context) {
		c.String(200, "ok")
	})

	// Well-formed ID passes through
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/customers/CUST00001", nil))
	if w.Code != 200 {
		t.Errorf("valid ID status = %d, want 200", w.Code)
	}

	// Malformed ID is rejected before the handler runs
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/customers/bogus", nil))
	if w.Code != 400 {
		t.Errorf("malformed ID status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid_customer_id") {
		t.Errorf("expected invalid_customer_id error, got %s", w.Body.String())
	}
}
