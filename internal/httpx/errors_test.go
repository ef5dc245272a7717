package httpx

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without internal err",
			err:  NewAppError(http.StatusBadRequest, CodeParamMissing, "param missing", nil),
			want: "code=2001, message=param missing",
		},
		{
			name: "error with internal err",
			err:  NewAppError(http.StatusInternalServerError, CodeInternalError, "internal error", errors.New("store unreachable")),
			want: "code=5001, message=internal error, err=store unreachable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrPaywallBlocked(t *testing.T) {
	err := ErrPaywallBlocked("")
	if err.HTTPStatus != http.StatusForbidden {
		t.Errorf("Expected HTTP status %d, got %d", http.StatusForbidden, err.HTTPStatus)
	}
	if err.Code != CodePaywallBlocked {
		t.Errorf("Expected code %d, got %d", CodePaywallBlocked, err.Code)
	}
	data, ok := err.Data.(map[string]bool)
	if !ok || !data["paywall_blocked"] {
		t.Errorf("Expected data to carry paywall_blocked=true, got %v", err.Data)
	}
}

func TestErrRateLimited(t *testing.T) {
	err := ErrRateLimited("")
	if err.HTTPStatus != http.StatusTooManyRequests {
		t.Errorf("Expected HTTP status %d, got %d", http.StatusTooManyRequests, err.HTTPStatus)
	}
	if err.Code != CodeRateLimited {
		t.Errorf("Expected code %d, got %d", CodeRateLimited, err.Code)
	}
}

func TestErrFlowRestart(t *testing.T) {
	err := ErrFlowRestart("")
	if err.HTTPStatus != http.StatusForbidden {
		t.Errorf("Expected HTTP status %d, got %d", http.StatusForbidden, err.HTTPStatus)
	}
	if err.Code != CodeFlowRestart {
		t.Errorf("Expected code %d, got %d", CodeFlowRestart, err.Code)
	}
	if err.Message != "validation expired, restart authentication" {
		t.Errorf("Unexpected default message '%s'", err.Message)
	}
}

func TestErrStateConflict_IsBadRequest(t *testing.T) {
	// PIN-already-set and similar conflicts are 400s in this API, not 409s
	err := ErrStateConflict("pin already set")
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("Expected HTTP status %d, got %d", http.StatusBadRequest, err.HTTPStatus)
	}
}

func TestErrInternalError(t *testing.T) {
	internalErr := errors.New("database connection failed")
	err := ErrInternalError("internal error", internalErr)

	if err.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("Expected HTTP status %d, got %d", http.StatusInternalServerError, err.HTTPStatus)
	}
	if err.Err != internalErr {
		t.Errorf("Expected internal error to be preserved")
	}
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		min  int
		max  int
	}{
		{"CodeSuccess", CodeSuccess, 0, 0},
		{"CodeUnauthorized", CodeUnauthorized, 1000, 1099},
		{"CodeInvalidToken", CodeInvalidToken, 1000, 1099},
		{"CodeTokenExpired", CodeTokenExpired, 1000, 1099},
		{"CodeForbidden", CodeForbidden, 1000, 1099},
		{"CodePaywallBlocked", CodePaywallBlocked, 1000, 1099},
		{"CodeRateLimited", CodeRateLimited, 1000, 1099},
		{"CodeParamMissing", CodeParamMissing, 2000, 2099},
		{"CodeParamInvalid", CodeParamInvalid, 2000, 2099},
		{"CodeParamIllegal", CodeParamIllegal, 2000, 2099},
		{"CodeNotFound", CodeNotFound, 3000, 3999},
		{"CodeAlreadyExists", CodeAlreadyExists, 3000, 3999},
		{"CodeStateConflict", CodeStateConflict, 3000, 3999},
		{"CodeFlowRestart", CodeFlowRestart, 3000, 3999},
		{"CodeInternalError", CodeInternalError, 5000, 5999},
		{"CodeDatabaseError", CodeDatabaseError, 5000, 5999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code < tt.min || tt.code > tt.max {
				t.Errorf("%s = %d, expected to be in range [%d, %d]", tt.name, tt.code, tt.min, tt.max)
			}
		})
	}
}
