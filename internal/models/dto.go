package models

import (
	"time"
)

// ===== ACCESS DTOs =====

type AccessDecisionResponse struct {
	Path    string   `json:"path"`
	Role    UserRole `json:"role"`
	Allowed bool     `json:"allowed"`
	Reason  string   `json:"reason,omitempty"`
	Menu    *Menu    `json:"menu"`
	Feature Feature  `json:"feature"`
}

type MenuInferenceResponse struct {
	Path    string  `json:"path"`
	Menu    *Menu   `json:"menu"`
	Feature Feature `json:"feature"`
}

type RolePermissionsResponse struct {
	Role        UserRole          `json:"role"`
	Permissions []PermissionEntry `json:"permissions"`
}

// ===== ERROR RESPONSES =====

type ValidationErrorResponse struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ErrorResponse struct {
	Error            string                    `json:"error,omitempty"`
	Message          string                    `json:"message"`
	Code             string                    `json:"code,omitempty"`
	Details          interface{}               `json:"details,omitempty"`
	Timestamp        time.Time                 `json:"timestamp"`
	Path             string                    `json:"path,omitempty"`
	ValidationErrors []ValidationErrorResponse `json:"validation_errors,omitempty"`
}

// AccessDeniedResponse is the fixed denial affordance: a blocking notice with a way home.
type AccessDeniedResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Reason   string `json:"reason"`
	Redirect string `json:"redirect"`
}

// LoginRequiredResponse tells the client to show the login screen instead of content.
type LoginRequiredResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Login   bool   `json:"login"`
}

// FunctionErrorResponse is the body of the commission function on unexpected failure.
type FunctionErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

type SuccessResponse struct {
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
