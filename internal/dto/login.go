package dto

// Login methods accepted by the orchestrator.
const (
	MethodPassword = "password"
	MethodOTP      = "otp"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Method   string `json:"method"`
	Password string `json:"password,omitempty"`
	OTP      string `json:"otp,omitempty"`
}
