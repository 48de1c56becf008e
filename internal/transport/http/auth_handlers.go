package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cleverspace/internal/domain"
	"cleverspace/internal/dto"
	"cleverspace/internal/netutil"
	"cleverspace/internal/service"
)

type authHandlers struct {
	auth   service.AuthService
	otps   service.OTPService
	tokens service.TokenService
}

func (h *authHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Shape failures return 404 on this surface.
		writeError(w, http.StatusNotFound, "Invalid Format", nil)
		return
	}

	pair, err := h.auth.Login(r.Context(), req, clientIP(r), r.UserAgent())
	if err != nil {
		writeLoginError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func writeLoginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMalformedOTP):
		writeError(w, http.StatusNotFound, "Invalid Format",
			map[string][]string{"otp": {"OTP must be exactly 6 digits"}})
	case errors.Is(err, domain.ErrMalformedRequest):
		writeError(w, http.StatusNotFound, "Invalid Format", nil)
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "Invalid credentials",
			map[string][]string{"email": {"No user found with this email"}})
	case errors.Is(err, domain.ErrEmailNotVerified):
		writeError(w, http.StatusBadRequest,
			"Email address must be verified before you can log in. A verification email has been sent to your email, please verify.", nil)
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "Invalid credentials", nil)
	case errors.Is(err, domain.ErrNoOTPFound):
		writeError(w, http.StatusBadRequest, "No OTP found. Please request a new OTP.", nil)
	case errors.Is(err, domain.ErrOTPExpired):
		writeError(w, http.StatusBadRequest, "OTP has expired. Please request a new one.", nil)
	case errors.Is(err, domain.ErrOTPMismatch):
		writeError(w, http.StatusBadRequest, "Invalid OTP", nil)
	case errors.Is(err, domain.ErrUpstreamTimeout):
		writeError(w, http.StatusBadGateway, "Could not send verification email. Please try again later.", nil)
	default:
		writeError(w, http.StatusInternalServerError, "Something went wrong", nil)
	}
}

func (h *authHandlers) requestOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.RequestOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusNotFound, "Invalid Format", nil)
		return
	}
	if !looksLikeEmail(req.Email) {
		writeError(w, http.StatusNotFound, "Invalid Format",
			map[string][]string{"email": {"Enter a valid email address."}})
		return
	}

	expiresIn, err := h.otps.RequestOTP(r.Context(), req.Email)
	if err != nil {
		writeRequestOTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.RequestOTPResponse{
		Message:   "OTP sent successfully",
		ExpiresIn: expiresIn,
	})
}

func writeRequestOTPError(w http.ResponseWriter, err error) {
	var rateLimited *domain.OTPRateLimitedError
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "No user found with this email", nil)
	case errors.As(err, &rateLimited):
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("OTP already sent. Please wait for %d seconds", rateLimited.RetryAfter), nil)
	case errors.Is(err, domain.ErrMailDelivery):
		writeError(w, http.StatusBadGateway, "Failed to send OTP email. Please try again later.", nil)
	default:
		writeError(w, http.StatusInternalServerError, "Something went wrong", nil)
	}
}

func (h *authHandlers) refreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
		writeError(w, http.StatusBadRequest, "Refresh token is required", nil)
		return
	}

	pair, err := h.tokens.Refresh(r.Context(), req.Refresh, clientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid or expired refresh token", nil)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func looksLikeEmail(s string) bool {
	at := strings.IndexRune(s, '@')
	return at > 0 && at < len(s)-1 && !strings.ContainsRune(s[at+1:], '@')
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// XFF can be a list: client, proxy1, proxy2...
		ip := strings.TrimSpace(strings.Split(xff, ",")[0])
		if normalized, ok := netutil.NormalizeIP(ip); ok {
			return normalized
		}
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		if normalized, ok := netutil.NormalizeIP(xr); ok {
			return normalized
		}
	}
	if normalized, ok := netutil.NormalizeIP(r.RemoteAddr); ok {
		return normalized
	}
	return r.RemoteAddr
}
