package auth

import (
	"errors"
)

var (
	ErrNoRefreshToken = errors.New("no refresh token in session")
	ErrMissingTokens  = errors.New("refresh response carried no access token")
)

// Upstream auth paths, relative to the client's base URL
const (
	pathLogin          = "/auth/login"
	pathRegister       = "/auth/register"
	pathLogout         = "/auth/logout"
	pathResendOTP      = "/auth/resend-otp"
	pathVerifyOTP      = "/auth/verify-otp"
	pathVerifyEmail    = "/auth/verify-email"
	pathResetPassword  = "/auth/reset-password"
	pathChangePassword = "/auth/change-password"
	pathRefreshToken   = "/auth/refresh-token"
)

// tokenPair is data.attributes.tokens of a refresh response
type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type refreshPayload struct {
	Data struct {
		Attributes struct {
			Tokens *tokenPair `json:"tokens"`
		} `json:"attributes"`
	} `json:"data"`
}
