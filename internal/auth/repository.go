package auth

import (
	"context"

	"jobpilot-admin/internal/apiclient"
	"jobpilot-admin/internal/forms"
	"jobpilot-admin/internal/session"
	"jobpilot-admin/internal/shared/constants"
	"jobpilot-admin/internal/shared/upstream"
)

// Repository is the auth slice of the JobPilot API
type Repository interface {
	Login(ctx context.Context, form *forms.LoginForm) (*apiclient.Response, error)
	Register(ctx context.Context, body registerRequest) (*apiclient.Response, error)
	ResendOTP(ctx context.Context, email string) (*apiclient.Response, error)
	VerifyOTP(ctx context.Context, form *forms.OTPForm) (*apiclient.Response, error)
	VerifyEmail(ctx context.Context, form *forms.OTPForm) (*apiclient.Response, error)
	ResetPassword(ctx context.Context, body resetPasswordRequest) (*apiclient.Response, error)
	ChangePassword(ctx context.Context, sess *session.Store, body changePasswordRequest) (*apiclient.Response, error)
	RefreshToken(ctx context.Context, refreshToken string) (*apiclient.Response, error)
}

type repository struct {
	gateway *upstream.Gateway
}

func NewRepository(gateway *upstream.Gateway) Repository {
	return &repository{gateway: gateway}
}

func (r *repository) anon() *apiclient.Client {
	return r.gateway.For(nil)
}

func (r *repository) Login(ctx context.Context, form *forms.LoginForm) (*apiclient.Response, error) {
	return r.anon().Post(ctx, pathLogin, form)
}

func (r *repository) Register(ctx context.Context, body registerRequest) (*apiclient.Response, error) {
	return r.anon().Post(ctx, pathRegister, body)
}

func (r *repository) ResendOTP(ctx context.Context, email string) (*apiclient.Response, error) {
	return r.anon().Post(ctx, pathResendOTP, forms.EmailForm{Email: email})
}

func (r *repository) VerifyOTP(ctx context.Context, form *forms.OTPForm) (*apiclient.Response, error) {
	return r.anon().Post(ctx, pathVerifyOTP, form)
}

func (r *repository) VerifyEmail(ctx context.Context, form *forms.OTPForm) (*apiclient.Response, error) {
	return r.anon().Post(ctx, pathVerifyEmail, form)
}

func (r *repository) ResetPassword(ctx context.Context, body resetPasswordRequest) (*apiclient.Response, error) {
	return r.anon().Post(ctx, pathResetPassword, body)
}

func (r *repository) ChangePassword(ctx context.Context, sess *session.Store, body changePasswordRequest) (*apiclient.Response, error) {
	return r.gateway.Mutate(ctx, sess, constants.MutationChangePassword, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Patch(ctx, pathChangePassword, body)
	})
}

func (r *repository) RefreshToken(ctx context.Context, refreshToken string) (*apiclient.Response, error) {
	return r.anon().Post(ctx, pathRefreshToken, refreshTokenRequest{RefreshToken: refreshToken})
}

// bearer authenticates a single call with a fixed token
type bearer string

func (b bearer) AccessToken() string                { return string(b) }
func (b bearer) HandleUnauthorized(context.Context) {}

// RemoteLogout tells the JobPilot API that a session ended. The session has
// already been cleared locally when this runs, so it carries the tokens
// itself.
func RemoteLogout(client *apiclient.Client) session.RemoteLogoutFunc {
	return func(ctx context.Context, accessToken, refreshToken string) error {
		_, err := client.WithSession(bearer(accessToken)).Post(ctx, pathLogout, logoutRequest{RefreshToken: refreshToken})
		return err
	}
}
