package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"jobpilot-admin/internal/forms"
	"jobpilot-admin/internal/roles"
	"jobpilot-admin/internal/session"
	"jobpilot-admin/internal/shared/middleware"
	"jobpilot-admin/internal/shared/upstream"
)

type Service interface {
	Login(ctx context.Context, form *forms.LoginForm) (*LoginResponse, error)
	Register(ctx context.Context, form *forms.RegisterForm) (*Result, error)
	Logout(ctx context.Context, sess *session.Store)
	ResendOTP(ctx context.Context, form *forms.EmailForm) (*Result, error)
	VerifyOTP(ctx context.Context, form *forms.OTPForm) (*Result, error)
	VerifyEmail(ctx context.Context, form *forms.OTPForm) (*Result, error)
	ResetPassword(ctx context.Context, form *forms.ResetPasswordForm) (*Result, error)
	ChangePassword(ctx context.Context, sess *session.Store, form *forms.ChangePasswordForm) (*Result, error)
	RefreshToken(ctx context.Context, sess *session.Store, form *forms.RefreshTokenForm) error
	Permissions(sess *session.Store) PermissionsResponse
}

type service struct {
	repo     Repository
	sessions *session.Manager
	tokens   *middleware.TokenIssuer
}

func NewService(repo Repository, sessions *session.Manager, tokens *middleware.TokenIssuer) Service {
	return &service{
		repo:     repo,
		sessions: sessions,
		tokens:   tokens,
	}
}

// Login opens a new session from the JobPilot login response. A failed
// upstream call or a response without user and tokens leaves no session
// behind.
func (s *service) Login(ctx context.Context, form *forms.LoginForm) (*LoginResponse, error) {
	if err := forms.Validate(form); err != nil {
		return nil, err
	}

	resp, err := s.repo.Login(ctx, form)
	if err != nil {
		return nil, err
	}

	store := s.sessions.New()
	user, err := store.Login(ctx, resp.Body)
	if err != nil {
		s.sessions.Drop(store.ID())
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(store.ID(), user.Email, user.Role)
	if err != nil {
		store.Logout(ctx)
		s.sessions.Drop(store.ID())
		return nil, fmt.Errorf("issue service token: %w", err)
	}

	role := store.Role()
	return &LoginResponse{
		Token:       token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user,
		Role:        role,
		Permissions: roles.PermissionsFor(role),
	}, nil
}

func (s *service) Register(ctx context.Context, form *forms.RegisterForm) (*Result, error) {
	if err := forms.Validate(form); err != nil {
		return nil, err
	}
	resp, err := s.repo.Register(ctx, newRegisterRequest(form))
	if err != nil {
		return nil, err
	}
	return &Result{Message: upstream.Message(resp, "Registration successful"), Data: upstream.Payload(resp)}, nil
}

// Logout clears the session, then drops it from memory
func (s *service) Logout(ctx context.Context, sess *session.Store) {
	sess.Logout(ctx)
	s.sessions.Drop(sess.ID())
}

func (s *service) ResendOTP(ctx context.Context, form *forms.EmailForm) (*Result, error) {
	if err := forms.Validate(form); err != nil {
		return nil, err
	}
	resp, err := s.repo.ResendOTP(ctx, form.Email)
	if err != nil {
		return nil, err
	}
	return &Result{Message: upstream.Message(resp, "Code sent")}, nil
}

// VerifyOTP relays the verification answer. It does not log the user in.
func (s *service) VerifyOTP(ctx context.Context, form *forms.OTPForm) (*Result, error) {
	if err := forms.Validate(form); err != nil {
		return nil, err
	}
	resp, err := s.repo.VerifyOTP(ctx, form)
	if err != nil {
		return nil, err
	}
	return &Result{Message: upstream.Message(resp, "Code verified"), Data: publicPayload(resp.Body)}, nil
}

func (s *service) VerifyEmail(ctx context.Context, form *forms.OTPForm) (*Result, error) {
	if err := forms.Validate(form); err != nil {
		return nil, err
	}
	resp, err := s.repo.VerifyEmail(ctx, form)
	if err != nil {
		return nil, err
	}
	return &Result{Message: upstream.Message(resp, "Email verified"), Data: publicPayload(resp.Body)}, nil
}

func (s *service) ResetPassword(ctx context.Context, form *forms.ResetPasswordForm) (*Result, error) {
	if err := forms.Validate(form); err != nil {
		return nil, err
	}
	resp, err := s.repo.ResetPassword(ctx, resetPasswordRequest{
		Email:           form.Email,
		NewPassword:     form.NewPassword,
		ConfirmPassword: form.ConfirmPassword,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Message: upstream.Message(resp, "Password reset successfully")}, nil
}

func (s *service) ChangePassword(ctx context.Context, sess *session.Store, form *forms.ChangePasswordForm) (*Result, error) {
	if err := forms.Validate(form); err != nil {
		return nil, err
	}
	resp, err := s.repo.ChangePassword(ctx, sess, changePasswordRequest{
		CurrentPassword: form.CurrentPassword,
		NewPassword:     form.NewPassword,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Message: upstream.Message(resp, "Password changed successfully")}, nil
}

// RefreshToken swaps the session's JobPilot tokens for fresh ones. The
// service token stays valid because it only names the session.
func (s *service) RefreshToken(ctx context.Context, sess *session.Store, form *forms.RefreshTokenForm) error {
	refresh := sess.RefreshToken()
	if form != nil && form.RefreshToken != "" {
		refresh = form.RefreshToken
	}
	if refresh == "" {
		return ErrNoRefreshToken
	}

	resp, err := s.repo.RefreshToken(ctx, refresh)
	if err != nil {
		return err
	}

	var payload refreshPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingTokens, err)
	}
	tokens := payload.Data.Attributes.Tokens
	if tokens == nil || tokens.AccessToken == "" {
		return ErrMissingTokens
	}
	return sess.UpdateTokens(ctx, tokens.AccessToken, tokens.RefreshToken)
}

// Permissions reports the role gate for sess; a nil or logged out session
// can only view.
func (s *service) Permissions(sess *session.Store) PermissionsResponse {
	if sess == nil || !sess.IsAuthenticated() {
		return PermissionsResponse{Role: roles.RoleUnknown, Permissions: roles.PermissionsFor(roles.RoleUnknown)}
	}
	role := sess.Role()
	return PermissionsResponse{Authenticated: true, Role: role, Permissions: roles.PermissionsFor(role)}
}

// publicPayload strips upstream tokens from a verification answer so they
// never reach the browser.
func publicPayload(raw []byte) json.RawMessage {
	var envelope struct {
		Data struct {
			Attributes map[string]json.RawMessage `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Data.Attributes == nil {
		return nil
	}
	delete(envelope.Data.Attributes, "tokens")
	out, err := json.Marshal(envelope.Data.Attributes)
	if err != nil {
		return nil
	}
	return out
}
