// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 People Directory Contributors

package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/peopledir/peopledir/pkg/errutil"
)

// Mail subjects; the app name is appended per configuration.
const (
	subjectVerification  = "Email Verification Code - "
	subjectPasswordReset = "Password Reset - "
)

// dummySalt and dummyHash are used when a principal doesn't exist so login
// still performs a full hash computation, keeping response time consistent.
// These are NOT real credentials; the hash will never match any password.
//
//nolint:gosec // G101: intentionally fake material for timing-attack prevention.
const dummySalt = "0000000000000000000000000000000000000000000000000000000000000000" +
	"0000000000000000000000000000000000000000000000000000000000000000"

var dummyHash = []byte("$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")

// ServiceConfig carries the rendering inputs the service hands to the
// mailer.
type ServiceConfig struct {
	// AppName appears in mail subjects.
	AppName string
	// BaseURL is the application base URL embedded in mail links.
	BaseURL string
}

// Service is the credential state machine. It composes the principal
// repository, the two secret issuers, the codec, the clock, and the mailer.
type Service struct {
	principals PrincipalRepository
	codes      *CodeIssuer
	tokens     *TokenIssuer
	codec      SecretCodec
	clock      Clock
	mailer     Mailer
	cfg        ServiceConfig
	logger     *slog.Logger
}

// NewService creates a Service with the default logger.
func NewService(principals PrincipalRepository, codes *CodeIssuer, tokens *TokenIssuer, codec SecretCodec, clock Clock, mailer Mailer, cfg ServiceConfig) (*Service, error) {
	return NewServiceWithLogger(principals, codes, tokens, codec, clock, mailer, cfg, slog.Default())
}

// NewServiceWithLogger creates a Service with an explicit logger.
func NewServiceWithLogger(principals PrincipalRepository, codes *CodeIssuer, tokens *TokenIssuer, codec SecretCodec, clock Clock, mailer Mailer, cfg ServiceConfig, logger *slog.Logger) (*Service, error) {
	if principals == nil {
		return nil, oops.Errorf("principals repository is required")
	}
	if codes == nil {
		return nil, oops.Errorf("code issuer is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token issuer is required")
	}
	if codec == nil {
		return nil, oops.Errorf("secret codec is required")
	}
	if clock == nil {
		return nil, oops.Errorf("clock is required")
	}
	if mailer == nil {
		return nil, oops.Errorf("mailer is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{
		principals: principals,
		codes:      codes,
		tokens:     tokens,
		codec:      codec,
		clock:      clock,
		mailer:     mailer,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// RegisterResult is the outcome of a successful registration.
type RegisterResult struct {
	Principal *Principal
	Assertion SessionAssertion
}

// Register creates an unvalidated principal, issues a verification code,
// and requests delivery of the verification mail. Mail or code-issue
// failures are logged, not returned; ResendVerification is the recovery
// path.
func (s *Service) Register(ctx context.Context, displayName, email, password string) (result *RegisterResult, err error) {
	defer recordOutcome("register", s.clock.Now(), &err)

	displayName = strings.TrimSpace(displayName)
	email = CanonicalEmail(email)
	password = strings.TrimSpace(password)

	if displayName == "" || email == "" || password == "" {
		return nil, oops.Code("AUTH_INVALID_INPUT").
			Errorf("display name, email, and password are all required")
	}

	salt, err := s.codec.MintSalt()
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "MintSalt").
			Wrap(err)
	}
	hash, err := s.codec.Hash(password, salt)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "Hash").
			Wrap(err)
	}

	principal, err := NewPrincipal(displayName, email, hash, salt, RoleUser, false, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.principals.Insert(ctx, principal); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, oops.Code("PRINCIPAL_CONFLICT").
				With("email", email).
				Wrap(err)
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "Insert").
			Wrap(err)
	}

	// The principal exists even if the code or mail step fails below;
	// a later ResendVerification recovers.
	s.sendVerification(ctx, principal)

	return &RegisterResult{
		Principal: principal,
		Assertion: SessionAssertion{Slug: principal.Slug},
	}, nil
}

// VerifyEmail consumes a verification code, transitioning the principal to
// Validated. The flip and the code deletion happen in one transaction.
// Idempotent after success: a validated principal with no outstanding code
// gets AUTH_ALREADY_VALIDATED.
func (s *Service) VerifyEmail(ctx context.Context, principalID ulid.ULID, submittedCode string) (p *Principal, err error) {
	defer recordOutcome("verify_email", s.clock.Now(), &err)

	principal, err := s.principals.GetByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("PRINCIPAL_NOT_FOUND").
				With("principal_id", principalID.String()).
				Wrap(err)
		}
		return nil, oops.Code("AUTH_VERIFY_FAILED").
			With("operation", "GetByID").
			Wrap(err)
	}

	code, err := s.codes.Active(ctx, principal.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if principal.Validated {
				return nil, oops.Code("AUTH_ALREADY_VALIDATED").
					With("slug", principal.Slug).
					Errorf("email is already verified")
			}
			return nil, oops.Code("AUTH_INVALID_CODE").Errorf("no active verification code")
		}
		return nil, oops.Code("AUTH_VERIFY_FAILED").
			With("operation", "Active").
			Wrap(err)
	}

	if strings.TrimSpace(submittedCode) != code.Code || code.IsExpiredAt(s.clock.Now()) {
		return nil, oops.Code("AUTH_INVALID_CODE").Errorf("verification code is wrong or expired")
	}

	if err := s.codes.Consume(ctx, code.ID, principal.ID); err != nil {
		return nil, oops.Code("AUTH_VERIFY_FAILED").
			With("operation", "Consume").
			Wrap(err)
	}

	principal.Validated = true
	return principal, nil
}

// ResendVerification supersedes any active code with a fresh one and
// re-sends the verification mail. Unlike Register, a delivery failure here
// is reported: the caller explicitly asked for the mail.
func (s *Service) ResendVerification(ctx context.Context, principalID ulid.ULID) error {
	principal, err := s.principals.GetByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("PRINCIPAL_NOT_FOUND").
				With("principal_id", principalID.String()).
				Wrap(err)
		}
		return oops.Code("AUTH_RESEND_FAILED").
			With("operation", "GetByID").
			Wrap(err)
	}

	if principal.Validated {
		return oops.Code("AUTH_ALREADY_VALIDATED").
			With("slug", principal.Slug).
			Errorf("email is already verified")
	}

	code, err := s.codes.Issue(ctx, principal.Email)
	if err != nil {
		return oops.Code("AUTH_RESEND_FAILED").
			With("operation", "Issue").
			Wrap(err)
	}

	if err := s.mailer.Send(ctx, principal.Email, subjectVerification+s.cfg.AppName, MailContext{
		Principal: principal,
		Secret:    code.Code,
		BaseURL:   s.cfg.BaseURL,
	}); err != nil {
		return oops.Code("MAILER_UNAVAILABLE").
			With("operation", "Send").
			Wrap(err)
	}

	return nil
}

// Login authenticates by email and password and returns a session
// assertion. Unknown email and wrong password produce the same
// AUTH_INVALID_CREDENTIALS error, and both paths run a full hash
// computation to keep response time consistent.
func (s *Service) Login(ctx context.Context, email, password string) (p *Principal, assertion SessionAssertion, err error) {
	defer recordOutcome("login", s.clock.Now(), &err)

	email = CanonicalEmail(email)
	password = strings.TrimSpace(password)

	targetSalt := dummySalt
	targetHash := dummyHash
	var principal *Principal

	lookup, lookupErr := s.principals.GetByEmail(ctx, email)
	switch {
	case lookupErr == nil:
		principal = lookup
		targetSalt = principal.Salt
		targetHash = principal.Hash
	case errors.Is(lookupErr, ErrNotFound):
		// Fall through to the dummy verification below.
	default:
		return nil, SessionAssertion{}, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "GetByEmail").
			Wrap(lookupErr)
	}

	valid := s.codec.Verify(password, targetSalt, targetHash)
	if principal == nil || !valid {
		return nil, SessionAssertion{}, oops.Code("AUTH_INVALID_CREDENTIALS").
			Errorf("invalid email or password")
	}

	return principal, SessionAssertion{Slug: principal.Slug}, nil
}

// Logout clears the caller's session carrier. No store mutation.
func (s *Service) Logout(carrier SessionCarrier) {
	carrier.Forget()
}

// RequestPasswordReset issues a reset token and mails the reset link. When
// no principal has the email the operation is a silent no-op returning
// success, so callers cannot enumerate accounts. Delivery failures are
// logged, not returned, for the same reason.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (err error) {
	defer recordOutcome("request_password_reset", s.clock.Now(), &err)

	email = CanonicalEmail(email)
	if email == "" {
		return oops.Code("AUTH_INVALID_INPUT").Errorf("email cannot be empty")
	}

	principal, err := s.principals.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return oops.Code("AUTH_RESET_REQUEST_FAILED").
			With("operation", "GetByEmail").
			Wrap(err)
	}

	token, err := s.tokens.Issue(ctx, principal.Email)
	if err != nil {
		return oops.Code("AUTH_RESET_REQUEST_FAILED").
			With("operation", "Issue").
			Wrap(err)
	}

	if err := s.mailer.Send(ctx, principal.Email, subjectPasswordReset+s.cfg.AppName, MailContext{
		Principal: principal,
		Secret:    token.Token,
		BaseURL:   s.cfg.BaseURL,
	}); err != nil {
		errutil.LogError(s.logger, "password reset mail delivery failed", err)
	}

	return nil
}

// ConfirmPasswordReset consumes a reset token: mints a fresh salt, replaces
// the (hash, salt) pair atomically, deletes the token, and returns a
// session assertion for the principal.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) (p *Principal, assertion SessionAssertion, err error) {
	defer recordOutcome("confirm_password_reset", s.clock.Now(), &err)

	token = strings.TrimSpace(token)
	newPassword = strings.TrimSpace(newPassword)
	if newPassword == "" {
		return nil, SessionAssertion{}, oops.Code("AUTH_INVALID_INPUT").
			Errorf("new password cannot be empty")
	}
	if token == "" {
		return nil, SessionAssertion{}, oops.Code("AUTH_INVALID_TOKEN").
			Errorf("reset token cannot be empty")
	}

	record, err := s.tokens.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, SessionAssertion{}, oops.Code("AUTH_INVALID_TOKEN").
				Errorf("reset token not found")
		}
		return nil, SessionAssertion{}, oops.Code("AUTH_RESET_FAILED").
			With("operation", "Lookup").
			Wrap(err)
	}
	if record.IsExpiredAt(s.clock.Now()) {
		return nil, SessionAssertion{}, oops.Code("AUTH_INVALID_TOKEN").
			Errorf("reset token has expired")
	}

	principal, err := s.principals.GetByEmail(ctx, record.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, SessionAssertion{}, oops.Code("PRINCIPAL_NOT_FOUND").
				With("email", record.Email).
				Wrap(err)
		}
		return nil, SessionAssertion{}, oops.Code("AUTH_RESET_FAILED").
			With("operation", "GetByEmail").
			Wrap(err)
	}

	salt, err := s.codec.MintSalt()
	if err != nil {
		return nil, SessionAssertion{}, oops.Code("AUTH_RESET_FAILED").
			With("operation", "MintSalt").
			Wrap(err)
	}
	hash, err := s.codec.Hash(newPassword, salt)
	if err != nil {
		return nil, SessionAssertion{}, oops.Code("AUTH_RESET_FAILED").
			With("operation", "Hash").
			Wrap(err)
	}

	if err := s.principals.UpdatePassword(ctx, principal.ID, hash, salt); err != nil {
		return nil, SessionAssertion{}, oops.Code("AUTH_RESET_FAILED").
			With("operation", "UpdatePassword").
			Wrap(err)
	}

	// Cleanup; the password was already updated, so a failure here is
	// logged and swallowed. The scavenger removes leftovers.
	if err := s.tokens.Discard(ctx, record.ID); err != nil {
		errutil.LogError(s.logger, "reset token cleanup failed", err)
	}

	principal.Hash = hash
	principal.Salt = salt
	return principal, SessionAssertion{Slug: principal.Slug}, nil
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	DisplayName string
	Email       string
}

// UpdateResult is the outcome of a profile update.
type UpdateResult struct {
	Principal *Principal
	// Assertion is non-nil when the actor edited their own name and the
	// session must be re-bound to the new slug.
	Assertion    *SessionAssertion
	EmailChanged bool
	NameChanged  bool
}

// UpdateProfile edits a principal's display name and email. The actor must
// be the target or an admin. An email change clears validation and starts a
// fresh verification cycle; a name change re-derives the slug.
func (s *Service) UpdateProfile(ctx context.Context, actor Actor, targetSlug string, upd ProfileUpdate) (*UpdateResult, error) {
	if err := IsSelfOrAdmin(actor, targetSlug); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(upd.DisplayName)
	email := CanonicalEmail(upd.Email)
	if name == "" || email == "" {
		return nil, oops.Code("AUTH_INVALID_INPUT").
			Errorf("display name and email are both required")
	}

	principal, err := s.principals.GetBySlug(ctx, targetSlug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("PRINCIPAL_NOT_FOUND").
				With("slug", targetSlug).
				Wrap(err)
		}
		return nil, oops.Code("AUTH_UPDATE_FAILED").
			With("operation", "GetBySlug").
			Wrap(err)
	}

	emailChanged := email != principal.Email
	nameChanged := name != principal.DisplayName

	if !emailChanged && !nameChanged {
		// Stable success; nothing written.
		return &UpdateResult{Principal: principal}, nil
	}

	if emailChanged {
		principal.Email = email
		principal.Validated = false
	}
	if nameChanged {
		principal.DisplayName = name
		principal.Slug = Slugify(name)
	}

	if err := s.principals.Update(ctx, principal); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, oops.Code("PRINCIPAL_CONFLICT").
				With("slug", principal.Slug).
				Wrap(err)
		}
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("PRINCIPAL_NOT_FOUND").
				With("slug", targetSlug).
				Wrap(err)
		}
		return nil, oops.Code("AUTH_UPDATE_FAILED").
			With("operation", "Update").
			Wrap(err)
	}

	if emailChanged {
		// Register-style verification cycle for the new address.
		s.sendVerification(ctx, principal)
	}

	result := &UpdateResult{
		Principal:    principal,
		EmailChanged: emailChanged,
		NameChanged:  nameChanged,
	}
	if nameChanged && actor.Slug == targetSlug {
		result.Assertion = &SessionAssertion{Slug: principal.Slug}
	}
	return result, nil
}

// AdminEdit carries the admin-editable fields.
type AdminEdit struct {
	DisplayName string
	Email       string
	Role        Role
	Validated   bool
}

// AdminUpdate applies an administrative edit: name, email, role, and
// validated flag. Demoting the last remaining admin is rejected with
// AUTH_LAST_ADMIN.
func (s *Service) AdminUpdate(ctx context.Context, actor Actor, targetSlug string, upd AdminEdit) (*Principal, error) {
	if err := IsAdmin(actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(upd.DisplayName)
	email := CanonicalEmail(upd.Email)
	role := Role(strings.ToLower(strings.TrimSpace(string(upd.Role))))
	if name == "" || email == "" {
		return nil, oops.Code("AUTH_INVALID_INPUT").
			Errorf("display name and email are both required")
	}
	if !role.Valid() {
		return nil, oops.Code("AUTH_INVALID_INPUT").
			With("role", string(role)).
			Errorf("role must be one of admin, user")
	}

	principal, err := s.principals.GetBySlug(ctx, targetSlug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("PRINCIPAL_NOT_FOUND").
				With("slug", targetSlug).
				Wrap(err)
		}
		return nil, oops.Code("AUTH_ADMIN_UPDATE_FAILED").
			With("operation", "GetBySlug").
			Wrap(err)
	}

	if principal.Role == RoleAdmin && role != RoleAdmin {
		admins, err := s.principals.ListAdmins(ctx)
		if err != nil {
			return nil, oops.Code("AUTH_ADMIN_UPDATE_FAILED").
				With("operation", "ListAdmins").
				Wrap(err)
		}
		if len(admins) <= 1 {
			return nil, oops.Code("AUTH_LAST_ADMIN").
				With("slug", principal.Slug).
				Errorf("cannot demote the last admin")
		}
	}

	principal.Role = role
	principal.Validated = upd.Validated
	if email != principal.Email {
		principal.Email = email
	}
	if name != principal.DisplayName {
		principal.DisplayName = name
		principal.Slug = Slugify(name)
	}

	if err := s.principals.Update(ctx, principal); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, oops.Code("PRINCIPAL_CONFLICT").
				With("slug", principal.Slug).
				Wrap(err)
		}
		return nil, oops.Code("AUTH_ADMIN_UPDATE_FAILED").
			With("operation", "Update").
			Wrap(err)
	}

	return principal, nil
}

// DeleteResult is the outcome of a principal deletion.
type DeleteResult struct {
	Removed int64
	// SessionRevoked is true when the actor deleted itself and the caller
	// must forget the session.
	SessionRevoked bool
}

// Delete retires a principal. The actor must be the target or an admin,
// and confirmationName must match the target's display name exactly after
// trimming. Outstanding codes and tokens for the email are discarded
// best-effort.
func (s *Service) Delete(ctx context.Context, actor Actor, targetSlug, confirmationName string) (*DeleteResult, error) {
	if err := IsSelfOrAdmin(actor, targetSlug); err != nil {
		return nil, err
	}

	principal, err := s.principals.GetBySlug(ctx, targetSlug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("PRINCIPAL_NOT_FOUND").
				With("slug", targetSlug).
				Wrap(err)
		}
		return nil, oops.Code("AUTH_DELETE_FAILED").
			With("operation", "GetBySlug").
			Wrap(err)
	}

	if strings.TrimSpace(confirmationName) != principal.DisplayName {
		return nil, oops.Code("AUTH_CONFIRMATION_MISMATCH").
			With("slug", targetSlug).
			Errorf("confirmation name does not match")
	}

	removed, err := s.principals.Delete(ctx, principal.ID)
	if err != nil {
		return nil, oops.Code("AUTH_DELETE_FAILED").
			With("operation", "Delete").
			Wrap(err)
	}

	// Orphaned secrets are harmless but pointless; sweep them now rather
	// than waiting for the scavenger.
	if err := s.codes.Discard(ctx, principal.Email); err != nil {
		errutil.LogError(s.logger, "verification code cleanup failed", err)
	}
	if err := s.tokens.DiscardByEmail(ctx, principal.Email); err != nil {
		errutil.LogError(s.logger, "reset token cleanup failed", err)
	}

	return &DeleteResult{
		Removed:        removed,
		SessionRevoked: actor.Slug == principal.Slug,
	}, nil
}

// BootstrapAdmin ensures an administrative principal exists at startup. If
// a principal with the email already exists this is a no-op returning it;
// otherwise one is created with the admin role, pre-validated.
func (s *Service) BootstrapAdmin(ctx context.Context, name, email, password string) (*Principal, error) {
	name = strings.TrimSpace(name)
	email = CanonicalEmail(email)
	password = strings.TrimSpace(password)

	if name == "" || email == "" || password == "" {
		return nil, oops.Code("AUTH_INVALID_INPUT").
			Errorf("admin name, email, and password are all required")
	}

	existing, err := s.principals.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_BOOTSTRAP_FAILED").
			With("operation", "GetByEmail").
			Wrap(err)
	}

	salt, err := s.codec.MintSalt()
	if err != nil {
		return nil, oops.Code("AUTH_BOOTSTRAP_FAILED").
			With("operation", "MintSalt").
			Wrap(err)
	}
	hash, err := s.codec.Hash(password, salt)
	if err != nil {
		return nil, oops.Code("AUTH_BOOTSTRAP_FAILED").
			With("operation", "Hash").
			Wrap(err)
	}

	principal, err := NewPrincipal(name, email, hash, salt, RoleAdmin, true, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.principals.Insert(ctx, principal); err != nil {
		return nil, oops.Code("AUTH_BOOTSTRAP_FAILED").
			With("operation", "Insert").
			Wrap(err)
	}

	s.logger.Info("bootstrap admin created", "slug", principal.Slug)
	return principal, nil
}

// sendVerification issues a fresh code and requests mail delivery.
// Failures are logged only; the caller's state change already happened and
// ResendVerification recovers.
func (s *Service) sendVerification(ctx context.Context, principal *Principal) {
	code, err := s.codes.Issue(ctx, principal.Email)
	if err != nil {
		errutil.LogError(s.logger, "verification code issue failed", err)
		return
	}

	if err := s.mailer.Send(ctx, principal.Email, subjectVerification+s.cfg.AppName, MailContext{
		Principal: principal,
		Secret:    code.Code,
		BaseURL:   s.cfg.BaseURL,
	}); err != nil {
		errutil.LogError(s.logger, "verification mail delivery failed", err)
	}
}

// recordOutcome records metrics for an operation using a deferred named
// error. Deferred argument evaluation captures the start time at entry.
func recordOutcome(operation string, start time.Time, errp *error) {
	status := StatusSuccess
	if *errp != nil {
		status = StatusError
		if errutil.HasCode(*errp, "AUTH_FORBIDDEN") || errutil.HasCode(*errp, "AUTH_INVALID_CREDENTIALS") {
			status = StatusDenied
		}
	}
	recordOperation(operation, status, start)
}
