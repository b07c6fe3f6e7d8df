package ccsession

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/flows"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/flowtoken"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/httpapi"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/stores"
)

func validateLogin(email, password string) error {
	return flows.ValidateStruct(flows.LoginRequest{Email: email, Password: password})
}

// Signup registers a new account and returns the OTP session for the
// verification step. addingAccount marks the variant started from an
// authenticated session that continues into account linking after the
// code is verified.
func (c *Coordinator) Signup(ctx context.Context, email, password string, addingAccount bool) (*OTPSession, error) {
	if err := flows.ValidateStruct(flows.SignupRequest{
		Email:         email,
		Password:      password,
		AddingAccount: addingAccount,
	}); err != nil {
		return nil, err
	}
	canonical := stores.CanonicalEmail(email)

	env, err := c.api.Signup(ctx, canonical, password)
	if err != nil {
		c.metricInc(MetricSignupFailure)
		c.emitAudit(ctx, auditEventSignupFailed, false, canonical, err, nil)
		return nil, err
	}
	switch env.Status {
	case httpapi.StatusSuccess:
	case httpapi.StatusExists:
		c.metricInc(MetricSignupFailure)
		c.emitAudit(ctx, auditEventSignupFailed, false, canonical, ErrEmailTaken, nil)
		return nil, ErrEmailTaken
	default:
		c.metricInc(MetricSignupFailure)
		err := fmt.Errorf("signup rejected: %s", env.Message)
		if strings.Contains(strings.ToLower(env.Message), "already") {
			err = ErrEmailTaken
		}
		c.emitAudit(ctx, auditEventSignupFailed, false, canonical, err, nil)
		return nil, err
	}

	// Mirror the pending email in an ephemeral token so a page reload can
	// resume the OTP step without trusting client storage.
	if token, err := c.flowTokens.Issue(flowtoken.PurposeOTPEmail, canonical); err == nil {
		c.holdToken(flowtoken.PurposeOTPEmail, token)
	}

	c.metricInc(MetricSignupSuccess)
	c.emitAudit(ctx, auditEventSignupRequested, true, canonical, nil, nil)

	return flows.NewOTPSession(flows.OTPConfig{
		Digits:       c.config.OTP.Digits,
		ResendWindow: c.config.OTP.ResendWindow,
	}, flows.OriginSignup, canonical, addingAccount), nil
}

// PendingFlowEmail resolves the email address a pending OTP step belongs
// to, for resuming the flow after a reload. The ephemeral token wins when
// held; otherwise the server-session mirror answers.
func (c *Coordinator) PendingFlowEmail(ctx context.Context) (string, error) {
	token := c.takeToken(flowtoken.PurposeOTPEmail)
	email, _, err := c.flowState.Resolve(ctx, token, flowtoken.PurposeOTPEmail)
	return email, err
}

// VerifyOTP submits the session's buffered code. Exactly one verification
// runs per session at a time; a rejected code clears the buffer so the
// auto-submit latch can re-arm.
//
// What success means depends on the session's origin:
//   - signup: the new account is installed as the identity, or handed to
//     LinkAccount when the session carries the adding-account flag;
//   - password reset: a reset flow token is issued for ChangePassword and
//     no identity changes. The returned user is nil.
func (c *Coordinator) VerifyOTP(ctx context.Context, sess *OTPSession) (*User, error) {
	if err := sess.BeginVerify(); err != nil {
		return nil, err
	}

	env, err := c.api.VerifyOTP(ctx, sess.Code())
	if err != nil {
		sess.VerifyFailed()
		c.metricInc(MetricOTPVerifyFailure)
		c.emitAudit(ctx, auditEventOTPFailed, false, sess.Email(), err, nil)
		return nil, err
	}
	if env.Status != httpapi.StatusSuccess {
		sess.VerifyFailed()
		c.metricInc(MetricOTPVerifyFailure)
		c.emitAudit(ctx, auditEventOTPFailed, false, sess.Email(), ErrOTPInvalid, nil)
		if env.Message != "" {
			return nil, errors.Join(ErrOTPInvalid, errors.New(env.Message))
		}
		return nil, ErrOTPInvalid
	}

	sess.VerifySucceeded()
	c.metricInc(MetricOTPVerifySuccess)
	c.emitAudit(ctx, auditEventOTPVerified, true, sess.Email(), nil, func() map[string]string {
		return map[string]string{
			"origin": string(sess.Origin()),
		}
	})

	if sess.Origin() == OriginPasswordReset {
		if token, err := c.flowTokens.Issue(flowtoken.PurposeResetEmail, sess.Email()); err == nil {
			c.holdToken(flowtoken.PurposeResetEmail, token)
		}
		return nil, nil
	}

	if sess.AddingAccount() {
		return c.LinkAccount(ctx, sess.Email())
	}

	if env.User != nil {
		user := c.Login(ctx, *env.User, false)
		return &user, nil
	}

	// The verify response carried no payload; the cookie is set, so the
	// authoritative check fills in the identity.
	return c.CheckSession(ctx)
}

// ResendOTP requests a fresh code. The resend countdown gates the call;
// on acceptance the countdown restarts and the entry buffer clears.
func (c *Coordinator) ResendOTP(ctx context.Context, sess *OTPSession) error {
	if sess.ResendRemaining() > 0 {
		c.metricInc(MetricOTPResendBlocked)
		return ErrResendBlocked
	}

	env, err := c.api.ResendOTP(ctx)
	if err != nil {
		c.emitAudit(ctx, auditEventOTPResent, false, sess.Email(), err, nil)
		return err
	}
	if env.Status != httpapi.StatusSuccess {
		err := fmt.Errorf("resend rejected: %s", env.Message)
		c.emitAudit(ctx, auditEventOTPResent, false, sess.Email(), err, nil)
		return err
	}

	if err := sess.Resend(); err != nil {
		return err
	}
	c.metricInc(MetricOTPResend)
	c.emitAudit(ctx, auditEventOTPResent, true, sess.Email(), nil, nil)
	return nil
}
