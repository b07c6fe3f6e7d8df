package ccsession

import (
	"context"
	"errors"
	"fmt"

	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/flows"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/flowtoken"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/httpapi"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/stores"
)

// RequestPasswordReset starts the forgot-password flow and returns the
// OTP session for the emailed code.
func (c *Coordinator) RequestPasswordReset(ctx context.Context, email string) (*OTPSession, error) {
	if err := flows.ValidateStruct(flows.EmailRequest{Email: email}); err != nil {
		return nil, err
	}
	canonical := stores.CanonicalEmail(email)

	env, err := c.api.RequestPasswordReset(ctx, canonical)
	if err != nil {
		c.emitAudit(ctx, auditEventResetRequested, false, canonical, err, nil)
		return nil, err
	}
	if env.Status != httpapi.StatusSuccess {
		err := fmt.Errorf("password reset rejected: %s", env.Message)
		c.emitAudit(ctx, auditEventResetRequested, false, canonical, err, nil)
		return nil, err
	}

	if token, err := c.flowTokens.Issue(flowtoken.PurposeOTPEmail, canonical); err == nil {
		c.holdToken(flowtoken.PurposeOTPEmail, token)
	}

	c.metricInc(MetricPasswordResetRequest)
	c.emitAudit(ctx, auditEventResetRequested, true, canonical, nil, nil)

	return flows.NewOTPSession(flows.OTPConfig{
		Digits:       c.config.OTP.Digits,
		ResendWindow: c.config.OTP.ResendWindow,
	}, flows.OriginPasswordReset, canonical, false), nil
}

// ChangePassword completes the forgot-password flow. The step is gated by
// flow state: the reset token issued by the successful OTP verification
// wins; the server-session mirror is the fallback after a reload.
func (c *Coordinator) ChangePassword(ctx context.Context, newPassword string) error {
	if err := flows.ValidateStruct(flows.PasswordChangeRequest{Password: newPassword}); err != nil {
		return err
	}

	token := c.takeToken(flowtoken.PurposeResetEmail)
	email, _, err := c.flowState.Resolve(ctx, token, flowtoken.PurposeResetEmail)
	if err != nil {
		c.metricInc(MetricPasswordChangeFailure)
		c.emitAudit(ctx, auditEventPasswordFailed, false, "", err, nil)
		return err
	}

	env, err := c.api.ChangePassword(ctx, email, newPassword)
	if err != nil {
		c.metricInc(MetricPasswordChangeFailure)
		c.emitAudit(ctx, auditEventPasswordFailed, false, email, err, nil)
		return err
	}
	if env.Status != httpapi.StatusSuccess {
		c.metricInc(MetricPasswordChangeFailure)
		c.emitAudit(ctx, auditEventPasswordFailed, false, email, ErrPasswordChange, nil)
		if env.Message != "" {
			return errors.Join(ErrPasswordChange, errors.New(env.Message))
		}
		return ErrPasswordChange
	}

	c.metricInc(MetricPasswordChangeSuccess)
	c.emitAudit(ctx, auditEventPasswordChanged, true, email, nil, nil)
	return nil
}

// SetPassword gives a password to an account that does not have one yet
// (the Google sign-in completion step) and installs the returned user.
// addingAccount routes the finished account into LinkAccount instead,
// matching the signup and Google entry points.
func (c *Coordinator) SetPassword(ctx context.Context, email, password string, addingAccount bool) (*User, error) {
	if err := flows.ValidateStruct(flows.PasswordChangeRequest{Password: password}); err != nil {
		return nil, err
	}
	canonical := stores.CanonicalEmail(email)

	env, err := c.api.SetPassword(ctx, canonical, password)
	if err != nil {
		c.metricInc(MetricPasswordChangeFailure)
		c.emitAudit(ctx, auditEventPasswordFailed, false, canonical, err, nil)
		return nil, err
	}
	if env.Status != httpapi.StatusSuccess {
		c.metricInc(MetricPasswordChangeFailure)
		c.emitAudit(ctx, auditEventPasswordFailed, false, canonical, ErrPasswordChange, nil)
		if env.Message != "" {
			return nil, errors.Join(ErrPasswordChange, errors.New(env.Message))
		}
		return nil, ErrPasswordChange
	}

	c.metricInc(MetricPasswordChangeSuccess)
	c.emitAudit(ctx, auditEventPasswordChanged, true, canonical, nil, nil)

	if addingAccount {
		return c.LinkAccount(ctx, canonical)
	}
	if env.User != nil {
		user := c.Login(ctx, *env.User, false)
		return &user, nil
	}
	return c.CheckSession(ctx)
}
