package captcha

import (
	"context"
	"errors"
	"fmt"

	"hallbook/pkg/logger"

	"github.com/MicahParks/recaptcha"
)

// ErrVerificationFailed is returned when Google rejects the token and the
// verifier is armed.
var ErrVerificationFailed = errors.New("captcha verification failed")

// Verifier checks reCAPTCHA v3 tokens on the public booking submission.
// When not armed, failures are logged but allowed through, which keeps
// local development and staging usable without real tokens.
type Verifier struct {
	cli   recaptcha.VerifierV3
	armed bool
	log   *logger.Logger
}

func NewVerifier(secret string, armed bool) *Verifier {
	return &Verifier{
		cli:   recaptcha.NewVerifierV3(secret, recaptcha.VerifierV3Options{}),
		armed: armed,
		log:   logger.GetDefault(),
	}
}

func (v *Verifier) Verify(ctx context.Context, token, ip string) error {
	resp, err := v.cli.Verify(ctx, token, ip)
	if err != nil {
		return fmt.Errorf("captcha request failed: %w", err)
	}

	if !resp.Success {
		v.log.LogCaptchaFailure(ctx, ip, resp.ErrorCodes)
		if v.armed {
			return fmt.Errorf("%w: %q", ErrVerificationFailed, resp.ErrorCodes)
		}
	}

	return nil
}
