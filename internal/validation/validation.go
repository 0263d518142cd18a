// Package validation checks inbound extraction requests before any work is
// done on them.
package validation

import (
	stderrors "errors"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/KeremKalyoncu/vidgate/internal/errors"
	"github.com/KeremKalyoncu/vidgate/internal/types"
)

// DefaultDeniedHosts are source domains the gateway refuses to extract from
var DefaultDeniedHosts = []string{"youtube.com", "youtu.be", "tiktok.com"}

const (
	msgRequired   = "URL is required"
	msgInvalidURL = "Invalid URL"
	msgScheme     = "URL must use http or https"
)

// Validator validates ExtractionRequests and applies the source denylist
type Validator struct {
	validate *validator.Validate
	denied   []string
}

// New creates a Validator denying the given hosts and their subdomains
func New(deniedHosts []string) *Validator {
	v := validator.New()
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("media_url", isMediaURL)

	denied := make([]string, 0, len(deniedHosts))
	for _, h := range deniedHosts {
		h = strings.Trim(strings.ToLower(strings.TrimSpace(h)), ".")
		if h != "" {
			denied = append(denied, h)
		}
	}

	return &Validator{validate: v, denied: denied}
}

// Validate checks the request shape. The returned error is ErrValidation
// carrying one human-readable reason per failed rule.
func (v *Validator) Validate(req *types.ExtractionRequest) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.ErrValidation.WithCause(err).WithDetails("Invalid request")
	}

	reasons := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			reasons = append(reasons, msgRequired)
		case "media_url":
			raw, _ := fe.Value().(string)
			reasons = append(reasons, mediaURLReason(raw))
		default:
			reasons = append(reasons, fe.Field()+" is invalid")
		}
	}
	return errors.ErrValidation.WithDetails(reasons...)
}

// CheckSource returns ErrUnsupportedSource when the URL's host is a denied
// domain or one of its subdomains. It expects an already validated URL.
func (v *Validator) CheckSource(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return errors.ErrValidation.WithCause(err).WithDetails("Invalid URL")
	}

	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	for _, d := range v.denied {
		if host == d || strings.HasSuffix(host, "."+d) {
			return errors.ErrUnsupportedSource
		}
	}
	return nil
}

// isMediaURL accepts absolute http(s) URLs with a host
func isMediaURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// mediaURLReason explains why isMediaURL rejected raw. Anything that parses
// with a non-web scheme gets the scheme message; the rest is not a URL.
func mediaURLReason(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return msgInvalidURL
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return msgScheme
	}
	return msgInvalidURL
}
