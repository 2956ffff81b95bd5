// Package signup registers new accounts against the Cognito user pool.
// The account password is generated client-side so the registration form
// only asks for an email address and phone number.
package signup

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/cognimosyne/mediatranslator/internal/utils"
)

var (
	EmailRequiredErr = errors.New("email is required")
	CodeRequiredErr  = errors.New("confirmation code is required")
)

const passwordLength = 12

// Character pools for generated passwords; one character from each pool is
// guaranteed so the pool policy is always satisfied.
var passwordPools = []string{
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ",
	"abcdefghijklmnopqrstuvwxyz",
	"0123456789",
	"!@#$%^&*",
}

// UserPoolAPI is the slice of the Cognito user-pool service used for
// registration.
type UserPoolAPI interface {
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error)
}

// NewUserPoolClient builds the real service client for a region. Signup
// calls are unauthenticated; the app client allows them without secrets.
func NewUserPoolClient(ctx context.Context, region string) (*cognitoidentityprovider.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[NewUserPoolClient] load config")
	}
	return cognitoidentityprovider.NewFromConfig(cfg), nil
}

// Service registers accounts with the user pool.
type Service struct {
	api      UserPoolAPI
	clientID string
	logger   zerolog.Logger
}

// ServiceOption modifies a Service.
type ServiceOption func(*Service)

// WithLogger sets the service's logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Service for the given app client.
func NewService(api UserPoolAPI, clientID string, options ...ServiceOption) (*Service, error) {
	if api == nil {
		return nil, errors.New("[NewService] api is required")
	}
	if clientID == "" {
		return nil, errors.New("[NewService] clientID is required")
	}

	s := &Service{api: api, clientID: clientID, logger: zerolog.Nop()}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Registration is the outcome of a signup request. Password is the
// generated account password; the user needs it for the hosted UI.
type Registration struct {
	Password         string
	CodeDeliveredTo  string
	ConfirmationSent bool
}

// Register creates the account with a generated password and triggers the
// confirmation-code delivery. The email doubles as the username.
func (s *Service) Register(ctx context.Context, email, phoneNumber string) (Registration, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Registration{}, EmailRequiredErr
	}

	password, err := GeneratePassword()
	if err != nil {
		return Registration{}, errors.Wrap(err, "[Service.Register] generate password")
	}

	attributes := []types.AttributeType{
		{Name: utils.Ptr("email"), Value: utils.Ptr(email)},
	}
	if phone := NormalizePhoneNumber(phoneNumber); phone != "" {
		attributes = append(attributes, types.AttributeType{Name: utils.Ptr("phone_number"), Value: utils.Ptr(phone)})
	}

	out, err := s.api.SignUp(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId:       utils.Ptr(s.clientID),
		Username:       utils.Ptr(email),
		Password:       utils.Ptr(password),
		UserAttributes: attributes,
	})
	if err != nil {
		return Registration{}, errors.Wrap(err, "[Service.Register] sign up")
	}

	reg := Registration{Password: password}
	if out.CodeDeliveryDetails != nil {
		reg.ConfirmationSent = true
		reg.CodeDeliveredTo = utils.Value(out.CodeDeliveryDetails.Destination)
	}
	s.logger.Info().Str("email", email).Msg("registration submitted")
	return reg, nil
}

// Confirm completes the registration with the emailed confirmation code.
func (s *Service) Confirm(ctx context.Context, email, code string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return EmailRequiredErr
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return CodeRequiredErr
	}

	_, err := s.api.ConfirmSignUp(ctx, &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         utils.Ptr(s.clientID),
		Username:         utils.Ptr(email),
		ConfirmationCode: utils.Ptr(code),
	})
	if err != nil {
		return errors.Wrap(err, "[Service.Confirm] confirm sign up")
	}
	return nil
}

// GeneratePassword produces a random password containing at least one
// character from every pool.
func GeneratePassword() (string, error) {
	all := strings.Join(passwordPools, "")
	out := make([]byte, 0, passwordLength)

	for _, pool := range passwordPools {
		ch, err := randomChar(pool)
		if err != nil {
			return "", err
		}
		out = append(out, ch)
	}
	for len(out) < passwordLength {
		ch, err := randomChar(all)
		if err != nil {
			return "", err
		}
		out = append(out, ch)
	}

	// Shuffle so the pool-guaranteed characters are not predictable by
	// position.
	for i := len(out) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", errors.Wrap(err, "[GeneratePassword] shuffle")
		}
		j := n.Int64()
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

func randomChar(pool string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool))))
	if err != nil {
		return 0, errors.Wrap(err, "[randomChar]")
	}
	return pool[n.Int64()], nil
}

// NormalizePhoneNumber converts a local Korean number to E.164: a leading
// zero becomes +82. Numbers already carrying a country code pass through.
func NormalizePhoneNumber(phone string) string {
	phone = strings.ReplaceAll(strings.TrimSpace(phone), "-", "")
	phone = strings.ReplaceAll(phone, " ", "")
	if phone == "" {
		return ""
	}
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	if strings.HasPrefix(phone, "0") {
		return "+82" + phone[1:]
	}
	return phone
}
