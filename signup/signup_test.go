package signup_test

import (
	"context"
	"strings"
	"testing"
	"unicode"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognimosyne/mediatranslator/internal/utils"
	"github.com/cognimosyne/mediatranslator/signup"
)

type fakeUserPoolAPI struct {
	signUpFunc  func(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	confirmFunc func(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error)
}

func (f *fakeUserPoolAPI) SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error) {
	return f.signUpFunc(ctx, params, optFns...)
}

func (f *fakeUserPoolAPI) ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error) {
	return f.confirmFunc(ctx, params, optFns...)
}

func TestRegisterSubmitsGeneratedPasswordAndNormalizedPhone(t *testing.T) {
	var captured *cognitoidentityprovider.SignUpInput
	api := &fakeUserPoolAPI{
		signUpFunc: func(_ context.Context, params *cognitoidentityprovider.SignUpInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error) {
			captured = params
			return &cognitoidentityprovider.SignUpOutput{
				CodeDeliveryDetails: &types.CodeDeliveryDetailsType{Destination: utils.Ptr("u***@example.com")},
			}, nil
		},
	}

	service, err := signup.NewService(api, "client-1")
	require.NoError(t, err)

	reg, err := service.Register(context.Background(), "user@example.com", "010-1234-5678")
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "client-1", utils.Value(captured.ClientId))
	assert.Equal(t, "user@example.com", utils.Value(captured.Username))
	assert.Equal(t, reg.Password, utils.Value(captured.Password))

	attrs := map[string]string{}
	for _, a := range captured.UserAttributes {
		attrs[utils.Value(a.Name)] = utils.Value(a.Value)
	}
	assert.Equal(t, "user@example.com", attrs["email"])
	assert.Equal(t, "+821012345678", attrs["phone_number"])

	assert.True(t, reg.ConfirmationSent)
	assert.Equal(t, "u***@example.com", reg.CodeDeliveredTo)
}

func TestRegisterRequiresEmail(t *testing.T) {
	service, err := signup.NewService(&fakeUserPoolAPI{}, "client-1")
	require.NoError(t, err)

	_, err = service.Register(context.Background(), "  ", "")
	require.ErrorIs(t, err, signup.EmailRequiredErr)
}

func TestConfirmRequiresCode(t *testing.T) {
	service, err := signup.NewService(&fakeUserPoolAPI{}, "client-1")
	require.NoError(t, err)

	err = service.Confirm(context.Background(), "user@example.com", "")
	require.ErrorIs(t, err, signup.CodeRequiredErr)
}

func TestConfirmPassesCodeThrough(t *testing.T) {
	var captured *cognitoidentityprovider.ConfirmSignUpInput
	api := &fakeUserPoolAPI{
		confirmFunc: func(_ context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error) {
			captured = params
			return &cognitoidentityprovider.ConfirmSignUpOutput{}, nil
		},
	}

	service, err := signup.NewService(api, "client-1")
	require.NoError(t, err)

	require.NoError(t, service.Confirm(context.Background(), "user@example.com", " 123456 "))
	require.NotNil(t, captured)
	assert.Equal(t, "123456", utils.Value(captured.ConfirmationCode))
}

func TestGeneratePasswordSatisfiesPolicy(t *testing.T) {
	for i := 0; i < 50; i++ {
		password, err := signup.GeneratePassword()
		require.NoError(t, err)
		require.Len(t, password, 12)

		assert.True(t, strings.ContainsFunc(password, unicode.IsUpper))
		assert.True(t, strings.ContainsFunc(password, unicode.IsLower))
		assert.True(t, strings.ContainsFunc(password, unicode.IsDigit))
		assert.True(t, strings.ContainsAny(password, "!@#$%^&*"))
	}
}

func TestNormalizePhoneNumber(t *testing.T) {
	tests := map[string]string{
		"010-1234-5678": "+821012345678",
		"01012345678":   "+821012345678",
		"+14155550100":  "+14155550100",
		"  ":            "",
		"821012345678":  "821012345678",
	}
	for input, want := range tests {
		assert.Equal(t, want, signup.NormalizePhoneNumber(input), "input %q", input)
	}
}
