package credentials

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"

	"github.com/cognimosyne/mediatranslator/internal/utils"
)

// CognitoIdentityAPI is the slice of the Cognito Identity service the
// exchanger needs. Narrowed for fake injection in tests.
type CognitoIdentityAPI interface {
	GetId(ctx context.Context, params *cognitoidentity.GetIdInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetIdOutput, error)
	GetCredentialsForIdentity(ctx context.Context, params *cognitoidentity.GetCredentialsForIdentityInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetCredentialsForIdentityOutput, error)
}

// IdentityPoolExchanger implements Exchanger against a Cognito identity
// pool using the enhanced (GetId + GetCredentialsForIdentity) flow.
type IdentityPoolExchanger struct {
	api            CognitoIdentityAPI
	identityPoolID string
	loginsKey      string
}

// NewIdentityPoolExchanger creates an exchanger bound to one identity pool
// and the logins-map key of its user pool provider.
func NewIdentityPoolExchanger(api CognitoIdentityAPI, identityPoolID, loginsKey string) (*IdentityPoolExchanger, error) {
	if api == nil {
		return nil, errors.New("[NewIdentityPoolExchanger] api is required")
	}
	if identityPoolID == "" {
		return nil, errors.New("[NewIdentityPoolExchanger] identityPoolID is required")
	}
	if loginsKey == "" {
		return nil, errors.New("[NewIdentityPoolExchanger] loginsKey is required")
	}
	return &IdentityPoolExchanger{
		api:            api,
		identityPoolID: identityPoolID,
		loginsKey:      loginsKey,
	}, nil
}

// NewCognitoIdentityClient builds the real service client for a region.
func NewCognitoIdentityClient(ctx context.Context, region string) (*cognitoidentity.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		// The exchange authenticates with the logins map, not ambient
		// credentials.
		awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[NewCognitoIdentityClient] load config")
	}
	return cognitoidentity.NewFromConfig(cfg), nil
}

// Exchange resolves the pool identity for the token and mints temporary
// credentials for it.
func (e *IdentityPoolExchanger) Exchange(ctx context.Context, identityToken string) (Credentials, error) {
	logins := map[string]string{e.loginsKey: identityToken}

	idOut, err := e.api.GetId(ctx, &cognitoidentity.GetIdInput{
		IdentityPoolId: utils.Ptr(e.identityPoolID),
		Logins:         logins,
	})
	if err != nil {
		return Credentials{}, asExchangeError(err)
	}

	credsOut, err := e.api.GetCredentialsForIdentity(ctx, &cognitoidentity.GetCredentialsForIdentityInput{
		IdentityId: idOut.IdentityId,
		Logins:     logins,
	})
	if err != nil {
		return Credentials{}, asExchangeError(err)
	}
	if credsOut.Credentials == nil {
		return Credentials{}, ErrIncompleteCredential
	}

	creds := Credentials{
		AccessKeyID:     utils.Value(credsOut.Credentials.AccessKeyId),
		SecretAccessKey: utils.Value(credsOut.Credentials.SecretKey),
		SessionToken:    utils.Value(credsOut.Credentials.SessionToken),
		Expiration:      credsOut.Credentials.Expiration,
		IdentityID:      credsOut.IdentityId,
	}
	return creds, nil
}

// asExchangeError lifts provider diagnostics (error code, message, HTTP
// status) into an *ExchangeError.
func asExchangeError(err error) error {
	exchangeErr := &ExchangeError{Err: err}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		exchangeErr.Name = apiErr.ErrorCode()
		exchangeErr.Message = apiErr.ErrorMessage()
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		exchangeErr.StatusCode = respErr.HTTPStatusCode()
	}
	return exchangeErr
}
