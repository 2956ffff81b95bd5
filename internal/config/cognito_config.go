package config

import "fmt"

// CognitoConfig describes the identity provider and identity pool the
// client authenticates against.
type CognitoConfig interface {
	GetRegion() string
	GetUserPoolID() string
	GetIdentityPoolID() string
	GetClientID() string
	GetHostedUIDomain() string
	GetScopes() []string
	GetRedirectURI() string

	// GetIssuer is the user pool's OIDC issuer URL, used for provider
	// discovery and ID token verification.
	GetIssuer() string

	// GetLoginsKey is the identity-pool logins-map key for the user pool,
	// "cognito-idp.{region}.amazonaws.com/{userPoolId}".
	GetLoginsKey() string
}

const (
	regionVar         = "MTDASH_COGNITO_REGION"
	userPoolVar       = "MTDASH_COGNITO_USER_POOL_ID"
	identityPoolVar   = "MTDASH_COGNITO_IDENTITY_POOL_ID"
	clientIDVar       = "MTDASH_COGNITO_CLIENT_ID"
	hostedUIDomainVar = "MTDASH_COGNITO_HOSTED_UI_DOMAIN"
	redirectURIVar    = "MTDASH_REDIRECT_URI"
)

type Cognito struct{}

var _ CognitoConfig = Cognito{}

func (Cognito) GetRegion() string {
	return GetEnv(regionVar, "ap-northeast-2")
}

func (Cognito) GetUserPoolID() string {
	return GetEnv(userPoolVar, "ap-northeast-2_2Qo22vonR")
}

func (Cognito) GetIdentityPoolID() string {
	return GetEnv(identityPoolVar, "ap-northeast-2:7df13efa-997b-44f0-80db-97fb9e6e52c9")
}

func (Cognito) GetClientID() string {
	return GetEnv(clientIDVar, "6le4d5j955jnmr8h4pe4vjs7ci")
}

func (Cognito) GetHostedUIDomain() string {
	return GetEnv(hostedUIDomainVar, "https://ap-northeast-22qo22vonr.auth.ap-northeast-2.amazoncognito.com")
}

func (Cognito) GetScopes() []string {
	return []string{"openid", "email"}
}

// GetRedirectURI is the loopback address the hosted UI redirects back to
// after the authorization round trip.
func (Cognito) GetRedirectURI() string {
	return GetEnv(redirectURIVar, "http://127.0.0.1:8400/callback")
}

func (c Cognito) GetIssuer() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.GetRegion(), c.GetUserPoolID())
}

func (c Cognito) GetLoginsKey() string {
	return fmt.Sprintf("cognito-idp.%s.amazonaws.com/%s", c.GetRegion(), c.GetUserPoolID())
}
