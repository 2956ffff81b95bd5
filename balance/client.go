// Package balance queries the credit and mileage balance from the account
// Lambda function URL, authenticating with a SigV4-signed request over the
// user's temporary credentials.
package balance

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awscredentials "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/cognimosyne/mediatranslator/credentials"
)

// requestBody is the fixed POST payload; the endpoint takes no parameters.
const requestBody = "{}"

// noErrorMessage is the endpoint's convention for "no error".
const noErrorMessage = "none"

// Balance is the account's current credit and mileage.
type Balance struct {
	Credit    int64
	Mileage   int64
	UpdatedAt *time.Time
}

// Doer issues an HTTP request, usually *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestSigner signs an outgoing request, satisfied by *v4.Signer.
type RequestSigner interface {
	SignHTTP(ctx context.Context, credentials aws.Credentials, r *http.Request, payloadHash string, service string, region string, signingTime time.Time, optFns ...func(options *v4.SignerOptions)) error
}

// Client queries the balance endpoint.
type Client struct {
	endpoint   string
	region     string
	httpClient Doer
	signer     RequestSigner
	nowTime    func() time.Time
	logger     zerolog.Logger
}

// ClientOption modifies a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(doer Doer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithSigner replaces the request signer.
func WithSigner(signer RequestSigner) ClientOption {
	return func(c *Client) {
		c.signer = signer
	}
}

// WithNowTime sets the signing clock (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ClientOption {
	return func(c *Client) {
		c.nowTime = nowFunc
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client for the function URL in the given region.
func NewClient(endpoint, region string, options ...ClientOption) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("[NewClient] endpoint is required")
	}
	if region == "" {
		return nil, errors.New("[NewClient] region is required")
	}

	c := &Client{
		endpoint:   endpoint,
		region:     region,
		httpClient: http.DefaultClient,
		signer:     v4.NewSigner(),
		nowTime:    time.Now,
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

type balanceResponse struct {
	Status       string  `json:"status"`
	Credit       *int64  `json:"credit"`
	Mileage      *int64  `json:"mileage"`
	UpdatedAt    *string `json:"updated_at"`
	ErrorMessage *string `json:"error_message"`
}

// Query posts to the balance endpoint with a request signed by creds and
// returns the reported balance. Cancelling ctx aborts the request; no
// result is produced after cancellation.
func (c *Client) Query(ctx context.Context, identityToken string, creds credentials.Credentials) (Balance, error) {
	if strings.TrimSpace(identityToken) == "" {
		return Balance{}, credentials.ErrInvalidToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(requestBody))
	if err != nil {
		return Balance{}, errors.Wrap(err, "[Client.Query] build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-id-token", identityToken)

	payloadHash := sha256.Sum256([]byte(requestBody))
	provider := awscredentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken)
	awsCreds, err := provider.Retrieve(ctx)
	if err != nil {
		return Balance{}, errors.Wrap(err, "[Client.Query] resolve credentials")
	}
	// The signer adds X-Amz-Security-Token from the session token and the
	// signature covers it together with the identity token header.
	if err := c.signer.SignHTTP(ctx, awsCreds, req, hex.EncodeToString(payloadHash[:]), "lambda", c.region, c.nowTime()); err != nil {
		return Balance{}, errors.Wrap(err, "[Client.Query] sign request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Balance{}, errors.Wrap(err, "[Client.Query]")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Balance{}, errors.Wrap(err, "[Client.Query] read response")
	}
	if err := ctx.Err(); err != nil {
		return Balance{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Balance{}, &QueryError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var payload balanceResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Balance{}, &QueryError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if payload.Status != "success" {
		message := strings.TrimSpace(string(body))
		if payload.ErrorMessage != nil && *payload.ErrorMessage != noErrorMessage {
			message = *payload.ErrorMessage
		}
		return Balance{}, &QueryError{StatusCode: resp.StatusCode, Message: message}
	}

	result := Balance{}
	if payload.Credit != nil {
		result.Credit = *payload.Credit
	}
	if payload.Mileage != nil {
		result.Mileage = *payload.Mileage
	}
	if payload.UpdatedAt != nil {
		if ts, err := time.Parse(time.RFC3339, *payload.UpdatedAt); err == nil {
			result.UpdatedAt = &ts
		} else {
			c.logger.Debug().Str("updated_at", *payload.UpdatedAt).Msg("unparseable balance timestamp")
		}
	}
	return result, nil
}
