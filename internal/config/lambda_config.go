package config

// LambdaConfig locates the serverless endpoints the dashboard calls.
type LambdaConfig interface {
	GetCreditUsageURL() string
}

const creditUsageURLVar = "MTDASH_CREDIT_USAGE_URL"

type Lambda struct{}

var _ LambdaConfig = Lambda{}

func (Lambda) GetCreditUsageURL() string {
	return GetEnv(creditUsageURLVar, "https://arxtmxk6fvzw4s7nyqeqg37gta0qrhzr.lambda-url.ap-northeast-2.on.aws/")
}
