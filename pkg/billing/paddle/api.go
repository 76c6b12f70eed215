package paddle

import (
	"context"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
)

// API is the part of the Paddle SDK the session issuer calls.
type API interface {
	CreateTransaction(ctx context.Context, req *paddle.CreateTransactionRequest) (*paddle.Transaction, error)
	CreateCustomerPortalSession(ctx context.Context, req *paddle.CreateCustomerPortalSessionRequest) (*paddle.CustomerPortalSession, error)
}

type sdkAPI struct {
	sdk *paddle.SDK
}

// NewAPI creates an SDK client for the configured environment.
func NewAPI(cfg Config) (API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		sdk *paddle.SDK
		err error
	)
	switch cfg.environment() {
	case EnvironmentProduction:
		sdk, err = paddle.New(cfg.APIKey)
	default:
		sdk, err = paddle.NewSandbox(cfg.APIKey)
	}
	if err != nil {
		return nil, err
	}
	return &sdkAPI{sdk: sdk}, nil
}

func (a *sdkAPI) CreateTransaction(ctx context.Context, req *paddle.CreateTransactionRequest) (*paddle.Transaction, error) {
	return a.sdk.TransactionsClient.CreateTransaction(ctx, req)
}

func (a *sdkAPI) CreateCustomerPortalSession(ctx context.Context, req *paddle.CreateCustomerPortalSessionRequest) (*paddle.CustomerPortalSession, error) {
	return a.sdk.CustomerPortalSessionsClient.CreateCustomerPortalSession(ctx, req)
}
