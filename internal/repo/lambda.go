package repo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/miradorstack/status-monitor/internal/config"
)

// LambdaAPI is the subset of the Lambda client used by LambdaInvoker.
type LambdaAPI interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// InvokeResult is the synchronous answer of the remote function.
type InvokeResult struct {
	StatusCode      int
	Payload         []byte
	ExecutedVersion string
}

// FunctionError is returned when the function ran but reported an error.
type FunctionError struct {
	Kind    string
	Payload []byte
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("remote function error (%s): %s", e.Kind, e.Payload)
}

// LambdaInvoker calls the status-update function with RequestResponse semantics.
type LambdaInvoker struct {
	api          LambdaAPI
	functionName string
}

// NewLambdaInvoker builds an invoker from the default AWS credential chain. Static keys
// and a custom endpoint in cfg take precedence, which is how local stacks are targeted.
func NewLambdaInvoker(ctx context.Context, cfg config.InvokerConfig) (*LambdaInvoker, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := lambda.NewFromConfig(awsCfg, func(o *lambda.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewLambdaInvokerWithAPI(client, cfg.ResolvedFunctionName()), nil
}

// NewLambdaInvokerWithAPI wraps an existing Lambda client.
func NewLambdaInvokerWithAPI(api LambdaAPI, functionName string) *LambdaInvoker {
	return &LambdaInvoker{api: api, functionName: functionName}
}

// FunctionName returns the invoked function.
func (l *LambdaInvoker) FunctionName() string { return l.functionName }

// Invoke sends payload and waits for the function to finish.
func (l *LambdaInvoker) Invoke(ctx context.Context, payload []byte) (*InvokeResult, error) {
	if l == nil || l.api == nil {
		return nil, fmt.Errorf("lambda invoker not initialised")
	}

	out, err := l.api.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(l.functionName),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", l.functionName, err)
	}

	result := &InvokeResult{
		StatusCode:      int(out.StatusCode),
		Payload:         out.Payload,
		ExecutedVersion: aws.ToString(out.ExecutedVersion),
	}
	if kind := aws.ToString(out.FunctionError); kind != "" {
		return result, &FunctionError{Kind: kind, Payload: out.Payload}
	}
	return result, nil
}
