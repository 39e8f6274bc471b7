package repo

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/miradorstack/status-monitor/internal/config"
)

type mockLambdaAPI struct {
	mock.Mock
}

func (m *mockLambdaAPI) Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*lambda.InvokeOutput)
	return out, args.Error(1)
}

func TestLambdaInvokerInvoke(t *testing.T) {
	api := new(mockLambdaAPI)
	payload := []byte(`{"body":{"status":1,"componentIds":"a,b"}}`)
	api.On("Invoke", mock.Anything, mock.MatchedBy(func(in *lambda.InvokeInput) bool {
		return aws.ToString(in.FunctionName) == "status-page-update-dev-http" &&
			in.InvocationType == types.InvocationTypeRequestResponse &&
			string(in.Payload) == string(payload)
	})).Return(&lambda.InvokeOutput{StatusCode: 200, Payload: []byte(`{"statusCode":200}`), ExecutedVersion: aws.String("$LATEST")}, nil)

	invoker := NewLambdaInvokerWithAPI(api, "status-page-update-dev-http")
	result, err := invoker.Invoke(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, 200, result.StatusCode)
	assert.Equal(t, "$LATEST", result.ExecutedVersion)
	api.AssertExpectations(t)
}

func TestLambdaInvokerFunctionError(t *testing.T) {
	api := new(mockLambdaAPI)
	api.On("Invoke", mock.Anything, mock.Anything).
		Return(&lambda.InvokeOutput{StatusCode: 200, FunctionError: aws.String("Unhandled"), Payload: []byte(`{"errorMessage":"boom"}`)}, nil)

	result, err := NewLambdaInvokerWithAPI(api, "fn").Invoke(context.Background(), []byte(`{}`))
	require.Error(t, err)
	var fnErr *FunctionError
	require.ErrorAs(t, err, &fnErr)
	assert.Equal(t, "Unhandled", fnErr.Kind)
	require.NotNil(t, result)
	assert.Contains(t, string(result.Payload), "boom")
}

func TestLambdaInvokerTransportError(t *testing.T) {
	api := new(mockLambdaAPI)
	api.On("Invoke", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	result, err := NewLambdaInvokerWithAPI(api, "fn").Invoke(context.Background(), []byte(`{}`))
	assert.Nil(t, result)
	assert.ErrorContains(t, err, "throttled")
}

func TestNewLambdaInvokerAgainstEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/functions/status-page-update-test-http/invocations"), r.URL.Path)
		assert.Equal(t, "RequestResponse", r.Header.Get("X-Amz-Invocation-Type"))
		data, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"body":{"status":4,"componentIds":"1,2,3"}}`, string(data))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"statusCode":200}`))
	}))
	defer server.Close()

	invoker, err := NewLambdaInvoker(context.Background(), config.InvokerConfig{
		Stage:           "test",
		Region:          "us-west-2",
		Endpoint:        server.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	})
	require.NoError(t, err)
	assert.Equal(t, "status-page-update-test-http", invoker.FunctionName())

	result, err := invoker.Invoke(context.Background(), []byte(`{"body":{"status":4,"componentIds":"1,2,3"}}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.JSONEq(t, `{"statusCode":200}`, string(result.Payload))
}
