package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"inventory-api/pkg/lambda"
)

var serve = lambda.GetConnectionManager().Handler()

func handler(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := lambda.FromAPIGateway(event)
	if err != nil {
		return lambda.ErrorResponse(http.StatusBadRequest, err.Error()), nil
	}

	resp, err := serve(ctx, req)
	if err != nil {
		logrus.WithError(err).WithField("path", event.Path).Error("Request failed")
		return lambda.ErrorResponse(http.StatusInternalServerError, "An internal error occurred"), nil
	}

	return resp.ToAPIGateway(), nil
}

func main() {
	awslambda.Start(handler)
}
