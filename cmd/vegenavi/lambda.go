package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Run as an AWS Lambda function",
	Args:  cobra.NoArgs,
	RunE:  runLambda,
}

func runLambda(cmd *cobra.Command, args []string) error {
	h, cleanup := buildHandler(cfg, logger)
	defer cleanup()
	logger.Info("starting lambda handler")
	lambda.Start(h.Handle)
	return nil
}
