package s3client

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
)

// NewMock starts an in-process, in-memory S3 server on an ephemeral local
// port and returns a client bound to it. Used by the server's --no-s3 mode.
// The returned stop function shuts the mock server down.
func NewMock(ctx context.Context, bucketName string) (*Client, func(), error) {
	backend := s3mem.New()
	faker := gofakes3.New(backend)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, nil, fmt.Errorf("s3client: failed to start mock listener: %w", err)
	}

	srv := &http.Server{Handler: faker.Server()}
	go srv.Serve(listener)
	stop := func() {
		_ = srv.Close()
	}

	endpoint := "http://" + listener.Addr().String()
	sdkConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("mock-key", "mock-secret", ""),
		),
	)
	if err != nil {
		stop()
		return nil, nil, fmt.Errorf("s3client: failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	if _, err := s3Client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucketName),
	}); err != nil {
		stop()
		return nil, nil, fmt.Errorf("s3client: failed to create mock bucket: %w", err)
	}

	return NewFromS3Client(s3Client, bucketName), stop, nil
}
