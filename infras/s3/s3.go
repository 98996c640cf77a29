package s3

//go:generate go run go.uber.org/mock/mockgen -source=./s3.go -destination=./mocks/s3_mock.go -package=mocks

import (
	"booknotify/config"
	"booknotify/infras/otel"
	"booknotify/shared/constant"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// Cloudflare R2 and MinIO accept any region name.
const defaultRegion = "auto"

var errNoBucket = errors.New("no bucket configured")

// Object is one upload. An empty Bucket means the configured default bucket.
type Object struct {
	Bucket      string
	Key         string
	ContentType string
	Body        []byte
	Metadata    map[string]string
}

type S3 interface {
	// Put uploads obj and returns its public URL.
	Put(ctx context.Context, obj Object) (url string, err error)
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type store struct {
	client        putObjectAPI
	defaultBucket string
	publicDomain  string
	otel          otel.Otel
}

// NewWithClient builds the store on an existing PutObject client.
func NewWithClient(client putObjectAPI, config *config.Config, otel otel.Otel) S3 {
	return &store{
		client:        client,
		defaultBucket: config.External.S3.BucketName,
		publicDomain:  strings.TrimSuffix(config.External.S3.PublicDomain, "/"),
		otel:          otel,
	}
}

func New(config *config.Config, otel otel.Otel) S3 {
	s3Config := config.External.S3

	awsCfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s3Config.AccessKeyID, s3Config.SecretAccessKey, "")),
		awsConfig.WithRegion(defaultRegion),
	)
	if err != nil {
		log.Err(err).Msg("Error loading AWS configuration")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s3Config.APIEndpoint != "" {
			o.BaseEndpoint = aws.String(s3Config.APIEndpoint)
		}

		o.UsePathStyle = true
	})

	return NewWithClient(client, config, otel)
}

func (st *store) Put(ctx context.Context, obj Object) (url string, err error) {
	ctx, scope := st.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".Put")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	bucket := obj.Bucket
	if bucket == "" {
		bucket = st.defaultBucket
	}

	if bucket == "" {
		return constant.Empty, errNoBucket
	}

	scope.SetAttributes(map[string]any{"s3.bucket": bucket, "s3.key": obj.Key, "s3.size": len(obj.Body)})

	_, err = st.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(obj.Key),
		Body:          bytes.NewReader(obj.Body),
		ContentType:   aws.String(obj.ContentType),
		ContentLength: aws.Int64(int64(len(obj.Body))),
		Metadata:      obj.Metadata,
	})
	if err != nil {
		log.Error().Err(err).Str("bucket", bucket).Str("key", obj.Key).Msg("failed to put object")

		return constant.Empty, fmt.Errorf("failed to put %s/%s: %w", bucket, obj.Key, err)
	}

	return st.publicDomain + "/" + obj.Key, nil
}
