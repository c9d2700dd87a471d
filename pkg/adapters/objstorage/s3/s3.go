package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awsS3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jademcosta/sucuri/pkg/bundle"
	"github.com/jademcosta/sucuri/pkg/domain"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

const TYPE string = "s3"
const startupTimeout = 20 * time.Second

type uploaderAPI interface {
	Upload(context.Context, *awsS3.PutObjectInput, ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type Config struct {
	TimeoutInMillis int64  `yaml:"timeout_milliseconds"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKey       string `yaml:"access_key"`
	SecretKey       string `yaml:"secret_key"`
	Prefix          string `yaml:"prefix"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
}

type S3Bucket struct {
	name            string
	region          string
	fixedPrefix     string
	timeoutInMillis int64
	uploader        uploaderAPI
	log             *zap.SugaredLogger
}

func New(l *zap.SugaredLogger, c *Config) (*S3Bucket, error) {
	ctx, cancelFunc := context.WithTimeout(context.Background(), startupTimeout)
	defer cancelFunc()

	loadOptions := []func(*awsConfig.LoadOptions) error{awsConfig.WithRegion(c.Region)}
	if c.AccessKey != "" || c.SecretKey != "" {
		loadOptions = append(loadOptions, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")))
	}

	sdkConfig, err := awsConfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("couldn't load default AWS configuration: %w", err)
	}

	client := awsS3.NewFromConfig(sdkConfig, func(o *awsS3.Options) {
		o.UsePathStyle = c.ForcePathStyle
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
	})

	return &S3Bucket{
		uploader:        manager.NewUploader(client),
		log:             l,
		name:            c.Bucket,
		region:          c.Region,
		fixedPrefix:     c.Prefix,
		timeoutInMillis: c.TimeoutInMillis,
	}, nil
}

func ParseConfig(confData []byte) (*Config, error) {
	conf := &Config{}

	err := yaml.Unmarshal(confData, conf)
	if err != nil {
		return conf, fmt.Errorf("error parsing S3 config: %w", err)
	}

	return conf, nil
}

func (bucket *S3Bucket) Upload(ctx context.Context, workU *domain.WorkUnit) (*domain.UploadResult, error) {
	key := mergeParts(bucket.fixedPrefix, workU.Prefix, workU.Filename)

	uploadInput := &awsS3.PutObjectInput{
		Bucket:      aws.String(bucket.name),
		Key:         aws.String(key),
		Body:        bytes.NewReader(workU.Data),
		ContentType: aws.String(bundle.BundleContentType),
	}

	if bucket.timeoutInMillis != 0 {
		var cancelFunc context.CancelFunc
		ctx, cancelFunc = context.WithTimeout(ctx, time.Duration(bucket.timeoutInMillis)*time.Millisecond)
		defer cancelFunc()
	}

	uploadInfo, err := bucket.uploader.Upload(ctx, uploadInput)
	if err != nil {
		return nil, fmt.Errorf("error when uploading to S3: %w", err)
	}

	bucket.log.Debugw("bundle uploaded", "key", key, "size_in_bytes", len(workU.Data))
	return &domain.UploadResult{
		Bucket:      bucket.name,
		Region:      bucket.region,
		Path:        key,
		URL:         uploadInfo.Location,
		SizeInBytes: len(workU.Data),
	}, nil
}

func (bucket *S3Bucket) Type() string {
	return TYPE
}

func (bucket *S3Bucket) Name() string {
	return bucket.name
}

func mergeParts(fixedPrefix string, dynamicPrefix string, key string) string {
	result := strings.Trim(fixedPrefix, "/") + "/" + strings.Trim(dynamicPrefix, "/")
	result = strings.Trim(result, "/")

	result = "/" + result + "/" + strings.Trim(key, "/")

	return strings.Trim(result, "/")
}
