package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsSqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jademcosta/sucuri/pkg/domain"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

const TYPE string = "sqs"
const startupTimeout = 20 * time.Second

type sqsSendMessageAPI interface {
	SendMessage(context.Context, *awsSqs.SendMessageInput, ...func(*awsSqs.Options)) (*awsSqs.SendMessageOutput, error)
}

type Config struct {
	URL       string `yaml:"url"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type Queue struct {
	log      *zap.SugaredLogger
	client   sqsSendMessageAPI
	queueURL string
}

func New(l *zap.SugaredLogger, c *Config) (*Queue, error) {
	queueURL := c.URL
	if !validURL(queueURL) {
		return nil, fmt.Errorf("invalid url for SQS %q", queueURL)
	}

	ctx, cancelFunc := context.WithTimeout(context.Background(), startupTimeout)
	defer cancelFunc()

	loadOptions := []func(*config.LoadOptions) error{config.WithRegion(c.Region)}
	if c.AccessKey != "" || c.SecretKey != "" {
		loadOptions = append(loadOptions, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")))
	}

	sdkConfig, err := config.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("couldn't load default AWS configuration: %w", err)
	}

	sqsClient := awsSqs.NewFromConfig(sdkConfig, func(o *awsSqs.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
	})

	return &Queue{
		log:      l,
		client:   sqsClient,
		queueURL: queueURL,
	}, nil
}

func ParseConfig(confData []byte) (*Config, error) {
	conf := &Config{}

	err := yaml.Unmarshal(confData, conf)
	if err != nil {
		return conf, fmt.Errorf("error parsing SQS config: %w", err)
	}

	return conf, nil
}

func (internalSqs *Queue) Enqueue(ctx context.Context, msg *domain.Message) error {
	bodyAsBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	messageInput := &awsSqs.SendMessageInput{
		MessageBody: aws.String(string(bodyAsBytes)),
		QueueUrl:    &internalSqs.queueURL,
	}

	internalSqs.log.Debugw("sending SQS message", "queue_url", internalSqs.queueURL)
	enqueueOutput, err := internalSqs.client.SendMessage(ctx, messageInput)
	if err != nil {
		return err
	}

	internalSqs.log.Debugw("enqueued message on SQS", "message_id", aws.ToString(enqueueOutput.MessageId))
	return nil
}

func validURL(url string) bool {
	return len(url) > 0
}

func (internalSqs *Queue) Type() string {
	return TYPE
}

func (internalSqs *Queue) Name() string {
	return internalSqs.queueURL
}
