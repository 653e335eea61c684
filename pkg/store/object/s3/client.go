package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrMissingCredentials indicates the access key or the secret key is not set.
var ErrMissingCredentials = errors.New("missing S3 access key or secret key")

const (
	ProtocolHTTP  = "http"
	ProtocolHTTPS = "https"

	URIStylePath    = "path"
	URIStyleVirtual = "virtual"

	// DefaultRegion is used for request signing when no region is configured.
	DefaultRegion = "us-east-1"
)

// ClientConfig holds the connection settings resolved once at startup.
type ClientConfig struct {
	// AccessKeyID and SecretAccessKey are both required
	AccessKeyID     string
	SecretAccessKey string

	// Region used to sign requests (default: us-east-1)
	Region string

	// Endpoint is a host name ("s3.example.com:9000") or a URL. Empty means
	// the AWS endpoint for Region.
	Endpoint string

	// Protocol is "http" or "https" (default: https). A scheme present in
	// Endpoint takes precedence.
	Protocol string

	// URIStyle is "path" or "virtual". Defaults to path-style when Endpoint
	// is set and virtual-hosted otherwise.
	URIStyle string
}

// EndpointURL returns the endpoint with a scheme, or "" when no endpoint is
// configured.
func (c ClientConfig) EndpointURL() string {
	if c.Endpoint == "" {
		return ""
	}
	if strings.Contains(c.Endpoint, "://") {
		return c.Endpoint
	}

	protocol := c.Protocol
	if protocol == "" {
		protocol = ProtocolHTTPS
	}
	return protocol + "://" + c.Endpoint
}

// PathStyle reports whether path-style addressing should be used.
func (c ClientConfig) PathStyle() bool {
	switch c.URIStyle {
	case URIStylePath:
		return true
	case URIStyleVirtual:
		return false
	default:
		return c.Endpoint != ""
	}
}

// Validate checks that the settings can produce a client.
func (c ClientConfig) Validate() error {
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return ErrMissingCredentials
	}
	switch c.Protocol {
	case "", ProtocolHTTP, ProtocolHTTPS:
	default:
		return fmt.Errorf("unsupported S3 protocol %q (use http or https)", c.Protocol)
	}
	switch c.URIStyle {
	case "", URIStylePath, URIStyleVirtual:
	default:
		return fmt.Errorf("unsupported S3 URI style %q (use path or virtual)", c.URIStyle)
	}
	return nil
}

// NewClient builds an S3 client from cfg.
//
// The SDK retryer is limited to a single attempt: transient failures are
// returned to the driver, which applies its own bounded backoff.
//
// Parameters:
//   - ctx: Context for loading the shared AWS configuration
//   - cfg: Connection settings
//
// Returns:
//   - *s3.Client: Configured client
//   - error: ErrMissingCredentials, an invalid setting, or a config load failure
func NewClient(ctx context.Context, cfg ClientConfig) (*s3.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	// ========================================================================
	// Step 1: Build AWS Config
	// ========================================================================

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx,
		awsConfig.WithRegion(region),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"", // session token (empty for static credentials)
		)),
		awsConfig.WithRetryer(func() aws.Retryer {
			return retry.NewStandard(func(o *retry.StandardOptions) {
				o.MaxAttempts = 1
			})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// ========================================================================
	// Step 2: Create S3 Client
	// ========================================================================

	endpoint := cfg.EndpointURL()
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		if cfg.Protocol == ProtocolHTTP {
			o.EndpointOptions.DisableHTTPS = true
		}
		o.UsePathStyle = cfg.PathStyle()
	})

	return client, nil
}
