package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultURL is the public paint catalog endpoint.
const DefaultURL = "https://7tv.io/v2/cosmetics"

// DefaultUserIdentifier makes the catalog list users by login name.
const DefaultUserIdentifier = "login"

// DefaultTimeout bounds a single catalog request.
const DefaultTimeout = 30 * time.Second

// Source fetches a raw catalog body. The caller closes the returned reader.
type Source interface {
	Fetch(ctx context.Context) (io.ReadCloser, error)
}

// HTTPSource fetches the catalog from an HTTP endpoint.
type HTTPSource struct {
	// BaseURL is the catalog endpoint without query (default: DefaultURL).
	BaseURL string

	// UserIdentifier selects how users are listed (default: "login").
	// The endpoint also accepts "twitch_id" and "object_id".
	UserIdentifier string

	// Client is the HTTP client (default: one with DefaultTimeout).
	Client *http.Client
}

// NewHTTPSource creates an HTTPSource for baseURL listing users by login.
func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	return &HTTPSource{BaseURL: baseURL, Client: client}
}

// RequestURL returns the full catalog URL including the user identifier query.
func (s *HTTPSource) RequestURL() (string, error) {
	base := s.BaseURL
	if base == "" {
		base = DefaultURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	ident := s.UserIdentifier
	if ident == "" {
		ident = DefaultUserIdentifier
	}
	q := u.Query()
	q.Set("user_identifier", ident)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context) (io.ReadCloser, error) {
	target, err := s.RequestURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("catalog endpoint returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// FileSource reads a catalog snapshot from disk.
type FileSource struct {
	Path string
}

// Fetch implements Source.
func (s FileSource) Fetch(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(s.Path)
}

// S3Getter is the subset of the S3 client used by S3Source.
type S3Getter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads a mirrored catalog snapshot from an S3 object.
type S3Source struct {
	Client S3Getter
	Bucket string
	Key    string
}

// NewS3Source creates an S3Source. With a nil client, an anonymous client
// for region is created, which suits public snapshot buckets.
func NewS3Source(client S3Getter, region, bucket, key string) *S3Source {
	if client == nil {
		client = s3.NewFromConfig(aws.Config{
			Region:      region,
			Credentials: aws.AnonymousCredentials{},
		})
	}
	return &S3Source{Client: client, Bucket: bucket, Key: key}
}

// Fetch implements Source.
func (s *S3Source) Fetch(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get %s/%s: %w", s.Bucket, s.Key, err)
	}
	return out.Body, nil
}
