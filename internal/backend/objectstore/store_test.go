package objectstore

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/hrmis/internal/common"
	"github.com/dmitrijs2005/hrmis/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(endpoint string) Config {
	return Config{
		Region:       "us-east-1",
		RootUser:     "minioadmin",
		RootPassword: "minioadmin",
		BaseEndpoint: endpoint,
		Bucket:       "avatars",
	}
}

func stubClients(t *testing.T) {
	t.Helper()
	origLoad, origNewS3, origNewPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	origPut, origGet := presignPutObject, presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client { return &s3.Client{} }
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }
}

// blobServer records PUT bodies by path.
type blobServer struct {
	mu    sync.Mutex
	blobs map[string][]byte
	types map[string]string
	fail  atomic.Bool
}

func newBlobServer(t *testing.T) (*blobServer, *httptest.Server) {
	t.Helper()
	bs := &blobServer{blobs: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if bs.fail.Load() {
			http.Error(w, "denied", http.StatusForbidden)
			return
		}
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		b, _ := io.ReadAll(r.Body)
		bs.mu.Lock()
		bs.blobs[r.URL.Path] = b
		bs.types[r.URL.Path] = r.Header.Get("Content-Type")
		bs.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return bs, srv
}

func TestNew_RequiresBucket(t *testing.T) {
	stubClients(t)
	_, err := New(context.Background(), Config{}, nil, logging.Nop())
	require.Error(t, err)
}

func TestNew_LoadConfigError(t *testing.T) {
	stubClients(t)
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	_, err := New(context.Background(), testConfig(""), nil, logging.Nop())
	require.EqualError(t, err, "load-fail")
}

func TestNew_SetsEndpointAndCredentials(t *testing.T) {
	stubClients(t)

	var lo awsconfig.LoadOptions
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		for _, fn := range optFns {
			_ = fn(&lo)
		}
		return aws.Config{}, nil
	}
	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	s, err := New(context.Background(), testConfig("http://127.0.0.1:9000"), nil, logging.Nop())
	require.NoError(t, err)
	assert.Equal(t, defaultPresignTTL, s.cfg.PresignTTL)
	assert.Equal(t, "us-east-1", lo.Region)

	creds, err := lo.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "minioadmin", creds.AccessKeyID)

	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestUploadBlob_PutsToPresignedURL(t *testing.T) {
	stubClients(t)
	bs, srv := newBlobServer(t)

	var gotKey, gotType string
	var gotExpires time.Duration
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		gotKey = *in.Key
		gotType = aws.ToString(in.ContentType)
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		gotExpires = po.Expires
		return &v4.PresignedHTTPRequest{URL: srv.URL + "/avatars/" + *in.Key, Method: http.MethodPut}, nil
	}

	s, err := New(context.Background(), testConfig(""), srv.Client(), logging.Nop())
	require.NoError(t, err)

	require.NoError(t, s.UploadBlob(context.Background(), "u1/a.jpg", []byte("jpeg"), "image/jpeg"))

	assert.Equal(t, "u1/a.jpg", gotKey)
	assert.Equal(t, "image/jpeg", gotType)
	assert.Equal(t, defaultPresignTTL, gotExpires)
	bs.mu.Lock()
	defer bs.mu.Unlock()
	assert.Equal(t, []byte("jpeg"), bs.blobs["/avatars/u1/a.jpg"])
	assert.Equal(t, "image/jpeg", bs.types["/avatars/u1/a.jpg"])
}

func TestUploadBlob_Errors(t *testing.T) {
	stubClients(t)
	bs, srv := newBlobServer(t)

	s, err := New(context.Background(), testConfig(""), srv.Client(), logging.Nop())
	require.NoError(t, err)

	err = s.UploadBlob(context.Background(), "", []byte("x"), "")
	require.ErrorIs(t, err, common.ErrValidation)

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-put-fail")
	}
	err = s.UploadBlob(context.Background(), "k", []byte("x"), "")
	require.ErrorIs(t, err, common.ErrUnavailable)
	assert.Contains(t, err.Error(), "presign-put-fail")

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: srv.URL + "/avatars/k"}, nil
	}
	bs.fail.Store(true)
	err = s.UploadBlob(context.Background(), "k", []byte("x"), "")
	require.ErrorIs(t, err, common.ErrUnavailable)
	assert.Contains(t, err.Error(), "403")
}

func TestResolvePublicURL_PublicBase(t *testing.T) {
	stubClients(t)
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		t.Fatal("public bucket must not be signed")
		return nil, nil
	}

	cfg := testConfig("")
	cfg.PublicBaseURL = "https://cdn.example.com/avatars/"
	s, err := New(context.Background(), cfg, nil, logging.Nop())
	require.NoError(t, err)

	u1, err := s.ResolvePublicURL(context.Background(), "u1/a.jpg")
	require.NoError(t, err)
	u2, err := s.ResolvePublicURL(context.Background(), "u1/a.jpg")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/avatars/u1/a.jpg", u1)
	assert.Equal(t, u1, u2)
}

func TestResolvePublicURL_Presigned(t *testing.T) {
	stubClients(t)
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "http://s3/" + *in.Bucket + "/" + *in.Key + "?sig=1"}, nil
	}

	s, err := New(context.Background(), testConfig(""), nil, logging.Nop())
	require.NoError(t, err)

	u, err := s.ResolvePublicURL(context.Background(), "u1/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "http://s3/avatars/u1/a.jpg?sig=1", u)

	_, err = s.ResolvePublicURL(context.Background(), "")
	require.ErrorIs(t, err, common.ErrValidation)

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("presign-get-fail")
	}
	_, err = s.ResolvePublicURL(context.Background(), "u1/a.jpg")
	require.ErrorIs(t, err, common.ErrUnavailable)
}

// The real SDK signs offline, so the full path can run against a local
// server standing in for the bucket endpoint.
func TestUploadBlob_RealPresigner(t *testing.T) {
	bs, srv := newBlobServer(t)

	s, err := New(context.Background(), testConfig(srv.URL), srv.Client(), logging.Nop())
	require.NoError(t, err)

	require.NoError(t, s.UploadBlob(context.Background(), "u1/b.png", []byte("png"), "image/png"))
	bs.mu.Lock()
	assert.Equal(t, []byte("png"), bs.blobs["/avatars/u1/b.png"])
	bs.mu.Unlock()

	u, err := s.ResolvePublicURL(context.Background(), "u1/b.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, srv.URL+"/avatars/u1/b.png?"), u)
	assert.Contains(t, u, "X-Amz-Signature=")
}
