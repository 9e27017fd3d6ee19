package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
)

// ErrSnapshotNotFound is returned when the configured blob does not exist.
var ErrSnapshotNotFound = errors.New("snapshot blob not found")

// BlobSource downloads a JSON snapshot (optionally gzipped) from Azure Blob
// Storage.
type BlobSource struct {
	client    *azblob.Client
	container string
	blob      string
}

// BlobOptions configures NewBlobSource.
type BlobOptions struct {
	// AccountURL is the service URL, e.g. https://acct.blob.core.windows.net.
	// A URL carrying a SAS query string is used without further credentials.
	AccountURL string
	Container  string
	Blob       string
	// ClientOptions is passed through to the azblob client.
	ClientOptions *azblob.ClientOptions
}

// NewBlobSource builds a client for opts. Without a SAS token the default
// Azure credential chain is used.
func NewBlobSource(opts BlobOptions) (*BlobSource, error) {
	if opts.Container == "" || opts.Blob == "" {
		return nil, fmt.Errorf("blob source needs a container and a blob name")
	}
	u, err := url.Parse(opts.AccountURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid blob account URL %q", opts.AccountURL)
	}

	var client *azblob.Client
	if u.RawQuery != "" || u.Scheme == "http" {
		client, err = azblob.NewClientWithNoCredential(opts.AccountURL, opts.ClientOptions)
	} else {
		var cred *azidentity.DefaultAzureCredential
		cred, err = azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("creating Azure credential: %w", err)
		}
		client, err = azblob.NewClient(opts.AccountURL, cred, opts.ClientOptions)
	}
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}

	return &BlobSource{client: client, container: opts.Container, blob: opts.Blob}, nil
}

func (s *BlobSource) Fetch(ctx context.Context) ([]models.EvaluationResult, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, s.blob, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s/%s", ErrSnapshotNotFound, s.container, s.blob)
		}
		return nil, fmt.Errorf("downloading %s/%s: %w", s.container, s.blob, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	r, err := maybeGunzip(resp.Body, s.blob)
	if err != nil {
		return nil, err
	}
	defer r.Close() //nolint:errcheck

	return DecodeJSON(r)
}

func (s *BlobSource) Close() error { return nil }

func (s *BlobSource) String() string { return "blob:" + s.container + "/" + s.blob }
