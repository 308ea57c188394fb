package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

const blobHostSuffix = ".blob.core.windows.net"

// AzureBlobFetcher reads images from Azure Blob Storage with a shared key
type AzureBlobFetcher struct {
	client   *azblob.Client
	account  string
	maxBytes int64
}

// NewAzureBlobFetcher creates a fetcher bound to one storage account
func NewAzureBlobFetcher(accountName, accountKey string, maxBytes int64) (*AzureBlobFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s%s", accountName, blobHostSuffix),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure blob client: %w", err)
	}

	if maxBytes <= 0 {
		maxBytes = defaultMaxImageBytes
	}
	return &AzureBlobFetcher{client: client, account: accountName, maxBytes: maxBytes}, nil
}

// FetchImage downloads the blob addressed by blobURL
func (s *AzureBlobFetcher) FetchImage(ctx context.Context, blobURL string) ([]byte, error) {
	loc, err := ParseBlobURL(blobURL)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(loc.Account, s.account) {
		return nil, fmt.Errorf("blob account %q does not match configured account %q", loc.Account, s.account)
	}

	downloadResponse, err := s.client.DownloadStream(ctx, loc.Container, loc.Blob, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	retryReader := downloadResponse.Body
	defer retryReader.Close()

	data, err := io.ReadAll(io.LimitReader(retryReader, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("blob exceeds %d bytes", s.maxBytes)
	}
	return data, nil
}

// BlobLocation addresses one blob
type BlobLocation struct {
	Account   string
	Container string
	Blob      string
}

// IsBlobURL reports whether rawURL points at Azure Blob Storage
func IsBlobURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Hostname()), blobHostSuffix)
}

// ParseBlobURL accepts https://<account>.blob.core.windows.net/<container>/<blob>
// and the legacy https://<account>.blob.core.windows.net/<container>?blob=<blob> form
func ParseBlobURL(rawURL string) (BlobLocation, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return BlobLocation{}, fmt.Errorf("invalid blob URL: %w", err)
	}

	host := strings.ToLower(u.Hostname())
	if !strings.HasSuffix(host, blobHostSuffix) {
		return BlobLocation{}, fmt.Errorf("not an azure blob URL: %q", rawURL)
	}
	account := strings.TrimSuffix(host, blobHostSuffix)

	path := strings.TrimPrefix(u.Path, "/")
	container, blob, _ := strings.Cut(path, "/")
	if blob == "" {
		blob = u.Query().Get("blob")
	}
	if account == "" || container == "" || blob == "" {
		return BlobLocation{}, fmt.Errorf("blob URL must name a container and a blob: %q", rawURL)
	}

	return BlobLocation{Account: account, Container: container, Blob: blob}, nil
}

// RoutingFetcher sends blob URLs to the blob fetcher and everything else over HTTP
type RoutingFetcher struct {
	http ImageFetcher
	blob ImageFetcher
}

// NewRoutingFetcher combines fetchers; blob may be nil when Azure is not configured
func NewRoutingFetcher(httpFetcher, blobFetcher ImageFetcher) *RoutingFetcher {
	return &RoutingFetcher{http: httpFetcher, blob: blobFetcher}
}

func (r *RoutingFetcher) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	if r.blob != nil && IsBlobURL(imageURL) {
		return r.blob.FetchImage(ctx, imageURL)
	}
	return r.http.FetchImage(ctx, imageURL)
}
