package reporting

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/agentsleague/prepeval/internal/models"
	"github.com/agentsleague/prepeval/internal/utils"
)

const uploadMaxRetries = 3

// blobAPI is the subset of [azblob.Client] used for uploads.
type blobAPI interface {
	UploadBuffer(ctx context.Context, containerName string, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
}

// BlobUploader stores reports in an Azure Storage container.
type BlobUploader struct {
	api       blobAPI
	container string
	prefix    string
	gzip      bool
}

// UploaderOption configures a BlobUploader.
type UploaderOption func(*BlobUploader)

// WithPrefix places uploaded reports under a virtual directory.
func WithPrefix(prefix string) UploaderOption {
	return func(u *BlobUploader) { u.prefix = strings.Trim(prefix, "/") }
}

// WithGzip compresses reports before upload.
func WithGzip(enabled bool) UploaderOption {
	return func(u *BlobUploader) { u.gzip = enabled }
}

// NewBlobUploader authenticates with the default Azure credential chain.
func NewBlobUploader(accountURL, container string, opts ...UploaderOption) (*BlobUploader, error) {
	if accountURL == "" || container == "" {
		return nil, fmt.Errorf("blob upload needs both an account URL and a container")
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("creating Azure credential: %w", err)
	}
	client, err := azblob.NewClient(accountURL, cred, &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry:     policy.RetryOptions{MaxRetries: uploadMaxRetries},
			Telemetry: policy.TelemetryOptions{ApplicationID: "prepeval"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}
	return newBlobUploader(client, container, opts...), nil
}

func newBlobUploader(api blobAPI, container string, opts ...UploaderOption) *BlobUploader {
	u := &BlobUploader{api: api, container: container}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload stores report as eval-report-<runId>.json (or .json.gz) and returns
// the blob name.
func (u *BlobUploader) Upload(ctx context.Context, report *models.EvalRunReport) (string, error) {
	data, err := MarshalReport(report)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("eval-report-%s.json", report.RunID)
	if report.RunID == "" {
		name = fmt.Sprintf("eval-report-%s.json", report.GeneratedAtUTC.Format("20060102-150405"))
	}
	headers := &blob.HTTPHeaders{BlobContentType: utils.Ptr("application/json")}
	if u.gzip {
		if data, err = gzipBytes(data); err != nil {
			return "", err
		}
		name += ".gz"
		headers.BlobContentEncoding = utils.Ptr("gzip")
	}
	if u.prefix != "" {
		name = path.Join(u.prefix, name)
	}

	if _, err := u.api.UploadBuffer(ctx, u.container, name, data, &azblob.UploadBufferOptions{HTTPHeaders: headers}); err != nil {
		return "", fmt.Errorf("uploading report to %s/%s: %w", u.container, name, err)
	}
	return name, nil
}
