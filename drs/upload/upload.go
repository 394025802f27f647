// Package upload implements the platform's two-phase DRS upload
// protocol: negotiate per-file upload credentials with the server, push
// the bytes to object storage, then register the resulting DRS objects.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/nhsdigital/cgp-client/drs"
	"github.com/nhsdigital/cgp-client/drs/hash"
)

// FileSpec names a local file to upload. MimeType is optional; when
// empty it is guessed from the file extension.
type FileSpec struct {
	Path     string
	MimeType string
}

type Uploader struct {
	Client *drs.Client
	Pusher Pusher
	Logger *slog.Logger
}

func NewUploader(client *drs.Client, opts ...UploaderOption) *Uploader {
	u := &Uploader{Client: client}
	for _, opt := range opts {
		opt(u)
	}
	if u.Logger == nil {
		u.Logger = slog.New(slog.DiscardHandler)
	}
	if u.Pusher == nil {
		u.Pusher = NewS3Pusher(client.DryRun, u.Logger)
	}
	return u
}

type UploaderOption func(*Uploader)

func WithPusher(p Pusher) UploaderOption {
	return func(u *Uploader) { u.Pusher = p }
}

func WithLogger(logger *slog.Logger) UploaderOption {
	return func(u *Uploader) { u.Logger = logger }
}

// UploadFiles runs the full upload protocol for the given files, one
// file at a time in the supplied order, and returns the registered DRS
// objects. Negotiation is all-or-nothing; pushes after a successful
// negotiation are independent, and a failure in one does not roll back
// already-completed pushes.
func (u *Uploader) UploadFiles(ctx context.Context, files []FileSpec) ([]*drs.DrsObject, error) {
	request, err := u.CreateRequest(files)
	if err != nil {
		return nil, err
	}

	response, err := u.RequestUpload(ctx, request)
	if err != nil {
		return nil, err
	}

	objects := make([]*drs.DrsObject, 0, len(files))
	for _, file := range files {
		name := filepath.Base(file.Path)
		responseObject, ok := response.Objects[name]
		if !ok {
			return nil, drs.NewError(drs.KindSchema,
				fmt.Sprintf("upload response missing entry for requested file %s", name), nil)
		}
		obj, err := u.uploadFile(ctx, file.Path, &responseObject)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

// CreateRequest builds the batch upload request: local MD5, size, and
// MIME type are all computed before any network call so unreadable
// files fail fast.
func (u *Uploader) CreateRequest(files []FileSpec) (*Request, error) {
	request := &Request{Objects: make([]RequestObject, 0, len(files))}
	for _, file := range files {
		info, err := os.Stat(file.Path)
		if err != nil {
			return nil, drs.NewError(drs.KindLocalIO, fmt.Sprintf("stat %s", file.Path), err)
		}
		md5sum, err := hash.MD5SumFile(file.Path, drs.ChunkSize)
		if err != nil {
			return nil, drs.NewError(drs.KindLocalIO, fmt.Sprintf("hashing %s", file.Path), err)
		}
		mimeType := file.MimeType
		if mimeType == "" {
			if mimeType, err = GuessMimeType(file.Path); err != nil {
				return nil, err
			}
		}
		request.Objects = append(request.Objects, RequestObject{
			Name:     filepath.Base(file.Path),
			Size:     info.Size(),
			MimeType: mimeType,
			Checksums: []hash.Checksum{
				{Type: hash.ChecksumTypeMD5, Checksum: md5sum},
			},
		})
	}
	return request, nil
}

// RequestUpload posts the batch negotiation request to the server's
// upload-request endpoint. A non-2xx or malformed response fails the
// whole batch; there is no partial success at this step.
func (u *Uploader) RequestUpload(ctx context.Context, request *Request) (*Response, error) {
	endpoint := fmt.Sprintf("https://%s/upload-request", u.Client.APIBaseURL)
	u.Logger.Info("requesting upload", "endpoint", endpoint, "files", len(request.Objects))

	payload, err := sonic.ConfigDefault.Marshal(request)
	if err != nil {
		return nil, drs.NewError(drs.KindSchema, "marshalling upload request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, drs.NewError(drs.KindNetwork, "building upload request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.Client.Do(req)
	if err != nil {
		return nil, drs.NewError(drs.KindNetwork, "upload request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, drs.NewError(drs.KindNetwork, "reading upload response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, drs.NewNetworkError("upload request failed", resp.StatusCode, string(body))
	}

	response := &Response{}
	if err := sonic.ConfigFastest.Unmarshal(body, response); err != nil {
		return nil, drs.NewError(drs.KindSchema, "parsing upload response", err)
	}
	u.Logger.Info("upload request successful", "objects", len(response.Objects))
	return response, nil
}

// uploadFile pushes one file with its negotiated credentials and
// registers the resulting DRS object.
func (u *Uploader) uploadFile(ctx context.Context, path string, responseObject *ResponseObject) (*drs.DrsObject, error) {
	if err := responseObject.Validate(); err != nil {
		return nil, err
	}
	method, err := responseObject.GetUploadMethod(MethodS3)
	if err != nil {
		return nil, err
	}

	if err := u.Pusher.Push(ctx, path, method); err != nil {
		return nil, err
	}

	obj, err := responseObject.ToDrsObject(method, u.Client.APIBaseURL)
	if err != nil {
		return nil, err
	}
	if err := u.Client.PostObject(obj); err != nil {
		return nil, err
	}
	return obj, nil
}
