package drs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nhsdigital/cgp-client/drs/hash"
	"github.com/schollz/progressbar/v3"
)

// DownloadOptions control a single object download.
type DownloadOptions struct {
	// Output is the destination path; defaults to the object's name.
	Output         string
	ForceOverwrite bool
	// ExpectedHash, when set, is verified against the object's declared
	// checksums before download and against the written file afterwards.
	ExpectedHash string
	// Progress draws a byte progress bar on Status while streaming.
	Progress bool
	// Prompt is where overwrite confirmations are read from. Defaults
	// to stdin.
	Prompt io.Reader
	// Status is where prompts and notices are written. Defaults to stderr.
	Status io.Writer
}

// DownloadResult reports the outcome of a download. A declined
// overwrite is a normal skipped outcome, not an error.
type DownloadResult struct {
	Path    string
	Skipped bool
}

// DownloadObjectData resolves a DRS URL and streams the object's bytes
// to disk: resolve metadata, pick the S3 access method, pull from the
// presigned URL, verify the checksum.
func (cl *Client) DownloadObjectData(drsURL string, opts DownloadOptions) (*DownloadResult, error) {
	cl.logger.Info("downloading data for DRS URL", "url", drsURL)

	obj, err := cl.ResolveObject(drsURL, opts.ExpectedHash)
	if err != nil {
		return nil, err
	}

	accessURL, err := cl.SelectAccessURL(obj, AccessMethodS3)
	if err != nil {
		return nil, err
	}

	if opts.Output == "" {
		if obj.Name == "" {
			return nil, NewError(KindLocalIO, "need either an output path or a DRS object name", nil)
		}
		opts.Output = obj.Name
	}
	if opts.ExpectedHash == "" {
		// fall back to the object's own declared md5 for post-download verification
		if md5sum, ok := obj.MD5Checksum(); ok {
			opts.ExpectedHash = md5sum
		}
	}
	return cl.StreamToFile(accessURL.URL, opts)
}

// StreamToFile pulls bytes from a fetchable HTTPS URL to opts.Output in
// fixed-size chunks. By this point URL resolution is assumed complete,
// so non-HTTPS URLs are rejected outright.
func (cl *Client) StreamToFile(url string, opts DownloadOptions) (*DownloadResult, error) {
	if !strings.HasPrefix(url, HTTPSScheme) {
		return nil, newURLFormatError("refusing to stream from non-HTTPS URL: %s", url)
	}
	if opts.Output == "" {
		return nil, NewError(KindLocalIO, "no output path for download", nil)
	}
	if opts.Prompt == nil {
		opts.Prompt = os.Stdin
	}
	if opts.Status == nil {
		opts.Status = os.Stderr
	}

	cl.logger.Info("writing to output", "path", opts.Output)
	if _, err := os.Stat(opts.Output); err == nil && !opts.ForceOverwrite {
		ok, err := confirmOverwrite(opts.Output, opts.Prompt, opts.Status)
		if err != nil {
			return nil, NewError(KindLocalIO, "reading overwrite confirmation", err)
		}
		if !ok {
			fmt.Fprintln(opts.Status, "not overwritten")
			return &DownloadResult{Path: opts.Output, Skipped: true}, nil
		}
	}

	resp, err := cl.stream.Get(url)
	if err != nil {
		return nil, NewError(KindNetwork, "streaming data from URL", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, newNetworkError("error streaming data from URL", resp.StatusCode, string(body))
	}

	out, err := os.Create(opts.Output)
	if err != nil {
		return nil, NewError(KindLocalIO, fmt.Sprintf("creating %s", opts.Output), err)
	}

	var dst io.Writer = out
	if opts.Progress {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetDescription("downloading"),
			progressbar.OptionSetWriter(opts.Status),
			progressbar.OptionShowBytes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(10),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(opts.Status) }),
		)
		dst = io.MultiWriter(out, bar)
	}

	written, err := io.CopyBuffer(dst, resp.Body, make([]byte, ChunkSize))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, NewError(KindLocalIO, fmt.Sprintf("writing %s", opts.Output), err)
	}
	cl.logger.Info("download complete", "path", opts.Output, "bytes", written)

	if opts.ExpectedHash != "" {
		sum, err := hash.MD5SumFile(opts.Output, ChunkSize)
		if err != nil {
			return nil, NewError(KindLocalIO, "hashing downloaded file", err)
		}
		if sum != opts.ExpectedHash {
			// the file is left on disk so the caller can inspect it
			return nil, newChecksumMismatchError("incorrect hash for downloaded file %s: %s vs %s", opts.Output, sum, opts.ExpectedHash)
		}
		cl.logger.Info("file hash successfully verified", "path", opts.Output)
	}
	return &DownloadResult{Path: opts.Output}, nil
}

func confirmOverwrite(path string, prompt io.Reader, status io.Writer) (bool, error) {
	fmt.Fprintf(status, "overwrite existing %s? (y/n [n]) ", path)
	reader := bufio.NewReader(prompt)
	response, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(response)), "y"), nil
}
