package s3

import (
	"bufio"
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // S3 ETags are MD5 digests
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const mockBucket = "bookingcore-test"

// NewMockForTests returns a Store whose client talks to an in-process fake
// bucket. The fake serves the object calls the store makes: Head, Get, Put,
// Delete and ListObjectsV2.
func NewMockForTests() *Store {
	bucket := &fakeBucket{name: mockBucket, objects: make(map[string]fakeObject)}
	cfg, _ := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIDTEST", "secret", "")),
	)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: bucket}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://s3.test.invalid")
	})
	return &Store{client: client, bucket: mockBucket}
}

type fakeObject struct {
	body        []byte
	contentType string
	etag        string
	modified    time.Time
}

// fakeBucket is an http.RoundTripper holding the objects of one bucket.
type fakeBucket struct {
	name    string
	mu      sync.Mutex
	objects map[string]fakeObject
}

type listResult struct {
	XMLName     xml.Name      `xml:"ListBucketResult"`
	Name        string        `xml:"Name"`
	Prefix      string        `xml:"Prefix"`
	KeyCount    int           `xml:"KeyCount"`
	IsTruncated bool          `xml:"IsTruncated"`
	Contents    []listContent `xml:"Contents"`
}

type listContent struct {
	Key          string `xml:"Key"`
	Size         int    `xml:"Size"`
	ETag         string `xml:"ETag"`
	LastModified string `xml:"LastModified"`
}

type errorBody struct {
	XMLName xml.Name `xml:"Error"`
	Code    string   `xml:"Code"`
	Message string   `xml:"Message"`
}

func (b *fakeBucket) RoundTrip(req *http.Request) (*http.Response, error) {
	bucket, key, _ := strings.Cut(strings.TrimPrefix(req.URL.Path, "/"), "/")
	if bucket != b.name {
		return errorResponse(req, http.StatusNotFound, "NoSuchBucket", bucket), nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2":
		return b.list(req)
	case req.Method == http.MethodPut:
		body, err := readPayload(req)
		if err != nil {
			return errorResponse(req, http.StatusBadRequest, "IncompleteBody", err.Error()), nil
		}
		sum := md5.Sum(body) //nolint:gosec
		obj := fakeObject{
			body:        body,
			contentType: req.Header.Get("Content-Type"),
			etag:        `"` + hex.EncodeToString(sum[:]) + `"`,
			modified:    time.Now().UTC().Truncate(time.Second),
		}
		b.objects[key] = obj
		return response(req, http.StatusOK, http.Header{"ETag": {obj.etag}}, nil), nil
	case req.Method == http.MethodHead, req.Method == http.MethodGet:
		obj, ok := b.objects[key]
		if !ok {
			if req.Method == http.MethodHead {
				return response(req, http.StatusNotFound, http.Header{}, nil), nil
			}
			return errorResponse(req, http.StatusNotFound, "NoSuchKey", key), nil
		}
		header := http.Header{
			"Content-Length": {strconv.Itoa(len(obj.body))},
			"Content-Type":   {obj.contentType},
			"ETag":           {obj.etag},
			"Last-Modified":  {obj.modified.Format(http.TimeFormat)},
		}
		if req.Method == http.MethodHead {
			return response(req, http.StatusOK, header, nil), nil
		}
		return response(req, http.StatusOK, header, obj.body), nil
	case req.Method == http.MethodDelete:
		delete(b.objects, key)
		return response(req, http.StatusNoContent, http.Header{}, nil), nil
	}
	return errorResponse(req, http.StatusNotImplemented, "NotImplemented", req.Method), nil
}

func (b *fakeBucket) list(req *http.Request) (*http.Response, error) {
	prefix := req.URL.Query().Get("prefix")
	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := listResult{Name: b.name, Prefix: prefix, KeyCount: len(keys)}
	for _, k := range keys {
		obj := b.objects[k]
		out.Contents = append(out.Contents, listContent{
			Key:          k,
			Size:         len(obj.body),
			ETag:         obj.etag,
			LastModified: obj.modified.Format(time.RFC3339),
		})
	}
	body, err := xml.Marshal(out)
	if err != nil {
		return nil, err
	}
	return response(req, http.StatusOK, http.Header{"Content-Type": {"application/xml"}}, body), nil
}

// readPayload returns the object bytes of a PUT, undoing aws-chunked framing
// when the SDK streams the body with a trailing checksum.
func readPayload(req *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(req.Header.Get("Content-Encoding"), "aws-chunked") {
		return raw, nil
	}
	r := bufio.NewReader(bytes.NewReader(raw))
	var out bytes.Buffer
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("chunk header: %w", err)
		}
		sizeHex, _, _ := strings.Cut(strings.TrimSpace(line), ";")
		size, err := strconv.ParseInt(sizeHex, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("chunk size %q: %w", sizeHex, err)
		}
		if size == 0 {
			return out.Bytes(), nil
		}
		if _, err := io.CopyN(&out, r, size); err != nil {
			return nil, fmt.Errorf("chunk body: %w", err)
		}
		if _, err := r.Discard(2); err != nil {
			return nil, fmt.Errorf("chunk terminator: %w", err)
		}
	}
}

func response(req *http.Request, status int, header http.Header, body []byte) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func errorResponse(req *http.Request, status int, code, message string) *http.Response {
	body, _ := xml.Marshal(errorBody{Code: code, Message: message})
	return response(req, status, http.Header{"Content-Type": {"application/xml"}}, body)
}
