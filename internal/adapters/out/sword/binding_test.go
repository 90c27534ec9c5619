package sword

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/ferry/internal/domain"
)

const depositReceipt = `<?xml version="1.0" encoding="utf-8"?>
<entry xmlns="http://www.w3.org/2005/Atom" xmlns:sword="http://purl.org/net/sword/terms/">
  <id>urn:uuid:1225c695-cfb8-4ebb-aaaa-80da344efa6a</id>
  <link rel="edit-media" href="https://repo.example.org/em/42"/>
  <link rel="edit" href="https://repo.example.org/edit/42"/>
  <link rel="http://purl.org/net/sword/terms/statement" href="https://repo.example.org/statement/42"/>
  <sword:treatment>Stored</sword:treatment>
</entry>`

const serviceDoc = `<?xml version="1.0"?>
<service xmlns="http://www.w3.org/2007/app">
  <workspace><collection href="https://repo.example.org/collection"/></workspace>
</service>`

func testLogger() zerowrap.Logger {
	return zerowrap.Default()
}

func testPackage(body io.Reader, length int64) *domain.PackageStream {
	pkg := domain.NewPackageStream("sub-1.zip", "application/zip", length, io.NopCloser(body), nil)
	pkg.Spec = "http://purl.org/net/sword/package/SimpleZip"
	pkg.Slug = "dep-1"
	pkg.Digests[domain.ChecksumMD5] = "321c3cf486ed509164edec1e1981fec8"
	return pkg
}

func testConfig(endpoint string) domain.TransportConfig {
	return domain.TransportConfig{
		Protocol:   domain.ProtocolSWORD,
		Endpoint:   endpoint,
		OnBehalfOf: "jdoe",
		Headers:    map[string]string{"X-Repository-Tenant": "ferry"},
		Realms: []domain.AuthRealm{
			{Host: "127.0.0.1", Username: "depositor", Password: "s3cret"},
		},
		Timeout: 5 * time.Second,
	}
}

func newBinding(srv *httptest.Server) *Binding {
	return New(testLogger(), WithHTTPClient(srv.Client()), WithUserAgent("ferry-test"))
}

func TestBinding_Submit_Created(t *testing.T) {
	type captured struct {
		req  *http.Request
		body string
	}
	requests := make(chan captured, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		requests <- captured{req: r.Clone(context.Background()), body: string(data)}

		w.Header().Set("Location", "https://repo.example.org/edit/42")
		w.Header().Set("Content-Type", "application/atom+xml;type=entry")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, depositReceipt)
	}))
	defer srv.Close()

	b := newBinding(srv)
	receipt, err := b.Submit(context.Background(), testPackage(strings.NewReader("payload"), 7), testConfig(srv.URL+"/collection"))
	require.NoError(t, err)

	assert.Equal(t, domain.ProtocolSWORD, receipt.Protocol)
	assert.Equal(t, http.StatusCreated, receipt.StatusCode)
	assert.Equal(t, "https://repo.example.org/edit/42", receipt.Location)
	assert.Equal(t, "urn:uuid:1225c695-cfb8-4ebb-aaaa-80da344efa6a", receipt.Identifier)

	c := <-requests
	got := c.req
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/collection", got.URL.Path)
	assert.Equal(t, "payload", c.body)
	assert.Equal(t, int64(7), got.ContentLength)
	assert.Equal(t, "application/zip", got.Header.Get("Content-Type"))
	assert.Equal(t, "attachment; filename=sub-1.zip", got.Header.Get("Content-Disposition"))
	assert.Equal(t, "http://purl.org/net/sword/package/SimpleZip", got.Header.Get("Packaging"))
	assert.Equal(t, "Mhw89IbtUJFk7eweGYH+yA==", got.Header.Get("Content-MD5"))
	assert.Equal(t, "false", got.Header.Get("In-Progress"))
	assert.Equal(t, "dep-1", got.Header.Get("Slug"))
	assert.Equal(t, "jdoe", got.Header.Get("On-Behalf-Of"))
	assert.Equal(t, "ferry", got.Header.Get("X-Repository-Tenant"))
	assert.Equal(t, "ferry-test", got.Header.Get("User-Agent"))

	user, pass, ok := got.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "depositor", user)
	assert.Equal(t, "s3cret", pass)
}

func TestBinding_Submit_ReceiptLinkWithoutLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, depositReceipt)
	}))
	defer srv.Close()

	receipt, err := newBinding(srv).Submit(context.Background(), testPackage(strings.NewReader("payload"), 7), testConfig(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "https://repo.example.org/edit/42", receipt.Location)
}

func TestBinding_Submit_EmptyOrMalformedReceipt(t *testing.T) {
	for name, body := range map[string]string{"empty": "", "malformed": "<entry><oops"} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				w.WriteHeader(http.StatusOK)
				_, _ = io.WriteString(w, body)
			}))
			defer srv.Close()

			receipt, err := newBinding(srv).Submit(context.Background(), testPackage(strings.NewReader("payload"), 7), testConfig(srv.URL))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, receipt.StatusCode)
			assert.Empty(t, receipt.Location)
		})
	}
}

func TestBinding_Submit_HTTPFailures(t *testing.T) {
	tests := []struct {
		status int
		want   domain.TransportErrorKind
	}{
		{http.StatusUnauthorized, domain.TransportAuthFailure},
		{http.StatusForbidden, domain.TransportAuthFailure},
		{http.StatusBadRequest, domain.TransportRemoteRejected},
		{http.StatusRequestEntityTooLarge, domain.TransportRemoteRejected},
		{http.StatusInternalServerError, domain.TransportRemoteRejected},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, strings.Repeat("x", 10000))
			}))
			defer srv.Close()

			_, err := newBinding(srv).Submit(context.Background(), testPackage(strings.NewReader("payload"), 7), testConfig(srv.URL))

			te, ok := domain.AsTransportError(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, te.Kind)
			assert.Equal(t, tt.status, te.StatusCode)
			assert.Len(t, te.Body, maxErrorBody)
			assert.False(t, te.Retryable())
		})
	}
}

func TestBinding_Submit_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	_, err := New(testLogger()).Submit(context.Background(), testPackage(strings.NewReader("payload"), 7), testConfig(endpoint))

	te, ok := domain.AsTransportError(err)
	require.True(t, ok)
	assert.Equal(t, domain.TransportConnectionFailure, te.Kind)
	assert.True(t, te.Retryable())
}

func TestBinding_Submit_TimeoutBeforeBodySent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
	}))
	defer srv.Close()

	// The body never ends, so the deadline fires mid-upload.
	pr, pw := io.Pipe()
	defer pw.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 100 * time.Millisecond

	_, err := newBinding(srv).Submit(context.Background(), testPackage(pr, -1), cfg)

	te, ok := domain.AsTransportError(err)
	require.True(t, ok)
	assert.Equal(t, domain.TransportTimeout, te.Kind)
}

func TestBinding_Submit_DroppedAfterBodyIsUnknownOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			conn.Close()
		}
	}))
	defer srv.Close()

	_, err := newBinding(srv).Submit(context.Background(), testPackage(strings.NewReader("payload"), 7), testConfig(srv.URL))

	te, ok := domain.AsTransportError(err)
	require.True(t, ok)
	assert.Equal(t, domain.TransportUnknownOutcome, te.Kind)
	assert.True(t, te.Retryable())
}

func TestBinding_Submit_ServiceDocumentCheck(t *testing.T) {
	var deposits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/sd", func(w http.ResponseWriter, r *http.Request) {
		if _, pass, _ := r.BasicAuth(); pass != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, serviceDoc)
	})
	mux.HandleFunc("/collection", func(w http.ResponseWriter, r *http.Request) {
		deposits.Add(1)
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusCreated)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := testConfig(srv.URL + "/collection")
	cfg.ServiceDocument = srv.URL + "/sd"

	_, err := newBinding(srv).Submit(context.Background(), testPackage(strings.NewReader("payload"), 7), cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(1), deposits.Load())

	cfg.Realms[0].Password = "wrong"
	pkg := testPackage(strings.NewReader("payload"), 7)
	_, err = newBinding(srv).Submit(context.Background(), pkg, cfg)

	te, ok := domain.AsTransportError(err)
	require.True(t, ok)
	assert.Equal(t, domain.TransportAuthFailure, te.Kind)
	assert.Equal(t, int32(1), deposits.Load(), "no deposit after a failed credential check")

	// The body was never taken.
	_, err = pkg.Take()
	assert.NoError(t, err)
}

func TestBinding_Submit_ConsumedPackage(t *testing.T) {
	pkg := testPackage(strings.NewReader("payload"), 7)
	_, err := pkg.Take()
	require.NoError(t, err)

	_, err = New(testLogger()).Submit(context.Background(), pkg, testConfig("http://127.0.0.1:1"))
	assert.ErrorIs(t, err, domain.ErrPackageConsumed)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassifyRequestError(t *testing.T) {
	ctx := context.Background()
	expired, cancel := context.WithDeadline(ctx, time.Now().Add(-time.Second))
	defer cancel()

	assert.Equal(t, domain.TransportUnknownOutcome, classifyRequestError(ctx, errors.New("EOF"), true))
	assert.Equal(t, domain.TransportUnknownOutcome, classifyRequestError(expired, context.DeadlineExceeded, true))
	assert.Equal(t, domain.TransportTimeout, classifyRequestError(expired, errors.New("canceled"), false))
	assert.Equal(t, domain.TransportTimeout, classifyRequestError(ctx, timeoutErr{}, false))
	assert.Equal(t, domain.TransportConnectionFailure, classifyRequestError(ctx, errors.New("connection refused"), false))
}

func TestParseServiceDocument(t *testing.T) {
	hrefs, err := parseServiceDocument(strings.NewReader(serviceDoc))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://repo.example.org/collection"}, hrefs)
}

func TestParseReceipt(t *testing.T) {
	entry, err := parseReceipt(strings.NewReader(depositReceipt))
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "Stored", entry.Treatment)
	assert.Equal(t, "https://repo.example.org/em/42", entry.link("edit-media"))
	assert.Equal(t, "https://repo.example.org/edit/42", entry.location())

	entry, err = parseReceipt(strings.NewReader(`<entry xmlns="http://www.w3.org/2005/Atom">
  <link rel="http://purl.org/net/sword/terms/statement" href="https://repo.example.org/statement/7"/>
</entry>`))
	require.NoError(t, err)
	assert.Equal(t, "https://repo.example.org/statement/7", entry.location())

	entry, err = parseReceipt(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestTrackingReader_ConcurrentObservation(t *testing.T) {
	tracked := &trackingReader{r: strings.NewReader(strings.Repeat("x", 4096))}

	stop := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		for {
			select {
			case <-stop:
				return
			default:
				_ = tracked.Done()
				_ = tracked.Sent()
			}
		}
	}()

	n, err := io.Copy(io.Discard, tracked)
	require.NoError(t, err)
	close(stop)
	<-exited

	assert.Equal(t, int64(4096), n)
	assert.Equal(t, int64(4096), tracked.Sent())
	assert.True(t, tracked.Done())
}
