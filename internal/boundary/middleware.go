package boundary

import (
	"bytes"
	"errors"
	"io"
	"net/http"
)

// Recover wraps handlers in a per-request Boundary. The handler's response
// is held back until it returns, so a panic never leaves a partial response
// behind: the fallback is served instead and, when home is set, the
// response links back to it. Each panic is reported once. http.ErrAbortHandler
// is re-raised so net/http can abort the response as intended.
func Recover(reporter Reporter, fallback http.Handler, home string) func(http.Handler) http.Handler {
	report := ReporterFunc(func(err error, stack []byte) {
		if reporter != nil && !isAbort(err) {
			reporter.Report(err, stack)
		}
	})
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			child := ViewFunc(func(out io.Writer) error {
				buf := &bufferedResponse{header: w.Header().Clone()}
				next.ServeHTTP(buf, r)
				return buf.commit(w, out)
			})

			var b *Boundary
			fallbackView := ViewFunc(func(io.Writer) error {
				if isAbort(b.Err()) {
					panic(http.ErrAbortHandler)
				}
				b.Reset()
				fallback.ServeHTTP(w, r)
				return nil
			})
			b = New(child, fallbackView, report, func() {
				if home != "" {
					w.Header().Set("Link", "<"+home+`>; rel="home"`)
				}
			})
			_ = b.Render(w)
		})
	}
}

func isAbort(err error) bool {
	var p *PanicError
	return errors.As(err, &p) && p.Value == http.ErrAbortHandler
}

// bufferedResponse collects a handler's header, status and body without
// touching the real writer.
type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(code int) {
	if b.status == 0 {
		b.status = code
	}
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

// commit sends the buffered header and status to w and the body to out.
func (b *bufferedResponse) commit(w http.ResponseWriter, out io.Writer) error {
	dst := w.Header()
	for k := range dst {
		delete(dst, k)
	}
	for k, v := range b.header {
		dst[k] = v
	}
	if b.status == 0 {
		b.status = http.StatusOK
	}
	w.WriteHeader(b.status)
	_, err := out.Write(b.body.Bytes())
	return err
}
