package boundary

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	errs   []error
	stacks [][]byte
}

func (r *recordingReporter) Report(err error, stack []byte) {
	r.errs = append(r.errs, err)
	r.stacks = append(r.stacks, stack)
}

func text(s string) View {
	return ViewFunc(func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func TestRenderChildWhenHealthy(t *testing.T) {
	rep := &recordingReporter{}
	b := New(text("booking wizard"), text("something went wrong"), rep, nil)

	var out bytes.Buffer
	require.NoError(t, b.Render(&out))
	assert.Equal(t, "booking wizard", out.String())
	assert.False(t, b.Faulted())
	assert.Empty(t, rep.errs)
}

func TestFaultReportedOnceAndFallbackShown(t *testing.T) {
	rep := &recordingReporter{}
	boom := errors.New("catalog render failed")
	calls := 0
	child := ViewFunc(func(w io.Writer) error {
		calls++
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	b := New(child, text("fallback"), rep, nil)

	for i := 0; i < 3; i++ {
		var out bytes.Buffer
		require.NoError(t, b.Render(&out))
		assert.Equal(t, "fallback", out.String())
	}

	assert.Equal(t, 1, calls)
	require.Len(t, rep.errs, 1)
	assert.ErrorIs(t, rep.errs[0], boom)
	assert.Nil(t, rep.stacks[0])
	assert.ErrorIs(t, b.Err(), boom)
}

func TestPanicIsCaught(t *testing.T) {
	rep := &recordingReporter{}
	b := New(ViewFunc(func(io.Writer) error { panic("nil selection") }), text("fallback"), rep, nil)

	var out bytes.Buffer
	require.NoError(t, b.Render(&out))
	assert.Equal(t, "fallback", out.String())
	require.Len(t, rep.errs, 1)
	var p *PanicError
	require.ErrorAs(t, rep.errs[0], &p)
	assert.Equal(t, "nil selection", p.Value)
	assert.Contains(t, rep.errs[0].Error(), "nil selection")
	assert.NotEmpty(t, rep.stacks[0])
}

func TestRetryRendersChildAgain(t *testing.T) {
	rep := &recordingReporter{}
	fail := true
	child := ViewFunc(func(w io.Writer) error {
		if fail {
			return errors.New("flaky")
		}
		_, err := io.WriteString(w, "recovered")
		return err
	})
	b := New(child, text("fallback"), rep, nil)

	var out bytes.Buffer
	require.NoError(t, b.Render(&out))
	fail = false

	b.Retry()
	out.Reset()
	require.NoError(t, b.Render(&out))
	assert.Equal(t, "recovered", out.String())
	assert.False(t, b.Faulted())
}

func TestEachFaultReportedAfterRetry(t *testing.T) {
	rep := &recordingReporter{}
	b := New(ViewFunc(func(io.Writer) error { return errors.New("still broken") }), text("fallback"), rep, nil)

	_ = b.Render(io.Discard)
	b.Retry()
	_ = b.Render(io.Discard)

	assert.Len(t, rep.errs, 2)
}

func TestResetNavigatesHome(t *testing.T) {
	home := 0
	b := New(ViewFunc(func(io.Writer) error { return errors.New("x") }), text("fallback"), nil, func() { home++ })

	_ = b.Render(io.Discard)
	require.True(t, b.Faulted())

	b.Reset()
	assert.False(t, b.Faulted())
	assert.Equal(t, 1, home)
}

func TestRecoverMiddleware(t *testing.T) {
	rep := &recordingReporter{}
	fallback := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "try again")
	})
	h := Recover(rep, fallback, "/")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("handler bug")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/booking/sessions", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "try again", w.Body.String())
	assert.Equal(t, `</>; rel="home"`, w.Header().Get("Link"))
	require.Len(t, rep.errs, 1)
	var p *PanicError
	assert.ErrorAs(t, rep.errs[0], &p)
}

func TestRecoverMiddlewareDiscardsPartialResponse(t *testing.T) {
	rep := &recordingReporter{}
	fallback := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "try again")
	})
	h := Recover(rep, fallback, "")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"dates":[`)
		panic("half written")
	}))

	w := httptest.NewRecorder()
	w.Header().Set("X-Request-ID", "abc")
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/booking/sessions", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "try again", w.Body.String())
	assert.Empty(t, w.Header().Get("Content-Type"))
	assert.Empty(t, w.Header().Get("Link"))
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
	assert.Len(t, rep.errs, 1)
}

func TestRecoverMiddlewarePassesThrough(t *testing.T) {
	rep := &recordingReporter{}
	h := Recover(rep, http.NotFoundHandler(), "/")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusTeapot)
		_, _ = io.WriteString(w, "short and stout")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "short and stout", w.Body.String())
	assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Header().Get("Link"))
	assert.Empty(t, rep.errs)
}

func TestRecoverMiddlewareReraisesAbort(t *testing.T) {
	rep := &recordingReporter{}
	h := Recover(rep, http.NotFoundHandler(), "/")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Empty(t, rep.errs)
}
