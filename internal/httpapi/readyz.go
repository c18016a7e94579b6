package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// shutdownCtx ends in-flight /readyz waits when the server stops.
var shutdownCtx = context.Background()

// SetShutdownContext sets the context whose cancellation releases
// long-polling /readyz requests. nil restores Background.
func SetShutdownContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	shutdownCtx = ctx
}

// parseWait reads ?wait=. ok is false when the parameter is absent.
func parseWait(r *http.Request) (d time.Duration, ok bool, err error) {
	v := r.URL.Query().Get("wait")
	if v == "" {
		return 0, false, nil
	}
	d, err = time.ParseDuration(v)
	if err == nil && d < 0 {
		err = errNegativeWait
	}
	return d, true, err
}

var errNegativeWait = errors.New("negative wait")

// readyWaitContext bounds a readiness wait by d, the readyWaitMax cap, the
// request and server shutdown.
func readyWaitContext(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	if readyWaitMax > 0 && d > readyWaitMax {
		d = readyWaitMax
	}
	ctx, cancel := context.WithTimeout(r.Context(), d)
	stop := context.AfterFunc(shutdownCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// readyzHandler godoc
//
//	@Summary	Readiness probe
//	@Description	Returns 200 once initialization succeeded. With ?wait=<duration> the request blocks until initialization settles, capped by the server's ready-wait limit.
//	@Param		wait	query	string	false	"maximum time to wait, e.g. 5s"
//	@Success	200	{string}	string	"ready"
//	@Failure	503	{string}	string	"loading or failed"
//	@Router		/readyz [get]
func readyzHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, wait, err := parseWait(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid wait duration")
			return
		}
		if wait && !svc.IsReady() {
			ctx, cancel := readyWaitContext(r, d)
			observeReadyWait(svc.Wait(ctx))
			cancel()
		}
		if svc.IsReady() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		if svc.Status().State == "failed" {
			_, _ = w.Write([]byte("failed"))
			return
		}
		_, _ = w.Write([]byte("loading"))
	}
}
