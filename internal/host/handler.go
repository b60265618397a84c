package host

import (
	"mime"
	"net/http"
	"path"

	"github.com/goliatone/go-slingtpl/internal/ctxlog"
	"github.com/goliatone/go-slingtpl/pkg/sling"
)

// Handler serves repository resources over HTTP. Output is buffered so a
// failed render never sends a partial body.
func (h *Host) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		logger := h.logger.With("method", r.Method, "path", r.URL.Path)
		ctx := ctxlog.WithLogger(r.Context(), logger)

		capture := sling.NewCaptureResponse(httpResponse{w: w})
		if err := h.Render(ctx, path.Clean(r.URL.Path), capture); err != nil {
			code := StatusCode(err)
			if code >= http.StatusInternalServerError {
				logger.Error("render failed", "error", err)
			} else {
				logger.Debug("render refused", "status", code, "error", err)
			}
			http.Error(w, http.StatusText(code), code)
			return
		}

		var body []byte
		if capture.IsBinary() {
			body = capture.CapturedBytes()
			if w.Header().Get("Content-Type") == "" {
				w.Header().Set("Content-Type", http.DetectContentType(body))
			}
		} else {
			text, _ := capture.CapturedText()
			body = []byte(text)
			if w.Header().Get("Content-Type") == "" {
				w.Header().Set("Content-Type", textContentType(sling.ParsePathInfo(r.URL.Path).Extension))
			}
		}

		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(body)
	})
}

func textContentType(extension string) string {
	if extension != "" {
		if byExt := mime.TypeByExtension("." + extension); byExt != "" {
			return byExt
		}
	}
	return "text/plain; charset=utf-8"
}
