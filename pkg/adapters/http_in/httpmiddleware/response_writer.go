package httpmiddleware

import "net/http"

type responseWriterWrapper struct {
	wrapped      http.ResponseWriter
	statusCode   int
	responseSize int
}

func (w *responseWriterWrapper) Header() http.Header {
	return w.wrapped.Header()
}

func (w *responseWriterWrapper) Write(data []byte) (int, error) {
	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}
	n, err := w.wrapped.Write(data)
	w.responseSize += n
	return n, err
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if w.statusCode == 0 {
		w.statusCode = statusCode
	}
	w.wrapped.WriteHeader(statusCode)
}

// status is 200 when the handler never wrote anything, as net/http does.
func (w *responseWriterWrapper) status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}
