package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInstrumentHandlerUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(InstrumentHandler)
	r.Get("/requests/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/requests/{id}", "418"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/requests/abc", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/requests/{id}", "418")))
}

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(queueMutations.WithLabelValues("reorder", "error"))
	RecordQueueMutation("reorder", errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(queueMutations.WithLabelValues("reorder", "error")))

	LiveSubscribed("queue")
	LiveSubscribed("queue")
	LiveUnsubscribed("queue")
	assert.GreaterOrEqual(t, testutil.ToFloat64(liveSubscriptions.WithLabelValues("queue")), float64(1))
}

func TestHandlerServesRegistry(t *testing.T) {
	RecordMail(nil)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "encore_mail_sent_total")
}
