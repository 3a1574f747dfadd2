package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ralsponsors/internal/config"
	"ralsponsors/internal/logger"
)

const (
	testUserID = "uid"
	testToken  = "tok"
)

func TestSign(t *testing.T) {
	got := Sign(testToken, testUserID, `{"page":1}`, 1700000000)
	assert.Equal(t, "d4e2bbe317787782837638e5ba8ef5e4", got)
}

func TestPageParams(t *testing.T) {
	params, err := pageParams(3)
	require.NoError(t, err)
	assert.Equal(t, `{"page":3}`, params)
}

// fakeAfdian serves pages from a fixed list and validates request signatures.
func fakeAfdian(t *testing.T, pages []string, totalPage int) (*httptest.Server, *int32) {
	t.Helper()

	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&calls, 1))

		var req apiRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, testUserID, req.UserID)
		assert.Equal(t, fmt.Sprintf(`{"page":%d}`, n), req.Params)
		assert.Equal(t, Sign(testToken, testUserID, req.Params, req.TS), req.Sign)

		list := "[]"
		if n <= len(pages) {
			list = pages[n-1]
		}

		fmt.Fprintf(w, `{"ec":200,"em":"","data":{"total_page":%d,"list":%s}}`, totalPage, list)
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func newTestAPIClient(url string) *APIClient {
	cfg := config.Default().Afdian
	cfg.APIURL = url
	cfg.UserID = testUserID
	cfg.Token = testToken

	c := NewAPIClient(cfg, logger.Discard())
	c.SetClock(func() time.Time { return time.Unix(1700000000, 0) })

	return c
}

const (
	pageOne = `[
		{"user":{"user_id":"aaa111","name":"张三","avatar":"https://pic1.afdiancdn.com/user/aaa111/avatar.jpg"},
		 "all_sum_amount":"30.00","first_pay_time":1700000000,"current_plan":{"name":"星光先锋"}},
		{"user":{"user_id":"bbb222","name":"","avatar":""},"all_sum_amount":5,"first_pay_time":0}
	]`
	pageTwo = `[
		{"user":{"user_id":"ccc333","name":"Alice","avatar":""},"all_sum_amount":"250.5","first_pay_time":"2024-02-03 10:00:00"},
		{"user":{"name":"ghost"},"all_sum_amount":"1.00"}
	]`
)

func TestAPIClient_FetchAll_Paginates(t *testing.T) {
	srv, calls := fakeAfdian(t, []string{pageOne, pageTwo}, 2)

	recs, err := newTestAPIClient(srv.URL).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
	require.Len(t, recs, 3)

	assert.Equal(t, "aaa111", recs[0].ID)
	assert.Equal(t, "张三", recs[0].Name)
	assert.InDelta(t, 30.0, recs[0].Amount, 1e-9)
	assert.Equal(t, "2023-11-15 06:13:20", recs[0].Timestamp)
	assert.Equal(t, "https://pic1.afdiancdn.com/user/aaa111/avatar.jpg", recs[0].AvatarURL)
	assert.Equal(t, "https://afdian.com/u/aaa111", recs[0].SourceURL)
	assert.Equal(t, "星光先锋", recs[0].Plan)

	assert.Equal(t, "匿名_bbb22", recs[1].Name)
	assert.Empty(t, recs[1].Timestamp)
	assert.InDelta(t, 5.0, recs[1].Amount, 1e-9)

	assert.Equal(t, "2024-02-03 10:00:00", recs[2].Timestamp)
	assert.InDelta(t, 250.5, recs[2].Amount, 1e-9)
}

func TestAPIClient_FetchAll_StopsOnEmptyPage(t *testing.T) {
	// The server claims five pages but the second is empty.
	srv, calls := fakeAfdian(t, []string{pageOne}, 5)

	recs, err := newTestAPIClient(srv.URL).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestAPIClient_FetchAll_MissingTotalPageStopsAfterFirst(t *testing.T) {
	srv, calls := fakeAfdian(t, []string{pageOne, pageTwo}, 0)

	recs, err := newTestAPIClient(srv.URL).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestAPIClient_FetchAll_PartialResultsOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		respond func(w http.ResponseWriter)
		wantErr error
	}{
		{
			name:    "non-200 status",
			respond: func(w http.ResponseWriter) { w.WriteHeader(http.StatusBadGateway) },
			wantErr: ErrUnexpectedStatusCode,
		},
		{
			name:    "malformed body",
			respond: func(w http.ResponseWriter) { fmt.Fprint(w, `{"ec":`) },
			wantErr: ErrDecodeResponse,
		},
		{
			name:    "api error code",
			respond: func(w http.ResponseWriter) { fmt.Fprint(w, `{"ec":400,"em":"sign error"}`) },
			wantErr: ErrAPIError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if atomic.AddInt32(&calls, 1) == 1 {
					fmt.Fprintf(w, `{"ec":200,"data":{"total_page":3,"list":%s}}`, pageOne)
					return
				}

				tt.respond(w)
			}))
			defer srv.Close()

			recs, err := newTestAPIClient(srv.URL).FetchAll(context.Background())
			require.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, recs, 2, "first page must be kept")
			assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "no retries")
		})
	}
}

func TestAPIClient_FetchAll_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	recs, err := newTestAPIClient(url).FetchAll(context.Background())
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Empty(t, recs)
}

func TestAPIClient_FetchAll_CancelledContext(t *testing.T) {
	srv, _ := fakeAfdian(t, []string{pageOne}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestAPIClient(srv.URL).FetchAll(ctx)
	require.Error(t, err)
}
