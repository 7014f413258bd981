// Package fetch performs JSON-over-HTTP calls with a bounded retry loop.
//
// A Fetcher issues a Request and, on a network error or a non-2xx status,
// waits a fixed delay and tries again until Options.MaxAttempts attempts have
// been made:
//
//	f := fetch.New(http.DefaultClient, fetch.DefaultOptions()) // 3 attempts, 2s apart
//
//	req, err := fetch.NewJSONRequest(http.MethodPost, url, payload)
//	if err != nil {
//		return err
//	}
//	res, err := fetch.FetchJSON[map[string]any](ctx, f, req)
//
// # Outcomes
//
//   - success: the first 2xx response, decoded as JSON
//   - *ExhaustedError (errors.Is(err, ErrFetchExhausted)): every attempt failed,
//     or MaxAttempts <= 0 and nothing was sent
//   - *CancelledError (errors.Is(err, ErrCancelled)): ctx was cancelled or timed
//     out during an attempt or a wait
//   - *DecodeError: a 2xx body could not be decoded; returned at once, the
//     remaining attempts are not used
//
// Attempts are strictly sequential. WithTimer swaps the wait timer, which tests
// use to drive the loop with a fake clock.
package fetch
