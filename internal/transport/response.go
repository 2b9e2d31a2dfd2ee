package transport

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/weconnect/airbase/pkg/errors"
	"github.com/weconnect/airbase/pkg/logging"
)

// errorBody is the error envelope the remote service returns on failure.
type errorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// DecodeResponse decodes a JSON response into the target structure. Non-2xx
// statuses become an APIError carrying the remote-provided error detail.
// The response body is always closed.
func DecodeResponse(resp *http.Response, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapValidation("response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &errors.APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
		var remote errorBody
		if jsonErr := json.Unmarshal(body, &remote); jsonErr == nil && remote.Error.Message != "" {
			apiErr.Type = remote.Error.Type
			apiErr.Message = remote.Error.Message
		}
		return apiErr
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapValidation("response json", err)
	}
	return nil
}

// drain discards and closes a response body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
