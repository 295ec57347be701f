package usecase

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/smartspec/build-advisor/internal/domain/entity"
)

// DecodeBuildRequest decodes a request body strictly: unknown keys, wrong
// types and trailing data are rejected, then the shape is validated.
// Every failure wraps entity.ErrInvalidRequest.
func DecodeBuildRequest(data []byte) (entity.BuildRequest, error) {
	var req entity.BuildRequest

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return req, fmt.Errorf("%w: empty body", entity.ErrInvalidRequest)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return entity.BuildRequest{}, fmt.Errorf("%w: %v", entity.ErrInvalidRequest, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return entity.BuildRequest{}, fmt.Errorf("%w: unexpected data after object", entity.ErrInvalidRequest)
	}

	if err := req.Validate(); err != nil {
		return entity.BuildRequest{}, err
	}
	return req, nil
}
