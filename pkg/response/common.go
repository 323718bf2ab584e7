package response

import (
	"errors"

	"github.com/beanbocchi/lakeprobe/internal/model"
)

type CommonResponse struct {
	Data  any          `json:"data,omitempty"`
	Error *model.Error `json:"error"`
}

// Fail renders err as a coded error, using code "internal" for errors that
// carry none.
func Fail(err error) CommonResponse {
	var coded model.Error
	if !errors.As(err, &coded) {
		coded = model.NewError("internal", err.Error())
	}
	return CommonResponse{Error: &coded}
}
