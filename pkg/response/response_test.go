package response

import (
	"errors"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanbocchi/lakeprobe/internal/model"
)

func TestPaginate(t *testing.T) {
	resp := Paginate(model.PaginateResult[string]{
		PageParams: model.PaginationParams{Limit: 2},
		Data:       []string{"a", "b"},
		Total:      null.IntFrom(3),
	})

	assert.Equal(t, int32(2), resp.PageMeta.Limit)
	assert.Equal(t, null.Int32From(1), resp.PageMeta.Page)
	assert.Equal(t, null.Int32From(2), resp.PageMeta.NextPage)

	out, err := sonic.Marshal(Paginate(model.PaginateResult[string]{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[],"pagination":{"limit":10,"total":null,"page":1,"next_page":null}}`, string(out))
}

func TestFail(t *testing.T) {
	resp := Fail(model.ErrIO.Fmt("Upload timed out"))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "io", resp.Error.Code())
	assert.Equal(t, "Upload timed out", resp.Error.Message)

	resp = Fail(errors.New("boom"))
	assert.Equal(t, "internal", resp.Error.Code())
	assert.Equal(t, "boom", resp.Error.Message)
}
