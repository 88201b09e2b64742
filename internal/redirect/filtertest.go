package redirect

import (
	"context"
	"fmt"
	"strings"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/domain/errs"
	"variaredirect/internal/models"
)

// TestCustomFilter evaluates a script the same way live events do and reports the result.
func (p *Pipeline) TestCustomFilter(ctx context.Context, req models.FilterTestRequest) models.FilterTestResponse {
	if req.Type != "" && req.Type != consts.MsgTestCustomFilter {
		return models.FilterTestResponse{Error: fmt.Sprintf("unsupported message type %q", req.Type)}
	}
	if strings.TrimSpace(req.Script) == "" {
		return models.FilterTestResponse{Error: "Script is empty"}
	}

	view := models.SampleFilterView
	if req.TestData != nil {
		view = *req.TestData
	}

	res, err := p.Evaluator.Evaluate(ctx, req.Script, view)
	if err != nil {
		return models.FilterTestResponse{Error: err.Error(), Kind: errs.Kind(err)}
	}
	return models.FilterTestResponse{Success: true, Result: res}
}
